package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"debatearena/db"
	"debatearena/internal/ratelimit"
	"debatearena/models"
	"debatearena/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var argumentLimiter *ratelimit.ArgumentLimiter

// InitDebateController wires the optional submission rate limiter.
func InitDebateController(limiter *ratelimit.ArgumentLimiter) {
	argumentLimiter = limiter
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func debateIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid debate id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func currentParticipant(c *gin.Context) models.Participant {
	return models.Participant{
		UserID:      c.GetString("userId"),
		DisplayName: c.GetString("displayName"),
		JoinedAt:    time.Now(),
	}
}

// respondDebateError maps service errors onto the HTTP surface.
func respondDebateError(c *gin.Context, err error) {
	var validation *models.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.Is(err, models.ErrDebateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrApprovalRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "requiresApproval": true})
	case errors.Is(err, models.ErrDebateCompleted),
		errors.Is(err, models.ErrDuplicateRequest),
		errors.Is(err, models.ErrNotEnoughArguments),
		errors.Is(err, models.ErrDebateFull):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("debate handler error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// CreateDebate starts a new debate with the caller as first participant.
func CreateDebate(c *gin.Context) {
	var body struct {
		Topic           string `json:"topic" binding:"required"`
		MaxParticipants int    `json:"maxParticipants"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	debate, err := db.Debates().Create(ctx, body.Topic, body.MaxParticipants, currentParticipant(c))
	if err != nil {
		respondDebateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, debate)
}

// JoinDebate appends the caller to the participant list.
func JoinDebate(c *gin.Context) {
	id, ok := debateIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	debate, err := db.Debates().Join(ctx, id, currentParticipant(c))
	if err != nil {
		respondDebateError(c, err)
		return
	}
	c.JSON(http.StatusOK, debate)
}

// GetDebate returns the full debate document.
func GetDebate(c *gin.Context) {
	id, ok := debateIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	debate, err := db.Debates().FindByID(ctx, id)
	if err != nil {
		respondDebateError(c, err)
		return
	}
	c.JSON(http.StatusOK, debate)
}

// ListDebates returns recently updated debates.
func ListDebates(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	debates, err := db.Debates().List(ctx, 50)
	if err != nil {
		respondDebateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"debates": debates})
}

// SubmitArgument validates, scores and stores a new argument.
func SubmitArgument(c *gin.Context) {
	id, ok := debateIDParam(c)
	if !ok {
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	userID := c.GetString("userId")
	if allowed, err := argumentLimiter.Allow(ctx, id.Hex(), userID); err != nil {
		log.Printf("argument rate limiter error: %v", err)
	} else if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many arguments submitted, slow down"})
		return
	}

	argument, err := services.Coordinator().SubmitArgument(ctx, id, userID, body.Content)
	if err != nil {
		respondDebateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        argument.ID,
		"content":   argument.Content,
		"score":     argument.Score,
		"author":    argument.DisplayName,
		"createdAt": argument.CreatedAt,
	})
}

// FinalizeDebate runs the full finalization sequence when allowed.
func FinalizeDebate(c *gin.Context) {
	id, ok := debateIDParam(c)
	if !ok {
		return
	}
	var body struct {
		ForceFinalize bool `json:"forceFinalize"`
	}
	// Body is optional; a missing body means no force.
	_ = c.ShouldBindJSON(&body)

	ctx, cancel := requestContext()
	defer cancel()

	result, err := services.Coordinator().Finalize(ctx, id, c.GetString("userId"), body.ForceFinalize)
	if err != nil {
		respondDebateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"winner":         result.Winner,
		"results":        result.Results,
		"analysisSource": result.Source,
		"finalizedAt":    result.FinalizedAt,
	})
}

// RequestFinalization records an approval; once unanimous the full
// finalize result is returned instead of the pending count.
func RequestFinalization(c *gin.Context) {
	id, ok := debateIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	status, err := services.Coordinator().RequestFinalization(ctx, id, c.GetString("userId"))
	if err != nil {
		respondDebateError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetResults serves the stored result, read-repairing when needed.
func GetResults(c *gin.Context) {
	id, ok := debateIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	stored, err := services.Store().Load(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrResultNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "debate not finalized yet"})
			return
		}
		respondDebateError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

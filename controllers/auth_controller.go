package controllers

import (
	"errors"
	"net/http"
	"time"

	"debatearena/db"
	"debatearena/models"
	"debatearena/utils"

	"github.com/gin-gonic/gin"
)

// Signup creates a user and issues a token.
func Signup(c *gin.Context) {
	var body struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=8"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and a password of at least 8 characters are required"})
		return
	}
	if body.DisplayName == "" {
		body.DisplayName = utils.ExtractNameFromEmail(body.Email)
	}

	ctx, cancel := requestContext()
	defer cancel()

	if _, err := db.Users().FindByEmail(ctx, body.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	} else if !errors.Is(err, models.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user := &models.User{
		Email:        body.Email,
		DisplayName:  body.DisplayName,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := db.Users().Create(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	token, err := utils.GenerateJWTToken(user.ID.Hex(), user.Email, user.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login verifies credentials and issues a token.
func Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, err := db.Users().FindByEmail(ctx, body.Email)
	if err != nil || !utils.CheckPasswordHash(body.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := utils.GenerateJWTToken(user.ID.Hex(), user.Email, user.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

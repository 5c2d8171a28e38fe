package controllers

import (
	"net/http"

	"debatearena/db"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetProfile returns the caller's profile with debate stats and the
// bounded debate history.
func GetProfile(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, err := db.Users().FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetLeaderboard returns the top users ranked by average score.
func GetLeaderboard(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	users, err := db.Users().Leaderboard(ctx, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching leaderboard"})
		return
	}

	type entry struct {
		Rank         int     `json:"rank"`
		Name         string  `json:"name"`
		AverageScore float64 `json:"averageScore"`
		Wins         int     `json:"wins"`
		Losses       int     `json:"losses"`
		Draws        int     `json:"draws"`
	}
	leaderboard := make([]entry, 0, len(users))
	for i, user := range users {
		leaderboard = append(leaderboard, entry{
			Rank:         i + 1,
			Name:         user.DisplayName,
			AverageScore: user.AverageScore,
			Wins:         user.Wins,
			Losses:       user.Losses,
			Draws:        user.Draws,
		})
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": leaderboard})
}

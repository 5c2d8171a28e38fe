package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Debate outcomes recorded in a user's history.
const (
	OutcomeWon  = "won"
	OutcomeLost = "lost"
	OutcomeDraw = "draw"
)

// HistoryWindow is how many past debates a user's history retains.
const HistoryWindow = 10

// DebateHistoryEntry is one finished debate in a user's bounded history.
type DebateHistoryEntry struct {
	DebateID    primitive.ObjectID `bson:"debateId" json:"debateId"`
	Topic       string             `bson:"topic" json:"topic"`
	Outcome     string             `bson:"outcome" json:"outcome"`
	Total       float64            `bson:"total" json:"total"`
	Source      string             `bson:"source" json:"analysisSource"`
	FinalizedAt time.Time          `bson:"finalizedAt" json:"finalizedAt"`
}

// User defines a user entity with post-debate stats. DebateHistory is
// bounded to HistoryWindow entries, oldest evicted first; AverageScore
// is recomputed over the retained window.
type User struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Email         string               `bson:"email" json:"email"`
	DisplayName   string               `bson:"displayName" json:"displayName"`
	PasswordHash  string               `bson:"passwordHash" json:"-"`
	Bio           string               `bson:"bio,omitempty" json:"bio,omitempty"`
	Wins          int                  `bson:"wins" json:"wins"`
	Losses        int                  `bson:"losses" json:"losses"`
	Draws         int                  `bson:"draws" json:"draws"`
	AverageScore  float64              `bson:"averageScore" json:"averageScore"`
	DebateHistory []DebateHistoryEntry `bson:"debateHistory" json:"debateHistory"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
}

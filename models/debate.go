package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DebateStatus tracks a debate through its lifecycle. Transitions are
// monotonic: waiting -> active -> completed, never backwards.
type DebateStatus string

const (
	StatusWaiting   DebateStatus = "waiting"
	StatusActive    DebateStatus = "active"
	StatusCompleted DebateStatus = "completed"
)

// DefaultMaxParticipants is the debate capacity used when none is given.
const DefaultMaxParticipants = 2

// Participant is a user who joined a debate. The participants array is
// append-only until the debate reaches capacity.
type Participant struct {
	UserID      string    `bson:"userId" json:"userId"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	JoinedAt    time.Time `bson:"joinedAt" json:"joinedAt"`
}

// Argument is a single submission within a debate. Arguments are only
// appended, never edited or removed, and the score is computed once at
// submission time.
type Argument struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	Content     string    `bson:"content" json:"content"`
	Score       Score     `bson:"score" json:"score"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// FinalizationRequest records one participant's intent to end the debate.
// The set is scoped to a single approval round and cleared on rejection.
type FinalizationRequest struct {
	UserID      string    `bson:"userId" json:"userId"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	RequestedAt time.Time `bson:"requestedAt" json:"requestedAt"`
}

// Debate is the aggregate root. Arguments and finalization requests are
// only reachable through it; the embedded Result is a denormalized copy
// written once when the debate completes.
type Debate struct {
	ID                   primitive.ObjectID    `bson:"_id,omitempty" json:"id,omitempty"`
	Topic                string                `bson:"topic" json:"topic"`
	Status               DebateStatus          `bson:"status" json:"status"`
	MaxParticipants      int                   `bson:"maxParticipants" json:"maxParticipants"`
	Participants         []Participant         `bson:"participants" json:"participants"`
	Arguments            []Argument            `bson:"arguments" json:"arguments"`
	FinalizationRequests []FinalizationRequest `bson:"finalizationRequests" json:"finalizationRequests"`
	Result               *AnalysisResult       `bson:"result,omitempty" json:"result,omitempty"`
	CreatedAt            time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether the given user has joined this debate.
func (d *Debate) HasParticipant(userID string) bool {
	for _, p := range d.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// ParticipantNames returns display names in join order. Join order is the
// tie-break key for winner selection, so the ordering here matters.
func (d *Debate) ParticipantNames() []string {
	names := make([]string, 0, len(d.Participants))
	for _, p := range d.Participants {
		names = append(names, p.DisplayName)
	}
	return names
}

// IsFull reports whether the debate has reached its configured capacity.
func (d *Debate) IsFull() bool {
	max := d.MaxParticipants
	if max <= 0 {
		max = DefaultMaxParticipants
	}
	return len(d.Participants) >= max
}

// HasRequested reports whether the given user already has a pending
// finalization request.
func (d *Debate) HasRequested(userID string) bool {
	for _, r := range d.FinalizationRequests {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// DistinctRequesters counts distinct users with a pending finalization
// request. Unanimity detection must be order-independent, so this treats
// the request list as a set.
func (d *Debate) DistinctRequesters() int {
	seen := make(map[string]struct{}, len(d.FinalizationRequests))
	for _, r := range d.FinalizationRequests {
		seen[r.UserID] = struct{}{}
	}
	return len(seen)
}

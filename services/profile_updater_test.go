package services

import (
	"context"
	"errors"
	"testing"

	"debatearena/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOutcomesDrawWithinMargin(t *testing.T) {
	debate := testDebate("alice", "bob")
	result := analysisResult("alice", map[string]float64{"alice": 80, "bob": 76})

	outcomes := Outcomes(debate.Participants, result)
	if outcomes["alice"] != models.OutcomeDraw || outcomes["bob"] != models.OutcomeDraw {
		t.Errorf("totals 80/76 should both draw, got %v", outcomes)
	}
}

func TestOutcomesWinLossBeyondMargin(t *testing.T) {
	debate := testDebate("alice", "bob")
	result := analysisResult("alice", map[string]float64{"alice": 80, "bob": 60})

	outcomes := Outcomes(debate.Participants, result)
	if outcomes["alice"] != models.OutcomeWon {
		t.Errorf("alice outcome = %q, want won", outcomes["alice"])
	}
	if outcomes["bob"] != models.OutcomeLost {
		t.Errorf("bob outcome = %q, want lost", outcomes["bob"])
	}
}

func TestApplyRecordsEntryPerParticipant(t *testing.T) {
	debate := testDebate("alice", "bob")
	result := analysisResult("alice", map[string]float64{"alice": 85, "bob": 62})
	users := newFakeUserRepo()
	updater := NewProfileUpdater(users)
	debateID := primitive.NewObjectID()

	updater.Apply(context.Background(), debateID, debate.Topic, debate.Participants, result)

	for _, p := range debate.Participants {
		entries := users.entries[p.UserID]
		if len(entries) != 1 {
			t.Fatalf("user %s has %d entries, want 1", p.DisplayName, len(entries))
		}
		entry := entries[0]
		if entry.DebateID != debateID {
			t.Errorf("entry debate id mismatch for %s", p.DisplayName)
		}
		if entry.Total != result.Results[p.DisplayName].Total {
			t.Errorf("entry total = %.1f, want %.1f", entry.Total, result.Results[p.DisplayName].Total)
		}
	}
	if users.entries[debate.Participants[0].UserID][0].Outcome != models.OutcomeWon {
		t.Error("winner's entry should record won")
	}
}

func TestApplySwallowsRepositoryFailures(t *testing.T) {
	debate := testDebate("alice", "bob")
	result := analysisResult("alice", map[string]float64{"alice": 85, "bob": 62})
	users := newFakeUserRepo()
	users.err = errors.New("users collection down")
	updater := NewProfileUpdater(users)

	// Must not panic or propagate: profile updates are best-effort.
	updater.Apply(context.Background(), primitive.NewObjectID(), debate.Topic, debate.Participants, result)
}

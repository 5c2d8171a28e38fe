package services

import (
	"context"
	"log"

	"debatearena/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// DrawMargin is the maximum spread between the highest and lowest totals
// for a debate to count as a draw for everyone.
const DrawMargin = 5.0

// ProfileUpdater records each participant's result into their historical
// stats after finalization. It is strictly best-effort: every failure is
// logged and swallowed so finalization is never aborted by bookkeeping.
type ProfileUpdater struct {
	users UserRepository
}

// NewProfileUpdater wires the updater over the user repository.
func NewProfileUpdater(users UserRepository) *ProfileUpdater {
	return &ProfileUpdater{users: users}
}

// Apply writes one history entry per participant. Updates fan out
// concurrently; the first error is logged but the call always returns.
func (u *ProfileUpdater) Apply(ctx context.Context, debateID primitive.ObjectID, topic string, participants []models.Participant, result *models.AnalysisResult) {
	outcomes := Outcomes(participants, result)

	var g errgroup.Group
	for _, p := range participants {
		p := p
		g.Go(func() error {
			entry := models.DebateHistoryEntry{
				DebateID:    debateID,
				Topic:       topic,
				Outcome:     outcomes[p.DisplayName],
				Total:       result.Results[p.DisplayName].Total,
				Source:      result.Source,
				FinalizedAt: result.FinalizedAt,
			}
			return u.users.RecordDebateOutcome(ctx, p.UserID, entry)
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("profile update failed for debate %s: %v", debateID.Hex(), err)
	}
}

// Outcomes determines won/lost/draw per participant. When the best and
// worst totals sit within DrawMargin of each other, everyone draws;
// otherwise the winner wins and the rest lose.
func Outcomes(participants []models.Participant, result *models.AnalysisResult) map[string]string {
	max, min := 0.0, 0.0
	for i, p := range participants {
		total := result.Results[p.DisplayName].Total
		if i == 0 || total > max {
			max = total
		}
		if i == 0 || total < min {
			min = total
		}
	}

	outcomes := make(map[string]string, len(participants))
	for _, p := range participants {
		switch {
		case max-min <= DrawMargin:
			outcomes[p.DisplayName] = models.OutcomeDraw
		case p.DisplayName == result.Winner:
			outcomes[p.DisplayName] = models.OutcomeWon
		default:
			outcomes[p.DisplayName] = models.OutcomeLost
		}
	}
	return outcomes
}

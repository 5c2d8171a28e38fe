package services

import (
	"context"
	"sync"
	"time"

	"debatearena/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeDebateRepo is an in-memory DebateRepository with the same
// conditional-update semantics as the Mongo implementation.
type fakeDebateRepo struct {
	mu      sync.Mutex
	debates map[primitive.ObjectID]*models.Debate

	// afterAddRequest, when set, runs under the lock right after a
	// finalization request is recorded. Tests use it to interleave a
	// concurrent writer at that exact point.
	afterAddRequest func(*models.Debate)
}

func newFakeDebateRepo(debates ...*models.Debate) *fakeDebateRepo {
	repo := &fakeDebateRepo{debates: make(map[primitive.ObjectID]*models.Debate)}
	for _, d := range debates {
		if d.ID.IsZero() {
			d.ID = primitive.NewObjectID()
		}
		repo.debates[d.ID] = d
	}
	return repo
}

func (r *fakeDebateRepo) get(id primitive.ObjectID) (*models.Debate, error) {
	debate, ok := r.debates[id]
	if !ok {
		return nil, models.ErrDebateNotFound
	}
	return debate, nil
}

func (r *fakeDebateRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Debate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	debate, err := r.get(id)
	if err != nil {
		return nil, err
	}
	copied := *debate
	return &copied, nil
}

func (r *fakeDebateRepo) AppendArgument(_ context.Context, id primitive.ObjectID, argument models.Argument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	debate, err := r.get(id)
	if err != nil {
		return err
	}
	if debate.Status == models.StatusCompleted {
		return models.ErrDebateCompleted
	}
	debate.Arguments = append(debate.Arguments, argument)
	return nil
}

func (r *fakeDebateRepo) AddFinalizationRequest(_ context.Context, id primitive.ObjectID, request models.FinalizationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	debate, err := r.get(id)
	if err != nil {
		return err
	}
	if debate.Status == models.StatusCompleted {
		return models.ErrDebateCompleted
	}
	if debate.HasRequested(request.UserID) {
		return models.ErrDuplicateRequest
	}
	debate.FinalizationRequests = append(debate.FinalizationRequests, request)
	if r.afterAddRequest != nil {
		r.afterAddRequest(debate)
	}
	return nil
}

func (r *fakeDebateRepo) ClearFinalizationRequests(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	debate, err := r.get(id)
	if err != nil {
		return err
	}
	debate.FinalizationRequests = nil
	return nil
}

func (r *fakeDebateRepo) BeginFinalization(_ context.Context, id primitive.ObjectID) (*models.Debate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	debate, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if debate.Status == models.StatusCompleted {
		return nil, models.ErrDebateCompleted
	}
	admitted := *debate
	debate.Status = models.StatusCompleted
	return &admitted, nil
}

func (r *fakeDebateRepo) EmbedResult(_ context.Context, id primitive.ObjectID, result *models.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	debate, err := r.get(id)
	if err != nil {
		return err
	}
	debate.Result = result
	return nil
}

// fakeResultRepo stores at most one record per debate id.
type fakeResultRepo struct {
	mu      sync.Mutex
	stored  map[primitive.ObjectID]*models.StoredResult
	upserts int
	misses  int // lookups reported as not-found before the record surfaces
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{stored: make(map[primitive.ObjectID]*models.StoredResult)}
}

func (r *fakeResultRepo) Upsert(_ context.Context, result *models.StoredResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.stored[result.DebateID] = result
	return nil
}

func (r *fakeResultRepo) FindByDebateID(_ context.Context, debateID primitive.ObjectID) (*models.StoredResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.misses > 0 {
		r.misses--
		return nil, models.ErrResultNotFound
	}
	stored, ok := r.stored[debateID]
	if !ok {
		return nil, models.ErrResultNotFound
	}
	return stored, nil
}

// fakeUserRepo records outcome entries per user.
type fakeUserRepo struct {
	mu      sync.Mutex
	entries map[string][]models.DebateHistoryEntry
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{entries: make(map[string][]models.DebateHistoryEntry)}
}

func (r *fakeUserRepo) RecordDebateOutcome(_ context.Context, userID string, entry models.DebateHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries[userID] = append(r.entries[userID], entry)
	return nil
}

// recordingBroadcaster captures room events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) BroadcastToDebate(_ string, event string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) count(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e == event {
			n++
		}
	}
	return n
}

// stubTier returns a fixed result or error.
type stubTier struct {
	name   string
	result *models.AnalysisResult
	err    error
}

func (t stubTier) Name() string { return t.name }

func (t stubTier) Analyze(context.Context, string, []ParticipantArgument) (*models.AnalysisResult, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.result, nil
}

func participantResult(total float64) models.ParticipantResult {
	metric := models.MetricScore{Score: total, Rating: models.RatingFor(total)}
	return models.ParticipantResult{
		Scores: map[string]models.MetricScore{
			"coherence":      metric,
			"evidence":       metric,
			"logic":          metric,
			"persuasiveness": metric,
		},
		Total: total,
	}
}

func testDebate(participants ...string) *models.Debate {
	debate := &models.Debate{
		ID:              primitive.NewObjectID(),
		Topic:           "Should homework be banned?",
		Status:          models.StatusActive,
		MaxParticipants: len(participants),
	}
	for i, name := range participants {
		debate.Participants = append(debate.Participants, models.Participant{
			UserID:      primitive.NewObjectID().Hex(),
			DisplayName: name,
			JoinedAt:    time.Now().Add(time.Duration(i) * time.Second),
		})
	}
	return debate
}

func withArguments(debate *models.Debate, perParticipant int) *models.Debate {
	for _, p := range debate.Participants {
		for i := 0; i < perParticipant; i++ {
			debate.Arguments = append(debate.Arguments, models.Argument{
				ID:          primitive.NewObjectID().Hex(),
				UserID:      p.UserID,
				DisplayName: p.DisplayName,
				Content:     "Homework should be reconsidered because students need more rest.",
				CreatedAt:   time.Now(),
			})
		}
	}
	return debate
}

package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sentinelshield/internal/inference"
	"sentinelshield/internal/models"
	"sentinelshield/internal/risk"
	"sentinelshield/internal/service"
)

// --- Fakes ---

type fakeStates struct {
	mu     sync.Mutex
	states map[string]models.UserState
	err    error
}

func newFakeStates() *fakeStates {
	return &fakeStates{states: make(map[string]models.UserState)}
}

func (f *fakeStates) Get(_ context.Context, userID string) (*models.UserState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.states[userID]; ok {
		copied := s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStates) UpdateAtomic(_ context.Context, userID string, merge func(prior *models.UserState) models.UserState) (models.UserState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.UserState{}, f.err
	}
	var prior *models.UserState
	if s, ok := f.states[userID]; ok {
		copied := s
		prior = &copied
	}
	next := merge(prior)
	next.UserID = userID
	f.states[userID] = next
	return next, nil
}

type fakeEvents struct {
	mu        sync.Mutex
	scored    []*models.ScoredEvent
	media     []*models.MediaAnalysis
	appendErr error
}

func (f *fakeEvents) AppendScoredEvent(_ context.Context, e *models.ScoredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.scored = append(f.scored, e)
	return nil
}

func (f *fakeEvents) AppendMediaAnalysis(_ context.Context, a *models.MediaAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.media = append(f.media, a)
	return nil
}

func (f *fakeEvents) RecentScoredEvents(context.Context, int) ([]*models.ScoredEvent, error) {
	return nil, nil
}

func (f *fakeEvents) RecentMediaAnalyses(context.Context, int) ([]*models.MediaAnalysis, error) {
	return nil, nil
}

func (f *fakeEvents) CountEventsByRiskLevel(context.Context) (map[string]int64, error) {
	return nil, nil
}

type fakeStats struct {
	mu      sync.Mutex
	scanned int64
	flagged int64
	words   []string
	err     error
}

func (f *fakeStats) IncrDaily(_ context.Context, _ string, flagged bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.scanned++
	if flagged {
		f.flagged++
	}
	return nil
}

func (f *fakeStats) GetDaily(_ context.Context, date string) (*models.DailyStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.DailyStat{Date: date, Scanned: f.scanned, Flagged: f.flagged}, nil
}

func (f *fakeStats) RestrictedWords(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.words, nil
}

type fakeNotifier struct {
	mu          sync.Mutex
	escalations []string
	verdicts    []string
}

func (f *fakeNotifier) TextEscalation(userID, _, _ string, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.escalations = append(f.escalations, userID)
}

func (f *fakeNotifier) MediaVerdict(_, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verdicts = append(f.verdicts, label)
}

type fakeTextClassifier struct {
	results []inference.LabelScore
	err     error
}

func (f *fakeTextClassifier) ClassifyText(context.Context, string) ([]inference.LabelScore, error) {
	return f.results, f.err
}

type fakeImageClassifier struct {
	results []inference.LabelScore
	err     error
}

func (f *fakeImageClassifier) ClassifyImage(context.Context, []byte) ([]inference.LabelScore, error) {
	return f.results, f.err
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return f.text, f.err
}

// --- Helpers ---

type deps struct {
	states   *fakeStates
	events   *fakeEvents
	stats    *fakeStats
	notifier *fakeNotifier
}

func newService(t *testing.T, adapter *inference.Adapter) (*service.Service, *deps) {
	t.Helper()
	d := &deps{
		states:   newFakeStates(),
		events:   &fakeEvents{},
		stats:    &fakeStats{words: []string{"hate"}},
		notifier: &fakeNotifier{},
	}
	svc := service.NewService(adapter, d.states, d.events, d.stats, d.notifier,
		zap.NewNop(), 5*time.Second, risk.PolicyStandard, []string{"fallback"})
	return svc, d
}

func textAdapter(results []inference.LabelScore, err error) *inference.Adapter {
	return &inference.Adapter{Text: &fakeTextClassifier{results: results, err: err}}
}

// --- Tests ---

func TestModerateText_EndToEnd(t *testing.T) {
	// toxicity 0.5 plus one restricted hit, no history: 0.5*40 + 25 = 45.
	svc, d := newService(t, textAdapter([]inference.LabelScore{{Label: "toxic", Score: 0.5}}, nil))

	res, err := svc.ModerateText(context.Background(), models.Submission{
		Platform:    "discord",
		UserID:      "u1",
		ContentType: models.ContentTypeText,
		Content:     "I hate you",
	})
	require.NoError(t, err)

	assert.Equal(t, risk.PolicyStandard, res.Policy)
	assert.InDelta(t, 0.5, res.Toxicity, 1e-9)
	assert.Equal(t, 45, res.RiskScore)
	assert.Equal(t, risk.LevelAggressive, res.RiskLevel)

	assert.Equal(t, int64(1), res.State.TotalScanned)
	assert.Equal(t, int64(1), res.State.FlaggedCount)
	assert.Equal(t, models.TargetUnknown, res.State.LastTargetID, "empty target defaults to unknown")

	require.Len(t, d.events.scored, 1)
	assert.Equal(t, 45, d.events.scored[0].RiskScore)
	assert.Equal(t, int64(1), d.stats.scanned)
	assert.Equal(t, int64(1), d.stats.flagged)
	assert.Empty(t, d.notifier.escalations, "Aggressive does not alert")
}

func TestModerateText_PriorHistoryFeedsFormula(t *testing.T) {
	svc, d := newService(t, textAdapter([]inference.LabelScore{{Label: "toxic", Score: 0.5}}, nil))
	d.states.states["u1"] = models.UserState{
		UserID:          "u1",
		TotalScanned:    4,
		WarningsIgnored: 2,
		LastTargetID:    "victim",
	}

	// 0.5*40 + 1*25 + 2*5 + 1*15 = 70: the repeated-target increment for
	// hitting the stored target again participates in this event's score.
	res, err := svc.ModerateText(context.Background(), models.Submission{
		Platform:     "discord",
		UserID:       "u1",
		TargetUserID: "victim",
		ContentType:  models.ContentTypeText,
		Content:      "hate",
	})
	require.NoError(t, err)

	assert.Equal(t, 70, res.RiskScore)
	assert.Equal(t, risk.LevelEscalating, res.RiskLevel)
	assert.Equal(t, int64(1), res.State.RepeatedTargeting)
	assert.Equal(t, []string{"u1"}, d.notifier.escalations, "Escalating alerts moderators")
}

func TestModerateText_SimplifiedPolicy(t *testing.T) {
	svc, _ := newService(t, textAdapter([]inference.LabelScore{{Label: "toxic", Score: 0.95}}, nil))

	res, err := svc.ModerateText(context.Background(), models.Submission{
		Platform:    "x",
		UserID:      "u1",
		ContentType: models.ContentTypeText,
		Content:     "something vile",
		Policy:      risk.PolicySimplified,
	})
	require.NoError(t, err)

	assert.Equal(t, risk.PolicySimplified, res.Policy)
	assert.Equal(t, 95, res.RiskScore)
	assert.Equal(t, risk.LevelCritical, res.RiskLevel)
}

func TestModerateText_UnknownPolicyRejected(t *testing.T) {
	svc, _ := newService(t, textAdapter(nil, nil))

	_, err := svc.ModerateText(context.Background(), models.Submission{
		Platform:    "x",
		UserID:      "u1",
		ContentType: models.ContentTypeText,
		Content:     "hi",
		Policy:      "aggressive-merge",
	})
	require.Error(t, err)
}

func TestModerateText_ClassifierFailureDegradesToNeutral(t *testing.T) {
	svc, _ := newService(t, textAdapter(nil, errors.New("model sidecar down")))

	res, err := svc.ModerateText(context.Background(), models.Submission{
		Platform:    "x",
		UserID:      "u1",
		ContentType: models.ContentTypeText,
		Content:     "perfectly fine text",
	})
	require.NoError(t, err, "inference failure must not fail the request")
	assert.Equal(t, 0.0, res.Toxicity)
	assert.Equal(t, 0, res.RiskScore)
	assert.Equal(t, risk.LevelCalm, res.RiskLevel)
}

func TestModerateText_NoClassifierConfigured(t *testing.T) {
	svc, _ := newService(t, &inference.Adapter{})

	res, err := svc.ModerateText(context.Background(), models.Submission{
		Platform:    "x",
		UserID:      "u1",
		ContentType: models.ContentTypeText,
		Content:     "hate",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Toxicity)
	assert.Equal(t, 25, res.RiskScore, "restricted words still score without a classifier")
}

func TestModerateText_StateMergeFailureAborts(t *testing.T) {
	svc, d := newService(t, textAdapter(nil, nil))
	d.states.err = errors.New("database down")

	_, err := svc.ModerateText(context.Background(), models.Submission{
		Platform:    "x",
		UserID:      "u1",
		ContentType: models.ContentTypeText,
		Content:     "hi",
	})
	require.Error(t, err, "the user-state merge is the primary write")
	assert.Empty(t, d.events.scored)
}

func TestModerateText_EventAppendFailureIsTolerated(t *testing.T) {
	svc, d := newService(t, textAdapter(nil, nil))
	d.events.appendErr = errors.New("log table busy")

	res, err := svc.ModerateText(context.Background(), models.Submission{
		Platform:    "x",
		UserID:      "u1",
		ContentType: models.ContentTypeText,
		Content:     "hi",
	})
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestModerateText_WordListFallback(t *testing.T) {
	svc, d := newService(t, textAdapter(nil, nil))
	d.stats.err = errors.New("redis down")

	// "fallback" is in the configured fallback list; counters will also
	// fail but that is tolerated.
	res, err := svc.ModerateText(context.Background(), models.Submission{
		Platform:    "x",
		UserID:      "u1",
		ContentType: models.ContentTypeText,
		Content:     "totally fallback content",
	})
	require.NoError(t, err)
	assert.Equal(t, 25, res.RiskScore)
}

// The rolling average and counters must hold up under concurrent
// submissions, and N increments must never lose an update.
func TestModerateText_ConcurrentSubmissions(t *testing.T) {
	svc, d := newService(t, textAdapter([]inference.LabelScore{{Label: "toxic", Score: 0.6}}, nil))

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.ModerateText(context.Background(), models.Submission{
				Platform:    "x",
				UserID:      "shared-user",
				ContentType: models.ContentTypeText,
				Content:     "some text",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(n), d.stats.scanned, "no lost daily increments")

	state, err := d.states.Get(context.Background(), "shared-user")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(n), state.TotalScanned)
	assert.InDelta(t, 0.6, state.AvgToxicity, 1e-9)
}

func TestAnalyzeMedia_ImageAndAudio(t *testing.T) {
	adapter := &inference.Adapter{
		Text:   &fakeTextClassifier{results: []inference.LabelScore{{Label: "toxic", Score: 0.8}}},
		Image:  &fakeImageClassifier{results: []inference.LabelScore{{Label: "deepfake", Score: 0.85}}},
		Speech: &fakeTranscriber{text: "threatening words"},
	}
	svc, d := newService(t, adapter)

	analysis, err := svc.AnalyzeMedia(context.Background(), service.MediaRequest{
		UserID:    "u1",
		MediaType: "image",
		Image:     []byte{0xff, 0xd8},
		Audio:     []byte{0x52, 0x49},
	})
	require.NoError(t, err)

	// deepfake 85 and audio toxicity 80: the audio rule lands on an
	// active deepfake flag and upgrades it.
	assert.Equal(t, risk.VerdictWeaponizedDeepfake, analysis.AuthenticityLabel)
	assert.InDelta(t, 85, analysis.DeepfakeProbability, 1e-9)
	assert.InDelta(t, 0.8, analysis.AudioToxicity, 1e-9)
	assert.Equal(t, "threatening words", analysis.Transcript)

	require.Len(t, d.events.media, 1)
	assert.Equal(t, []string{risk.VerdictWeaponizedDeepfake}, d.notifier.verdicts)
	assert.Equal(t, int64(1), d.stats.flagged)
}

func TestAnalyzeMedia_MissingModalitiesAreSkipped(t *testing.T) {
	adapter := &inference.Adapter{
		Image: &fakeImageClassifier{results: []inference.LabelScore{{Label: "nsfw", Score: 0.65}}},
	}
	svc, _ := newService(t, adapter)

	analysis, err := svc.AnalyzeMedia(context.Background(), service.MediaRequest{
		UserID:    "u1",
		MediaType: "image",
		Image:     []byte{0xff},
	})
	require.NoError(t, err)
	assert.Equal(t, risk.VerdictAbusiveVisuals, analysis.AuthenticityLabel)
	assert.Empty(t, analysis.Transcript)
	assert.Equal(t, 0.0, analysis.AudioToxicity)
}

func TestAnalyzeMedia_AllClassifiersDownStillAnswers(t *testing.T) {
	svc, _ := newService(t, &inference.Adapter{})

	analysis, err := svc.AnalyzeMedia(context.Background(), service.MediaRequest{
		UserID:    "u1",
		MediaType: "image",
		Image:     []byte{0xff},
		Audio:     []byte{0x52},
	})
	require.NoError(t, err)
	assert.Equal(t, risk.VerdictReal, analysis.AuthenticityLabel)
}

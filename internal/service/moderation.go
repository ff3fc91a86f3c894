// Package service orchestrates one submission end to end: inference,
// scoring, the per-user state merge, the audit log and the daily
// counters.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sentinelshield/internal/inference"
	"sentinelshield/internal/models"
	"sentinelshield/internal/observability"
	"sentinelshield/internal/repository"
	"sentinelshield/internal/risk"
)

// AlertNotifier pushes escalation alerts to moderators. Implementations
// must never fail the request.
type AlertNotifier interface {
	TextEscalation(userID, platform, riskLevel string, riskScore int)
	MediaVerdict(userID, label string)
}

// TextResult is the outcome of scoring one text submission.
type TextResult struct {
	Policy    string
	Toxicity  float64
	RiskScore int
	RiskLevel string
	State     models.UserState
	Timestamp time.Time
}

// MediaRequest is one media submission. Nil modality payloads mean the
// caller didn't provide (or couldn't read) that modality; it is skipped
// and the remaining ones are still analyzed.
type MediaRequest struct {
	UserID    string
	MediaType string
	Image     []byte
	Audio     []byte
}

// Service wires the risk core to its collaborators.
type Service struct {
	adapter          *inference.Adapter
	states           repository.UserStateRepository
	events           repository.EventRepository
	stats            repository.StatsRepository
	notifier         AlertNotifier
	logger           *zap.Logger
	inferenceTimeout time.Duration
	defaultPolicy    string
	fallbackWords    []string
}

// NewService creates the moderation service. notifier may wrap a nil
// Telegram client; the nil methods are no-ops.
func NewService(
	adapter *inference.Adapter,
	states repository.UserStateRepository,
	events repository.EventRepository,
	stats repository.StatsRepository,
	notifier AlertNotifier,
	logger *zap.Logger,
	inferenceTimeout time.Duration,
	defaultPolicy string,
	fallbackWords []string,
) *Service {
	return &Service{
		adapter:          adapter,
		states:           states,
		events:           events,
		stats:            stats,
		notifier:         notifier,
		logger:           logger,
		inferenceTimeout: inferenceTimeout,
		defaultPolicy:    defaultPolicy,
		fallbackWords:    fallbackWords,
	}
}

// ModerateText scores one text submission.
//
// Failure policy: classifier errors degrade to a neutral toxicity of 0
// and the request proceeds; a failed user-state merge is the primary
// write and aborts the request; event-log appends and daily-counter
// bumps are logged and never fail the request.
func (s *Service) ModerateText(ctx context.Context, sub models.Submission) (*TextResult, error) {
	done := observability.TimeProcessing("moderate")
	defer done()

	now := time.Now()
	target := sub.TargetUserID
	if target == "" {
		target = models.TargetUnknown
	}
	policy := sub.Policy
	if policy == "" {
		policy = s.defaultPolicy
	}
	if policy != risk.PolicyStandard && policy != risk.PolicySimplified {
		return nil, fmt.Errorf("unknown scoring policy %q", policy)
	}

	words := s.restrictedWords(ctx)
	toxicity := s.textToxicity(ctx, sub.Content)
	restrictedHits := risk.CountRestricted(sub.Content, words)

	var riskScore int
	var riskLevel string
	state, err := s.states.UpdateAtomic(ctx, sub.UserID, func(prior *models.UserState) models.UserState {
		repeated := risk.NextRepeatedTargeting(prior, target)
		var warnings int64
		if prior != nil {
			warnings = prior.WarningsIgnored
		}

		switch policy {
		case risk.PolicySimplified:
			riskScore, riskLevel = risk.ComputeSimplified(toxicity)
		default:
			riskScore, riskLevel = risk.ComputeRisk(toxicity, restrictedHits, warnings, repeated)
		}

		return risk.UpdateUserState(prior, toxicity, target, riskScore, riskLevel, sub.Platform, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist user state: %w", err)
	}

	event := &models.ScoredEvent{
		UserID:        sub.UserID,
		Platform:      sub.Platform,
		Content:       sub.Content,
		ToxicityScore: toxicity,
		RiskScore:     riskScore,
		RiskLevel:     riskLevel,
		Timestamp:     now,
	}
	if err := s.events.AppendScoredEvent(ctx, event); err != nil {
		s.logger.Error("Failed to append scored event", zap.String("user_id", sub.UserID), zap.Error(err))
	}

	s.bumpDaily(ctx, now, riskScore > risk.FlagThreshold)

	observability.RecordModeration(policy, riskLevel)
	if riskLevel == risk.LevelEscalating || riskLevel == risk.LevelCritical {
		observability.RecordEscalation()
		if s.notifier != nil {
			s.notifier.TextEscalation(sub.UserID, sub.Platform, riskLevel, riskScore)
		}
	}

	return &TextResult{
		Policy:    policy,
		Toxicity:  toxicity,
		RiskScore: riskScore,
		RiskLevel: riskLevel,
		State:     state,
		Timestamp: now,
	}, nil
}

// AnalyzeMedia scores one media submission. Missing or unreadable
// modalities are skipped; an unavailable classifier degrades that signal
// to 0 rather than failing the request.
func (s *Service) AnalyzeMedia(ctx context.Context, req MediaRequest) (*models.MediaAnalysis, error) {
	done := observability.TimeProcessing("analyze_media")
	defer done()

	now := time.Now()

	var deepfakePct, abusePct float64
	if len(req.Image) > 0 {
		deepfakePct, abusePct = s.imageScores(ctx, req.Image)
	}

	var transcript string
	var audioTox float64
	if len(req.Audio) > 0 {
		transcript = s.transcribe(ctx, req.Audio)
		if transcript != "" {
			audioTox = s.textToxicity(ctx, transcript)
		}
	}

	label := risk.ClassifyMedia(deepfakePct, abusePct, audioTox*100)

	analysis := &models.MediaAnalysis{
		MediaType:           req.MediaType,
		UserID:              req.UserID,
		AuthenticityLabel:   label,
		DeepfakeProbability: deepfakePct,
		AbuseProbability:    abusePct,
		AudioToxicity:       audioTox,
		Transcript:          transcript,
		Timestamp:           now,
	}
	if err := s.events.AppendMediaAnalysis(ctx, analysis); err != nil {
		s.logger.Error("Failed to append media analysis", zap.String("user_id", req.UserID), zap.Error(err))
	}

	s.bumpDaily(ctx, now, label != risk.VerdictReal)

	observability.RecordModeration("media", label)
	if label != risk.VerdictReal {
		observability.RecordEscalation()
		if s.notifier != nil {
			s.notifier.MediaVerdict(req.UserID, label)
		}
	}

	return analysis, nil
}

// restrictedWords re-reads the shared word list; the dashboard edits it
// between requests. Falls back to the static configured list when the
// store is unreachable.
func (s *Service) restrictedWords(ctx context.Context) []string {
	readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	words, err := s.stats.RestrictedWords(readCtx)
	if err != nil {
		s.logger.Warn("Failed to read restricted words, using configured fallback", zap.Error(err))
		return s.fallbackWords
	}
	return words
}

func (s *Service) textToxicity(ctx context.Context, text string) float64 {
	if text == "" {
		return 0
	}
	if s.adapter == nil || s.adapter.Text == nil {
		s.logger.Warn("Text classifier unavailable, using neutral toxicity")
		observability.RecordInferenceFailure("text")
		return 0
	}

	classifyCtx, cancel := context.WithTimeout(ctx, s.inferenceTimeout)
	defer cancel()

	results, err := s.adapter.Text.ClassifyText(classifyCtx, inference.TruncateText(text))
	if err != nil {
		s.logger.Error("Text classification failed, using neutral toxicity", zap.Error(err))
		observability.RecordInferenceFailure("text")
		return 0
	}
	return risk.Clamp01(inference.ToxicScore(results))
}

func (s *Service) imageScores(ctx context.Context, image []byte) (deepfakePct, abusePct float64) {
	if s.adapter == nil || s.adapter.Image == nil {
		s.logger.Warn("Image classifier unavailable, using neutral scores")
		observability.RecordInferenceFailure("image")
		return 0, 0
	}

	classifyCtx, cancel := context.WithTimeout(ctx, s.inferenceTimeout)
	defer cancel()

	results, err := s.adapter.Image.ClassifyImage(classifyCtx, image)
	if err != nil {
		s.logger.Error("Image classification failed, using neutral scores", zap.Error(err))
		observability.RecordInferenceFailure("image")
		return 0, 0
	}
	return inference.DeepfakeProbability(results), inference.AbuseProbability(results)
}

func (s *Service) transcribe(ctx context.Context, audio []byte) string {
	if s.adapter == nil || s.adapter.Speech == nil {
		s.logger.Warn("Transcriber unavailable, skipping audio analysis")
		observability.RecordInferenceFailure("speech")
		return ""
	}

	// Transcription is the slowest call in the pipeline; give it the
	// full budget but never more.
	transcribeCtx, cancel := context.WithTimeout(ctx, s.inferenceTimeout)
	defer cancel()

	transcript, err := s.adapter.Speech.Transcribe(transcribeCtx, audio)
	if err != nil {
		s.logger.Error("Transcription failed, skipping audio analysis", zap.Error(err))
		observability.RecordInferenceFailure("speech")
		return ""
	}
	return transcript
}

func (s *Service) bumpDaily(ctx context.Context, now time.Time, flagged bool) {
	incrCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.stats.IncrDaily(incrCtx, now.Format("2006-01-02"), flagged); err != nil {
		s.logger.Error("Failed to update daily stats", zap.Error(err))
	}
}

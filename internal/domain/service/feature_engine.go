package service

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/altlend/decisioning/internal/domain/model"
)

// ---------------------------------------------------------------------------
// FeatureEngine – total computation of the borrower_behavior feature set
// ---------------------------------------------------------------------------

// Current feature schema. The key set is fixed per (set, version) pair; adding
// or removing a feature definition requires a new version tag.
const (
	FeatureSetName    = "borrower_behavior"
	FeatureVersionTag = "v2"
)

// Quality-warning codes accumulated on the vector. Critical codes zero the
// quality score; minor codes degrade it.
const (
	WarnNoEventData          = "no_event_data"
	WarnMissingBorrowerID    = "missing_borrower_id"
	WarnEventWindowTruncated = "event_window_truncated"
	WarnFeatureDefaulted     = "feature_default_applied"
)

// FeatureDefinition declares one feature: its name, numeric range, and
// computation. Compute may fail; the engine substitutes the range minimum and
// records a warning instead of propagating the error.
type FeatureDefinition struct {
	Name    string
	Min     float64
	Max     float64
	Compute func(profile model.BorrowerProfile, events []model.BehavioralEvent, now time.Time) (float64, error)
}

// FeatureEngineConfig bounds the raw event scan for predictable latency.
type FeatureEngineConfig struct {
	LookbackWindow time.Duration
	MaxEvents      int
}

// DefaultFeatureEngineConfig returns the documented scan bounds.
func DefaultFeatureEngineConfig() FeatureEngineConfig {
	return FeatureEngineConfig{
		LookbackWindow: 30 * 24 * time.Hour,
		MaxEvents:      5000,
	}
}

// FeatureEngine computes versioned feature vectors from raw borrower history.
// It is unconditionally total: it always returns a vector, degraded to safe
// defaults and quality warnings when inputs are missing or malformed, and
// downstream consumers decide whether the degraded quality is acceptable.
type FeatureEngine struct {
	cfg    FeatureEngineConfig
	defs   []FeatureDefinition
	logger *slog.Logger
}

// NewFeatureEngine creates an engine with the v2 borrower_behavior schema.
func NewFeatureEngine(cfg FeatureEngineConfig, logger *slog.Logger) *FeatureEngine {
	if cfg.LookbackWindow <= 0 {
		cfg.LookbackWindow = DefaultFeatureEngineConfig().LookbackWindow
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = DefaultFeatureEngineConfig().MaxEvents
	}
	return &FeatureEngine{
		cfg:    cfg,
		defs:   behaviorV2Definitions(),
		logger: logger,
	}
}

// Keys returns the fixed key set of the engine's (set, version) pair.
func (e *FeatureEngine) Keys() []string {
	keys := make([]string, 0, len(e.defs))
	for _, d := range e.defs {
		keys = append(keys, d.Name)
	}
	sort.Strings(keys)
	return keys
}

// Compute derives the feature vector for a borrower. It never fails: missing
// event data becomes an empty window plus a warning, per-feature errors become
// clamped defaults plus a warning, and the composite quality score reflects
// how degraded the result is.
func (e *FeatureEngine) Compute(
	profile model.BorrowerProfile,
	rawEvents []model.BehavioralEvent,
	now time.Time,
) model.FeatureVector {
	var warnings []string
	critical := false

	borrowerID := profile.BorrowerID
	if borrowerID == "" {
		borrowerID = "unknown"
		warnings = append(warnings, WarnMissingBorrowerID)
		critical = true
	}

	if rawEvents == nil {
		warnings = append(warnings, WarnNoEventData)
		critical = true
		rawEvents = []model.BehavioralEvent{}
	}

	events, truncated := e.boundEvents(rawEvents, now)
	if truncated {
		warnings = append(warnings, WarnEventWindowTruncated)
	}

	features := make(map[string]float64, len(e.defs))
	for _, def := range e.defs {
		value, err := safeCompute(def, profile, events, now)
		if err != nil {
			e.logger.Debug("feature computation degraded",
				"feature", def.Name,
				"borrower_id", borrowerID,
				"error", err,
			)
			warnings = append(warnings, fmt.Sprintf("%s:%s", WarnFeatureDefaulted, def.Name))
			value = def.Min
		}
		features[def.Name] = clamp(value, def.Min, def.Max)
	}

	quality := qualityFromWarnings(len(warnings), critical)

	vector, err := model.NewFeatureVector(
		borrowerID, FeatureSetName, FeatureVersionTag,
		features, quality, warnings, now, len(events),
	)
	if err != nil {
		// Unreachable with the sanitized inputs above; kept so a future schema
		// change cannot silently break totality.
		e.logger.Error("feature vector construction failed", "error", err)
		vector, _ = model.NewFeatureVector(
			"unknown", FeatureSetName, FeatureVersionTag,
			features, 0, append(warnings, WarnMissingBorrowerID), now, len(events),
		)
	}
	return vector
}

// boundEvents filters to the lookback window, newest first, and enforces the
// event-count ceiling.
func (e *FeatureEngine) boundEvents(raw []model.BehavioralEvent, now time.Time) ([]model.BehavioralEvent, bool) {
	cutoff := now.Add(-e.cfg.LookbackWindow)

	inWindow := make([]model.BehavioralEvent, 0, len(raw))
	for _, evt := range raw {
		if evt.OccurredAt.After(cutoff) && !evt.OccurredAt.After(now) {
			inWindow = append(inWindow, evt)
		}
	}
	sort.Slice(inWindow, func(i, j int) bool {
		return inWindow[i].OccurredAt.After(inWindow[j].OccurredAt)
	})

	if len(inWindow) > e.cfg.MaxEvents {
		return inWindow[:e.cfg.MaxEvents], true
	}
	return inWindow, false
}

// safeCompute isolates a feature computation, converting panics into errors so
// one malformed event can never abort the whole vector.
func safeCompute(
	def FeatureDefinition,
	profile model.BorrowerProfile,
	events []model.BehavioralEvent,
	now time.Time,
) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("feature %s panicked: %v", def.Name, r)
		}
	}()
	return def.Compute(profile, events, now)
}

// qualityFromWarnings maps the warning census to a composite quality score.
func qualityFromWarnings(count int, critical bool) float64 {
	if critical {
		return 0.0
	}
	switch count {
	case 0:
		return 1.0
	case 1:
		return 0.7
	case 2:
		return 0.6
	default:
		return 0.4
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ---------------------------------------------------------------------------
// borrower_behavior v2 definitions
// ---------------------------------------------------------------------------

func behaviorV2Definitions() []FeatureDefinition {
	return []FeatureDefinition{
		{
			Name: "transaction_volume_30d",
			Min:  0, Max: 1e9,
			Compute: func(_ model.BorrowerProfile, events []model.BehavioralEvent, _ time.Time) (float64, error) {
				total := 0.0
				for _, evt := range events {
					if evt.Type == model.EventTypeTransaction {
						total += evt.Amount.Abs().InexactFloat64()
					}
				}
				return total, nil
			},
		},
		{
			Name: "activity_consistency",
			Min:  0, Max: 100,
			Compute: func(_ model.BorrowerProfile, events []model.BehavioralEvent, _ time.Time) (float64, error) {
				if len(events) == 0 {
					return 0, nil
				}
				activeDays := make(map[string]struct{})
				for _, evt := range events {
					activeDays[evt.OccurredAt.UTC().Format("2006-01-02")] = struct{}{}
				}
				return float64(len(activeDays)) / 30.0 * 100.0, nil
			},
		},
		{
			Name: "payment_punctuality",
			Min:  0, Max: 100,
			Compute: func(_ model.BorrowerProfile, events []model.BehavioralEvent, _ time.Time) (float64, error) {
				var payments, onTime int
				for _, evt := range events {
					if evt.Type != model.EventTypePayment {
						continue
					}
					payments++
					if evt.OnTime {
						onTime++
					}
				}
				if payments == 0 {
					return 0, fmt.Errorf("no payment events in window")
				}
				return float64(onTime) / float64(payments) * 100.0, nil
			},
		},
		{
			Name: "account_age_days",
			Min:  0, Max: 36500,
			Compute: func(profile model.BorrowerProfile, _ []model.BehavioralEvent, now time.Time) (float64, error) {
				if profile.AccountOpenedAt.IsZero() {
					return 0, fmt.Errorf("account opening date unknown")
				}
				age := now.Sub(profile.AccountOpenedAt)
				return age.Hours() / 24.0, nil
			},
		},
		{
			Name: "event_frequency_30d",
			Min:  0, Max: 10000,
			Compute: func(_ model.BorrowerProfile, events []model.BehavioralEvent, _ time.Time) (float64, error) {
				return float64(len(events)), nil
			},
		},
		{
			Name: "linked_account_count",
			Min:  0, Max: 100,
			Compute: func(profile model.BorrowerProfile, _ []model.BehavioralEvent, _ time.Time) (float64, error) {
				return float64(profile.LinkedAccounts), nil
			},
		},
	}
}

package transcript

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// AttemptRecord captures one strategy invocation (or cooldown skip) while
// servicing a single request. Kept only for diagnostics and the final
// aggregated error.
type AttemptRecord struct {
	Strategy string
	Kind     OutcomeKind
	Verdict  string // "accepted", "rejected: <reason>" or empty
	Elapsed  time.Duration
	Skipped  bool // true when the cooldown tracker vetoed the call
}

// Result is the single canonical outcome of one extraction request.
type Result struct {
	Text         string
	Title        string
	StrategyUsed string
	Attempts     []AttemptRecord
}

// ErrKindTimeout is the aggregated error kind when the request deadline
// expired before a strategy could succeed.
const ErrKindTimeout = "Timeout"

// ExhaustedError is returned when every strategy has been tried (or skipped)
// without an accepted result. Kind is the majority-vote aggregation over the
// recorded attempt outcomes.
type ExhaustedError struct {
	Kind     string
	Attempts []AttemptRecord
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("transcript extraction exhausted after %d attempts: %s", len(e.Attempts), e.Kind)
}

// Orchestrator drives the ordered strategy list against the cooldown tracker
// and validator, producing one accepted result or an aggregated failure.
// Strategy attempts within a request are strictly sequential so that a later
// strategy observes the cooldown state written by an earlier one.
type Orchestrator struct {
	strategies []Strategy
	cooldown   *Cooldown
	validator  *Validator
	logger     *zap.Logger

	now func() time.Time
}

// NewOrchestrator builds an orchestrator over the given strategies, sorted by
// ascending priority.
func NewOrchestrator(strategies []Strategy, cd *Cooldown, v *Validator, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	sorted := make([]Strategy, len(strategies))
	copy(sorted, strategies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Orchestrator{
		strategies: sorted,
		cooldown:   cd,
		validator:  v,
		logger:     logger,
		now:        time.Now,
	}
}

// Extract services one request. Exactly zero or one accepted Success is ever
// returned; all transient failures are absorbed here and only the aggregated
// outcome crosses this boundary.
func (o *Orchestrator) Extract(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithDeadline(ctx, req.Deadline)
	defer cancel()

	var attempts []AttemptRecord

	for _, s := range o.strategies {
		if !o.now().Before(req.Deadline) {
			o.logger.Warn("deadline reached before attempt",
				zap.String("video_id", req.VideoID),
				zap.Int("attempts", len(attempts)))
			return nil, &ExhaustedError{Kind: ErrKindTimeout, Attempts: attempts}
		}

		if !languagesOverlap(s.Languages(), req.Languages) {
			o.logger.Debug("strategy skipped, no capable language",
				zap.String("strategy", s.ID()))
			continue
		}

		if !o.cooldown.Allowed(s.HostKey()) {
			// Active cooldown window: count the attempt as rate limited
			// without burning a round trip.
			attempts = append(attempts, AttemptRecord{
				Strategy: s.ID(),
				Kind:     KindRateLimited,
				Skipped:  true,
			})
			o.logger.Debug("strategy skipped, host cooling down",
				zap.String("strategy", s.ID()),
				zap.String("host", s.HostKey()),
				zap.Time("next_allowed", o.cooldown.NextAllowed(s.HostKey())))
			continue
		}

		start := o.now()
		outcome := s.Execute(ctx, req)
		elapsed := o.now().Sub(start)

		rec := AttemptRecord{Strategy: s.ID(), Kind: outcome.Kind, Elapsed: elapsed}
		o.cooldown.RecordWithHint(s.HostKey(), outcome.Kind, outcome.RetryAfter)

		if outcome.Kind == KindSuccess {
			verdict := o.validator.Validate(outcome, req.Languages)
			if verdict.Accepted {
				rec.Verdict = "accepted"
				attempts = append(attempts, rec)
				o.logger.Info("transcript extracted",
					zap.String("video_id", req.VideoID),
					zap.String("strategy", s.ID()),
					zap.Int("chars", len(outcome.Text)),
					zap.Int("attempts", len(attempts)),
					zap.Duration("elapsed", elapsed))
				return &Result{
					Text:         outcome.Text,
					Title:        outcome.Title,
					StrategyUsed: s.ID(),
					Attempts:     attempts,
				}, nil
			}
			// A rejected success continues the search like a transient error.
			rec.Verdict = "rejected: " + verdict.Reason
			o.logger.Warn("candidate rejected",
				zap.String("strategy", s.ID()),
				zap.String("reason", verdict.Reason))
		} else {
			o.logger.Debug("strategy failed",
				zap.String("strategy", s.ID()),
				zap.String("kind", outcome.Kind.String()),
				zap.String("detail", outcome.Detail),
				zap.String("reason", outcome.Reason))
		}
		attempts = append(attempts, rec)
	}

	return nil, &ExhaustedError{Kind: aggregateKind(attempts), Attempts: attempts}
}

// aggregateKind picks the caller-visible error kind by majority vote over the
// recorded outcome kinds: a strict majority of RateLimited attempts reports
// RateLimited, otherwise any NotAvailable reports NotAvailable, otherwise
// UnknownError.
func aggregateKind(attempts []AttemptRecord) string {
	limited := 0
	notAvailable := false
	for _, a := range attempts {
		switch a.Kind {
		case KindRateLimited:
			limited++
		case KindNotAvailable:
			notAvailable = true
		}
	}
	switch {
	case limited*2 > len(attempts):
		return KindRateLimited.String()
	case notAvailable:
		return KindNotAvailable.String()
	default:
		return KindUnknown.String()
	}
}

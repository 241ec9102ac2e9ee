package transcript

import "time"

// OutcomeKind classifies the result of a single strategy attempt.
type OutcomeKind int

const (
	// KindSuccess means the strategy produced candidate text.
	KindSuccess OutcomeKind = iota
	// KindRateLimited means the remote host pushed back (HTTP 429 or equivalent).
	KindRateLimited
	// KindNotAvailable means the resource exists but has no captions, or is missing.
	KindNotAvailable
	// KindTransient covers network errors, timeouts and parse hiccups worth
	// retrying with the next strategy.
	KindTransient
	// KindUnknown is everything the strategy could not classify.
	KindUnknown
)

func (k OutcomeKind) String() string {
	switch k {
	case KindSuccess:
		return "Success"
	case KindRateLimited:
		return "RateLimited"
	case KindNotAvailable:
		return "NotAvailable"
	case KindTransient:
		return "TransientError"
	default:
		return "UnknownError"
	}
}

// Outcome is the canonical result of one strategy invocation. Each strategy
// translates its backend's native success/failure signal (HTTP status, exit
// code, structured error) into exactly one of these variants; nothing outside
// the strategy ever branches on backend shape. Outcomes are never mutated
// after construction.
type Outcome struct {
	Kind OutcomeKind

	// Success fields.
	Text          string
	Title         string
	RawEntryCount int
	Backend       map[string]string

	// RateLimited hint, zero when the backend gave none.
	RetryAfter time.Duration

	// NotAvailable reason.
	Reason string

	// Transient/Unknown detail.
	Detail string
}

// Success builds a Success outcome. backend carries strategy-specific
// metadata such as the caption language actually served.
func Success(text, title string, entries int, backend map[string]string) Outcome {
	return Outcome{Kind: KindSuccess, Text: text, Title: title, RawEntryCount: entries, Backend: backend}
}

// RateLimited builds a RateLimited outcome with an optional retry hint.
func RateLimited(retryAfter time.Duration) Outcome {
	return Outcome{Kind: KindRateLimited, RetryAfter: retryAfter}
}

// NotAvailable builds a NotAvailable outcome (captions disabled, video gone).
func NotAvailable(reason string) Outcome {
	return Outcome{Kind: KindNotAvailable, Reason: reason}
}

// Transient builds a TransientError outcome.
func Transient(detail string) Outcome {
	return Outcome{Kind: KindTransient, Detail: detail}
}

// Unknown builds an UnknownError outcome.
func Unknown(detail string) Outcome {
	return Outcome{Kind: KindUnknown, Detail: detail}
}

// Request describes one caller-visible extraction attempt. It is immutable
// once created; a caller that wants another try issues a new Request with a
// fresh deadline.
type Request struct {
	// VideoID is the opaque resource identifier (a YouTube video ID here).
	VideoID string
	// Languages is the ordered list of acceptable language tags. Empty means
	// any language.
	Languages []string
	// Deadline is the absolute time after which no new attempt may start and
	// in-flight attempts are cancelled.
	Deadline time.Time
}

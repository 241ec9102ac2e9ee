package transcript

import "context"

// Strategy is one concrete way of obtaining transcript text for a remote
// resource. Implementations are interchangeable and ranked by priority;
// the orchestrator tries them in ascending priority order.
type Strategy interface {
	// ID returns the unique identifier for this strategy.
	ID() string

	// Priority ranks strategies; lower is tried first.
	Priority() int

	// HostKey identifies the remote service this strategy talks to, for
	// cooldown bookkeeping. Strategies hitting independently rate-limited
	// endpoints use distinct keys.
	HostKey() string

	// Languages returns the language tags this strategy can serve, or nil
	// for any language.
	Languages() []string

	// Execute runs one attempt. It must respect ctx and return promptly
	// (with a TransientError outcome) rather than block past the request
	// deadline.
	Execute(ctx context.Context, req Request) Outcome
}

// languagesOverlap reports whether a strategy capable of capable can serve at
// least one of the requested tags. A nil/empty capable set means any language;
// an empty request means the caller takes whatever it gets.
func languagesOverlap(capable, requested []string) bool {
	if len(capable) == 0 || len(requested) == 0 {
		return true
	}
	for _, want := range requested {
		for _, have := range capable {
			if matchLanguage(have, want) {
				return true
			}
		}
	}
	return false
}

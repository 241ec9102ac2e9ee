package transcript

import (
	"strings"
	"unicode/utf8"
)

const defaultMinTextLength = 200

// Known placeholder bodies served instead of captions when the origin blocks
// the caller. Matched case-insensitively as substrings.
var defaultBlockedFingerprints = []string{
	"sign in to confirm you're not a bot",
	"our systems have detected unusual traffic",
}

// Verdict is the validator's decision about a Success outcome.
type Verdict struct {
	Accepted bool
	Reason   string
}

func accepted() Verdict              { return Verdict{Accepted: true} }
func rejected(reason string) Verdict { return Verdict{Reason: reason} }

// Validator scores candidate Success outcomes before the orchestrator will
// return them. Rules apply in order; the first match wins.
type Validator struct {
	MinTextLength       int
	BlockedFingerprints []string
}

// NewValidator builds a validator. Zero/nil fields select the defaults.
func NewValidator(minLength int, fingerprints []string) *Validator {
	if minLength <= 0 {
		minLength = defaultMinTextLength
	}
	if fingerprints == nil {
		fingerprints = defaultBlockedFingerprints
	}
	return &Validator{MinTextLength: minLength, BlockedFingerprints: fingerprints}
}

// Validate accepts or rejects a Success outcome. requested carries the
// caller's language preferences for the mismatch check.
func (v *Validator) Validate(o Outcome, requested []string) Verdict {
	// Minimum length is measured in characters, not bytes.
	if utf8.RuneCountInString(o.Text) < v.MinTextLength {
		return rejected("too short")
	}

	lower := strings.ToLower(o.Text)
	for _, fp := range v.BlockedFingerprints {
		if fp != "" && strings.Contains(lower, strings.ToLower(fp)) {
			return rejected("blocked-page fingerprint")
		}
	}

	if len(requested) > 0 {
		served := o.Backend["language"]
		translated := o.Backend["translated"] == "true"
		if served != "" && !translated && !anyLanguageMatch(served, requested) {
			return rejected("language mismatch")
		}
	}

	return accepted()
}

func anyLanguageMatch(served string, requested []string) bool {
	for _, want := range requested {
		if matchLanguage(served, want) {
			return true
		}
	}
	return false
}

package urlconv

import (
	"errors"

	"markdownd/internal/converter"
	"markdownd/internal/transcript"
)

// ErrorKind reports the stable failure kind for an error from Convert:
// the converter error kind, the aggregated transcript error kind, or
// "UnknownError" for anything else.
func ErrorKind(err error) string {
	var cerr *converter.Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	var terr *transcript.ExhaustedError
	if errors.As(err, &terr) {
		return terr.Kind
	}
	return "UnknownError"
}

package landscapist

import (
	"errors"

	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
)

var errNilPayload = errors.New("loader returned no payload")

// mapResult folds a loader outcome into a terminal presentation state.
// A nil error with a nil payload is a loader bug; it maps to Failure so
// the pipeline still terminates.
func mapResult(payload *Payload, err error) State {
	if err != nil {
		return Failure{Partial: pkgerrors.Partial(err), Err: err}
	}
	if payload == nil {
		return Failure{Err: errNilPayload}
	}
	return Success{Payload: *payload}
}

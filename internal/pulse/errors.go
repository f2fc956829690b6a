package pulse

import "errors"

// Error taxonomy per spec §7. Operation Engine failures carry one of these
// all the way out through the Facade, so callers can distinguish a missing
// precondition from a request PulseAudio itself rejected.
var (
	ErrNoCard              = errors.New("pulse: no tracked card")
	ErrNoSink              = errors.New("pulse: no tracked sink")
	ErrNoSource            = errors.New("pulse: no tracked source")
	ErrServerRequestFailed = errors.New("pulse: server request failed")
	ErrConnectionLost      = errors.New("pulse: connection lost")
	ErrEmptyInfoPayload    = errors.New("pulse: empty info payload")
	ErrAllocationFailure   = errors.New("pulse: unable to allocate operation")
)

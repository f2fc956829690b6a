package pulse

// maxInFlightOperations bounds how many Facade calls may be queued awaiting
// their loop-goroutine turn at once. Mirrors the finite pool libpulse draws
// pa_operation objects from: once it is exhausted, a request is rejected
// outright instead of queued indefinitely.
const maxInFlightOperations = 8

// Facade is the public, synchronous-looking entry point (C7) that the
// control surface calls into. Every method enqueues its work onto the
// Session's loop goroutine and returns once the underlying Operation's
// completion callback has fired, so callers never observe Topology in a
// partially-updated state.
type Facade struct {
	session  *Session
	inFlight chan struct{}
}

func newFacade(session *Session) *Facade {
	return &Facade{session: session, inFlight: make(chan struct{}, maxInFlightOperations)}
}

// SelectMode switches between the default and voice-call audio routing.
func (f *Facade) SelectMode(mode Mode) error {
	return f.runOnLoop(func(engine *Engine, done func(error)) {
		engine.SelectMode(mode, done)
	})
}

// EnableSpeaker toggles loudspeaker routing on or off.
func (f *Facade) EnableSpeaker(enable bool) error {
	return f.runOnLoop(func(engine *Engine, done func(error)) {
		engine.EnableSpeaker(enable, done)
	})
}

// MuteMic mutes or unmutes the tracked source.
func (f *Facade) MuteMic(mute bool) error {
	return f.runOnLoop(func(engine *Engine, done func(error)) {
		engine.MuteMic(mute, done)
	})
}

// runOnLoop posts work onto the Session's single loop goroutine and blocks
// the calling goroutine (an HTTP handler, typically) until the operation's
// completion callback fires.
func (f *Facade) runOnLoop(fn func(engine *Engine, done func(error))) error {
	select {
	case f.inFlight <- struct{}{}:
	default:
		return ErrAllocationFailure
	}
	defer func() { <-f.inFlight }()

	resultCh := make(chan error, 1)
	posted := f.session.post(func() {
		if !f.session.ready {
			resultCh <- ErrServerRequestFailed
			return
		}
		fn(f.session.engine, func(err error) {
			resultCh <- err
		})
	})
	if !posted {
		return ErrConnectionLost
	}
	return <-resultCh
}

package pulse

import (
	"time"

	"github.com/nitanmarcel/callaudiod/internal/logging"
	"github.com/rs/zerolog"
)

// reconnectBackoff is the delay between a lost connection and the next
// connect attempt. Upstream reconnects via an idle-loop callback with no
// backoff at all; a fixed delay avoids hot-looping against a PulseAudio
// that is itself mid-restart.
const reconnectBackoff = 2 * time.Second

const switchOnPortAvailableModule = "module-switch-on-port-available"

// Session is the Server Session (C1): it owns the single loop goroutine
// every other component runs on, the connect/reconnect state machine, and
// the wiring between Discovery, the Reactor, and the Operation Engine.
//
// All fields below the loop channels are read and written only from the
// loop goroutine; nothing else may touch them directly, which is what lets
// Topology, Discovery, the Reactor, and the Operation Engine skip locking.
type Session struct {
	srv    Server
	cfg    Config
	logger zerolog.Logger

	topo      *Topology
	discovery *Discovery
	reactor   *Reactor
	engine    *Engine

	loopCh  chan func()
	closeCh chan struct{}

	ready bool
}

// NewSession constructs a Session bound to the given Server backend. It does
// not connect; call Start to begin the loop goroutine and the first
// connection attempt.
func NewSession(srv Server, cfg Config) *Session {
	logger := logging.Component("pulse.session")
	topo := newTopology()
	s := &Session{
		srv:     srv,
		cfg:     cfg,
		logger:  logger,
		topo:    topo,
		loopCh:  make(chan func(), 32),
		closeCh: make(chan struct{}),
	}
	s.discovery = newDiscovery(srv, topo, cfg, logger)
	s.reactor = newReactor(srv, topo, cfg, s.discovery, logger)
	s.engine = newEngine(srv, topo, cfg, logger)
	return s
}

// Facade returns the public SelectMode/EnableSpeaker/MuteMic entry points
// bound to this Session.
func (s *Session) Facade() *Facade {
	return newFacade(s)
}

// Start launches the loop goroutine and kicks off the initial connection.
func (s *Session) Start() {
	go s.loop()
	s.post(func() { s.connect() })
}

// Close stops the loop goroutine and disconnects from the server. It must be
// called at most once: a second call panics closing an already-closed
// channel.
func (s *Session) Close() {
	close(s.closeCh)
	s.srv.Disconnect()
}

// post enqueues fn to run on the loop goroutine. It returns false if the
// Session has been closed, in which case fn never runs.
func (s *Session) post(fn func()) bool {
	select {
	case <-s.closeCh:
		return false
	default:
	}
	select {
	case s.loopCh <- fn:
		return true
	case <-s.closeCh:
		return false
	}
}

func (s *Session) loop() {
	for {
		select {
		case fn := <-s.loopCh:
			fn()
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) connect() {
	s.ready = false
	err := s.srv.Connect(func(state ContextState) {
		s.post(func() { s.onStateChange(state) })
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to initiate pulseaudio connection")
		s.scheduleReconnect()
	}
}

func (s *Session) onStateChange(state ContextState) {
	switch state {
	case StateReady:
		s.ready = true
		s.logger.Info().Msg("context ready")
		s.srv.Subscribe(func(event SubscriptionEvent) {
			s.post(func() { s.reactor.Dispatch(event) })
		})
		s.runDiscovery()
	case StateFailed, StateTerminated:
		if s.ready {
			s.logger.Warn().Str("state", state.String()).Msg("context lost, scheduling reconnect")
		}
		s.ready = false
		s.topo.ClearCard()
		s.topo.ClearSink()
		s.topo.ClearSource()
		s.srv.Disconnect()
		s.scheduleReconnect()
	default:
		s.logger.Debug().Str("state", state.String()).Msg("context state changed")
	}
}

func (s *Session) scheduleReconnect() {
	reconnectsTotal.Inc()
	time.AfterFunc(reconnectBackoff, func() {
		s.post(func() { s.connect() })
	})
}

func (s *Session) runDiscovery() {
	discoveryRunsTotal.Inc()
	s.discovery.RunCardDiscovery(func(found bool) {
		if !found {
			return
		}
		// Sink discovery must run first: the module unload decision depends
		// on the tracked sink's back-end flavor, which isn't known until then.
		s.discovery.RunSinkDiscovery(func(sinkFound bool) {
			if sinkFound {
				s.discovery.RunModuleDiscovery(switchOnPortAvailableModule, s.topo.Sink.Flavor)
			}
			s.discovery.RunSourceDiscovery(func(bool) {})
		})
	})
}

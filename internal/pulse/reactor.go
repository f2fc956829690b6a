package pulse

import "github.com/rs/zerolog"

// Reactor dispatches subscription events onto Topology. For sinks and
// sources it re-runs Discovery on New and Remove and reconciles port
// availability on Change; for the card it refreshes the active profile on
// Change, drops card, sink and source on Remove, and runs card discovery on
// New when no card is tracked.
// It runs entirely on the Session's loop goroutine, so it mutates Topology
// directly rather than guarding it with a lock.
type Reactor struct {
	srv       Server
	topo      *Topology
	cfg       Config
	discovery *Discovery
	logger    zerolog.Logger
}

func newReactor(srv Server, topo *Topology, cfg Config, discovery *Discovery, logger zerolog.Logger) *Reactor {
	return &Reactor{
		srv:       srv,
		topo:      topo,
		cfg:       cfg,
		discovery: discovery,
		logger:    logger.With().Str("subcomponent", "reactor").Logger(),
	}
}

// Dispatch routes one subscription event to the appropriate handler.
func (r *Reactor) Dispatch(event SubscriptionEvent) {
	switch event.Facility {
	case FacilityCard:
		r.handleCard(event)
	case FacilitySink:
		r.handleSink(event)
	case FacilitySource:
		r.handleSource(event)
	}
}

func (r *Reactor) handleCard(event SubscriptionEvent) {
	switch event.Kind {
	case EventRemove:
		if idx, ok := r.topo.CardIndex(); ok && idx == event.Index {
			r.logger.Warn().Uint32("card_index", idx).Msg("tracked card removed")
			r.topo.ClearCard()
			r.topo.ClearSink()
			r.topo.ClearSource()
		}
	case EventChange:
		idx, ok := r.topo.CardIndex()
		if !ok || idx != event.Index {
			return
		}
		r.srv.GetCardInfoByIndex(idx, func(info *CardInfo, eol bool) {
			if eol || info == nil {
				return
			}
			r.reconcileCard(info)
		})
	case EventNew:
		if !r.topo.HasCard() {
			r.discovery.RunCardDiscovery(func(found bool) {})
		}
	}
}

func (r *Reactor) reconcileCard(info *CardInfo) {
	card := r.topo.Card
	if card == nil {
		return
	}
	card.ActiveProfile = info.ActiveProfile
	card.HasVoiceProfile = r.discovery.hasVoiceProfile(info)
}

func (r *Reactor) handleSink(event SubscriptionEvent) {
	switch event.Kind {
	case EventNew:
		if !r.topo.HasSink() {
			r.discovery.RunSinkDiscovery(func(found bool) {})
		}
	case EventRemove:
		if idx, ok := r.topo.SinkIndex(); ok && idx == event.Index {
			r.logger.Warn().Uint32("sink_index", idx).Msg("tracked sink removed")
			r.topo.ClearSink()
			r.discovery.RunSinkDiscovery(func(found bool) {})
		}
	case EventChange:
		idx, ok := r.topo.SinkIndex()
		if !ok || idx != event.Index {
			return
		}
		r.srv.GetSinkInfoByIndex(idx, func(info *SinkInfo, eol bool) {
			if eol || info == nil {
				return
			}
			r.reconcileSink(info)
		})
	}
}

// reconcileSink mirrors change_sink_info: refresh port availability, and if
// anything changed, re-run the Port Selector against the fresh info and
// switch whenever its pick differs from what is currently active — whether
// because the active port just became unavailable, or a better port just
// became available while the active one was untouched. Droid sinks never
// get this spontaneous switch: their port is only ever moved by explicit
// Operation Engine requests.
func (r *Reactor) reconcileSink(info *SinkInfo) {
	sink := r.topo.Sink
	if sink == nil {
		return
	}
	sink.ActivePort = info.ActivePort
	changed := sink.UpdateSinkPortAvailability(info.Ports)
	sink.Ports = info.Ports
	if !changed || sink.Flavor == BackendDroid {
		return
	}
	next, ok := SelectOutputPort(info.Ports, "", sink.Flavor, r.cfg)
	if !ok || next == sink.ActivePort {
		return
	}
	r.logger.Info().
		Str("from", sink.ActivePort).
		Str("to", next).
		Msg("output port availability changed, switching")
	idx := sink.Index
	r.srv.SetSinkPortByIndex(idx, next, func(success bool) {
		portSwitchesTotal.WithLabelValues("output").Inc()
		if !success {
			r.logger.Warn().Str("port", next).Msg("spontaneous output port switch failed")
			return
		}
		sink.ActivePort = next
	})
}

func (r *Reactor) handleSource(event SubscriptionEvent) {
	switch event.Kind {
	case EventNew:
		if !r.topo.HasSource() {
			r.discovery.RunSourceDiscovery(func(found bool) {})
		}
	case EventRemove:
		if idx, ok := r.topo.SourceIndex(); ok && idx == event.Index {
			r.logger.Warn().Uint32("source_index", idx).Msg("tracked source removed")
			r.topo.ClearSource()
			r.discovery.RunSourceDiscovery(func(found bool) {})
		}
	case EventChange:
		idx, ok := r.topo.SourceIndex()
		if !ok || idx != event.Index {
			return
		}
		r.srv.GetSourceInfoByIndex(idx, func(info *SourceInfo, eol bool) {
			if eol || info == nil {
				return
			}
			r.reconcileSource(info)
		})
	}
}

func (r *Reactor) reconcileSource(info *SourceInfo) {
	source := r.topo.Source
	if source == nil {
		return
	}
	source.ActivePort = info.ActivePort
	changed := source.UpdateSourcePortAvailability(info.Ports)
	source.Ports = info.Ports
	if !changed || source.Flavor == BackendDroid {
		return
	}
	next, ok := SelectInputPort(info.Ports, "", source.Flavor, r.cfg)
	if !ok || next == source.ActivePort {
		return
	}
	r.logger.Info().
		Str("from", source.ActivePort).
		Str("to", next).
		Msg("input port availability changed, switching")
	idx := source.Index
	r.srv.SetSourcePortByIndex(idx, next, func(success bool) {
		portSwitchesTotal.WithLabelValues("input").Inc()
		if !success {
			r.logger.Warn().Str("port", next).Msg("spontaneous input port switch failed")
			return
		}
		source.ActivePort = next
	})
}

package pulse

import (
	"strings"

	"github.com/rs/zerolog"
)

// Discovery turns Server list callbacks into Topology updates. It never
// mutates PulseAudio state itself beyond the one housekeeping action
// (unloading module-switch-on-port-available on native cards); everything
// else is read-only enumeration.
type Discovery struct {
	srv    Server
	topo   *Topology
	cfg    Config
	logger zerolog.Logger
}

func newDiscovery(srv Server, topo *Topology, cfg Config, logger zerolog.Logger) *Discovery {
	return &Discovery{srv: srv, topo: topo, cfg: cfg, logger: logger.With().Str("subcomponent", "discovery").Logger()}
}

// matchesCard reports whether a card is the one callaudiod should track:
// a platform device of internal form factor that is not a modem.
func (d *Discovery) matchesCard(info *CardInfo) bool {
	if !strings.HasPrefix(info.BusPath, d.cfg.CardBusPathPrefix) {
		return false
	}
	if info.FormFactor != d.cfg.CardFormFactor {
		return false
	}
	if info.DeviceClass == d.cfg.CardModemClass {
		return false
	}
	return true
}

// hasVoiceProfile reports whether any of the card's profiles look like a
// voice-call profile: either the UCM verb substring or the literal
// "voicecall" token pulseaudio-modules-droid uses.
func (d *Discovery) hasVoiceProfile(info *CardInfo) bool {
	for _, p := range info.Profiles {
		if strings.Contains(p.Name, d.cfg.UCMVerbVoiceCall) {
			return true
		}
		if strings.Contains(p.Name, d.cfg.VoiceCallLiteral) {
			return true
		}
	}
	return false
}

// RunCardDiscovery enumerates all cards and tracks the first match. onDone
// is invoked exactly once, with true if a card was found and tracked.
func (d *Discovery) RunCardDiscovery(onDone func(found bool)) {
	found := false
	d.srv.GetCardInfoList(func(info *CardInfo, eol bool) {
		if eol {
			if !found {
				d.logger.Warn().Msg("no matching card found during discovery")
			}
			onDone(found)
			return
		}
		if found || info == nil {
			return
		}
		if !d.matchesCard(info) {
			return
		}
		found = true
		profiles := make([]string, 0, len(info.Profiles))
		for _, p := range info.Profiles {
			profiles = append(profiles, p.Name)
		}
		d.topo.SetCard(&TrackedCard{
			Index:           info.Index,
			Name:            info.Name,
			ActiveProfile:   info.ActiveProfile,
			Profiles:        profiles,
			HasVoiceProfile: d.hasVoiceProfile(info),
		})
		d.logger.Info().
			Uint32("card_index", info.Index).
			Str("card_name", info.Name).
			Bool("has_voice_profile", d.topo.Card.HasVoiceProfile).
			Msg("tracking card")
	})
}

// RunModuleDiscovery unloads module-switch-on-port-available, present only
// on native cards: it fights callaudiod's own port-switching decisions by
// reacting to jack-detect events on its own schedule. Droid back-ends never
// carry this module, so callers must pass the tracked sink's flavor and the
// unload is suppressed entirely when it is BackendDroid.
func (d *Discovery) RunModuleDiscovery(moduleName string, flavor BackendFlavor) {
	if flavor == BackendDroid {
		return
	}
	d.srv.GetModuleInfoList(func(info *ModuleInfo, eol bool) {
		if eol || info == nil {
			return
		}
		if info.Name != moduleName {
			return
		}
		idx := info.Index
		d.srv.UnloadModule(idx, func(success bool) {
			if !success {
				d.logger.Warn().Uint32("module_index", idx).Msg("failed to unload module-switch-on-port-available")
				return
			}
			moduleUnloadsTotal.Inc()
			d.logger.Info().Uint32("module_index", idx).Msg("unloaded module-switch-on-port-available")
		})
	})
}

// detectFlavor classifies a device API string as the droid HAL or native ALSA.
func (d *Discovery) detectFlavor(deviceAPI string) BackendFlavor {
	if deviceAPI == d.cfg.DroidAPIName {
		return BackendDroid
	}
	return BackendNative
}

// detectSpeakerPort finds the port whose name contains the speaker token,
// matching upstream's substring-based detection instead of an exact match
// (UCM port names vary by device, e.g. "Speaker" vs "Speaker Phone").
func (d *Discovery) detectSpeakerPort(ports []PortInfo) string {
	for _, p := range ports {
		if strings.Contains(p.Name, d.cfg.UCMSpeakerDevToken) {
			return p.Name
		}
	}
	return ""
}

// RunSinkDiscovery enumerates sinks and tracks the first one belonging to
// the tracked card, skipping sinks already tracked.
func (d *Discovery) RunSinkDiscovery(onDone func(found bool)) {
	cardIdx, ok := d.topo.CardIndex()
	if !ok {
		onDone(false)
		return
	}
	if d.topo.HasSink() {
		onDone(true)
		return
	}
	found := false
	d.srv.GetSinkInfoList(func(info *SinkInfo, eol bool) {
		if eol {
			onDone(found)
			return
		}
		if found || info == nil {
			return
		}
		if !d.processNewSink(info, cardIdx) {
			return
		}
		found = true
	})
}

func (d *Discovery) processNewSink(info *SinkInfo, cardIdx uint32) bool {
	if info.Card != cardIdx {
		return false
	}
	if info.DeviceClass != d.cfg.DeviceClassSound {
		return false
	}
	flavor := d.detectFlavor(info.DeviceAPI)
	sink := &TrackedSink{
		Index:       info.Index,
		Card:        info.Card,
		Name:        info.Name,
		Flavor:      flavor,
		ActivePort:  info.ActivePort,
		SpeakerPort: d.detectSpeakerPort(info.Ports),
		Ports:       info.Ports,
	}
	sink.UpdateSinkPortAvailability(info.Ports)
	d.topo.SetSink(sink)
	d.logger.Info().
		Uint32("sink_index", info.Index).
		Str("flavor", flavor.String()).
		Str("active_port", info.ActivePort).
		Msg("tracking sink")
	return true
}

// RunSourceDiscovery is the source-side mirror of RunSinkDiscovery.
func (d *Discovery) RunSourceDiscovery(onDone func(found bool)) {
	cardIdx, ok := d.topo.CardIndex()
	if !ok {
		onDone(false)
		return
	}
	if d.topo.HasSource() {
		onDone(true)
		return
	}
	found := false
	d.srv.GetSourceInfoList(func(info *SourceInfo, eol bool) {
		if eol {
			onDone(found)
			return
		}
		if found || info == nil {
			return
		}
		if !d.processNewSource(info, cardIdx) {
			return
		}
		found = true
	})
}

func (d *Discovery) processNewSource(info *SourceInfo, cardIdx uint32) bool {
	if info.Card != cardIdx {
		return false
	}
	if info.DeviceClass != d.cfg.DeviceClassSound {
		return false
	}
	flavor := d.detectFlavor(info.DeviceAPI)
	source := &TrackedSource{
		Index:      info.Index,
		Card:       info.Card,
		Name:       info.Name,
		Flavor:     flavor,
		ActivePort: info.ActivePort,
		Mute:       info.Mute,
		Ports:      info.Ports,
	}
	source.UpdateSourcePortAvailability(info.Ports)
	d.topo.SetSource(source)
	d.logger.Info().
		Uint32("source_index", info.Index).
		Str("flavor", flavor.String()).
		Str("active_port", info.ActivePort).
		Msg("tracking source")
	return true
}

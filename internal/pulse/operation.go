package pulse

import (
	"strings"

	"github.com/rs/zerolog"
)

// Operation tracks one in-flight SelectMode/EnableSpeaker/MuteMic request
// and guarantees its completion callback fires exactly once, matching the
// "invoked exactly once" contract in §4.5. A nil error means success; any
// other value is one of the sentinels in errors.go.
type Operation struct {
	kind      string
	done      func(err error)
	completed bool
}

func newOperation(kind string, done func(err error)) *Operation {
	return &Operation{kind: kind, done: done}
}

func (op *Operation) complete(err error) {
	if op.completed {
		return
	}
	op.completed = true
	recordOperationResult(op.kind, err == nil)
	if op.done != nil {
		op.done(err)
	}
}

// Engine is the Operation Engine (C6): the async state machine that turns a
// SelectMode/EnableSpeaker/MuteMic intent into a sequence of Server calls.
type Engine struct {
	srv    Server
	topo   *Topology
	cfg    Config
	logger zerolog.Logger

	// currentMode is the last mode a SelectMode operation successfully
	// completed with. It is updated only on success, matching cad-pulse.c's
	// operation->pulse->current_mode assignment.
	currentMode Mode
}

func newEngine(srv Server, topo *Topology, cfg Config, logger zerolog.Logger) *Engine {
	return &Engine{srv: srv, topo: topo, cfg: cfg, logger: logger.With().Str("subcomponent", "operation").Logger()}
}

// CurrentMode returns the mode most recently established by a successful
// SelectMode completion.
func (e *Engine) CurrentMode() Mode {
	return e.currentMode
}

// preUnmute issues a mic-unmute request before a switch into any mode other
// than Call, even when no source is currently tracked. Called only when
// mode != ModeCall, matching cad_pulse_select_mode's "if (mode !=
// CALL_AUDIO_MODE_CALL)" guard; a missing source still turns this into a
// no-op failure rather than a skipped step.
func (e *Engine) preUnmute() {
	idx, _ := e.topo.SourceIndex()
	e.srv.SetSourceMuteByIndex(idx, false, func(success bool) {
		if !success {
			e.logger.Debug().Msg("pre-step mic unmute request failed")
		}
	})
}

func findProfileContaining(profiles []string, token string) (string, bool) {
	for _, p := range profiles {
		if strings.Contains(p, token) {
			return p, true
		}
	}
	return "", false
}

// SelectMode implements cad_pulse_select_mode: switch the tracked card
// between its default and voice-call configuration.
func (e *Engine) SelectMode(mode Mode, done func(err error)) {
	op := newOperation("select_mode", func(err error) {
		if err == nil {
			e.currentMode = mode
		}
		if done != nil {
			done(err)
		}
	})
	if mode != ModeCall {
		e.preUnmute()
	}

	if !e.topo.HasCard() {
		e.logger.Warn().Msg("select mode requested with no tracked card")
		op.complete(ErrNoCard)
		return
	}
	if !e.topo.HasSink() {
		e.logger.Warn().Msg("select mode requested with no tracked sink")
		op.complete(ErrNoSink)
		return
	}

	card := e.topo.Card
	if card.HasVoiceProfile {
		e.selectModeProfileBranch(mode, op)
		return
	}
	e.selectModePortOnlyBranch(mode, op)
}

// selectModeProfileBranch switches the card's UCM verb or droid profile and
// then re-selects ports against the resulting port list.
func (e *Engine) selectModeProfileBranch(mode Mode, op *Operation) {
	sink := e.topo.Sink
	var target string
	var ok bool
	switch sink.Flavor {
	case BackendDroid:
		if mode == ModeCall {
			target = e.cfg.DroidProfileVoiceCall
		} else {
			target = e.cfg.DroidProfileDefault
		}
		ok = true
	default:
		verb := e.cfg.UCMVerbHiFi
		if mode == ModeCall {
			verb = e.cfg.UCMVerbVoiceCall
		}
		target, ok = findProfileContaining(e.topo.Card.Profiles, verb)
	}
	if !ok {
		e.logger.Warn().Str("mode", mode.String()).Msg("no matching profile found for requested mode")
		op.complete(ErrServerRequestFailed)
		return
	}

	if sink.Flavor == BackendDroid {
		e.droidParkingDance(mode, target, op)
		return
	}

	cardIdx, _ := e.topo.CardIndex()
	e.srv.SetCardProfileByIndex(cardIdx, target, func(success bool) {
		profileSwitchesTotal.Inc()
		if !success {
			e.logger.Warn().Str("profile", target).Msg("card profile switch failed")
			op.complete(ErrServerRequestFailed)
			return
		}
		e.topo.Card.ActiveProfile = target
		e.refreshAndSelectPorts(op)
	})
}

// selectModePortOnlyBranch handles cards with no distinct voice profile: the
// mode switch is expressed purely as a port change, never a profile change.
func (e *Engine) selectModePortOnlyBranch(mode Mode, op *Operation) {
	e.refreshAndSelectPorts(op)
}

// refreshAndSelectPorts re-fetches the tracked sink (and source, if any) and
// applies the port selector to each, issuing a port switch only when the
// selector's choice differs from what is already active.
func (e *Engine) refreshAndSelectPorts(op *Operation) {
	sinkIdx, ok := e.topo.SinkIndex()
	if !ok {
		op.complete(ErrNoSink)
		return
	}
	handled := false
	e.srv.GetSinkInfoByIndex(sinkIdx, func(info *SinkInfo, eol bool) {
		if handled {
			return
		}
		if eol || info == nil {
			op.complete(ErrEmptyInfoPayload)
			return
		}
		handled = true
		e.applyOutputPortStep(info, op)
	})
}

func (e *Engine) applyOutputPortStep(info *SinkInfo, op *Operation) {
	sink := e.topo.Sink
	sink.Ports = info.Ports
	sink.UpdateSinkPortAvailability(info.Ports)
	sink.ActivePort = info.ActivePort

	target, ok := SelectOutputPort(info.Ports, "", sink.Flavor, e.cfg)
	if !ok {
		e.logger.Warn().Msg("no output port candidate available")
		op.complete(ErrServerRequestFailed)
		return
	}
	if target == sink.ActivePort {
		e.applyInputPortStepIfNeeded(op)
		return
	}
	e.srv.SetSinkPortByIndex(sink.Index, target, func(success bool) {
		portSwitchesTotal.WithLabelValues("output").Inc()
		if !success {
			e.logger.Warn().Str("port", target).Msg("output port switch failed")
			op.complete(ErrServerRequestFailed)
			return
		}
		sink.ActivePort = target
		e.applyInputPortStepIfNeeded(op)
	})
}

func (e *Engine) applyInputPortStepIfNeeded(op *Operation) {
	if !e.topo.HasSource() {
		op.complete(nil)
		return
	}
	sourceIdx, _ := e.topo.SourceIndex()
	handled := false
	e.srv.GetSourceInfoByIndex(sourceIdx, func(info *SourceInfo, eol bool) {
		if handled {
			return
		}
		if eol || info == nil {
			op.complete(ErrEmptyInfoPayload)
			return
		}
		handled = true
		e.applyInputPortStep(info, op)
	})
}

func (e *Engine) applyInputPortStep(info *SourceInfo, op *Operation) {
	source := e.topo.Source
	source.Ports = info.Ports
	source.UpdateSourcePortAvailability(info.Ports)
	source.ActivePort = info.ActivePort

	target, ok := SelectInputPort(info.Ports, "", source.Flavor, e.cfg)
	if !ok {
		e.logger.Warn().Msg("no input port candidate available")
		op.complete(ErrServerRequestFailed)
		return
	}
	if target == source.ActivePort {
		op.complete(nil)
		return
	}
	e.srv.SetSourcePortByIndex(source.Index, target, func(success bool) {
		portSwitchesTotal.WithLabelValues("input").Inc()
		if !success {
			e.logger.Warn().Str("port", target).Msg("input port switch failed")
			op.complete(ErrServerRequestFailed)
			return
		}
		source.ActivePort = target
		op.complete(nil)
	})
}

// droidParkingDance implements the three-step sequence pulseaudio-modules-droid
// requires: park the current output (and input, if tracked) port, switch the
// HAL profile, then move to the final selected port. The HAL only honors a
// mode switch while its ports are parked; going straight from one active
// port to another during a profile change is silently ignored by the driver.
func (e *Engine) droidParkingDance(mode Mode, targetProfile string, op *Operation) {
	sink := e.topo.Sink
	e.srv.SetSinkPortByIndex(sink.Index, e.cfg.DroidOutputPortParking, func(success bool) {
		if !success {
			e.logger.Warn().Msg("droid output parking failed")
			op.complete(ErrServerRequestFailed)
			return
		}
		e.droidParkInputThenSwitchProfile(targetProfile, op)
	})
}

func (e *Engine) droidParkInputThenSwitchProfile(targetProfile string, op *Operation) {
	if !e.topo.HasSource() {
		e.droidSwitchProfile(targetProfile, op)
		return
	}
	source := e.topo.Source
	e.srv.SetSourcePortByIndex(source.Index, e.cfg.DroidInputPortParking, func(success bool) {
		if !success {
			e.logger.Warn().Msg("droid input parking failed")
			op.complete(ErrServerRequestFailed)
			return
		}
		e.droidSwitchProfile(targetProfile, op)
	})
}

func (e *Engine) droidSwitchProfile(targetProfile string, op *Operation) {
	cardIdx, _ := e.topo.CardIndex()
	e.srv.SetCardProfileByIndex(cardIdx, targetProfile, func(success bool) {
		profileSwitchesTotal.Inc()
		if !success {
			e.logger.Warn().Str("profile", targetProfile).Msg("droid profile switch failed")
			op.complete(ErrServerRequestFailed)
			return
		}
		e.topo.Card.ActiveProfile = targetProfile
		e.refreshAndSelectPorts(op)
	})
}

// EnableSpeaker implements cad_pulse_enable_speaker: toggle the tracked
// sink between its speaker port and the best non-speaker alternative.
//
// When no speaker port was detected for the tracked sink, enabling the
// speaker fails with ErrServerRequestFailed, and disabling it runs the
// selector with an empty exclusion, so no port is excluded.
func (e *Engine) EnableSpeaker(enable bool, done func(err error)) {
	op := newOperation("enable_speaker", done)
	if !e.topo.HasSink() {
		e.logger.Warn().Msg("enable speaker requested with no tracked sink")
		op.complete(ErrNoSink)
		return
	}
	sink := e.topo.Sink

	if enable {
		if sink.SpeakerPort == "" {
			e.logger.Warn().Msg("no speaker port known for tracked sink")
			op.complete(ErrServerRequestFailed)
			return
		}
		if sink.ActivePort == sink.SpeakerPort {
			op.complete(nil)
			return
		}
		e.srv.SetSinkPortByIndex(sink.Index, sink.SpeakerPort, func(success bool) {
			portSwitchesTotal.WithLabelValues("output").Inc()
			if !success {
				op.complete(ErrServerRequestFailed)
				return
			}
			sink.ActivePort = sink.SpeakerPort
			op.complete(nil)
		})
		return
	}

	target, ok := SelectOutputPort(sink.Ports, sink.SpeakerPort, sink.Flavor, e.cfg)
	if !ok {
		e.logger.Warn().Msg("no non-speaker output port candidate available")
		op.complete(ErrServerRequestFailed)
		return
	}
	if sink.ActivePort == target {
		op.complete(nil)
		return
	}
	e.srv.SetSinkPortByIndex(sink.Index, target, func(success bool) {
		portSwitchesTotal.WithLabelValues("output").Inc()
		if !success {
			op.complete(ErrServerRequestFailed)
			return
		}
		sink.ActivePort = target
		op.complete(nil)
	})
}

// MuteMic implements cad_pulse_mute_mic: fetch the tracked source's current
// mute state and only issue a set-mute request if it differs from the
// requested state, matching set_mic_mute's "info->mute != operation->value"
// guard instead of writing through unconditionally.
func (e *Engine) MuteMic(mute bool, done func(err error)) {
	op := newOperation("mute_mic", done)
	if !e.topo.HasSource() {
		e.logger.Warn().Msg("mute mic requested with no tracked source")
		op.complete(ErrNoSource)
		return
	}
	source := e.topo.Source
	handled := false
	e.srv.GetSourceInfoByIndex(source.Index, func(info *SourceInfo, eol bool) {
		if handled {
			return
		}
		if eol || info == nil {
			op.complete(ErrEmptyInfoPayload)
			return
		}
		handled = true
		if info.Mute == mute {
			source.Mute = mute
			op.complete(nil)
			return
		}
		e.srv.SetSourceMuteByIndex(source.Index, mute, func(success bool) {
			if !success {
				op.complete(ErrServerRequestFailed)
				return
			}
			source.Mute = mute
			op.complete(nil)
		})
	})
}

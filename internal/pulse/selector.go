package pulse

// SelectOutputPort implements §4.4's output port-selection algorithm. It is
// pure: identical inputs always yield identical outputs.
//
// Ports whose availability is No, and the excluded port name, are skipped.
// On Droid, output-wired_headset short-circuits the whole search if present
// and not skipped; otherwise speaker then earpiece are preferred, in that
// order, ties broken by first-encountered. On Native, the highest-priority
// remaining port wins, ties broken by first-encountered.
//
// Returns ("", false) if no candidate remains.
func SelectOutputPort(ports []PortInfo, exclude string, flavor BackendFlavor, cfg Config) (string, bool) {
	if flavor == BackendDroid {
		return selectDroidOutput(ports, exclude, cfg)
	}
	return selectNativeOutput(ports, exclude)
}

func selectDroidOutput(ports []PortInfo, exclude string, cfg Config) (string, bool) {
	var speaker, earpiece *PortInfo
	for i := range ports {
		p := &ports[i]
		if p.Name == exclude || p.Availability == AvailabilityNo {
			continue
		}
		if p.Name == cfg.DroidOutputPortWiredHead {
			return p.Name, true
		}
		if p.Name == cfg.DroidOutputPortSpeaker && speaker == nil {
			speaker = p
		}
		if p.Name == cfg.DroidOutputPortEarpiece && earpiece == nil {
			earpiece = p
		}
	}
	if speaker != nil {
		return speaker.Name, true
	}
	if earpiece != nil {
		return earpiece.Name, true
	}
	return "", false
}

func selectNativeOutput(ports []PortInfo, exclude string) (string, bool) {
	var best *PortInfo
	for i := range ports {
		p := &ports[i]
		if p.Name == exclude || p.Availability == AvailabilityNo {
			continue
		}
		if best == nil || p.Priority > best.Priority {
			best = p
		}
	}
	if best != nil {
		return best.Name, true
	}
	return "", false
}

// SelectInputPort implements §4.4's input port-selection algorithm: the
// source-side mirror of SelectOutputPort.
func SelectInputPort(ports []PortInfo, exclude string, flavor BackendFlavor, cfg Config) (string, bool) {
	if flavor == BackendDroid {
		return selectDroidInput(ports, exclude, cfg)
	}
	return selectNativeOutput(ports, exclude)
}

func selectDroidInput(ports []PortInfo, exclude string, cfg Config) (string, bool) {
	var best *PortInfo
	for i := range ports {
		p := &ports[i]
		if p.Name == exclude || p.Availability == AvailabilityNo {
			continue
		}
		if p.Name == cfg.DroidInputPortWiredHeadMic {
			return p.Name, true
		}
		if p.Name == cfg.DroidInputPortBuiltinMic {
			if best == nil {
				best = p
			}
		}
	}
	if best != nil {
		return best.Name, true
	}
	return "", false
}

package pulse

// Config centralizes the string tokens and identity metadata the controller
// matches against or advertises. Grouped into one struct (rather than loose
// package constants) so deployments that wire in a different UCM verb set or
// a different droid profile table can override it at Session construction.
type Config struct {
	ApplicationName string
	ApplicationID   string

	CardBusPathPrefix string
	CardFormFactor    string
	CardModemClass    string
	// DeviceClassSound is the device.class value both sinks and sources
	// must carry to be considered for tracking.
	DeviceClassSound string

	// ALSA UCM tokens, matched by substring (not equality) to tolerate UCM
	// suffixes such as "HiFi p" or "Voice Call p".
	UCMVerbHiFi        string
	UCMVerbVoiceCall   string
	UCMSpeakerDevToken string

	// Droid module tokens.
	DroidAPIName               string
	DroidProfileDefault        string
	DroidProfileVoiceCall      string
	DroidOutputPortParking     string
	DroidOutputPortSpeaker     string
	DroidOutputPortEarpiece    string
	DroidOutputPortWiredHead   string
	DroidInputPortParking      string
	DroidInputPortBuiltinMic   string
	DroidInputPortWiredHeadMic string

	// The literal "voicecall" substring also counts as a voice profile
	// marker, independent of the UCM verb, per the card filter in §6.
	VoiceCallLiteral string
}

// DefaultConfig returns the token set used by the upstream callaudiod, the
// ALSA Use Case Manager, and pulseaudio-modules-droid.
func DefaultConfig() Config {
	return Config{
		ApplicationName: "CallAudio",
		ApplicationID:   "org.mobian-project.CallAudio",

		CardBusPathPrefix: "platform-",
		CardFormFactor:    "internal",
		CardModemClass:    "modem",
		DeviceClassSound:  "sound",

		UCMVerbHiFi:        "HiFi",
		UCMVerbVoiceCall:   "Voice Call",
		UCMSpeakerDevToken: "Speaker",

		DroidAPIName:               "droid-hal",
		DroidProfileDefault:        "default",
		DroidProfileVoiceCall:      "voicecall",
		DroidOutputPortParking:     "output-parking",
		DroidOutputPortSpeaker:     "output-speaker",
		DroidOutputPortEarpiece:    "output-earpiece",
		DroidOutputPortWiredHead:   "output-wired_headset",
		DroidInputPortParking:      "input-parking",
		DroidInputPortBuiltinMic:   "input-builtin_mic",
		DroidInputPortWiredHeadMic: "input-wired_headset",

		VoiceCallLiteral: "voicecall",
	}
}

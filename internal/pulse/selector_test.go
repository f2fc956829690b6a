package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectOutputPortNativePicksHighestPriority(t *testing.T) {
	cfg := DefaultConfig()
	ports := []PortInfo{
		{Name: "analog-output-speaker", Priority: 10, Availability: AvailabilityYes},
		{Name: "analog-output-headphones", Priority: 20, Availability: AvailabilityYes},
		{Name: "analog-output-lineout", Priority: 5, Availability: AvailabilityUnknown},
	}
	got, ok := SelectOutputPort(ports, "", BackendNative, cfg)
	assert.True(t, ok)
	assert.Equal(t, "analog-output-headphones", got)
}

func TestSelectOutputPortNativeSkipsUnavailableAndExcluded(t *testing.T) {
	cfg := DefaultConfig()
	ports := []PortInfo{
		{Name: "analog-output-speaker", Priority: 10, Availability: AvailabilityYes},
		{Name: "analog-output-headphones", Priority: 20, Availability: AvailabilityNo},
	}
	got, ok := SelectOutputPort(ports, "analog-output-speaker", BackendNative, cfg)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestSelectOutputPortDroidWiredHeadsetShortCircuits(t *testing.T) {
	cfg := DefaultConfig()
	ports := []PortInfo{
		{Name: cfg.DroidOutputPortSpeaker, Priority: 0, Availability: AvailabilityYes},
		{Name: cfg.DroidOutputPortWiredHead, Priority: 0, Availability: AvailabilityYes},
	}
	got, ok := SelectOutputPort(ports, "", BackendDroid, cfg)
	assert.True(t, ok)
	assert.Equal(t, cfg.DroidOutputPortWiredHead, got)
}

func TestSelectOutputPortDroidPrefersSpeakerOverEarpiece(t *testing.T) {
	cfg := DefaultConfig()
	ports := []PortInfo{
		{Name: cfg.DroidOutputPortEarpiece, Priority: 0, Availability: AvailabilityYes},
		{Name: cfg.DroidOutputPortSpeaker, Priority: 0, Availability: AvailabilityYes},
	}
	got, ok := SelectOutputPort(ports, "", BackendDroid, cfg)
	assert.True(t, ok)
	assert.Equal(t, cfg.DroidOutputPortSpeaker, got)
}

func TestSelectInputPortDroidWiredHeadMicShortCircuits(t *testing.T) {
	cfg := DefaultConfig()
	ports := []PortInfo{
		{Name: cfg.DroidInputPortBuiltinMic, Priority: 0, Availability: AvailabilityYes},
		{Name: cfg.DroidInputPortWiredHeadMic, Priority: 0, Availability: AvailabilityYes},
	}
	got, ok := SelectInputPort(ports, "", BackendDroid, cfg)
	assert.True(t, ok)
	assert.Equal(t, cfg.DroidInputPortWiredHeadMic, got)
}

func TestSelectOutputPortNoneAvailable(t *testing.T) {
	cfg := DefaultConfig()
	ports := []PortInfo{
		{Name: "analog-output-speaker", Priority: 10, Availability: AvailabilityNo},
	}
	_, ok := SelectOutputPort(ports, "", BackendNative, cfg)
	assert.False(t, ok)
}

package pulse

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestCardDiscoveryTracksMatchingCardWithVoiceProfile(t *testing.T) {
	cfg := DefaultConfig()
	srv := newFakeServer()
	srv.cards = []CardInfo{
		{
			Index:       0,
			Name:        "modem-card",
			BusPath:     "platform-modem",
			FormFactor:  "internal",
			DeviceClass: "modem",
		},
		{
			Index:       1,
			Name:        "sound-card",
			BusPath:     "platform-sound",
			FormFactor:  "internal",
			ActiveProfile: "HiFi",
			Profiles: []ProfileInfo{
				{Name: "HiFi"},
				{Name: "Voice Call"},
			},
		},
	}
	topo := newTopology()
	d := newDiscovery(srv, topo, cfg, testLogger())

	var found bool
	d.RunCardDiscovery(func(f bool) { found = f })

	require.True(t, found)
	require.True(t, topo.HasCard())
	assert.Equal(t, uint32(1), topo.Card.Index)
	assert.True(t, topo.Card.HasVoiceProfile)
}

func TestCardDiscoveryNoMatchFound(t *testing.T) {
	cfg := DefaultConfig()
	srv := newFakeServer()
	srv.cards = []CardInfo{
		{Index: 0, BusPath: "usb-external", FormFactor: "internal"},
	}
	topo := newTopology()
	d := newDiscovery(srv, topo, cfg, testLogger())

	var found bool
	d.RunCardDiscovery(func(f bool) { found = f })

	assert.False(t, found)
	assert.False(t, topo.HasCard())
}

func TestModuleDiscoveryUnloadsSwitchOnPortAvailable(t *testing.T) {
	cfg := DefaultConfig()
	srv := newFakeServer()
	srv.modules = []ModuleInfo{
		{Index: 3, Name: "module-switch-on-port-available"},
		{Index: 4, Name: "module-udev-detect"},
	}
	topo := newTopology()
	d := newDiscovery(srv, topo, cfg, testLogger())

	d.RunModuleDiscovery("module-switch-on-port-available", BackendNative)

	require.Len(t, srv.unloadedModules, 1)
	assert.Equal(t, uint32(3), srv.unloadedModules[0])
}

func TestModuleDiscoverySuppressedForDroidFlavor(t *testing.T) {
	cfg := DefaultConfig()
	srv := newFakeServer()
	srv.modules = []ModuleInfo{
		{Index: 3, Name: "module-switch-on-port-available"},
	}
	topo := newTopology()
	d := newDiscovery(srv, topo, cfg, testLogger())

	d.RunModuleDiscovery("module-switch-on-port-available", BackendDroid)

	assert.Empty(t, srv.unloadedModules)
}

func TestSinkDiscoveryTracksFirstMatchingSinkAndDetectsSpeakerPort(t *testing.T) {
	cfg := DefaultConfig()
	srv := newFakeServer()
	topo := newTopology()
	topo.SetCard(&TrackedCard{Index: 1})
	srv.sinks = []SinkInfo{
		{
			Index: 10, Card: 1, DeviceClass: "sound", DeviceAPI: "alsa-card",
			ActivePort: "[Out] Speaker",
			Ports: []PortInfo{
				{Name: "[Out] Speaker", Priority: 10, Availability: AvailabilityYes},
				{Name: "[Out] Headphones", Priority: 20, Availability: AvailabilityYes},
			},
		},
		{Index: 11, Card: 2, DeviceClass: "sound"},
	}
	d := newDiscovery(srv, topo, cfg, testLogger())

	var found bool
	d.RunSinkDiscovery(func(f bool) { found = f })

	require.True(t, found)
	require.NotNil(t, topo.Sink)
	assert.Equal(t, uint32(10), topo.Sink.Index)
	assert.Equal(t, "[Out] Speaker", topo.Sink.SpeakerPort)
	assert.Equal(t, BackendNative, topo.Sink.Flavor)
}

func TestSinkDiscoveryDetectsDroidFlavor(t *testing.T) {
	cfg := DefaultConfig()
	srv := newFakeServer()
	topo := newTopology()
	topo.SetCard(&TrackedCard{Index: 1})
	srv.sinks = []SinkInfo{
		{Index: 10, Card: 1, DeviceClass: "sound", DeviceAPI: "droid-hal"},
	}
	d := newDiscovery(srv, topo, cfg, testLogger())

	var found bool
	d.RunSinkDiscovery(func(f bool) { found = f })

	require.True(t, found)
	assert.Equal(t, BackendDroid, topo.Sink.Flavor)
}

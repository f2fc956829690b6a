package pulse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(srv Server, cfg Config) *Session {
	s := NewSession(srv, cfg)
	s.Start()
	return s
}

func TestFacadeMuteMicRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	srv := newFakeServer()
	srv.cards = []CardInfo{{Index: 1, BusPath: "platform-sound", FormFactor: "internal", Profiles: []ProfileInfo{{Name: "HiFi"}}}}
	srv.sinks = []SinkInfo{{Index: 10, Card: 1, DeviceClass: "sound"}}
	srv.sources = []SourceInfo{{Index: 20, Card: 1, DeviceClass: "sound"}}

	session := newTestSession(srv, cfg)
	defer session.Close()

	waitUntilReady(t, session)

	err := session.Facade().MuteMic(true)
	require.NoError(t, err)
	assert.Contains(t, srv.sourceMuteCalls, true)
}

func TestFacadeReturnsConnectionLostAfterClose(t *testing.T) {
	cfg := DefaultConfig()
	srv := newFakeServer()
	session := NewSession(srv, cfg)
	session.Start()
	waitUntilReady(t, session)
	session.Close()

	err := session.Facade().MuteMic(true)
	assert.ErrorIs(t, err, ErrConnectionLost)
}

// waitUntilReady polls until the Session's loop has processed the initial
// connect and discovery chain. The fake server reports Ready synchronously,
// but the Session handles it in a second task posted to the loop, so a
// round trip queued before that task still sees ready == false.
func waitUntilReady(t *testing.T, session *Session) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		resultCh := make(chan bool, 1)
		posted := session.post(func() { resultCh <- session.ready })
		if !posted {
			t.Fatal("session closed before becoming ready")
		}
		if <-resultCh {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("session never became ready")
}

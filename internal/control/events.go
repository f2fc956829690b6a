package control

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/nitanmarcel/callaudiod/internal/logging"
	"github.com/rs/zerolog"
)

// EventType identifies a kind of routing event broadcast over the events
// WebSocket.
type EventType string

const (
	EventModeChanged    EventType = "mode-changed"
	EventSpeakerChanged EventType = "speaker-changed"
	EventMicMuteChanged EventType = "mic-mute-changed"
)

// Event is a single WebSocket routing event.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// ModeChangedData describes a mode transition.
type ModeChangedData struct {
	Mode string `json:"mode"`
}

// SpeakerChangedData describes a speaker toggle.
type SpeakerChangedData struct {
	Enabled bool `json:"enabled"`
}

// MicMuteChangedData describes a mic mute toggle.
type MicMuteChangedData struct {
	Muted bool `json:"muted"`
}

type subscriber struct {
	conn   *websocket.Conn
	ctx    context.Context
	logger *zerolog.Logger
}

// Broadcaster fans routing events out to every connected WebSocket client.
type Broadcaster struct {
	subscribers map[string]*subscriber
	mutex       sync.RWMutex
	logger      zerolog.Logger
}

var (
	broadcaster     *Broadcaster
	broadcasterOnce sync.Once
)

func initializeBroadcaster() {
	broadcaster = &Broadcaster{
		subscribers: make(map[string]*subscriber),
		logger:      logging.Component("control.events"),
	}
}

// GetBroadcaster returns the process-wide singleton event broadcaster.
func GetBroadcaster() *Broadcaster {
	broadcasterOnce.Do(initializeBroadcaster)
	return broadcaster
}

// Subscribe registers a WebSocket connection to receive future events.
func (b *Broadcaster) Subscribe(connectionID string, conn *websocket.Conn, ctx context.Context, logger *zerolog.Logger) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if _, exists := b.subscribers[connectionID]; exists {
		b.logger.Debug().Str("connection_id", connectionID).Msg("duplicate events subscription, replacing")
	}
	b.subscribers[connectionID] = &subscriber{conn: conn, ctx: ctx, logger: logger}
}

// Unsubscribe removes a WebSocket connection.
func (b *Broadcaster) Unsubscribe(connectionID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.subscribers, connectionID)
}

// BroadcastModeChanged broadcasts a mode transition to all subscribers.
func (b *Broadcaster) BroadcastModeChanged(mode string) {
	b.broadcast(Event{Type: EventModeChanged, Data: ModeChangedData{Mode: mode}})
}

// BroadcastSpeakerChanged broadcasts a speaker toggle to all subscribers.
func (b *Broadcaster) BroadcastSpeakerChanged(enabled bool) {
	b.broadcast(Event{Type: EventSpeakerChanged, Data: SpeakerChangedData{Enabled: enabled}})
}

// BroadcastMicMuteChanged broadcasts a mic mute toggle to all subscribers.
func (b *Broadcaster) BroadcastMicMuteChanged(muted bool) {
	b.broadcast(Event{Type: EventMicMuteChanged, Data: MicMuteChangedData{Muted: muted}})
}

func (b *Broadcaster) broadcast(event Event) {
	b.mutex.RLock()
	subscribersCopy := make(map[string]*subscriber, len(b.subscribers))
	for id, sub := range b.subscribers {
		subscribersCopy[id] = sub
	}
	b.mutex.RUnlock()

	var failed []string
	for connectionID, sub := range subscribersCopy {
		if !b.sendToSubscriber(sub, event) {
			failed = append(failed, connectionID)
		}
	}

	if len(failed) > 0 {
		b.mutex.Lock()
		for _, connectionID := range failed {
			delete(b.subscribers, connectionID)
		}
		b.mutex.Unlock()
	}
}

func (b *Broadcaster) sendToSubscriber(sub *subscriber, event Event) bool {
	if sub.ctx.Err() != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(sub.ctx, 5*time.Second)
	defer cancel()

	if err := wsjson.Write(ctx, sub.conn, event); err != nil {
		if strings.Contains(err.Error(), "use of closed network connection") ||
			strings.Contains(err.Error(), "context canceled") {
			sub.logger.Debug().Err(err).Msg("events connection closed during send")
		} else {
			sub.logger.Warn().Err(err).Msg("failed to send event to subscriber")
		}
		return false
	}
	return true
}

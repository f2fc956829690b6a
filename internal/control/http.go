// Package control is callaudiod's downstream intent surface: an HTTP+
// WebSocket transport standing in for the D-Bus interface upstream exposes,
// so the same SelectMode/EnableSpeaker/MuteMic facade is reachable
// end-to-end without a D-Bus dependency.
package control

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nitanmarcel/callaudiod/internal/logging"
	"github.com/nitanmarcel/callaudiod/internal/pulse"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Facade is the subset of *pulse.Facade the control surface depends on,
// narrowed so this package's tests can drive it without a real Session.
type Facade interface {
	SelectMode(mode pulse.Mode) error
	EnableSpeaker(enable bool) error
	MuteMic(mute bool) error
}

// Server wires the public intent facade to an HTTP server.
type Server struct {
	facade Facade
	logger zerolog.Logger
	engine *gin.Engine
	http   *http.Server
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=default call"`
}

type speakerRequest struct {
	Enable bool `json:"enable"`
}

type micRequest struct {
	Mute bool `json:"mute"`
}

// NewServer builds the control HTTP server around facade, listening on addr
// once Start is called.
func NewServer(facade Facade, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		facade: facade,
		logger: logging.Component("control.http"),
		engine: engine,
	}
	s.routes()
	s.http = &http.Server{Addr: addr, Handler: engine}
	return s
}

func (s *Server) routes() {
	v1 := s.engine.Group("/v1")
	v1.POST("/mode", s.handleSelectMode)
	v1.POST("/speaker", s.handleEnableSpeaker)
	v1.POST("/mic", s.handleMuteMic)
	v1.GET("/events", s.handleEvents)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("starting control surface")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleSelectMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := pulse.ModeDefault
	if req.Mode == "call" {
		mode = pulse.ModeCall
	}

	if err := s.facade.SelectMode(mode); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	GetBroadcaster().BroadcastModeChanged(req.Mode)
	c.JSON(http.StatusOK, gin.H{"mode": req.Mode})
}

func (s *Server) handleEnableSpeaker(c *gin.Context) {
	var req speakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.facade.EnableSpeaker(req.Enable); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	GetBroadcaster().BroadcastSpeakerChanged(req.Enable)
	c.JSON(http.StatusOK, gin.H{"enabled": req.Enable})
}

func (s *Server) handleMuteMic(c *gin.Context) {
	var req micRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.facade.MuteMic(req.Mute); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	GetBroadcaster().BroadcastMicMuteChanged(req.Mute)
	c.JSON(http.StatusOK, gin.H{"muted": req.Mute})
}

func (s *Server) handleEvents(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to accept events websocket")
		return
	}
	connectionID := uuid.NewString()
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	logger := logging.Component("control.events.connection")
	GetBroadcaster().Subscribe(connectionID, conn, ctx, &logger)
	defer GetBroadcaster().Unsubscribe(connectionID)

	// Block on reads purely to detect disconnect; the events channel is
	// write-only from the server's side.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

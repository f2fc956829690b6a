//go:build !linux || !cgo

package backend

import (
	"errors"

	"github.com/nitanmarcel/callaudiod/internal/pulse"
)

// Server is a stand-in used on platforms without cgo or outside Linux,
// where libpulse isn't available to link against. Connect fails with
// ErrUnsupported so callers get a clear error instead of a link failure;
// every other call completes at once with an empty list or success=false.
type Server struct{}

// New returns a Server stub. appName is accepted for signature parity with
// the real backend but otherwise unused.
func New(appName string) *Server {
	return &Server{}
}

// ErrUnsupported is returned by Connect on this platform.
var ErrUnsupported = errors.New("backend: libpulse support requires linux and cgo")

func (s *Server) Connect(onState pulse.StateCallback) error { return ErrUnsupported }
func (s *Server) Disconnect()                                {}
func (s *Server) Subscribe(onEvent pulse.SubscriptionCallback) {}

func (s *Server) GetCardInfoList(cb pulse.CardInfoCallback)            { cb(nil, true) }
func (s *Server) GetCardInfoByIndex(idx uint32, cb pulse.CardInfoCallback) { cb(nil, true) }
func (s *Server) GetModuleInfoList(cb pulse.ModuleInfoCallback)        { cb(nil, true) }
func (s *Server) UnloadModule(idx uint32, cb pulse.SuccessCallback)    { cb(false) }

func (s *Server) GetSinkInfoList(cb pulse.SinkInfoCallback)                { cb(nil, true) }
func (s *Server) GetSinkInfoByIndex(idx uint32, cb pulse.SinkInfoCallback) { cb(nil, true) }
func (s *Server) SetSinkPortByIndex(idx uint32, port string, cb pulse.SuccessCallback) { cb(false) }

func (s *Server) GetSourceInfoList(cb pulse.SourceInfoCallback)                { cb(nil, true) }
func (s *Server) GetSourceInfoByIndex(idx uint32, cb pulse.SourceInfoCallback) { cb(nil, true) }
func (s *Server) SetSourcePortByIndex(idx uint32, port string, cb pulse.SuccessCallback) { cb(false) }
func (s *Server) SetSourceMuteByIndex(idx uint32, mute bool, cb pulse.SuccessCallback)   { cb(false) }

func (s *Server) SetCardProfileByIndex(idx uint32, profile string, cb pulse.SuccessCallback) { cb(false) }

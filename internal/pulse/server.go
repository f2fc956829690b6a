package pulse

// Server is the abstract async PulseAudio context the rest of this package
// drives. It mirrors the subset of libpulse's async context API that
// callaudiod needs: list/get callbacks that may fire once per item followed
// by an end-of-list marker (or fire directly with eol=true and info=nil for
// an empty result), and success callbacks that fire exactly once.
//
// All callbacks passed to a Server implementation MUST be invoked on the same
// goroutine that owns the Server (the Session's loop goroutine) — Server
// implementations are not required to be safe for concurrent callback
// dispatch from multiple goroutines, matching the single-threaded event loop
// model described by the controller.
//
// The real implementation lives in internal/pulse/backend and is cgo-bound to
// libpulse; tests drive the package against a fake in-memory Server.
type Server interface {
	// Connect starts (or restarts) the connection and registers the state
	// observer. It must not block; state transitions are reported
	// exclusively through onState.
	Connect(onState StateCallback) error

	// Disconnect tears down the current connection. Safe to call multiple
	// times.
	Disconnect()

	// Subscribe installs the subscription callback for Sink|Source|Card
	// events. Replaces any previously installed callback.
	Subscribe(onEvent SubscriptionCallback)

	GetCardInfoList(cb CardInfoCallback)
	GetCardInfoByIndex(idx uint32, cb CardInfoCallback)

	GetModuleInfoList(cb ModuleInfoCallback)
	UnloadModule(idx uint32, cb SuccessCallback)

	GetSinkInfoList(cb SinkInfoCallback)
	GetSinkInfoByIndex(idx uint32, cb SinkInfoCallback)
	SetSinkPortByIndex(idx uint32, port string, cb SuccessCallback)

	GetSourceInfoList(cb SourceInfoCallback)
	GetSourceInfoByIndex(idx uint32, cb SourceInfoCallback)
	SetSourcePortByIndex(idx uint32, port string, cb SuccessCallback)
	SetSourceMuteByIndex(idx uint32, mute bool, cb SuccessCallback)

	SetCardProfileByIndex(idx uint32, profile string, cb SuccessCallback)
}

type (
	StateCallback        func(state ContextState)
	SubscriptionCallback func(event SubscriptionEvent)
	CardInfoCallback     func(info *CardInfo, eol bool)
	SinkInfoCallback     func(info *SinkInfo, eol bool)
	SourceInfoCallback   func(info *SourceInfo, eol bool)
	ModuleInfoCallback   func(info *ModuleInfo, eol bool)
	SuccessCallback      func(success bool)
)

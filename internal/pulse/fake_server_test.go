package pulse

// fakeServer is an in-memory Server double: every test in this package
// drives the controller against it instead of a real libpulse connection.
// All queued responses are delivered synchronously and inline, on whichever
// goroutine made the request: the test goroutine where tests invoke
// Discovery/Reactor/Engine methods directly, or the Session loop goroutine
// in the facade tests, which start a Session.
type fakeServer struct {
	cards   []CardInfo
	modules []ModuleInfo
	sinks   []SinkInfo
	sources []SourceInfo

	connectErr error

	unloadedModules  []uint32
	sinkPortCalls    []string
	sourcePortCalls  []string
	sourceMuteCalls  []bool
	cardProfileCalls []string

	failNextSinkPort    bool
	failNextSourcePort  bool
	failNextSourceMute  bool
	failNextCardProfile bool
	failNextUnload      bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{}
}

func (f *fakeServer) Connect(onState StateCallback) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	onState(StateReady)
	return nil
}

func (f *fakeServer) Disconnect() {}

func (f *fakeServer) Subscribe(onEvent SubscriptionCallback) {}

func (f *fakeServer) GetCardInfoList(cb CardInfoCallback) {
	for i := range f.cards {
		cb(&f.cards[i], false)
	}
	cb(nil, true)
}

func (f *fakeServer) GetCardInfoByIndex(idx uint32, cb CardInfoCallback) {
	for i := range f.cards {
		if f.cards[i].Index == idx {
			cb(&f.cards[i], false)
			cb(nil, true)
			return
		}
	}
	cb(nil, true)
}

func (f *fakeServer) GetModuleInfoList(cb ModuleInfoCallback) {
	for i := range f.modules {
		cb(&f.modules[i], false)
	}
	cb(nil, true)
}

func (f *fakeServer) UnloadModule(idx uint32, cb SuccessCallback) {
	if f.failNextUnload {
		f.failNextUnload = false
		cb(false)
		return
	}
	f.unloadedModules = append(f.unloadedModules, idx)
	cb(true)
}

func (f *fakeServer) GetSinkInfoList(cb SinkInfoCallback) {
	for i := range f.sinks {
		cb(&f.sinks[i], false)
	}
	cb(nil, true)
}

func (f *fakeServer) GetSinkInfoByIndex(idx uint32, cb SinkInfoCallback) {
	for i := range f.sinks {
		if f.sinks[i].Index == idx {
			cb(&f.sinks[i], false)
			cb(nil, true)
			return
		}
	}
	cb(nil, true)
}

func (f *fakeServer) SetSinkPortByIndex(idx uint32, port string, cb SuccessCallback) {
	f.sinkPortCalls = append(f.sinkPortCalls, port)
	if f.failNextSinkPort {
		f.failNextSinkPort = false
		cb(false)
		return
	}
	for i := range f.sinks {
		if f.sinks[i].Index == idx {
			f.sinks[i].ActivePort = port
		}
	}
	cb(true)
}

func (f *fakeServer) GetSourceInfoList(cb SourceInfoCallback) {
	for i := range f.sources {
		cb(&f.sources[i], false)
	}
	cb(nil, true)
}

func (f *fakeServer) GetSourceInfoByIndex(idx uint32, cb SourceInfoCallback) {
	for i := range f.sources {
		if f.sources[i].Index == idx {
			cb(&f.sources[i], false)
			cb(nil, true)
			return
		}
	}
	cb(nil, true)
}

func (f *fakeServer) SetSourcePortByIndex(idx uint32, port string, cb SuccessCallback) {
	f.sourcePortCalls = append(f.sourcePortCalls, port)
	if f.failNextSourcePort {
		f.failNextSourcePort = false
		cb(false)
		return
	}
	for i := range f.sources {
		if f.sources[i].Index == idx {
			f.sources[i].ActivePort = port
		}
	}
	cb(true)
}

func (f *fakeServer) SetSourceMuteByIndex(idx uint32, mute bool, cb SuccessCallback) {
	f.sourceMuteCalls = append(f.sourceMuteCalls, mute)
	if f.failNextSourceMute {
		f.failNextSourceMute = false
		cb(false)
		return
	}
	for i := range f.sources {
		if f.sources[i].Index == idx {
			f.sources[i].Mute = mute
		}
	}
	cb(true)
}

func (f *fakeServer) SetCardProfileByIndex(idx uint32, profile string, cb SuccessCallback) {
	f.cardProfileCalls = append(f.cardProfileCalls, profile)
	if f.failNextCardProfile {
		f.failNextCardProfile = false
		cb(false)
		return
	}
	for i := range f.cards {
		if f.cards[i].Index == idx {
			f.cards[i].ActiveProfile = profile
		}
	}
	cb(true)
}

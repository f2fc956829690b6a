//go:build linux && cgo

package backend

/*
#cgo pkg-config: libpulse
#include <stdlib.h>
#include <pulse/pulseaudio.h>

extern void goContextStateCb(pa_context *c, void *userdata);
extern void goSubscribeCb(pa_context *c, pa_subscription_event_type_t t, uint32_t idx, void *userdata);
extern void goCardInfoCb(pa_context *c, const pa_card_info *i, int eol, void *userdata);
extern void goModuleInfoCb(pa_context *c, const pa_module_info *i, int eol, void *userdata);
extern void goSinkInfoCb(pa_context *c, const pa_sink_info *i, int eol, void *userdata);
extern void goSourceInfoCb(pa_context *c, const pa_source_info *i, int eol, void *userdata);
extern void goSuccessCb(pa_context *c, int success, void *userdata);

static void register_context_state_cb(pa_context *c, void *userdata) {
	pa_context_set_state_callback(c, goContextStateCb, userdata);
}

static void register_subscribe_cb(pa_context *c, void *userdata) {
	pa_context_set_subscribe_callback(c, goSubscribeCb, userdata);
}

static pa_operation *call_get_card_info_list(pa_context *c, void *userdata) {
	return pa_context_get_card_info_list(c, goCardInfoCb, userdata);
}

static pa_operation *call_get_card_info_by_index(pa_context *c, uint32_t idx, void *userdata) {
	return pa_context_get_card_info_by_index(c, idx, goCardInfoCb, userdata);
}

static pa_operation *call_get_module_info_list(pa_context *c, void *userdata) {
	return pa_context_get_module_info_list(c, goModuleInfoCb, userdata);
}

static pa_operation *call_unload_module(pa_context *c, uint32_t idx, void *userdata) {
	return pa_context_unload_module(c, idx, goSuccessCb, userdata);
}

static pa_operation *call_get_sink_info_list(pa_context *c, void *userdata) {
	return pa_context_get_sink_info_list(c, goSinkInfoCb, userdata);
}

static pa_operation *call_get_sink_info_by_index(pa_context *c, uint32_t idx, void *userdata) {
	return pa_context_get_sink_info_by_index(c, idx, goSinkInfoCb, userdata);
}

static pa_operation *call_set_sink_port(pa_context *c, uint32_t idx, const char *port, void *userdata) {
	return pa_context_set_sink_port_by_index(c, idx, port, goSuccessCb, userdata);
}

static pa_operation *call_get_source_info_list(pa_context *c, void *userdata) {
	return pa_context_get_source_info_list(c, goSourceInfoCb, userdata);
}

static pa_operation *call_get_source_info_by_index(pa_context *c, uint32_t idx, void *userdata) {
	return pa_context_get_source_info_by_index(c, idx, goSourceInfoCb, userdata);
}

static pa_operation *call_set_source_port(pa_context *c, uint32_t idx, const char *port, void *userdata) {
	return pa_context_set_source_port_by_index(c, idx, port, goSuccessCb, userdata);
}

static pa_operation *call_set_source_mute(pa_context *c, uint32_t idx, int mute, void *userdata) {
	return pa_context_set_source_mute_by_index(c, idx, mute, goSuccessCb, userdata);
}

static pa_operation *call_set_card_profile(pa_context *c, uint32_t idx, const char *profile, void *userdata) {
	return pa_context_set_card_profile_by_index(c, idx, profile, goSuccessCb, userdata);
}
*/
import "C"

import (
	"errors"
	"runtime/cgo"
	"unsafe"

	"github.com/nitanmarcel/callaudiod/internal/logging"
	"github.com/nitanmarcel/callaudiod/internal/pulse"
)

// Server is the libpulse-backed implementation of pulse.Server. It owns a
// threaded mainloop so that blocking cgo calls never stall the Session's
// loop goroutine: every pa_context_* call below returns immediately, with
// the actual completion delivered later on the mainloop's own thread via
// the registered callback.
type Server struct {
	mainloop *C.pa_threaded_mainloop
	api      *C.pa_mainloop_api
	ctx      *C.pa_context
	appName  string
}

// New constructs a Server that will identify itself to PulseAudio as
// appName once Connect is called.
func New(appName string) *Server {
	return &Server{appName: appName}
}

var logger = logging.Component("pulse.backend")

func (s *Server) Connect(onState pulse.StateCallback) error {
	s.mainloop = C.pa_threaded_mainloop_new()
	if s.mainloop == nil {
		return errors.New("backend: failed to allocate pulseaudio mainloop")
	}
	s.api = C.pa_threaded_mainloop_get_api(s.mainloop)

	cName := C.CString(s.appName)
	defer C.free(unsafe.Pointer(cName))
	s.ctx = C.pa_context_new(s.api, cName)
	if s.ctx == nil {
		return errors.New("backend: failed to allocate pulseaudio context")
	}

	handle := cgo.NewHandle(onState)
	C.register_context_state_cb(s.ctx, unsafe.Pointer(handle))

	if C.pa_threaded_mainloop_start(s.mainloop) != 0 {
		return errors.New("backend: failed to start pulseaudio mainloop")
	}

	if C.pa_context_connect(s.ctx, nil, C.PA_CONTEXT_NOFLAGS, nil) < 0 {
		return errors.New("backend: pa_context_connect failed")
	}
	return nil
}

func (s *Server) Disconnect() {
	if s.ctx != nil {
		C.pa_context_disconnect(s.ctx)
		C.pa_context_unref(s.ctx)
		s.ctx = nil
	}
	if s.mainloop != nil {
		C.pa_threaded_mainloop_stop(s.mainloop)
		C.pa_threaded_mainloop_free(s.mainloop)
		s.mainloop = nil
	}
}

func (s *Server) Subscribe(onEvent pulse.SubscriptionCallback) {
	handle := cgo.NewHandle(onEvent)
	C.register_subscribe_cb(s.ctx, unsafe.Pointer(handle))
	mask := C.pa_subscription_mask_t(C.PA_SUBSCRIPTION_MASK_CARD | C.PA_SUBSCRIPTION_MASK_SINK | C.PA_SUBSCRIPTION_MASK_SOURCE)
	C.pa_context_subscribe(s.ctx, mask, nil, nil)
}

func (s *Server) GetCardInfoList(cb pulse.CardInfoCallback) {
	handle := cgo.NewHandle(cb)
	C.call_get_card_info_list(s.ctx, unsafe.Pointer(handle))
}

func (s *Server) GetCardInfoByIndex(idx uint32, cb pulse.CardInfoCallback) {
	handle := cgo.NewHandle(cb)
	C.call_get_card_info_by_index(s.ctx, C.uint32_t(idx), unsafe.Pointer(handle))
}

func (s *Server) GetModuleInfoList(cb pulse.ModuleInfoCallback) {
	handle := cgo.NewHandle(cb)
	C.call_get_module_info_list(s.ctx, unsafe.Pointer(handle))
}

func (s *Server) UnloadModule(idx uint32, cb pulse.SuccessCallback) {
	handle := cgo.NewHandle(cb)
	C.call_unload_module(s.ctx, C.uint32_t(idx), unsafe.Pointer(handle))
}

func (s *Server) GetSinkInfoList(cb pulse.SinkInfoCallback) {
	handle := cgo.NewHandle(cb)
	C.call_get_sink_info_list(s.ctx, unsafe.Pointer(handle))
}

func (s *Server) GetSinkInfoByIndex(idx uint32, cb pulse.SinkInfoCallback) {
	handle := cgo.NewHandle(cb)
	C.call_get_sink_info_by_index(s.ctx, C.uint32_t(idx), unsafe.Pointer(handle))
}

func (s *Server) SetSinkPortByIndex(idx uint32, port string, cb pulse.SuccessCallback) {
	cPort := C.CString(port)
	defer C.free(unsafe.Pointer(cPort))
	handle := cgo.NewHandle(cb)
	C.call_set_sink_port(s.ctx, C.uint32_t(idx), cPort, unsafe.Pointer(handle))
}

func (s *Server) GetSourceInfoList(cb pulse.SourceInfoCallback) {
	handle := cgo.NewHandle(cb)
	C.call_get_source_info_list(s.ctx, unsafe.Pointer(handle))
}

func (s *Server) GetSourceInfoByIndex(idx uint32, cb pulse.SourceInfoCallback) {
	handle := cgo.NewHandle(cb)
	C.call_get_source_info_by_index(s.ctx, C.uint32_t(idx), unsafe.Pointer(handle))
}

func (s *Server) SetSourcePortByIndex(idx uint32, port string, cb pulse.SuccessCallback) {
	cPort := C.CString(port)
	defer C.free(unsafe.Pointer(cPort))
	handle := cgo.NewHandle(cb)
	C.call_set_source_port(s.ctx, C.uint32_t(idx), cPort, unsafe.Pointer(handle))
}

func (s *Server) SetSourceMuteByIndex(idx uint32, mute bool, cb pulse.SuccessCallback) {
	muteInt := C.int(0)
	if mute {
		muteInt = 1
	}
	handle := cgo.NewHandle(cb)
	C.call_set_source_mute(s.ctx, C.uint32_t(idx), muteInt, unsafe.Pointer(handle))
}

func (s *Server) SetCardProfileByIndex(idx uint32, profile string, cb pulse.SuccessCallback) {
	cProfile := C.CString(profile)
	defer C.free(unsafe.Pointer(cProfile))
	handle := cgo.NewHandle(cb)
	C.call_set_card_profile(s.ctx, C.uint32_t(idx), cProfile, unsafe.Pointer(handle))
}

//export goContextStateCb
func goContextStateCb(c *C.pa_context, userdata unsafe.Pointer) {
	handle := cgo.Handle(uintptr(userdata))
	cb := handle.Value().(pulse.StateCallback)
	cb(pulse.ContextState(C.pa_context_get_state(c)))
}

//export goSubscribeCb
func goSubscribeCb(c *C.pa_context, t C.pa_subscription_event_type_t, idx C.uint32_t, userdata unsafe.Pointer) {
	handle := cgo.Handle(uintptr(userdata))
	cb := handle.Value().(pulse.SubscriptionCallback)

	facilityMask := t & C.PA_SUBSCRIPTION_EVENT_FACILITY_MASK
	kindMask := t & C.PA_SUBSCRIPTION_EVENT_TYPE_MASK

	var facility pulse.Facility
	switch facilityMask {
	case C.PA_SUBSCRIPTION_EVENT_SINK:
		facility = pulse.FacilitySink
	case C.PA_SUBSCRIPTION_EVENT_SOURCE:
		facility = pulse.FacilitySource
	case C.PA_SUBSCRIPTION_EVENT_CARD:
		facility = pulse.FacilityCard
	default:
		return
	}

	var kind pulse.EventKind
	switch kindMask {
	case C.PA_SUBSCRIPTION_EVENT_NEW:
		kind = pulse.EventNew
	case C.PA_SUBSCRIPTION_EVENT_CHANGE:
		kind = pulse.EventChange
	case C.PA_SUBSCRIPTION_EVENT_REMOVE:
		kind = pulse.EventRemove
	}

	cb(pulse.SubscriptionEvent{Facility: facility, Kind: kind, Index: uint32(idx)})
}

func goPortAvailability(a C.pa_port_available_t) pulse.PortAvailability {
	switch a {
	case C.PA_PORT_AVAILABLE_NO:
		return pulse.AvailabilityNo
	case C.PA_PORT_AVAILABLE_YES:
		return pulse.AvailabilityYes
	default:
		return pulse.AvailabilityUnknown
	}
}

func goPortInfoList(ports **C.pa_port_info, n C.uint32_t) []pulse.PortInfo {
	count := int(n)
	if count == 0 {
		return nil
	}
	slice := unsafe.Slice(ports, count)
	result := make([]pulse.PortInfo, 0, count)
	for _, p := range slice {
		result = append(result, pulse.PortInfo{
			Name:         C.GoString(p.name),
			Priority:     uint32(p.priority),
			Availability: goPortAvailability(p.available),
		})
	}
	return result
}

func proplistGetOrEmpty(pl *C.pa_proplist, key string) string {
	cKey := C.CString(key)
	defer C.free(unsafe.Pointer(cKey))
	v := C.pa_proplist_gets(pl, cKey)
	if v == nil {
		return ""
	}
	return C.GoString(v)
}

//export goCardInfoCb
func goCardInfoCb(c *C.pa_context, i *C.pa_card_info, eol C.int, userdata unsafe.Pointer) {
	handle := cgo.Handle(uintptr(userdata))
	cb := handle.Value().(pulse.CardInfoCallback)
	if eol != 0 || i == nil {
		cb(nil, true)
		handle.Delete()
		return
	}

	profiles := make([]pulse.ProfileInfo, 0, int(i.n_profiles))
	profileSlice := unsafe.Slice(i.profiles2, int(i.n_profiles))
	for _, p := range profileSlice {
		profiles = append(profiles, pulse.ProfileInfo{Name: C.GoString(p.name)})
	}

	var activeProfile string
	if i.active_profile2 != nil {
		activeProfile = C.GoString(i.active_profile2.name)
	}

	info := &pulse.CardInfo{
		Index:         uint32(i.index),
		Name:          C.GoString(i.name),
		BusPath:       proplistGetOrEmpty(i.proplist, "device.bus_path"),
		FormFactor:    proplistGetOrEmpty(i.proplist, "device.form_factor"),
		DeviceClass:   proplistGetOrEmpty(i.proplist, "device.class"),
		ActiveProfile: activeProfile,
		Profiles:      profiles,
	}
	cb(info, false)
}

//export goModuleInfoCb
func goModuleInfoCb(c *C.pa_context, i *C.pa_module_info, eol C.int, userdata unsafe.Pointer) {
	handle := cgo.Handle(uintptr(userdata))
	cb := handle.Value().(pulse.ModuleInfoCallback)
	if eol != 0 || i == nil {
		cb(nil, true)
		handle.Delete()
		return
	}
	cb(&pulse.ModuleInfo{Index: uint32(i.index), Name: C.GoString(i.name)}, false)
}

//export goSinkInfoCb
func goSinkInfoCb(c *C.pa_context, i *C.pa_sink_info, eol C.int, userdata unsafe.Pointer) {
	handle := cgo.Handle(uintptr(userdata))
	cb := handle.Value().(pulse.SinkInfoCallback)
	if eol != 0 || i == nil {
		cb(nil, true)
		handle.Delete()
		return
	}

	var activePort string
	if i.active_port != nil {
		activePort = C.GoString(i.active_port.name)
	}

	info := &pulse.SinkInfo{
		Index:       uint32(i.index),
		Card:        uint32(i.card),
		Name:        C.GoString(i.name),
		DeviceAPI:   proplistGetOrEmpty(i.proplist, "device.api"),
		DeviceClass: proplistGetOrEmpty(i.proplist, "device.class"),
		ActivePort:  activePort,
		Ports:       goPortInfoList(i.ports, C.uint32_t(i.n_ports)),
	}
	cb(info, false)
}

//export goSourceInfoCb
func goSourceInfoCb(c *C.pa_context, i *C.pa_source_info, eol C.int, userdata unsafe.Pointer) {
	handle := cgo.Handle(uintptr(userdata))
	cb := handle.Value().(pulse.SourceInfoCallback)
	if eol != 0 || i == nil {
		cb(nil, true)
		handle.Delete()
		return
	}

	var activePort string
	if i.active_port != nil {
		activePort = C.GoString(i.active_port.name)
	}

	info := &pulse.SourceInfo{
		Index:       uint32(i.index),
		Card:        uint32(i.card),
		Name:        C.GoString(i.name),
		DeviceAPI:   proplistGetOrEmpty(i.proplist, "device.api"),
		DeviceClass: proplistGetOrEmpty(i.proplist, "device.class"),
		ActivePort:  activePort,
		Mute:        i.mute != 0,
		Ports:       goPortInfoList(i.ports, C.uint32_t(i.n_ports)),
	}
	cb(info, false)
}

//export goSuccessCb
func goSuccessCb(c *C.pa_context, success C.int, userdata unsafe.Pointer) {
	handle := cgo.Handle(uintptr(userdata))
	cb := handle.Value().(pulse.SuccessCallback)
	handle.Delete()
	cb(success != 0)
}

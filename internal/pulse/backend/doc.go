// Package backend provides the real pulse.Server implementation, bound to
// libpulse through cgo. It is the only package in this module that links
// against PulseAudio directly; everything in internal/pulse talks to the
// pulse.Server interface instead, so it never needs a libpulse-equipped
// host to run its tests.
package backend

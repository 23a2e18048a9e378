// Package core defines sentinel errors.
package core

import "errors"

var (
	// Packet decoding errors
	ErrPacketTooShort   = errors.New("core: packet too short")
	ErrUnsupportedProto = errors.New("core: unsupported protocol")

	// Plugin errors
	ErrPluginNotFound   = errors.New("core: plugin not found")
	ErrPluginInitFailed = errors.New("core: plugin init failed")

	// Configuration errors
	ErrConfigInvalid = errors.New("core: invalid configuration")
)

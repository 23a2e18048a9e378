// Package plugin defines plugin interfaces.
package plugin

import (
	"net/netip"

	"github.com/John-sanpe/suricata/internal/core"
)

// Parser parses application-layer protocols.
type Parser interface {
	Plugin
	CanHandle(pkt *core.DecodedPacket) bool
	Handle(pkt *core.DecodedPacket) (payload any, labels core.Labels, err error)
}

// FlowRegistry is the interface for per-run flow state storage.
// Parsers use this to track state across packets in a flow.
type FlowRegistry interface {
	Get(key FlowKey) (any, bool)
	Set(key FlowKey, value any)
	Delete(key FlowKey)
	Range(f func(key FlowKey, value any) bool)
	Count() int
	Clear()
}

// FlowKey uniquely identifies a network flow using the 5-tuple.
type FlowKey struct {
	SrcIP   netip.Addr
	DstIP   netip.Addr
	SrcPort uint16
	DstPort uint16
	Proto   uint8
}

// FlowRegistryAware is an optional interface that parsers can implement
// to receive a FlowRegistry during wire-up.
type FlowRegistryAware interface {
	SetFlowRegistry(registry FlowRegistry)
}

// Package core defines core types.
package core

// Labels represents key-value metadata attached by parsers.
type Labels map[string]string

// Label naming constants following {protocol}.{field} convention.
const (
	LabelDCERPCPacketType  = "dcerpc.packet_type"  // Wire packet type (decimal)
	LabelDCERPCCallID      = "dcerpc.call_id"      // Derived 16-bit serial number
	LabelDCERPCOpnum       = "dcerpc.opnum"        // Operation number
	LabelDCERPCActivityID  = "dcerpc.activity_id"  // Activity UUID (canonical form)
	LabelDCERPCInterfaceID = "dcerpc.interface_id" // Interface UUID (canonical form)
	LabelDCERPCFragLen     = "dcerpc.frag_len"     // Declared PDU body size
	LabelDCERPCStubLenTS   = "dcerpc.stub_len_ts"  // Accumulated request stub bytes
	LabelDCERPCStubLenTC   = "dcerpc.stub_len_tc"  // Accumulated response stub bytes
)

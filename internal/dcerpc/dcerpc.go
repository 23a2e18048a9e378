// Package dcerpc implements DCERPC over UDP: wire header parsing,
// per-flow transaction tracking, and stub data reassembly. Stub contents are
// delimited and concatenated per call and per direction but never interpreted.
package dcerpc

import (
	"errors"

	"github.com/google/uuid"

	"github.com/John-sanpe/suricata/internal/applayer"
)

// Packet types carried in the header's ptype field.
const (
	TypeRequest   uint8 = 0
	TypePing      uint8 = 1
	TypeResponse  uint8 = 2
	TypeFault     uint8 = 3
	TypeWorking   uint8 = 4
	TypeNocall    uint8 = 5
	TypeReject    uint8 = 6
	TypeAck       uint8 = 7
	TypeClCancel  uint8 = 8
	TypeFack      uint8 = 9
	TypeCancelAck uint8 = 10
)

// Header flags1 bits.
const (
	PFCFirstFrag uint8 = 0x01
	PFCLastFrag  uint8 = 0x02
)

// DrepLittleEndian is the byte-order bit in drep[0]: set = little-endian
// convention for the header's multi-byte fields, clear = big-endian.
const DrepLittleEndian uint8 = 0x10

// Sentinel errors surfaced by header parsing. All three abort the datagram.
var (
	ErrInsufficientData = errors.New("dcerpc: insufficient data for udp header")
	ErrMalformedHeader  = errors.New("dcerpc: malformed udp header")
	ErrVersionMismatch  = errors.New("dcerpc: protocol version mismatch")
)

// UUIDEntry records one activity UUID observed in a parsed header, together
// with free-form association metadata. Entries are appended once per datagram
// and never deduplicated.
type UUIDEntry struct {
	UUID uuid.UUID
	Meta map[string]string
}

// Transaction identifies one logical call. One record is created per
// valid-header datagram; retirement is the host framework's responsibility.
type Transaction struct {
	// ID is a process-local sequential identifier used only for external
	// enumeration; it is unrelated to any wire identifier.
	ID uint64
	// CallID is the derived 16-bit serial number, widened.
	CallID uint32
	// Endianness is drep[0] & DrepLittleEndian at creation time.
	Endianness uint8

	// Directional stub buffers. The logical length counters are authoritative:
	// a first-fragment reset rewinds the counter without clearing storage, so
	// readers must never look past StubLenTS/StubLenTC.
	StubDataTS []byte
	StubLenTS  uint16
	StubDataTC []byte
	StubLenTC  uint16

	ReqDone  bool
	RespDone bool

	FragCntTS uint16
	FragCntTC uint16

	// DetectState is the opaque detection-engine handle; not interpreted here.
	DetectState applayer.DetectState
}

package dcerpc

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// HdrLenUDP is the fixed connectionless DCERPC header length.
const HdrLenUDP = 80

// HeaderUDP is the fixed 80-byte connectionless DCERPC header.
// Multi-byte integer fields are decoded in the byte order declared by drep;
// the three embedded UUIDs are kept in wire order.
//
// Wire layout:
//
//	version(1) | ptype(1) | flags1(1) | flags2(1) | drep(3) | serial_hi(1) |
//	object uuid(16) | interface uuid(16) | activity uuid(16) |
//	boot time(4) | interface version(4) | sequence number(4) |
//	opnum(2) | ihint(2) | ahint(2) | frag length(2) | frag number(2) |
//	auth proto(1) | serial_lo(1)
type HeaderUDP struct {
	RPCVers     uint8
	PktType     uint8
	Flags1      uint8
	Flags2      uint8
	Drep        [3]byte
	SerialHi    uint8
	ObjectID    uuid.UUID
	InterfaceID uuid.UUID
	ActivityID  uuid.UUID
	ServerBoot  uint32
	IfVers      uint32
	SeqNum      uint32
	Opnum       uint16
	IHint       uint16
	AHint       uint16
	FragLen     uint16
	FragNum     uint16
	AuthProto   uint8
	SerialLo    uint8
}

// ParseHeaderUDP decodes one fixed-size header from the front of buf and
// returns the header together with the number of bytes consumed (HdrLenUDP
// on success). It validates nothing beyond field widths; version checking is
// the caller's concern.
func ParseHeaderUDP(buf []byte) (HeaderUDP, int, error) {
	var hdr HeaderUDP
	if len(buf) < HdrLenUDP {
		return hdr, 0, fmt.Errorf("%w: have %d bytes, need %d", ErrInsufficientData, len(buf), HdrLenUDP)
	}

	hdr.RPCVers = buf[0]
	hdr.PktType = buf[1]
	hdr.Flags1 = buf[2]
	hdr.Flags2 = buf[3]
	copy(hdr.Drep[:], buf[4:7])
	hdr.SerialHi = buf[7]

	var order binary.ByteOrder = binary.BigEndian
	if hdr.Drep[0]&DrepLittleEndian != 0 {
		order = binary.LittleEndian
	}

	var err error
	if hdr.ObjectID, err = uuid.FromBytes(buf[8:24]); err != nil {
		return hdr, 0, fmt.Errorf("%w: object uuid: %v", ErrMalformedHeader, err)
	}
	if hdr.InterfaceID, err = uuid.FromBytes(buf[24:40]); err != nil {
		return hdr, 0, fmt.Errorf("%w: interface uuid: %v", ErrMalformedHeader, err)
	}
	if hdr.ActivityID, err = uuid.FromBytes(buf[40:56]); err != nil {
		return hdr, 0, fmt.Errorf("%w: activity uuid: %v", ErrMalformedHeader, err)
	}

	hdr.ServerBoot = order.Uint32(buf[56:60])
	hdr.IfVers = order.Uint32(buf[60:64])
	hdr.SeqNum = order.Uint32(buf[64:68])
	hdr.Opnum = order.Uint16(buf[68:70])
	hdr.IHint = order.Uint16(buf[70:72])
	hdr.AHint = order.Uint16(buf[72:74])
	hdr.FragLen = order.Uint16(buf[74:76])
	hdr.FragNum = order.Uint16(buf[76:78])
	hdr.AuthProto = buf[78]
	hdr.SerialLo = buf[79]

	return hdr, HdrLenUDP, nil
}

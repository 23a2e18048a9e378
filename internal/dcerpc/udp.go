package dcerpc

import (
	"errors"
	"fmt"

	"github.com/John-sanpe/suricata/internal/applayer"
	"github.com/John-sanpe/suricata/internal/log"
)

// UDPState holds per-flow DCERPC UDP reassembly state. It is owned by a
// single flow and processed synchronously; no internal locking.
//
// Each datagram replaces the previous header wholesale: reassembly never
// spans packet headers, only the body bytes following one header.
type UDPState struct {
	txID         uint64
	header       *HeaderUDP
	transactions []*Transaction
	fragLenLeft  uint16
	uuidList     []UUIDEntry
	deState      applayer.DetectState
	txData       *applayer.TxData
}

var (
	_ applayer.State = (*UDPState)(nil)
	_ applayer.Tx    = (*UDPState)(nil)
)

// NewUDPState creates an empty flow state.
func NewUDPState() *UDPState {
	return &UDPState{
		txData: applayer.NewTxData(),
	}
}

// createTx allocates a transaction for the given serial number. The caller
// appends it to the transaction list.
func (s *UDPState) createTx(serialNo uint16) *Transaction {
	tx := &Transaction{
		ID:         s.txID,
		CallID:     uint32(serialNo),
		Endianness: s.hdrDrep0() & DrepLittleEndian,
	}
	s.txID++
	return tx
}

// evaluateSerialNo reconstructs the 16-bit call identifier from the header's
// serial byte pair under the drep byte-order rule. Recomputed on demand; the
// header is always installed before this is called.
func (s *UDPState) evaluateSerialNo() uint16 {
	var serialHi, serialLo uint8
	if s.header != nil {
		serialHi = s.header.SerialHi
		serialLo = s.header.SerialLo
	}
	if s.hdrDrep0()&DrepLittleEndian == 0 {
		return uint16(serialLo)<<8 | uint16(serialHi)
	}
	return uint16(serialHi)<<8 | uint16(serialLo)
}

// findTx scans the transaction list for an exact call-identifier match.
// The earliest-inserted match wins.
func (s *UDPState) findTx(serialNo uint16) *Transaction {
	for _, tx := range s.transactions {
		if tx.CallID == uint32(serialNo) {
			return tx
		}
	}
	return nil
}

func (s *UDPState) hdrPktType() uint8 {
	if s.header != nil {
		return s.header.PktType
	}
	return 0
}

func (s *UDPState) hdrFlags1() uint8 {
	if s.header != nil {
		return s.header.Flags1
	}
	return 0
}

func (s *UDPState) hdrDrep0() uint8 {
	if s.header != nil {
		return s.header.Drep[0]
	}
	return 0
}

func (s *UDPState) hdrFragLen() uint16 {
	if s.header != nil {
		return s.header.FragLen
	}
	return 0
}

// handleFragmentData appends one fragment's stub bytes to the transaction
// matching the current header's serial number. It returns the number of
// bytes consumed, or 0 when no progress is possible: no matching
// transaction, an unrecognized packet type, or an exhausted length budget.
func (s *UDPState) handleFragmentData(input []byte, inputLen uint16) uint16 {
	hdrFlags1 := s.hdrFlags1()
	lenLeft := s.fragLenLeft
	serialNo := s.evaluateSerialNo()

	tx := s.findTx(serialNo)
	if tx == nil {
		log.GetLogger().Debugf("dcerpc udp: no transaction found matching serial number %d", serialNo)
		return 0
	}

	var retval uint16
	switch s.hdrPktType() {
	case TypeRequest:
		retval = evaluateStubParams(input, inputLen, hdrFlags1, lenLeft,
			&tx.StubDataTS, &tx.StubLenTS)
		tx.ReqDone = true
		tx.FragCntTS++
	case TypeResponse:
		retval = evaluateStubParams(input, inputLen, hdrFlags1, lenLeft,
			&tx.StubDataTC, &tx.StubLenTC)
		tx.RespDone = true
		tx.FragCntTC++
	default:
		log.GetLogger().Debugf("dcerpc udp: unrecognized packet type %d", s.hdrPktType())
		return 0
	}

	// retval is bounded by fragLenLeft inside evaluateStubParams, so this
	// never underflows.
	s.fragLenLeft -= retval
	return retval
}

// ProcessHeader parses and validates one header from the front of input.
// On success the header is installed (replacing any prior one), a UUID entry
// for the activity identifier is appended to the flow history, and the
// consumed byte count is returned. On failure nothing is mutated.
func (s *UDPState) ProcessHeader(input []byte) (int, error) {
	hdr, consumed, err := ParseHeaderUDP(input)
	if err != nil {
		return 0, err
	}
	if hdr.RPCVers != 4 {
		return 0, fmt.Errorf("%w: rpc_vers %d", ErrVersionMismatch, hdr.RPCVers)
	}
	s.uuidList = append(s.uuidList, UUIDEntry{UUID: hdr.ActivityID})
	s.header = &hdr
	return consumed, nil
}

// HandleInput processes one inbound datagram: header parse, transaction
// creation, then the bounded reassembly loop over the body bytes.
//
// A datagram is rejected atomically (Result err, no state mutated) when it is
// shorter than the header or the header fails to parse. Once the header is
// accepted the overall result is ok even if body framing stops early; the
// header and any consumed fragment data are retained as progress.
func (s *UDPState) HandleInput(input []byte) (applayer.Result, error) {
	if len(input) < HdrLenUDP {
		return applayer.ResultErr(), ErrInsufficientData
	}

	parsed, err := s.ProcessHeader(input)
	if err != nil {
		return applayer.ResultErr(), err
	}

	inputLeft := len(input) - parsed
	fragLen := int(s.hdrFragLen())
	s.fragLenLeft = s.hdrFragLen()

	// One new transaction per valid-header datagram, unconditionally: the
	// store is not consulted for reuse here. Fragment dispatch below still
	// looks transactions up by serial number.
	serialNo := s.evaluateSerialNo()
	tx := s.createTx(serialNo)
	s.transactions = append(s.transactions, tx)

	for parsed >= HdrLenUDP && parsed < fragLen && inputLeft > 0 {
		retval := s.handleFragmentData(input[parsed:], uint16(inputLeft))
		if retval > 0 && int(retval) <= inputLeft {
			parsed += int(retval)
			inputLeft -= int(retval)
		} else if inputLeft > 0 {
			// No forward progress: discard the rest of the datagram.
			log.GetLogger().Debug("dcerpc udp: error parsing fragment data, discarding remainder")
			parsed -= inputLeft
			inputLeft = 0
		}
	}
	return applayer.ResultOk(), nil
}

// evaluateStubParams appends at most min(lenLeft, inputLen) bytes from the
// front of input to the stub buffer and bumps its logical length counter.
// A set first-fragment flag rewinds the counter first: the previous PDU's
// stub has already been delivered downstream and the buffer is recycled for
// a fresh call. Returns the number of bytes appended.
func evaluateStubParams(input []byte, inputLen uint16, hdrFlags uint8, lenLeft uint16,
	stubDataBuffer *[]byte, stubDataBufferLen *uint16) uint16 {

	stubLen := min(lenLeft, inputLen)
	if stubLen == 0 {
		return 0
	}
	if hdrFlags&PFCFirstFrag > 0 {
		*stubDataBufferLen = 0
	}

	*stubDataBuffer = append(*stubDataBuffer, input[:stubLen]...)
	*stubDataBufferLen += stubLen

	return stubLen
}

// TxCount reports the number of transaction slots presented to the host.
// The UDP state presents exactly one logical slot regardless of how many
// internal transaction records exist.
func (s *UDPState) TxCount() int { return 1 }

// GetTx returns the single addressable transaction slot, which is the state
// itself: per-call records stay internal to reassembly.
func (s *UDPState) GetTx(index int) (applayer.Tx, error) {
	if index != 0 {
		return nil, errors.New("dcerpc: udp transaction index out of range")
	}
	return s, nil
}

// Progress always reports in-progress; the UDP state never signals
// completion beyond the per-transaction done flags.
func (s *UDPState) Progress(dir applayer.Direction) int {
	return applayer.ProgressInProgress
}

// DetectState returns the attached detection-engine handle, or nil.
func (s *UDPState) DetectState() applayer.DetectState { return s.deState }

// SetDetectState attaches a detection-engine handle.
func (s *UDPState) SetDetectState(ds applayer.DetectState) { s.deState = ds }

// TxData returns the detection metadata record owned by this state.
func (s *UDPState) TxData() *applayer.TxData { return s.txData }

// Header returns the last successfully parsed header, or nil.
func (s *UDPState) Header() *HeaderUDP { return s.header }

// FragLenLeft reports the remaining-fragment-length budget after the last
// datagram was processed.
func (s *UDPState) FragLenLeft() uint16 { return s.fragLenLeft }

// Transactions returns the internal transaction records in insertion order.
func (s *UDPState) Transactions() []*Transaction { return s.transactions }

// UUIDHistory returns the activity UUID entries in observation order.
func (s *UDPState) UUIDHistory() []UUIDEntry { return s.uuidList }

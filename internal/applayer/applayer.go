// Package applayer defines the generic application-layer framework contracts
// shared by all protocol state machines: the per-input processing result, the
// detection-engine attachment points, and the transaction enumeration surface
// the host uses to pull completed data out of a protocol state.
package applayer

// Direction distinguishes the two halves of a flow.
type Direction uint8

const (
	// ToServer is traffic from the flow originator (requests).
	ToServer Direction = iota
	// ToClient is traffic towards the flow originator (responses).
	ToClient
)

// Transaction progress values. Protocol states report binary progress:
// a direction is either still accumulating or done.
const (
	ProgressInProgress = 0
	ProgressComplete   = 1
)

// Result is the outcome of feeding one unit of input to a protocol state.
// There is no partial variant: internal partial consumption still reports Ok.
type Result struct {
	ok bool
}

// ResultOk reports that the input was accepted and state was mutated.
func ResultOk() Result { return Result{ok: true} }

// ResultErr reports that the input was rejected before any reassembly.
func ResultErr() Result { return Result{ok: false} }

// Ok reports whether the input was accepted.
func (r Result) Ok() bool { return r.ok }

// DetectState is an opaque handle owned by the detection engine. Protocol
// states store it without interpreting its contents.
type DetectState any

// TxData carries per-state detection metadata owned by the host framework.
// Protocol code only allocates and hands it out.
type TxData struct {
	DetectFlagsTS uint64
	DetectFlagsTC uint64
}

// NewTxData returns a zeroed detection metadata record.
func NewTxData() *TxData { return &TxData{} }

// State is the enumeration contract a protocol state exposes to the host for
// the detection/inspection layer to consume completed data.
type State interface {
	// TxCount reports how many transaction slots the host may address.
	TxCount() int
	// GetTx returns the transaction at the given slot.
	GetTx(index int) (Tx, error)
}

// Tx is one addressable transaction slot.
type Tx interface {
	// Progress reports ProgressInProgress or ProgressComplete for a direction.
	Progress(dir Direction) int
	// DetectState returns the attached detection handle, or nil.
	DetectState() DetectState
	// SetDetectState attaches a detection handle.
	SetDetectState(ds DetectState)
}

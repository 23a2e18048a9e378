// Package dcerpc implements the DCERPC-over-UDP parser plugin.
//
// The plugin keeps one reassembly state per flow in the shared FlowRegistry
// and feeds every UDP datagram of that flow through it. Detection order:
//
//  1. FlowRegistry hit (fast path): the flow already has DCERPC state, so the
//     datagram belongs to it regardless of content.
//
//  2. Heuristic fallback: the payload is at least one fixed header long and
//     its version byte is 4, or the datagram uses a configured port.
//
// Stub payloads are delimited and accumulated per call, never interpreted.
package dcerpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/John-sanpe/suricata/internal/core"
	dce "github.com/John-sanpe/suricata/internal/dcerpc"
	"github.com/John-sanpe/suricata/internal/metrics"
	"github.com/John-sanpe/suricata/pkg/plugin"
)

// PluginName is the identifier used in engine configuration.
const PluginName = "dcerpc_udp"

// epmPort is the DCE endpoint mapper port, handled by default.
const epmPort = 135

// options configures the parser from the task's plugin options map.
type options struct {
	// Ports lists UDP ports always treated as DCERPC. The endpoint mapper
	// port is included when the list is empty.
	Ports []uint16 `mapstructure:"ports"`
}

// Parser parses DCERPC UDP datagrams and reassembles their stub data.
//
// It implements plugin.Parser and plugin.FlowRegistryAware.
type Parser struct {
	name         string
	opts         options
	flowRegistry plugin.FlowRegistry
}

func init() {
	plugin.RegisterParser(PluginName, NewParser)
}

// NewParser creates a new DCERPC UDP parser instance.
func NewParser() plugin.Parser {
	return &Parser{name: PluginName}
}

// Name returns the plugin identifier used in engine configuration.
func (p *Parser) Name() string { return p.name }

// Init decodes the plugin options.
func (p *Parser) Init(cfg map[string]any) error {
	if err := mapstructure.Decode(cfg, &p.opts); err != nil {
		return fmt.Errorf("dcerpc: invalid options: %w", err)
	}
	if len(p.opts.Ports) == 0 {
		p.opts.Ports = []uint16{epmPort}
	}
	return nil
}

// Start is a no-op; the parser has no background resources.
func (p *Parser) Start(_ context.Context) error { return nil }

// Stop is a no-op for the same reason.
func (p *Parser) Stop(_ context.Context) error { return nil }

// SetFlowRegistry satisfies plugin.FlowRegistryAware.
func (p *Parser) SetFlowRegistry(registry plugin.FlowRegistry) {
	p.flowRegistry = registry
}

// CanHandle decides whether the datagram should be processed by this parser.
func (p *Parser) CanHandle(pkt *core.DecodedPacket) bool {
	if pkt.Transport.Protocol != 17 {
		return false
	}

	// Fast path: the flow already carries DCERPC state.
	if p.flowRegistry != nil {
		if _, ok := p.flowRegistry.Get(flowKey(pkt)); ok {
			return true
		}
	}

	for _, port := range p.opts.Ports {
		if pkt.Transport.SrcPort == port || pkt.Transport.DstPort == port {
			return true
		}
	}

	// Heuristic: a connectionless DCERPC datagram starts with version 4 and
	// is at least one fixed header long.
	return len(pkt.Payload) >= dce.HdrLenUDP && pkt.Payload[0] == 4
}

// Handle feeds the datagram through the flow's reassembly state.
//
// The payload return is the flow's *dcerpc.UDPState so downstream consumers
// can enumerate transactions; metadata is surfaced as labels.
func (p *Parser) Handle(pkt *core.DecodedPacket) (any, core.Labels, error) {
	state := p.flowState(pkt)

	stubTS, stubTC := stubTotals(state)
	res, err := state.HandleInput(pkt.Payload)
	if err != nil {
		metrics.DatagramsRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return nil, nil, fmt.Errorf("dcerpc: datagram rejected: %w", err)
	}
	if !res.Ok() {
		metrics.DatagramsRejectedTotal.WithLabelValues("unknown").Inc()
		return nil, nil, errors.New("dcerpc: datagram rejected")
	}

	metrics.DatagramsParsedTotal.Inc()
	metrics.TransactionsCreatedTotal.Inc()
	newTS, newTC := stubTotals(state)
	if newTS > stubTS {
		metrics.StubBytesTotal.WithLabelValues("to_server").Add(float64(newTS - stubTS))
	}
	if newTC > stubTC {
		metrics.StubBytesTotal.WithLabelValues("to_client").Add(float64(newTC - stubTC))
	}

	return state, p.labels(state), nil
}

// flowState returns the flow's reassembly state, creating it on first use.
// Both directions of a flow share one state via the normalized key.
func (p *Parser) flowState(pkt *core.DecodedPacket) *dce.UDPState {
	if p.flowRegistry == nil {
		// No registry wired (e.g. direct use in tests): fresh state per call.
		return dce.NewUDPState()
	}
	key := flowKey(pkt)
	if v, ok := p.flowRegistry.Get(key); ok {
		if state, ok := v.(*dce.UDPState); ok {
			return state
		}
	}
	state := dce.NewUDPState()
	p.flowRegistry.Set(key, state)
	return state
}

func (p *Parser) labels(state *dce.UDPState) core.Labels {
	hdr := state.Header()
	if hdr == nil {
		return nil
	}
	labels := core.Labels{
		core.LabelDCERPCPacketType:  fmt.Sprintf("%d", hdr.PktType),
		core.LabelDCERPCOpnum:       fmt.Sprintf("%d", hdr.Opnum),
		core.LabelDCERPCActivityID:  hdr.ActivityID.String(),
		core.LabelDCERPCInterfaceID: hdr.InterfaceID.String(),
		core.LabelDCERPCFragLen:     fmt.Sprintf("%d", hdr.FragLen),
	}
	if txs := state.Transactions(); len(txs) > 0 {
		tx := txs[len(txs)-1]
		labels[core.LabelDCERPCCallID] = fmt.Sprintf("%d", tx.CallID)
		labels[core.LabelDCERPCStubLenTS] = fmt.Sprintf("%d", tx.StubLenTS)
		labels[core.LabelDCERPCStubLenTC] = fmt.Sprintf("%d", tx.StubLenTC)
	}
	return labels
}

// flowKey builds a direction-independent key so requests and responses of
// one flow resolve to the same reassembly state.
func flowKey(pkt *core.DecodedPacket) plugin.FlowKey {
	key := plugin.FlowKey{
		SrcIP:   pkt.IP.SrcIP,
		DstIP:   pkt.IP.DstIP,
		SrcPort: pkt.Transport.SrcPort,
		DstPort: pkt.Transport.DstPort,
		Proto:   17,
	}
	if key.SrcIP.Compare(key.DstIP) > 0 ||
		(key.SrcIP == key.DstIP && key.SrcPort > key.DstPort) {
		key.SrcIP, key.DstIP = key.DstIP, key.SrcIP
		key.SrcPort, key.DstPort = key.DstPort, key.SrcPort
	}
	return key
}

func stubTotals(state *dce.UDPState) (ts, tc int) {
	for _, tx := range state.Transactions() {
		ts += int(tx.StubLenTS)
		tc += int(tx.StubLenTC)
	}
	return ts, tc
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, dce.ErrInsufficientData):
		return "short"
	case errors.Is(err, dce.ErrMalformedHeader):
		return "malformed"
	case errors.Is(err, dce.ErrVersionMismatch):
		return "version"
	default:
		return "unknown"
	}
}

// Package decoder implements L2-L4 protocol stack decoding.
package decoder

import (
	"fmt"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/John-sanpe/suricata/internal/core"
)

// Decoder decodes raw frames into structured packets.
// It is not safe for concurrent use; each pipeline owns one instance.
type Decoder struct {
	parser *gopacket.DecodingLayerParser

	eth     layers.Ethernet
	dot1q   layers.Dot1Q
	ip4     layers.IPv4
	ip6     layers.IPv6
	tcp     layers.TCP
	udp     layers.UDP
	payload gopacket.Payload

	decoded []gopacket.LayerType
}

// New creates a decoder rooted at the given link type.
func New(linkType layers.LinkType) *Decoder {
	d := &Decoder{}
	first := gopacket.LayerType(layers.LayerTypeEthernet)
	if linkType == layers.LinkTypeRaw {
		first = layers.LayerTypeIPv4
	}
	d.parser = gopacket.NewDecodingLayerParser(
		first,
		&d.eth,
		&d.dot1q,
		&d.ip4,
		&d.ip6,
		&d.tcp,
		&d.udp,
		&d.payload,
	)
	d.parser.IgnoreUnsupported = true
	return d
}

// Decode parses one raw frame. The returned packet's Payload aliases raw.Data.
func (d *Decoder) Decode(raw core.RawPacket) (core.DecodedPacket, error) {
	pkt := core.DecodedPacket{
		Timestamp:  raw.Timestamp,
		CaptureLen: raw.CaptureLen,
		OrigLen:    raw.OrigLen,
	}

	d.decoded = d.decoded[:0]
	if err := d.parser.DecodeLayers(raw.Data, &d.decoded); err != nil {
		return pkt, fmt.Errorf("decoder: %w", err)
	}

	haveTransport := false
	for _, typ := range d.decoded {
		switch typ {
		case layers.LayerTypeEthernet:
			copy(pkt.Ethernet.SrcMAC[:], d.eth.SrcMAC)
			copy(pkt.Ethernet.DstMAC[:], d.eth.DstMAC)
			pkt.Ethernet.EtherType = uint16(d.eth.EthernetType)
		case layers.LayerTypeDot1Q:
			pkt.Ethernet.VLANs = append(pkt.Ethernet.VLANs, d.dot1q.VLANIdentifier)
		case layers.LayerTypeIPv4:
			pkt.IP.Version = 4
			pkt.IP.SrcIP = addrFromSlice(d.ip4.SrcIP)
			pkt.IP.DstIP = addrFromSlice(d.ip4.DstIP)
			pkt.IP.Protocol = uint8(d.ip4.Protocol)
			pkt.IP.TTL = d.ip4.TTL
			pkt.IP.TotalLen = d.ip4.Length
		case layers.LayerTypeIPv6:
			pkt.IP.Version = 6
			pkt.IP.SrcIP = addrFromSlice(d.ip6.SrcIP)
			pkt.IP.DstIP = addrFromSlice(d.ip6.DstIP)
			pkt.IP.Protocol = uint8(d.ip6.NextHeader)
			pkt.IP.TTL = d.ip6.HopLimit
		case layers.LayerTypeTCP:
			pkt.Transport.SrcPort = uint16(d.tcp.SrcPort)
			pkt.Transport.DstPort = uint16(d.tcp.DstPort)
			pkt.Transport.Protocol = 6
			pkt.Transport.SeqNum = d.tcp.Seq
			pkt.Transport.AckNum = d.tcp.Ack
			haveTransport = true
		case layers.LayerTypeUDP:
			pkt.Transport.SrcPort = uint16(d.udp.SrcPort)
			pkt.Transport.DstPort = uint16(d.udp.DstPort)
			pkt.Transport.Protocol = 17
			haveTransport = true
		case gopacket.LayerTypePayload:
			pkt.Payload = d.payload
		}
	}

	if !haveTransport {
		return pkt, core.ErrUnsupportedProto
	}
	return pkt, nil
}

// addrFromSlice converts a gopacket IP slice to netip.Addr,
// unmapping v4-in-v6 forms so 5-tuples compare consistently.
func addrFromSlice(b []byte) netip.Addr {
	addr, ok := netip.AddrFromSlice(b)
	if !ok {
		return netip.Addr{}
	}
	return addr.Unmap()
}

// Package source provides packet sources feeding the pipeline.
package source

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/John-sanpe/suricata/internal/core"
)

// Source delivers raw packets in capture order.
type Source interface {
	Start(ctx context.Context) error
	// ReadPacket returns the next packet or io.EOF when the source is drained.
	ReadPacket() (core.RawPacket, error)
	LinkType() layers.LinkType
	Stop() error
}

// FileSource replays packets from a pcap file.
type FileSource struct {
	path   string
	bpf    string
	handle *pcap.Handle
}

// NewFileSource creates a pcap replay source.
func NewFileSource(path, bpf string) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("source: file path is required")
	}
	return &FileSource{path: path, bpf: bpf}, nil
}

// Start opens the pcap file and applies the optional BPF filter.
func (fs *FileSource) Start(ctx context.Context) error {
	handle, err := pcap.OpenOffline(fs.path)
	if err != nil {
		return fmt.Errorf("source: failed to open pcap file %s: %w", fs.path, err)
	}
	if fs.bpf != "" {
		if err := handle.SetBPFFilter(fs.bpf); err != nil {
			handle.Close()
			return fmt.Errorf("source: invalid bpf filter %q: %w", fs.bpf, err)
		}
	}
	fs.handle = handle
	return nil
}

// ReadPacket reads the next packet from the file.
func (fs *FileSource) ReadPacket() (core.RawPacket, error) {
	if fs.handle == nil {
		return core.RawPacket{}, fmt.Errorf("source: file source not started")
	}
	data, ci, err := fs.handle.ReadPacketData()
	if err != nil {
		if err == io.EOF {
			return core.RawPacket{}, io.EOF
		}
		return core.RawPacket{}, fmt.Errorf("source: failed to read packet: %w", err)
	}
	ts := ci.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return core.RawPacket{
		Data:       data,
		Timestamp:  ts,
		CaptureLen: uint32(ci.CaptureLength),
		OrigLen:    uint32(ci.Length),
	}, nil
}

// LinkType reports the file's link layer.
func (fs *FileSource) LinkType() layers.LinkType {
	if fs.handle == nil {
		return layers.LinkTypeEthernet
	}
	return fs.handle.LinkType()
}

// Stop closes the underlying handle.
func (fs *FileSource) Stop() error {
	if fs.handle != nil {
		fs.handle.Close()
		fs.handle = nil
	}
	return nil
}

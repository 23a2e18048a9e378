package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/John-sanpe/suricata/internal/config"
	"github.com/John-sanpe/suricata/internal/core"
	"github.com/John-sanpe/suricata/internal/decoder"
	"github.com/John-sanpe/suricata/internal/log"
	"github.com/John-sanpe/suricata/internal/metrics"
	"github.com/John-sanpe/suricata/internal/source"
	"github.com/John-sanpe/suricata/pkg/plugin"
)

// Engine wires a packet source, the protocol stack decoder, and the
// configured application-layer parsers into one synchronous pipeline.
type Engine struct {
	cfg     *config.EngineConfig
	src     source.Source
	parsers []plugin.Parser
	flows   *FlowRegistry
	metrics *metrics.Server
}

// New builds an engine from configuration. Parsers are instantiated from the
// plugin registry, initialized with their options, and handed the shared
// flow registry when they ask for one.
func New(cfg *config.EngineConfig) (*Engine, error) {
	src, err := buildSource(cfg.Capture)
	if err != nil {
		return nil, err
	}

	flows := NewFlowRegistry()
	parsers := make([]plugin.Parser, 0, len(cfg.Parsers))
	for _, pc := range cfg.Parsers {
		p, err := plugin.NewParser(pc.Name)
		if err != nil {
			return nil, err
		}
		if err := p.Init(pc.Options); err != nil {
			return nil, fmt.Errorf("engine: init parser %q: %w", pc.Name, err)
		}
		if aware, ok := p.(plugin.FlowRegistryAware); ok {
			aware.SetFlowRegistry(flows)
		}
		parsers = append(parsers, p)
	}

	e := &Engine{
		cfg:     cfg,
		src:     src,
		parsers: parsers,
		flows:   flows,
	}
	if cfg.Metrics.Enabled {
		e.metrics = metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
	}
	return e, nil
}

func buildSource(cfg config.CaptureConfig) (source.Source, error) {
	switch cfg.Type {
	case "file":
		return source.NewFileSource(cfg.File, cfg.BPF)
	default:
		return nil, fmt.Errorf("engine: unsupported capture type %q", cfg.Type)
	}
}

// Run processes packets until the source drains or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	logger := log.GetLogger()

	if err := e.src.Start(ctx); err != nil {
		return err
	}
	defer e.src.Stop()

	if e.metrics != nil {
		if err := e.metrics.Start(ctx); err != nil {
			return err
		}
		defer e.metrics.Stop(context.Background())
	}

	for _, p := range e.parsers {
		if err := p.Start(ctx); err != nil {
			return fmt.Errorf("engine: start parser %q: %w", p.Name(), err)
		}
		defer p.Stop(context.Background())
	}

	dec := decoder.New(e.src.LinkType())
	var processed uint64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		raw, err := e.src.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.WithField("packets", processed).Info("source drained")
				return nil
			}
			return err
		}
		processed++

		pkt, err := dec.Decode(raw)
		if err != nil {
			metrics.PacketsDecodedTotal.WithLabelValues("error").Inc()
			logger.WithError(err).Debug("decode failed")
			continue
		}
		metrics.PacketsDecodedTotal.WithLabelValues("ok").Inc()

		e.dispatch(&pkt)
	}
}

// dispatch offers the packet to each parser in configuration order; the
// first parser that claims it handles it.
func (e *Engine) dispatch(pkt *core.DecodedPacket) {
	logger := log.GetLogger()
	for _, p := range e.parsers {
		if !p.CanHandle(pkt) {
			continue
		}
		_, labels, err := p.Handle(pkt)
		if err != nil {
			logger.WithError(err).WithField("parser", p.Name()).Debug("parser rejected packet")
			return
		}
		if logger.IsDebugEnabled() {
			logger.WithFields(labelsToFields(labels)).WithField("parser", p.Name()).Debug("packet parsed")
		}
		return
	}
}

func labelsToFields(labels core.Labels) map[string]interface{} {
	fields := make(map[string]interface{}, len(labels))
	for k, v := range labels {
		fields[k] = v
	}
	return fields
}

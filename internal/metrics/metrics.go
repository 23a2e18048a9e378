// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsDecodedTotal counts frames decoded by the L2-L4 decoder.
	PacketsDecodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_packets_decoded_total",
			Help: "Total number of frames decoded by the protocol stack decoder",
		},
		[]string{"outcome"}, // ok | error
	)

	// DatagramsParsedTotal counts DCERPC UDP datagrams accepted by the parser.
	DatagramsParsedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_dcerpc_udp_datagrams_parsed_total",
			Help: "Total number of DCERPC UDP datagrams accepted",
		},
	)

	// DatagramsRejectedTotal counts datagrams rejected before reassembly.
	DatagramsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_dcerpc_udp_datagrams_rejected_total",
			Help: "Total number of DCERPC UDP datagrams rejected before reassembly",
		},
		[]string{"reason"}, // short | malformed | version
	)

	// StubBytesTotal counts stub bytes assembled per direction.
	StubBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_dcerpc_udp_stub_bytes_total",
			Help: "Total stub data bytes assembled",
		},
		[]string{"direction"}, // to_server | to_client
	)

	// TransactionsCreatedTotal counts transaction records created.
	TransactionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_dcerpc_udp_transactions_created_total",
			Help: "Total number of DCERPC UDP transaction records created",
		},
	)
)

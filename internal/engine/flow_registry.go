// Package engine drives the capture-decode-parse pipeline.
package engine

import (
	"sync"

	"github.com/John-sanpe/suricata/pkg/plugin"
)

// FlowRegistry provides per-run flow state storage.
// It is shared across all parsers within a run and is thread-safe.
// Typical use case: a protocol parser keeping reassembly state per flow.
type FlowRegistry struct {
	data sync.Map // map[plugin.FlowKey]any
}

// NewFlowRegistry creates a new flow registry.
func NewFlowRegistry() *FlowRegistry {
	return &FlowRegistry{}
}

// Get retrieves flow state for the given key.
func (r *FlowRegistry) Get(key plugin.FlowKey) (any, bool) {
	return r.data.Load(key)
}

// Set stores flow state for the given key, overwriting any existing value.
func (r *FlowRegistry) Set(key plugin.FlowKey, value any) {
	r.data.Store(key, value)
}

// Delete removes flow state for the given key.
func (r *FlowRegistry) Delete(key plugin.FlowKey) {
	r.data.Delete(key)
}

// Range iterates over all flows; f returns false to stop.
func (r *FlowRegistry) Range(f func(key plugin.FlowKey, value any) bool) {
	r.data.Range(func(k, v any) bool {
		flowKey, ok := k.(plugin.FlowKey)
		if !ok {
			return true
		}
		return f(flowKey, v)
	})
}

// Count returns the number of flows in the registry. O(n).
func (r *FlowRegistry) Count() int {
	count := 0
	r.data.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Clear removes all flow state.
func (r *FlowRegistry) Clear() {
	r.data.Range(func(k, _ any) bool {
		r.data.Delete(k)
		return true
	})
}

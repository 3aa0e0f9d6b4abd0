// Package metrics provides process-wide counters using atomics.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// RPC metrics
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcRetries      atomic.Int64
	rpcFailovers    atomic.Int64
	rpcLatencyNanos atomic.Int64

	methodMu    sync.Mutex
	methodCalls map[string]int64

	// Envelope operations
	decodesTotal  atomic.Int64
	decodeErrors  atomic.Int64
	encodesTotal  atomic.Int64
	signingsTotal atomic.Int64
	signErrors    atomic.Int64
}

// Global is the process-wide metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records an RPC call with its duration and outcome.
func (m *Metrics) RecordRPCCall(method string, duration time.Duration, err error) {
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.rpcErrorsTotal.Add(1)
	}

	m.methodMu.Lock()
	if m.methodCalls == nil {
		m.methodCalls = make(map[string]int64)
	}
	m.methodCalls[method]++
	m.methodMu.Unlock()
}

// RecordRPCRetry records a retried RPC attempt.
func (m *Metrics) RecordRPCRetry() {
	m.rpcRetries.Add(1)
}

// RecordRPCFailover records a switch to a fallback endpoint.
func (m *Metrics) RecordRPCFailover() {
	m.rpcFailovers.Add(1)
}

// RecordDecode records a transaction decode.
func (m *Metrics) RecordDecode(err error) {
	m.decodesTotal.Add(1)
	if err != nil {
		m.decodeErrors.Add(1)
	}
}

// RecordEncode records a transaction encode.
func (m *Metrics) RecordEncode() {
	m.encodesTotal.Add(1)
}

// RecordSign records a signing attempt.
func (m *Metrics) RecordSign(err error) {
	m.signingsTotal.Add(1)
	if err != nil {
		m.signErrors.Add(1)
	}
}

// MethodCount is the number of calls made to one RPC method.
type MethodCount struct {
	Method string `json:"method"`
	Calls  int64  `json:"calls"`
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RPCCallsTotal   int64         `json:"rpc_calls_total"`
	RPCErrorsTotal  int64         `json:"rpc_errors_total"`
	RPCRetries      int64         `json:"rpc_retries"`
	RPCFailovers    int64         `json:"rpc_failovers"`
	RPCLatencyNanos int64         `json:"rpc_latency_nanos"`
	RPCMethods      []MethodCount `json:"rpc_methods,omitempty"`
	DecodesTotal    int64         `json:"decodes_total"`
	DecodeErrors    int64         `json:"decode_errors"`
	EncodesTotal    int64         `json:"encodes_total"`
	SigningsTotal   int64         `json:"signings_total"`
	SignErrors      int64         `json:"sign_errors"`
}

// Snapshot returns a point-in-time copy of all metrics.
// RPCMethods is sorted by method name.
func (m *Metrics) Snapshot() Snapshot {
	m.methodMu.Lock()
	methods := make([]MethodCount, 0, len(m.methodCalls))
	for name, calls := range m.methodCalls {
		methods = append(methods, MethodCount{Method: name, Calls: calls})
	}
	m.methodMu.Unlock()
	sort.Slice(methods, func(i, j int) bool { return methods[i].Method < methods[j].Method })

	return Snapshot{
		RPCCallsTotal:   m.rpcCallsTotal.Load(),
		RPCErrorsTotal:  m.rpcErrorsTotal.Load(),
		RPCRetries:      m.rpcRetries.Load(),
		RPCFailovers:    m.rpcFailovers.Load(),
		RPCLatencyNanos: m.rpcLatencyNanos.Load(),
		RPCMethods:      methods,
		DecodesTotal:    m.decodesTotal.Load(),
		DecodeErrors:    m.decodeErrors.Load(),
		EncodesTotal:    m.encodesTotal.Load(),
		SigningsTotal:   m.signingsTotal.Load(),
		SignErrors:      m.signErrors.Load(),
	}
}

// RPCCallsTotal returns the total number of RPC calls made.
func (m *Metrics) RPCCallsTotal() int64 {
	return m.rpcCallsTotal.Load()
}

// RPCErrorsTotal returns the total number of RPC errors.
func (m *Metrics) RPCErrorsTotal() int64 {
	return m.rpcErrorsTotal.Load()
}

// RPCLatencyAvgMs returns the average RPC latency in milliseconds, or 0 before any call.
func (m *Metrics) RPCLatencyAvgMs() float64 {
	calls := m.rpcCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	return float64(m.rpcLatencyNanos.Load()) / float64(calls) / 1e6
}

// DecodeErrorRate returns failed decodes as a percentage (0-100).
func (m *Metrics) DecodeErrorRate() float64 {
	total := m.decodesTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.decodeErrors.Load()) / float64(total) * 100
}

// Reset zeroes every counter.
func (m *Metrics) Reset() {
	m.rpcCallsTotal.Store(0)
	m.rpcErrorsTotal.Store(0)
	m.rpcRetries.Store(0)
	m.rpcFailovers.Store(0)
	m.rpcLatencyNanos.Store(0)
	m.decodesTotal.Store(0)
	m.decodeErrors.Store(0)
	m.encodesTotal.Store(0)
	m.signingsTotal.Store(0)
	m.signErrors.Store(0)

	m.methodMu.Lock()
	m.methodCalls = nil
	m.methodMu.Unlock()
}

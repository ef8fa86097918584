// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// DecodeMetrics counts what the decoder did.  The CLI writes them out in
// the node exporter textfile format.
type DecodeMetrics struct {
	registry *prometheus.Registry

	messagesTotal *prometheus.CounterVec
	samplesTotal  *prometheus.CounterVec
	endlessLoops  prometheus.Counter
}

func NewDecodeMetrics() *DecodeMetrics {
	var m = &DecodeMetrics{
		registry: prometheus.NewRegistry(),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dcpdecode_messages_total",
			Help: "Messages decoded, by how the decode ended",
		}, []string{"result"}),
		samplesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dcpdecode_samples_total",
			Help: "Samples stored, by flag codes (empty for a good value)",
		}, []string{"flag"}),
		endlessLoops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dcpdecode_endless_loops_total",
			Help: "Decodes stopped by the endless loop guard",
		}),
	}

	m.registry.MustRegister(m.messagesTotal, m.samplesTotal, m.endlessLoops)

	return m
}

// Registry is for tests and for anyone wanting to serve the metrics.
func (m *DecodeMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// DecodeResult names the way a decode ended, as used for the result label.
func DecodeResult(err error) string {
	var loop *EndlessLoopError
	var script *ScriptError
	var decoder *DecoderError

	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEndOfData):
		return "end_of_data"
	case errors.As(err, &loop):
		return "endless_loop"
	case errors.As(err, &script):
		return "script_error"
	case errors.As(err, &decoder):
		return "decoder_error"
	default:
		return "error"
	}
}

// Observe counts one finished decode.
func (m *DecodeMetrics) Observe(msg *DecodedMessage, err error) {
	if m == nil {
		return
	}

	var result = DecodeResult(err)
	m.messagesTotal.WithLabelValues(result).Inc()

	if result == "endless_loop" {
		m.endlessLoops.Inc()
	}

	for _, ts := range msg.AllTimeSeries() {
		for _, s := range ts.Samples {
			m.samplesTotal.WithLabelValues(s.Flags.String()).Inc()
		}
	}
}

// WriteFile replaces path with the current values.
func (m *DecodeMetrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Command("tick")
	m.Command("tick")
	m.Command("launch")
	m.Frame()
	m.Request()
	m.Fallthrough()
	m.DecodeError()
	m.LaunchFailure()
	m.Instances(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.commands.WithLabelValues("tick")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("launch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallthroughs))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.instances))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Command("tick")
		m.Frame()
		m.Instances(1)
	})
}

func TestHandlerServesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).Frame()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "webview_runner_frames_total 1")
}

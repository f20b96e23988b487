// Package metrics is a minimal Prometheus-text registry: integer gauges and
// counters served on /metrics, one atomic op per update on the hot paths.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

type metric struct {
	name    string
	help    string
	counter bool
	value   atomic.Int64
}

var (
	registryMu sync.RWMutex
	registry   []*metric
)

type Gauge struct{ m *metric }

type Counter struct{ m *metric }

func NewGauge(name, help string) *Gauge {
	return &Gauge{m: register(name, help, false)}
}

func NewCounter(name, help string) *Counter {
	return &Counter{m: register(name, help, true)}
}

func (g *Gauge) Set(v int64) {
	if g == nil || g.m == nil {
		return
	}
	g.m.value.Store(v)
}

func (c *Counter) Inc() { c.Add(1) }

func (c *Counter) Add(delta int64) {
	if c == nil || c.m == nil || delta <= 0 {
		return
	}
	c.m.value.Add(delta)
}

// StartServer exposes /metrics on listen; an empty listen disables it.
func StartServer(listen string, logf func(string, ...any)) {
	if strings.TrimSpace(listen) == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: listen, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logf != nil {
				logf("metrics server error: %v", err)
			}
		}
	}()
}

func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		registryMu.RLock()
		out := make([]*metric, len(registry))
		copy(out, registry)
		registryMu.RUnlock()
		sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })

		for _, m := range out {
			typ := "gauge"
			if m.counter {
				typ = "counter"
			}
			_, _ = fmt.Fprintf(w, "# HELP %s %s\n", m.name, m.help)
			_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", m.name, typ)
			_, _ = fmt.Fprintf(w, "%s %d\n", m.name, m.value.Load())
		}
	})
}

func register(name, help string, counter bool) *metric {
	m := &metric{
		name:    strings.TrimSpace(name),
		help:    strings.TrimSpace(strings.ReplaceAll(help, "\n", " ")),
		counter: counter,
	}
	registryMu.Lock()
	registry = append(registry, m)
	registryMu.Unlock()
	return m
}

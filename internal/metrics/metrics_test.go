package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExposition(t *testing.T) {
	c := NewCounter("test_frames_total", "Frames read")
	g := NewGauge("test_backlog", "Pending items")

	c.Inc()
	c.Add(2)
	c.Add(-5) // counters never go down
	g.Set(7)
	g.Set(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "# TYPE test_frames_total counter")
	assert.Contains(t, body, "test_frames_total 3")
	assert.Contains(t, body, "# TYPE test_backlog gauge")
	assert.Contains(t, body, "test_backlog 3")
}

func TestNilSafety(t *testing.T) {
	var c *Counter
	var g *Gauge
	c.Inc()
	g.Set(1)
}

package prometheus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mdmdirector/devicesweep/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()
	m.SetFiltered(4, 2)
	m.Observe(types.ActionResult{Action: types.ActionRetire, Primary: types.PrimarySucceeded, Secondary: types.SecondaryDeleted})
	m.Observe(types.ActionResult{Action: types.ActionRetire, Primary: types.PrimaryFailed, Secondary: types.SecondarySkippedHybrid})
	m.Observe(types.ActionResult{Action: types.ActionRetire, Primary: types.PrimarySucceeded, Secondary: types.SecondaryDeleted})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Actions.WithLabelValues("Retire", "succeeded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Actions.WithLabelValues("Retire", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Secondary.WithLabelValues("skipped-hybrid")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.Candidates))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.GuardExcluded))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.SetFiltered(1, 1)
	m.Observe(types.ActionResult{})
	assert.NoError(t, m.WriteTextfile("/nonexistent/metrics.prom"))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.SetFiltered(3, 0)

	path := filepath.Join(t.TempDir(), "devicesweep.prom")
	require.NoError(t, m.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "devicesweep_candidates 3")

	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}

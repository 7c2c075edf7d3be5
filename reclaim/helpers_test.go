package reclaim_test

import (
	"testing"

	"github.com/jrsteele09/aquamind/metrics"
	"github.com/stretchr/testify/require"
)

// counterValue reads an unlabelled counter from the metrics registry.
func counterValue(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

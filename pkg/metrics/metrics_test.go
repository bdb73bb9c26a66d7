package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterCollectors(reg) })

	SearchQueries.Inc()
	require.GreaterOrEqual(t, testutil.ToFloat64(SearchQueries), 1.0)
}

func TestRegisterContentGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	sizes := map[string]float64{"documents": 12, "tutorials": 5, "services": 3, "users": 1}
	RegisterContentGauges(reg, func(c string) float64 { return sizes[c] })

	n, err := testutil.GatherAndCount(reg, "homelab_docs_content_records")
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCheck(t *testing.T) {
	before := testutil.ToFloat64(HierarchyChecks.WithLabelValues("test_move", OutcomeCycle))

	ObserveCheck("test_move", errors.New("cycle"), true)
	ObserveCheck("test_move", nil, false)
	ObserveCheck("test_move", errors.New("db down"), false)

	assert.Equal(t, before+1, testutil.ToFloat64(HierarchyChecks.WithLabelValues("test_move", OutcomeCycle)))
	assert.Equal(t, float64(1), testutil.ToFloat64(HierarchyChecks.WithLabelValues("test_move", OutcomeAccepted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(HierarchyChecks.WithLabelValues("test_move", OutcomeError)))
}

func TestObserveReconcile(t *testing.T) {
	ObserveReconcile("test_assoc", OutcomeApplied, 2, 1)
	ObserveReconcile("test_assoc", OutcomeNoop, 0, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(ReconcileChanges.WithLabelValues("test_assoc", "add")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ReconcileChanges.WithLabelValues("test_assoc", "remove")))
	assert.Equal(t, float64(1), testutil.ToFloat64(Reconciliations.WithLabelValues("test_assoc", OutcomeNoop)))
}

func TestRegisterPoolGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := func() (int32, int32, int32, bool) { return 2, 3, 5, true }

	RegisterPoolGauges(reg, stats)
	RegisterPoolGauges(reg, stats)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestObserveTreeAudit(t *testing.T) {
	ObserveTreeAudit(map[string]int{"test_cycles": 2, "test_orphans": 0})

	assert.Equal(t, float64(2), testutil.ToFloat64(TreeAuditFindings.WithLabelValues("test_cycles")))
	assert.Equal(t, float64(0), testutil.ToFloat64(TreeAuditFindings.WithLabelValues("test_orphans")))
	assert.Greater(t, testutil.ToFloat64(TreeAuditLastRun), float64(0))
}

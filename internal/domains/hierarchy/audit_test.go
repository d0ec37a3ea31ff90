package hierarchy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudit_HealthyForest(t *testing.T) {
	n := ids(5)
	r1, a, b, r2, c := n[0], n[1], n[2], n[3], n[4]
	snap := NewSnapshot([]Edge{
		{Child: r1}, {Child: a, Parent: r1}, {Child: b, Parent: a},
		{Child: r2}, {Child: c, Parent: r2},
	})

	report := Audit(snap, 3)
	assert.True(t, report.Healthy())
	assert.Equal(t, 5, report.Nodes)
	assert.Equal(t, 2, report.Roots)
	assert.Equal(t, 3, report.MaxLevel)

	report = Audit(snap, 2)
	assert.False(t, report.Healthy())
	assert.Equal(t, []uuid.UUID{b}, report.TooDeep)

	assert.Empty(t, Audit(snap, 0).TooDeep)
}

func TestAudit_Cycles(t *testing.T) {
	n := ids(6)
	x, y, z, w, self, root := n[0], n[1], n[2], n[3], n[4], n[5]
	snap := NewSnapshot([]Edge{
		{Child: x, Parent: z}, {Child: z, Parent: y}, {Child: y, Parent: x},
		{Child: w, Parent: x},
		{Child: self, Parent: self},
		{Child: root},
	})

	report := Audit(snap, 3)
	assert.False(t, report.Healthy())
	require.Len(t, report.Cycles, 2)

	var loop, selfLoop []uuid.UUID
	for _, c := range report.Cycles {
		if len(c) == 1 {
			selfLoop = c
		} else {
			loop = c
		}
	}
	assert.Equal(t, []uuid.UUID{self}, selfLoop)
	assert.ElementsMatch(t, []uuid.UUID{x, y, z}, loop)
	assert.Equal(t, NewIDSet(x, y, z).Sorted()[0], loop[0])

	assert.Equal(t, []uuid.UUID{w}, report.Unrooted)
	assert.Equal(t, 1, report.Roots)
	assert.Equal(t, 1, report.MaxLevel)
	assert.Empty(t, report.TooDeep)
}

func TestAudit_Orphans(t *testing.T) {
	n := ids(2)
	orphan, child := n[0], n[1]
	snap := NewSnapshot([]Edge{
		{Child: orphan, Parent: uuid.New()},
		{Child: child, Parent: orphan},
	})

	report := Audit(snap, 3)
	assert.Equal(t, []uuid.UUID{orphan}, report.Orphans)
	assert.Equal(t, 2, report.MaxLevel)
	assert.Equal(t, 0, report.Roots)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileBeforeEndIsNoop(t *testing.T) {
	e := newTestEnv(t)
	u1 := e.user(t, "1001", "Creator", true)
	u2 := e.user(t, "1002", "Member", false)
	m := e.meeting(t, u1, "10:00", "11:00", u2)

	written, err := e.reconciler.Reconcile(context.Background(), m, at(10, 59, 59))
	require.NoError(t, err)
	assert.Zero(t, written)
	assert.Empty(t, e.rowsFor(t, m, u2))
}

func TestReconcileFillsMissingOnly(t *testing.T) {
	e := newTestEnv(t)
	u1 := e.user(t, "1001", "Creator", true)
	u2 := e.user(t, "1002", "Absent", false)
	u3 := e.user(t, "1003", "Present", false)
	u4 := e.user(t, "1004", "Absent Too", false)
	m := e.meeting(t, u1, "10:00", "11:00", u2, u3, u4)

	e.clock.set(at(10, 20, 0))
	require.Equal(t, ScanAccepted, e.scan(t, u3, e.payload(m)).Outcome)

	end := at(11, 0, 0)
	written, err := e.reconciler.Reconcile(context.Background(), m, end)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	for _, u := range []*domain.User{u2, u4} {
		rows := e.rowsFor(t, m, u)
		require.Len(t, rows, 1, u.Name)
		assert.Equal(t, domain.StatusMissed, rows[0].Status)
		assert.True(t, rows[0].CheckInTime.Equal(end))
	}
	for _, u := range []*domain.User{u1, u3} {
		rows := e.rowsFor(t, m, u)
		require.Len(t, rows, 1, u.Name)
		assert.Equal(t, domain.StatusPresent, rows[0].Status)
	}

	written, err = e.reconciler.Reconcile(context.Background(), m, end.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, written)
}

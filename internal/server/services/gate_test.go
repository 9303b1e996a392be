package services

import (
	"context"
	"testing"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGate(t *testing.T, st *memStore) *AccessGate {
	t.Helper()
	g := NewAccessGate(newTxDB(t), &fakeRepoManager{st}, logging.NopLogger{})
	g.now = fixedClock(t0)
	return g
}

func TestGate_DeniedUntilGranted(t *testing.T) {
	st := newMemStore()
	u := st.addUser("Asha", t0, 30, true)
	n := st.addNominee(u.ID, "Meera", "meera@example.com")
	g := newGate(t, st)
	ctx := context.Background()

	ok, err := g.IsAccessGranted(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = g.Authorize(ctx, n.ID)
	assert.ErrorIs(t, err, common.ErrAccessDenied)

	require.NoError(t, g.Grant(ctx, n.ID))

	ok, err = g.IsAccessGranted(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := g.Authorize(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
}

func TestGate_GrantIsIdempotent(t *testing.T) {
	st := newMemStore()
	u := st.addUser("Asha", t0, 30, true)
	n := st.addNominee(u.ID, "Meera", "meera@example.com")
	g := newGate(t, st)

	require.NoError(t, g.Grant(context.Background(), n.ID))
	g.now = fixedClock(t0.Add(day))
	require.NoError(t, g.Grant(context.Background(), n.ID))

	got := st.nominee(n.ID)
	assert.True(t, got.AccessGranted)
	assert.Equal(t, t0, *got.AccessGrantedAt)
}

func TestGate_UnknownNominee(t *testing.T) {
	g := newGate(t, newMemStore())
	ctx := context.Background()

	_, err := g.IsAccessGranted(ctx, 77)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, g.Grant(ctx, 77), common.ErrorNotFound)
	_, err = g.Authorize(ctx, 77)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGate_AuthorizeForChecksEmail(t *testing.T) {
	st := newMemStore()
	u := st.addUser("Asha", t0, 30, true)
	n := st.addNominee(u.ID, "Meera", "Meera@Example.com")
	g := newGate(t, st)
	ctx := context.Background()

	_, err := g.AuthorizeFor(ctx, n.ID, "meera@example.com")
	assert.ErrorIs(t, err, common.ErrAccessDenied)

	require.NoError(t, g.Grant(ctx, n.ID))

	_, err = g.AuthorizeFor(ctx, n.ID, "someone@else.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	got, err := g.AuthorizeFor(ctx, n.ID, "meera@example.com")
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)
}

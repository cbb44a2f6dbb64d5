package repo

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriedge/internal/model"
	"agriedge/internal/store"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	log := zerolog.Nop()
	r, err := NewRepository(store.NewMemory(), &log)
	require.NoError(t, err)
	return r
}

func TestNewRepositoryRequiresStore(t *testing.T) {
	log := zerolog.Nop()
	_, err := NewRepository(nil, &log)
	assert.Error(t, err)
}

func TestRegistrations(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	for _, reg := range []model.Registration{
		{FullName: "A", Email: "a@x.com", Interests: []string{"AquaEdge"}, Timestamp: "2025-04-15T10:00:00.000Z"},
		{FullName: "B", Email: "b@x.com", Interests: []string{"AquaEdge"}, Timestamp: "2025-04-16T10:00:00.000Z"},
		{FullName: "A2", Email: "a@x.com", Interests: []string{"YieldEdge"}, Timestamp: "2025-04-14T10:00:00.000Z"},
	} {
		reg := reg
		id, err := r.CreateRegistration(ctx, &reg)
		require.NoError(t, err)
		assert.Equal(t, id, reg.ID)
	}

	found, err := r.FindRegistrationsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := r.FindRegistrationsByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := r.ListRegistrations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"B", "A", "A2"}, []string{all[0].FullName, all[1].FullName, all[2].FullName})
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	assert.Error(t, r.CreateUser(ctx, &model.User{Email: "u@x.com"}))

	require.NoError(t, r.CreateUser(ctx, &model.User{ID: "u1", Email: "u@x.com"}))
	u, err := r.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u@x.com", u.Email)

	u, err = r.FindUserByEmail(ctx, "u@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = r.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = r.FindUserByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdmins(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	require.NoError(t, r.AddAdmin(ctx, "  Boss@X.com "))

	ok, err := r.IsAdmin(ctx, "boss@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsAdmin(ctx, "staff@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

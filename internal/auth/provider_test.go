package auth

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"agriedge/internal/repo"
	"agriedge/internal/store"
)

type ProviderSuite struct {
	suite.Suite
	ctx   context.Context
	repo  repo.Repository
	clock time.Time
	p     *provider
}

func (s *ProviderSuite) SetupTest() {
	log := zerolog.Nop()
	r, err := repo.NewRepository(store.NewMemory(), &log)
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.repo = r
	s.clock = time.Now()
	s.p = newProvider(r, Config{
		Secret:     "test-secret",
		Issuer:     "agriedge-test",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, &log, func() time.Time { return s.clock })
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderSuite))
}

func (s *ProviderSuite) TestRegisterThenCurrentUser() {
	sess, err := s.p.Register(s.ctx, "  Jane@Example.com ", "secret123")
	s.Require().NoError(err)
	s.NotEmpty(sess.Token)
	s.Equal("jane@example.com", sess.Identity.Email)

	id, err := s.p.CurrentUser(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal(sess.Identity.UserID, id.UserID)
	s.Equal("jane@example.com", id.Label())
}

func (s *ProviderSuite) TestRegisterRejectsEmailInUse() {
	_, err := s.p.Register(s.ctx, "jane@example.com", "secret123")
	s.Require().NoError(err)

	_, err = s.p.Register(s.ctx, "JANE@example.com", "another1")
	s.ErrorIs(err, ErrEmailInUse)
}

func (s *ProviderSuite) TestRegisterRejectsShortPassword() {
	_, err := s.p.Register(s.ctx, "jane@example.com", "123")
	s.ErrorIs(err, ErrWeakPassword)
}

func (s *ProviderSuite) TestLogin() {
	_, err := s.p.Register(s.ctx, "jane@example.com", "secret123")
	s.Require().NoError(err)

	sess, err := s.p.Login(s.ctx, "Jane@example.com", "secret123")
	s.Require().NoError(err)
	s.NotEmpty(sess.Token)

	_, err = s.p.Login(s.ctx, "jane@example.com", "wrong-pass")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.p.Login(s.ctx, "nobody@example.com", "secret123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ProviderSuite) TestLogoutRevokesToken() {
	sess, err := s.p.Register(s.ctx, "jane@example.com", "secret123")
	s.Require().NoError(err)

	s.Require().NoError(s.p.Logout(s.ctx, sess.Token))

	_, err = s.p.CurrentUser(s.ctx, sess.Token)
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *ProviderSuite) TestExpiredToken() {
	sess, err := s.p.Register(s.ctx, "jane@example.com", "secret123")
	s.Require().NoError(err)

	s.clock = s.clock.Add(2 * time.Hour)
	_, err = s.p.CurrentUser(s.ctx, sess.Token)
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *ProviderSuite) TestForeignTokenRejected() {
	for _, token := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		_, err := s.p.CurrentUser(s.ctx, token)
		s.ErrorIs(err, ErrUnauthenticated, token)
	}

	log := zerolog.Nop()
	other := newProvider(s.repo, Config{Secret: "other", Issuer: "agriedge-test", BcryptCost: bcrypt.MinCost}, &log, time.Now)
	sess, err := other.Register(s.ctx, "x@example.com", "secret123")
	s.Require().NoError(err)
	_, err = s.p.CurrentUser(s.ctx, sess.Token)
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *ProviderSuite) TestUpdateProfileSetsDisplayName() {
	sess, err := s.p.Register(s.ctx, "jane@example.com", "secret123")
	s.Require().NoError(err)

	s.Require().NoError(s.p.UpdateProfile(s.ctx, sess.Identity.UserID, " Jane Doe "))

	id, err := s.p.CurrentUser(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal("Jane Doe", id.DisplayName)
	s.Equal("Jane Doe", id.Label())
}

type failingAdmins struct{}

func (failingAdmins) IsAdmin(context.Context, string) (bool, error) {
	return false, errors.New("permission denied")
}

func TestAuthorizer(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()
	r, err := repo.NewRepository(store.NewMemory(), &log)
	require.NoError(t, err)
	require.NoError(t, r.AddAdmin(ctx, "Boss@Example.com"))

	a := NewAuthorizer(r, &log)
	assert.True(t, a.IsAdmin(ctx, "boss@example.com"))
	assert.True(t, a.IsAdmin(ctx, " BOSS@example.com"))
	assert.False(t, a.IsAdmin(ctx, "staff@example.com"))
	assert.False(t, a.IsAdmin(ctx, ""))

	assert.False(t, NewAuthorizer(failingAdmins{}, &log).IsAdmin(ctx, "boss@example.com"))
}

func TestSeedAdmins(t *testing.T) {
	ctx := context.Background()
	nop := zerolog.Nop()
	r, err := repo.NewRepository(store.NewMemory(), &nop)
	require.NoError(t, err)
	p := NewProvider(r, Config{Secret: "s", BcryptCost: bcrypt.MinCost}, &nop)
	_, err = p.Register(ctx, "owner@example.com", "secret123")
	require.NoError(t, err)

	var buf bytes.Buffer
	log := zerolog.New(&buf)
	unclaimed, err := SeedAdmins(ctx, r, []string{" Owner@Example.com", "", "vacant@example.com"}, &log)
	require.NoError(t, err)
	assert.Equal(t, []string{"vacant@example.com"}, unclaimed)
	assert.Contains(t, buf.String(), "vacant@example.com")
	assert.NotContains(t, buf.String(), "owner@example.com")

	ok, err := r.IsAdmin(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.IsAdmin(ctx, "vacant@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc.def", BearerToken("Bearer abc.def"))
	assert.Equal(t, "abc", BearerToken("  bearer   abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken(""))
}

func TestIdentityContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), &Identity{Email: "a@b.co"})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "a@b.co", id.Email)
}

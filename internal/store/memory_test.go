package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type doc struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) insert(email, ts string) string {
	id, err := s.store.Insert(s.ctx, "registrations", doc{Email: email, Timestamp: ts})
	s.Require().NoError(err)
	s.Require().NotEmpty(id)
	return id
}

func (s *MemoryStoreSuite) TestInsertAndGetByID() {
	s.Run("round trips the document with its generated id", func() {
		id := s.insert("a@x.com", "2025-04-15T10:00:00.000Z")

		var got doc
		s.Require().NoError(s.store.GetByID(s.ctx, "registrations", id, &got))
		s.Equal(id, got.ID)
		s.Equal("a@x.com", got.Email)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		var got doc
		s.Require().ErrorIs(s.store.GetByID(s.ctx, "registrations", "missing", &got), ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestQueryWhere() {
	s.insert("a@x.com", "2025-04-15T10:00:00.000Z")
	s.insert("b@x.com", "2025-04-15T11:00:00.000Z")
	s.insert("a@x.com", "2025-04-15T12:00:00.000Z")

	var got []doc
	s.Require().NoError(s.store.QueryWhere(s.ctx, "registrations", "email", "a@x.com", &got))
	s.Len(got, 2)

	var none []doc
	s.Require().NoError(s.store.QueryWhere(s.ctx, "registrations", "email", "A@X.COM", &none))
	s.Empty(none, "matching is exact")
}

func (s *MemoryStoreSuite) TestListAllOrdering() {
	s.insert("mid@x.com", "2025-04-15T11:00:00.000Z")
	s.insert("old@x.com", "2025-04-15T10:00:00.000Z")
	s.insert("new@x.com", "2025-04-15T12:00:00.000Z")

	var desc []doc
	s.Require().NoError(s.store.ListAll(s.ctx, "registrations", "timestamp", Desc, &desc))
	s.Require().Len(desc, 3)
	s.Equal([]string{"new@x.com", "mid@x.com", "old@x.com"}, emails(desc))

	var asc []doc
	s.Require().NoError(s.store.ListAll(s.ctx, "registrations", "timestamp", Asc, &asc))
	s.Equal([]string{"old@x.com", "mid@x.com", "new@x.com"}, emails(asc))

	var bad []doc
	s.ErrorIs(s.store.ListAll(s.ctx, "registrations", "data'; drop", Asc, &bad), ErrInvalidField)
}

func (s *MemoryStoreSuite) TestSetReplaces() {
	s.Require().NoError(s.store.Set(s.ctx, "admins", "boss@x.com", doc{Email: "boss@x.com"}))
	s.Require().NoError(s.store.Set(s.ctx, "admins", "boss@x.com", doc{Email: "boss@x.com", Timestamp: "t"}))
	s.Equal(1, s.store.Len("admins"))

	var got doc
	s.Require().NoError(s.store.GetByID(s.ctx, "admins", "boss@x.com", &got))
	s.Equal("t", got.Timestamp)
}

func (s *MemoryStoreSuite) TestEmptyCollectionDecodesToEmptySlice() {
	var got []doc
	s.Require().NoError(s.store.ListAll(s.ctx, "nothing", "timestamp", Desc, &got))
	s.Empty(got)
}

func emails(docs []doc) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Email)
	}
	return out
}

package listing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsAreIsolated(t *testing.T) {
	s := NewSessions(time.Minute)

	a := s.Open("token-a")
	require.NoError(t, a.Load(context.Background(), staticLister{regs: records(3)}))
	b := s.Open("token-b")

	assert.Equal(t, 3, a.Len())
	assert.Zero(t, b.Len())
	assert.Same(t, a, s.Open("token-a"))
	assert.Equal(t, 2, s.Count())

	s.Discard("token-a")
	_, ok := s.Get("token-a")
	assert.False(t, ok)
}

func TestSessionsExpire(t *testing.T) {
	s := NewSessions(20 * time.Millisecond)
	s.Open("token")
	time.Sleep(40 * time.Millisecond)
	_, ok := s.Get("token")
	assert.False(t, ok)
}

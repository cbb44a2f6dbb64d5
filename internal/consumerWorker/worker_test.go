package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriedge/internal/dto"
)

type fakeConsumer struct {
	handler func([]byte) error
	err     error
}

func (f *fakeConsumer) Consume(h func([]byte) error) error {
	f.handler = h
	return f.err
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []dto.RegistrationCreatedMessage
	err  error
}

func (f *fakeNotifier) SendRegistrationEmail(msg dto.RegistrationCreatedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func newReader(n *fakeNotifier) *Reader {
	log := zerolog.Nop()
	return NewReader(&fakeConsumer{}, n, &log)
}

func TestHandleSendsConfirmation(t *testing.T) {
	n := &fakeNotifier{}
	r := newReader(n)

	body, err := json.Marshal(dto.RegistrationCreatedMessage{RegistrationID: "r1", Email: "jane@x.com", Lang: "en"})
	require.NoError(t, err)
	require.NoError(t, r.handle(body))
	require.Len(t, n.sent, 1)
	assert.Equal(t, "jane@x.com", n.sent[0].Email)
}

func TestHandleRejectsGarbage(t *testing.T) {
	n := &fakeNotifier{}
	assert.Error(t, newReader(n).handle([]byte("{")))
	assert.Empty(t, n.sent)
}

func TestHandleSkipsMissingRecipient(t *testing.T) {
	n := &fakeNotifier{}
	assert.NoError(t, newReader(n).handle([]byte(`{"registration_id":"r1"}`)))
	assert.Empty(t, n.sent)
}

func TestHandlePropagatesMailFailure(t *testing.T) {
	n := &fakeNotifier{err: errors.New("smtp down")}
	assert.Error(t, newReader(n).handle([]byte(`{"email":"a@b.co"}`)))
}

func TestStartStop(t *testing.T) {
	c := &fakeConsumer{}
	log := zerolog.Nop()
	r := NewReader(c, &fakeNotifier{}, &log)
	r.Start(context.Background())
	r.Stop()
	assert.NotNil(t, c.handler)
}

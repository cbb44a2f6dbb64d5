package consumerWorker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"agriedge/internal/dto"
)

type Consumer interface {
	Consume(handler func([]byte) error) error
}

type Notifier interface {
	SendRegistrationEmail(msg dto.RegistrationCreatedMessage) error
}

// Reader sends a confirmation email for every registration.created message.
type Reader struct {
	RMQ    Consumer
	mailer Notifier
	log    *zerolog.Logger
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq Consumer, mailer Notifier, log *zerolog.Logger) *Reader {
	return &Reader{
		RMQ:    rmq,
		mailer: mailer,
		log:    log,
		done:   make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.log.Info().Msg("RabbitMQ reader started")

	go func() {
		defer close(r.done)

		if err := r.RMQ.Consume(r.handle); err != nil {
			r.log.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		r.log.Info().Msg("RabbitMQ reader stopped by context")
	}()
}

func (r *Reader) handle(body []byte) error {
	var msg dto.RegistrationCreatedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		r.log.Error().Err(err).Msgf("failed to unmarshal message: %s", string(body))
		return fmt.Errorf("decode registration.created: %w", err)
	}
	if msg.Email == "" {
		r.log.Warn().Str("registration_id", msg.RegistrationID).Msg("message without recipient, skipping")
		return nil
	}

	r.log.Info().
		Str("registration_id", msg.RegistrationID).
		Msg("received registration.created")

	if err := r.mailer.SendRegistrationEmail(msg); err != nil {
		return err
	}
	return nil
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

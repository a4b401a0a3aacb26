package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/exp/rand"

	"github.com/sushihentaime/blogauth/internal/common"
)

const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 500 * time.Millisecond
)

func NewMailService(mb common.MessageConsumer, cfg MailConfig, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:         mb,
		m:          NewMailer(cfg, NewTemplate()),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
}

// SendWelcomeEmail starts consuming user.registered events and mails every new
// user. It returns once the consumer is running.
func (s *MailService) SendWelcomeEmail() error {
	msgs, err := s.mb.Consume(common.UserRegisteredKey, common.UserExchange, common.UserRegisteredQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				s.handleRegistered(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping SendWelcomeEmail due to context cancellation")
				return
			}
		}
	}()

	return nil
}

// handleRegistered always acks. A message that cannot be delivered after the
// last retry is dropped and logged.
func (s *MailService) handleRegistered(msg amqp.Delivery) {
	defer msg.Ack(false)

	var event common.UserRegisteredEvent
	err := json.Unmarshal(msg.Body, &event)
	if err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		return
	}

	payload := welcomeData{Name: event.Name, Email: event.Email}

	// exponential backoff with full jitter
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = s.m.send(event.Email, payload, welcomeTemplate)
		if err == nil {
			s.logger.Info("welcome email sent", slog.String("email", event.Email))
			return
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying welcome email", slog.String("email", event.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return
		}
	}

	s.logger.Error("could not send welcome email", slog.String("email", event.Email), slog.String("error", err.Error()))
}

// Close stops the consumer and waits for the in-flight message.
func (s *MailService) Close() {
	s.cancel()
	s.wg.Wait()
}

package mailservice

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sushihentaime/blogauth/internal/common"
)

func newTestMailService(mc common.MessageConsumer, m Mailer, logger MailLogger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())

	return &MailService{
		mb:         mc,
		m:          m,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		maxRetries: 3,
		baseDelay:  time.Millisecond,
	}
}

func deliveries(bodies ...string) <-chan amqp.Delivery {
	msgs := make(chan amqp.Delivery, len(bodies))
	for _, b := range bodies {
		msgs <- amqp.Delivery{Body: []byte(b)}
	}
	close(msgs)
	return msgs
}

func TestSendWelcomeEmail(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		sendErrs  []error
		wantSends int
		wantInfo  string
		wantError string
	}{
		{
			name:      "sent on first attempt",
			body:      `{"name":"A","email":"test@example.com"}`,
			sendErrs:  []error{nil},
			wantSends: 1,
			wantInfo:  "welcome email sent",
		},
		{
			name:      "sent after a retry",
			body:      `{"name":"A","email":"test@example.com"}`,
			sendErrs:  []error{errors.New("smtp down"), nil},
			wantSends: 2,
			wantInfo:  "welcome email sent",
		},
		{
			name:      "gives up after max retries",
			body:      `{"name":"A","email":"test@example.com"}`,
			sendErrs:  []error{errors.New("smtp down"), errors.New("smtp down"), errors.New("smtp down")},
			wantSends: 3,
			wantError: "could not send welcome email",
		},
		{
			name:      "malformed message",
			body:      `not json`,
			wantSends: 0,
			wantError: "could not unmarshal message",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockMC := new(MockMessageConsumer)
			mockMailer := new(MockMailer)
			logger := new(MockLogger)

			mockMC.On("Consume", common.UserRegisteredKey, common.UserExchange, common.UserRegisteredQueue).Return(deliveries(tc.body), nil)

			want := welcomeData{Name: "A", Email: "test@example.com"}
			for _, err := range tc.sendErrs {
				mockMailer.On("send", "test@example.com", want, welcomeTemplate).Return(err).Once()
			}

			s := newTestMailService(mockMC, mockMailer, logger)

			err := s.SendWelcomeEmail()
			assert.NoError(t, err)

			// the consumer returns once the channel is drained
			s.wg.Wait()

			mockMC.AssertExpectations(t)
			mockMailer.AssertNumberOfCalls(t, "send", tc.wantSends)

			if tc.wantInfo != "" {
				assert.Contains(t, logger.Infos(), tc.wantInfo)
			}
			if tc.wantError != "" {
				assert.Contains(t, logger.Errors(), tc.wantError)
			}

			s.Close()
		})
	}
}

func TestSendWelcomeEmailConsumeError(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMC.On("Consume", common.UserRegisteredKey, common.UserExchange, common.UserRegisteredQueue).Return(nil, errors.New("channel closed"))

	logger := new(MockLogger)
	s := newTestMailService(mockMC, new(MockMailer), logger)

	err := s.SendWelcomeEmail()
	assert.EqualError(t, err, "channel closed")
	assert.Contains(t, logger.Errors(), "could not consume message")

	s.Close()
}

func TestMailServiceClose(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	msgs := make(chan amqp.Delivery)
	mockMC.On("Consume", mock.Anything, mock.Anything, mock.Anything).Return((<-chan amqp.Delivery)(msgs), nil)

	logger := new(MockLogger)
	s := newTestMailService(mockMC, new(MockMailer), logger)

	assert.NoError(t, s.SendWelcomeEmail())

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after Close")
	}

	assert.Contains(t, logger.Infos(), "stopping SendWelcomeEmail due to context cancellation")
}

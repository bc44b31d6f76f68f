package notification

import (
	"context"
	"time"

	"OCLAdmin/internal/config"
	"OCLAdmin/pkg/pagination"

	"go.uber.org/zap"
)

// Mailer delivers one email. config.EmailService is the production mailer.
type Mailer interface {
	Enabled() bool
	SendEmail(to, subject, body string) error
}

// batchSize bounds how many notifications one scheduler tick delivers.
const batchSize = 50

type NotificationService struct {
	store       Store
	mailer      Mailer
	maxAttempts int
	log         *zap.Logger
	now         func() time.Time
}

func NewNotificationService(store Store, mailer Mailer, cfg *config.Config, log *zap.Logger) *NotificationService {
	maxAttempts := cfg.NotifyMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &NotificationService{store: store, mailer: mailer, maxAttempts: maxAttempts, log: log, now: time.Now}
}

// Notify queues an email for delivery. Nothing is queued while the mailer is
// disabled.
func (s *NotificationService) Notify(ctx context.Context, to, subject, body string) error {
	if !s.mailer.Enabled() {
		s.log.Debug("email disabled, notification dropped", zap.String("to", to), zap.String("subject", subject))
		return nil
	}
	at := s.now()
	return s.store.Create(ctx, &Notification{
		Recipient: to,
		Subject:   subject,
		Body:      body,
		Status:    StatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	})
}

// SendDue delivers pending notifications and reports how many were sent.
func (s *NotificationService) SendDue(ctx context.Context) (int, error) {
	if !s.mailer.Enabled() {
		return 0, nil
	}
	pending, err := s.store.Pending(ctx, s.maxAttempts, batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range pending {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		at := s.now()
		if err := s.mailer.SendEmail(n.Recipient, n.Subject, n.Body); err != nil {
			exhausted := n.Attempts+1 >= s.maxAttempts
			s.log.Warn("notification delivery failed",
				zap.String("id", n.ID.Hex()),
				zap.String("to", n.Recipient),
				zap.Int("attempt", n.Attempts+1),
				zap.Bool("exhausted", exhausted),
				zap.Error(err),
			)
			if err := s.store.MarkAttemptFailed(ctx, n.ID, err.Error(), exhausted, at); err != nil {
				return sent, err
			}
			continue
		}
		if err := s.store.MarkSent(ctx, n.ID, at); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (s *NotificationService) List(ctx context.Context, status Status, page pagination.Page) ([]*Notification, int64, error) {
	return s.store.List(ctx, status, page)
}

package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"

	"roombooking/internal/config"
	"roombooking/internal/domain"
)

const dateLayout = "02 Jan 2006"

// UserLookup resolves the recipient of a booking notification.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer emails the booking owner about decisions staff made on their booking.
// Delivery is asynchronous; SMTP failures are logged and trip the breaker.
type Mailer struct {
	from   string
	users  UserLookup
	dialer sender
	cb     *gobreaker.CircuitBreaker
	log    logrus.FieldLogger
	wg     sync.WaitGroup
}

func NewMailer(cfg config.MailConfig, users UserLookup, log logrus.FieldLogger) *Mailer {
	return newMailer(cfg.From, users, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), log)
}

func newMailer(from string, users UserLookup, dialer sender, log logrus.FieldLogger) *Mailer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("module", "notification")
	return &Mailer{
		from:   from,
		users:  users,
		dialer: dialer,
		cb:     circuitBreaker("smtp", log),
		log:    log,
	}
}

func circuitBreaker(name string, log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	})
}

func (m *Mailer) PublishBookingEvent(ctx context.Context, ev domain.BookingEvent) {
	subject, ok := subjects[ev.Type]
	if !ok {
		return
	}

	// запрос уже может быть завершён к моменту отправки
	ctx = context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.deliver(ctx, subject, ev); err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{
				"booking_id": ev.BookingID,
				"event":      ev.Type,
			}).Warn("booking notification not sent")
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (m *Mailer) Wait() {
	m.wg.Wait()
}

func (m *Mailer) deliver(ctx context.Context, subject string, ev domain.BookingEvent) error {
	user, err := m.users.GetByID(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("lookup recipient: %w", err)
	}
	if user.Email == "" {
		return errors.New("recipient has no email")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", user.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body(user, ev))

	_, err = m.cb.Execute(func() (interface{}, error) {
		return nil, m.dialer.DialAndSend(msg)
	})
	return err
}

var subjects = map[domain.BookingEventType]string{
	domain.EventBookingConfirmed:        "Your booking is confirmed",
	domain.EventBookingCancelled:        "Your booking was cancelled",
	domain.EventBookingPostponeApproved: "Your new dates are approved",
	domain.EventBookingPostponeRejected: "Your date change was declined",
}

func body(u *domain.User, ev domain.BookingEvent) string {
	name := u.FullName()
	if name == "" {
		name = u.Email
	}
	text := fmt.Sprintf("Hello %s,\n\n", name)

	dates := fmt.Sprintf("%s to %s", ev.CheckInDate.Format(dateLayout), ev.CheckOutDate.Format(dateLayout))
	switch ev.Type {
	case domain.EventBookingConfirmed:
		text += fmt.Sprintf("booking #%d for %s is confirmed.\n", ev.BookingID, dates)
	case domain.EventBookingCancelled:
		text += fmt.Sprintf("booking #%d for %s was cancelled.\n", ev.BookingID, dates)
		if ev.Reason != "" {
			text += "Reason: " + ev.Reason + "\n"
		}
	case domain.EventBookingPostponeApproved:
		text += fmt.Sprintf("booking #%d now runs from %s.\n", ev.BookingID, dates)
	case domain.EventBookingPostponeRejected:
		text += fmt.Sprintf("the requested date change for booking #%d was declined. Your stay remains %s.\n", ev.BookingID, dates)
	}
	return text
}

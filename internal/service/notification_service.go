package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/church-events-api/internal/models"
	"github.com/noah-isme/church-events-api/pkg/jobs"
	"github.com/noah-isme/church-events-api/pkg/mailer"
)

type mailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type webhookPoster interface {
	Enabled() bool
	Post(ctx context.Context, payload interface{}) error
}

const (
	jobQuizConfirmation  = "quiz_confirmation"
	jobEventConfirmation = "event_confirmation"
)

// NotificationConfig tunes confirmation delivery.
type NotificationConfig struct {
	EventName string
	Async     bool
	Workers   int
}

// NotificationService delivers confirmations and verification codes. Delivery
// failures of confirmations are logged and counted, never returned.
type NotificationService struct {
	mailer  mailSender
	webhook webhookPoster
	metrics *MetricsService
	logger  *zap.Logger
	config  NotificationConfig
	queue   *jobs.Queue
}

type quizConfirmation struct {
	Detail *models.QuizRegistrationDetail
	PDF    []byte
}

type eventConfirmation struct {
	Event        models.Event
	Registration models.EventRegistration
}

// EventWebhookPayload is posted to the workflow endpoint for event sign-ups.
type EventWebhookPayload struct {
	Type           string    `json:"type"`
	EventID        string    `json:"eventId"`
	EventTitle     string    `json:"eventTitle"`
	StartsAt       time.Time `json:"startsAt"`
	Venue          string    `json:"venue"`
	RegistrationID string    `json:"registrationId"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Church         string    `json:"church"`
	Notes          string    `json:"notes"`
}

// NewNotificationService constructs the service. With cfg.Async set,
// confirmations are handed to a background queue that must be run with Run.
func NewNotificationService(m mailSender, hook webhookPoster, metrics *MetricsService, logger *zap.Logger, cfg NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.EventName == "" {
		cfg.EventName = "Bible Quiz"
	}
	svc := &NotificationService{mailer: m, webhook: hook, metrics: metrics, logger: logger, config: cfg}
	if cfg.Async {
		svc.queue = jobs.NewQueue("notifications", svc.handleJob, jobs.QueueConfig{
			Workers:    cfg.Workers,
			MaxRetries: 0,
			Logger:     logger,
		})
	}
	return svc
}

// Run drives the background queue until ctx ends. It returns immediately in
// synchronous mode.
func (s *NotificationService) Run(ctx context.Context) error {
	if s.queue == nil {
		return nil
	}
	return s.queue.Run(ctx)
}

// NotifyQuizRegistration emails the group leader with the form attached.
func (s *NotificationService) NotifyQuizRegistration(ctx context.Context, detail *models.QuizRegistrationDetail, pdf []byte) {
	payload := quizConfirmation{Detail: detail, PDF: pdf}
	if s.enqueue(jobQuizConfirmation, payload) {
		return
	}
	s.sendQuizConfirmation(ctx, payload)
}

// NotifyEventRegistration posts to the workflow webhook and falls back to
// email when the webhook is unavailable or rejects the call.
func (s *NotificationService) NotifyEventRegistration(ctx context.Context, event models.Event, reg models.EventRegistration) {
	payload := eventConfirmation{Event: event, Registration: reg}
	if s.enqueue(jobEventConfirmation, payload) {
		return
	}
	s.sendEventConfirmation(ctx, payload)
}

// SendOTP mails a verification code. Unlike confirmations the error is
// returned because the caller cannot proceed without the code.
func (s *NotificationService) SendOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	data := otpMailData{Code: code, Minutes: int(ttl.Round(time.Minute) / time.Minute)}
	html, err := renderTemplate("otp", data)
	if err != nil {
		return err
	}
	err = s.mailer.Send(ctx, mailer.Message{
		To:      []string{email},
		Subject: "Your verification code",
		Text:    otpMailText(data),
		HTML:    html,
	})
	if err != nil {
		s.metrics.RecordNotification(ChannelEmail, NotifyFailed)
		return err
	}
	s.metrics.RecordNotification(ChannelEmail, NotifySent)
	return nil
}

func (s *NotificationService) enqueue(kind string, payload interface{}) bool {
	if s.queue == nil {
		return false
	}
	err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: kind, Payload: payload})
	if err != nil {
		s.logger.Warn("notification queue unavailable, sending inline", zap.String("type", kind), zap.Error(err))
		return false
	}
	return true
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	switch payload := job.Payload.(type) {
	case quizConfirmation:
		s.sendQuizConfirmation(ctx, payload)
	case eventConfirmation:
		s.sendEventConfirmation(ctx, payload)
	default:
		return fmt.Errorf("unknown notification job %s", job.Type)
	}
	return nil
}

func (s *NotificationService) sendQuizConfirmation(ctx context.Context, p quizConfirmation) {
	data := quizMailData{
		LeaderName:   p.Detail.LeaderName,
		Church:       p.Detail.ChurchName,
		EventName:    s.config.EventName,
		GroupNumber:  p.Detail.GroupNumber,
		Participants: p.Detail.Participants,
	}
	logger := s.logger.With(zap.String("registration_id", p.Detail.ID), zap.String("group_number", p.Detail.GroupNumber))

	html, err := renderTemplate("quiz", data)
	if err != nil {
		logger.Error("failed to build confirmation email", zap.Error(err))
		s.metrics.RecordNotification(ChannelEmail, NotifyFailed)
		return
	}
	msg := mailer.Message{
		To:      []string{p.Detail.Email},
		Subject: fmt.Sprintf("%s Registration - Group %s", s.config.EventName, p.Detail.GroupNumber),
		Text:    quizMailText(data),
		HTML:    html,
	}
	if len(p.PDF) > 0 {
		msg.Attachments = []mailer.Attachment{{
			Filename:    DocumentFilename(p.Detail.GroupNumber),
			ContentType: "application/pdf",
			Data:        p.PDF,
		}}
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Error("failed to send confirmation email", zap.Error(err))
		s.metrics.RecordNotification(ChannelEmail, NotifyFailed)
		return
	}
	s.metrics.RecordNotification(ChannelEmail, NotifySent)
	logger.Info("confirmation email sent")
}

func (s *NotificationService) sendEventConfirmation(ctx context.Context, p eventConfirmation) {
	logger := s.logger.With(zap.String("event_id", p.Event.ID), zap.String("registration_id", p.Registration.ID))

	if s.webhook != nil && s.webhook.Enabled() {
		err := s.webhook.Post(ctx, EventWebhookPayload{
			Type:           "event_registration",
			EventID:        p.Event.ID,
			EventTitle:     p.Event.Title,
			StartsAt:       p.Event.StartsAt,
			Venue:          p.Event.Venue,
			RegistrationID: p.Registration.ID,
			FullName:       p.Registration.FullName,
			Email:          p.Registration.Email,
			Phone:          p.Registration.Phone,
			Church:         p.Registration.Church,
			Notes:          p.Registration.Notes,
		})
		if err == nil {
			s.metrics.RecordNotification(ChannelWebhook, NotifySent)
			return
		}
		logger.Warn("webhook notification failed, falling back to email", zap.Error(err))
		s.metrics.RecordNotification(ChannelWebhook, NotifyFallback)
	}

	data := eventMailData{
		FullName: p.Registration.FullName,
		Title:    p.Event.Title,
		Venue:    p.Event.Venue,
		StartsAt: formatEventTime(p.Event.StartsAt),
	}
	html, err := renderTemplate("event", data)
	if err == nil {
		err = s.mailer.Send(ctx, mailer.Message{
			To:      []string{p.Registration.Email},
			Subject: "Registration confirmed: " + p.Event.Title,
			Text:    eventMailText(data),
			HTML:    html,
		})
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("event confirmation cancelled", zap.Error(err))
		} else {
			logger.Error("failed to send event confirmation email", zap.Error(err))
		}
		s.metrics.RecordNotification(ChannelEmail, NotifyFailed)
		return
	}
	s.metrics.RecordNotification(ChannelEmail, NotifySent)
}

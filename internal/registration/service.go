package registration

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ms-registration/internal/apperr"
	"ms-registration/internal/kafka"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	"ms-registration/internal/webhook"

	"github.com/google/uuid"
)

const (
	MsgSuccess       = "報名成功！我們會盡快與您聯繫確認。"
	MsgEventNotFound = "活動不存在"
)

type EventStore interface {
	GetEventDetail(ctx context.Context, code string) (*models.Event, error)
	UpsertEvent(ctx context.Context, def models.Event) (*models.Event, error)
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, error)
	RegisteredParticipants(ctx context.Context, eventID int64) (int, error)
}

type RegistrationStore interface {
	CreateRegistration(ctx context.Context, in models.NewRegistration) (*models.RegistrationResult, error)
}

type EventCache interface {
	Get(ctx context.Context, code string) (*models.Event, error)
	Set(ctx context.Context, event *models.Event) error
}

type Notifier interface {
	Notify(ctx context.Context, p webhook.Payload) error
}

type EventPublisher interface {
	PublishRegistrationCreated(ctx context.Context, evt kafka.RegistrationCreated) error
}

type RegistrationService struct {
	Events        EventStore
	Registrations RegistrationStore
	Cache         EventCache
	Notifier      Notifier
	Kafka         EventPublisher
	Logger        *logger.Logger
}

func NewRegistrationService(events EventStore, registrations RegistrationStore, notifier Notifier, publisher EventPublisher, l *logger.Logger) *RegistrationService {
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	return &RegistrationService{
		Events:        events,
		Registrations: registrations,
		Notifier:      notifier,
		Kafka:         publisher,
		Logger:        l,
	}
}

// SubmitRegistration validates req, resolves the event and creates the
// registration. The amount returned is the one the data store computed.
// Webhook and Kafka delivery failures are logged only.
func (s *RegistrationService) SubmitRegistration(ctx context.Context, req models.RegistrationRequest) (*models.RegistrationResult, error) {
	normalize(&req)
	if err := validateRequest(ctx, &req); err != nil {
		s.Logger.Warn("REGISTRATION", fmt.Sprintf("rejected signup for %q: %v", req.EventCode, err))
		return nil, err
	}

	event, err := s.ResolveEvent(ctx, req.EventCode)
	if err != nil {
		return nil, err
	}

	in, err := buildRegistration(event.Code, req)
	if err != nil {
		return nil, err
	}

	result, err := s.Registrations.CreateRegistration(ctx, in)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindSystem {
			s.Logger.Error("REGISTRATION", fmt.Sprintf("create registration for %s failed: %v", event.Code, err))
		}
		return nil, err
	}

	s.Logger.LogRegistration("CREATED", result.OrderNumber,
		fmt.Sprintf("%s x%d for %s (%s, %.0f)", in.Email, in.ParticipantCount, event.Code, in.PaymentMethod, result.PaymentAmount))

	// side channels must outlive a client that hangs up
	sideCtx := context.WithoutCancel(ctx)
	s.notify(sideCtx, event, in, result, req.SubscribeNewsletter)
	s.publish(sideCtx, event, in, result)

	return result, nil
}

// ResolveEvent returns the active event for code. Well-known aliases are
// upserted first, so the first signup creates the event.
func (s *RegistrationService) ResolveEvent(ctx context.Context, code string) (*models.Event, error) {
	def, isAlias := LookupAlias(code)
	if isAlias {
		code = def.Code
	}

	if event := s.cachedEvent(ctx, code); event != nil {
		return event, nil
	}

	var (
		event *models.Event
		err   error
	)
	if isAlias {
		event, err = s.Events.UpsertEvent(ctx, def)
	} else {
		event, err = s.Events.GetEventDetail(ctx, code)
	}
	if err != nil {
		return nil, err
	}
	if event == nil || !event.IsActive {
		s.Logger.Warn("REGISTRATION", fmt.Sprintf("event %s not found or inactive", code))
		return nil, apperr.NotFound(MsgEventNotFound)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, event); err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("event cache write failed for %s: %v", code, err))
		}
	}
	return event, nil
}

func (s *RegistrationService) cachedEvent(ctx context.Context, code string) *models.Event {
	if s.Cache == nil {
		return nil
	}
	event, err := s.Cache.Get(ctx, code)
	if err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("event cache read failed for %s: %v", code, err))
		return nil
	}
	if event == nil || !event.IsActive {
		return nil
	}
	return event
}

// EventDetail is the public view of one event with its remaining capacity.
func (s *RegistrationService) EventDetail(ctx context.Context, code string) (*models.EventDetail, error) {
	event, err := s.ResolveEvent(ctx, code)
	if err != nil {
		return nil, err
	}
	registered, err := s.Events.RegisteredParticipants(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	detail := models.NewEventDetail(*event, registered)
	return &detail, nil
}

func (s *RegistrationService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, error) {
	return s.Events.ListEvents(ctx, filter)
}

func buildRegistration(eventCode string, req models.RegistrationRequest) (models.NewRegistration, error) {
	ticketType := req.PaymentType
	if ticketType == "" {
		ticketType = models.TicketEarlyBird
	}
	method := models.PaymentTransfer
	if ticketType == models.TicketOnsite {
		method = models.PaymentCash
	}

	count := req.ParticipantCount
	if count < 1 {
		count = 1
	}

	in := models.NewRegistration{
		EventCode:        eventCode,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		InstagramHandle:  req.InstagramID,
		TicketType:       ticketType,
		PaymentMethod:    method,
		ParticipantCount: count,
		Notes:            req.Notes,
		CustomFields: map[string]any{
			"payment_type":         ticketType,
			"source":               "website",
			"subscribe_newsletter": req.SubscribeNewsletter,
		},
	}

	if method == models.PaymentTransfer {
		if req.TransferAmount != "" {
			amount, err := strconv.ParseFloat(req.TransferAmount, 64)
			if err != nil || amount < 0 {
				return in, apperr.Validation("轉帳金額格式不正確")
			}
			in.TransferAmount = &amount
		}
		in.TransferLastFive = req.TransferLastFive
	}
	return in, nil
}

func (s *RegistrationService) notify(ctx context.Context, event *models.Event, in models.NewRegistration, result *models.RegistrationResult, newsletter bool) {
	if s.Notifier == nil {
		return
	}

	payload := webhook.Payload{
		DeliveryID:          uuid.NewString(),
		RegistrationID:      result.RegistrationID,
		CustomerID:          result.CustomerID,
		PaymentOrderID:      result.PaymentOrderID,
		OrderNumber:         result.OrderNumber,
		EventID:             event.ID,
		EventCode:           event.Code,
		EventName:           event.Name,
		ParticipantName:     in.Name,
		ParticipantEmail:    in.Email,
		ParticipantPhone:    in.Phone,
		InstagramHandle:     in.InstagramHandle,
		TicketType:          in.TicketType,
		PaymentMethod:       string(in.PaymentMethod),
		ParticipantCount:    in.ParticipantCount,
		PaymentAmount:       result.PaymentAmount,
		TransferAmount:      in.TransferAmount,
		TransferLastFive:    in.TransferLastFive,
		Notes:               in.Notes,
		SubscribeNewsletter: newsletter,
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.Notifier.Notify(ctx, payload); err != nil {
		s.Logger.Error("WEBHOOK", fmt.Sprintf("notification for %s failed: %v", result.OrderNumber, err))
	}
}

func (s *RegistrationService) publish(ctx context.Context, event *models.Event, in models.NewRegistration, result *models.RegistrationResult) {
	err := s.Kafka.PublishRegistrationCreated(ctx, kafka.RegistrationCreated{
		RegistrationID:   result.RegistrationID,
		CustomerID:       result.CustomerID,
		PaymentOrderID:   result.PaymentOrderID,
		OrderNumber:      result.OrderNumber,
		EventCode:        event.Code,
		TicketType:       in.TicketType,
		PaymentMethod:    string(in.PaymentMethod),
		ParticipantCount: in.ParticipantCount,
		PaymentAmount:    result.PaymentAmount,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Kafka publish error (registration created): %v", err))
	}
}

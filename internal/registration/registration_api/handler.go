package registration_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ms-registration/internal/apperr"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	"ms-registration/internal/registration"
	"ms-registration/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Service interface {
	SubmitRegistration(ctx context.Context, req models.RegistrationRequest) (*models.RegistrationResult, error)
	EventDetail(ctx context.Context, code string) (*models.EventDetail, error)
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, error)
}

type Handler struct {
	Service Service
	Logger  *logger.Logger
}

func NewHandler(svc Service, l *logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: l}
}

// Routes mounts the public endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/registrations", h.SubmitRegistration)
	r.Post("/api/submit-registration", h.SubmitRegistration)
	r.Get("/api/events", h.ListEvents)
	r.Get("/api/events/{code}", h.GetEvent)
}

func (h *Handler) SubmitRegistration(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("SubmitRegistration: invalid body: %v", err))
		utils.WriteJSON(w, http.StatusBadRequest, models.RegistrationResponse{Success: false, Message: registration.MsgMissingFields})
		return
	}

	result, err := h.Service.SubmitRegistration(r.Context(), req)
	if err != nil {
		kind := apperr.KindOf(err)
		if kind == apperr.KindSystem {
			h.Logger.Error("API", fmt.Sprintf("SubmitRegistration: %v", err))
		}
		utils.WriteJSON(w, apperr.HTTPStatus(kind), models.RegistrationResponse{Success: false, Message: apperr.Message(err)})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.RegistrationResponse{
		Success:        true,
		Message:        registration.MsgSuccess,
		RegistrationID: result.RegistrationID,
		CustomerID:     result.CustomerID,
		OrderNumber:    result.OrderNumber,
		PaymentAmount:  result.PaymentAmount,
	})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	detail, err := h.Service.EventDetail(r.Context(), code)
	if err != nil {
		kind := apperr.KindOf(err)
		if kind == apperr.KindSystem {
			h.Logger.Error("API", fmt.Sprintf("GetEvent %s: %v", code, err))
		}
		utils.WriteJSON(w, apperr.HTTPStatus(kind), utils.ErrorResponse(apperr.Message(err), kind.String()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, detail)
}

// ListEvents accepts type, active, has_slots, from (YYYY-MM-DD), limit and offset.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := h.Service.ListEvents(r.Context(), filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteJSON(w, apperr.HTTPStatus(apperr.KindOf(err)), utils.ErrorResponse(apperr.Message(err), apperr.KindOf(err).String()))
		return
	}
	if events == nil {
		events = []models.EventDetail{}
	}
	utils.WriteJSON(w, http.StatusOK, events)
}

func parseFilter(r *http.Request) (models.EventFilter, error) {
	q := r.URL.Query()
	filter := models.EventFilter{
		EventType:  q.Get("type"),
		ActiveOnly: q.Get("active") != "false",
		HasSlots:   q.Get("has_slots") == "true",
	}

	if from := q.Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, fmt.Errorf("invalid from date: %s", from)
		}
		filter.From = t.Format("2006-01-02")
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid %s: %s", name, raw)
		}
		*dst = n
	}
	return filter, nil
}

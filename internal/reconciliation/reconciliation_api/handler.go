package reconciliation_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"ms-registration/internal/apperr"
	"ms-registration/internal/auth"
	"ms-registration/internal/checkin/qr"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	"ms-registration/internal/utils"

	"github.com/go-chi/chi/v5"
)

const msgUpdateFailed = "更新失敗，請稍後再試"

type Dashboard interface {
	Snapshot(ctx context.Context, eventCode string, force bool) (*models.Snapshot, error)
	PaymentOrder(ctx context.Context, eventCode string, id int64) (*models.PaymentOrder, error)
	SetPaymentStatus(ctx context.Context, eventCode string, id int64, status models.PaymentStatus, actor string) (*models.Snapshot, error)
	ToggleCheckIn(ctx context.Context, eventCode string, id int64, actor string) (bool, *models.Snapshot, error)
	SetCheckIn(ctx context.Context, eventCode string, id int64, checkedIn bool, actor string) (*models.Snapshot, error)
}

type Subscriber interface {
	Subscribe(ctx context.Context, eventCode string) <-chan models.Snapshot
}

type Handler struct {
	Dashboard    Dashboard
	QRGenerator  *qr.Generator
	Events       Subscriber
	DefaultActor string
	Logger       *logger.Logger
}

func NewHandler(dashboard Dashboard, gen *qr.Generator, events Subscriber, defaultActor string, l *logger.Logger) *Handler {
	return &Handler{
		Dashboard:    dashboard,
		QRGenerator:  gen,
		Events:       events,
		DefaultActor: defaultActor,
		Logger:       l,
	}
}

// Routes mounts the operator endpoints; callers wrap r with auth.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/dashboard/events/{eventCode}", func(r chi.Router) {
		r.Get("/", h.GetSnapshot)
		r.Get("/stream", h.Stream)
		r.Post("/checkin/scan", h.ScanCheckIn)
		r.Route("/payments/{paymentId}", func(r chi.Router) {
			r.Put("/status", h.UpdatePaymentStatus)
			r.Post("/checkin", h.ToggleCheckIn)
			r.Get("/qr", h.CheckInQR)
		})
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

type scanRequest struct {
	Token string `json:"token"`
}

type checkInResponse struct {
	PaymentOrderID int64            `json:"paymentOrderId"`
	OrderNumber    string           `json:"orderNumber,omitempty"`
	CheckedIn      bool             `json:"checkedIn"`
	Snapshot       *models.Snapshot `json:"snapshot"`
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")
	force := r.URL.Query().Get("refresh") == "true"

	snap, err := h.Dashboard.Snapshot(r.Context(), eventCode, force)
	if err != nil {
		h.writeError(w, "GetSnapshot", err, "")
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	actor := auth.Actor(r.Context(), h.DefaultActor)
	snap, err := h.Dashboard.SetPaymentStatus(r.Context(), eventCode, id, models.PaymentStatus(req.Status), actor)
	if err != nil {
		h.writeError(w, "UpdatePaymentStatus", err, msgUpdateFailed)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("付款狀態已更新", snap))
}

func (h *Handler) ToggleCheckIn(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	actor := auth.Actor(r.Context(), h.DefaultActor)
	checked, snap, err := h.Dashboard.ToggleCheckIn(r.Context(), eventCode, id, actor)
	if err != nil {
		h.writeError(w, "ToggleCheckIn", err, msgUpdateFailed)
		return
	}
	utils.WriteJSON(w, http.StatusOK, checkInResponse{PaymentOrderID: id, CheckedIn: checked, Snapshot: snap})
}

// CheckInQR serves the PNG code for a payment order; ?format=token returns the raw token.
func (h *Handler) CheckInQR(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	order, err := h.Dashboard.PaymentOrder(r.Context(), eventCode, id)
	if err != nil {
		h.writeError(w, "CheckInQR", err, "")
		return
	}
	ref := models.CheckInRef{PaymentOrderID: order.ID, EventCode: eventCode, OrderNumber: order.OrderNumber}

	if r.URL.Query().Get("format") == "token" {
		token, err := h.QRGenerator.Token(ref)
		if err != nil {
			h.writeError(w, "CheckInQR", apperr.System("issue check-in token", err), "")
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
		return
	}

	png, err := h.QRGenerator.PNG(ref)
	if err != nil {
		h.writeError(w, "CheckInQR", apperr.System("render check-in QR", err), "")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", order.OrderNumber+".png"))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ScanCheckIn marks the payment order sealed in a QR token as checked in.
func (h *Handler) ScanCheckIn(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	ref, err := h.QRGenerator.Parse(req.Token)
	if err != nil {
		h.Logger.LogSecurity("CHECKIN", fmt.Sprintf("rejected check-in token for %s: %v", eventCode, err))
		http.Error(w, "Invalid QR code", http.StatusBadRequest)
		return
	}
	if ref.EventCode != eventCode {
		h.Logger.LogSecurity("CHECKIN", fmt.Sprintf("token for %s scanned at %s", ref.EventCode, eventCode))
		http.Error(w, "QR code belongs to another event", http.StatusBadRequest)
		return
	}

	actor := auth.Actor(r.Context(), h.DefaultActor)
	snap, err := h.Dashboard.SetCheckIn(r.Context(), eventCode, ref.PaymentOrderID, true, actor)
	if err != nil {
		h.writeError(w, "ScanCheckIn", err, msgUpdateFailed)
		return
	}
	utils.WriteJSON(w, http.StatusOK, checkInResponse{
		PaymentOrderID: ref.PaymentOrderID,
		OrderNumber:    ref.OrderNumber,
		CheckedIn:      true,
		Snapshot:       snap,
	})
}

func (h *Handler) paymentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "paymentId"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid payment id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeError maps the error kind to a status. systemMsg, when set, replaces
// the generic message for system failures.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error, systemMsg string) {
	kind := apperr.KindOf(err)
	msg := apperr.Message(err)
	if kind == apperr.KindSystem && systemMsg != "" {
		msg = systemMsg
	}

	if kind == apperr.KindSystem {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	} else {
		h.Logger.Warn("API", fmt.Sprintf("%s: %v", op, err))
	}
	utils.WriteJSON(w, apperr.HTTPStatus(kind), utils.ErrorResponse(msg, kind.String()))
}

package analytics_api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ms-registration/internal/apperr"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	"ms-registration/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Reports interface {
	BusinessSummary(ctx context.Context) (*models.BusinessSummary, error)
	DailyRevenue(ctx context.Context, days int) ([]models.DailyRevenue, error)
	RevenueByPeriod(ctx context.Context, from, to time.Time) (*models.PeriodRevenue, error)
	ConversionFunnel(ctx context.Context, eventCode string) (*models.ConversionFunnel, error)
	InventoryOverview(ctx context.Context, status string) ([]models.InventoryStatus, error)
}

// Handler handles report HTTP endpoints
type Handler struct {
	Service Reports
	Logger  *logger.Logger
}

func NewHandler(service Reports, l *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: l}
}

// RegisterRoutes registers the report routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/summary", h.GetBusinessSummary)
		r.Get("/daily-revenue", h.GetDailyRevenue)
		r.Get("/revenue", h.GetRevenueByPeriod)
		r.Get("/events/{eventCode}/funnel", h.GetConversionFunnel)
		r.Get("/inventory", h.GetInventoryOverview)
	})
}

func (h *Handler) GetBusinessSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.BusinessSummary(r.Context())
	if err != nil {
		h.fail(w, "GetBusinessSummary", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

// GetDailyRevenue takes ?days= (default 30).
func (h *Handler) GetDailyRevenue(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid days parameter", http.StatusBadRequest)
			return
		}
		days = n
	}

	rows, err := h.Service.DailyRevenue(r.Context(), days)
	if err != nil {
		h.fail(w, "GetDailyRevenue", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

// GetRevenueByPeriod takes ?from=YYYY-MM-DD&to=YYYY-MM-DD, both inclusive.
func (h *Handler) GetRevenueByPeriod(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "Invalid from parameter, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "Invalid to parameter, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	period, err := h.Service.RevenueByPeriod(r.Context(), from, to)
	if err != nil {
		h.fail(w, "GetRevenueByPeriod", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, period)
}

func (h *Handler) GetConversionFunnel(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")

	funnel, err := h.Service.ConversionFunnel(r.Context(), eventCode)
	if err != nil {
		h.fail(w, "GetConversionFunnel", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, funnel)
}

func (h *Handler) GetInventoryOverview(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.InventoryOverview(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, "GetInventoryOverview", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindSystem {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("%s: %v", op, err))
	} else {
		h.Logger.Warn("ANALYTICS", fmt.Sprintf("%s: %v", op, err))
	}
	utils.WriteJSON(w, apperr.HTTPStatus(kind), utils.ErrorResponse(apperr.Message(err), kind.String()))
}

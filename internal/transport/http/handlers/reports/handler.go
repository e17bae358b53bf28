package reportshandler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrleave/internal/domain/auth"
	"hrleave/internal/domain/reports"
	"hrleave/internal/transport/http/api"
	"hrleave/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
}

func New(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequirePermission(auth.PermReportsRead))
	r.Get("/balances", h.balances)
	r.Get("/balances/export", h.export)
	return r
}

func (h *Handler) year(r *http.Request) (int, error) {
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, err
		}
		year = parsed
	}
	return year, nil
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	year, err := h.year(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_failed", "year must be an integer", reqID)
		return
	}
	rows, err := h.Service.BalanceReport(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "could not build report", reqID)
		return
	}
	api.Success(w, rows, reqID)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	year, err := h.year(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_failed", "year must be an integer", reqID)
		return
	}
	rows, err := h.Service.BalanceReport(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "could not build report", reqID)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="leave-balances-%d.pdf"`, year))
		if err := reports.WritePDF(w, year, rows); err != nil {
			api.Fail(w, http.StatusInternalServerError, "internal_error", "could not render pdf", reqID)
		}
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="leave-balances-%d.csv"`, year))
		if err := reports.WriteCSV(w, year, rows); err != nil {
			api.Fail(w, http.StatusInternalServerError, "internal_error", "could not render csv", reqID)
		}
	default:
		api.Fail(w, http.StatusBadRequest, "validation_failed", "format must be csv or pdf", reqID)
	}
}

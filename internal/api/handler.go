package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mlm-network/internal/commission"
	"mlm-network/internal/dashboard"
	"mlm-network/internal/distributor"
	"mlm-network/internal/metrics"
	"mlm-network/internal/sale"
	"mlm-network/pkg/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	entityDistributor = "distributor"
	entitySale        = "sale"
)

// Handler объединяет зависимости HTTP обработчиков
type Handler struct {
	distributors *distributor.Service
	sales        *sale.Service
	commissions  *commission.Service
	dashboard    *dashboard.Service
	metrics      *metrics.Metrics
	metricsHTTP  *metrics.Handler
	logger       *zap.Logger
}

// NewHandler создает HTTP обработчик API
func NewHandler(
	distributors *distributor.Service,
	sales *sale.Service,
	commissions *commission.Service,
	dashboard *dashboard.Service,
	m *metrics.Metrics,
	metricsHTTP *metrics.Handler,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		distributors: distributors,
		sales:        sales,
		commissions:  commissions,
		dashboard:    dashboard,
		metrics:      m,
		metricsHTTP:  metricsHTTP,
		logger:       logger,
	}
}

// Router собирает маршруты HTTP API
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.metricsHTTP.HealthHandler)
	r.Method(http.MethodGet, "/metrics", h.metricsHTTP.MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.getDashboard)

		r.Route("/distributors", func(r chi.Router) {
			r.Post("/", h.createDistributor)
			r.Get("/", h.listDistributors)
			r.Get("/stats", h.listDistributorsWithStats)
			r.Get("/{id}/downline", h.getDownline)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", h.createSale)
			r.Get("/", h.listSales)
		})

		r.Get("/commissions", h.getCommissions)
	})

	return r
}

func (h *Handler) createDistributor(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDistributorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordCreateError(entityDistributor, "validation")
		respondError(w, http.StatusBadRequest, "validation_error", "некорректное тело запроса")
		return
	}

	d, err := h.distributors.CreateDistributor(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, entityDistributor, err)
		return
	}

	h.metrics.RecordDistributorCreated()
	respondJSON(w, http.StatusCreated, d)
}

func (h *Handler) listDistributors(w http.ResponseWriter, r *http.Request) {
	distributors, err := h.distributors.ListDistributors(r.Context())
	if err != nil {
		h.respondServiceError(w, r, "", err)
		return
	}
	respondJSON(w, http.StatusOK, distributors)
}

func (h *Handler) listDistributorsWithStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats, err := h.distributors.ListDistributorsWithStats(r.Context())
	if err != nil {
		h.respondServiceError(w, r, "", err)
		return
	}
	h.metrics.ObserveComputation("stats", time.Since(start).Seconds())
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) getDownline(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "некорректный идентификатор дистрибьютора")
		return
	}

	start := time.Now()
	tree, err := h.distributors.GetDownlineHierarchy(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, "", err)
		return
	}
	h.metrics.ObserveComputation("downline", time.Since(start).Seconds())

	if tree == nil {
		respondError(w, http.StatusNotFound, "not_found", fmt.Sprintf("дистрибьютор %d не найден", id))
		return
	}
	respondJSON(w, http.StatusOK, tree)
}

// createSaleBody принимает дату как в RFC 3339, так и в виде YYYY-MM-DD
type createSaleBody struct {
	DistributorID int64           `json:"distributorId"`
	ProductName   string          `json:"productName"`
	Quantity      int             `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
}

func parseSaleDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var body createSaleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.metrics.RecordCreateError(entitySale, "validation")
		respondError(w, http.StatusBadRequest, "validation_error", "некорректное тело запроса")
		return
	}

	date, err := parseSaleDate(body.Date)
	if err != nil {
		h.metrics.RecordCreateError(entitySale, "validation")
		respondError(w, http.StatusBadRequest, "validation_error", "поле date должно быть в формате RFC 3339 или YYYY-MM-DD")
		return
	}

	s, err := h.sales.CreateSale(r.Context(), &models.CreateSaleRequest{
		DistributorID: body.DistributorID,
		ProductName:   body.ProductName,
		Quantity:      body.Quantity,
		Amount:        body.Amount,
		Date:          date,
	})
	if err != nil {
		h.respondServiceError(w, r, entitySale, err)
		return
	}

	h.metrics.RecordSaleCreated(s.Amount)
	respondJSON(w, http.StatusCreated, s)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.ListSales(r.Context())
	if err != nil {
		h.respondServiceError(w, r, "", err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) getCommissions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	commissions, err := h.commissions.GetCommissions(r.Context())
	if err != nil {
		h.respondServiceError(w, r, "", err)
		return
	}
	h.metrics.ObserveComputation("commissions", time.Since(start).Seconds())
	respondJSON(w, http.StatusOK, commissions)
}

func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats, err := h.dashboard.GetDashboardStats(r.Context())
	if err != nil {
		h.respondServiceError(w, r, "", err)
		return
	}
	h.metrics.ObserveComputation("dashboard", time.Since(start).Seconds())
	respondJSON(w, http.StatusOK, stats)
}

// respondServiceError переводит ошибку сервиса в HTTP ответ.
// Для операций создания entity задает метку метрики отказов.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, entity string, err error) {
	status, code, reason := classify(err)

	if entity != "" {
		h.metrics.RecordCreateError(entity, reason)
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("ошибка обработки запроса",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		respondError(w, status, code, "внутренняя ошибка сервера")
		return
	}

	respondError(w, status, code, err.Error())
}

// classify возвращает HTTP статус, код ошибки и метку причины для метрик
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "validation_error", "validation"
	case errors.Is(err, models.ErrReferrerNotFound):
		return http.StatusUnprocessableEntity, "referrer_not_found", "not_found"
	case errors.Is(err, models.ErrDistributorNotFound):
		return http.StatusUnprocessableEntity, "distributor_not_found", "not_found"
	default:
		return http.StatusInternalServerError, "internal_error", "internal"
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": message, "code": code})
}

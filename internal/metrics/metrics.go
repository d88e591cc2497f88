package metrics

import (
	"sync"

	"mlm-network/pkg/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Metrics содержит все метрики приложения
type Metrics struct {
	logger *zap.Logger

	// Счетчики
	distributorsCreated prometheus.Counter
	salesCreated        prometheus.Counter
	salesAmount         prometheus.Counter
	createErrors        *prometheus.CounterVec

	// Гистограммы
	computationTime *prometheus.HistogramVec

	// Gauge метрики
	totalDistributors    prometheus.Gauge
	totalSales           prometheus.Gauge
	totalSalesAmount     prometheus.Gauge
	totalCommissionsPaid prometheus.Gauge

	// Мьютекс для thread-safety
	mu sync.RWMutex
}

// New создает новый экземпляр метрик и регистрирует их в registerer
func New(logger *zap.Logger, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		logger: logger,

		distributorsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mlm_distributors_created_total",
				Help: "Общее количество созданных дистрибьюторов",
			},
		),

		salesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mlm_sales_created_total",
				Help: "Общее количество зарегистрированных продаж",
			},
		),

		salesAmount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mlm_sales_amount_total",
				Help: "Сумма зарегистрированных продаж",
			},
		),

		createErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mlm_create_errors_total",
				Help: "Количество отклоненных операций создания",
			},
			[]string{"entity", "reason"}, // entity: distributor, sale; reason: validation, not_found, internal
		),

		computationTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mlm_computation_duration_seconds",
				Help:    "Время расчета в секундах",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"}, // commissions, dashboard, stats, downline
		),

		totalDistributors: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mlm_total_distributors",
				Help: "Количество дистрибьюторов в сети",
			},
		),

		totalSales: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mlm_total_sales",
				Help: "Количество продаж",
			},
		),

		totalSalesAmount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mlm_total_sales_amount",
				Help: "Общая сумма продаж",
			},
		),

		totalCommissionsPaid: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mlm_total_commissions_paid",
				Help: "Сумма начисленных комиссий",
			},
		),
	}

	// Регистрируем все метрики
	registerer.MustRegister(
		m.distributorsCreated,
		m.salesCreated,
		m.salesAmount,
		m.createErrors,
		m.computationTime,
		m.totalDistributors,
		m.totalSales,
		m.totalSalesAmount,
		m.totalCommissionsPaid,
	)

	return m
}

// SetGauge устанавливает значение gauge метрики
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var gauge prometheus.Gauge

	switch name {
	case "mlm_total_distributors":
		gauge = m.totalDistributors
	case "mlm_total_sales":
		gauge = m.totalSales
	case "mlm_total_sales_amount":
		gauge = m.totalSalesAmount
	case "mlm_total_commissions_paid":
		gauge = m.totalCommissionsPaid
	default:
		m.logger.Error("неизвестная gauge метрика", zap.String("name", name))
		return
	}

	gauge.Set(value)
	m.logger.Debug("метрика установлена", zap.String("metric", name), zap.Float64("value", value))
}

// RecordDistributorCreated записывает создание дистрибьютора
func (m *Metrics) RecordDistributorCreated() {
	m.distributorsCreated.Inc()
}

// RecordSaleCreated записывает продажу и ее сумму
func (m *Metrics) RecordSaleCreated(amount decimal.Decimal) {
	m.salesCreated.Inc()
	m.salesAmount.Add(amount.InexactFloat64())
}

// RecordCreateError записывает отклоненную операцию создания
func (m *Metrics) RecordCreateError(entity, reason string) {
	m.createErrors.WithLabelValues(entity, reason).Inc()
}

// ObserveComputation записывает длительность расчета
func (m *Metrics) ObserveComputation(operation string, seconds float64) {
	m.computationTime.WithLabelValues(operation).Observe(seconds)
}

// SetDashboardStats публикует сводку сети в gauge метриках
func (m *Metrics) SetDashboardStats(stats *models.DashboardStats) {
	m.SetGauge("mlm_total_distributors", float64(stats.TotalDistributors))
	m.SetGauge("mlm_total_sales", float64(stats.TotalSales))
	m.SetGauge("mlm_total_sales_amount", stats.TotalSalesAmount.InexactFloat64())
	m.SetGauge("mlm_total_commissions_paid", stats.TotalCommissionsPaid.InexactFloat64())
}

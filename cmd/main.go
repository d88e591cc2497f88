package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mlm-network/internal/api"
	"mlm-network/internal/commission"
	"mlm-network/internal/config"
	"mlm-network/internal/dashboard"
	"mlm-network/internal/distributor"
	"mlm-network/internal/metrics"
	"mlm-network/internal/migrations"
	"mlm-network/internal/notify"
	"mlm-network/internal/sale"
	"mlm-network/internal/scheduler"
	"mlm-network/internal/store"
	"mlm-network/internal/validation"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	logger, err := initLogger(&cfg.App)
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("запуск MLM сервиса",
		zap.String("env", cfg.App.Env),
		zap.String("storage", cfg.Database.Driver))

	// Инициализация хранилища
	st, err := store.New(cfg, logger)
	if err != nil {
		logger.Fatal("ошибка инициализации хранилища", zap.Error(err))
	}
	defer st.Close()

	// Применение миграций
	if cfg.Database.Driver == config.StorageDriverPostgres {
		if err := migrations.RunMigrations(cfg, logger); err != nil {
			logger.Fatal("ошибка применения миграций", zap.Error(err))
		}
	}

	// Инициализация движка комиссий
	rates := cfg.Commission.Rates()
	engine, err := commission.NewEngine(rates)
	if err != nil {
		logger.Fatal("ошибка инициализации движка комиссий", zap.Error(err))
	}
	logger.Info("политика комиссий",
		zap.String("own_rate", rates.OwnRate.String()),
		zap.String("downline_rate", rates.DownlineRate.String()),
		zap.String("downline_scope", string(rates.DownlineScope)))

	// Инициализация уведомлений
	notifier := initNotifier(cfg, logger)

	// Инициализация сервисов
	v := validation.New()
	commissionService := commission.NewService(st, engine, logger)
	distributorService := distributor.NewService(st.Distributor(), commissionService, v, notifier, logger)
	saleService := sale.NewService(st, v, notifier, logger)
	dashboardService := dashboard.NewService(st, commissionService, logger)

	// Инициализация метрик
	metricsSystem := metrics.New(logger, prometheus.DefaultRegisterer)
	metricsHandler := metrics.NewHandler(prometheus.DefaultGatherer, logger)

	handler := api.NewHandler(distributorService, saleService, commissionService, dashboardService, metricsSystem, metricsHandler, logger)

	// Инициализация планировщика задач
	taskScheduler := scheduler.NewScheduler(logger)
	taskScheduler.AddJob(scheduler.NewStatsSnapshotJob(dashboardService, metricsSystem, logger))

	// Создание канала для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Обработка сигналов для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverDone := make(chan struct{})
	go func() {
		startHTTPServer(ctx, cfg.App.Port, handler.Router(), logger)
		close(serverDone)
	}()

	go taskScheduler.Start(ctx, cfg.Scheduler.StatsInterval)

	logger.Info("приложение запущено и готово к работе",
		zap.String("address", fmt.Sprintf("http://localhost:%d", cfg.App.Port)))

	// Ожидание сигнала завершения
	<-sigChan
	logger.Info("получен сигнал завершения, начинаем graceful shutdown")

	cancel()
	<-serverDone

	if tg, ok := notifier.(*notify.TelegramNotifier); ok {
		tg.Wait()
	}

	logger.Info("приложение завершено")
}

// initLogger инициализирует логгер
func initLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	logConfig := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		logConfig = zap.NewProductionConfig()
	}
	logConfig.Level = cfg.GetLogLevel()
	logConfig.OutputPaths = []string{"stdout", "logs/app.log"}
	logConfig.ErrorOutputPaths = []string{"stderr", "logs/error.log"}

	// Создаем директорию для логов если её нет
	if err := os.MkdirAll("logs", 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории логов: %w", err)
	}

	return logConfig.Build()
}

// initNotifier включает Telegram уведомления, если задан токен бота
func initNotifier(cfg *config.Config, logger *zap.Logger) notify.Notifier {
	if cfg.Telegram.BotToken == "" {
		logger.Info("Telegram уведомления отключены")
		return notify.Nop{}
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
	if err != nil {
		// Уведомления не обязательны для работы сервиса
		logger.Error("ошибка инициализации Telegram уведомлений", zap.Error(err))
		return notify.Nop{}
	}
	return notifier
}

// startHTTPServer запускает HTTP сервер API и останавливает его при отмене ctx
func startHTTPServer(ctx context.Context, port int, handler http.Handler, logger *zap.Logger) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("HTTP сервер запущен", zap.String("address", server.Addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ошибка HTTP сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ошибка при остановке HTTP сервера", zap.Error(err))
	}

	logger.Info("HTTP сервер остановлен")
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"mlm-network/internal/commission"
	"mlm-network/internal/config"
	"mlm-network/internal/dashboard"
	"mlm-network/internal/distributor"
	"mlm-network/internal/notify"
	"mlm-network/internal/store"
	"mlm-network/internal/validation"

	"go.uber.org/zap"
)

func main() {
	var (
		report = flag.String("report", "dashboard", "Отчет: commissions, dashboard, stats, tree")
		id     = flag.Int64("id", 0, "ID дистрибьютора для отчета tree")
	)
	flag.Parse()

	// Инициализация логгера
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Ошибка инициализации логгера:", err)
	}
	defer logger.Sync()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}

	// Подключение к хранилищу
	st, err := store.New(cfg, logger)
	if err != nil {
		logger.Fatal("Ошибка подключения к хранилищу", zap.Error(err))
	}
	defer st.Close()

	engine, err := commission.NewEngine(cfg.Commission.Rates())
	if err != nil {
		logger.Fatal("Ошибка инициализации движка комиссий", zap.Error(err))
	}

	if err := run(context.Background(), os.Stdout, st, engine, *report, *id, logger); err != nil {
		logger.Fatal("Ошибка построения отчета", zap.String("report", *report), zap.Error(err))
	}
}

// run строит отчет и печатает его в формате JSON
func run(ctx context.Context, w io.Writer, st store.Store, engine *commission.Engine, report string, id int64, logger *zap.Logger) error {
	commissions := commission.NewService(st, engine, logger)

	var (
		result interface{}
		err    error
	)

	switch report {
	case "commissions":
		result, err = commissions.GetCommissions(ctx)
	case "dashboard":
		result, err = dashboard.NewService(st, commissions, logger).GetDashboardStats(ctx)
	case "stats":
		result, err = newDistributorService(st, commissions, logger).ListDistributorsWithStats(ctx)
	case "tree":
		if id <= 0 {
			return fmt.Errorf("для отчета tree нужен флаг -id")
		}
		tree, treeErr := newDistributorService(st, commissions, logger).GetDownlineHierarchy(ctx, id)
		if treeErr != nil {
			return treeErr
		}
		if tree == nil {
			return fmt.Errorf("дистрибьютор %d не найден", id)
		}
		result = tree
	default:
		return fmt.Errorf("неизвестный отчет: %s", report)
	}
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(result)
}

func newDistributorService(st store.Store, commissions *commission.Service, logger *zap.Logger) *distributor.Service {
	return distributor.NewService(st.Distributor(), commissions, validation.New(), notify.Nop{}, logger)
}

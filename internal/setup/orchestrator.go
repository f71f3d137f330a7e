package setup

import (
	"context"
	"log/slog"

	"github.com/bornholm/fileworks/internal/config"
	"github.com/bornholm/fileworks/internal/functions"
	"github.com/bornholm/fileworks/internal/i18n"
	"github.com/bornholm/fileworks/internal/metrics"
	"github.com/bornholm/fileworks/internal/orchestrator"
	"github.com/bornholm/fileworks/internal/store/repository/history"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var getTranslatorFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*i18n.Translator, error) {
	return i18n.NewTranslator(conf.App.Language, slog.Default()), nil
})

var getCatalogFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*task.Catalog, error) {
	catalog := task.NewCatalog()

	if err := functions.Register(catalog); err != nil {
		return nil, errors.WithStack(err)
	}

	return catalog, nil
})

var getMetricsFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*metrics.Observer, error) {
	registry := prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	observer, err := metrics.NewObserver(registry)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return observer, nil
})

func NewOrchestratorFromConfig(ctx context.Context, conf *config.Config) (*orchestrator.Orchestrator, error) {
	return getOrchestratorFromConfig(ctx, conf)
}

var getOrchestratorFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*orchestrator.Orchestrator, error) {
	gateway, err := getGatewayFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure command gateway from config")
	}

	catalog, err := getCatalogFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure function catalog from config")
	}

	translator, err := getTranslatorFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure translator from config")
	}

	observer, err := getMetricsFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure metrics from config")
	}

	observers := []orchestrator.Observer{observer}

	repository, err := getHistoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure task history from config")
	}

	if repository != nil {
		observers = append(observers, history.NewJournal(repository, slog.Default()))
	}

	return orchestrator.New(gateway, catalog, task.NewRegistry(),
		orchestrator.WithLogger(slog.Default()),
		orchestrator.WithTranslator(translator),
		orchestrator.WithTimeout(conf.Sandbox.Timeout),
		orchestrator.WithObservers(observers...),
	)
})

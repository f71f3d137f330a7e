package setup

import (
	"context"
	"log/slog"

	"github.com/bornholm/fileworks/internal/config"
	"github.com/bornholm/fileworks/internal/http"
	"github.com/bornholm/fileworks/internal/http/handler/api"
	"github.com/bornholm/fileworks/internal/http/handler/metrics"
	"github.com/bornholm/fileworks/internal/http/i18n"
	"github.com/pkg/errors"
)

func NewHTTPServerFromConfig(ctx context.Context, conf *config.Config) (*http.Server, error) {
	orchestrator, err := getOrchestratorFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure orchestrator from config")
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

	repository, err := getHistoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure task history from config")
	}

	i18nMiddleware := i18n.Middleware(translator)

	apiHandler := api.NewHandler(orchestrator, catalog, repository, translator, slog.Default())

	options := []http.OptionFunc{
		http.WithAddress(conf.HTTP.Address),
		http.WithLogger(slog.Default()),
		http.WithMount("/metrics/", metrics.NewHandler(observer.Handler())),
		http.WithMount("/api/", i18nMiddleware(apiHandler)),
	}

	server := http.NewServer(options...)

	return server, nil
}

package setup

import (
	"context"
	"log/slog"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/config"
	"github.com/pkg/errors"
)

var getGatewayFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (command.Gateway, error) {
	storage, err := getFileStorageFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure file storage from config")
	}

	router, err := command.NewHostRouter(
		command.WithLogger(slog.Default()),
		command.WithStorage(storage),
		command.WithDebug(conf.App.Debug),
		command.WithTools(conf.Tools.Paths),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return router, nil
})

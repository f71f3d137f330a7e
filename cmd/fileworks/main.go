package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/bornholm/fileworks/internal/config"
	"github.com/bornholm/fileworks/internal/orchestrator"
	"github.com/bornholm/fileworks/internal/setup"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type paramsFlag map[string]any

func (p paramsFlag) String() string {
	return fmt.Sprintf("%v", map[string]any(p))
}

func (p paramsFlag) Set(raw string) error {
	key, value, found := strings.Cut(raw, "=")
	if !found || key == "" {
		return errors.Errorf("invalid parameter '%s', expected key=value", raw)
	}

	p[key] = value

	return nil
}

var (
	rawLogLevel  string = ""
	taskType     string = string(task.TypeFile)
	functionName string = ""
	actionName   string = ""
	language     string = ""
	serve        bool   = false
	params              = paramsFlag{}
)

func init() {
	flag.StringVar(&rawLogLevel, "log-level", rawLogLevel, "logging level, overrides FILEWORKS_LOGGER_LEVEL")
	flag.StringVar(&taskType, "type", taskType, "task type, 'file' or 'tool'")
	flag.StringVar(&functionName, "function", functionName, "function name")
	flag.StringVar(&actionName, "action", actionName, "action name")
	flag.StringVar(&language, "lang", language, "language of the task messages")
	flag.Var(params, "param", "action parameter as key=value, repeatable")
	flag.BoolVar(&serve, "serve", serve, "run the http server")
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf, err := config.Parse()
	if err != nil {
		slog.ErrorContext(ctx, "could not parse config", slogx.Error(errors.WithStack(err)))
		os.Exit(1)
	}

	if rawLogLevel != "" {
		if err := conf.Logger.Level.UnmarshalText([]byte(rawLogLevel)); err != nil {
			slog.ErrorContext(ctx, "could not parse log level", slogx.Error(errors.WithStack(err)))
			os.Exit(1)
		}
	}

	logger := slog.New(slogx.ContextHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     slog.Level(conf.Logger.Level),
			AddSource: true,
		}),
	})

	slog.SetDefault(logger)

	slog.DebugContext(ctx, "using configuration", slog.Any("config", conf))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	go func() {
		<-sig
		cancel()
	}()

	if serve || conf.HTTP.Enabled {
		if err := runServer(ctx, conf); err != nil {
			slog.ErrorContext(ctx, "could not run server", slogx.Error(errors.WithStack(err)))
			os.Exit(1)
		}
		return
	}

	snapshot, err := runTask(ctx, conf)
	if err != nil {
		slog.ErrorContext(ctx, "could not run task", slogx.Error(errors.WithStack(err)))
	}

	if snapshot != nil {
		data, err := sonic.ConfigStd.MarshalIndent(snapshot.Result, "", "  ")
		if err != nil {
			slog.ErrorContext(ctx, "could not encode task result", slogx.Error(errors.WithStack(err)))
			os.Exit(1)
		}

		fmt.Println(string(data))

		if snapshot.Result.Display != nil && snapshot.Result.Display.IsError {
			os.Exit(2)
		}
	}

	if err != nil {
		os.Exit(1)
	}
}

func runServer(ctx context.Context, conf *config.Config) error {
	server, err := setup.NewHTTPServerFromConfig(ctx, conf)
	if err != nil {
		return errors.Wrap(err, "could not setup http server")
	}

	slog.InfoContext(ctx, "use ctrl+c to interrupt")

	if err := server.Run(ctx); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func runTask(ctx context.Context, conf *config.Config) (*task.Snapshot, error) {
	o, err := setup.NewOrchestratorFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not setup orchestrator")
	}

	actionParams := task.Parameters(params)

	if paths := flag.Args(); len(paths) > 0 {
		actionParams["input_paths"] = paths
	}

	t, err := o.CreateTask(ctx, orchestrator.Request{
		Type:         task.Type(taskType),
		Function:     functionName,
		ActionName:   actionName,
		ActionParams: actionParams,
		Language:     language,
		OnProgress: func(t *task.Task, value int, message string) {
			slog.InfoContext(ctx, "progress", slog.String("task_id", t.ID()), slog.Int("value", value), slog.String("message", message))
		},
	})
	if t == nil {
		return nil, errors.WithStack(err)
	}

	if err != nil {
		snapshot := t.Snapshot()
		return &snapshot, errors.WithStack(err)
	}

	select {
	case <-t.Done():
	case <-ctx.Done():
		// Cancellation is observed by the function through the context
		<-t.Done()
	}

	snapshot := t.Snapshot()

	return &snapshot, nil
}

package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/command/commandtest"
	"github.com/bornholm/fileworks/internal/i18n"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	finished []string
}

func (o *recordingObserver) TaskStarted(ctx context.Context, t *task.Task) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, t.ID())
}

func (o *recordingObserver) TaskFinished(ctx context.Context, t *task.Task) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, t.ID())
}

func convertFunction() task.Function {
	def := &task.Definition{
		Name: "image.convert",
		Type: task.TypeFile,
		Variables: []*task.Variable{
			{Name: "input_paths", ValueType: task.ValueTypePath, Required: true},
			{Name: "to_format", ValueType: task.ValueTypeSelect, Default: "jpg", Constraints: []task.Constraint{task.OneOf("jpg", "png")}},
		},
	}

	return task.NewFunction(def, func(ctx context.Context, action task.Action, run task.Run) error {
		inputPaths, err := action.Parameters.Strings("input_paths")
		if err != nil {
			return errors.WithStack(err)
		}

		format := action.Parameters.StringOr("jpg", "to_format")
		bridge := run.Bridge()

		return bridge.WalkPath(ctx, run.TaskID(), inputPaths, -1, func(ctx context.Context, paths ...string) error {
			src := paths[0]
			dest := strings.TrimSuffix(src, ".png") + "." + format

			if _, err := bridge.Invoke(ctx, "tool.exe.magick", command.Params{"arguments": []string{src, dest}}); err != nil {
				return errors.WithStack(err)
			}

			run.Result().RecordPathResult(task.PathResult{
				Status:    task.StatusOK,
				SrcPath:   src,
				DestPaths: []string{dest},
			})

			return nil
		})
	})
}

func setup(t *testing.T, gateway command.Gateway, functions ...task.Function) (*Orchestrator, *recordingObserver) {
	catalog := task.NewCatalog()
	if err := catalog.Register(functions...); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	logger := slogx.NewTestLogger(t)
	observer := &recordingObserver{}

	o, err := New(gateway, catalog, task.NewRegistry(),
		WithLogger(logger),
		WithTranslator(i18n.NewTranslator("en", logger)),
		WithObservers(observer),
	)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return o, observer
}

func wait(t *testing.T, tsk *task.Task) {
	select {
	case <-tsk.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish in time")
	}
}

func TestConvertImagesWithOneCorrupt(t *testing.T) {
	gateway := commandtest.NewGateway().
		AddFile("/home/user/photos/a.png").
		AddFile("/home/user/photos/b.png").
		AddFile("/home/user/photos/c.png").
		Handle("tool.exe.magick", func(ctx context.Context, params command.Params) (*command.Result, error) {
			args, _ := params.Args()
			if len(args) > 0 && args[0] == "/home/user/photos/b.png" {
				return nil, errors.New("improper image header")
			}
			return command.NewResult(""), nil
		})

	o, observer := setup(t, gateway, convertFunction())

	var (
		mu     sync.Mutex
		events []string
	)
	record := func(event string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event)
	}

	tsk, err := o.CreateTask(context.Background(), Request{
		Type:       task.TypeFile,
		Function:   "image.convert",
		ActionName: "convert",
		ActionParams: task.Parameters{
			"input_paths": []string{
				"/home/user/photos/a.png",
				"/home/user/photos/b.png",
				"/home/user/photos/c.png",
			},
		},
		OnStarted: func(t *task.Task) { record("started") },
		OnError:   func(t *task.Task, message string) { record("error") },
		OnDone:    func(t *task.Task) { record("done") },
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	wait(t, tsk)

	require.Equal(t, []string{"started", "done"}, events)

	snapshot := tsk.Snapshot()
	require.False(t, snapshot.Status.Running)
	require.Equal(t, task.StateSucceeded.String(), snapshot.State)
	require.Equal(t, "jpg", snapshot.Action.Parameters["to_format"])

	result := snapshot.Result
	require.Len(t, result.PathResults, 3)
	require.Equal(t, 2, result.Counter.FileOK)
	require.Equal(t, 1, result.Counter.FileError)

	require.NotNil(t, result.Display)
	require.True(t, result.Display.IsOK)
	require.False(t, result.Display.IsError)

	require.Equal(t, "~/photos/a.png", result.PathResults[0].RelSrcPath)
	require.Equal(t, []string{"~/photos/a.jpg"}, result.PathResults[0].RelDestPaths)
	require.Equal(t, task.StatusError, result.PathResults[1].Status)
	require.Contains(t, result.PathResults[1].Message, "improper image header")

	require.Equal(t, 0, o.Container().Len())
	require.Equal(t, []string{tsk.ID()}, observer.started)
	require.Equal(t, []string{tsk.ID()}, observer.finished)
}

func TestCreateTaskLoadFailure(t *testing.T) {
	gateway := commandtest.NewGateway()
	o, observer := setup(t, gateway)

	called := false

	tsk, err := o.CreateTask(context.Background(), Request{
		Type:       task.TypeFile,
		Function:   "unknown",
		ActionName: "run",
		OnStarted:  func(t *task.Task) { called = true },
		OnError:    func(t *task.Task, message string) { called = true },
	})
	require.ErrorIs(t, err, task.ErrSandboxLoadFailure)
	require.NotNil(t, tsk)
	require.False(t, called)

	snapshot := tsk.Snapshot()
	require.Equal(t, task.StatusError, snapshot.Result.Status)
	require.True(t, strings.HasPrefix(snapshot.Result.Message, "Failed to load function: "))
	require.Equal(t, task.StateFailed.String(), snapshot.State)

	_, err = o.Registry().Get(tsk.ID())
	require.NoError(t, err)

	require.Equal(t, 0, o.Container().Len())
	require.Empty(t, observer.started)
	require.Equal(t, []string{tsk.ID()}, observer.finished)

	select {
	case <-tsk.Done():
	default:
		t.Fatal("task should be finished")
	}
}

func TestCreateTaskUtilitiesFailure(t *testing.T) {
	gateway := commandtest.NewGateway().
		FailOn(command.EnvAppDataDir, "", errors.New("no data dir"))
	o, _ := setup(t, gateway, convertFunction())

	tsk, err := o.CreateTask(context.Background(), Request{
		Type:         task.TypeFile,
		Function:     "image.convert",
		ActionName:   "convert",
		ActionParams: task.Parameters{"input_paths": []string{"/a.png"}},
	})
	require.ErrorIs(t, err, task.ErrSandboxLoadFailure)
	require.Equal(t, task.StatusError, tsk.Snapshot().Result.Status)
	require.Empty(t, gateway.CallsTo(command.PathRead))
}

func TestCreateTaskInvalidArgument(t *testing.T) {
	o, _ := setup(t, commandtest.NewGateway(), convertFunction())
	ctx := context.Background()

	type testCase struct {
		Name    string
		Request Request
	}

	testCases := []testCase{
		{Name: "invalid type", Request: Request{Type: "other", Function: "image.convert", ActionName: "convert"}},
		{Name: "missing function", Request: Request{Type: task.TypeFile, ActionName: "convert"}},
		{Name: "missing action", Request: Request{Type: task.TypeFile, Function: "image.convert"}},
		{Name: "type mismatch", Request: Request{Type: task.TypeTool, Function: "image.convert", ActionName: "convert"}},
		{Name: "missing required parameter", Request: Request{Type: task.TypeFile, Function: "image.convert", ActionName: "convert"}},
		{
			Name: "invalid parameter value",
			Request: Request{
				Type: task.TypeFile, Function: "image.convert", ActionName: "convert",
				ActionParams: task.Parameters{"input_paths": []string{"/a.png"}, "to_format": "gif"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			tsk, err := o.CreateTask(ctx, tc.Request)
			require.ErrorIs(t, err, task.ErrInvalidArgument)
			require.Nil(t, tsk)
		})
	}

	require.Equal(t, 0, o.Registry().Len())
}

func TestOnStartedBeforeExecution(t *testing.T) {
	started := make(chan struct{})
	executed := make(chan bool, 1)

	fn := task.NewFunction(&task.Definition{Name: "tool.wait", Type: task.TypeTool}, func(ctx context.Context, action task.Action, run task.Run) error {
		select {
		case <-started:
			executed <- true
		default:
			executed <- false
		}
		return nil
	})

	o, _ := setup(t, commandtest.NewGateway(), fn)

	tsk, err := o.CreateTask(context.Background(), Request{
		Type:       task.TypeTool,
		Function:   "tool.wait",
		ActionName: "run",
		OnStarted: func(t *task.Task) {
			require.True(t, t.Running())
			close(started)
		},
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	wait(t, tsk)

	require.True(t, <-executed)
	require.Nil(t, tsk.Snapshot().Result.PathResults)
}

func TestTaskErrorCallback(t *testing.T) {
	fn := task.NewFunction(&task.Definition{Name: "tool.fail", Type: task.TypeTool}, func(ctx context.Context, action task.Action, run task.Run) error {
		return errors.New("missing tool")
	})

	o, _ := setup(t, commandtest.NewGateway(), fn)

	messages := make(chan string, 1)

	tsk, err := o.CreateTask(context.Background(), Request{
		Type:       task.TypeTool,
		Function:   "tool.fail",
		ActionName: "get_version",
		OnError: func(t *task.Task, message string) {
			messages <- message
		},
		OnDone: func(t *task.Task) {
			messages <- "done"
		},
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	wait(t, tsk)

	require.Equal(t, "get_version failed: missing tool", <-messages)

	snapshot := tsk.Snapshot()
	require.Equal(t, task.StatusError, snapshot.Result.Status)
	require.Equal(t, "get_version failed: missing tool", snapshot.Result.Message)
	require.True(t, snapshot.Result.Display.IsError)
	require.Equal(t, task.StateFailed.String(), snapshot.State)
}

func TestTaskIDsAreUnique(t *testing.T) {
	fn := task.NewFunction(&task.Definition{Name: "tool.noop", Type: task.TypeTool}, func(ctx context.Context, action task.Action, run task.Run) error {
		return nil
	})

	o, _ := setup(t, commandtest.NewGateway(), fn)

	ids := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		tsk, err := o.CreateTask(context.Background(), Request{Type: task.TypeTool, Function: "tool.noop", ActionName: "run"})
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		wait(t, tsk)

		ids[tsk.ID()] = struct{}{}
	}

	require.Len(t, ids, 50)
	require.Equal(t, 50, o.Registry().Len())
}

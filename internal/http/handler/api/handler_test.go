package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bornholm/fileworks/internal/command/commandtest"
	fwhttp "github.com/bornholm/fileworks/internal/http"
	"github.com/bornholm/fileworks/internal/http/i18n"
	"github.com/bornholm/fileworks/internal/orchestrator"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/store"
	"github.com/bornholm/fileworks/internal/store/repository/history"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bytedance/sonic"
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	translator "github.com/bornholm/fileworks/internal/i18n"
)

func touchFunction() task.Function {
	def := &task.Definition{
		Name: "test.touch",
		Type: task.TypeFile,
		Matches: task.Matches{
			Extensions: []string{"txt"},
			Platforms:  []string{task.MatchAll},
		},
		Variables: []*task.Variable{
			{Name: "input_paths", ValueType: task.ValueTypePath, Required: true},
		},
	}

	return task.NewFunction(def, func(ctx context.Context, action task.Action, run task.Run) error {
		inputPaths, err := action.Parameters.Strings("input_paths")
		if err != nil {
			return errors.WithStack(err)
		}

		return run.Bridge().WalkPath(ctx, run.TaskID(), inputPaths, -1, func(ctx context.Context, paths ...string) error {
			run.Result().RecordPathResult(task.PathResult{Status: task.StatusOK, SrcPath: paths[0]})
			return nil
		})
	})
}

type testServer struct {
	*httptest.Server
	registry *task.Registry
}

func newTestServer(t *testing.T) *testServer {
	log := slogx.NewTestLogger(t)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	repository := history.NewRepository(store.New(db, log))

	catalog := task.NewCatalog()
	if err := catalog.Register(touchFunction()); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	tr := translator.NewTranslator("en", log)
	gateway := commandtest.NewGateway().AddFile("/home/user/docs/a.txt").AddFile("/home/user/docs/b.txt")
	registry := task.NewRegistry()

	o, err := orchestrator.New(gateway, catalog, registry,
		orchestrator.WithLogger(log),
		orchestrator.WithTranslator(tr),
		orchestrator.WithObservers(history.NewJournal(repository, log)),
	)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	server := fwhttp.NewServer(
		fwhttp.WithLogger(log),
		fwhttp.WithMount("/api/", i18n.Middleware(tr)(NewHandler(o, catalog, repository, tr, log))),
	)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, registry: registry}
}

func (s *testServer) do(t *testing.T, method string, path string, body string, dest any) int {
	req, err := http.NewRequest(method, s.URL+path, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}
	defer res.Body.Close()

	if dest != nil {
		if err := sonic.ConfigStd.NewDecoder(res.Body).Decode(dest); err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}
	}

	return res.StatusCode
}

func (s *testServer) createTask(t *testing.T) task.Snapshot {
	var snapshot task.Snapshot
	status := s.do(t, http.MethodPost, "/api/tasks", `{
		"task_type": "file",
		"function_name": "test.touch",
		"action": "touch",
		"parameters": {"input_paths": ["/home/user/docs"]}
	}`, &snapshot)

	require.Equal(t, http.StatusAccepted, status)
	require.NotEmpty(t, snapshot.ID)

	tsk, err := s.registry.Get(snapshot.ID)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	select {
	case <-tsk.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish in time")
	}

	return snapshot
}

func TestCreateAndReadTask(t *testing.T) {
	server := newTestServer(t)

	created := server.createTask(t)

	var snapshot task.Snapshot
	status := server.do(t, http.MethodGet, "/api/tasks/"+created.ID, "", &snapshot)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "test.touch", snapshot.Function)
	require.False(t, snapshot.Status.Running)
	require.Len(t, snapshot.Result.PathResults, 2)
	require.NotNil(t, snapshot.Result.Display)
	require.True(t, snapshot.Result.Display.IsOK)

	var read MarkReadResponse
	status = server.do(t, http.MethodPost, "/api/tasks/"+created.ID+"/read", "", &read)
	require.Equal(t, http.StatusOK, status)
	require.True(t, read.Status.ResultRead)
	require.Equal(t, 1, read.Status.ResultReadTimes)

	status = server.do(t, http.MethodPost, "/api/tasks/"+created.ID+"/read", "", &read)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, read.Status.ResultReadTimes)

	var list TaskListResponse
	status = server.do(t, http.MethodGet, "/api/tasks?running=false&type=file", "", &list)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, list.Total)
	require.Equal(t, created.ID, list.Tasks[0].ID)
}

func TestCreateTaskInvalidRequest(t *testing.T) {
	server := newTestServer(t)

	var res ErrorResponse
	status := server.do(t, http.MethodPost, "/api/tasks", `{"task_type": "unknown", "function_name": "test.touch", "action": "touch"}`, &res)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation_error", res.Code)

	status = server.do(t, http.MethodPost, "/api/tasks", `{"foo": "bar"}`, &res)
	require.Equal(t, http.StatusBadRequest, status)

	require.Equal(t, 0, server.registry.Len())
}

func TestCreateTaskLoadFailure(t *testing.T) {
	server := newTestServer(t)

	var snapshot task.Snapshot
	status := server.do(t, http.MethodPost, "/api/tasks?lang=zh", `{"task_type": "file", "function_name": "unknown", "action": "run", "parameters": {}}`, &snapshot)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, task.StatusError, snapshot.Result.Status)
	require.True(t, strings.HasPrefix(snapshot.Result.Message, "加载功能失败"), snapshot.Result.Message)
}

func TestGetUnknownTask(t *testing.T) {
	server := newTestServer(t)

	var res ErrorResponse
	status := server.do(t, http.MethodGet, "/api/tasks/unknown", "", &res)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", res.Code)

	status = server.do(t, http.MethodGet, "/api/history/unknown", "", &res)
	require.Equal(t, http.StatusNotFound, status)
}

func TestListFunctions(t *testing.T) {
	server := newTestServer(t)

	var functions []FunctionResponse
	status := server.do(t, http.MethodGet, "/api/functions?ext=txt&platform=linux", "", &functions)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, functions, 1)
	require.Equal(t, "test.touch", functions[0].Name)

	status = server.do(t, http.MethodGet, "/api/functions?ext=png", "", &functions)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, functions)

	status = server.do(t, http.MethodGet, "/api/functions?type=tool", "", &functions)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, functions)
}

func TestHistory(t *testing.T) {
	server := newTestServer(t)

	first := server.createTask(t)
	second := server.createTask(t)

	var page HistoryResponse
	status := server.do(t, http.MethodGet, "/api/history?limit=1", "", &page)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(2), page.Total)
	require.Len(t, page.Records, 1)
	require.Equal(t, second.ID, page.Records[0].TaskID)
	require.Equal(t, "/api/history?limit=1&offset=1", page.Next)

	var record HistoryRecord
	status = server.do(t, http.MethodGet, "/api/history/"+first.ID, "", &record)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "test.touch", record.Function)
	require.Equal(t, string(task.StatusOK), record.Status)
	require.Equal(t, 2, record.FileOK)
	require.NotNil(t, record.Result)
	require.Len(t, record.Result.PathResults, 2)
}

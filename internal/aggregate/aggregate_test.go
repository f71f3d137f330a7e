package aggregate

import (
	"context"
	"testing"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/command/commandtest"
	"github.com/bornholm/fileworks/internal/i18n"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	type testCase struct {
		Name     string
		Result   task.Result
		Expected task.DisplayStatus
	}

	testCases := []testCase{
		{
			Name: "task level error",
			Result: task.Result{
				Status:  task.StatusError,
				Message: "missing parameter",
				PathResults: []task.PathResult{
					{Status: task.StatusOK},
				},
			},
			Expected: task.DisplayStatus{IsError: true, ErrorMessage: "missing parameter"},
		},
		{
			Name:     "no path results",
			Result:   task.Result{Status: task.StatusOK},
			Expected: task.DisplayStatus{IsOK: true},
		},
		{
			Name: "single error",
			Result: task.Result{
				Status:      task.StatusOK,
				PathResults: []task.PathResult{{Status: task.StatusError, Message: "m1"}},
			},
			Expected: task.DisplayStatus{IsError: true, ErrorMessage: "m1"},
		},
		{
			Name: "single ignored",
			Result: task.Result{
				Status:      task.StatusOK,
				PathResults: []task.PathResult{{Status: task.StatusIgnored, Message: task.MessagePathNotExist}},
			},
			Expected: task.DisplayStatus{IsOK: true},
		},
		{
			Name: "at least one ok",
			Result: task.Result{
				Status: task.StatusOK,
				PathResults: []task.PathResult{
					{Status: task.StatusError, Message: "m1"},
					{Status: task.StatusOK},
					{Status: task.StatusError, Message: "m2"},
				},
			},
			Expected: task.DisplayStatus{IsOK: true},
		},
		{
			Name: "last error message",
			Result: task.Result{
				Status: task.StatusOK,
				PathResults: []task.PathResult{
					{Status: task.StatusError, Message: "m1"},
					{Status: task.StatusIgnored},
					{Status: task.StatusError, Message: "m2"},
				},
			},
			Expected: task.DisplayStatus{IsError: true, ErrorMessage: "m2"},
		},
		{
			Name: "all ignored",
			Result: task.Result{
				Status: task.StatusOK,
				PathResults: []task.PathResult{
					{Status: task.StatusIgnored},
					{Status: task.StatusIgnored},
				},
			},
			Expected: task.DisplayStatus{IsError: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			require.Equal(t, tc.Expected, Classify(tc.Result))
		})
	}
}

func TestAggregatorTranslatesMessage(t *testing.T) {
	logger := slogx.NewTestLogger(t)
	translator := i18n.NewTranslator("en", logger)
	aggregator := New(commandtest.NewGateway(), translator, logger)

	tsk := task.New(task.NewID(), task.TypeFile, nil, task.Action{Name: "test"})
	tsk.RecordPathNotExist("/a")
	tsk.RecordPathResult(task.PathResult{Status: task.StatusError, SrcPath: "/b", Message: "Path does not exist"})

	ctx := translator.WithLanguage(context.Background(), "zh")

	display := aggregator.Classify(ctx, tsk)
	require.True(t, display.IsError)
	require.Equal(t, "路径不存在", display.ErrorMessage)

	stored := tsk.Snapshot().Result.Display
	require.NotNil(t, stored)
	require.Equal(t, display, *stored)
}

func TestResolveDisplayPaths(t *testing.T) {
	gateway := commandtest.NewGateway()
	logger := slogx.NewTestLogger(t)
	aggregator := New(gateway, nil, logger)

	tsk := task.New(task.NewID(), task.TypeFile, nil, task.Action{Name: "test"})
	tsk.RecordPathResult(task.PathResult{
		Status:    task.StatusOK,
		SrcPath:   "/home/user/photos/a.png",
		DestPaths: []string{"/home/user/out/a.jpg", "/tmp/a.jpg"},
	})
	tsk.RecordPathResult(task.PathResult{Status: task.StatusError, Message: "boom"})

	aggregator.ResolveDisplayPaths(context.Background(), tsk)

	results := tsk.Snapshot().Result.PathResults
	require.Equal(t, "~/photos/a.png", results[0].RelSrcPath)
	require.Equal(t, []string{"~/out/a.jpg", "/tmp/a.jpg"}, results[0].RelDestPaths)
	require.Empty(t, results[1].RelSrcPath)
	require.Nil(t, results[1].RelDestPaths)
}

func TestResolveDisplayPathsFailure(t *testing.T) {
	gateway := commandtest.NewGateway().
		FailOn(command.PathRelativeWithHomeDir, "", errors.New("unavailable"))
	aggregator := New(gateway, nil, slogx.NewTestLogger(t))

	tsk := task.New(task.NewID(), task.TypeFile, nil, task.Action{Name: "test"})
	tsk.RecordPathResult(task.PathResult{
		Status:    task.StatusOK,
		SrcPath:   "/home/user/a.png",
		DestPaths: []string{"/home/user/b.png"},
	})

	aggregator.Aggregate(context.Background(), tsk)

	snapshot := tsk.Snapshot()
	require.Empty(t, snapshot.Result.PathResults[0].RelSrcPath)
	require.Nil(t, snapshot.Result.PathResults[0].RelDestPaths)
	require.NotNil(t, snapshot.Result.Display)
	require.True(t, snapshot.Result.Display.IsOK)
}

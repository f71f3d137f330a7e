package task

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewResultTemplates(t *testing.T) {
	toolTask := New(NewID(), TypeTool, nil, Action{Name: "get_version"})
	fileTask := New(NewID(), TypeFile, nil, Action{Name: "convert"})

	toolResult := toolTask.Snapshot().Result
	require.Equal(t, StatusOK, toolResult.Status)
	require.Nil(t, toolResult.PathResults)
	require.Equal(t, Counter{}, toolResult.Counter)

	fileResult := fileTask.Snapshot().Result
	require.NotNil(t, fileResult.PathResults)
	require.Empty(t, fileResult.PathResults)

	other := New(NewID(), TypeFile, nil, Action{Name: "convert"})
	fileTask.RecordPathResult(PathResult{Status: StatusOK, SrcPath: "/a"})

	require.Empty(t, other.Snapshot().Result.PathResults)
}

func TestRecordPathResultCounters(t *testing.T) {
	tsk := New(NewID(), TypeFile, nil, Action{Name: "convert"})

	tsk.RecordPathResult(PathResult{Status: StatusOK, SrcPath: "/a"})
	tsk.RecordPathResult(PathResult{Status: StatusError, SrcPath: "/b", Message: "boom"})
	tsk.RecordPathResult(PathResult{Status: StatusIgnored, SrcPath: "/c", Message: "skipped"})
	tsk.RecordPathNotExist("/d")
	tsk.AppendPathResult(PathResult{Status: StatusOK, SrcPath: "/dir"})

	result := tsk.Snapshot().Result

	require.Len(t, result.PathResults, 5)
	require.Equal(t, 1, result.Counter.FileOK)
	require.Equal(t, 1, result.Counter.FileError)
	require.Equal(t, 1, result.Counter.FileIgnored)
	require.Equal(t, 1, result.Counter.PathNotExist)

	notExist := result.PathResults[3]
	require.Equal(t, StatusIgnored, notExist.Status)
	require.Equal(t, MessagePathNotExist, notExist.Message)
	require.Equal(t, []string{}, notExist.DestPaths)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	tsk := New(NewID(), TypeFile, &Definition{Name: "image.to_image"}, Action{
		Name:       "convert",
		Parameters: Parameters{"to_format": "png"},
	})

	tsk.RecordPathResult(PathResult{Status: StatusOK, SrcPath: "/a.jpg", DestPaths: []string{"/a.png"}})
	tsk.SetProgress(50, "half")

	snapshot := tsk.Snapshot()
	snapshot.Result.PathResults[0].DestPaths[0] = "/mutated"
	snapshot.Action.Parameters["to_format"] = "webp"
	*snapshot.Progress.Value = 99

	fresh := tsk.Snapshot()
	require.Equal(t, "/a.png", fresh.Result.PathResults[0].DestPaths[0])
	require.Equal(t, "png", fresh.Action.Parameters["to_format"])
	require.Equal(t, 50, *fresh.Progress.Value)
	require.Equal(t, "image.to_image", fresh.Function)
}

func TestLifecycle(t *testing.T) {
	tsk := New(NewID(), TypeTool, nil, Action{Name: "get_version"})

	require.Equal(t, StatePending, tsk.State())
	require.Nil(t, tsk.Snapshot().Progress.Value)

	tsk.SetRunning(true)
	require.True(t, tsk.Running())
	require.Equal(t, StateRunning, tsk.State())

	tsk.Fail("get_version failed: boom")
	tsk.SetRunning(false)
	require.False(t, tsk.Running())
	require.Equal(t, StateFailed, tsk.State())

	tsk.MarkResultRead()
	tsk.MarkResultRead()

	status := tsk.Snapshot().Status
	require.True(t, status.ResultRead)
	require.Equal(t, 2, status.ResultReadTimes)

	tsk.Finish()
	tsk.Finish()

	select {
	case <-tsk.Done():
	default:
		t.Fatal("expected done channel to be closed")
	}
}

func TestNewIDUnique(t *testing.T) {
	ids := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewID()
		_, exists := ids[id]
		require.False(t, exists, "duplicate id %s", id)
		ids[id] = struct{}{}
	}
}

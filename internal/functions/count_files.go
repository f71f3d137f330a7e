package functions

import (
	"context"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/functions/fileutil"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bornholm/fileworks/internal/walker"
	"github.com/pkg/errors"
)

const CountFilesName = "count.files"

func CountFiles() task.Function {
	return task.NewFunction(&task.Definition{
		Name:    CountFilesName,
		Type:    task.TypeFile,
		Title:   "Count files",
		Summary: "Count the files and directories, by type and size",
		Version: Version,
		Matches: task.Matches{
			Extensions: allPaths,
			Platforms:  allPlatforms,
		},
		Variables: []*task.Variable{
			inputPathsVariable(),
		},
	}, countFiles)
}

func countFiles(ctx context.Context, action task.Action, run task.Run) error {
	if _, err := fileutil.Init(ctx, run); err != nil {
		return errors.WithStack(err)
	}

	paths, err := inputPaths(action)
	if err != nil {
		return errors.WithStack(err)
	}

	bridge := run.Bridge()

	process := func(ctx context.Context, paths ...string) error {
		res, err := bridge.Invoke(ctx, command.FileCountFiles, command.Params{
			"input_paths": paths,
		})
		if err != nil {
			return errors.WithStack(err)
		}

		run.Result().SetOutput(res.Content)

		return nil
	}

	if err := bridge.WalkPath(ctx, run.TaskID(), paths, walker.DepthNone, process); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

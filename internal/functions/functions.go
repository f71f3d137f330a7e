// Package functions holds the statically registered function modules.
package functions

import (
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
)

const Version = "1.0.0"

var (
	ErrUnsupportedMethod = errors.New("unsupported method")
	ErrUnsupportedAction = errors.New("unsupported action")
)

var (
	allPlatforms = []string{task.MatchAll}
	allPaths     = []string{task.MatchAll, task.MatchFile, task.MatchFiles, task.MatchDir, task.MatchDirs, task.MatchPaths}
)

// All returns every built-in function module.
func All() []task.Function {
	return []task.Function{
		CountFiles(),
		FolderClear(),
		Rename(),
		ImageToImage(),
		ImageJoin(),
		FileHash(),
		ToolMagick(),
	}
}

// Register adds every built-in function module to the catalog.
func Register(catalog *task.Catalog) error {
	if err := catalog.Register(All()...); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func inputPathsVariable() *task.Variable {
	return &task.Variable{
		Name:        "input_paths",
		Description: "Selected files and directories",
		ValueType:   task.ValueTypePath,
		Required:    true,
	}
}

func inputPaths(action task.Action) ([]string, error) {
	paths, err := action.Parameters.Strings("input_paths")
	if err != nil || len(paths) == 0 {
		return nil, errors.Wrap(task.ErrInvalidArgument, "missing input paths")
	}

	return paths, nil
}

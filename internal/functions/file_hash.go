package functions

import (
	"context"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/functions/fileutil"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bornholm/fileworks/internal/walker"
	"github.com/pkg/errors"
)

const FileHashName = "file.hash"

func FileHash() task.Function {
	return task.NewFunction(&task.Definition{
		Name:    FileHashName,
		Type:    task.TypeFile,
		Title:   "File checksum",
		Summary: "Compute the checksum of every file",
		Version: Version,
		Matches: task.Matches{
			Extensions: allPaths,
			Platforms:  allPlatforms,
		},
		Variables: []*task.Variable{
			inputPathsVariable(),
			{
				Name:        "hash_type",
				ValueType:   task.ValueTypeSelect,
				Default:     "md5",
				Constraints: []task.Constraint{task.OneOf("md5", "sha1", "sha256", "sha512")},
			},
		},
	}, fileHash)
}

func fileHash(ctx context.Context, action task.Action, run task.Run) error {
	utils, err := fileutil.Init(ctx, run)
	if err != nil {
		return errors.WithStack(err)
	}

	paths, err := inputPaths(action)
	if err != nil {
		return errors.WithStack(err)
	}

	hashType := action.Parameters.StringOr("md5", "hash_type")
	bridge := run.Bridge()

	process := func(ctx context.Context, paths ...string) error {
		return utils.ProcessPath(ctx, paths[0], func(result *task.PathResult) error {
			res, err := bridge.Invoke(ctx, command.FileHash, command.Params{
				"input_file": result.SrcPath,
				"hash_type":  hashType,
			})
			if err != nil {
				return errors.WithStack(err)
			}

			sum, err := command.DecodeContent[string](res)
			if err != nil {
				return errors.WithStack(err)
			}

			result.Output = map[string]string{
				"hash_type": hashType,
				"hash":      sum,
			}

			return nil
		})
	}

	if err := bridge.WalkPath(ctx, run.TaskID(), paths, walker.DepthAll, process); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

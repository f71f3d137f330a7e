package functions

import (
	"context"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/functions/fileutil"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bornholm/fileworks/internal/walker"
	"github.com/pkg/errors"
)

const (
	ImageJoinName = "image.join"

	DirectionLeftToRight = "left-to-right"
	DirectionTopToBottom = "top-to-bottom"
)

func ImageJoin() task.Function {
	return task.NewFunction(&task.Definition{
		Name:    ImageJoinName,
		Type:    task.TypeFile,
		Title:   "Join images",
		Summary: "Join several images into a single one",
		Version: Version,
		Matches: task.Matches{
			Extensions: []string{"jpg", "jpeg", "png", "webp", "gif", "bmp", "tiff", "tif", task.MatchFiles, "!" + task.MatchDir, "!" + task.MatchDirs},
			Platforms:  allPlatforms,
		},
		Variables: []*task.Variable{
			inputPathsVariable(),
			{Name: "output_file", ValueType: task.ValueTypePath, Required: true},
			{
				Name:        "direction",
				ValueType:   task.ValueTypeSelect,
				Default:     DirectionTopToBottom,
				Constraints: []task.Constraint{task.OneOf(DirectionLeftToRight, DirectionTopToBottom)},
			},
			{Name: "spacing", ValueType: task.ValueTypeNumber, Default: 0},
			{Name: "background", ValueType: task.ValueTypeText, Default: "none"},
			{Name: "gravity", ValueType: task.ValueTypeText, Default: "center"},
		},
	}, imageJoin)
}

func imageJoin(ctx context.Context, action task.Action, run task.Run) error {
	utils, err := fileutil.Init(ctx, run)
	if err != nil {
		return errors.WithStack(err)
	}

	paths, err := inputPaths(action)
	if err != nil {
		return errors.WithStack(err)
	}

	params := action.Parameters

	outputFile, err := params.String("output_file")
	if err != nil {
		return errors.WithStack(err)
	}

	bridge := run.Bridge()

	process := func(ctx context.Context, paths ...string) error {
		result := task.PathResult{
			Status:    task.StatusOK,
			SrcPath:   paths[0],
			SrcPaths:  paths,
			DestPaths: []string{},
		}

		if err := join(ctx, utils, params, outputFile, &result); err != nil {
			result.Status = task.StatusError
			result.Message = err.Error()
		}

		run.Result().RecordPathResult(result)

		return nil
	}

	if err := bridge.WalkPath(ctx, run.TaskID(), paths, walker.DepthNone, process); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func join(ctx context.Context, utils *fileutil.Utils, params task.Parameters, outputFile string, result *task.PathResult) error {
	res, err := utils.Bridge().Invoke(ctx, command.PathMakeUnusedPath, command.Params{
		"input_file": outputFile,
		"ext":        "png",
	})
	if err != nil {
		return errors.Wrap(err, "failed to make unused path")
	}

	output, err := command.DecodeContent[string](res)
	if err != nil {
		return errors.WithStack(err)
	}

	smush := "-smush"
	if params.StringOr(DirectionTopToBottom, "direction") == DirectionLeftToRight {
		smush = "+smush"
	}

	args := make([]any, 0, len(result.SrcPaths)+8)
	for _, p := range result.SrcPaths {
		args = append(args, p)
	}

	args = append(args,
		"-background", params.StringOr("none", "background"),
		"-gravity", params.StringOr("center", "gravity"),
		smush, params.IntOr(0, "spacing"),
		output,
	)

	res, err = utils.RunCommand(ctx, MagickCommand, args...)
	if err != nil {
		return errors.WithStack(err)
	}

	result.Output = res.Content
	result.DestPaths = append(result.DestPaths, output)
	result.Message = utils.T(ctx, "image.joined", map[string]any{"count": len(result.SrcPaths)})

	return nil
}

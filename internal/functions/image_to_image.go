package functions

import (
	"context"
	"fmt"
	"slices"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/functions/fileutil"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bornholm/fileworks/internal/walker"
	"github.com/pkg/errors"
)

const (
	ImageToImageName = "image.to_image"
	MagickCommand    = command.ToolExecutablePrefix + "magick"
)

var (
	imageFormats    = []string{"jpg", "jpeg", "png", "webp", "gif", "bmp", "tiff", "tif", "avif", "heic", "ico", "svg"}
	animatedFormats = []string{"gif", "apng", "webp"}
)

func ImageToImage() task.Function {
	formats := make([]any, 0, len(imageFormats))
	for _, f := range imageFormats {
		formats = append(formats, f)
	}

	return task.NewFunction(&task.Definition{
		Name:    ImageToImageName,
		Type:    task.TypeFile,
		Title:   "Convert images",
		Summary: "Convert images to another format with ImageMagick",
		Version: Version,
		Matches: task.Matches{
			Extensions: append(slices.Clone(imageFormats), task.MatchDir, task.MatchDirs),
			Platforms:  allPlatforms,
		},
		Variables: []*task.Variable{
			inputPathsVariable(),
			{
				Name:        "to_format",
				ValueType:   task.ValueTypeSelect,
				Required:    true,
				Constraints: []task.Constraint{task.OneOf(formats...)},
			},
			{Name: "output_dir", ValueType: task.ValueTypePath},
			{Name: "output_file", ValueType: task.ValueTypePath},
			{Name: "width", ValueType: task.ValueTypeNumber},
			{Name: "height", ValueType: task.ValueTypeNumber},
			{Name: "background", ValueType: task.ValueTypeText, Default: "transparent"},
		},
	}, imageToImage)
}

func imageToImage(ctx context.Context, action task.Action, run task.Run) error {
	utils, err := fileutil.Init(ctx, run)
	if err != nil {
		return errors.WithStack(err)
	}

	paths, err := inputPaths(action)
	if err != nil {
		return errors.WithStack(err)
	}

	params := action.Parameters

	toFormat, err := params.String("to_format")
	if err != nil {
		return errors.WithStack(err)
	}

	if !params.Has("output_dir") && !params.Has("output_file") {
		return errors.Wrap(fileutil.ErrMissingOutput, utils.T(ctx, "image.missing_output", nil))
	}

	bridge := run.Bridge()

	process := func(ctx context.Context, paths ...string) error {
		return utils.ProcessPath(ctx, paths[0], func(result *task.PathResult) error {
			src, err := utils.ReadPath(ctx, result.SrcPath, false, false)
			if err != nil {
				return errors.WithStack(err)
			}

			if src.FileExt == toFormat {
				result.Status = task.StatusIgnored
				result.Message = utils.T(ctx, "image.same_format", nil)
				return nil
			}

			output, err := utils.OutputFile(ctx, params, src, toFormat)
			if err != nil {
				return errors.WithStack(err)
			}

			res, err := bridge.Invoke(ctx, command.PathMakeUnusedPath, command.Params{
				"input_file": output,
				"ext":        toFormat,
			})
			if err != nil {
				return errors.WithStack(err)
			}

			output, err = command.DecodeContent[string](res)
			if err != nil {
				return errors.WithStack(err)
			}

			args := []any{src.Path}

			width, height := params.IntOr(0, "width"), params.IntOr(0, "height")
			if width > 0 && height > 0 {
				args = append(args, "-resize", fmt.Sprintf("%dx%d", width, height))
			}

			if background := params.StringOr("transparent", "background"); background != "transparent" {
				args = append(args, "-background", background, "-flatten")
			} else {
				args = append(args, "-background", "transparent")
			}

			args = append(args, output)

			res, err = utils.RunCommand(ctx, MagickCommand, args...)
			if err != nil {
				return errors.WithStack(err)
			}

			result.Output = res.Content
			result.DestPaths = append(result.DestPaths, displayOutput(ctx, utils, src, output, toFormat))

			return nil
		})
	}

	if err := bridge.WalkPath(ctx, run.TaskID(), paths, walker.DepthAll, process); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// displayOutput returns the first frame file when an animated image is
// converted into a single frame format, since one file per frame is written.
func displayOutput(ctx context.Context, utils *fileutil.Utils, src *fileutil.PathObject, output string, toFormat string) string {
	if !slices.Contains(animatedFormats, src.FileExt) || slices.Contains(animatedFormats, toFormat) {
		return output
	}

	firstFrame := fileutil.RightReplaceOnce(output, "."+toFormat, "") + "-0." + toFormat

	exists, err := utils.PathExists(ctx, firstFrame)
	if err != nil || !exists {
		return output
	}

	return firstFrame
}

package functions

import (
	"context"
	"regexp"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
)

const (
	ToolMagickName   = "tool.magick"
	ActionGetVersion = "get_version"
)

var magickVersionPattern = regexp.MustCompile(`Version: ImageMagick (\d+\.\d+\.\d+)`)

func ToolMagick() task.Function {
	return task.NewFunction(&task.Definition{
		Name:    ToolMagickName,
		Type:    task.TypeTool,
		Title:   "ImageMagick",
		Summary: "Image processing tool used by the image functions",
		Version: Version,
		URL:     "https://imagemagick.org",
		Matches: task.Matches{
			Platforms: allPlatforms,
		},
	}, toolMagick)
}

func toolMagick(ctx context.Context, action task.Action, run task.Run) error {
	switch action.Name {
	case ActionGetVersion:
		version, err := magickVersion(ctx, run.Bridge())
		if err != nil {
			run.Result().SetOutput(map[string]string{"version": ""})
			return errors.Wrap(err, "failed to get version")
		}

		run.Result().SetOutput(map[string]string{"version": version})

		return nil

	default:
		return errors.Wrapf(ErrUnsupportedAction, "the action '%s' is not supported", action.Name)
	}
}

// magickVersion returns the installed ImageMagick version, or an empty
// string if it is not installed.
func magickVersion(ctx context.Context, bridge task.Bridge) (string, error) {
	res, err := bridge.Invoke(ctx, MagickCommand, command.Params{
		"arguments": []string{"-version"},
	})
	if err != nil {
		if errors.Is(err, command.ErrToolNotAvailable) {
			return "", nil
		}

		return "", errors.WithStack(err)
	}

	text, err := command.DecodeContent[string](res)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return ParseMagickVersion(text), nil
}

// ParseMagickVersion extracts "7.1.1" from "Version: ImageMagick 7.1.1-34 Q16-H".
func ParseMagickVersion(text string) string {
	matches := magickVersionPattern.FindStringSubmatch(text)
	if len(matches) < 2 {
		return ""
	}

	return matches[1]
}

package functions

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/functions/fileutil"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bornholm/fileworks/internal/walker"
	"github.com/pkg/errors"
)

const (
	RenameName = "rename"

	MethodByNumericalOrder = "by_numerical_order"
	MethodByPhotoTakenTime = "by_photo_taken_time"

	DefaultPaddingLength = 4
	DefaultTextPattern   = "{year}-{month}-{day}_{hour}-{minute}-{second}"
)

var photoExtensions = []string{"jpg", "jpeg", "png", "heic", "heif", "webp", "tiff", "tif"}

func Rename() task.Function {
	return task.NewFunction(&task.Definition{
		Name:    RenameName,
		Type:    task.TypeFile,
		Title:   "Rename",
		Summary: "Rename files by numerical order or by photo taken time",
		Version: Version,
		Matches: task.Matches{
			Extensions: allPaths,
			Platforms:  allPlatforms,
		},
		Variables: []*task.Variable{
			inputPathsVariable(),
			{
				Name:      "method",
				ValueType: task.ValueTypeSelect,
				Required:  true,
				Constraints: []task.Constraint{
					task.OneOf(MethodByNumericalOrder, MethodByPhotoTakenTime),
				},
			},
			{
				Name:        "padding_length",
				Description: "Number of digits of the sequence number",
				ValueType:   task.ValueTypeNumber,
				Default:     DefaultPaddingLength,
			},
			{
				Name:        "start_number",
				Description: "First sequence number",
				ValueType:   task.ValueTypeNumber,
				Default:     1,
			},
			{
				Name:        "text_pattern",
				Description: "Pattern of the new file name",
				ValueType:   task.ValueTypeText,
				Default:     DefaultTextPattern,
			},
		},
	}, rename)
}

type renamer struct {
	utils       *fileutil.Utils
	bridge      task.Bridge
	method      string
	padLen      int
	fileNumber  int
	textPattern string
}

func rename(ctx context.Context, action task.Action, run task.Run) error {
	utils, err := fileutil.Init(ctx, run)
	if err != nil {
		return errors.WithStack(err)
	}

	paths, err := inputPaths(action)
	if err != nil {
		return errors.WithStack(err)
	}

	r := &renamer{
		utils:       utils,
		bridge:      run.Bridge(),
		method:      action.Parameters.StringOr("", "method"),
		padLen:      action.Parameters.IntOr(DefaultPaddingLength, "padding_length"),
		fileNumber:  action.Parameters.IntOr(1, "start_number"),
		textPattern: action.Parameters.StringOr(DefaultTextPattern, "text_pattern"),
	}

	var depth int
	switch r.method {
	case MethodByNumericalOrder:
		depth = walker.DepthInputs
	case MethodByPhotoTakenTime:
		depth = walker.DepthAll
	default:
		return errors.Wrapf(ErrUnsupportedMethod, "unsupported method '%s'", r.method)
	}

	process := func(ctx context.Context, paths ...string) error {
		return utils.ProcessPath(ctx, paths[0], func(result *task.PathResult) error {
			src, err := utils.ReadPath(ctx, result.SrcPath, true, true)
			if err != nil {
				return errors.WithStack(err)
			}

			if r.method == MethodByNumericalOrder {
				return r.byNumericalOrder(ctx, result, src)
			}

			return r.byPhotoTakenTime(ctx, result, src)
		})
	}

	if err := run.Bridge().WalkPath(ctx, run.TaskID(), paths, depth, process); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (r *renamer) byNumericalOrder(ctx context.Context, result *task.PathResult, src *fileutil.PathObject) error {
	switch {
	case src.IsFile:
		newPath, err := r.nextSequencePath(ctx, src)
		if err != nil {
			return errors.WithStack(err)
		}

		if newPath == "" {
			result.Message = r.utils.T(ctx, "rename.already_named", nil)
			return nil
		}

		if err := r.move(ctx, src.Path, newPath); err != nil {
			return errors.WithStack(err)
		}

		result.DestPaths = append(result.DestPaths, newPath)

	case src.IsDir:
		files := make([]*fileutil.PathObject, 0, len(src.SubPaths))
		for _, sub := range src.SubPaths {
			obj, err := r.utils.ReadPath(ctx, sub, false, false)
			if err != nil {
				return errors.WithStack(err)
			}

			if !obj.IsFile || strings.HasPrefix(obj.FileName, ".") {
				continue
			}

			files = append(files, obj)
		}

		sort.SliceStable(files, func(i, j int) bool {
			return lessSequenceName(files[i].FileStem, files[i].FileName, files[j].FileStem, files[j].FileName)
		})

		for _, file := range files {
			newPath, err := r.nextSequencePath(ctx, file)
			if err != nil {
				return errors.WithStack(err)
			}

			if newPath == "" {
				continue
			}

			if err := r.move(ctx, file.Path, newPath); err != nil {
				return errors.WithStack(err)
			}

			result.DestPaths = append(result.DestPaths, newPath)
		}
	}

	return nil
}

// nextSequencePath returns the next unused sequence numbered path for the
// file, or an empty string if the file is already named after the current
// sequence number.
func (r *renamer) nextSequencePath(ctx context.Context, file *fileutil.PathObject) (string, error) {
	if len(file.FileStem) == r.padLen {
		if n, err := strconv.Atoi(file.FileStem); err == nil && n == r.fileNumber {
			r.fileNumber++
			return "", nil
		}
	}

	for {
		name := fmt.Sprintf("%0*d", r.padLen, r.fileNumber)
		if file.FileExt != "" {
			name += "." + file.FileExt
		}

		r.fileNumber++

		newPath, err := r.utils.JoinPath(ctx, file.ParentDir, name)
		if err != nil {
			return "", errors.WithStack(err)
		}

		exists, err := r.utils.PathExists(ctx, newPath)
		if err != nil {
			return "", errors.WithStack(err)
		}

		if !exists {
			return newPath, nil
		}
	}
}

func (r *renamer) byPhotoTakenTime(ctx context.Context, result *task.PathResult, src *fileutil.PathObject) error {
	if !src.IsFile {
		result.Status = task.StatusIgnored
		result.Message = r.utils.T(ctx, "rename.not_a_file", nil)
		return nil
	}

	if !slices.Contains(photoExtensions, strings.ToLower(src.FileExt)) {
		result.Status = task.StatusIgnored
		result.Message = r.utils.T(ctx, "rename.unsupported_format", nil)
		return nil
	}

	res, err := r.bridge.Invoke(ctx, command.FileExifGet, command.Params{
		"input_file": src.Path,
		"tags":       []string{command.ExifDateTimeOriginal},
	})
	if err != nil {
		if errors.Is(err, command.ErrToolNotAvailable) {
			return errors.WithStack(err)
		}

		result.Status = task.StatusIgnored
		result.Message = r.utils.T(ctx, "rename.no_taken_time", nil)
		return nil
	}

	tags, err := command.DecodeContent[map[string]string](res)
	if err != nil {
		return errors.WithStack(err)
	}

	stem, ok := FormatTakenTime(r.textPattern, tags[command.ExifDateTimeOriginal])
	if !ok {
		result.Status = task.StatusIgnored
		result.Message = r.utils.T(ctx, "rename.no_taken_time", nil)
		return nil
	}

	name := stem
	if src.FileExt != "" {
		name += "." + src.FileExt
	}

	if name == src.FileName {
		result.Message = r.utils.T(ctx, "rename.already_named", nil)
		return nil
	}

	newPath, err := r.utils.JoinPath(ctx, src.ParentDir, name)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := r.move(ctx, src.Path, newPath); err != nil {
		return errors.WithStack(err)
	}

	result.DestPaths = append(result.DestPaths, newPath)

	return nil
}

func (r *renamer) move(ctx context.Context, from string, to string) error {
	_, err := r.bridge.Invoke(ctx, command.FileRename, command.Params{
		"input_file":  from,
		"output_file": to,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// FormatTakenTime fills the pattern placeholders with the parts of a
// "2006-01-02 15:04:05" date.
func FormatTakenTime(pattern string, datetime string) (string, bool) {
	date, clock, found := strings.Cut(strings.TrimSpace(datetime), " ")
	if !found {
		return "", false
	}

	dateParts := strings.Split(date, "-")
	clockParts := strings.Split(clock, ":")
	if len(dateParts) != 3 || len(clockParts) < 3 {
		return "", false
	}

	replacer := strings.NewReplacer(
		"{year}", dateParts[0],
		"{month}", dateParts[1],
		"{day}", dateParts[2],
		"{hour}", clockParts[0],
		"{minute}", clockParts[1],
		"{second}", clockParts[2],
	)

	return replacer.Replace(pattern), true
}

// lessSequenceName orders numeric stems first, by value, then every other
// name lexically.
func lessSequenceName(stemA, nameA, stemB, nameB string) bool {
	a, errA := strconv.Atoi(stemA)
	b, errB := strconv.Atoi(stemB)

	switch {
	case errA == nil && errB == nil:
		if a != b {
			return a < b
		}
		return nameA < nameB
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return nameA < nameB
	}
}

// Package fileutil is the library shared by the file functions. It only
// reaches the host through the bridge of the running task.
package fileutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
)

const MessageProcessing = "Processing..."

var ErrMissingOutput = errors.New("missing output")

// PathObject is the description of a path returned by ReadPath.
type PathObject struct {
	command.PathInfo
	Path string
}

type Utils struct {
	run    task.Run
	bridge task.Bridge

	AppDataDir string

	// ProgressMax is the progress upper bound. A negative value means the
	// walk counter of the task is used.
	ProgressMax     int
	ProgressCurrent int
}

// Init binds the utilities to the running task and resolves the app data
// directory.
func Init(ctx context.Context, run task.Run) (*Utils, error) {
	u := &Utils{
		run:         run,
		bridge:      run.Bridge(),
		ProgressMax: -1,
	}

	res, err := u.bridge.Invoke(ctx, command.EnvAppDataDir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get app data directory")
	}

	dir, err := command.DecodeContent[string](res)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get app data directory")
	}

	u.AppDataDir = dir

	return u, nil
}

func (u *Utils) Bridge() task.Bridge {
	return u.bridge
}

func (u *Utils) T(ctx context.Context, key string, vars map[string]any) string {
	return u.bridge.Translate(ctx, key, vars)
}

// UpdateProgress reports the progress percentage of the task. Nothing is
// reported when there is at most one step.
func (u *Utils) UpdateProgress(ctx context.Context, message string) error {
	total, current := u.ProgressMax, u.ProgressCurrent
	if total < 0 {
		walk := u.run.WalkCounter()
		total, current = walk.PathTotal, walk.PathIndex
	}

	if total <= 1 {
		return nil
	}

	percent := current * 100 / total
	if percent > 100 {
		percent = 100
	}

	if err := u.bridge.Progress(ctx, percent, message); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (u *Utils) ReadPath(ctx context.Context, path string, listSubNames bool, listSubPaths bool) (*PathObject, error) {
	res, err := u.bridge.Invoke(ctx, command.PathRead, command.Params{
		"path":           path,
		"list_sub_names": listSubNames,
		"list_sub_paths": listSubPaths,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	info, err := command.DecodeContent[command.PathInfo](res)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &PathObject{PathInfo: info, Path: path}, nil
}

func (u *Utils) JoinPath(ctx context.Context, parts ...string) (string, error) {
	res, err := u.bridge.Invoke(ctx, command.PathJoin, command.Params{
		"parts": parts,
	})
	if err != nil {
		return "", errors.WithStack(err)
	}

	joined, err := command.DecodeContent[string](res)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return joined, nil
}

func (u *Utils) PathExists(ctx context.Context, path string) (bool, error) {
	res, err := u.bridge.Invoke(ctx, command.PathExists, command.Params{
		"path": path,
	})
	if err != nil {
		return false, errors.WithStack(err)
	}

	exists, err := command.DecodeContent[bool](res)
	if err != nil {
		return false, errors.WithStack(err)
	}

	return exists, nil
}

// Delete removes the given paths and returns the number of deleted entries.
func (u *Utils) Delete(ctx context.Context, paths ...string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	res, err := u.bridge.Invoke(ctx, command.PathDelete, command.Params{
		"input_paths": paths,
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}

	deleted, err := command.DecodeContent[int](res)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return deleted, nil
}

// ClearSpecifiedFiles deletes the direct children of the directory whose
// name matches the pattern.
func (u *Utils) ClearSpecifiedFiles(ctx context.Context, parentDir string, pattern string) (int, error) {
	res, err := u.bridge.Invoke(ctx, command.DirList, command.Params{
		"input_dir":    parentDir,
		"pattern":      pattern,
		"is_full_path": true,
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}

	paths, err := command.DecodeContent[[]string](res)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	deleted, err := u.Delete(ctx, paths...)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return deleted, nil
}

// OutputFile returns the "output_file" parameter if set, or the source file
// stem with the given extension inside the "output_dir" parameter.
func (u *Utils) OutputFile(ctx context.Context, params task.Parameters, src *PathObject, ext string) (string, error) {
	if output := params.StringOr("", "output_file"); output != "" {
		return output, nil
	}

	outputDir := params.StringOr("", "output_dir")
	if outputDir == "" {
		return "", errors.Wrap(ErrMissingOutput, "no output file path or directory provided")
	}

	output, err := u.JoinPath(ctx, outputDir, fmt.Sprintf("%s.%s", src.FileStem, ext))
	if err != nil {
		return "", errors.WithStack(err)
	}

	if output == "" {
		return "", errors.Wrap(ErrMissingOutput, "invalid output file path or directory")
	}

	return output, nil
}

// RunCommand invokes an external command with the given arguments.
func (u *Utils) RunCommand(ctx context.Context, name string, args ...any) (*command.Result, error) {
	res, err := u.bridge.Invoke(ctx, name, command.Params{
		"arguments": args,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return res, nil
}

// ProcessPath runs fn against a fresh path result for the given source path,
// then records the result and reports the progress. An error returned by fn
// marks the result as failed.
func (u *Utils) ProcessPath(ctx context.Context, srcPath string, fn func(result *task.PathResult) error) error {
	result := task.PathResult{
		Status:    task.StatusOK,
		SrcPath:   srcPath,
		DestPaths: []string{},
	}

	if err := fn(&result); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return errors.WithStack(err)
		}

		result.Status = task.StatusError
		result.Message = err.Error()
	}

	if err := u.UpdateProgress(ctx, MessageProcessing); err != nil {
		return errors.WithStack(err)
	}

	u.run.Result().RecordPathResult(result)

	return nil
}

// RightReplaceOnce replaces the last occurrence of search in s.
func RightReplaceOnce(s string, search string, replace string) string {
	idx := strings.LastIndex(s, search)
	if idx < 0 {
		return s
	}

	return s[:idx] + replace + s[idx+len(search):]
}

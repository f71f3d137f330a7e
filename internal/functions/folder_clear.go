package functions

import (
	"context"
	"regexp"

	"github.com/bornholm/fileworks/internal/functions/fileutil"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bornholm/fileworks/internal/walker"
	"github.com/pkg/errors"
)

const (
	FolderClearName = "folder.clear"

	MethodClearFolderAttributeFiles       = "clear_folder_attribute_files"
	MethodClearDevelopmentEnvironmentFiles = "clear_development_environment_files"
)

var clearPatterns = map[string][]*regexp.Regexp{
	MethodClearFolderAttributeFiles: {
		regexp.MustCompile(`(?i)^\.DS_Store$`),
		regexp.MustCompile(`(?i)^Thumbs\.db$`),
		regexp.MustCompile(`(?i)^_MACOSX$`),
		regexp.MustCompile(`(?i)^__MACOSX$`),
		regexp.MustCompile(`(?i)^desktop\.ini$`),
	},
	MethodClearDevelopmentEnvironmentFiles: {
		regexp.MustCompile(`(?i)^node_modules$`),
		regexp.MustCompile(`(?i)^__pycache__$`),
		regexp.MustCompile(`(?i)^\.pytest_cache$`),
		regexp.MustCompile(`(?i)\.pyc$`),
	},
}

func FolderClear() task.Function {
	return task.NewFunction(&task.Definition{
		Name:    FolderClearName,
		Type:    task.TypeFile,
		Title:   "Clear folder",
		Summary: "Delete system attribute files or development environment files",
		Version: Version,
		Matches: task.Matches{
			Extensions: []string{task.MatchDir, task.MatchDirs, task.MatchPaths},
			Platforms:  allPlatforms,
		},
		Variables: []*task.Variable{
			inputPathsVariable(),
			{
				Name:        "method",
				Description: "Kind of files to delete",
				ValueType:   task.ValueTypeSelect,
				Required:    true,
				Constraints: []task.Constraint{
					task.OneOf(MethodClearFolderAttributeFiles, MethodClearDevelopmentEnvironmentFiles),
				},
			},
		},
	}, folderClear)
}

type folderClearer struct {
	utils    *fileutil.Utils
	patterns []*regexp.Regexp
}

func folderClear(ctx context.Context, action task.Action, run task.Run) error {
	utils, err := fileutil.Init(ctx, run)
	if err != nil {
		return errors.WithStack(err)
	}

	paths, err := inputPaths(action)
	if err != nil {
		return errors.WithStack(err)
	}

	method := action.Parameters.StringOr("", "method")

	patterns, exists := clearPatterns[method]
	if !exists {
		return errors.Wrapf(ErrUnsupportedMethod, "unsupported method '%s'", method)
	}

	clearer := &folderClearer{utils: utils, patterns: patterns}

	process := func(ctx context.Context, paths ...string) error {
		return utils.ProcessPath(ctx, paths[0], func(result *task.PathResult) error {
			deleted, err := clearer.clear(ctx, result.SrcPath)
			if err != nil {
				return errors.WithStack(err)
			}

			if deleted > 0 {
				result.Message = utils.T(ctx, "folder_clear.deleted", map[string]any{"count": deleted})
			} else {
				result.Message = utils.T(ctx, "folder_clear.nothing_deleted", nil)
			}

			return nil
		})
	}

	if err := run.Bridge().WalkPath(ctx, run.TaskID(), paths, walker.DepthInputs, process); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// clear deletes the path if its name matches, or walks into it if it is a
// directory. It returns the number of deleted entries.
func (c *folderClearer) clear(ctx context.Context, path string) (int, error) {
	obj, err := c.utils.ReadPath(ctx, path, false, true)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	if !obj.IsExists {
		return 0, nil
	}

	for _, p := range c.patterns {
		if p.MatchString(obj.FileName) {
			deleted, err := c.utils.Delete(ctx, obj.Path)
			if err != nil {
				return 0, errors.WithStack(err)
			}

			return deleted, nil
		}
	}

	if obj.IsFile {
		return 0, nil
	}

	total := 0
	for _, sub := range obj.SubPaths {
		deleted, err := c.clear(ctx, sub)
		if err != nil {
			return total, errors.WithStack(err)
		}

		total += deleted
	}

	return total, nil
}

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// PathInfo is the content returned by the path.read command.
type PathInfo struct {
	IsExists  bool     `json:"is_exists"`
	IsFile    bool     `json:"is_file"`
	IsDir     bool     `json:"is_dir"`
	ParentDir string   `json:"parent_dir"`
	FileName  string   `json:"file_name"`
	FileStem  string   `json:"file_stem"`
	FileExt   string   `json:"file_ext"`
	SubNames  []string `json:"sub_names,omitempty"`
	SubPaths  []string `json:"sub_paths,omitempty"`
}

// SplitFilePath splits a path into its parent directory, its stem and its
// extension (without the leading dot). Dot files have no extension.
func SplitFilePath(path string) (dir string, stem string, ext string) {
	dir = filepath.Dir(path)
	name := filepath.Base(path)

	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return dir, name, ""
	}

	return dir, name[:idx], name[idx+1:]
}

func (h *host) pathExists(ctx context.Context, params Params) (*Result, error) {
	path, err := params.String("input_path", "path")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	_, err = os.Stat(path)

	return NewResult(err == nil), nil
}

func (h *host) pathJoin(ctx context.Context, params Params) (*Result, error) {
	parts, err := params.Strings("parts")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewResult(filepath.Join(parts...)), nil
}

func (h *host) pathSplit(ctx context.Context, params Params) (*Result, error) {
	path, err := params.String("file_path", "path")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	dir, stem, ext := SplitFilePath(path)

	return NewResult(map[string]string{
		"dir":  dir,
		"stem": stem,
		"ext":  strings.ToLower(ext),
	}), nil
}

func (h *host) pathRead(ctx context.Context, params Params) (*Result, error) {
	path, err := params.String("file_path", "path")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	info := &PathInfo{}

	stat, err := os.Stat(path)
	if err == nil {
		info.IsExists = true
		info.IsDir = stat.IsDir()
		info.IsFile = stat.Mode().IsRegular()
	}

	dir, stem, ext := SplitFilePath(path)
	info.ParentDir = dir
	info.FileName = filepath.Base(path)
	info.FileStem = stem
	info.FileExt = strings.ToLower(ext)

	if info.IsDir && params.Bool("list_sub_names") {
		names, err := listDir(path, ".*", false, false, false)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		info.SubNames = names
	}

	if info.IsDir && params.Bool("list_sub_paths") {
		paths, err := listDir(path, ".*", true, false, false)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		info.SubPaths = paths
	}

	return NewResult(info), nil
}

func (h *host) pathDelete(ctx context.Context, params Params) (*Result, error) {
	paths, err := params.Strings("input_paths", "paths")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	deleted := 0
	for _, p := range paths {
		if p == "" {
			continue
		}

		if h.opts.Storage.Contains(p) {
			// Files created by functions are removed directly
			if err := os.RemoveAll(p); err != nil {
				return nil, errors.Wrapf(err, "could not delete '%s'", p)
			}
		} else {
			if _, err := h.opts.Storage.Trash(p); err != nil {
				return nil, errors.WithStack(err)
			}
		}

		deleted++
	}

	return NewResult(deleted), nil
}

func (h *host) pathRelativeWithHomeDir(ctx context.Context, params Params) (*Result, error) {
	paths, err := params.Strings("input_paths", "paths")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	relPaths := make([]string, 0, len(paths))
	for _, p := range paths {
		relPaths = append(relPaths, RelativeWithHomeDir(h.opts.HomeDir, p))
	}

	return NewResult(relPaths), nil
}

func (h *host) pathAbsoluteWithHomeDir(ctx context.Context, params Params) (*Result, error) {
	paths, err := params.Strings("input_paths", "paths")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	absPaths := make([]string, 0, len(paths))
	for _, p := range paths {
		absPaths = append(absPaths, AbsoluteWithHomeDir(h.opts.HomeDir, p))
	}

	return NewResult(absPaths), nil
}

func (h *host) pathMakeUnusedPath(ctx context.Context, params Params) (*Result, error) {
	path, err := params.String("input_file", "input_path", "path")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	ext := params.StringOr("", "ext", "extension", "to_format", "format")

	return NewResult(MakeUnusedPath(path, ext)), nil
}

func (h *host) pathNewTempFilePath(ctx context.Context, params Params) (*Result, error) {
	ext := params.StringOr("tmp", "ext", "extension")
	parentDir := params.StringOr("", "parent_dir", "dir")

	path, err := h.opts.Storage.NewTempFilePath(parentDir, ext)
	if err != nil {
		return nil, errors.Wrap(err, "can't get dir for temp file")
	}

	return NewResult(path), nil
}

func (h *host) dirList(ctx context.Context, params Params) (*Result, error) {
	dir, err := params.String("input_dir", "dir")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	names, err := listDir(
		dir,
		params.StringOr(".*", "pattern"),
		params.Bool("is_full_path"),
		params.Bool("ignore_file"),
		params.Bool("ignore_dir"),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewResult(names), nil
}

// RelativeWithHomeDir replaces the home directory prefix of the path with "~".
func RelativeWithHomeDir(homeDir string, path string) string {
	if homeDir == "" || !strings.HasPrefix(path, homeDir) {
		return path
	}

	return "~" + strings.TrimPrefix(path, homeDir)
}

// AbsoluteWithHomeDir expands a leading "~" to the home directory.
func AbsoluteWithHomeDir(homeDir string, path string) string {
	if homeDir == "" || !strings.HasPrefix(path, "~") {
		return path
	}

	return homeDir + strings.TrimPrefix(path, "~")
}

// MakeUnusedPath returns the given path if nothing exists there, or the first
// "<stem>-<n>.<ext>" sibling that does not exist yet.
func MakeUnusedPath(path string, newExt string) string {
	dir, stem, ext := SplitFilePath(path)
	if newExt != "" {
		ext = strings.TrimPrefix(newExt, ".")
	}

	filename := func(suffix int) string {
		name := stem
		if suffix > 0 {
			name = fmt.Sprintf("%s-%d", stem, suffix)
		}
		if ext != "" {
			name += "." + ext
		}
		return filepath.Join(dir, name)
	}

	for suffix := 0; ; suffix++ {
		candidate := filename(suffix)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func listDir(dir string, pattern string, fullPath bool, ignoreFile bool, ignoreDir bool) ([]string, error) {
	stat, err := os.Stat(dir)
	if err != nil || !stat.IsDir() {
		return []string{}, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidParameter, "invalid pattern '%s': %s", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading directory '%s'", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if ignoreFile && e.Type().IsRegular() {
			continue
		}

		if ignoreDir && e.IsDir() {
			continue
		}

		if !re.MatchString(e.Name()) {
			continue
		}

		if fullPath {
			names = append(names, filepath.Join(dir, e.Name()))
		} else {
			names = append(names, e.Name())
		}
	}

	return names, nil
}

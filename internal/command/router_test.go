package command_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/command/testsuite"
	"github.com/bornholm/fileworks/internal/file"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type hostFixture struct {
	homeDir string
}

func (f *hostFixture) HomeDir() string {
	return f.homeDir
}

func (f *hostFixture) AddFile(t *testing.T, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if err := os.WriteFile(path, []byte(filepath.Base(path)), 0644); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}
}

func (f *hostFixture) AddDir(t *testing.T, path string) {
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}
}

func newHostRouter(t *testing.T) (*command.Router, string, *file.Storage) {
	logger := slogx.NewTestLogger(t)

	homeDir := t.TempDir()
	storage := file.NewStorage(t.TempDir(), logger)

	router, err := command.NewHostRouter(
		command.WithLogger(logger),
		command.WithHomeDir(homeDir),
		command.WithStorage(storage),
	)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return router, homeDir, storage
}

func TestHostRouter(t *testing.T) {
	router, homeDir, _ := newHostRouter(t)

	testsuite.RunGatewayTestSuite(t, router, &hostFixture{homeDir: homeDir})
}

func TestPathDelete(t *testing.T) {
	router, homeDir, storage := newHostRouter(t)
	ctx := context.Background()

	tempFile, err := storage.NewTempFilePath("", "txt")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(tempFile, []byte("temp"), 0644))

	userFile := filepath.Join(homeDir, "user.txt")
	require.NoError(t, os.WriteFile(userFile, []byte("user"), 0644))

	res, err := router.Invoke(ctx, command.PathDelete, command.Params{
		"paths": []any{tempFile, userFile, ""},
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Content)

	require.NoFileExists(t, tempFile)
	require.NoFileExists(t, userFile)

	trashed, err := filepath.Glob(filepath.Join(storage.GetTrashPath(), "*", "user.txt"))
	require.NoError(t, err)
	require.Len(t, trashed, 1)
}

func TestFileRenameCreatesParents(t *testing.T) {
	router, homeDir, _ := newHostRouter(t)
	ctx := context.Background()

	from := filepath.Join(homeDir, "from.txt")
	to := filepath.Join(homeDir, "nested", "dir", "to.txt")
	require.NoError(t, os.WriteFile(from, []byte("data"), 0644))

	res, err := router.Invoke(ctx, command.FileRename, command.Params{
		"input_path":  from,
		"output_path": to,
	})
	require.NoError(t, err)
	require.Equal(t, []string{to}, res.OutputPaths)

	require.NoFileExists(t, from)

	data, err := os.ReadFile(to)
	require.NoError(t, err)
	require.Equal(t, "data", string(data))
}

func TestFileHash(t *testing.T) {
	router, homeDir, _ := newHostRouter(t)
	ctx := context.Background()

	path := filepath.Join(homeDir, "hash.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	testCases := map[string]string{
		"md5":    "5d41402abc4b2a76b9719d911017c592",
		"sha1":   "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
		"sha256": "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
	}

	for algorithm, expected := range testCases {
		t.Run(algorithm, func(t *testing.T) {
			res, err := router.Invoke(ctx, command.FileHash, command.Params{
				"input_path": path,
				"hash_type":  algorithm,
			})
			require.NoError(t, err)
			require.Equal(t, expected, res.Content)
		})
	}

	_, err := router.Invoke(ctx, command.FileHash, command.Params{
		"input_path": path,
		"hash_type":  "crc32",
	})
	require.ErrorIs(t, err, command.ErrInvalidParameter)
}

func TestFileCountFiles(t *testing.T) {
	router, homeDir, _ := newHostRouter(t)
	ctx := context.Background()

	dir := filepath.Join(homeDir, "count")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("12"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.jpg"), []byte("345"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "c.txt"), []byte("6"), 0644))

	res, err := router.Invoke(ctx, command.FileCountFiles, command.Params{
		"input_paths": []string{dir},
	})
	require.NoError(t, err)

	counters, err := command.DecodeContent[map[string]*command.FilesCounter](res)
	require.NoError(t, err)

	total := counters[command.CountFilesTotalKey]
	require.NotNil(t, total)
	require.Equal(t, uint64(2), total.DirQuantity)
	require.Equal(t, uint64(3), total.FileQuantity)
	require.Equal(t, uint64(6), total.FileSizeSum)
	require.Equal(t, uint64(2), total.FileQuantityOfTypes["jpg"])
	require.Equal(t, uint64(2), total.FileTypeQuantity)

	require.Contains(t, counters, "~"+string(filepath.Separator)+"count")
}

func TestMakeUnusedPath(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "image.png")
	require.Equal(t, path, command.MakeUnusedPath(path, ""))

	require.NoError(t, os.WriteFile(path, nil, 0644))
	require.Equal(t, filepath.Join(dir, "image-1.png"), command.MakeUnusedPath(path, ""))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "image-1.png"), nil, 0644))
	require.Equal(t, filepath.Join(dir, "image-2.png"), command.MakeUnusedPath(path, ""))

	require.Equal(t, filepath.Join(dir, "image.webp"), command.MakeUnusedPath(path, "webp"))
}

func TestSplitFilePath(t *testing.T) {
	testCases := []struct {
		Path string
		Dir  string
		Stem string
		Ext  string
	}{
		{Path: "/a/b/photo.JPG", Dir: "/a/b", Stem: "photo", Ext: "JPG"},
		{Path: "/a/archive.tar.gz", Dir: "/a", Stem: "archive.tar", Ext: "gz"},
		{Path: "/a/.DS_Store", Dir: "/a", Stem: ".DS_Store", Ext: ""},
		{Path: "/a/README", Dir: "/a", Stem: "README", Ext: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.Path, func(t *testing.T) {
			dir, stem, ext := command.SplitFilePath(filepath.FromSlash(tc.Path))
			require.Equal(t, filepath.FromSlash(tc.Dir), dir)
			require.Equal(t, tc.Stem, stem)
			require.Equal(t, tc.Ext, ext)
		})
	}
}

func TestFileFunctionScope(t *testing.T) {
	gateway := command.Restrict(command.GatewayFunc(func(ctx context.Context, name string, params command.Params) (*command.Result, error) {
		return command.NewResult(name), nil
	}), command.FileFunctionScope)

	ctx := context.Background()

	for _, name := range []string{command.PathRead, command.DefaultShellXattrCommand, command.ToolExecutablePrefix + "magick"} {
		_, err := gateway.Invoke(ctx, name, nil)
		require.NoError(t, err, name)
	}

	for _, name := range []string{command.ShellPrefix + "rm", command.UpdaterPrefix + "update_functions"} {
		_, err := gateway.Invoke(ctx, name, nil)
		require.ErrorIs(t, err, command.ErrCommandNotAllowed, name)
		require.ErrorIs(t, err, command.ErrHostCommandFailure, name)
	}
}

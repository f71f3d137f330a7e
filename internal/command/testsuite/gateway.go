package testsuite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/pkg/errors"
)

// Fixture populates the file tree seen by the gateway under test.
type Fixture interface {
	HomeDir() string
	AddFile(t *testing.T, path string)
	AddDir(t *testing.T, path string)
}

type gatewayTestCase struct {
	Name string
	Run  func(t *testing.T, gateway command.Gateway, fixture Fixture) error
}

var gatewayTestCases = []gatewayTestCase{
	{
		Name: "Read file path",
		Run:  testReadFilePath,
	},
	{
		Name: "Read directory sub paths",
		Run:  testReadDirectorySubPaths,
	},
	{
		Name: "Read missing path",
		Run:  testReadMissingPath,
	},
	{
		Name: "List directory",
		Run:  testListDirectory,
	},
	{
		Name: "Relative path with home dir",
		Run:  testRelativeWithHomeDir,
	},
	{
		Name: "Unknown command",
		Run:  testUnknownCommand,
	},
}

func RunGatewayTestSuite(t *testing.T, gateway command.Gateway, fixture Fixture) {
	for _, tc := range gatewayTestCases {
		t.Run(tc.Name, func(t *testing.T) {
			if err := tc.Run(t, gateway, fixture); err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}
		})
	}
}

func readPath(ctx context.Context, gateway command.Gateway, path string, params command.Params) (*command.PathInfo, error) {
	if params == nil {
		params = command.Params{}
	}

	params["path"] = path

	res, err := gateway.Invoke(ctx, command.PathRead, params)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	info, err := command.DecodeContent[command.PathInfo](res)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &info, nil
}

func testReadFilePath(t *testing.T, gateway command.Gateway, fixture Fixture) error {
	ctx := context.Background()

	path := filepath.Join(fixture.HomeDir(), "read", "Photo.JPG")
	fixture.AddFile(t, path)

	info, err := readPath(ctx, gateway, path, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	if !info.IsExists || !info.IsFile || info.IsDir {
		return errors.Errorf("unexpected path kind: %+v", info)
	}

	if e, g := "jpg", info.FileExt; e != g {
		return errors.Errorf("info.FileExt: expected '%s', got '%s'", e, g)
	}

	if e, g := "Photo", info.FileStem; e != g {
		return errors.Errorf("info.FileStem: expected '%s', got '%s'", e, g)
	}

	if e, g := filepath.Dir(path), info.ParentDir; e != g {
		return errors.Errorf("info.ParentDir: expected '%s', got '%s'", e, g)
	}

	return nil
}

func testReadDirectorySubPaths(t *testing.T, gateway command.Gateway, fixture Fixture) error {
	ctx := context.Background()

	dir := filepath.Join(fixture.HomeDir(), "subpaths")
	expected := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "c"),
	}

	fixture.AddFile(t, expected[0])
	fixture.AddFile(t, expected[1])
	fixture.AddDir(t, expected[2])

	info, err := readPath(ctx, gateway, dir, command.Params{"list_sub_paths": true})
	if err != nil {
		return errors.WithStack(err)
	}

	if !info.IsDir {
		return errors.Errorf("expected '%s' to be a directory", dir)
	}

	if !reflect.DeepEqual(expected, info.SubPaths) {
		return errors.Errorf("info.SubPaths: expected %v, got %v", expected, info.SubPaths)
	}

	return nil
}

func testReadMissingPath(t *testing.T, gateway command.Gateway, fixture Fixture) error {
	ctx := context.Background()

	info, err := readPath(ctx, gateway, filepath.Join(fixture.HomeDir(), "nope"), nil)
	if err != nil {
		return errors.WithStack(err)
	}

	if info.IsExists || info.IsFile || info.IsDir {
		return errors.Errorf("expected missing path, got %+v", info)
	}

	return nil
}

func testListDirectory(t *testing.T, gateway command.Gateway, fixture Fixture) error {
	ctx := context.Background()

	dir := filepath.Join(fixture.HomeDir(), "list")
	fixture.AddFile(t, filepath.Join(dir, "one.txt"))
	fixture.AddFile(t, filepath.Join(dir, "two.txt"))

	res, err := gateway.Invoke(ctx, command.DirList, command.Params{"dir": dir})
	if err != nil {
		return errors.WithStack(err)
	}

	names, err := command.DecodeContent[[]string](res)
	if err != nil {
		return errors.WithStack(err)
	}

	if e, g := []string{"one.txt", "two.txt"}, names; !reflect.DeepEqual(e, g) {
		return errors.Errorf("names: expected %v, got %v", e, g)
	}

	return nil
}

func testRelativeWithHomeDir(t *testing.T, gateway command.Gateway, fixture Fixture) error {
	ctx := context.Background()

	res, err := gateway.Invoke(ctx, command.PathRelativeWithHomeDir, command.Params{
		"input_paths": []string{
			filepath.Join(fixture.HomeDir(), "docs", "report.pdf"),
			"/elsewhere/file.txt",
		},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	paths, err := command.DecodeContent[[]string](res)
	if err != nil {
		return errors.WithStack(err)
	}

	expected := []string{
		"~" + string(filepath.Separator) + filepath.Join("docs", "report.pdf"),
		"/elsewhere/file.txt",
	}

	if !reflect.DeepEqual(expected, paths) {
		return errors.Errorf("paths: expected %v, got %v", expected, paths)
	}

	return nil
}

func testUnknownCommand(t *testing.T, gateway command.Gateway, fixture Fixture) error {
	ctx := context.Background()

	_, err := gateway.Invoke(ctx, "does.not.exist", nil)
	if err == nil {
		return errors.New("expected an error")
	}

	if !errors.Is(err, command.ErrUnknownCommand) {
		return errors.Errorf("expected ErrUnknownCommand, got %+v", err)
	}

	if !errors.Is(err, command.ErrHostCommandFailure) {
		return errors.Errorf("expected ErrHostCommandFailure, got %+v", err)
	}

	var cmdErr *command.Error
	if !errors.As(err, &cmdErr) {
		return errors.Errorf("expected *command.Error, got %T", err)
	}

	if e, g := "does.not.exist", cmdErr.Command; e != g {
		return errors.Errorf("cmdErr.Command: expected '%s', got '%s'", e, g)
	}

	return nil
}

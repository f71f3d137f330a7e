package commandtest

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/pkg/errors"
)

const (
	DefaultHomeDir    = "/home/user"
	DefaultAppDataDir = "/home/user/.fileworks"
)

type Call struct {
	Name   string
	Params command.Params
}

type entry struct {
	isDir    bool
	children []string
}

type failure struct {
	command string
	path    string
	err     error
}

// Gateway is an in-memory command gateway backed by a virtual file tree.
// Directory children are listed in insertion order.
type Gateway struct {
	mu         sync.Mutex
	entries    map[string]*entry
	failures   []failure
	handlers   map[string]command.HandlerFunc
	calls      []Call
	homeDir    string
	appDataDir string
}

func NewGateway() *Gateway {
	return &Gateway{
		entries:    map[string]*entry{"/": {isDir: true}},
		handlers:   map[string]command.HandlerFunc{},
		calls:      make([]Call, 0),
		homeDir:    DefaultHomeDir,
		appDataDir: DefaultAppDataDir,
	}
}

func (g *Gateway) AddFile(p string) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.add(path.Clean(p), false)

	return g
}

func (g *Gateway) AddDir(p string) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.add(path.Clean(p), true)

	return g
}

func (g *Gateway) add(p string, isDir bool) {
	if _, exists := g.entries[p]; exists {
		return
	}

	parent := path.Dir(p)
	if parent != p {
		g.add(parent, true)
		g.entries[parent].children = append(g.entries[parent].children, p)
	}

	g.entries[p] = &entry{isDir: isDir}
}

// FailOn makes the given command fail with err. An empty target path makes
// every invocation of the command fail.
func (g *Gateway) FailOn(name string, target string, err error) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failures = append(g.failures, failure{command: name, path: target, err: err})

	return g
}

// Handle overrides or adds a command handler.
func (g *Gateway) Handle(name string, handler command.HandlerFunc) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.handlers[name] = handler

	return g
}

func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()

	calls := make([]Call, len(g.calls))
	copy(calls, g.calls)

	return calls
}

func (g *Gateway) CallsTo(name string) []Call {
	calls := make([]Call, 0)
	for _, c := range g.Calls() {
		if c.Name == name {
			calls = append(calls, c)
		}
	}

	return calls
}

// Invoke implements command.Gateway.
func (g *Gateway) Invoke(ctx context.Context, name string, params command.Params) (*command.Result, error) {
	if params == nil {
		params = command.Params{}
	}

	g.mu.Lock()
	g.calls = append(g.calls, Call{Name: name, Params: params})

	target := params.StringOr("", "path", "input_path", "file_path", "input_file", "input_dir", "dir")

	for _, f := range g.failures {
		if f.command != name {
			continue
		}

		if f.path == "" || f.path == target {
			g.mu.Unlock()
			return nil, command.NewError(name, f.err)
		}
	}

	handler, exists := g.handlers[name]
	g.mu.Unlock()

	if exists {
		res, err := handler(ctx, params)
		if err != nil {
			return nil, command.NewError(name, err)
		}
		return res, nil
	}

	res, err := g.builtin(name, params)
	if err != nil {
		return nil, command.NewError(name, err)
	}

	return res, nil
}

func (g *Gateway) builtin(name string, params command.Params) (*command.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch name {
	case command.PathExists:
		p, err := params.String("input_path", "path")
		if err != nil {
			return nil, errors.WithStack(err)
		}

		_, exists := g.entries[path.Clean(p)]

		return command.NewResult(exists), nil

	case command.PathJoin:
		parts, err := params.Strings("parts")
		if err != nil {
			return nil, errors.WithStack(err)
		}

		return command.NewResult(path.Join(parts...)), nil

	case command.PathRead:
		p, err := params.String("file_path", "path")
		if err != nil {
			return nil, errors.WithStack(err)
		}

		return command.NewResult(g.read(path.Clean(p), params)), nil

	case command.DirList:
		p, err := params.String("input_dir", "dir")
		if err != nil {
			return nil, errors.WithStack(err)
		}

		e, exists := g.entries[path.Clean(p)]
		if !exists || !e.isDir {
			return command.NewResult([]string{}), nil
		}

		names := make([]string, 0, len(e.children))
		for _, c := range e.children {
			if params.Bool("is_full_path") {
				names = append(names, c)
			} else {
				names = append(names, path.Base(c))
			}
		}

		return command.NewResult(names), nil

	case command.PathDelete:
		paths, err := params.Strings("input_paths", "paths")
		if err != nil {
			return nil, errors.WithStack(err)
		}

		deleted := 0
		for _, p := range paths {
			if g.remove(path.Clean(p)) {
				deleted++
			}
		}

		return command.NewResult(deleted), nil

	case command.PathRelativeWithHomeDir:
		paths, err := params.Strings("input_paths", "paths")
		if err != nil {
			return nil, errors.WithStack(err)
		}

		rel := make([]string, 0, len(paths))
		for _, p := range paths {
			rel = append(rel, command.RelativeWithHomeDir(g.homeDir, p))
		}

		return command.NewResult(rel), nil

	case command.EnvAppDataDir:
		return command.NewResult(g.appDataDir), nil

	case command.EnvHomeDir:
		return command.NewResult(g.homeDir), nil

	case command.EnvPlatform:
		return command.NewResult("linux"), nil

	case command.EnvArch:
		return command.NewResult("x86_64"), nil

	case command.EnvIsDebug:
		return command.NewResult(false), nil
	}

	if strings.HasPrefix(name, command.ShellPrefix) || strings.HasPrefix(name, command.ToolExecutablePrefix) {
		return command.NewResult(""), nil
	}

	return nil, errors.Wrapf(command.ErrUnknownCommand, "unknown command '%s'", name)
}

func (g *Gateway) read(p string, params command.Params) *command.PathInfo {
	dir, stem, ext := command.SplitFilePath(p)

	info := &command.PathInfo{
		ParentDir: dir,
		FileName:  path.Base(p),
		FileStem:  stem,
		FileExt:   strings.ToLower(ext),
	}

	e, exists := g.entries[p]
	if !exists {
		return info
	}

	info.IsExists = true
	info.IsDir = e.isDir
	info.IsFile = !e.isDir

	if e.isDir && params.Bool("list_sub_paths") {
		info.SubPaths = append([]string{}, e.children...)
	}

	if e.isDir && params.Bool("list_sub_names") {
		info.SubNames = make([]string, 0, len(e.children))
		for _, c := range e.children {
			info.SubNames = append(info.SubNames, path.Base(c))
		}
	}

	return info
}

func (g *Gateway) remove(p string) bool {
	e, exists := g.entries[p]
	if !exists {
		return false
	}

	for _, c := range e.children {
		g.remove(c)
	}

	delete(g.entries, p)

	if parent, exists := g.entries[path.Dir(p)]; exists {
		children := make([]string, 0, len(parent.children))
		for _, c := range parent.children {
			if c != p {
				children = append(children, c)
			}
		}
		parent.children = children
	}

	return true
}

var _ command.Gateway = &Gateway{}

package task

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrInvalidFunction = errors.New("invalid function")
)

type Provider interface {
	FetchFunction(ctx context.Context, name string) (Function, error)
}

// Tags describing the kind of the selected paths.
const (
	MatchAll   = "*"
	MatchFile  = "/file"
	MatchFiles = "/files"
	MatchDir   = "/dir"
	MatchDirs  = "/dirs"
	MatchPaths = "/paths"
)

var pathKindTags = []string{MatchFile, MatchDir, MatchFiles, MatchDirs, MatchPaths}

// Catalog is the build time registry of function modules.
type Catalog struct {
	mu        sync.RWMutex
	functions map[string]Function
}

func NewCatalog() *Catalog {
	return &Catalog{
		functions: make(map[string]Function),
	}
}

func (c *Catalog) Register(functions ...Function) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, fn := range functions {
		def := fn.Definition()
		if def == nil || def.Name == "" {
			return errors.Wrap(ErrInvalidFunction, "function definition must have a name")
		}

		if !def.Type.Valid() {
			return errors.Wrapf(ErrInvalidFunction, "function '%s' has invalid type '%s'", def.Name, def.Type)
		}

		if _, exists := c.functions[def.Name]; exists {
			return errors.Wrapf(ErrDuplicateFunction, "function '%s' already registered", def.Name)
		}

		c.functions[def.Name] = fn
	}

	return nil
}

// FetchFunction implements Provider.
func (c *Catalog) FetchFunction(ctx context.Context, name string) (Function, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fn, exists := c.functions[name]
	if !exists {
		return nil, errors.Wrapf(ErrFunctionNotFound, "function '%s' not found", name)
	}

	return fn, nil
}

// List returns the definitions of the given type sorted by name.
// An empty type lists every function.
func (c *Catalog) List(taskType Type) []*Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	defs := make([]*Definition, 0, len(c.functions))
	for _, fn := range c.functions {
		def := fn.Definition()
		if taskType != "" && def.Type != taskType {
			continue
		}
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})

	return defs
}

// Supported returns the file functions applicable to the given extensions
// and path kind tags on the given platform, sorted by name.
func (c *Catalog) Supported(exts []string, platform string) []*Definition {
	candidates := make(map[string]*Definition)
	for _, def := range c.List(TypeFile) {
		if !matchPlatform(def.Matches, platform) {
			continue
		}
		candidates[def.Name] = def
	}

	supported := make(map[string]*Definition, len(candidates))
	for name, def := range candidates {
		supported[name] = def
	}

	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if strings.HasPrefix(ext, "/") {
			continue
		}

		for name, def := range supported {
			if !matchExtension(def.Matches, ext) {
				delete(supported, name)
			}
		}
	}

	for _, tag := range pathKindTags {
		if !slices.Contains(exts, tag) {
			continue
		}

		for name, def := range candidates {
			allowed := slices.Contains(def.Matches.Extensions, tag)
			denied := slices.Contains(def.Matches.Extensions, "!"+tag)

			switch {
			case denied:
				delete(supported, name)
			case allowed:
				supported[name] = def
			}
		}
	}

	defs := make([]*Definition, 0, len(supported))
	for _, def := range supported {
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})

	return defs
}

func matchExtension(m Matches, ext string) bool {
	return slices.Contains(m.Extensions, MatchAll) ||
		slices.Contains(m.Extensions, "/all") ||
		slices.Contains(m.Extensions, ext)
}

func matchPlatform(m Matches, platform string) bool {
	return platform == "" || slices.Contains(m.Platforms, MatchAll) || slices.Contains(m.Platforms, platform)
}

var _ Provider = &Catalog{}

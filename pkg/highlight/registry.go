package highlight

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// Registry is a set of themes addressed by name. Reads are lock-free; every
// change replaces the whole mapping at once, so a render never observes a
// partially updated set.
type Registry struct {
	themes atomic.Pointer[map[string]*Theme]
	mu     sync.Mutex // serializes writers
}

// NewRegistry creates a registry holding the built-in themes plus themes.
// Later themes replace earlier ones with the same name.
func NewRegistry(themes ...*Theme) *Registry {
	r := &Registry{}
	r.store(append(slices.Clone(builtinThemes()), themes...))
	return r
}

// Lookup returns the theme named name, or the default theme when the name is
// unknown.
func (r *Registry) Lookup(name string) *Theme {
	theme, _ := r.LookupOK(name)
	return theme
}

// LookupOK is Lookup that also reports whether name matched exactly.
func (r *Registry) LookupOK(name string) (*Theme, bool) {
	set := *r.themes.Load()
	if theme, ok := set[name]; ok {
		return theme, true
	}
	return set[DefaultThemeName], false
}

// Names returns the registered theme names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(*r.themes.Load()))
}

// Add registers themes on top of the current set.
func (r *Registry) Add(themes ...*Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.themes.Load()
	next := make([]*Theme, 0, len(current)+len(themes))
	for _, theme := range current {
		next = append(next, theme)
	}
	r.store(append(next, themes...))
}

// Replace swaps the whole set for themes. The default theme is kept when
// themes does not provide one.
func (r *Registry) Replace(themes ...*Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store(themes)
}

func (r *Registry) store(themes []*Theme) {
	set := make(map[string]*Theme, len(themes)+1)
	set[DefaultThemeName] = Default()
	for _, theme := range themes {
		if theme != nil {
			set[theme.Name()] = theme
		}
	}
	r.themes.Store(&set)
}

//nolint:gochecknoglobals // Lazily initialized, read-only after.
var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry()
})

// DefaultRegistry returns the process-wide registry, created on first use with
// the built-in themes.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

package industry

import (
	"sort"
	"strings"
)

// Registry maps industry keys to context constructors. It is built once at
// process start and passed down; nothing registers into it implicitly.
type Registry map[string]func() Context

// DefaultRegistry returns the registry of built-in industries.
func DefaultRegistry() Registry {
	return Registry{
		"retail": func() Context { return NewRetailContext() },
	}
}

// Register adds an industry to the registry, replacing any existing entry
// with the same key.
func (r Registry) Register(industry string, build func() Context) {
	r[strings.ToLower(industry)] = build
}

// New creates a business context for the given industry key. Unknown
// industries fail with a ContextError before any analysis starts.
func (r Registry) New(industryKey string) (Context, error) {
	build, ok := r[strings.ToLower(industryKey)]
	if !ok {
		return nil, contextErrorf("industry %q not supported, available: %s",
			industryKey, strings.Join(r.Industries(), ", "))
	}
	return build(), nil
}

// Industries lists the registered industry keys, sorted.
func (r Registry) Industries() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// ParserFactory constructs a fresh parser instance.
type ParserFactory func() Parser

var (
	mu        sync.RWMutex
	factories = make(map[string]ParserFactory)
)

// RegisterParser registers a parser factory under its name.
// Registration happens from package init functions; duplicate names panic.
func RegisterParser(name string, f ParserFactory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("plugin: duplicate parser registration for %q", name))
	}
	factories[name] = f
}

// NewParser instantiates the named parser.
func NewParser(name string) (Parser, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("plugin: unknown parser %q", name)
	}
	return f(), nil
}

// ParserNames returns the registered parser names, sorted.
func ParserNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

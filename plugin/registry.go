// Package plugin provides the registration table behind the strategy and
// filter namespaces. Plugins self-register from init() in their source
// file; resolution is a map lookup, never reflection.
//
// Lookup names follow the historical convention: the registered name is an
// identifier (letters, digits, underscore) and matching ignores underscores
// and case, so "MACD_Cross", "macd_cross" and "MACDCross" all resolve to
// the same plugin.
package plugin

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// All is the sentinel accepted by ResolveAll in place of explicit names.
const All = "all"

var (
	// ErrNotFound reports that no registered plugin matches a name.
	ErrNotFound = errors.New("plugin not found")

	// ErrConstruction reports that a plugin factory failed or panicked.
	ErrConstruction = errors.New("plugin construction failed")
)

// Factory builds one plugin instance. The payload is passed through
// verbatim from the resolution call; factories that take no arguments
// ignore it.
type Factory[T any] func(payload any) (T, error)

// Registry maps plugin names to factories for one namespace.
type Registry[T any] struct {
	kind string

	mu        sync.RWMutex
	factories map[string]entry[T]
}

type entry[T any] struct {
	name    string // as registered, for listings
	factory Factory[T]
}

func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:      kind,
		factories: make(map[string]entry[T]),
	}
}

// Register adds a factory under name. It is meant to be called from
// init() and panics on an invalid name or a duplicate registration:
// every name must resolve to exactly one plugin.
func (r *Registry[T]) Register(name string, factory Factory[T]) {
	if !validName(name) {
		panic(fmt.Sprintf("plugin: invalid %s name %q", r.kind, name))
	}
	if factory == nil {
		panic(fmt.Sprintf("plugin: nil factory for %s %q", r.kind, name))
	}

	key := canonical(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.factories[key]; ok {
		panic(fmt.Sprintf("plugin: %s %q conflicts with registered %q", r.kind, name, prev.name))
	}
	r.factories[key] = entry[T]{name: name, factory: factory}
}

// Resolve returns a new instance of the named plugin, constructed with
// payload. Failures wrap ErrNotFound or ErrConstruction.
func (r *Registry[T]) Resolve(name string, payload any) (T, error) {
	var zero T
	if !validName(name) {
		return zero, fmt.Errorf("%w: invalid %s name %q", ErrNotFound, r.kind, name)
	}

	r.mu.RLock()
	e, ok := r.factories[canonical(name)]
	r.mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("%w: %s %q", ErrNotFound, r.kind, name)
	}

	inst, err := construct(e.factory, payload)
	if err != nil {
		return zero, fmt.Errorf("%w: %s %q: %v", ErrConstruction, r.kind, e.name, err)
	}
	return inst, nil
}

// construct isolates factory panics so a malformed plugin cannot take
// down a bulk resolution.
func construct[T any](factory Factory[T], payload any) (inst T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return factory(payload)
}

// ResolveAll resolves each named plugin with no payload. The sentinel
// All expands to every registered name. A failing name does not stop
// the siblings; the instances that did resolve are returned alongside
// the joined errors.
func (r *Registry[T]) ResolveAll(names []string) ([]T, error) {
	expanded := names
	for _, n := range names {
		if strings.EqualFold(n, All) {
			expanded = r.Names()
			break
		}
	}

	var (
		out  []T
		errs []error
	)
	for _, name := range expanded {
		inst, err := r.Resolve(name, nil)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, inst)
	}
	return out, errors.Join(errs...)
}

// Names lists the registered plugin names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.factories))
	for _, e := range r.factories {
		out = append(out, e.name)
	}
	sort.Strings(out)
	return out
}

func canonical(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

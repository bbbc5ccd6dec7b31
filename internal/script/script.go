// Package script holds the native script extension point of the embedded
// node. Settings bind a script name to a factory type with
// script.native.<name>.type; the node resolves the type through a Registry.
package script

import (
	"fmt"
	"sort"
	"sync"

	"github.com/eleven-am/searchnode/internal/domain"
)

type Params map[string]interface{}

// Source is the mutable document body a script runs against.
type Source map[string]interface{}

type NativeScript interface {
	Run(source Source) error
}

type Factory interface {
	Type() string
	New(params Params) (NativeScript, error)
}

type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry(factories ...Factory) *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	for _, f := range factories {
		r.Register(f)
	}
	return r
}

func (r *Registry) Register(f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[f.Type()] = f
}

func (r *Registry) Lookup(factoryType string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[factoryType]
	return f, ok
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Bindings maps script names to their factories.
type Bindings map[string]Factory

// Bind resolves every script.native.<name>.type setting against the registry.
func (r *Registry) Bind(settings domain.NodeSettings) (Bindings, error) {
	bindings := make(Bindings)
	for key, factoryType := range settings.WithPrefix(domain.SettingScriptNativePrefix) {
		name, ok := nameFromKey(key)
		if !ok {
			continue
		}
		f, found := r.Lookup(factoryType)
		if !found {
			return nil, domain.NewScriptError(
				fmt.Sprintf("no native script factory registered for type %q", factoryType),
				domain.ErrUnknownScript,
				domain.WithComponent("script.Registry"),
				domain.WithContextDetail("script", name),
				domain.WithContextDetail("registered", r.Types()))
		}
		bindings[name] = f
	}
	return bindings, nil
}

func (b Bindings) New(name string, params Params) (NativeScript, error) {
	f, ok := b[name]
	if !ok {
		return nil, domain.NewScriptError(fmt.Sprintf("native script %q is not registered", name), domain.ErrUnknownScript)
	}
	return f.New(params)
}

func nameFromKey(key string) (string, bool) {
	const suffix = ".type"
	if len(key) <= len(suffix) || key[len(key)-len(suffix):] != suffix {
		return "", false
	}
	return key[:len(key)-len(suffix)], true
}

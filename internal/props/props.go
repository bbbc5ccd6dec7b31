// Package props provides the property sources a host process hands to the
// configuration resolver: in-memory maps, prefixed environment variables,
// property files, and layered combinations of them.
package props

import (
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/ports"
)

// Map is an in-memory property source.
type Map map[string]string

func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m Map) Properties() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Env resolves a property key by upper-casing it behind a prefix, so esHome
// is read from SEARCHNODE_ESHOME when Prefix is "SEARCHNODE_".
type Env struct {
	Prefix string
	// Keys are the property names Properties lists. Environment names lose
	// the key's case, so only known keys can be listed.
	Keys []string

	lookup func(string) (string, bool)
}

// NewEnv lists keys, or the node properties when keys is empty.
func NewEnv(prefix string, keys ...string) *Env {
	if len(keys) == 0 {
		keys = domain.PropertyKeys()
	}
	return &Env{Prefix: prefix, Keys: keys, lookup: os.LookupEnv}
}

func (e *Env) envName(key string) string {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	return e.Prefix + name
}

func (e *Env) Lookup(key string) (string, bool) {
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return lookup(e.envName(key))
}

// Properties lists the Keys that are set, under the same names Lookup takes.
func (e *Env) Properties() map[string]string {
	out := make(map[string]string)
	for _, key := range e.Keys {
		if v, ok := e.Lookup(key); ok {
			out[key] = v
		}
	}
	return out
}

// Layered consults its sources from last to first, so later layers win.
type Layered struct {
	layers []ports.PropertySource
}

func NewLayered(layers ...ports.PropertySource) *Layered {
	filtered := make([]ports.PropertySource, 0, len(layers))
	for _, l := range layers {
		if l != nil {
			filtered = append(filtered, l)
		}
	}
	return &Layered{layers: filtered}
}

func (l *Layered) Lookup(key string) (string, bool) {
	for i := len(l.layers) - 1; i >= 0; i-- {
		if v, ok := l.layers[i].Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// Properties merges every enumerable layer; sources that cannot list their
// keys are skipped.
func (l *Layered) Properties() map[string]string {
	merged := make(map[string]string)
	for _, layer := range l.layers {
		lister, ok := layer.(ports.PropertyLister)
		if !ok {
			continue
		}
		if err := mergo.Merge(&merged, lister.Properties(), mergo.WithOverride); err != nil {
			continue
		}
	}
	return merged
}

var (
	_ ports.PropertyLister = Map(nil)
	_ ports.PropertyLister = (*Env)(nil)
	_ ports.PropertyLister = (*Layered)(nil)
)

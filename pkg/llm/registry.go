package llm

import "fmt"

// Registry holds the configured providers and resolves the per-request
// model_provider field, falling back to the default when the field is
// absent or names an unknown provider.
type Registry struct {
	providers   map[string]Provider
	defaultName string
}

func NewRegistry(defaultName string) *Registry {
	return &Registry{
		providers:   map[string]Provider{},
		defaultName: defaultName,
	}
}

func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get resolves a provider by name. An empty or unknown name resolves to
// the default provider.
func (r *Registry) Get(name string) (Provider, error) {
	if p, ok := r.providers[name]; ok {
		return p, nil
	}

	if p, ok := r.providers[r.defaultName]; ok {
		return p, nil
	}

	return nil, fmt.Errorf("%w: no provider registered for %q", ErrNotConfigured, r.defaultName)
}

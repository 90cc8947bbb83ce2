package wrapper

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/apiwrap/validation"
)

// Resource is one named endpoint of an API.
type Resource struct {
	// Path is a URL template relative to the API root, e.g. "users/{id}/".
	Path string `yaml:"resource" json:"resource" mapstructure:"resource" validate:"required,urltemplate"`
	// Docs links to the endpoint documentation.
	Docs string `yaml:"docs,omitempty" json:"docs,omitempty" mapstructure:"docs"`
	// List marks collection endpoints.
	List bool `yaml:"list,omitempty" json:"list,omitempty" mapstructure:"list"`
	// Detail marks single-object endpoints.
	Detail bool `yaml:"detail,omitempty" json:"detail,omitempty" mapstructure:"detail"`
	// Extra holds any other keys, shown in the generated docs.
	Extra map[string]any `yaml:",inline" json:"extra,omitempty" mapstructure:",remain"`
}

// ResourceMapping maps resource names to endpoints.
type ResourceMapping map[string]Resource

// Names returns the resource names, sorted.
func (m ResourceMapping) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// Validate checks every entry of the mapping.
func (m ResourceMapping) Validate() error {
	v := validation.New()
	for _, name := range m.Names() {
		v.Custom(name != "", "resources", "resource names must not be empty")
		res := m[name]
		v.Merge(name, validation.Validate(&res))
	}
	return v.Validate()
}

// LoadResourceMapping reads a YAML (or JSON) resource mapping and validates it.
func LoadResourceMapping(r io.Reader) (ResourceMapping, error) {
	var m ResourceMapping
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode resource mapping: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

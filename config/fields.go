package config

import (
	"fmt"
	"strings"
)

// FieldSpec is one entry of the frontmatter field list.
type FieldSpec struct {
	Key   string
	Alias string
}

// Name returns the key the value is written under.
func (f FieldSpec) Name() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Key
}

// ParseFields parses entries of the form "key" or "key:alias".
func ParseFields(entries []string) ([]FieldSpec, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("frontmatter field list cannot be empty")
	}

	specs := make([]FieldSpec, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		key, alias, _ := strings.Cut(strings.TrimSpace(entry), ":")
		key = strings.TrimSpace(key)
		alias = strings.TrimSpace(alias)
		if key == "" {
			return nil, fmt.Errorf("frontmatter field %q has an empty key", entry)
		}
		spec := FieldSpec{Key: key, Alias: alias}
		if _, dup := seen[spec.Name()]; dup {
			return nil, fmt.Errorf("frontmatter field %q is listed twice", spec.Name())
		}
		seen[spec.Name()] = struct{}{}
		specs = append(specs, spec)
	}
	return specs, nil
}

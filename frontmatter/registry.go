// Package frontmatter assembles, validates and renders post frontmatter.
package frontmatter

import (
	"fmt"
	"sort"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/models"
)

// FieldExtractor produces one frontmatter value from a post.
type FieldExtractor interface {
	// Key is the name the extractor is registered under.
	Key() string
	// RequiredFields lists the raw item fields the extractor reads.
	RequiredFields() []string
	// Extract returns the value, nil to omit the field, or an error when the
	// underlying raw field is missing.
	Extract(post *models.Post) (any, error)
}

// Mandatory is implemented by extractors whose failure invalidates the whole
// post rather than just the field.
type Mandatory interface {
	Mandatory() bool
}

// rawFields is the set of raw item fields extractors may declare.
var rawFields = map[string]struct{}{
	"title": {}, "link": {}, "pubDate": {}, "creator": {}, "encoded": {},
	"excerpt": {}, "post_id": {}, "post_name": {}, "post_type": {},
	"status": {}, "post_parent": {}, "is_sticky": {}, "attachment_url": {},
	"post_date": {}, "category": {}, "postmeta": {},
}

// Registry maps frontmatter keys to extractors.
type Registry struct {
	extractors map[string]FieldExtractor
}

// NewRegistry returns a registry holding extractors.
func NewRegistry(extractors ...FieldExtractor) *Registry {
	r := &Registry{extractors: make(map[string]FieldExtractor, len(extractors))}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds or replaces an extractor.
func (r *Registry) Register(e FieldExtractor) {
	r.extractors[e.Key()] = e
}

// Lookup returns the extractor registered for key.
func (r *Registry) Lookup(key string) (FieldExtractor, bool) {
	e, ok := r.extractors[key]
	return e, ok
}

// Keys returns the registered keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.extractors))
	for k := range r.extractors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Check verifies that every configured field has an extractor and that each
// extractor only declares known raw fields. Failures are configuration
// errors and abort the run before any post is processed.
func (r *Registry) Check(fields []config.FieldSpec) error {
	for _, f := range fields {
		e, ok := r.extractors[f.Key]
		if !ok {
			return &models.ConversionError{
				Stage: models.StageConfig,
				Field: f.Key,
				Msg:   fmt.Sprintf("no extractor registered for frontmatter field %q", f.Key),
			}
		}
		for _, raw := range e.RequiredFields() {
			if _, known := rawFields[raw]; !known {
				return &models.ConversionError{
					Stage: models.StageConfig,
					Field: f.Key,
					Msg:   fmt.Sprintf("extractor requires unknown raw field %q", raw),
				}
			}
		}
	}
	return nil
}

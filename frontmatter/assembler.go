package frontmatter

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/models"
	"gopkg.in/yaml.v3"
)

// Assembler runs the configured extractors over posts.
type Assembler struct {
	registry *Registry
	fields   []config.FieldSpec
}

// NewAssembler checks fields against registry and returns an assembler.
func NewAssembler(registry *Registry, fields []config.FieldSpec) (*Assembler, error) {
	if err := registry.Check(fields); err != nil {
		return nil, err
	}
	return &Assembler{registry: registry, fields: fields}, nil
}

// Assemble builds post.Frontmatter and sets post.Date. A missing or invalid
// publication date fails the post; other field errors are logged and the
// field is left out.
func (a *Assembler) Assemble(post *models.Post) error {
	date, err := PublishDate(post)
	if err != nil {
		return err
	}
	post.Date = date

	fm := models.NewFrontmatter()
	for _, f := range a.fields {
		extractor, ok := a.registry.Lookup(f.Key)
		if !ok {
			return &models.ConversionError{
				Stage: models.StageConfig,
				Field: f.Key,
				Msg:   fmt.Sprintf("no extractor registered for frontmatter field %q", f.Key),
			}
		}

		value, err := extractor.Extract(post)
		if err != nil {
			if m, ok := extractor.(Mandatory); ok && m.Mandatory() {
				return err
			}
			slog.Warn("skipping frontmatter field",
				slog.String("id", post.Meta.ID),
				slog.String("field", f.Name()),
				slog.Any("error", err),
			)
			continue
		}
		if value == nil {
			continue
		}
		fm.Set(f.Name(), value)
	}

	for _, warning := range Validate(fm) {
		slog.Warn("frontmatter validation", slog.String("id", post.Meta.ID), slog.String("warning", warning))
	}

	post.Frontmatter = fm
	return nil
}

// AssembleAll assembles every post and returns those that succeeded. Failed
// posts are logged and reported in the second return value.
func (a *Assembler) AssembleAll(posts []*models.Post) ([]*models.Post, []error) {
	ok := make([]*models.Post, 0, len(posts))
	var failures []error
	for _, post := range posts {
		if err := a.Assemble(post); err != nil {
			slog.Error("frontmatter assembly failed",
				slog.String("id", post.Meta.ID),
				slog.Any("error", err),
			)
			failures = append(failures, err)
			continue
		}
		ok = append(ok, post)
	}
	return ok, failures
}

// Validate returns warnings for malformed heroImage or group values. It never
// rejects the frontmatter.
func Validate(fm *models.Frontmatter) []string {
	var warnings []string
	if v, ok := fm.Get("heroImage"); ok && !validHeroImage(v) {
		warnings = append(warnings, "heroImage must be an object with a string src")
	}
	if v, ok := fm.Get("group"); ok {
		g, isString := v.(string)
		if !isString || !ValidGroup(g) {
			warnings = append(warnings, fmt.Sprintf("group %v is not one of pro, kontra, fragezeiten", v))
		}
	}
	return warnings
}

func validHeroImage(v any) bool {
	switch h := v.(type) {
	case HeroImage:
		return h.Src != ""
	case *HeroImage:
		return h != nil && h.Src != ""
	case map[string]any:
		src, ok := h["src"].(string)
		return ok && src != ""
	}
	return false
}

// Render serializes fm as YAML with keys in insertion order. The output has no
// delimiters and ends in a newline.
func Render(fm *models.Frontmatter) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range fm.Keys() {
		value, _ := fm.Get(key)
		var valueNode yaml.Node
		if err := valueNode.Encode(value); err != nil {
			return "", fmt.Errorf("encode frontmatter field %s: %w", key, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&valueNode,
		)
	}
	if len(doc.Content) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("close frontmatter encoder: %w", err)
	}
	return buf.String(), nil
}

// Document renders a full markdown file: frontmatter block, blank line, body.
func Document(fm *models.Frontmatter, body string) (string, error) {
	rendered, err := Render(fm)
	if err != nil {
		return "", err
	}
	return "---\n" + rendered + "---\n\n" + body + "\n", nil
}

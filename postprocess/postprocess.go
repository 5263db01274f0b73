// Package postprocess normalizes already written .mdx files: frontmatter
// shape, descriptions, fallback categories, image references and links.
package postprocess

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/aluiziolira/go-wp2mdx/config"
	fields "github.com/aluiziolira/go-wp2mdx/frontmatter"
	"github.com/aluiziolira/go-wp2mdx/media"
	"github.com/aluiziolira/go-wp2mdx/models"
	"gopkg.in/yaml.v3"
)

// DescriptionLength is the maximum number of characters of body text used
// for a synthesized description.
const DescriptionLength = 150

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Processor rewrites .mdx files in place.
type Processor struct {
	fallback []string
	domains  *domainRewriter
}

// New builds a Processor from the run configuration.
func New(cfg *config.Config) *Processor {
	return &Processor{
		fallback: cfg.FallbackCategories,
		domains:  newDomainRewriter(cfg.OldDomain, cfg.NewDomain),
	}
}

// ProcessDir processes every .mdx file under root and returns how many were
// rewritten. Per-file failures are logged and skipped; the first one is
// returned after the walk.
func (p *Processor) ProcessDir(root string) (int, error) {
	processed := 0
	var firstErr error

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".mdx" {
			return nil
		}
		changed, err := p.ProcessFile(path)
		if err != nil {
			slog.Error("[FAILED] postprocess", slog.String("path", path), slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
			return nil
		}
		if changed {
			processed++
		}
		return nil
	})
	if err != nil {
		return processed, models.NewError(models.StageFilesystem, "walk "+root, err)
	}
	return processed, firstErr
}

// ProcessFile normalizes one file and writes it back only when something
// changed. Files without a frontmatter block are left alone.
func (p *Processor) ProcessFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, models.NewError(models.StageFilesystem, "read "+path, err)
	}
	out, changed, err := p.Process(data)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if !changed {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, models.NewError(models.StageFilesystem, "stat "+path, err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, models.NewError(models.StageFilesystem, "write "+path, err)
	}
	slog.Debug("postprocessed", slog.String("path", path))
	return true, nil
}

// Process applies all normalizations to one document.
func (p *Processor) Process(data []byte) ([]byte, bool, error) {
	if !bytes.HasPrefix(data, []byte("---")) {
		return data, false, nil
	}

	var doc yaml.Node
	rest, err := frontmatter.Parse(bytes.NewReader(data), &doc, yamlFormat)
	if err != nil {
		return nil, false, models.NewError(models.StageTransform, "parse frontmatter", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return data, false, nil
	}
	meta := doc.Content[0]
	body := strings.TrimLeft(string(rest), "\n")

	changed := normalizeHeroImage(meta)
	changed = normalizeGroup(meta) || changed
	changed = p.fillDescription(meta, body) || changed
	changed = p.fillCategories(meta) || changed

	newBody := rewriteImageRefs(body)
	newBody = p.domains.rewrite(newBody)
	if newBody != body {
		changed = true
	}
	if !changed {
		return data, false, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, false, models.NewError(models.StageTransform, "encode frontmatter", err)
	}
	if err := enc.Close(); err != nil {
		return nil, false, models.NewError(models.StageTransform, "encode frontmatter", err)
	}

	out := "---\n" + buf.String() + "---\n\n" + newBody
	return []byte(out), true, nil
}

func normalizeHeroImage(meta *yaml.Node) bool {
	value := lookup(meta, "heroImage")
	if value == nil {
		return false
	}

	var src, alt string
	switch value.Kind {
	case yaml.ScalarNode:
		src = value.Value
	case yaml.MappingNode:
		if n := lookup(value, "src"); n != nil {
			src = n.Value
		}
		if n := lookup(value, "alt"); n != nil {
			alt = n.Value
		}
	default:
		return false
	}
	if strings.TrimSpace(src) == "" {
		return false
	}
	if alt == "" {
		if n := lookup(meta, "title"); n != nil {
			alt = n.Value
		}
	}

	wantSrc := "./" + media.LocalPath(src)
	if value.Kind == yaml.ScalarNode {
		*value = *mapping("src", scalar(wantSrc), "alt", scalar(alt))
		return true
	}

	// other keys of the mapping are kept
	changed := false
	if lookup(value, "src").Value != wantSrc {
		set(value, "src", scalar(wantSrc))
		changed = true
	}
	if n := lookup(value, "alt"); n == nil || n.Value != alt {
		set(value, "alt", scalar(alt))
		changed = true
	}
	return changed
}

func normalizeGroup(meta *yaml.Node) bool {
	value := lookup(meta, "group")
	if value == nil {
		return false
	}

	switch value.Kind {
	case yaml.SequenceNode:
		group := fields.DefaultGroup
		for _, item := range value.Content {
			if item.Kind == yaml.ScalarNode && fields.ValidGroup(item.Value) {
				group = item.Value
				break
			}
		}
		*value = *scalar(group)
		return true
	case yaml.ScalarNode:
		if fields.ValidGroup(value.Value) {
			return false
		}
		*value = *scalar(fields.DefaultGroup)
		return true
	}
	return false
}

func (p *Processor) fillDescription(meta *yaml.Node, body string) bool {
	if n := lookup(meta, "description"); n != nil && strings.TrimSpace(n.Value) != "" {
		return false
	}

	description := ""
	if n := lookup(meta, "excerpt"); n != nil {
		description = strings.TrimSpace(n.Value)
	}
	if description == "" {
		description = Summarize(body, DescriptionLength)
	}
	if description == "" {
		return false
	}
	set(meta, "description", scalar(description))
	return true
}

func (p *Processor) fillCategories(meta *yaml.Node) bool {
	if len(p.fallback) == 0 {
		return false
	}
	if n := lookup(meta, "categories"); n != nil && n.Kind == yaml.SequenceNode && len(n.Content) > 0 {
		return false
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, c := range p.fallback {
		seq.Content = append(seq.Content, scalar(c))
	}
	set(meta, "categories", seq)
	return true
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func set(m *yaml.Node, key string, value *yaml.Node) {
	if existing := lookup(m, key); existing != nil {
		*existing = *value
		return
	}
	m.Content = append(m.Content, scalar(key), value)
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func mapping(kv ...any) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Content = append(m.Content, scalar(kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return m
}

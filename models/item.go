// Package models defines data structures shared by the conversion stages.
package models

// Term is a taxonomy term attached to an item, e.g. a category or tag.
type Term struct {
	Domain string
	Value  string
}

// Meta is one wp:postmeta key/value pair.
type Meta struct {
	Key   string
	Value string
}

// RawItem is the record parsed from one WXR <item>. Scalar fields are kept as
// slices because the export may repeat any element; consumers use the first.
type RawItem struct {
	Title         []string
	Link          []string
	PubDate       []string
	Creator       []string
	Content       []string
	Excerpt       []string
	PostID        []string
	PostName      []string
	PostType      []string
	Status        []string
	PostParent    []string
	IsSticky      []string
	AttachmentURL []string
	PostDate      []string

	Categories []Term
	PostMeta   []Meta
}

// First returns the first element of values, reporting whether one exists.
func First(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// FirstOr returns the first element of values or fallback.
func FirstOr(values []string, fallback string) string {
	if v, ok := First(values); ok {
		return v
	}
	return fallback
}

// Meta looks up a postmeta value by key.
func (r *RawItem) Meta(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, m := range r.PostMeta {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// Terms returns the values of all terms in the given taxonomy domain.
func (r *RawItem) Terms(domain string) []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, term := range r.Categories {
		if term.Domain == domain {
			out = append(out, term.Value)
		}
	}
	return out
}

// ID is shorthand for the first post id.
func (r *RawItem) ID() string {
	if r == nil {
		return ""
	}
	return FirstOr(r.PostID, "")
}

// Type is shorthand for the first post type.
func (r *RawItem) Type() string {
	if r == nil {
		return ""
	}
	return FirstOr(r.PostType, "")
}

package frontmatter

import (
	"testing"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	return cfg
}

func fullPost() *models.Post {
	return &models.Post{
		Data: &models.RawItem{
			Title:    []string{"Grüner Tee &amp; mehr"},
			PubDate:  []string{"Tue, 02 Mar 2021 10:15:00 +0000"},
			Creator:  []string{"KRenner"},
			Excerpt:  []string{"Kurz\n\ngesagt\n"},
			PostID:   []string{"42"},
			PostName: []string{"gruener-tee"},
			PostType: []string{"post"},
			Status:   []string{"publish"},
			IsSticky: []string{"1"},
			Categories: []models.Term{
				{Domain: "category", Value: "Ern%C3%A4hrung"},
				{Domain: "category", Value: "Uncategorized"},
				{Domain: "category", Value: "Tipps &amp; Tricks"},
				{Domain: "post_tag", Value: "tee"},
				{Domain: "beitragsart", Value: "kontra"},
			},
		},
		Meta: models.PostMeta{ID: "42", Slug: "gruener-tee", Type: "post", CoverImage: "tea-cup-1024x768.jpg"},
	}
}

func extract(t *testing.T, reg *Registry, key string, post *models.Post) (any, error) {
	t.Helper()
	e, ok := reg.Lookup(key)
	require.True(t, ok, "extractor %s not registered", key)
	return e.Extract(post)
}

func TestExtractorsReturnDocumentedValues(t *testing.T) {
	reg, err := DefaultRegistry(testConfig())
	require.NoError(t, err)
	post := fullPost()

	tests := []struct {
		key  string
		want any
	}{
		{"id", 42},
		{"title", "Grüner Tee &amp; mehr"},
		{"author", "kai-renner"},
		{"slug", "gruener-tee"},
		{"excerpt", "Kurz gesagt"},
		{"pubDatetime", "2021-03-02T10:15:00Z"},
		{"modDatetime", "2021-03-02T10:15:00Z"},
		{"categories", []string{"Ernährung", "Tipps & Tricks"}},
		{"taxonomy", "kontra"},
		{"tags", []string{"tee"}},
		{"coverImage", HeroImage{Src: "./images/tea-cup.jpg", Alt: "Grüner Tee &amp; mehr"}},
		{"featured", true},
		{"type", "post"},
		{"draft", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := extract(t, reg, tt.key, post)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractorsFailOnMissingRawField(t *testing.T) {
	reg, err := DefaultRegistry(testConfig())
	require.NoError(t, err)

	post := &models.Post{Data: &models.RawItem{}, Meta: models.PostMeta{ID: "7"}}
	for _, key := range []string{"title", "slug", "excerpt", "pubDatetime", "type"} {
		t.Run(key, func(t *testing.T) {
			_, err := extract(t, reg, key, post)
			require.Error(t, err)
			assert.True(t, models.IsStage(err, models.StageTransform), "got %v", err)
		})
	}
}

func TestGroupMapping(t *testing.T) {
	assert.Equal(t, "pro", MapGroup("pro"))
	assert.Equal(t, "kontra", MapGroup("Kontra"))
	assert.Equal(t, "fragezeiten", MapGroup("unbekannt"))
	assert.Equal(t, "fragezeiten", MapGroup(""))

	reg, err := DefaultRegistry(testConfig())
	require.NoError(t, err)
	post := fullPost()
	post.Data.Categories = nil
	got, err := extract(t, reg, "taxonomy", post)
	require.NoError(t, err)
	assert.Equal(t, "fragezeiten", got)
}

func TestCategoriesFallback(t *testing.T) {
	cfg := testConfig()
	reg, err := DefaultRegistry(cfg)
	require.NoError(t, err)

	post := fullPost()
	post.Data.Categories = []models.Term{{Domain: "category", Value: "uncategorized"}}
	got, err := extract(t, reg, "categories", post)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wissenswertes"}, got)
}

func TestDateFormatting(t *testing.T) {
	post := fullPost()

	cfg := testConfig()
	cfg.IncludeTimeWithDate = false
	reg, err := DefaultRegistry(cfg)
	require.NoError(t, err)
	got, err := extract(t, reg, "pubDatetime", post)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-02", got)

	cfg = testConfig()
	cfg.CustomDateFormat = "02.01.2006 15:04"
	cfg.Timezone = "Europe/Berlin"
	reg, err = DefaultRegistry(cfg)
	require.NoError(t, err)
	got, err = extract(t, reg, "date", post)
	require.NoError(t, err)
	assert.Equal(t, "02.03.2021 11:15", got)
}

func TestRegistryCheckUnknownField(t *testing.T) {
	reg, err := DefaultRegistry(testConfig())
	require.NoError(t, err)

	_, err = NewAssembler(reg, []config.FieldSpec{{Key: "title"}, {Key: "wordCount"}})
	require.Error(t, err)
	assert.True(t, models.IsStage(err, models.StageConfig))
	assert.Contains(t, err.Error(), "wordCount")
}

func TestRegistryCheckUnknownRawField(t *testing.T) {
	reg := NewRegistry(field{key: "odd", required: []string{"nope"}, extract: func(*models.Post) (any, error) { return nil, nil }})
	err := reg.Check([]config.FieldSpec{{Key: "odd"}})
	require.Error(t, err)
	assert.True(t, models.IsStage(err, models.StageConfig))
}

func TestAssembleOrderAndAliases(t *testing.T) {
	cfg := testConfig()
	reg, err := DefaultRegistry(cfg)
	require.NoError(t, err)
	fields, err := cfg.Fields()
	require.NoError(t, err)
	asm, err := NewAssembler(reg, fields)
	require.NoError(t, err)

	post := fullPost()
	require.NoError(t, asm.Assemble(post))
	assert.Equal(t, []string{
		"id", "title", "author", "date", "pubDatetime", "modDatetime", "slug",
		"description", "categories", "group", "tags", "heroImage", "featured",
	}, post.Frontmatter.Keys())
	assert.Equal(t, 2021, post.Date.Year())
}

func TestAssembleSkipsFailingOptionalField(t *testing.T) {
	cfg := testConfig()
	reg, err := DefaultRegistry(cfg)
	require.NoError(t, err)
	asm, err := NewAssembler(reg, []config.FieldSpec{{Key: "title"}, {Key: "excerpt", Alias: "description"}, {Key: "coverImage", Alias: "heroImage"}})
	require.NoError(t, err)

	post := fullPost()
	post.Data.Excerpt = nil
	post.Meta.CoverImage = ""
	require.NoError(t, asm.Assemble(post))
	assert.Equal(t, []string{"title"}, post.Frontmatter.Keys())
}

func TestAssembleMissingPubDateFailsPost(t *testing.T) {
	cfg := testConfig()
	reg, err := DefaultRegistry(cfg)
	require.NoError(t, err)
	fields, err := cfg.Fields()
	require.NoError(t, err)
	asm, err := NewAssembler(reg, fields)
	require.NoError(t, err)

	broken := fullPost()
	broken.Data.PubDate = nil
	broken.Meta.ID = "1"
	good := fullPost()

	ok, failures := asm.AssembleAll([]*models.Post{broken, good})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error(), "publication date")
	var ce *models.ConversionError
	assert.ErrorAs(t, failures[0], &ce)
	require.Len(t, ok, 1)
	assert.Same(t, good, ok[0])
}

func TestValidate(t *testing.T) {
	fm := models.NewFrontmatter()
	fm.Set("heroImage", "just-a-string.jpg")
	fm.Set("group", "maybe")
	assert.Len(t, Validate(fm), 2)

	fm = models.NewFrontmatter()
	fm.Set("heroImage", map[string]any{"src": "./images/a.jpg"})
	fm.Set("group", "pro")
	assert.Empty(t, Validate(fm))
}

func TestRenderStableOrder(t *testing.T) {
	fm := models.NewFrontmatter()
	fm.Set("title", "Test")
	fm.Set("id", 3)
	fm.Set("tags", []string{})
	fm.Set("heroImage", HeroImage{Src: "./images/a.jpg", Alt: "A"})
	fm.Set("featured", false)

	out, err := Render(fm)
	require.NoError(t, err)
	assert.Equal(t, "title: Test\nid: 3\ntags: []\nheroImage:\n  src: ./images/a.jpg\n  alt: A\nfeatured: false\n", out)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Test", decoded["title"])
}

func TestRenderSharedValuesHaveNoAnchors(t *testing.T) {
	shared := []string{"a", "b"}
	fm := models.NewFrontmatter()
	fm.Set("categories", shared)
	fm.Set("tags", shared)

	out, err := Render(fm)
	require.NoError(t, err)
	assert.NotContains(t, out, "&")
	assert.NotContains(t, out, "*")
}

func TestDocument(t *testing.T) {
	fm := models.NewFrontmatter()
	fm.Set("title", "Test")
	doc, err := Document(fm, "Hello\n\nWorld")
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: Test\n---\n\nHello\n\nWorld\n", doc)
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds converter configuration. It is read once at start and treated
// as immutable for the rest of the run.
type Config struct {
	InputFile string
	OutputDir string

	YearFolders  bool
	MonthFolders bool
	PostFolders  bool
	TypeFolders  bool
	PrefixDate   bool

	SaveAttachedImages bool
	SaveScrapedImages  bool

	IncludeOtherTypes bool
	IncludePages      bool
	IncludeDrafts     bool

	ImageRequestDelay  time.Duration
	ImageTimeout       time.Duration
	MarkdownWriteDelay time.Duration
	StrictSSL          bool
	UserAgent          string

	IncludeTimeWithDate bool
	CustomDateFormat    string // Go reference layout, e.g. "02.01.2006"
	Timezone            string

	FrontmatterFields  []string // key or key:alias
	CategoryExclusions []string
	CategoryMapping    map[string]string
	FallbackCategories []string
	AuthorMapping      map[string]string
	DefaultAuthor      string

	OldDomain string
	NewDomain string

	DimensionCacheSize int
	MetricsFile        string

	// Force rewrites destinations that already exist.
	Force   bool
	DryRun  bool
	Verbose bool
	Quiet   bool
}

// DefaultConfig returns the defaults used by the convert command.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:           "output",
		YearFolders:         false,
		MonthFolders:        false,
		PostFolders:         true,
		TypeFolders:         false,
		PrefixDate:          true,
		SaveAttachedImages:  true,
		SaveScrapedImages:   true,
		IncludeOtherTypes:   false,
		IncludePages:        false,
		IncludeDrafts:       false,
		ImageRequestDelay:   500 * time.Millisecond,
		ImageTimeout:        30 * time.Second,
		MarkdownWriteDelay:  25 * time.Millisecond,
		StrictSSL:           true,
		UserAgent:           "wp2mdx/1.0 (+https://github.com/aluiziolira/go-wp2mdx)",
		IncludeTimeWithDate: true,
		CustomDateFormat:    "",
		Timezone:            "Europe/Berlin",
		FrontmatterFields: []string{
			"id",
			"title",
			"author",
			"date",
			"pubDatetime",
			"modDatetime",
			"slug",
			"excerpt:description",
			"categories",
			"taxonomy:group",
			"tags",
			"coverImage:heroImage",
			"featured",
		},
		CategoryExclusions: []string{"uncategorized"},
		CategoryMapping:    defaultCategoryMapping(),
		FallbackCategories: []string{"Wissenswertes"},
		AuthorMapping: map[string]string{
			"KRenner":   "kai-renner",
			"Kai":       "kai-renner",
			"Sandra":    "sandra-pfeiffer",
			"SPfeiffer": "sandra-pfeiffer",
			"admin":     "healthy-life-author",
		},
		DefaultAuthor:      "healthy-life-author",
		DimensionCacheSize: 4096,
	}
}

func defaultCategoryMapping() map[string]string {
	return map[string]string{
		"nutrition":          "Ernährung",
		"health":             "Gesundheit",
		"wellness":           "Wellness",
		"mental health":      "Lifestyle & Psyche",
		"fitness":            "Lifestyle & Psyche",
		"immune system":      "Immunsystem",
		"prevention":         "Wissenswertes",
		"natural remedies":   "Wissenswertes",
		"micronutrients":     "Mikronährstoffe",
		"organs":             "Organsysteme",
		"scientific":         "Wissenschaftliches",
		"interesting":        "Lesenswertes",
		"ernährung":          "Ernährung",
		"immunsystem":        "Immunsystem",
		"lesenswertes":       "Lesenswertes",
		"lifestyle & psyche": "Lifestyle & Psyche",
		"mikronährstoffe":    "Mikronährstoffe",
		"organsysteme":       "Organsysteme",
		"wissenschaftliches": "Wissenschaftliches",
		"wissenswertes":      "Wissenswertes",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InputFile) == "" {
		return fmt.Errorf("input file cannot be empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.ImageRequestDelay < 0 {
		return fmt.Errorf("image request delay cannot be negative")
	}
	if c.MarkdownWriteDelay < 0 {
		return fmt.Errorf("markdown write delay cannot be negative")
	}
	if c.ImageTimeout <= 0 {
		return fmt.Errorf("image timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.DimensionCacheSize <= 0 {
		return fmt.Errorf("dimension cache size must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Fields(); err != nil {
		return err
	}
	for name, raw := range map[string]string{"old domain": c.OldDomain, "new domain": c.NewDomain} {
		if raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if parsed.Host == "" {
			return fmt.Errorf("%s must include a host", name)
		}
	}
	if (c.OldDomain == "") != (c.NewDomain == "") {
		return fmt.Errorf("old domain and new domain must be set together")
	}
	return nil
}

// Location resolves the configured timezone. An empty value means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Fields parses the configured frontmatter field list.
func (c *Config) Fields() ([]FieldSpec, error) {
	return ParseFields(c.FrontmatterFields)
}

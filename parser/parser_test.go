package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-wp2mdx/models"
)

const fixture = `<?xml version="1.0" encoding="UTF-8" ?>
<rss version="2.0"
	xmlns:excerpt="http://wordpress.org/export/1.2/excerpt/"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:wfw="http://wellformedweb.org/CommentAPI/"
	xmlns:dc="http://purl.org/dc/elements/1.1/"
	xmlns:wp="http://wordpress.org/export/1.2/">
<channel>
	<title>Healthy Life</title>
	<link>https://example.com</link>
	<item>
		<title>Grüner Tee</title>
		<link>https://example.com/2021/03/gruener-tee/</link>
		<pubDate>Tue, 02 Mar 2021 10:15:00 +0000</pubDate>
		<dc:creator><![CDATA[KRenner]]></dc:creator>
		<content:encoded><![CDATA[<p>Hello</p><p>World</p>]]></content:encoded>
		<excerpt:encoded><![CDATA[Kurz
gesagt]]></excerpt:encoded>
		<wp:post_id>42</wp:post_id>
		<wp:post_date><![CDATA[2021-03-02 11:15:00]]></wp:post_date>
		<wp:post_name><![CDATA[gr%c3%bcner-tee]]></wp:post_name>
		<wp:status><![CDATA[publish]]></wp:status>
		<wp:post_parent>0</wp:post_parent>
		<wp:post_type><![CDATA[post]]></wp:post_type>
		<wp:is_sticky>1</wp:is_sticky>
		<category domain="category" nicename="ernaehrung"><![CDATA[Ernährung]]></category>
		<category domain="post_tag" nicename="tee"><![CDATA[Tee]]></category>
		<wp:postmeta>
			<wp:meta_key><![CDATA[_thumbnail_id]]></wp:meta_key>
			<wp:meta_value><![CDATA[99]]></wp:meta_value>
		</wp:postmeta>
	</item>
	<item>
		<title>tea-cup</title>
		<link>https://example.com/tea-cup/</link>
		<wp:post_id>99</wp:post_id>
		<wp:post_parent>42</wp:post_parent>
		<wp:post_type><![CDATA[attachment]]></wp:post_type>
		<wp:attachment_url><![CDATA[https://example.com/wp-content/uploads/2021/03/tea-cup.jpg]]></wp:attachment_url>
	</item>
</channel>
</rss>`

func TestParse(t *testing.T) {
	items, err := Parse(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items=%d, want 2", len(items))
	}

	post := items[0]
	checks := []struct {
		name string
		got  []string
		want string
	}{
		{"title", post.Title, "Grüner Tee"},
		{"creator", post.Creator, "KRenner"},
		{"content", post.Content, "<p>Hello</p><p>World</p>"},
		{"excerpt", post.Excerpt, "Kurz\ngesagt"},
		{"post_id", post.PostID, "42"},
		{"post_name", post.PostName, "gr%c3%bcner-tee"},
		{"status", post.Status, "publish"},
		{"post_type", post.PostType, "post"},
		{"is_sticky", post.IsSticky, "1"},
		{"post_date", post.PostDate, "2021-03-02 11:15:00"},
	}
	for _, c := range checks {
		got, ok := models.First(c.got)
		if !ok || strings.TrimSpace(got) != c.want {
			t.Fatalf("%s=%q, want %q", c.name, got, c.want)
		}
	}

	if got := post.Terms("category"); len(got) != 1 || got[0] != "Ernährung" {
		t.Fatalf("categories=%v", got)
	}
	if got := post.Terms("post_tag"); len(got) != 1 || got[0] != "Tee" {
		t.Fatalf("tags=%v", got)
	}
	if v, ok := post.Meta("_thumbnail_id"); !ok || v != "99" {
		t.Fatalf("_thumbnail_id=%q, %v", v, ok)
	}

	attachment := items[1]
	if attachment.Type() != "attachment" {
		t.Fatalf("type=%q, want attachment", attachment.Type())
	}
	if url := models.FirstOr(attachment.AttachmentURL, ""); !strings.HasSuffix(url, "tea-cup.jpg") {
		t.Fatalf("attachment url=%q", url)
	}
}

func TestParseMissingItems(t *testing.T) {
	doc := `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`
	_, err := Parse(strings.NewReader(doc))
	if err == nil {
		t.Fatalf("expected error for channel without items")
	}
	if !models.IsStage(err, models.StageParse) {
		t.Fatalf("expected parse-stage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "rss.channel.item") {
		t.Fatalf("error %q should mention rss.channel.item", err)
	}
}

func TestParseInvalidDocument(t *testing.T) {
	if _, err := Parse(strings.NewReader("this is not xml")); !models.IsStage(err, models.StageParse) {
		t.Fatalf("expected parse-stage error, got %v", err)
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile("does-not-exist.xml"); !models.IsStage(err, models.StageParse) {
		t.Fatalf("expected parse-stage error, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"Tue, 02 Mar 2021 10:15:00 +0000", time.Date(2021, 3, 2, 10, 15, 0, 0, time.UTC)},
		{"Tue, 2 Mar 2021 10:15:00 +0000", time.Date(2021, 3, 2, 10, 15, 0, 0, time.UTC)},
		{"2021-03-02T10:15:00Z", time.Date(2021, 3, 2, 10, 15, 0, 0, time.UTC)},
		{"2021-03-02 10:15:00", time.Date(2021, 3, 2, 10, 15, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseDate("yesterday"); err == nil {
		t.Fatalf("expected error for unrecognised date")
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatalf("expected error for empty date")
	}
}

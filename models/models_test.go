package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFrontmatterOrder(t *testing.T) {
	fm := NewFrontmatter()
	fm.Set("title", "A")
	fm.Set("slug", "a")
	fm.Set("tags", []string{"x"})
	fm.Set("title", "B")

	if got := strings.Join(fm.Keys(), ","); got != "title,slug,tags" {
		t.Fatalf("keys=%s, want title,slug,tags", got)
	}
	if v, _ := fm.Get("title"); v != "B" {
		t.Fatalf("title=%v, want B", v)
	}

	fm.Delete("slug")
	fm.Delete("missing")
	if got := strings.Join(fm.Keys(), ","); got != "title,tags" {
		t.Fatalf("keys=%s, want title,tags", got)
	}
	if fm.Len() != 2 {
		t.Fatalf("len=%d, want 2", fm.Len())
	}
}

func TestConversionError(t *testing.T) {
	cause := errors.New("eof")
	err := fmt.Errorf("wrapped: %w", &ConversionError{Stage: StageTransform, PostID: "9", Field: "title", Msg: "convert", Err: cause})

	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
	if !IsStage(err, StageTransform) {
		t.Fatalf("stage not detected")
	}
	if IsStage(err, StageParse) {
		t.Fatalf("wrong stage matched")
	}
	if msg := err.Error(); !strings.Contains(msg, "post 9") || !strings.Contains(msg, "field title") {
		t.Fatalf("message %q missing post or field", msg)
	}
}

func TestRawItemHelpers(t *testing.T) {
	item := &RawItem{
		PostID:     []string{"5", "6"},
		Categories: []Term{{Domain: "category", Value: "A"}, {Domain: "post_tag", Value: "B"}, {Domain: "category", Value: "C"}},
		PostMeta:   []Meta{{Key: "_thumbnail_id", Value: "12"}},
	}
	if item.ID() != "5" {
		t.Fatalf("id=%q, want 5", item.ID())
	}
	if got := item.Terms("category"); len(got) != 2 || got[1] != "C" {
		t.Fatalf("terms=%v", got)
	}
	if _, ok := item.Meta("missing"); ok {
		t.Fatalf("missing meta reported present")
	}
	if FirstOr(nil, "x") != "x" {
		t.Fatalf("FirstOr fallback not used")
	}
}

func TestTallyAdd(t *testing.T) {
	sum := Tally{OK: 2, Skipped: 1}.Add(Tally{Failed: 1, Planned: 3})
	if sum != (Tally{OK: 2, Skipped: 1, Failed: 1, Planned: 3}) {
		t.Fatalf("sum=%+v", sum)
	}
	if sum.Total() != 7 {
		t.Fatalf("total=%d, want 7", sum.Total())
	}
}

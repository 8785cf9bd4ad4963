package relay

import (
	"reflect"
	"testing"
)

func lineRows() [][]string {
	return [][]string{
		{"山手線", "やまのてせん", "東京", "とうきょう"},
		{"山手線", "やまのてせん", "新宿", "しんじゅく"},
		{"大阪環状線", "おおさかかんじょうせん", "大阪", "おおさか"},
	}
}

func TestParseRowsSections(t *testing.T) {
	rows := append(lineRows(),
		nil,
		[]string{"山手線", "やまのてせん", "東京", "とうきょう"},
	)
	c := ParseRows(rows)

	if c.Size() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Size())
	}
	if c.RemainingCount() != 2 {
		t.Errorf("expected 2 remaining, got %d", c.RemainingCount())
	}
	if !c.IsConsumed("山手線-東京") {
		t.Error("answered-section entry should be consumed")
	}
	if got := c.Consumed(); !reflect.DeepEqual(got, []string{"山手線-東京"}) {
		t.Errorf("unexpected consumed keys: %v", got)
	}
}

func TestParseRowsNoSeparator(t *testing.T) {
	c := ParseRows(lineRows())
	if c.Size() != 3 || c.RemainingCount() != 3 {
		t.Fatalf("expected 3 pending entries, got size=%d remaining=%d", c.Size(), c.RemainingCount())
	}
}

func TestParseRowsSkipsMalformed(t *testing.T) {
	rows := [][]string{
		{"東京"},            // no match cell
		{"", "とうきょう"},     // no display cell
		{"山手線", "やまのてせん", "東京", "とうきょう"},
	}
	c := ParseRows(rows)
	if c.Size() != 1 {
		t.Fatalf("expected 1 entry, got %d: %v", c.Size(), c.Remaining())
	}
}

func TestParseRowsDuplicateKeepsLater(t *testing.T) {
	rows := [][]string{
		{"山手線", "やまのてせん", "東京", "とーきょー"},
		{"山手線", "やまのてせん", "東京", "とうきょう"},
	}
	c := ParseRows(rows)
	if c.Size() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Size())
	}
	if _, ok := c.FindMatch("やまのてせんとうきょう", ""); !ok {
		t.Error("later duplicate's reading should win")
	}
	if _, ok := c.FindMatch("やまのてせんとーきょー", ""); ok {
		t.Error("earlier duplicate's reading should be gone")
	}
}

func TestFindMatchFullForm(t *testing.T) {
	c := ParseRows(lineRows())

	key, ok := c.FindMatch("やまのてせんとうきょう", "")
	if !ok || key != "山手線-東京" {
		t.Fatalf("expected 山手線-東京, got %q ok=%v", key, ok)
	}

	if _, ok := c.FindMatch("　やまのてせんとうきょう　", ""); !ok {
		t.Error("surrounding ideographic spaces should not matter")
	}
}

func TestFindMatchShortForm(t *testing.T) {
	c := ParseRows(lineRows())

	// Element alone only matches when the category carries over.
	if _, ok := c.FindMatch("しんじゅく", ""); ok {
		t.Error("short form without a previous category should miss")
	}
	if _, ok := c.FindMatch("しんじゅく", "おおさかかんじょうせん"); ok {
		t.Error("short form under the wrong category should miss")
	}
	key, ok := c.FindMatch("しんじゅく", "やまのてせん")
	if !ok || key != "山手線-新宿" {
		t.Fatalf("expected 山手線-新宿, got %q ok=%v", key, ok)
	}
}

func TestMarkUsedSkipsConsumed(t *testing.T) {
	c := ParseRows(lineRows())

	key, ok := c.MarkUsed("やまのてせんとうきょう", "")
	if !ok || key != "山手線-東京" {
		t.Fatalf("first mark: got %q ok=%v", key, ok)
	}
	if _, ok := c.MarkUsed("やまのてせんとうきょう", ""); ok {
		t.Error("consumed entry should not match again")
	}
	if c.RemainingCount() != 2 {
		t.Errorf("expected 2 remaining, got %d", c.RemainingCount())
	}
}

func TestUnmark(t *testing.T) {
	c := ParseRows(lineRows())
	c.MarkUsed("やまのてせんとうきょう", "")

	if !c.Unmark("山手線-東京") {
		t.Fatal("unmark should succeed for a consumed key")
	}
	if c.Unmark("山手線-東京") {
		t.Error("second unmark should report no change")
	}
	if _, ok := c.FindMatch("やまのてせんとうきょう", ""); !ok {
		t.Error("unmarked entry should match again")
	}
}

func TestCatalogRows(t *testing.T) {
	c := ParseRows(lineRows())
	c.MarkUsed("やまのてせんしんじゅく", "")

	want := [][]string{
		{"山手線", "やまのてせん", "東京", "とうきょう"},
		{"大阪環状線", "おおさかかんじょうせん", "大阪", "おおさか"},
		nil,
		{"山手線", "やまのてせん", "新宿", "しんじゅく"},
	}
	if got := c.Rows(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected rows:\n got %v\nwant %v", got, want)
	}

	// A save/load cycle preserves both sections.
	back := ParseRows(c.Rows())
	if back.Size() != 3 || back.RemainingCount() != 2 {
		t.Errorf("reload: size=%d remaining=%d", back.Size(), back.RemainingCount())
	}
	if !back.IsConsumed("山手線-新宿") {
		t.Error("reload should keep the answered mark")
	}
}

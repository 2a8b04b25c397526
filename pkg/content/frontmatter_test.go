package content

import (
	"strings"
	"testing"
)

func TestExtract_ValidFrontmatter(t *testing.T) {
	raw := "---\ntitle: Test Document\ncategory: basics\nprerequisites:\n  - algebra\n  - sets\n---\n\n# Content"
	fm, body := Extract(raw)

	if !fm.Present() {
		t.Fatal("expected frontmatter to be present")
	}
	if title, _ := fm.GetString("title"); title != "Test Document" {
		t.Errorf("title: got %q", title)
	}
	prereqs := fm.GetStringList("prerequisites")
	if len(prereqs) != 2 || prereqs[0] != "algebra" || prereqs[1] != "sets" {
		t.Errorf("prerequisites: got %v", prereqs)
	}
	if strings.TrimSpace(body) != "# Content" {
		t.Errorf("body: got %q", body)
	}
}

func TestExtract_NoFrontmatter(t *testing.T) {
	raw := "# Just Markdown\n\nNo metadata here."
	fm, body := Extract(raw)

	if fm.Present() || fm.HadDelimiters() {
		t.Error("expected no frontmatter")
	}
	if body != raw {
		t.Errorf("body should be untouched, got %q", body)
	}
}

func TestExtract_EmptyBlock(t *testing.T) {
	fm, body := Extract("---\n---\n\nBody content")
	if !fm.Present() {
		t.Error("empty block should count as present")
	}
	if _, ok := fm.GetString("title"); ok {
		t.Error("empty block has no fields")
	}
	if strings.TrimSpace(body) != "Body content" {
		t.Errorf("body: got %q", body)
	}
}

func TestExtract_NoClosingDelimiter(t *testing.T) {
	raw := "---\ntitle: Incomplete\n\nNo closing delimiter"
	fm, body := Extract(raw)

	if fm.Present() || fm.HadDelimiters() {
		t.Error("unterminated block should be treated as plain body")
	}
	if body != raw {
		t.Errorf("body should be untouched, got %q", body)
	}
}

func TestExtract_InvalidYAML(t *testing.T) {
	fm, body := Extract("---\n{{invalid: yaml: here}}\n---\n\nBody")
	if fm.Present() {
		t.Error("invalid YAML must not parse as present")
	}
	if !fm.HadDelimiters() {
		t.Error("delimiters were there and should be reported")
	}
	if strings.TrimSpace(body) != "Body" {
		t.Errorf("body still split off: got %q", body)
	}
}

func TestExtract_DashesInBody(t *testing.T) {
	fm, body := Extract("---\ntitle: Test\n---\n\nContent with --- dashes in it")
	if !fm.Present() {
		t.Fatal("expected frontmatter")
	}
	if !strings.Contains(body, "--- dashes") {
		t.Errorf("body mangled: %q", body)
	}
}

func TestGetStringList_NonList(t *testing.T) {
	fm, _ := Extract("---\ntitle: scalar\n---\nx")
	if got := fm.GetStringList("title"); len(got) != 0 {
		t.Errorf("scalar field should yield empty list, got %v", got)
	}
	if got := fm.GetStringList("missing"); len(got) != 0 {
		t.Errorf("missing field should yield empty list, got %v", got)
	}
}

func TestWikiLinks(t *testing.T) {
	body := "See [[calculus]] and [[linear-algebra|Linear Algebra]].\nAlso [[calculus]] again, [[ ]] empty, [[topology]]."
	got := WikiLinks(body)
	want := []string{"calculus", "linear-algebra", "topology"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWikiLinks_None(t *testing.T) {
	if got := WikiLinks("plain [markdown](link) only"); len(got) != 0 {
		t.Errorf("expected no links, got %v", got)
	}
}

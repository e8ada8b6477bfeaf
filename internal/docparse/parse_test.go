package docparse

import "testing"

func TestParseDescriptionAndExample(t *testing.T) {
	text := `
		Connects to a webhook endpoint.

		Spans two sentences when the author
		wraps the paragraph.

		Example:
			Load a saved endpoint:
			cfg := webhook.MustLoad(ctx, "incidents")
	`
	doc := Parse(text)
	want := "Connects to a webhook endpoint."
	if doc.Description != want {
		t.Fatalf("description: want %q, got %q", want, doc.Description)
	}
	wantExample := "Load a saved endpoint:\ncfg := webhook.MustLoad(ctx, \"incidents\")"
	if doc.Example != wantExample {
		t.Fatalf("example: want %q, got %q", wantExample, doc.Example)
	}
}

func TestParseJoinsWrappedFirstParagraph(t *testing.T) {
	doc := Parse("Line one\nline two.\n\nSecond paragraph is ignored.")
	if doc.Description != "Line one line two." {
		t.Fatalf("got %q", doc.Description)
	}
	if doc.Example != "" {
		t.Fatalf("unexpected example: %q", doc.Example)
	}
}

func TestParseStopsDescriptionAtSectionHeading(t *testing.T) {
	doc := Parse("Does things.\nArgs:\n    x: ignored")
	if doc.Description != "Does things." {
		t.Fatalf("got %q", doc.Description)
	}
}

func TestParseKeepsColonLinesThatAreNotSections(t *testing.T) {
	doc := Parse("Connects to a server:\nthe fast way.")
	if doc.Description != "Connects to a server: the fast way." {
		t.Fatalf("got %q", doc.Description)
	}
}

func TestParseExampleEndsAtNextSection(t *testing.T) {
	text := "Thing.\n\nExample:\n    one()\n\n    two()\nNote:\n    skipped"
	doc := Parse(text)
	if doc.Example != "one()\n\ntwo()" {
		t.Fatalf("got %q", doc.Example)
	}
}

func TestParseExamplesPluralHeading(t *testing.T) {
	doc := Parse("Thing.\n\nExamples:\n    run()")
	if doc.Example != "run()" {
		t.Fatalf("got %q", doc.Example)
	}
}

func TestParseEmpty(t *testing.T) {
	doc := Parse("")
	if doc.Description != "" || doc.Example != "" {
		t.Fatalf("got %+v", doc)
	}
}

func TestCleanStripsMarginAndEdges(t *testing.T) {
	got := Clean("  first\n\t\n    second\n      third\n")
	if got != "first\n\nsecond\n  third" {
		t.Fatalf("got %q", got)
	}
}

func TestDedentKeepsRelativeIndent(t *testing.T) {
	got := Dedent("    if ok {\n        run()\n    }\n")
	if got != "if ok {\n    run()\n}" {
		t.Fatalf("got %q", got)
	}
}

func TestDedentPreservesInteriorBlankLines(t *testing.T) {
	got := Dedent("    a()\n\n    b()")
	if got != "a()\n\nb()" {
		t.Fatalf("got %q", got)
	}
}

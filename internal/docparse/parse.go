package docparse

import "strings"

// Doc carries the pieces of a block type's doc text that feed its catalog
// entry.
type Doc struct {
	Description string
	Example     string
}

// Section titles that terminate the leading description paragraph. The set
// follows the Google doc comment convention.
var sectionTitles = map[string]struct{}{
	"args": {}, "arguments": {}, "attention": {}, "attributes": {},
	"caution": {}, "danger": {}, "error": {}, "example": {}, "examples": {},
	"hint": {}, "important": {}, "keyword args": {}, "keyword arguments": {},
	"methods": {}, "note": {}, "notes": {}, "other parameters": {},
	"parameters": {}, "raises": {}, "references": {}, "return": {},
	"returns": {}, "see also": {}, "tip": {}, "todo": {},
	"warning": {}, "warnings": {}, "warns": {}, "yield": {}, "yields": {},
}

// Parse splits doc text into the leading description paragraph and the body
// of an "Example:" or "Examples:" section, if one exists.
func Parse(text string) Doc {
	clean := Clean(text)
	if clean == "" {
		return Doc{}
	}
	lines := strings.Split(clean, "\n")
	return Doc{
		Description: firstParagraph(lines),
		Example:     exampleSection(lines),
	}
}

func firstParagraph(lines []string) string {
	var parts []string
	for _, line := range lines {
		if isHeading(line) {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, " ")
}

func exampleSection(lines []string) string {
	start := -1
	for i, line := range lines {
		if isExampleHeading(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if isHeading(lines[i]) {
			end = i
			break
		}
	}
	return Dedent(strings.Join(lines[start:end], "\n"))
}

// isHeading reports whether the line is a flush-left section title such as
// "Args:" or "Examples:".
func isHeading(line string) bool {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return false
	}
	trimmed := strings.TrimRight(line, " \t")
	if !strings.HasSuffix(trimmed, ":") {
		return false
	}
	_, ok := sectionTitles[strings.ToLower(strings.TrimSuffix(trimmed, ":"))]
	return ok
}

func isExampleHeading(line string) bool {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return false
	}
	switch strings.TrimRight(line, " \t") {
	case "Example:", "Examples:":
		return true
	}
	return false
}

// Clean normalizes whole doc text. The first line loses all of its leading
// whitespace, remaining lines lose the widest margin they share, blank-only
// lines come out empty, and leading and trailing blank lines are dropped.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	lines := splitLines(text)
	margin := commonMargin(lines[1:])
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		switch {
		case i == 0:
			line = strings.TrimLeft(line, " \t")
		case strings.TrimSpace(line) == "":
			line = ""
		case margin > 0:
			line = line[margin:]
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.Join(trimBlankEdges(out), "\n")
}

// Dedent removes the widest whitespace margin shared by all non-blank lines,
// first line included, and drops leading and trailing blank lines. Interior
// blank lines are preserved.
func Dedent(text string) string {
	if text == "" {
		return ""
	}
	lines := splitLines(text)
	margin := commonMargin(lines)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		switch {
		case strings.TrimSpace(line) == "":
			line = ""
		case margin > 0:
			line = line[margin:]
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.Join(trimBlankEdges(out), "\n")
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// commonMargin returns the smallest leading-whitespace width among non-blank
// lines, or 0 when every line is blank.
func commonMargin(lines []string) int {
	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin < 0 {
		return 0
	}
	return margin
}

func trimBlankEdges(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return lines[start:end]
}

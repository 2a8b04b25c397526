// Package content handles markdown content files: frontmatter extraction,
// wiki-link scanning, file discovery and change fingerprinting.
package content

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML metadata block at the head of a markdown file,
// delimited by "---" lines. A file without a block still yields a
// Frontmatter value; Present reports whether a valid block was parsed.
type Frontmatter struct {
	fields        map[string]any
	present       bool
	hadDelimiters bool
}

// Extract splits markdown content into frontmatter and body.
//
// If no delimiters are found the whole content is the body. If delimiters
// are present but the YAML is invalid, the body is still split off and
// Present() is false while HadDelimiters() is true, letting callers report
// the malformed block without losing the document.
func Extract(raw string) (*Frontmatter, string) {
	if !strings.HasPrefix(raw, "---") {
		return &Frontmatter{}, raw
	}

	nl := strings.IndexByte(raw[3:], '\n')
	if nl < 0 {
		return &Frontmatter{}, raw
	}
	rest := raw[3+nl+1:]

	var yamlSrc, after string
	if tail, ok := strings.CutPrefix(rest, "---"); ok {
		// Empty block: "---\n---".
		yamlSrc, after = "", tail
	} else if pos := strings.Index(rest, "\n---"); pos >= 0 {
		yamlSrc, after = rest[:pos], rest[pos+4:]
	} else {
		// Opening delimiter without a closing one: treat as plain body.
		return &Frontmatter{}, raw
	}

	body := strings.TrimPrefix(after, "\n")

	var fields map[string]any
	if err := yaml.Unmarshal([]byte(yamlSrc), &fields); err != nil {
		return &Frontmatter{hadDelimiters: true}, body
	}
	return &Frontmatter{fields: fields, present: true, hadDelimiters: true}, body
}

// Present reports whether a valid frontmatter block was parsed. An empty
// block ("---\n---") counts as present with no fields.
func (f *Frontmatter) Present() bool { return f.present }

// HadDelimiters reports whether delimiters were found, even if the YAML
// between them failed to parse.
func (f *Frontmatter) HadDelimiters() bool { return f.hadDelimiters }

// GetString returns a string field.
func (f *Frontmatter) GetString(key string) (string, bool) {
	v, ok := f.fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetStringList returns a list-of-strings field. Missing fields, scalar
// fields and non-string items yield an empty slice.
func (f *Frontmatter) GetStringList(key string) []string {
	seq, ok := f.fields[key].([]any)
	if !ok {
		return nil
	}
	items := make([]string, 0, len(seq))
	for _, item := range seq {
		if s, ok := item.(string); ok {
			items = append(items, s)
		}
	}
	return items
}

// Fields returns the raw parsed fields. The map is shared, not copied.
func (f *Frontmatter) Fields() map[string]any { return f.fields }

var wikiLinkRe = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// WikiLinks extracts `[[target]]` and `[[target|label]]` link targets from a
// markdown body, deduplicated in first-seen order.
func WikiLinks(body string) []string {
	var targets []string
	seen := map[string]bool{}
	for _, m := range wikiLinkRe.FindAllStringSubmatch(body, -1) {
		target := m[1]
		if pipe := strings.IndexByte(target, '|'); pipe >= 0 {
			target = target[:pipe]
		}
		target = strings.TrimSpace(target)
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		targets = append(targets, target)
	}
	return targets
}

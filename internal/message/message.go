// Package message renders commit messages and descriptions from templates
// with {{KEY}} placeholders.
package message

import "strings"

// Message is one template split in three parts.
type Message struct {
	Prefix  string `json:"prefix" yaml:"prefix"`
	Comment string `json:"comment" yaml:"comment"`
	Suffix  string `json:"suffix" yaml:"suffix"`
}

// Render renders every part against vars and joins them with no separator.
func (m Message) Render(vars Variables) string {
	return Render(m.Prefix, vars) + Render(m.Comment, vars) + Render(m.Suffix, vars)
}

// IsZero reports whether the template has no comment to render.
func (m Message) IsZero() bool {
	return m.Comment == ""
}

// TemplateSet holds one template per kind of change.
type TemplateSet struct {
	Create Message `json:"create" yaml:"create"`
	Modify Message `json:"modify" yaml:"modify"`
	Remove Message `json:"remove" yaml:"remove"`
	Rename Message `json:"rename" yaml:"rename"`
}

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Render replaces each {{KEY}} in tmpl with vars[KEY]. Placeholders whose key
// is absent are left as written. Substituted values are not scanned again.
func Render(tmpl string, vars Variables) string {
	if !strings.Contains(tmpl, openDelim) {
		return tmpl
	}

	var b strings.Builder
	b.Grow(len(tmpl))
	rest := tmpl
	for {
		start := strings.Index(rest, openDelim)
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+len(openDelim):], closeDelim)
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start + len(openDelim)

		key := rest[start+len(openDelim) : end]
		b.WriteString(rest[:start])
		if v, ok := vars[key]; ok {
			b.WriteString(v)
			rest = rest[end+len(closeDelim):]
			continue
		}
		// Unknown key: keep the opening braces and resume right after them so
		// an inner placeholder such as "{{ {{A}}" still resolves.
		b.WriteString(openDelim)
		rest = rest[start+len(openDelim):]
	}
	return b.String()
}

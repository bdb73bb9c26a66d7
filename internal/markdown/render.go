// Package markdown renders the small markdown subset used by documentation
// pages: fenced code blocks, three header levels, bullet and numbered list
// items, blank lines and plain paragraphs. Inline markup is left as text.
package markdown

import (
	"html"
	"regexp"
	"strings"
)

const defaultCodeLanguage = "bash"

var numberedItem = regexp.MustCompile(`^\d+\. `)

type state int

const (
	stateNormal state = iota
	stateCode
)

// Renderer walks the input line by line. The only state that spans lines is
// an open code fence.
type Renderer struct {
	out   strings.Builder
	state state
	lang  string
	code  strings.Builder
}

// Render converts src to HTML. Every piece of text is escaped.
func Render(src string) string {
	var r Renderer
	for _, line := range strings.Split(src, "\n") {
		r.line(line)
	}
	r.flush()
	return r.out.String()
}

func (r *Renderer) line(line string) {
	if strings.HasPrefix(line, "```") {
		r.fence(strings.TrimSpace(line[3:]))
		return
	}
	if r.state == stateCode {
		r.code.WriteString(line)
		r.code.WriteByte('\n')
		return
	}

	switch {
	case strings.HasPrefix(line, "# "):
		r.element("h1", line[2:])
	case strings.HasPrefix(line, "## "):
		r.element("h2", line[3:])
	case strings.HasPrefix(line, "### "):
		r.element("h3", line[4:])
	case strings.HasPrefix(line, "- "):
		r.element("li", line[2:])
	case numberedItem.MatchString(line):
		r.out.WriteString(`<li class="numbered">`)
		r.out.WriteString(html.EscapeString(numberedItem.ReplaceAllString(line, "")))
		r.out.WriteString("</li>\n")
	case strings.TrimSpace(line) == "":
		r.out.WriteString("<br/>\n")
	default:
		r.element("p", line)
	}
}

// fence opens a code block or closes the open one.
func (r *Renderer) fence(lang string) {
	if r.state == stateNormal {
		r.state = stateCode
		r.lang = lang
		if r.lang == "" {
			r.lang = defaultCodeLanguage
		}
		r.code.Reset()
		return
	}
	r.emitCode()
	r.state = stateNormal
}

func (r *Renderer) emitCode() {
	r.out.WriteString(`<pre><code class="language-`)
	r.out.WriteString(html.EscapeString(r.lang))
	r.out.WriteString(`">`)
	r.out.WriteString(html.EscapeString(strings.TrimSpace(r.code.String())))
	r.out.WriteString("</code></pre>\n")
}

// flush closes a fence left open at end of input.
func (r *Renderer) flush() {
	if r.state == stateCode {
		r.emitCode()
		r.state = stateNormal
	}
}

func (r *Renderer) element(tag, text string) {
	r.out.WriteString("<" + tag + ">")
	r.out.WriteString(html.EscapeString(text))
	r.out.WriteString("</" + tag + ">\n")
}

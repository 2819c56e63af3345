// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package report

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/ManuGH/epgnotify/internal/textwrap"
)

// RuleWidth is the width of the horizontal rule exposed to templates as .HR.
const RuleWidth = 76

//go:embed templates/*.tmpl
var builtin embed.FS

const (
	builtinText = "templates/mail.txt.tmpl"
	builtinHTML = "templates/mail.html.tmpl"
)

// Data is the root object templates are executed against.
type Data struct {
	Items       []RenderPair
	HR          string
	GeneratedAt time.Time
	Reserved    int
}

// Output is a rendered report. HTML is empty when no rich variant was asked for.
type Output struct {
	Text string
	HTML string
}

// Options selects the templates a Renderer uses.
type Options struct {
	TextTemplate string // path; empty uses the built-in template
	HTML         bool   // also render the rich variant
	HTMLTemplate string // path; empty uses the built-in template
}

// Funcs are the helpers available to both template flavours.
// wrap takes the column budget first so it reads well in pipelines:
//
//	{{ .Program.Description | wrap 72 }}
func Funcs() map[string]any {
	return map[string]any{
		"wrap":   func(columns int, text string) string { return textwrap.Reflow(text, columns) },
		"hr":     func(n int) string { return strings.Repeat("=", n) },
		"repeat": func(n int, s string) string { return strings.Repeat(s, n) },
		"width":  textwrap.StringWidth,
		"trim":   strings.TrimSpace,
		"join":   func(sep string, elems []string) string { return strings.Join(elems, sep) },
	}
}

// Renderer executes the parsed report templates.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewRenderer parses the templates chosen by opts.
func NewRenderer(opts Options) (*Renderer, error) {
	textSrc, err := readTemplate(opts.TextTemplate, builtinText)
	if err != nil {
		return nil, err
	}
	tt, err := texttemplate.New("text").
		Option("missingkey=error").
		Funcs(texttemplate.FuncMap(Funcs())).
		Parse(textSrc)
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}

	r := &Renderer{text: tt}
	if !opts.HTML {
		return r, nil
	}

	htmlSrc, err := readTemplate(opts.HTMLTemplate, builtinHTML)
	if err != nil {
		return nil, err
	}
	ht, err := htmltemplate.New("html").
		Option("missingkey=error").
		Funcs(htmltemplate.FuncMap(Funcs())).
		Parse(htmlSrc)
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	r.html = ht
	return r, nil
}

func readTemplate(path, fallback string) (string, error) {
	if path == "" {
		b, err := builtin.ReadFile(fallback)
		if err != nil {
			return "", fmt.Errorf("read built-in template: %w", err)
		}
		return string(b), nil
	}
	// #nosec G304 -- template paths are provided by the operator via CLI/config
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(b), nil
}

// Render executes the templates over pairs.
func (r *Renderer) Render(pairs []RenderPair, generatedAt time.Time) (Output, error) {
	data := Data{
		Items:       pairs,
		HR:          strings.Repeat("=", RuleWidth),
		GeneratedAt: generatedAt,
		Reserved:    CountReserved(pairs),
	}

	var out Output
	var buf bytes.Buffer
	if err := r.text.Execute(&buf, data); err != nil {
		return Output{}, fmt.Errorf("render text: %w", err)
	}
	out.Text = buf.String()

	if r.html != nil {
		buf.Reset()
		if err := r.html.Execute(&buf, data); err != nil {
			return Output{}, fmt.Errorf("render html: %w", err)
		}
		out.HTML = buf.String()
	}
	return out, nil
}

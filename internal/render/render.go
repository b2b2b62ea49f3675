// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render formats a digest as plain-text and HTML email bodies.
package render

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/pdiddy/research-digest/pkg/types"
)

const windowLayout = "2006-01-02 15:04 MST"

// view is the data passed to both templates.
type view struct {
	Digest      *types.Digest
	WindowStart string
	WindowEnd   string
}

var funcs = map[string]any{
	"inc":     func(i int) int { return i + 1 },
	"join":    func(s []string) string { return strings.Join(s, ", ") },
	"score":   func(p types.Paper) string { return fmt.Sprintf("%.1f", p.RelevanceScore) },
	"hindex":  maxHIndex,
	"upvotes": func(p types.Paper) int {
		if p.Upvotes == nil {
			return 0
		}
		return *p.Upvotes
	},
	"quality": func(p types.Paper) string {
		if p.QualityScore == nil || !p.HasQualitySignals() {
			return ""
		}
		return fmt.Sprintf("%.2f", *p.QualityScore)
	},
}

const textTmpl = `Research Digest: {{.Digest.Date}}
Window: {{.WindowStart}} to {{.WindowEnd}}
Categories: {{join .Digest.Categories}}
Interests: {{.Digest.Interests}}
Papers considered: {{.Digest.TotalPapersFetched}}, showing {{len .Digest.Papers}}
{{range $i, $p := .Digest.Papers}}
{{inc $i}}. {{$p.Title}}
   Authors: {{join $p.Authors}}
   Relevance: {{score $p}}/10{{with quality $p}}  Quality: {{.}}{{end}}{{with upvotes $p}}  Upvotes: {{.}}{{end}}{{with hindex $p}}  Max h-index: {{.}}{{end}}
   Why: {{$p.RelevanceReason}}
   {{$p.Link}}
{{end}}`

const htmlTmpl = `<!DOCTYPE html>
<html><body style="font-family: sans-serif; max-width: 760px;">
<h2>Research Digest: {{.Digest.Date}}</h2>
<p style="color:#555;">{{.WindowStart}} to {{.WindowEnd}}<br>
Categories: {{join .Digest.Categories}}<br>
Interests: {{.Digest.Interests}}<br>
Papers considered: {{.Digest.TotalPapersFetched}}, showing {{len .Digest.Papers}}</p>
<ol>
{{range .Digest.Papers}}<li style="margin-bottom: 1em;">
<a href="{{.Link}}"><strong>{{.Title}}</strong></a><br>
<span style="color:#555;">{{join .Authors}}</span><br>
Relevance: {{score .}}/10{{with quality .}} &middot; Quality: {{.}}{{end}}{{with upvotes .}} &middot; Upvotes: {{.}}{{end}}{{with hindex .}} &middot; Max h-index: {{.}}{{end}}<br>
<em>{{.RelevanceReason}}</em>
</li>
{{end}}</ol>
</body></html>
`

var (
	textT = texttemplate.Must(texttemplate.New("text").Funcs(funcs).Parse(textTmpl))
	htmlT = htmltemplate.Must(htmltemplate.New("html").Funcs(funcs).Parse(htmlTmpl))
)

// Render returns the text and HTML bodies for d covering [start, end).
func Render(d *types.Digest, start, end time.Time) (string, string, error) {
	v := view{
		Digest:      d,
		WindowStart: start.Format(windowLayout),
		WindowEnd:   end.Format(windowLayout),
	}

	var text, html bytes.Buffer
	if err := textT.Execute(&text, v); err != nil {
		return "", "", fmt.Errorf("rendering text body: %w", err)
	}
	if err := htmlT.Execute(&html, v); err != nil {
		return "", "", fmt.Errorf("rendering html body: %w", err)
	}
	return text.String(), html.String(), nil
}

func maxHIndex(p types.Paper) int {
	m := 0
	for _, h := range p.AuthorHIndices {
		m = max(m, h)
	}
	return m
}

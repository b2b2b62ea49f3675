// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"text/template"
)

// abstractBudget is the number of abstract characters included in a prompt.
const abstractBudget = 1000

// scorePromptTmpl asks for a strict JSON relevance verdict for one paper.
var scorePromptTmpl = template.Must(template.New("score").Parse(`Rate this paper's relevance to the following research interests on a scale of 1-10.
Be strict - only give 8+ for papers directly relevant to the interests.

Research interests: {{.Interests}}

Paper title: {{.Title}}
Abstract: {{.Abstract}}

Respond with ONLY a JSON object in this exact format (no other text):
{"score": <number 1-10>, "reason": "<brief 1-sentence explanation>"}`))

// renderPrompt executes the scoring template for one paper.
func renderPrompt(interests, title, abstract string) (string, error) {
	var buf bytes.Buffer
	err := scorePromptTmpl.Execute(&buf, struct{ Interests, Title, Abstract string }{
		Interests: interests,
		Title:     title,
		Abstract:  truncateRunes(abstract, abstractBudget),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var fenceExpr = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ParseScore extracts the score and reason from a model reply. The reply
// may be wrapped in a fenced code block. ok is false when the body is not
// JSON, the score is not numeric, or either key is missing. Scores outside
// the 1-10 scale are clamped into it.
func ParseScore(text string) (score float64, reason string, ok bool) {
	body := strings.TrimSpace(text)
	if strings.Contains(body, "```") {
		m := fenceExpr.FindStringSubmatch(body)
		if m == nil {
			return 0, "", false
		}
		body = m[1]
	}

	var raw struct {
		Score  json.RawMessage `json:"score"`
		Reason *string         `json:"reason"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return 0, "", false
	}
	if len(raw.Score) == 0 || string(raw.Score) == "null" || raw.Reason == nil {
		return 0, "", false
	}
	score, ok = parseNumber(raw.Score)
	if !ok {
		return 0, "", false
	}
	return min(max(score, minScore), maxScore), *raw.Reason, true
}

const (
	minScore = 1.0
	maxScore = 10.0
)

// parseNumber accepts a JSON number or a string holding one.
func parseNumber(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"
)

// idLength is the number of hex characters kept from the SHA-256 sum.
const idLength = 16

// ComputeDigestID derives the identity of one digest send from its window
// and audience. Recipients are compared case-insensitively and in any
// order; the subject template is trimmed. Equal inputs always give equal IDs.
func ComputeDigestID(windowStart, windowEnd time.Time, recipients []string, subjectTemplate string) string {
	norm := make([]string, len(recipients))
	for i, r := range recipients {
		norm[i] = strings.ToLower(strings.TrimSpace(r))
	}
	sort.Strings(norm)

	// Map keys marshal in sorted order, which keeps the encoding canonical.
	canonical := map[string]any{
		"recipients":       norm,
		"subject_template": strings.TrimSpace(subjectTemplate),
		"window_end":       isoformat(windowEnd),
		"window_start":     isoformat(windowStart),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a map of strings and string slices cannot fail.
	_ = enc.Encode(canonical)

	sum := sha256.Sum256(escapeNonASCII(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))))
	return hex.EncodeToString(sum[:])[:idLength]
}

// isoformat renders t with a numeric offset, adding microseconds only
// when present (e.g. "2024-01-15T00:00:00+00:00").
func isoformat(t time.Time) string {
	if t.Nanosecond()/1000 != 0 {
		return t.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}

// escapeNonASCII rewrites every rune above U+007F as a lowercase \uXXXX
// escape, using a surrogate pair outside the BMP. IDs recorded before the
// move to Go were hashed over ASCII-only JSON.
func escapeNonASCII(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		switch {
		case r < utf8.RuneSelf:
			out = append(out, b[0])
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			out = fmt.Appendf(out, "\\u%04x\\u%04x", r1, r2)
		default:
			out = fmt.Appendf(out, "\\u%04x", r)
		}
		b = b[size:]
	}
	return out
}

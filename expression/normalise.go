// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package expression

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`[ \t\r\n]+`)

// replacements applied after whitespace collapse, order matters
var tighten = []struct {
	from string
	to   string
}{
	{"λ ", "λ"},
	{" .", "."},
	{". ", "."},
	{"( ", "("},
	{" )", ")"},
}

// Normalise - canonical source text
//
// the digest of a definition is computed over this form so that
// formatting differences never produce distinct registry entries:
// surrounding space trimmed, internal runs collapsed, “\” accepted as
// the binder and rewritten to “λ”, space tightened around binder, body
// separator and parentheses
func Normalise(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "\\", "λ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	for _, r := range tighten {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	return s
}

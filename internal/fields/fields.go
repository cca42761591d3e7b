/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fields parses plain-text beer data sheets and applies them
// to a label's semantic text fields, so a whole batch of labels can be
// filled from one file per beer.
package fields

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"golabelmaker/internal/domain"
)

// Entry is one parsed key/value pair of a data sheet.
type Entry struct {
	Field  domain.FieldType
	Value  string
	LineNo int // 1-based line in the source
}

// Sheet is a parsed beer data sheet in source order.
type Sheet struct {
	Entries []Entry
}

// Error is a parse diagnostic with position context.
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Message) }

// Values flattens the sheet into one value per field; when a field
// appears more than once the last occurrence wins.
func (s Sheet) Values() map[domain.FieldType]string {
	out := make(map[domain.FieldType]string, len(s.Entries))
	for _, e := range s.Entries {
		out[e.Field] = e.Value
	}
	return out
}

// keyAliases maps the accepted sheet keys (lower-cased) onto the field
// vocabulary. Both the canonical camelCase names and common shorthand
// spellings are accepted.
var keyAliases = map[string]domain.FieldType{
	"breweryname": domain.FieldBreweryName,
	"brewery":     domain.FieldBreweryName,
	"beername":    domain.FieldBeerName,
	"beer":        domain.FieldBeerName,
	"name":        domain.FieldBeerName,
	"beerstyle":   domain.FieldBeerStyle,
	"style":       domain.FieldBeerStyle,
	"alcohol":     domain.FieldAlcohol,
	"abv":         domain.FieldAlcohol,
	"volume":      domain.FieldVolume,
	"vol":         domain.FieldVolume,
	"ebc":         domain.FieldEBC,
	"ibu":         domain.FieldIBU,
	"ingredients": domain.FieldIngredients,
	"address":     domain.FieldAddress,
	"custom":      domain.FieldCustom,
}

var reEntry = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 _\-]{0,63})\s*:\s*(.*)$`)

// Parse reads a data sheet. Supported syntax:
//
//   - Entries: key: value — the key resolves case-insensitively
//     against the field vocabulary and its shorthand aliases.
//   - Continuations: lines indented by 2+ spaces append to the
//     previous entry's value (multi-line ingredient lists).
//   - Notes: lines starting with ';' are skipped.
//
// Unknown keys and malformed lines produce diagnostics; parsing
// continues so one typo does not lose the rest of the sheet.
func Parse(input string) (Sheet, []Error) {
	var sh Sheet
	var errs []Error

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	var last *Entry

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		// Continuation line: appended to the previous entry.
		if strings.HasPrefix(line, "  ") && last != nil {
			if cont := strings.TrimSpace(line); cont != "" {
				last.Value += "\n" + cont
			}
			continue
		}

		trim := strings.TrimSpace(line)
		if trim == "" {
			last = nil
			continue
		}
		if strings.HasPrefix(trim, ";") {
			last = nil
			continue
		}

		m := reEntry.FindStringSubmatch(trim)
		if m == nil {
			errs = append(errs, Error{Line: lineNo, Message: fmt.Sprintf("not a key: value entry: %q", trim)})
			last = nil
			continue
		}
		key := normalizeKey(m[1])
		ft, ok := keyAliases[key]
		if !ok {
			errs = append(errs, Error{Line: lineNo, Message: fmt.Sprintf("unknown field %q", m[1])})
			last = nil
			continue
		}
		sh.Entries = append(sh.Entries, Entry{Field: ft, Value: strings.TrimSpace(m[2]), LineNo: lineNo})
		last = &sh.Entries[len(sh.Entries)-1]
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Message: err.Error()})
	}
	return sh, errs
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.ReplaceAll(k, " ", "")
	k = strings.ReplaceAll(k, "_", "")
	k = strings.ReplaceAll(k, "-", "")
	return k
}

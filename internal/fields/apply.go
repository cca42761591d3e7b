/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fields

import (
	"golabelmaker/internal/domain"
	"golabelmaker/internal/editor"
)

// ApplyOptions controls how a sheet lands in a document.
type ApplyOptions struct {
	// AddMissing creates a text element for sheet fields the document
	// does not contain yet, using the field's default style.
	AddMissing bool
}

// Report sums up one Apply run.
type Report struct {
	Updated map[domain.FieldType]int // elements touched per field
	Added   []domain.FieldType       // fields created because of AddMissing
	Skipped []domain.FieldType       // fields absent from the document
}

// Apply writes the sheet's values into the session's semantic text
// fields. Fields appearing multiple times apply in source order, so
// the last occurrence wins, matching Sheet.Values.
func Apply(s *editor.Session, sh Sheet, opts ApplyOptions) Report {
	rep := Report{Updated: make(map[domain.FieldType]int)}
	for ft, val := range sh.Values() {
		n := s.SetFieldText(ft, val)
		if n > 0 {
			rep.Updated[ft] = n
			continue
		}
		if opts.AddMissing {
			s.AddText(ft, val, nil)
			rep.Added = append(rep.Added, ft)
		} else {
			rep.Skipped = append(rep.Skipped, ft)
		}
	}
	return rep
}

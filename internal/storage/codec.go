/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"golabelmaker/internal/domain"
	applog "golabelmaker/internal/log"
)

// DocVersion is the wire format version written by Encode.
const DocVersion = 1

// ErrDecode wraps every document-level decode failure so callers can
// branch on it without string matching.
var ErrDecode = errors.New("document decode failed")

//go:embed label.schema.json
var schemaBytes []byte

// SchemaBytes exposes the embedded document schema, mainly for tools
// and tests that validate documents themselves.
func SchemaBytes() []byte { return schemaBytes }

// wireDoc is the top-level JSON document. Objects stay raw so each one
// can be filtered and decoded individually.
type wireDoc struct {
	Version       int               `json:"version"`
	Width         float64           `json:"width"`
	Height        float64           `json:"height"`
	Background    string            `json:"background,omitempty"`
	LabelWidthMM  float64           `json:"labelWidthMm,omitempty"`
	LabelHeightMM float64           `json:"labelHeightMm,omitempty"`
	Scale         float64           `json:"scale,omitempty"`
	Objects       []json.RawMessage `json:"objects"`
}

// typeAliases maps every accepted wire type name onto the closed kind
// set. Anything not in this table is dropped at load time; the list is
// an allow-list on purpose.
var typeAliases = map[string]domain.Kind{
	"text":    domain.KindText,
	"i-text":  domain.KindText,
	"textbox": domain.KindText,
	"rect":    domain.KindRect,
	"circle":  domain.KindCircle,
	"line":    domain.KindLine,
	"path":    domain.KindPath,
	"image":   domain.KindImage,
}

// Encode serializes the document. The object structs' JSON tags are
// the attribute allow-list: nothing outside them ever round-trips.
func Encode(s *domain.State) ([]byte, error) {
	doc := wireDoc{
		Version:       DocVersion,
		Width:         s.Width,
		Height:        s.Height,
		Background:    s.Background,
		LabelWidthMM:  s.LabelWidthMM,
		LabelHeightMM: s.LabelHeightMM,
		Scale:         s.Scale,
		Objects:       make([]json.RawMessage, 0, len(s.Objects)),
	}
	for _, o := range s.Objects {
		raw, err := json.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("encode object %s: %w", o.ID, err)
		}
		doc.Objects = append(doc.Objects, raw)
	}
	return json.Marshal(doc)
}

// Decode parses and validates a document. Objects with an unknown type
// or malformed payload are dropped individually — the load continues
// and each drop is reported as a warning, not an error. Only a
// document that fails structural validation outright is rejected.
func Decode(data []byte) (*domain.State, []string, error) {
	l := applog.WithComponent("storage")

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !result.Valid() {
		var warns []string
		for _, e := range result.Errors() {
			warns = append(warns, e.String())
		}
		return nil, warns, fmt.Errorf("%w: document does not conform to schema", ErrDecode)
	}

	var doc wireDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	st := &domain.State{
		Width:         doc.Width,
		Height:        doc.Height,
		Background:    doc.Background,
		LabelWidthMM:  doc.LabelWidthMM,
		LabelHeightMM: doc.LabelHeightMM,
		Scale:         doc.Scale,
	}
	var warns []string
	for i, raw := range doc.Objects {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			warns = append(warns, fmt.Sprintf("object %d: malformed, dropped", i))
			continue
		}
		kind, ok := typeAliases[head.Type]
		if !ok {
			warns = append(warns, fmt.Sprintf("object %d: unknown type %q, dropped", i, head.Type))
			l.Warn("dropping object of unknown type", slog.Int("index", i), slog.String("type", head.Type))
			continue
		}
		// Start from kind defaults so absent attributes (scale,
		// opacity) keep their neutral values.
		o := domain.NewObject(kind)
		if err := json.Unmarshal(raw, o); err != nil {
			warns = append(warns, fmt.Sprintf("object %d: malformed %s, dropped", i, kind))
			continue
		}
		o.Kind = kind // normalize aliases like i-text
		if o.ScaleX == 0 {
			o.ScaleX = 1
		}
		if o.ScaleY == 0 {
			o.ScaleY = 1
		}
		st.Append(o)
	}
	return st, warns, nil
}

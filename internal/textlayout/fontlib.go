/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// FontSpec describes a requested font in document terms.
type FontSpec struct {
	Family string
	Size   float64 // pixels
	Weight string  // normal or bold
	Italic bool
}

// Metrics provides resolved face metrics in pixels.
type Metrics struct {
	Ascent  float64
	Descent float64
}

type fontKey struct {
	family string
	bold   bool
	italic bool
}

type fontEntry struct {
	raw    []byte
	parsed *opentype.Font
}

// Library stores loaded fonts by family/weight/italic. It keeps the
// raw bytes alongside the parsed font so rasterizers that build their
// own faces can reuse the same data. Missing families degrade to the
// bundled basic face instead of blocking rendering.
type Library struct {
	mu    sync.RWMutex
	fonts map[fontKey]fontEntry
}

func NewLibrary() *Library {
	return &Library{fonts: make(map[fontKey]fontEntry)}
}

// LoadBytes registers font data under the given family and variant.
func (l *Library) LoadBytes(family, weight string, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fonts == nil {
		l.fonts = make(map[fontKey]fontEntry)
	}
	l.fonts[fontKey{family: family, bold: weight == "bold", italic: italic}] = fontEntry{raw: data, parsed: f}
	return nil
}

// LoadFile reads and registers a font file.
func (l *Library) LoadFile(family, weight string, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return l.LoadBytes(family, weight, italic, data)
}

// LoadDir loads every .ttf/.otf in dir. The family and variant come
// from the file name: "Playfair Display-BoldItalic.ttf" becomes family
// "Playfair Display", bold, italic. Returns the number of fonts loaded;
// unparsable files are skipped.
func (l *Library) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read fonts dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		family, weight, italic := parseFontName(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if err := l.LoadFile(family, weight, italic, filepath.Join(dir, e.Name())); err != nil {
			continue
		}
		n++
	}
	return n, nil
}

func parseFontName(base string) (family, weight string, italic bool) {
	family, weight = base, "normal"
	if i := strings.LastIndex(base, "-"); i > 0 {
		variant := strings.ToLower(base[i+1:])
		switch variant {
		case "bold":
			family, weight = base[:i], "bold"
		case "italic":
			family, italic = base[:i], true
		case "bolditalic", "italicbold":
			family, weight, italic = base[:i], "bold", true
		case "regular":
			family = base[:i]
		}
	}
	return family, weight, italic
}

func (l *Library) find(spec FontSpec) (fontEntry, bool) {
	if l == nil {
		return fontEntry{}, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	key := fontKey{family: spec.Family, bold: spec.Weight == "bold", italic: spec.Italic}
	if e, ok := l.fonts[key]; ok {
		return e, true
	}
	// same family, any variant
	var keys []fontKey
	for k := range l.fonts {
		if k.family == spec.Family {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return fontEntry{}, false
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].bold != keys[b].bold {
			return !keys[a].bold
		}
		return !keys[a].italic && keys[b].italic
	})
	return l.fonts[keys[0]], true
}

// Bytes returns the raw font data for the spec, with same-family
// variant fallback. ok is false when the family is not loaded at all.
func (l *Library) Bytes(spec FontSpec) ([]byte, bool) {
	e, ok := l.find(spec)
	if !ok {
		return nil, false
	}
	return e.raw, true
}

// Families lists the loaded family names, sorted.
func (l *Library) Families() []string {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for k := range l.fonts {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	sort.Strings(out)
	return out
}

// Face resolves the spec to a concrete face for measurement. Unknown
// families fall back to the bundled basic face so text always measures
// to something usable.
func (l *Library) Face(spec FontSpec) (font.Face, Metrics) {
	if spec.Size <= 0 {
		spec.Size = 12
	}
	if e, ok := l.find(spec); ok {
		face, err := opentype.NewFace(e.parsed, &opentype.FaceOptions{Size: spec.Size, DPI: 72, Hinting: font.HintingFull})
		if err == nil {
			m := face.Metrics()
			return face, Metrics{
				Ascent:  float64(m.Ascent.Round()),
				Descent: float64(m.Descent.Round()),
			}
		}
	}
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// FieldType is the semantic category of a text element tied to label
// content. It drives the element's default style and lets external
// collaborators address text by meaning rather than identity.
type FieldType string

const (
	FieldBreweryName FieldType = "breweryName"
	FieldBeerName    FieldType = "beerName"
	FieldBeerStyle   FieldType = "beerStyle"
	FieldAlcohol     FieldType = "alcohol"
	FieldVolume      FieldType = "volume"
	FieldEBC         FieldType = "ebc"
	FieldIBU         FieldType = "ibu"
	FieldIngredients FieldType = "ingredients"
	FieldAddress     FieldType = "address"
	FieldCustom      FieldType = "custom"
)

// FieldTypes lists the fixed field vocabulary in display order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldBreweryName, FieldBeerName, FieldBeerStyle, FieldAlcohol,
		FieldVolume, FieldEBC, FieldIBU, FieldIngredients, FieldAddress,
		FieldCustom,
	}
}

// KnownField reports whether ft is part of the field vocabulary.
func KnownField(ft FieldType) bool {
	for _, f := range FieldTypes() {
		if f == ft {
			return true
		}
	}
	return false
}

// Placeholder returns the sample content used when a field is added
// without text.
func Placeholder(ft FieldType) string {
	switch ft {
	case FieldBreweryName:
		return "Brewery Name"
	case FieldBeerName:
		return "Beer Name"
	case FieldBeerStyle:
		return "Beer Style"
	case FieldAlcohol:
		return "5.0% vol"
	case FieldVolume:
		return "0.33l"
	case FieldEBC:
		return "EBC 12"
	case FieldIBU:
		return "IBU 35"
	case FieldIngredients:
		return "Water, barley malt, hops, yeast"
	case FieldAddress:
		return "Street, City"
	default:
		return "Text"
	}
}

// TextStyle is a fully resolved set of text attributes.
type TextStyle struct {
	FontFamily  string
	FontSize    float64
	FontWeight  string
	FontStyle   string
	Underline   bool
	Fill        string
	TextAlign   string
	LineHeight  float64
	CharSpacing float64
	Shadow      *Shadow
}

// TextStylePatch is a partial style update. Nil fields leave the
// current value untouched. The shadow is all-or-nothing: a non-nil
// Shadow replaces, ClearShadow removes.
type TextStylePatch struct {
	FontFamily  *string
	FontSize    *float64
	FontWeight  *string
	FontStyle   *string
	Underline   *bool
	Fill        *string
	TextAlign   *string
	LineHeight  *float64
	CharSpacing *float64
	Shadow      *Shadow
	ClearShadow bool
}

// Apply merges the patch into s.
func (p TextStylePatch) Apply(s *TextStyle) {
	if p.FontFamily != nil {
		s.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		s.FontWeight = *p.FontWeight
	}
	if p.FontStyle != nil {
		s.FontStyle = *p.FontStyle
	}
	if p.Underline != nil {
		s.Underline = *p.Underline
	}
	if p.Fill != nil {
		s.Fill = *p.Fill
	}
	if p.TextAlign != nil {
		s.TextAlign = *p.TextAlign
	}
	if p.LineHeight != nil {
		s.LineHeight = *p.LineHeight
	}
	if p.CharSpacing != nil {
		s.CharSpacing = *p.CharSpacing
	}
	if p.Shadow != nil {
		sh := *p.Shadow
		s.Shadow = &sh
	} else if p.ClearShadow {
		s.Shadow = nil
	}
}

// ApplyToObject merges the patch into a text object's attributes.
func (p TextStylePatch) ApplyToObject(o *Object) {
	s := TextStyle{
		FontFamily:  o.FontFamily,
		FontSize:    o.FontSize,
		FontWeight:  o.FontWeight,
		FontStyle:   o.FontStyle,
		Underline:   o.Underline,
		Fill:        o.Fill,
		TextAlign:   o.TextAlign,
		LineHeight:  o.LineHeight,
		CharSpacing: o.CharSpacing,
		Shadow:      o.Shadow,
	}
	p.Apply(&s)
	s.CopyToObject(o)
}

// CopyToObject writes the resolved style onto a text object.
func (s TextStyle) CopyToObject(o *Object) {
	o.FontFamily = s.FontFamily
	o.FontSize = s.FontSize
	o.FontWeight = s.FontWeight
	o.FontStyle = s.FontStyle
	o.Underline = s.Underline
	o.Fill = s.Fill
	o.TextAlign = s.TextAlign
	o.LineHeight = s.LineHeight
	o.CharSpacing = s.CharSpacing
	o.Shadow = s.Shadow
}

// DefaultTextStyle is the global default every text element starts
// from before field and caller overrides.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		FontFamily:  "Montserrat",
		FontSize:    16,
		FontWeight:  "normal",
		FontStyle:   "normal",
		Fill:        "#000000",
		TextAlign:   "left",
		LineHeight:  1.16,
		CharSpacing: 0,
	}
}

// fieldDefaults holds the per-field style deviations from the global
// default. Fields without an entry use the global default as is.
var fieldDefaults = map[FieldType]TextStylePatch{
	FieldBreweryName: {FontFamily: str("Oswald"), FontSize: f64(18), FontWeight: str("bold"), TextAlign: str("center")},
	FieldBeerName:    {FontFamily: str("Playfair Display"), FontSize: f64(24), FontWeight: str("bold"), TextAlign: str("center")},
	FieldBeerStyle:   {FontSize: f64(14), FontStyle: str("italic"), TextAlign: str("center")},
	FieldAlcohol:     {FontSize: f64(12)},
	FieldVolume:      {FontSize: f64(12)},
	FieldEBC:         {FontSize: f64(11)},
	FieldIBU:         {FontSize: f64(11)},
	FieldIngredients: {FontSize: f64(9), LineHeight: f64(1.3)},
	FieldAddress:     {FontSize: f64(9), TextAlign: str("center")},
}

// StyleFor resolves the effective style for a field type: the global
// default, the field's default table entry, then caller overrides, in
// that precedence order (override wins).
func StyleFor(ft FieldType, override *TextStylePatch) TextStyle {
	s := DefaultTextStyle()
	if p, ok := fieldDefaults[ft]; ok {
		p.Apply(&s)
	}
	if override != nil {
		override.Apply(&s)
	}
	return s
}

func str(s string) *string   { return &s }
func f64(v float64) *float64 { return &v }

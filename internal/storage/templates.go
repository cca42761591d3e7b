/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"golabelmaker/internal/domain"
	"golabelmaker/internal/textlayout"
)

// Template is a named starter layout authored at a reference canvas
// size. Install rescales it to the caller's label dimensions.
type Template struct {
	Name        string
	Description string
	State       *domain.State
}

// Reference label size the built-in templates are authored at.
const (
	refLabelWMM = 90.0
	refLabelHMM = 120.0
	refScale    = 1.0
)

// Builtins returns the built-in starter templates. Each call builds
// fresh states so callers may mutate the result freely.
func Builtins() []Template {
	return []Template{
		classicTemplate(),
		minimalTemplate(),
		craftArcTemplate(),
	}
}

// Install rescales a template to the requested label dimensions and
// returns the resulting document state. The template itself is not
// modified. Curved text keeps its sweep; its arc geometry is rebuilt
// for the scaled radius.
func Install(t Template, labelWmm, labelHmm, scale float64) (*domain.State, error) {
	if t.State == nil {
		return nil, fmt.Errorf("template %q has no state", t.Name)
	}
	out := domain.NewState(labelWmm, labelHmm, scale)
	out.Background = t.State.Background
	for _, o := range t.State.Objects {
		c := o.Clone()
		out.Append(c)
	}
	domain.Rescale(out, t.State.Width, t.State.Height)
	for _, o := range out.Objects {
		if o.Kind == domain.KindText && o.Curved {
			arc := textlayout.ArcPath(o.CurveRadius, o.CurveAngle, o.CurveFlip)
			o.PathData = arc.SVG()
		}
	}
	return out, nil
}

// InstallBuiltins seeds the catalog with every built-in template that
// is not already present. Existing rows are left untouched so user
// edits survive re-seeding.
func InstallBuiltins(ctx context.Context, db *sql.DB) error {
	for _, t := range Builtins() {
		if _, err := GetTemplate(ctx, db, t.Name); err == nil {
			continue
		}
		data, err := Encode(t.State)
		if err != nil {
			return fmt.Errorf("encode builtin %q: %w", t.Name, err)
		}
		rec := TemplateRecord{Name: t.Name, Description: t.Description, Doc: data}
		if err := PutTemplate(ctx, db, rec); err != nil {
			return fmt.Errorf("seed builtin %q: %w", t.Name, err)
		}
	}
	return nil
}

func field(ft domain.FieldType, left, top, width float64) *domain.Object {
	o := domain.NewObject(domain.KindText)
	o.FieldType = ft
	o.Text = domain.Placeholder(ft)
	domain.StyleFor(ft, nil).CopyToObject(o)
	o.Left = left
	o.Top = top
	o.Width = width
	o.Height = o.FontSize * 1.4
	return o
}

func classicTemplate() Template {
	s := domain.NewState(refLabelWMM, refLabelHMM, refScale)
	s.Background = "#f5efe0"

	border := domain.NewObject(domain.KindRect)
	border.Left = 10
	border.Top = 10
	border.Width = s.Width - 20
	border.Height = s.Height - 20
	border.Fill = "transparent"
	border.Stroke = "#4a3520"
	border.StrokeWidth = 2
	border.RX = 6
	s.Append(border)

	s.Append(field(domain.FieldBreweryName, 30, 40, s.Width-60))
	s.Append(field(domain.FieldBeerName, 30, 120, s.Width-60))
	s.Append(field(domain.FieldBeerStyle, 30, 170, s.Width-60))

	rule := domain.NewObject(domain.KindLine)
	rule.X1 = 60
	rule.Y1 = 210
	rule.X2 = s.Width - 60
	rule.Y2 = 210
	rule.Stroke = "#4a3520"
	rule.StrokeWidth = 1
	s.Append(rule)

	s.Append(field(domain.FieldAlcohol, 30, s.Height-140, 100))
	s.Append(field(domain.FieldVolume, s.Width-130, s.Height-140, 100))
	s.Append(field(domain.FieldIngredients, 30, s.Height-100, s.Width-60))
	s.Append(field(domain.FieldAddress, 30, s.Height-50, s.Width-60))

	return Template{
		Name:        "classic",
		Description: "Framed layout with a full field set and a divider rule",
		State:       s,
	}
}

func minimalTemplate() Template {
	s := domain.NewState(refLabelWMM, refLabelHMM, refScale)

	s.Append(field(domain.FieldBeerName, 20, s.Height/2-40, s.Width-40))
	s.Append(field(domain.FieldAlcohol, 20, s.Height-60, s.Width-40))

	return Template{
		Name:        "minimal",
		Description: "Just the beer name and alcohol content on a white label",
		State:       s,
	}
}

func craftArcTemplate() Template {
	s := domain.NewState(refLabelWMM, refLabelHMM, refScale)
	s.Background = "#1f2a33"

	badge := domain.NewObject(domain.KindCircle)
	badge.Left = s.Width/2 - 110
	badge.Top = 60
	badge.Radius = 110
	badge.Fill = "transparent"
	badge.Stroke = "#d9b464"
	badge.StrokeWidth = 3
	s.Append(badge)

	brewery := field(domain.FieldBreweryName, s.Width/2-100, 80, 200)
	brewery.Fill = "#d9b464"
	brewery.Curved = true
	brewery.CurveRadius = 90
	brewery.CurveAngle = 140
	arc := textlayout.ArcPath(brewery.CurveRadius, brewery.CurveAngle, brewery.CurveFlip)
	brewery.PathData = arc.SVG()
	s.Append(brewery)

	name := field(domain.FieldBeerName, 20, 200, s.Width-40)
	name.Fill = "#ffffff"
	s.Append(name)

	style := field(domain.FieldBeerStyle, 20, 260, s.Width-40)
	style.Fill = "#d9b464"
	s.Append(style)

	s.Append(field(domain.FieldAlcohol, 30, s.Height-70, 100))
	s.Append(field(domain.FieldVolume, s.Width-130, s.Height-70, 100))

	return Template{
		Name:        "craft-arc",
		Description: "Dark badge layout with the brewery name set on an arc",
		State:       s,
	}
}

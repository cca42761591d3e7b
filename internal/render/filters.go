/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

// Non-destructive image filters. The decoded source bitmap is never
// touched; every render applies the object's active filter list to a
// fresh copy so toggling a filter off simply stops applying it.

import (
	"image"
	"image/draw"
	"math"

	"golabelmaker/internal/domain"
)

// ApplyFilters returns a filtered copy of src. The filter order comes
// from the object's active list; values from its remembered record.
// An empty list returns a plain copy.
func ApplyFilters(src image.Image, filters []string, fv domain.FilterValues) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	for _, f := range filters {
		switch f {
		case "brightness":
			adjustEach(dst, func(c float64) float64 { return c + fv.Brightness*255 })
		case "contrast":
			k := (1 + fv.Contrast) / (1 - clamp1(fv.Contrast))
			adjustEach(dst, func(c float64) float64 { return (c-128)*k + 128 })
		case "saturation":
			saturate(dst, fv.Saturation)
		case "grayscale":
			grayscale(dst)
		case "sepia":
			sepia(dst)
		case "invert":
			adjustEach(dst, func(c float64) float64 { return 255 - c })
		case "blur":
			boxBlur(dst, blurRadius(dst, fv.Blur))
		}
	}
	return dst
}

// clamp1 keeps the contrast divisor away from zero.
func clamp1(v float64) float64 {
	if v >= 1 {
		return 0.999
	}
	return v
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// adjustEach maps every color channel through fn, leaving alpha alone.
func adjustEach(img *image.RGBA, fn func(float64) float64) {
	p := img.Pix
	for i := 0; i < len(p); i += 4 {
		p[i] = clampByte(fn(float64(p[i])))
		p[i+1] = clampByte(fn(float64(p[i+1])))
		p[i+2] = clampByte(fn(float64(p[i+2])))
	}
}

func saturate(img *image.RGBA, amount float64) {
	p := img.Pix
	for i := 0; i < len(p); i += 4 {
		r, g, b := float64(p[i]), float64(p[i+1]), float64(p[i+2])
		luma := 0.299*r + 0.587*g + 0.114*b
		p[i] = clampByte(luma + (r-luma)*(1+amount))
		p[i+1] = clampByte(luma + (g-luma)*(1+amount))
		p[i+2] = clampByte(luma + (b-luma)*(1+amount))
	}
}

func grayscale(img *image.RGBA) {
	p := img.Pix
	for i := 0; i < len(p); i += 4 {
		luma := clampByte(0.299*float64(p[i]) + 0.587*float64(p[i+1]) + 0.114*float64(p[i+2]))
		p[i], p[i+1], p[i+2] = luma, luma, luma
	}
}

func sepia(img *image.RGBA) {
	p := img.Pix
	for i := 0; i < len(p); i += 4 {
		r, g, b := float64(p[i]), float64(p[i+1]), float64(p[i+2])
		p[i] = clampByte(0.393*r + 0.769*g + 0.189*b)
		p[i+1] = clampByte(0.349*r + 0.686*g + 0.168*b)
		p[i+2] = clampByte(0.272*r + 0.534*g + 0.131*b)
	}
}

// blurRadius maps the document's 0..1 blur value to a pixel radius
// proportional to the bitmap size.
func blurRadius(img *image.RGBA, blur float64) int {
	if blur <= 0 {
		return 0
	}
	b := img.Bounds()
	dim := math.Min(float64(b.Dx()), float64(b.Dy()))
	r := int(math.Round(blur * dim * 0.05))
	if r < 1 {
		r = 1
	}
	return r
}

// boxBlur applies a separable box blur with the given radius.
func boxBlur(img *image.RGBA, radius int) {
	if radius < 1 {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))

	// horizontal pass into tmp
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sr, sg, sb, sa, n float64
			for k := -radius; k <= radius; k++ {
				xx := x + k
				if xx < 0 || xx >= w {
					continue
				}
				i := img.PixOffset(xx, y)
				sr += float64(img.Pix[i])
				sg += float64(img.Pix[i+1])
				sb += float64(img.Pix[i+2])
				sa += float64(img.Pix[i+3])
				n++
			}
			i := tmp.PixOffset(x, y)
			tmp.Pix[i] = clampByte(sr / n)
			tmp.Pix[i+1] = clampByte(sg / n)
			tmp.Pix[i+2] = clampByte(sb / n)
			tmp.Pix[i+3] = clampByte(sa / n)
		}
	}
	// vertical pass back into img
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sr, sg, sb, sa, n float64
			for k := -radius; k <= radius; k++ {
				yy := y + k
				if yy < 0 || yy >= h {
					continue
				}
				i := tmp.PixOffset(x, yy)
				sr += float64(tmp.Pix[i])
				sg += float64(tmp.Pix[i+1])
				sb += float64(tmp.Pix[i+2])
				sa += float64(tmp.Pix[i+3])
				n++
			}
			i := img.PixOffset(x, y)
			img.Pix[i] = clampByte(sr / n)
			img.Pix[i+1] = clampByte(sg / n)
			img.Pix[i+2] = clampByte(sb / n)
			img.Pix[i+3] = clampByte(sa / n)
		}
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

// Pixel-level helpers for sprites the drawing backend cannot transform
// itself: rotated text blocks, rotated glyph cells and rotated images.
// Rotation is positive-clockwise in screen (y-down) coordinates, the
// same convention object angles use.

import (
	"image"
	"math"
	"strconv"
	"strings"
)

// parseColor accepts #rgb, #rrggbb and #rrggbbaa hex colors plus the
// keyword "transparent"; anything unreadable comes back opaque black,
// matching how the document format treats bad colors.
func parseColor(s string) (r, g, b, a float64) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "transparent" || s == "" {
		return 0, 0, 0, 0
	}
	s = strings.TrimPrefix(s, "#")
	hex := func(sub string) float64 {
		v, err := strconv.ParseUint(sub, 16, 16)
		if err != nil {
			return 0
		}
		return float64(v)
	}
	switch len(s) {
	case 3:
		return hex(s[0:1]) / 15, hex(s[1:2]) / 15, hex(s[2:3]) / 15, 1
	case 6:
		return hex(s[0:2]) / 255, hex(s[2:4]) / 255, hex(s[4:6]) / 255, 1
	case 8:
		return hex(s[0:2]) / 255, hex(s[2:4]) / 255, hex(s[4:6]) / 255, hex(s[6:8]) / 255
	default:
		return 0, 0, 0, 1
	}
}

// scaleRGBA resamples src to w x h with bilinear interpolation.
func scaleRGBA(src *image.RGBA, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	sb := src.Bounds()
	if sb.Dx() == w && sb.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sx := float64(sb.Dx()) / float64(w)
	sy := float64(sb.Dy()) / float64(h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := (float64(x) + 0.5) * sx
			py := (float64(y) + 0.5) * sy
			cr, cg, cb, ca := sampleBilinear(src, px-0.5, py-0.5)
			i := dst.PixOffset(x, y)
			dst.Pix[i] = cr
			dst.Pix[i+1] = cg
			dst.Pix[i+2] = cb
			dst.Pix[i+3] = ca
		}
	}
	return dst
}

// rotateRGBA rotates src by deg clockwise about its center into a new
// image sized to the rotated bounding box, using inverse mapping with
// bilinear sampling. Pixels outside the source stay transparent.
func rotateRGBA(src *image.RGBA, deg float64) *image.RGBA {
	if deg == 0 {
		return src
	}
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	dw := int(math.Ceil(math.Abs(sw*cos) + math.Abs(sh*sin)))
	dh := int(math.Ceil(math.Abs(sw*sin) + math.Abs(sh*cos)))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	dcx, dcy := float64(dw)/2, float64(dh)/2
	scx, scy := sw/2, sh/2
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			// inverse rotation back into source space
			rx := float64(x) + 0.5 - dcx
			ry := float64(y) + 0.5 - dcy
			px := rx*cos + ry*sin + scx - 0.5
			py := -rx*sin + ry*cos + scy - 0.5
			if px < -1 || py < -1 || px > sw || py > sh {
				continue
			}
			cr, cg, cb, ca := sampleBilinear(src, px, py)
			if ca == 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i] = cr
			dst.Pix[i+1] = cg
			dst.Pix[i+2] = cb
			dst.Pix[i+3] = ca
		}
	}
	return dst
}

// rotatedSpriteOrigin computes where a rotated sprite's top-left goes
// so that the rotation appears to happen about the unrotated block's
// top-left at (lx, ly) — the convention object bounding boxes use.
func rotatedSpriteOrigin(lx, ly, w, h, deg float64, rotated *image.RGBA) (x, y float64) {
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	// rotated position of the block center relative to the top-left
	cx := lx + (w/2)*cos - (h/2)*sin
	cy := ly + (w/2)*sin + (h/2)*cos
	rb := rotated.Bounds()
	return cx - float64(rb.Dx())/2, cy - float64(rb.Dy())/2
}

func sampleBilinear(src *image.RGBA, x, y float64) (r, g, b, a uint8) {
	sb := src.Bounds()
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	var acc [4]float64
	for dy := 0; dy <= 1; dy++ {
		for dx := 0; dx <= 1; dx++ {
			xx, yy := x0+dx, y0+dy
			if xx < sb.Min.X || yy < sb.Min.Y || xx >= sb.Max.X || yy >= sb.Max.Y {
				continue
			}
			wx := 1 - fx
			if dx == 1 {
				wx = fx
			}
			wy := 1 - fy
			if dy == 1 {
				wy = fy
			}
			wgt := wx * wy
			i := src.PixOffset(xx, yy)
			acc[0] += float64(src.Pix[i]) * wgt
			acc[1] += float64(src.Pix[i+1]) * wgt
			acc[2] += float64(src.Pix[i+2]) * wgt
			acc[3] += float64(src.Pix[i+3]) * wgt
		}
	}
	return clampByte(acc[0]), clampByte(acc[1]), clampByte(acc[2]), clampByte(acc[3])
}

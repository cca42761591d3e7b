/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golabelmaker/internal/domain"
	"golabelmaker/internal/render"
)

// PNGOptions controls single-label PNG export.
type PNGOptions struct {
	DPI int // output resolution; default 300
}

// WritePNG renders the label as a PNG at print resolution. DPI maps to
// pixel size through the label's physical width; documents without a
// physical size export at canvas resolution.
func WritePNG(st *domain.State, r *render.Renderer, w io.Writer, opt PNGOptions) error {
	dpi := opt.DPI
	if dpi <= 0 {
		dpi = 300
	}
	mult := 1.0
	if st.LabelWidthMM > 0 && st.Width > 0 {
		pxPerMM := float64(dpi) / 25.4
		mult = st.LabelWidthMM * pxPerMM / st.Width
	}
	if err := r.EncodePNG(st, w, mult); err != nil {
		return fmt.Errorf("png export: %w", err)
	}
	return nil
}

// WritePNGFile is WritePNG to a file path, creating parent directories
// as needed. A failed render leaves no partial file behind.
func WritePNGFile(st *domain.State, r *render.Renderer, outPath string, opt PNGOptions) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(st, r, f, opt); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return err
	}
	return f.Close()
}

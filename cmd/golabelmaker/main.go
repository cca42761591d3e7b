/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golabelmaker/internal/config"
	"golabelmaker/internal/crash"
	"golabelmaker/internal/domain"
	"golabelmaker/internal/editor"
	"golabelmaker/internal/export"
	"golabelmaker/internal/fields"
	applog "golabelmaker/internal/log"
	"golabelmaker/internal/storage"
	"golabelmaker/internal/templatepack"
	"golabelmaker/internal/textlayout"
	"golabelmaker/internal/version"
)

func usage() {
	fmt.Println("Go Label Maker — bottle label designer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  golabelmaker version|-v|--version                 Show version")
	fmt.Println("  golabelmaker new <dir> [-w mm] [-h mm]            Create a blank label workspace")
	fmt.Println("  golabelmaker info <dir>                           Print a workspace summary")
	fmt.Println("  golabelmaker templates <dir>                      List templates in the workspace catalog")
	fmt.Println("  golabelmaker apply <dir> -template <name>         Replace the document with a template")
	fmt.Println("  golabelmaker fill <dir> -sheet <file> [-add]      Fill text fields from a beer data sheet")
	fmt.Println("  golabelmaker render <dir> -o <file.png> [-dpi n]  Export the label as PNG")
	fmt.Println("  golabelmaker sheet <dir> -o <file.pdf> [-dpi n] [-count n] [-margin mm] [-spacing mm] [-cutmarks]")
	fmt.Println("                                                    Pack labels onto an A4 print sheet PDF")
	fmt.Println("  golabelmaker pack export <dir> <file.zip>         Export catalog templates as a pack")
	fmt.Println("  golabelmaker pack install <dir> <file.zip>        Install templates from a pack")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", cfgErr))
	}
	var dh *storage.DocumentHandle
	defer func() { crash.Recover(dh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Go Label Maker — bottle label designer")
		fmt.Println(version.String())
		return

	case "new":
		fs := flag.NewFlagSet("new", flag.ExitOnError)
		wmm := fs.Float64("w", 90, "label width in mm")
		hmm := fs.Float64("h", 120, "label height in mm")
		dir, rest := splitDir(args[2:])
		mustParse(fs, rest)
		if dir == "" {
			fmt.Println("new requires <dir>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(dir)
		l.Info("new workspace", slog.String("root", abs), slog.Float64("w_mm", *wmm), slog.Float64("h_mm", *hmm))
		h, err := storage.InitWorkspace(abs, domain.NewState(*wmm, *hmm, 1))
		if err != nil {
			fail(l, "init failed", err)
		}
		dh = h
		fmt.Println("Created label workspace at", abs)
		return

	case "info":
		h := mustOpen(l, args, &dh)
		st := h.State
		fmt.Printf("Workspace: %s\n", h.Root)
		fmt.Printf("Label: %.0f x %.0f mm (canvas %.0f x %.0f px, scale %.2f)\n",
			st.LabelWidthMM, st.LabelHeightMM, st.Width, st.Height, st.Scale)
		fmt.Printf("Objects: %d\n", len(st.Objects))
		return

	case "templates":
		h := mustOpen(l, args, &dh)
		db, err := storage.OpenCatalog(h.Root)
		if err != nil {
			fail(l, "open catalog failed", err)
		}
		defer closeDB(l, db)
		ctx := context.Background()
		if err := storage.InstallBuiltins(ctx, db); err != nil {
			fail(l, "install builtin templates failed", err)
		}
		recs, err := storage.ListTemplates(ctx, db)
		if err != nil {
			fail(l, "list templates failed", err)
		}
		for _, r := range recs {
			fmt.Printf("%-16s %s\n", r.Name, r.Description)
		}
		return

	case "apply":
		fs := flag.NewFlagSet("apply", flag.ExitOnError)
		name := fs.String("template", "", "template name from the catalog")
		dir, rest := splitDir(args[2:])
		mustParse(fs, rest)
		if dir == "" || *name == "" {
			fmt.Println("apply requires <dir> and -template <name>")
			usage()
			os.Exit(2)
		}
		h := openWorkspace(l, dir, &dh)
		db, err := storage.OpenCatalog(h.Root)
		if err != nil {
			fail(l, "open catalog failed", err)
		}
		defer closeDB(l, db)
		ctx := context.Background()
		if err := storage.InstallBuiltins(ctx, db); err != nil {
			fail(l, "install builtin templates failed", err)
		}
		rec, err := storage.GetTemplate(ctx, db, *name)
		if err != nil {
			fail(l, "template lookup failed", err)
		}
		tplState, warns, err := storage.Decode(rec.Doc)
		if err != nil {
			fail(l, "template document invalid", err)
		}
		for _, w := range warns {
			l.Warn("template object dropped", slog.String("warning", w))
		}
		st, err := storage.Install(
			storage.Template{Name: rec.Name, Description: rec.Description, State: tplState},
			h.State.LabelWidthMM, h.State.LabelHeightMM, h.State.Scale,
		)
		if err != nil {
			fail(l, "template install failed", err)
		}
		h.State = st
		if err := h.Save(); err != nil {
			fail(l, "save failed", err)
		}
		fmt.Printf("Applied template %q (%d objects)\n", rec.Name, len(st.Objects))
		return

	case "fill":
		fs := flag.NewFlagSet("fill", flag.ExitOnError)
		sheetPath := fs.String("sheet", "", "path to a beer data sheet file")
		addMissing := fs.Bool("add", false, "create text fields the document lacks")
		dir, rest := splitDir(args[2:])
		mustParse(fs, rest)
		if dir == "" || *sheetPath == "" {
			fmt.Println("fill requires <dir> and -sheet <file>")
			usage()
			os.Exit(2)
		}
		h := openWorkspace(l, dir, &dh)
		raw, err := os.ReadFile(*sheetPath)
		if err != nil {
			fail(l, "read sheet failed", err)
		}
		sh, errs := fields.Parse(string(raw))
		for _, e := range errs {
			fmt.Println("sheet:", e.Error())
		}
		s := editor.New(h.State, loadFonts(l, cfg), cfg.Editor)
		rep := fields.Apply(s, sh, fields.ApplyOptions{AddMissing: *addMissing})
		h.State = s.Snapshot()
		if err := h.Save(); err != nil {
			fail(l, "save failed", err)
		}
		for ft, n := range rep.Updated {
			fmt.Printf("updated %s (%d elements)\n", ft, n)
		}
		for _, ft := range rep.Added {
			fmt.Printf("added %s\n", ft)
		}
		for _, ft := range rep.Skipped {
			fmt.Printf("skipped %s (not in document)\n", ft)
		}
		return

	case "render":
		fs := flag.NewFlagSet("render", flag.ExitOnError)
		out := fs.String("o", "", "output PNG path")
		dpi := fs.Int("dpi", 300, "raster resolution")
		dir, rest := splitDir(args[2:])
		mustParse(fs, rest)
		if dir == "" || *out == "" {
			fmt.Println("render requires <dir> and -o <file.png>")
			usage()
			os.Exit(2)
		}
		h := openWorkspace(l, dir, &dh)
		s := editor.New(h.State, loadFonts(l, cfg), cfg.Editor)
		if err := export.WritePNGFile(s.Snapshot(), s.Renderer(), *out, export.PNGOptions{DPI: *dpi}); err != nil {
			fail(l, "png export failed", err)
		}
		fmt.Println("Wrote", *out)
		return

	case "sheet":
		fs := flag.NewFlagSet("sheet", flag.ExitOnError)
		out := fs.String("o", "", "output PDF path")
		dpi := fs.Int("dpi", 300, "raster resolution for the embedded label image")
		count := fs.Int("count", 0, "label copies on the sheet (0 = as many as fit)")
		margin := fs.Float64("margin", 10, "page margin in mm")
		spacing := fs.Float64("spacing", 4, "gap between labels in mm")
		cutmarks := fs.Bool("cutmarks", false, "draw dashed cut outlines")
		dir, rest := splitDir(args[2:])
		mustParse(fs, rest)
		if dir == "" || *out == "" {
			fmt.Println("sheet requires <dir> and -o <file.pdf>")
			usage()
			os.Exit(2)
		}
		h := openWorkspace(l, dir, &dh)
		s := editor.New(h.State, loadFonts(l, cfg), cfg.Editor)
		opt := export.SheetOptions{
			MarginMM:  *margin,
			SpacingMM: *spacing,
			CutMarks:  *cutmarks,
			Count:     *count,
			DPI:       *dpi,
		}
		if err := export.WriteSheetPDFFile(s.Snapshot(), s.Renderer(), *out, opt); err != nil {
			fail(l, "sheet export failed", err)
		}
		fmt.Println("Wrote", *out)
		return

	case "pack":
		if len(args) < 5 {
			fmt.Println("pack requires export|install <dir> <file.zip>")
			usage()
			os.Exit(2)
		}
		action, dir, zipPath := args[2], args[3], args[4]
		h := openWorkspace(l, dir, &dh)
		db, err := storage.OpenCatalog(h.Root)
		if err != nil {
			fail(l, "open catalog failed", err)
		}
		defer closeDB(l, db)
		ctx := context.Background()
		switch action {
		case "export":
			if err := templatepack.Export(ctx, db, zipPath); err != nil {
				fail(l, "pack export failed", err)
			}
			fmt.Println("Wrote", zipPath)
		case "install":
			n, err := templatepack.Install(ctx, db, zipPath)
			if err != nil {
				fail(l, "pack install failed", err)
			}
			fmt.Printf("Installed %d template(s)\n", n)
		default:
			fmt.Println("pack requires export|install")
			os.Exit(2)
		}
		return
	}

	usage()
}

// splitDir pulls the workspace dir out of a subcommand's arguments. The
// dir may come before or after the flags; everything else is handed to
// the FlagSet untouched.
func splitDir(args []string) (dir string, rest []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if len(a) > 0 && a[0] != '-' && dir == "" {
			dir = a
			continue
		}
		rest = append(rest, a)
		// flags with separate values keep their value attached
		if len(a) > 1 && a[0] == '-' && !strings.Contains(a, "=") && i+1 < len(args) && !isBoolFlag(a) {
			i++
			rest = append(rest, args[i])
		}
	}
	return dir, rest
}

func isBoolFlag(a string) bool {
	switch a {
	case "-add", "--add", "-cutmarks", "--cutmarks":
		return true
	}
	return false
}

func mustParse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
}

func mustOpen(l *slog.Logger, args []string, dh **storage.DocumentHandle) *storage.DocumentHandle {
	if len(args) < 3 {
		fmt.Printf("%s requires <dir>\n", args[1])
		usage()
		os.Exit(2)
	}
	return openWorkspace(l, args[2], dh)
}

func openWorkspace(l *slog.Logger, dir string, dh **storage.DocumentHandle) *storage.DocumentHandle {
	abs, _ := filepath.Abs(dir)
	h, warns, err := storage.Open(abs)
	if err != nil {
		fail(l, "open workspace failed", err)
	}
	for _, w := range warns {
		l.Warn("document object dropped", slog.String("warning", w))
	}
	*dh = h
	return h
}

func loadFonts(l *slog.Logger, cfg config.AppConfig) *textlayout.Library {
	lib := textlayout.NewLibrary()
	if cfg.Fonts.Dir == "" {
		return lib
	}
	n, err := lib.LoadDir(cfg.Fonts.Dir)
	if err != nil {
		l.Warn("font dir scan failed", slog.String("dir", cfg.Fonts.Dir), slog.Any("err", err))
		return lib
	}
	l.Debug("fonts loaded", slog.Int("count", n), slog.String("dir", cfg.Fonts.Dir))
	return lib
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func closeDB(l *slog.Logger, db *sql.DB) {
	if err := db.Close(); err != nil {
		l.Error("close catalog failed", slog.Any("err", err))
	}
}

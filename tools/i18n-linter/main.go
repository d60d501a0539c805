// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the translation catalogs against the code. It scans
// the Go sources for i18n.T() calls and reports keys missing from the
// primary catalog, keys missing from the other catalogs and orphaned keys.
//
// Usage:
//
//	go run ./tools/i18n-linter [-root .] [-strict]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
)

// usedKeyRe matches i18n.T("key") and i18n.T("prefix." + x). A captured
// key ending in a dot is a prefix for keys built at run time.
var usedKeyRe = regexp.MustCompile(`i18n\.T\(\s*"([a-z_]+(?:\.[a-z_]*)+)"`)

// literalKeyRe matches string literals that look like message IDs, such as
// keys chosen in a switch before calling i18n.T.
var literalKeyRe = regexp.MustCompile(`"((?:recipient|status|error|bank|operator|payments|db)\.[a-z_]+)"`)

// report is the outcome of one lint run.
type report struct {
	Used      int
	Undefined []string
	Missing   map[string][]string
	Orphaned  []string
}

func (r report) failed(strict bool) bool {
	if len(r.Undefined) > 0 || len(r.Missing) > 0 {
		return true
	}
	return strict && len(r.Orphaned) > 0
}

func main() {
	root := flag.String("root", ".", "Project root")
	strict := flag.Bool("strict", false, "Fail on orphaned keys too")
	flag.Parse()

	rep, err := lint(*root)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	printReport(os.Stdout, rep)
	if rep.failed(*strict) {
		os.Exit(1)
	}
}

// lint compares the keys used under root with the catalogs in localesDir.
func lint(root string) (report, error) {
	rep := report{Missing: map[string][]string{}}

	used, prefixes, err := findUsedKeys(root)
	if err != nil {
		return rep, fmt.Errorf("scanning sources: %w", err)
	}
	rep.Used = len(used)

	dir := filepath.Join(root, localesDir)
	primary, err := loadKeysFromLocale(filepath.Join(dir, primaryLocale))
	if err != nil {
		return rep, fmt.Errorf("loading primary locale %s: %w", primaryLocale, err)
	}

	for key := range used {
		if _, ok := primary[key]; !ok {
			rep.Undefined = append(rep.Undefined, key)
		}
	}
	for key := range primary {
		if _, ok := used[key]; ok || hasPrefix(key, prefixes) {
			continue
		}
		rep.Orphaned = append(rep.Orphaned, key)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return rep, err
	}
	for _, file := range files {
		if filepath.Base(file) == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			return rep, fmt.Errorf("loading %s: %w", file, err)
		}
		for key := range primary {
			if _, ok := keys[key]; !ok {
				rep.Missing[filepath.Base(file)] = append(rep.Missing[filepath.Base(file)], key)
			}
		}
	}

	sort.Strings(rep.Undefined)
	sort.Strings(rep.Orphaned)
	for f := range rep.Missing {
		sort.Strings(rep.Missing[f])
	}
	return rep, nil
}

func hasPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func printReport(w io.Writer, rep report) {
	fmt.Fprintf(w, "🔍 %d translation keys used in source code.\n\n", rep.Used)

	fmt.Fprintln(w, "--- Keys used in code but missing from "+primaryLocale+" ---")
	list(w, "Undefined", rep.Undefined)

	fmt.Fprintln(w, "--- Keys missing from other locales ---")
	if len(rep.Missing) == 0 {
		fmt.Fprintln(w, "  ✨ All keys present.")
	}
	files := make([]string, 0, len(rep.Missing))
	for f := range rep.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		fmt.Fprintf(w, "%s:\n", f)
		list(w, "Missing", rep.Missing[f])
	}

	fmt.Fprintln(w, "--- Orphaned keys (defined but never used) ---")
	list(w, "Orphaned", rep.Orphaned)
}

func list(w io.Writer, label string, keys []string) {
	if len(keys) == 0 {
		fmt.Fprintln(w, "  ✨ None found.")
		return
	}
	for _, k := range keys {
		fmt.Fprintf(w, "  - %s: %s\n", label, k)
	}
}

// findUsedKeys scans non-test .go files under root. It returns the full
// keys and the dynamic prefixes such as "status.".
func findUsedKeys(root string) (map[string]struct{}, []string, error) {
	keys := make(map[string]struct{})
	var prefixes []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range usedKeyRe.FindAllStringSubmatch(string(content), -1) {
			if strings.HasSuffix(m[1], ".") {
				prefixes = append(prefixes, m[1])
				continue
			}
			keys[m[1]] = struct{}{}
		}
		for _, m := range literalKeyRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, prefixes, err
}

// loadKeysFromLocale reads a catalog and returns its keys. Nested maps are
// flattened with dots, the way go-i18n reads them.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

func flattenYAML(prefix string, node any, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenYAML(next, val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}

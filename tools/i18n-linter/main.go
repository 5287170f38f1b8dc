// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter keeps the Go sources and the locale catalogs honest with each
// other. It scans the tree for i18n.T() calls, compares the keys against the
// YAML catalogs under internal/i18n/locales, and reports keys that are
// undefined in the primary catalog, orphaned there, or missing from a
// translation. String literals that look like user-facing text bypassing the
// catalog are reported as warnings.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
	sourceRoot    = "."
)

// hit records where a key or literal was seen.
type hit struct {
	file string
	line int
}

func main() {
	fmt.Println("🔍 Checking locale catalogs against the source tree...")

	tCalls, referenced, err := scanSourceKeys(sourceRoot)
	if err != nil {
		fmt.Printf("❌ scanning sources: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ %d distinct keys passed to i18n.T in source.\n", len(tCalls))

	primaryPath := filepath.Join(localesDir, primaryLocale)
	primaryKeys, err := catalogKeys(primaryPath)
	if err != nil {
		fmt.Printf("❌ loading %s: %v\n", primaryPath, err)
		os.Exit(1)
	}
	fmt.Printf("✅ %d keys in the primary catalog (%s).\n\n", len(primaryKeys), primaryLocale)

	failed := false

	// A key passed to i18n.T but absent from the primary catalog renders as
	// its raw ID at runtime.
	fmt.Printf("--- Undefined keys (used in code, absent from %s) ---\n", primaryLocale)
	var undefined []string
	for key := range tCalls {
		if _, ok := primaryKeys[key]; !ok {
			undefined = append(undefined, key)
		}
	}
	sort.Strings(undefined)
	for _, key := range undefined {
		h := tCalls[key][0]
		fmt.Printf("  ✗ %s (%s:%d)\n", key, h.file, h.line)
		failed = true
	}
	if len(undefined) == 0 {
		fmt.Println("  ✨ none")
	}

	// Orphans are tolerated but worth pruning. Key-shaped literals count as
	// references so keys routed through lookup tables are not flagged.
	fmt.Printf("\n--- Orphaned keys (in %s, never referenced) ---\n", primaryLocale)
	var orphaned []string
	for key := range primaryKeys {
		if _, ok := referenced[key]; !ok {
			orphaned = append(orphaned, key)
		}
	}
	sort.Strings(orphaned)
	for _, key := range orphaned {
		fmt.Printf("  ⚠ %s\n", key)
	}
	if len(orphaned) == 0 {
		fmt.Println("  ✨ none")
	}

	// Every translation must carry the full primary key set.
	fmt.Println("\n--- Translations missing keys ---")
	catalogs, err := filepath.Glob(filepath.Join(localesDir, "*.yaml"))
	if err != nil {
		fmt.Printf("❌ listing catalogs: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(catalogs)
	for _, path := range catalogs {
		if filepath.Base(path) == primaryLocale {
			continue
		}
		keys, err := catalogKeys(path)
		if err != nil {
			fmt.Printf("  ✗ %s: %v\n", path, err)
			failed = true
			continue
		}
		var missing []string
		for key := range primaryKeys {
			if _, ok := keys[key]; !ok {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)
		if len(missing) == 0 {
			fmt.Printf("  ✨ %s: complete\n", filepath.Base(path))
			continue
		}
		for _, key := range missing {
			fmt.Printf("  ✗ %s: missing %s\n", filepath.Base(path), key)
			failed = true
		}
	}

	// Heuristic pass, so findings here never fail the run.
	fmt.Println("\n--- Literals that look like untranslated text ---")
	bare, err := scanBareStrings(sourceRoot, primaryKeys)
	if err != nil {
		fmt.Printf("❌ scanning literals: %v\n", err)
		os.Exit(1)
	}
	var literals []string
	for lit := range bare {
		literals = append(literals, lit)
	}
	sort.Strings(literals)
	for _, lit := range literals {
		h := bare[lit][0]
		fmt.Printf("  ⚠ %q (%s:%d)\n", lit, h.file, h.line)
	}
	if len(literals) == 0 {
		fmt.Println("  ✨ none")
	}

	if failed {
		fmt.Println("\n❌ Catalogs and sources disagree.")
		os.Exit(1)
	}
	fmt.Println("\n✅ Catalogs are consistent.")
}

// walkGoFiles visits every non-test .go file under root, skipping hidden and
// underscore-prefixed directories, testdata, and this tool itself.
func walkGoFiles(root string, visit func(path string, content []byte) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "tools" || name == "testdata" {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return visit(path, content)
	})
}

var (
	tCallRe  = regexp.MustCompile(`i18n\.T\(\s*"([^"]+)"`)
	keyLitRe = regexp.MustCompile(`"([a-z]+(?:\.[a-z0-9_]+)+)"`)
)

// scanSourceKeys returns the keys passed directly to i18n.T, each with the
// locations it was seen, plus the wider set of key-shaped string literals.
// The wider set exists so keys routed through lookup tables still count as
// referenced.
func scanSourceKeys(root string) (map[string][]hit, map[string]struct{}, error) {
	direct := make(map[string][]hit)
	referenced := make(map[string]struct{})
	err := walkGoFiles(root, func(path string, content []byte) error {
		for i, line := range strings.Split(string(content), "\n") {
			for _, m := range tCallRe.FindAllStringSubmatch(line, -1) {
				direct[m[1]] = append(direct[m[1]], hit{file: path, line: i + 1})
				referenced[m[1]] = struct{}{}
			}
			for _, m := range keyLitRe.FindAllStringSubmatch(line, -1) {
				referenced[m[1]] = struct{}{}
			}
		}
		return nil
	})
	return direct, referenced, err
}

var (
	callLitRe  = regexp.MustCompile(`(?:[A-Za-z0-9_]+\.)?([A-Za-z0-9_]+)\("([^"]+)"`)
	keyShapeRe = regexp.MustCompile(`^[a-z]+(?:\.[a-z0-9_]+)+$`)
	allCapsRe  = regexp.MustCompile(`^[A-Z0-9_]+$`)

	// Logging, error wrapping, and raw printing stay English on purpose.
	ignoredCalls = map[string]struct{}{
		"Print": {}, "Println": {}, "Printf": {},
		"Fprint": {}, "Fprintln": {}, "Fprintf": {},
		"Sprint": {}, "Sprintf": {},
		"Errorf": {}, "Warnf": {}, "Infof": {}, "Debugf": {},
		"Fatal": {}, "Fatalf": {},
		"New": {}, "WriteString": {},
	}

	sqlKeywords = []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE ", "ALTER ", "DROP ", "PRAGMA "}
)

// scanBareStrings flags string literals passed to functions when they look
// like user-facing text that should go through the catalog instead.
func scanBareStrings(root string, knownKeys map[string]struct{}) (map[string][]hit, error) {
	found := make(map[string][]hit)
	err := walkGoFiles(root, func(path string, content []byte) error {
		for i, line := range strings.Split(string(content), "\n") {
			for _, m := range callLitRe.FindAllStringSubmatch(line, -1) {
				funcName, literal := m[1], m[2]
				if _, ok := ignoredCalls[funcName]; ok {
					continue
				}
				if _, ok := knownKeys[literal]; ok {
					continue
				}
				if keyShapeRe.MatchString(literal) {
					continue
				}
				if len(literal) < 4 || !looksLikeText(literal) {
					continue
				}
				if allCapsRe.MatchString(literal) {
					continue
				}
				if strings.HasPrefix(literal, "2006-") ||
					strings.HasPrefix(literal, "http") ||
					strings.HasPrefix(literal, "file:") {
					continue
				}
				if isSQL(literal) {
					continue
				}
				found[literal] = append(found[literal], hit{file: path, line: i + 1})
			}
		}
		return nil
	})
	return found, err
}

// looksLikeText reports whether a literal reads like prose rather than an
// identifier. Identifiers are single lowercase words; prose contains a space
// or starts with an upper-case letter.
func looksLikeText(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}
	if strings.Contains(s, " ") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func isSQL(s string) bool {
	upper := strings.ToUpper(s)
	for _, kw := range sqlKeywords {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

// catalogKeys reads a YAML catalog and returns its flattened key set.
func catalogKeys(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenKeys("", data, keys)
	return keys, nil
}

// flattenKeys collapses a possibly nested catalog into dot-separated keys.
// The shipped catalogs are flat already, so most entries pass straight
// through.
func flattenKeys(prefix string, node any, out map[string]struct{}) {
	m, ok := node.(map[string]any)
	if !ok {
		if prefix != "" {
			out[prefix] = struct{}{}
		}
		return
	}
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		flattenKeys(key, v, out)
	}
}

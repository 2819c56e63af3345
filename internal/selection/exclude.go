// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package selection

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CompileExclusions builds one alternation of the literal phrases.
// Phrases are matched verbatim (regexp metacharacters are escaped).
// Whitespace-only phrases are ignored; with no phrases left it returns nil,
// which NotExcluded treats as matching nothing.
func CompileExclusions(phrases []string) (*regexp.Regexp, error) {
	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if strings.TrimSpace(p) == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	if len(quoted) == 0 {
		return nil, nil
	}
	re, err := regexp.Compile(strings.Join(quoted, "|"))
	if err != nil {
		return nil, fmt.Errorf("compile exclusions: %w", err)
	}
	return re, nil
}

// ReadExclusions reads newline-delimited phrases (LF or CRLF).
// A leading UTF-8 byte order mark is dropped.
func ReadExclusions(r io.Reader) ([]string, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	sc := bufio.NewScanner(dec)
	var phrases []string
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		phrases = append(phrases, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read exclusions: %w", err)
	}
	return phrases, nil
}

// LoadExclusions reads and compiles the exclusion list at path.
func LoadExclusions(path string) (*regexp.Regexp, error) {
	path = filepath.Clean(path)
	// #nosec G304 -- the exclusion list path is provided by the operator via CLI/config
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open exclusions: %w", err)
	}
	defer func() { _ = f.Close() }()

	phrases, err := ReadExclusions(f)
	if err != nil {
		return nil, err
	}
	return CompileExclusions(phrases)
}

package wallet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aquatel/aquatel/internal/errors"
)

// ParseTNSNames parses a net-service-name mapping file into a map of
// lowercased alias to connect descriptor. The supported grammar is the
// subset the staged wallets use:
//
//	alias = descriptor
//	alias =
//	  (DESCRIPTION =
//	    (ADDRESS = ...))
//
// Descriptors may span lines while their parentheses remain open.
// Everything after # on a line is a comment.
func ParseTNSNames(r io.Reader) (map[string]string, error) {
	entries := make(map[string]string)

	var alias string
	var value strings.Builder
	depth := 0

	flush := func() {
		if alias != "" {
			entries[strings.ToLower(alias)] = strings.TrimSpace(value.String())
			alias = ""
			value.Reset()
		}
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// A new entry starts only outside an open descriptor.
		if depth == 0 && !strings.HasPrefix(trimmed, "(") {
			eq := strings.Index(trimmed, "=")
			if eq < 0 {
				return nil, fmt.Errorf("tnsnames: line %d: expected alias = descriptor, got %q", lineNo, trimmed)
			}
			name := strings.TrimSpace(trimmed[:eq])
			if !validAlias(name) {
				return nil, fmt.Errorf("tnsnames: line %d: invalid alias %q", lineNo, name)
			}
			flush()
			alias = name
			trimmed = strings.TrimSpace(trimmed[eq+1:])
			if trimmed == "" {
				continue
			}
		}

		if alias == "" {
			return nil, fmt.Errorf("tnsnames: line %d: descriptor without alias", lineNo)
		}

		if value.Len() > 0 {
			value.WriteString(" ")
		}
		value.WriteString(trimmed)

		depth += strings.Count(trimmed, "(") - strings.Count(trimmed, ")")
		if depth < 0 {
			return nil, fmt.Errorf("tnsnames: line %d: unbalanced parentheses in entry %s", lineNo, alias)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tnsnames: %w", err)
	}
	if depth != 0 {
		return nil, fmt.Errorf("tnsnames: unterminated descriptor for entry %s", alias)
	}
	flush()

	return entries, nil
}

// validAlias accepts service names like waterdb_high or waterdb.tp.
func validAlias(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return true
}

// ResolveDSN resolves a configured DSN through the staged net-service
// mapping at tnsPath. A DSN matching an alias (case-insensitive) is
// replaced by its descriptor; anything else is returned verbatim.
func ResolveDSN(tnsPath, dsn string) (string, error) {
	f, err := os.Open(tnsPath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCategoryWallet, errors.CodeArtifactMissing,
			fmt.Sprintf("opening %s", TNSFile), err)
	}
	defer f.Close()

	entries, err := ParseTNSNames(f)
	if err != nil {
		return "", errors.Wrap(errors.ErrCategoryWallet, errors.CodeArtifactMissing,
			fmt.Sprintf("parsing %s", TNSFile), err)
	}

	if descriptor, ok := entries[strings.ToLower(strings.TrimSpace(dsn))]; ok {
		return descriptor, nil
	}
	return dsn, nil
}

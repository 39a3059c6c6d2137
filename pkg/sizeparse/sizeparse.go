// Package sizeparse parses size strings like "3M" or "4Ki" into byte
// counts, the same multiplier grammar as the original tool's
// get_multiplier/process_size (decimal suffixes K/M/G/T are powers of
// 1000, an "i" suffix switches to powers of 1024).
package sizeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var sizeRe = regexp.MustCompile(`^([0-9]+(\.[0-9]+)?)([kKmMgGtT])?([iI])?$`)

// Parse converts a size string to a byte count. A bare integer (no
// suffix) is returned unchanged. Suffixes K/M/G/T multiply by
// 1000/1000^2/1000^3/1000^4; appending "i" (Ki/Mi/Gi/Ti) switches to
// the 1024-based binary multiplier instead.
func Parse(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("sizeparse: empty size string")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	m := sizeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("sizeparse: invalid size specifier %q", s)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("sizeparse: invalid size specifier %q: %w", s, err)
	}

	mult, err := multiplier(m[3], m[4] != "")
	if err != nil {
		return 0, fmt.Errorf("sizeparse: %w", err)
	}
	return int64(num * mult), nil
}

// multiplier returns the scale factor for a suffix character (k/m/g/t,
// case-insensitive); isBinary selects 1024-based powers over 1000-based.
func multiplier(char string, isBinary bool) (float64, error) {
	if char == "" {
		return 1, nil
	}
	switch strings.ToLower(char) {
	case "k":
		if isBinary {
			return 1024, nil
		}
		return 1000, nil
	case "m":
		if isBinary {
			return 1024 * 1024, nil
		}
		return 1000 * 1000, nil
	case "g":
		if isBinary {
			return 1024 * 1024 * 1024, nil
		}
		return 1000 * 1000 * 1000, nil
	case "t":
		if isBinary {
			return 1024 * 1024 * 1024 * 1024, nil
		}
		return 1000 * 1000 * 1000 * 1000, nil
	default:
		return 0, fmt.Errorf("unknown multiplier %q", char)
	}
}

package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseFirstFloat finds the first float match in the string using the provided regex.
// The regex must have at least one capture group.
func ParseFirstFloat(re *regexp.Regexp, s string) float64 {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return 0
	}
	var v float64
	fmt.Sscanf(m[1], "%f", &v)
	return v
}

// ParseKoreanNumber parses a numeric string as published on Korean
// utility sites: thousands separators and surrounding unit text are
// stripped before conversion.
func ParseKoreanNumber(s string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	re := regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	m := re.FindString(cleaned)
	if m == "" {
		return 0, fmt.Errorf("no numeric value in %q", s)
	}
	return strconv.ParseFloat(m, 64)
}

package domain

import "strings"

// ExtractLegacy returns the value of a "key|value" line whose prefix is
// "key|". A trailing HTML entity escape is cut off verbatim, e.g.
// "72&deg;" -> "72". The entity is stripped only when '&' is not the first
// character of the value and the value ends in ';'.
func ExtractLegacy(line, prefix string) Extraction {
	if !strings.HasPrefix(line, prefix) {
		return NotFound(line)
	}
	value := line[len(prefix):]
	if amp := strings.Index(value, "&"); amp > 0 && strings.HasSuffix(value, ";") {
		value = value[:amp]
	}
	return Found(value)
}

// hasLegacyKey matches lines that start with prefix.
func hasLegacyKey(prefix string) func(string) bool {
	return func(line string) bool {
		return strings.HasPrefix(line, prefix)
	}
}

// hasLegacyValue matches lines that start with prefix and carry at least one
// character after it. Used for wind_gust, which upstream sometimes sends empty.
func hasLegacyValue(prefix string) func(string) bool {
	return func(line string) bool {
		return strings.HasPrefix(line, prefix) && len(line) > len(prefix)
	}
}

package domain

import "strings"

// jsonKey builds the search key for a bare field name: temp -> "temp":
func jsonKey(name string) string {
	return `"` + name + `":`
}

// ExtractJSON returns the scalar that follows `"name":` on the line.
//
// The value ends at the first ',' or '}' after the key. A comma wins ties
// and also wins when no brace follows; with neither delimiter present the
// value runs to the end of the line. Surrounding whitespace and at most one
// leading and one trailing '"' are removed. Escapes are not interpreted.
func ExtractJSON(line, name string) Extraction {
	key := jsonKey(name)
	idx := strings.Index(line, key)
	if idx < 0 {
		return NotFound(line)
	}
	rest := line[idx+len(key):]

	end := len(rest)
	comma := strings.IndexByte(rest, ',')
	brace := strings.IndexByte(rest, '}')
	switch {
	case comma >= 0 && (brace < 0 || comma <= brace):
		end = comma
	case brace >= 0:
		end = brace
	}

	value := strings.TrimSpace(rest[:end])
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimSuffix(value, `"`)
	return Found(value)
}

func hasJSONKey(name string) func(string) bool {
	key := jsonKey(name)
	return func(line string) bool {
		return strings.Contains(line, key)
	}
}

package domain

import "strings"

// closeMarker ends an XML value. Whatever tag it closes is irrelevant: the
// last one on the line wins.
const closeMarker = "</"

// ExtractXML returns the text between openTag (e.g. "<temp_f>") and the last
// "</" on the line. If either marker is missing, or the closing marker sits
// inside the opening tag's span, the whole line comes back as NotFound.
func ExtractXML(line, openTag string) Extraction {
	start := strings.Index(line, openTag)
	if start < 0 {
		return NotFound(line)
	}
	end := strings.LastIndex(line, closeMarker)
	if end < 0 {
		return NotFound(line)
	}
	start += len(openTag)
	if end < start {
		return NotFound(line)
	}
	return Found(line[start:end])
}

func hasXMLTag(openTag string) func(string) bool {
	return func(line string) bool {
		return strings.Contains(line, openTag)
	}
}

package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// NumericMode controls whether a rule parses its extracted text as a float.
type NumericMode int

const (
	// NumericNone keeps the value as text.
	NumericNone NumericMode = iota
	// NumericRequired fails the cycle with a NumericParseError when the text
	// is not a finite number.
	NumericRequired
	// NumericOptional parses when possible and otherwise keeps the text.
	NumericOptional
)

// Rule is one detection rule: when Match accepts a line, Extract pulls the
// value for Field out of it.
type Rule struct {
	Field   FieldKey
	Format  SourceFormat
	Label   string // overrides Field.Label() when set
	Numeric NumericMode
	Match   func(line string) bool
	Extract func(line string) Extraction
}

func legacyRule(field FieldKey, prefix string, numeric NumericMode) Rule {
	return Rule{
		Field:   field,
		Format:  Legacy,
		Numeric: numeric,
		Match:   hasLegacyKey(prefix),
		Extract: func(line string) Extraction { return ExtractLegacy(line, prefix) },
	}
}

func xmlRule(field FieldKey, openTag string, numeric NumericMode) Rule {
	return Rule{
		Field:   field,
		Format:  XML,
		Numeric: numeric,
		Match:   hasXMLTag(openTag),
		Extract: func(line string) Extraction { return ExtractXML(line, openTag) },
	}
}

func jsonRule(field FieldKey, name string, numeric NumericMode) Rule {
	return Rule{
		Field:   field,
		Format:  JSON,
		Numeric: numeric,
		Match:   hasJSONKey(name),
		Extract: func(line string) Extraction { return ExtractJSON(line, name) },
	}
}

// DefaultRules returns the detection rules in evaluation order. Order is
// observable: for a field matched more than once in a payload, the last rule
// to run determines the icon temperature.
func DefaultRules() []Rule {
	gust := legacyRule(WindSpeed, "wind_gust|", NumericNone)
	gust.Match = hasLegacyValue("wind_gust|")

	forecast := legacyRule(WeatherDescription, "period_0_weather|", NumericNone)
	forecast.Label = "Forecast"

	return []Rule{
		legacyRule(Temperature, "temperature|", NumericRequired),
		xmlRule(Temperature, "<temp_f>", NumericRequired),
		jsonRule(Temperature, "temp", NumericRequired),

		gust,
		xmlRule(WindSpeed, "<wind_string>", NumericNone),
		jsonRule(WindSpeed, "speed", NumericRequired),

		jsonRule(WindDirection, "deg", NumericRequired),

		legacyRule(DewPoint, "dew_point|", NumericNone),
		xmlRule(DewPoint, "<dewpoint_f>", NumericNone),

		jsonRule(FeelsLike, "feels_like", NumericOptional),

		legacyRule(Humidity, "humidity|", NumericNone),
		xmlRule(Humidity, "<relative_humidity>", NumericNone),
		jsonRule(Humidity, "humidity", NumericRequired),

		legacyRule(Pressure, "pressure|", NumericNone),
		xmlRule(Pressure, "<pressure_in>", NumericNone),
		jsonRule(Pressure, "pressure", NumericRequired),

		legacyRule(Rainfall, "rain|", NumericNone),

		legacyRule(WeatherDescription, "current_wx|", NumericNone),
		xmlRule(WeatherDescription, "<weather>", NumericNone),
		jsonRule(WeatherDescription, "main", NumericNone),

		forecast,
	}
}

// FieldExtractor applies an ordered rule list to payload lines.
type FieldExtractor struct {
	rules []Rule
}

// NewFieldExtractor creates an extractor over rules. Pass nil to use
// DefaultRules.
func NewFieldExtractor(rules []Rule) *FieldExtractor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &FieldExtractor{rules: rules}
}

// Scan tests every rule against line, in order, and calls visit for each
// match. It does not stop at the first match. The first error, from numeric
// parsing or from visit, ends the scan.
func (e *FieldExtractor) Scan(line string, visit func(ExtractedValue) error) error {
	for _, r := range e.rules {
		if !r.Match(line) {
			continue
		}
		v, err := r.apply(line)
		if err != nil {
			return err
		}
		if err := visit(v); err != nil {
			return err
		}
	}
	return nil
}

func (r Rule) apply(line string) (ExtractedValue, error) {
	ex := r.Extract(line)
	v := ExtractedValue{
		Field:  r.Field,
		Format: r.Format,
		Label:  r.Label,
		Raw:    ex.Text(),
		Found:  ex.OK(),
	}
	if v.Label == "" {
		v.Label = r.Field.Label()
	}

	switch r.Numeric {
	case NumericRequired:
		n, err := parseNumber(v.Raw)
		if err != nil {
			return ExtractedValue{}, &NumericParseError{Field: r.Field, Format: r.Format, Text: v.Raw, Err: err}
		}
		v.Numeric = &n
	case NumericOptional:
		if n, err := parseNumber(v.Raw); err == nil {
			v.Numeric = &n
		}
	}
	return v, nil
}

var errNotFinite = errors.New("not a finite number")

// parseNumber parses a finite float, ignoring surrounding whitespace.
func parseNumber(s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errNotFinite
	}
	return n, nil
}

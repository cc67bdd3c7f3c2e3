package domain

// FieldKey identifies a metric the extractor knows how to find.
type FieldKey int

const (
	Temperature FieldKey = iota
	WindSpeed
	WindDirection
	DewPoint
	FeelsLike
	Humidity
	Pressure
	Rainfall
	WeatherDescription
)

var fieldLabels = map[FieldKey]string{
	Temperature:        "Temperature",
	WindSpeed:          "Wind Speed",
	WindDirection:      "Wind Direction",
	DewPoint:           "Dew Point",
	FeelsLike:          "Feels Like",
	Humidity:           "Humidity",
	Pressure:           "Pressure",
	Rainfall:           "Rainfall",
	WeatherDescription: "Weather",
}

// Label returns the display label used in report lines.
func (f FieldKey) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return "Unknown"
}

// String returns a snake_case name suitable for metric labels and logs.
func (f FieldKey) String() string {
	switch f {
	case Temperature:
		return "temperature"
	case WindSpeed:
		return "wind_speed"
	case WindDirection:
		return "wind_direction"
	case DewPoint:
		return "dew_point"
	case FeelsLike:
		return "feels_like"
	case Humidity:
		return "humidity"
	case Pressure:
		return "pressure"
	case Rainfall:
		return "rainfall"
	case WeatherDescription:
		return "weather_description"
	default:
		return "unknown"
	}
}

// SourceFormat is the payload format a rule reads.
type SourceFormat int

const (
	Legacy SourceFormat = iota
	XML
	JSON
)

func (s SourceFormat) String() string {
	switch s {
	case Legacy:
		return "legacy"
	case XML:
		return "xml"
	case JSON:
		return "json"
	default:
		return "unknown"
	}
}

// Extraction is the result of one extractor call. When the expected marker
// is missing the extractor reports NotFound and carries the original line,
// which callers render in place of a value.
type Extraction struct {
	value string
	found bool
}

// Found wraps a successfully extracted value.
func Found(value string) Extraction {
	return Extraction{value: value, found: true}
}

// NotFound wraps the unmodified input line.
func NotFound(line string) Extraction {
	return Extraction{value: line}
}

// OK reports whether the marker was present.
func (e Extraction) OK() bool { return e.found }

// Text returns the extracted value, or the original line for NotFound.
func (e Extraction) Text() string { return e.value }

// ExtractedValue is one rule's contribution to a report.
type ExtractedValue struct {
	Field  FieldKey
	Format SourceFormat
	Label  string
	Raw    string
	Found  bool

	// Numeric is set when the rule parses its value as a number.
	Numeric *float64
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLegacy(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		prefix string
		want   string
		found  bool
	}{
		{"plain value", "temperature|72", "temperature|", "72", true},
		{"entity stripped", "temperature|72&deg;", "temperature|", "72", true},
		{"entity at start kept", "current_wx|&amp;", "current_wx|", "&amp;", true},
		{"ampersand without semicolon kept", "current_wx|Rain & Fog", "current_wx|", "Rain & Fog", true},
		{"cut at first ampersand", "current_wx|Rain & Fog&nbsp;", "current_wx|", "Rain ", true},
		{"empty value", "rain|", "rain|", "", true},
		{"wrong prefix", "humidity|40", "temperature|", "humidity|40", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLegacy(tt.line, tt.prefix)
			assert.Equal(t, tt.want, got.Text())
			assert.Equal(t, tt.found, got.OK())
		})
	}
}

func TestHasLegacyValue_WindGustGuard(t *testing.T) {
	match := hasLegacyValue("wind_gust|")

	assert.False(t, match("wind_gust|"))
	assert.True(t, match("wind_gust|G"))
	assert.True(t, match("wind_gust|Gusts 25 MPH"))
	assert.False(t, match("wind_dir|NW"))
}

func TestExtractXML(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		tag   string
		want  string
		found bool
	}{
		{"simple", "<temp_f>68.5</temp_f>", "<temp_f>", "68.5", true},
		{"indented", "\t\t<weather>Fair</weather>", "<weather>", "Fair", true},
		{"last close marker wins", "<temp_f>68.5</temp_f><temp_c>20.3</temp_c>", "<temp_f>", "68.5</temp_f><temp_c>20.3", true},
		{"unrelated close marker", "<pressure_in>30.01</x>", "<pressure_in>", "30.01", true},
		{"missing close marker", "<temp_f>68.5", "<temp_f>", "<temp_f>68.5", false},
		{"missing open tag", "<temp_c>20.3</temp_c>", "<temp_f>", "<temp_c>20.3</temp_c>", false},
		{"close marker before open tag", "</a><temp_f>68", "<temp_f>", "</a><temp_f>68", false},
		{"empty element", "<weather></weather>", "<weather>", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractXML(tt.line, tt.tag)
			assert.Equal(t, tt.want, got.Text())
			assert.Equal(t, tt.found, got.OK())
		})
	}
}

func TestExtractJSON(t *testing.T) {
	const owm = `{"weather":[{"id":800,"main":"Clear"}],"main":{"temp":71.3,"feels_like":70.1,"pressure":1013,"humidity":40},"wind":{"speed":3.6,"deg":230}}`

	tests := []struct {
		name  string
		line  string
		key   string
		want  string
		found bool
	}{
		{"number before comma", `"temp":71.3,"feels_like":70.1`, "temp", "71.3", true},
		{"second key", `"temp":71.3,"feels_like":70.1`, "feels_like", "70.1", true},
		{"brace before comma", owm, "humidity", "40", true},
		{"last key in object", owm, "deg", "230", true},
		{"quoted string", owm, "main", "Clear", true},
		{"first occurrence only", `"main":"Rain","main":"Snow"`, "main", "Rain", true},
		{"no delimiter", `"temp":71.3`, "temp", "71.3", true},
		{"whitespace around value", `"main": "Clouds" }`, "main", "Clouds", true},
		{"escape left alone", `"main":"say \"hi\"",`, "main", `say \"hi\"`, true},
		{"object value", `"main":{"temp":1}`, "main", `{"temp":1`, true},
		{"missing key", `"temp_min":60.1,`, "temp", `"temp_min":60.1,`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.line, tt.key)
			assert.Equal(t, tt.want, got.Text())
			assert.Equal(t, tt.found, got.OK())
		})
	}
}

func TestFormatValue(t *testing.T) {
	num := func(n float64) *float64 { return &n }

	tests := []struct {
		name string
		v    ExtractedValue
		want string
	}{
		{"legacy temperature verbatim", ExtractedValue{Field: Temperature, Format: Legacy, Raw: "72", Numeric: num(72)}, "72°"},
		{"json temperature one decimal", ExtractedValue{Field: Temperature, Format: JSON, Raw: "71", Numeric: num(71)}, "71.0°"},
		{"json wind speed", ExtractedValue{Field: WindSpeed, Format: JSON, Raw: "3.6", Numeric: num(3.6)}, "3.6 MPH"},
		{"xml wind string", ExtractedValue{Field: WindSpeed, Format: XML, Raw: "Calm"}, "Calm"},
		{"json wind direction", ExtractedValue{Field: WindDirection, Format: JSON, Raw: "230", Numeric: num(230)}, "230°"},
		{"xml dew point", ExtractedValue{Field: DewPoint, Format: XML, Raw: "51.1"}, "51.1°"},
		{"json feels like", ExtractedValue{Field: FeelsLike, Format: JSON, Raw: "70.1", Numeric: num(70.1)}, "70.1°"},
		{"json feels like text", ExtractedValue{Field: FeelsLike, Format: JSON, Raw: "n/a"}, "n/a°"},
		{"humidity", ExtractedValue{Field: Humidity, Format: XML, Raw: "55"}, "55%"},
		// 1013 / 33.863889532610884 = 29.914, so two decimals give 29.91.
		{"json pressure converted", ExtractedValue{Field: Pressure, Format: JSON, Raw: "1013", Numeric: num(1013)}, "29.91 inches"},
		{"json standard pressure", ExtractedValue{Field: Pressure, Format: JSON, Raw: "1013.25", Numeric: num(1013.25)}, "29.92 inches"},
		{"xml pressure", ExtractedValue{Field: Pressure, Format: XML, Raw: "30.01"}, "30.01 inches"},
		{"legacy pressure", ExtractedValue{Field: Pressure, Format: Legacy, Raw: "30.01"}, "30.01"},
		{"rainfall", ExtractedValue{Field: Rainfall, Format: Legacy, Raw: "0.12"}, "0.12 inches"},
		{"description", ExtractedValue{Field: WeatherDescription, Format: JSON, Raw: "Clear"}, "Clear"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.v))
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, int64(69), RoundHalfUp(68.5))
	assert.Equal(t, int64(68), RoundHalfUp(68.49))
	assert.Equal(t, int64(72), RoundHalfUp(72))
	assert.Equal(t, int64(-3), RoundHalfUp(-2.5))
	assert.Equal(t, int64(0), RoundHalfUp(0.4))
}

func TestFieldKeyLabels(t *testing.T) {
	assert.Equal(t, "Wind Speed", WindSpeed.Label())
	assert.Equal(t, "Weather", WeatherDescription.Label())
	assert.Equal(t, "wind_speed", WindSpeed.String())
	assert.Equal(t, "Unknown", FieldKey(99).Label())
	assert.Equal(t, "json", JSON.String())
}

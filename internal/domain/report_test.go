package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	legacyPayload = "temperature|72&deg;\n" +
		"wind_gust|\n" +
		"wind_gust|Gusts 25 MPH\n" +
		"dew_point|51\n" +
		"humidity|40\n" +
		"pressure|30.01\n" +
		"rain|0.00\n" +
		"current_wx|Fair\n" +
		"period_0_weather|Sunny, high 80\n"

	xmlPayload = "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\r\n" +
		"<current_observation version=\"1.0\">\r\n" +
		"\t<weather>Fair</weather>\r\n" +
		"\t<temp_f>68.5</temp_f>\r\n" +
		"\t<relative_humidity>55</relative_humidity>\r\n" +
		"\t<wind_string>Northwest at 9.2 MPH (8 KT)</wind_string>\r\n" +
		"\t<pressure_in>30.01</pressure_in>\r\n" +
		"\t<dewpoint_f>51.1</dewpoint_f>\r\n" +
		"</current_observation>\r\n"

	jsonPayload = `{"coord":{"lon":-76.67,"lat":39.18},"weather":[{"id":800,"main":"Clear","description":"clear sky"}],` +
		`"main":{"temp":71.3,"feels_like":70.1,"temp_min":69.8,"temp_max":73.4,"pressure":1013,"humidity":40},` +
		`"wind":{"speed":3.6,"deg":230},"name":"Baltimore"}`
)

func build(t *testing.T, payload string) Report {
	t.Helper()
	r, err := BuildReport(payload, NewFieldExtractor(nil), DefaultHeader)
	require.NoError(t, err)
	return r
}

func assertLines(t *testing.T, want []string, r Report) {
	t.Helper()
	if diff := cmp.Diff(want, r.Lines); diff != "" {
		t.Fatalf("report lines mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildReport_Legacy(t *testing.T) {
	r := build(t, legacyPayload)

	assertLines(t, []string{
		"Temperature: 72°",
		"Wind Speed: Gusts 25 MPH",
		"Dew Point: 51°",
		"Humidity: 40%",
		"Pressure: 30.01",
		"Rainfall: 0.00 inches",
		"Weather: Fair",
		"Forecast: Sunny, high 80",
	}, r)
	require.NotNil(t, r.IconTemperature)
	assert.Equal(t, int64(72), *r.IconTemperature)
	assert.Equal(t, "72°", r.IconLabel())
}

func TestBuildReport_XML(t *testing.T) {
	r := build(t, xmlPayload)

	assertLines(t, []string{
		"Weather: Fair",
		"Temperature: 68.5°",
		"Humidity: 55%",
		"Wind Speed: Northwest at 9.2 MPH (8 KT)",
		"Pressure: 30.01 inches",
		"Dew Point: 51.1°",
	}, r)
	require.NotNil(t, r.IconTemperature)
	assert.Equal(t, int64(69), *r.IconTemperature)
}

func TestBuildReport_JSON(t *testing.T) {
	r := build(t, jsonPayload)

	assertLines(t, []string{
		"Temperature: 71.3°",
		"Wind Speed: 3.6 MPH",
		"Wind Direction: 230°",
		"Feels Like: 70.1°",
		"Humidity: 40%",
		"Pressure: 29.91 inches",
		"Weather: Clear",
	}, r)
	require.NotNil(t, r.IconTemperature)
	assert.Equal(t, int64(71), *r.IconTemperature)
	assert.Equal(t, []FieldKey{Temperature, WindSpeed, WindDirection, FeelsLike, Humidity, Pressure, WeatherDescription}, r.Fields)
}

func TestBuildReport_NoRecognizedLines(t *testing.T) {
	r := build(t, "hello\nworld\n")

	assert.Equal(t, DefaultHeader, r.Text())
	assert.Empty(t, r.Lines)
	assert.Nil(t, r.IconTemperature)
	assert.Equal(t, "?°", r.IconLabel())
	assert.Equal(t, 3, r.Scanned)
}

func TestBuildReport_Text(t *testing.T) {
	r := build(t, "temperature|72\nhumidity|40")

	assert.Equal(t, "Weather Conditions:\nTemperature: 72°\nHumidity: 40%", r.Text())
}

func TestBuildReport_DuplicateFieldsAcrossFormats(t *testing.T) {
	payload := "<temp_f>68.5</temp_f>\n" + `"temp":71.6,"humidity":40`

	r := build(t, payload)

	assertLines(t, []string{
		"Temperature: 68.5°",
		"Temperature: 71.6°",
		"Humidity: 40%",
	}, r)
	require.NotNil(t, r.IconTemperature)
	assert.Equal(t, int64(72), *r.IconTemperature, "last temperature rule to run wins")
}

func TestBuildReport_AllRulesTestedOnSameLine(t *testing.T) {
	// One line satisfies both the XML and the JSON temperature rule. The JSON
	// rule is declared later, so it sets the icon.
	payload := `<temp_f>68.5</temp_f> "temp":75.2,`

	r := build(t, payload)

	assertLines(t, []string{
		"Temperature: 68.5°",
		"Temperature: 75.2°",
	}, r)
	require.NotNil(t, r.IconTemperature)
	assert.Equal(t, int64(75), *r.IconTemperature)
}

func TestBuildReport_DegenerateValueRendersLine(t *testing.T) {
	r := build(t, "<weather>Fair")

	assertLines(t, []string{"Weather: <weather>Fair"}, r)
}

func TestBuildReport_NumericParseError(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   FieldKey
		format  SourceFormat
	}{
		{"xml temperature text", "<temp_f>N/A</temp_f>", Temperature, XML},
		{"xml temperature without close marker", "<temp_f>68.5", Temperature, XML},
		{"legacy temperature text", "temperature|warm", Temperature, Legacy},
		{"json temperature string", `"temp":"abc",`, Temperature, JSON},
		{"json humidity", `"humidity":"high"}`, Humidity, JSON},
		{"json pressure", `"pressure":NaN,`, Pressure, JSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := "humidity|40\n" + tt.payload + "\nrain|0.1"
			r, err := BuildReport(payload, NewFieldExtractor(nil), DefaultHeader)

			require.Error(t, err)
			var perr *NumericParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.field, perr.Field)
			assert.Equal(t, tt.format, perr.Format)
			assert.Empty(t, r.Lines, "partial report must be discarded")
			assert.Nil(t, r.IconTemperature)
		})
	}
}

func TestBuildReport_FeelsLikeNotNumeric(t *testing.T) {
	r := build(t, `"feels_like":"n/a",`)

	assertLines(t, []string{"Feels Like: n/a°"}, r)
}

func TestBuildReport_Deterministic(t *testing.T) {
	payload := strings.Join([]string{legacyPayload, xmlPayload, jsonPayload}, "\n")

	first := build(t, payload)
	second := build(t, payload)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Text(), second.Text())
}

func TestFieldExtractor_CustomRules(t *testing.T) {
	rules := []Rule{
		{
			Field:   Rainfall,
			Format:  Legacy,
			Label:   "Snowfall",
			Match:   hasLegacyKey("snow|"),
			Extract: func(line string) Extraction { return ExtractLegacy(line, "snow|") },
		},
	}

	r, err := BuildReport("snow|2.5\nrain|1", NewFieldExtractor(rules), "Custom:")
	require.NoError(t, err)

	assert.Equal(t, "Custom:\nSnowfall: 2.5 inches", r.Text())
}

func TestFieldExtractor_VisitErrorStopsScan(t *testing.T) {
	stop := errors.New("stop")
	calls := 0

	err := NewFieldExtractor(nil).Scan(`"temp":70,"humidity":40`, func(ExtractedValue) error {
		calls++
		return stop
	})

	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

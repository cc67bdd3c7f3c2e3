package domain

import "strconv"

const (
	// Degrees is appended to temperatures and wind bearings.
	Degrees = "°"

	// HectopascalsPerInch converts hPa to inches of mercury.
	HectopascalsPerInch = 33.863889532610884
)

// FormatFixed renders n with exactly places decimal places.
func FormatFixed(n float64, places int) string {
	return strconv.FormatFloat(n, 'f', places, 64)
}

// HectopascalsToInches converts a pressure reading to inches of mercury.
func HectopascalsToInches(hpa float64) float64 {
	return hpa / HectopascalsPerInch
}

// FormatValue renders the value part of a report line, unit included.
// Numbers are only reformatted for JSON sources; legacy and XML text is used
// as received.
func FormatValue(v ExtractedValue) string {
	numeric := v.Format == JSON && v.Numeric != nil

	switch v.Field {
	case Temperature, DewPoint, FeelsLike:
		if numeric {
			return FormatFixed(*v.Numeric, 1) + Degrees
		}
		return v.Raw + Degrees
	case WindSpeed:
		if numeric {
			return FormatFixed(*v.Numeric, 1) + " MPH"
		}
		return v.Raw
	case WindDirection:
		if numeric {
			return FormatFixed(*v.Numeric, 0) + Degrees
		}
		return v.Raw + Degrees
	case Humidity:
		return v.Raw + "%"
	case Pressure:
		switch {
		case numeric:
			return FormatFixed(HectopascalsToInches(*v.Numeric), 2) + " inches"
		case v.Format == XML:
			return v.Raw + " inches"
		default:
			return v.Raw
		}
	case Rainfall:
		return v.Raw + " inches"
	default:
		return v.Raw
	}
}

// FormatLine renders a full "Label: value" report line.
func FormatLine(v ExtractedValue) string {
	label := v.Label
	if label == "" {
		label = v.Field.Label()
	}
	return label + ": " + FormatValue(v)
}

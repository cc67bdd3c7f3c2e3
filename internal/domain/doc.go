// Package domain extracts weather metrics from loosely structured report
// payloads and renders them as a text report.
//
// # Payload Formats
//
// A payload is plain text split into lines. Three formats are recognized, and
// a single payload may mix them:
//
//	Legacy:  "temperature|72&deg;"     key|value, one pair per line
//	XML:     "<temp_f>68.5</temp_f>"   a known leaf tag somewhere in the line
//	JSON:    `"main":{"temp":71.3,...` a quoted key followed by a scalar
//
// None of the formats is parsed as a document. Each rule scans a single line
// for a fixed marker and slices the value out by substring position.
//
// Legacy values:
//
//	The value is everything after "<key>|". A trailing HTML entity such as
//	"&deg;" is cut off (not decoded) when the value ends with ';' and the '&'
//	is not the first character. "wind_gust|" lines are only used when
//	something follows the separator.
//
// XML values:
//
//	The value runs from the end of the opening tag to the last "</" on the
//	line, whichever tag that "</" belongs to. Without both markers the whole
//	line is used as the value.
//
// JSON values:
//
//	The value runs from the end of `"<name>":` to the next ',' or '}',
//	whichever comes first. One pair of surrounding quotes is stripped.
//	Escape sequences are left alone.
//
// # Rule Evaluation
//
// Every rule is tested against every line. Rules are not mutually exclusive:
// a JSON line usually feeds several fields at once, and a payload carrying
// both XML and JSON temperatures renders two Temperature lines. The icon
// temperature comes from whichever Temperature rule ran last.
//
// # Units
//
// JSON pressure arrives in hectopascals and is shown in inches of mercury
// (1 inHg = 33.863889532610884 hPa). Legacy and XML pressure are already in
// inches. Temperatures are whatever the upstream reports, usually Fahrenheit.
package domain

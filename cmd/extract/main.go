// Command extract runs the report extractor over a single payload and prints
// the rendered report and icon label. It is useful for checking a captured
// feed against the widget's rules without starting the service.
//
// Usage:
//
//	go run ./cmd/extract -in internal/pipeline/testdata/conditions.xml
//	curl -s https://w1.weather.gov/xml/current_obs/KBWI.xml | go run ./cmd/extract
//	go run ./cmd/extract -in payload.json -want expected.txt
//
// Exit status is 1 when a numeric field cannot be parsed or when the output
// differs from -want.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/weather-widget/internal/domain"
	"github.com/couchcryptid/weather-widget/internal/report"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	in := fs.String("in", "", "payload file to read (default stdin)")
	header := fs.String("header", domain.DefaultHeader, "report header line")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	want := fs.String("want", "", "golden file the report text must match")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload, err := readPayload(*in, stdin)
	if err != nil {
		return err
	}

	rep, err := domain.BuildReport(string(payload), domain.NewFieldExtractor(nil), *header)
	if err != nil {
		var perr *domain.NumericParseError
		if errors.As(err, &perr) {
			return fmt.Errorf("%s field %s: %w", perr.Format, perr.Field.Label(), err)
		}
		return err
	}

	if *want != "" {
		return compareGolden(*want, rep)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report.Snapshot{Report: rep}.Document())
	}

	fmt.Fprintln(stdout, rep.Text())
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "icon: %s (%d lines scanned, %d fields)\n", rep.IconLabel(), rep.Scanned, len(rep.Lines))
	return nil
}

func readPayload(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}

// compareGolden checks the report text and icon label against a golden file
// whose last line is the icon label.
func compareGolden(path string, rep domain.Report) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	want := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	got := append(strings.Split(rep.Text(), "\n"), rep.IconLabel())

	if diff := cmp.Diff(want, got); diff != "" {
		return fmt.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	return nil
}

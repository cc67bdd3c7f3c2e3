package domain

import "fmt"

// NumericParseError reports a field whose text should have been a number.
// It aborts the remainder of a poll cycle.
type NumericParseError struct {
	Field  FieldKey
	Format SourceFormat
	Text   string
	Err    error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("parse %s %s value %q: %v", e.Format, e.Field, e.Text, e.Err)
}

func (e *NumericParseError) Unwrap() error { return e.Err }

// PayloadFetchError wraps a failure to retrieve the payload for a cycle.
type PayloadFetchError struct {
	Source string
	Err    error
}

func (e *PayloadFetchError) Error() string {
	return fmt.Sprintf("fetch payload from %s: %v", e.Source, e.Err)
}

func (e *PayloadFetchError) Unwrap() error { return e.Err }

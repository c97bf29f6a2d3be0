package uild

import "time"

var std = NewGenerator()

// Generate mints an identifier with the default generator.
func Generate(entityType string, md Metadata) (string, error) {
	return std.Generate(entityType, md)
}

// GenerateBatch mints count identifiers with the default generator.
func GenerateBatch(entityType string, count int, md Metadata) ([]string, error) {
	return std.GenerateBatch(entityType, count, md)
}

// Parse splits and checks candidate against the default registry.
func Parse(candidate string) (Parts, error) {
	return std.Parse(candidate)
}

// Validate reports whether candidate is well formed.
func Validate(candidate string) bool {
	return std.Validate(candidate)
}

// Check reports validity and, when invalid, why.
func Check(candidate string) (bool, string) {
	return std.Check(candidate)
}

// Verify validates candidate and recomputes its checksum from md.
func Verify(candidate string, md Metadata) bool {
	return std.Verify(candidate, md)
}

// TypeOf returns the entity type for candidate's prefix.
func TypeOf(candidate string) (string, bool) {
	return std.TypeOf(candidate)
}

// TimestampOf returns candidate's creation time in seconds since the epoch.
func TimestampOf(candidate string) (float64, bool) {
	return std.TimestampOf(candidate)
}

// TimeOf returns candidate's creation time.
func TimeOf(candidate string) (time.Time, bool) {
	return std.TimeOf(candidate)
}

// Compare orders two identifiers by creation time.
func Compare(a, b string) (int, error) {
	return std.Compare(a, b)
}

package uild

import "strings"

const (
	nonceLen    = 8
	checksumLen = 4
)

// Parts holds the four fields of a well-formed identifier, as written.
type Parts struct {
	Prefix    string
	Timestamp string
	Nonce     string
	Checksum  string
}

// Base returns "prefix-timestamp-nonce", the checksummed portion.
func (p Parts) Base() string {
	return p.Prefix + separator + p.Timestamp + separator + p.Nonce
}

func (p Parts) String() string {
	return p.Base() + separator + p.Checksum
}

// Parse splits candidate into its fields and checks that each is well
// formed. Errors are *ParseError.
func (g *Generator) Parse(candidate string) (Parts, error) {
	fields := strings.Split(candidate, separator)
	if len(fields) != 4 {
		return Parts{}, &ParseError{Reason: "expected 4 dash-separated fields"}
	}
	p := Parts{Prefix: fields[0], Timestamp: fields[1], Nonce: fields[2], Checksum: fields[3]}

	if _, ok := g.registry.TypeForPrefix(p.Prefix); !ok {
		return Parts{}, &ParseError{Field: "prefix", Reason: "not registered"}
	}
	if p.Timestamp == "" || !isHex(p.Timestamp) {
		return Parts{}, &ParseError{Field: "timestamp", Reason: "not a hexadecimal integer"}
	}
	if len(p.Nonce) != nonceLen || !isHex(p.Nonce) {
		return Parts{}, &ParseError{Field: "nonce", Reason: "must be 8 hex digits"}
	}
	if len(p.Checksum) != checksumLen || !isHex(p.Checksum) {
		return Parts{}, &ParseError{Field: "checksum", Reason: "must be 4 hex digits"}
	}

	return p, nil
}

// Validate reports whether candidate is a well-formed identifier.
func (g *Generator) Validate(candidate string) bool {
	_, err := g.Parse(candidate)
	return err == nil
}

// Check is Validate with a reason for rejection; reason is empty when valid.
func (g *Generator) Check(candidate string) (bool, string) {
	if _, err := g.Parse(candidate); err != nil {
		return false, strings.TrimPrefix(err.Error(), "uild: ")
	}
	return true, ""
}

// Verify validates candidate and recomputes its checksum from md, which must
// be the metadata given to Generate. Letter case in the nonce and checksum
// is significant here, as it is in the hash input.
func (g *Generator) Verify(candidate string, md Metadata) bool {
	p, err := g.Parse(candidate)
	if err != nil {
		return false
	}
	return Checksum(p.Base(), md) == p.Checksum
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/junoblue/launch/pkg/uild"
)

const (
	MinSubdomainLen = 3
	MaxSubdomainLen = 63
)

var (
	ErrInvalidSubdomain  = errors.New("invalid subdomain")
	ErrReservedSubdomain = errors.New("subdomain is reserved")
	ErrInvalidTenantID   = errors.New("invalid tenant id")
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Hosts the platform serves itself.
var reservedSubdomains = map[string]struct{}{
	"www":     {},
	"api":     {},
	"admin":   {},
	"login":   {},
	"signup":  {},
	"samurai": {},
}

// SubdomainError explains why a subdomain was refused.
type SubdomainError struct {
	Subdomain string
	Reason    string
	err       error
}

func (e *SubdomainError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.err, e.Subdomain, e.Reason)
}

func (e *SubdomainError) Unwrap() error { return e.err }

// NormalizeSubdomain trims and lowercases s; host names are case-insensitive.
func NormalizeSubdomain(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckSubdomain applies the naming rules to an already normalized
// subdomain. It does not look at the database.
func CheckSubdomain(s string) error {
	switch {
	case len(s) < MinSubdomainLen:
		return &SubdomainError{Subdomain: s, Reason: "subdomain too short", err: ErrInvalidSubdomain}
	case len(s) > MaxSubdomainLen:
		return &SubdomainError{Subdomain: s, Reason: "subdomain too long", err: ErrInvalidSubdomain}
	case !subdomainPattern.MatchString(s):
		return &SubdomainError{
			Subdomain: s,
			Reason:    "subdomain can only contain lowercase letters, numbers, and hyphens",
			err:       ErrInvalidSubdomain,
		}
	}
	if _, ok := reservedSubdomains[s]; ok {
		return &SubdomainError{Subdomain: s, Reason: "subdomain is reserved", err: ErrReservedSubdomain}
	}
	return nil
}

// CheckTenantID accepts only well-formed tenant UILDs.
func CheckTenantID(id string) error {
	if ok, reason := uild.Check(id); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidTenantID, reason)
	}
	if t, _ := uild.TypeOf(id); t != uild.TypeTenant {
		return fmt.Errorf("%w: %s is a %s id", ErrInvalidTenantID, id, t)
	}
	return nil
}

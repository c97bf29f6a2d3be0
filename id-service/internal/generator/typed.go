package generator

import (
	"fmt"

	"github.com/junoblue/launch/pkg/uild"
)

// Typed formats render as <prefix>_<payload>, reusing the uild type
// registry for the prefix.
const typedSeparator = '_'

type typedID struct {
	Prefix     string
	EntityType string
	Payload    string
}

func newTypedID(reg *uild.Registry, entityType, payload string) (string, error) {
	prefix, err := reg.PrefixFor(entityType)
	if err != nil {
		return "", err
	}
	return prefix + string(typedSeparator) + payload, nil
}

// splitTyped returns a non-empty reason when id is not a typed id.
func splitTyped(reg *uild.Registry, id string) (typedID, string) {
	if len(id) < 5 || id[3] != typedSeparator {
		return typedID{}, "expected <prefix>_<payload>"
	}
	prefix := id[:3]
	typ, ok := reg.TypeForPrefix(prefix)
	if !ok {
		return typedID{}, fmt.Sprintf("unknown prefix %q", prefix)
	}
	return typedID{Prefix: prefix, EntityType: typ, Payload: id[4:]}, ""
}

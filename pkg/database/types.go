package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringArray stores a list of strings as a JSON text column. Scan also
// accepts the PostgreSQL array literal so rows written by TEXT[] columns
// still load.
type StringArray []string

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value any) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("StringArray: unsupported scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "["):
		return json.Unmarshal([]byte(raw), (*[]string)(a))
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		*a = splitArrayLiteral(raw[1 : len(raw)-1])
		return nil
	case raw == "":
		*a = StringArray{}
		return nil
	default:
		*a = StringArray{raw}
		return nil
	}
}

// splitArrayLiteral splits the body of a {a,"b,c",d} literal.
func splitArrayLiteral(body string) StringArray {
	out := StringArray{}
	if body == "" {
		return out
	}

	var (
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range body {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, cur.String())
}

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Contains reports whether s is in the array.
func (a StringArray) Contains(s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}

// GormDataType tells GORM to use a text column on every dialect.
func (StringArray) GormDataType() string {
	return "text"
}

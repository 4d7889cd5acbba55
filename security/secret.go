package security

import (
	"fmt"
	"strings"
)

// Redacted is printed in place of a secret value.
const Redacted = "[REDACTED]"

// Secret is an opaque string that redacts itself in every textual
// representation. The zero value is an empty secret.
type Secret struct {
	value string
}

// NewSecret wraps value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Expose returns the raw value. Call it only where the value leaves the
// process, e.g. when building an Authorization header.
func (s Secret) Expose() string { return s.value }

// IsEmpty reports whether the secret is empty or only whitespace.
func (s Secret) IsEmpty() bool { return strings.TrimSpace(s.value) == "" }

// String implements fmt.Stringer.
func (s Secret) String() string { return Redacted }

// GoString implements fmt.GoStringer so %#v stays redacted.
func (s Secret) GoString() string { return "security.Secret(" + Redacted + ")" }

// Format implements fmt.Formatter; every verb prints the redacted marker.
func (s Secret) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		_, _ = fmt.Fprint(f, s.GoString())
		return
	}
	_, _ = fmt.Fprint(f, Redacted)
}

// MarshalText implements encoding.TextMarshaler.
func (s Secret) MarshalText() ([]byte, error) { return []byte(Redacted), nil }

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"` + Redacted + `"`), nil }

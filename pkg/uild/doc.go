// Package uild mints and inspects UILDs: compact, type-tagged, loosely
// time-ordered identifiers of the form
//
//	usr-18c2f0a1b23-3f9a2b7c-4d2e
//	│   │           │        │
//	│   │           │        checksum (4 hex, truncated sha256)
//	│   │           nonce (8 hex, 32 random bits)
//	│   timestamp (hex Unix milliseconds, unpadded)
//	prefix (3 letters, one per entity type)
//
// The checksum only catches gross corruption. Metadata passed to Generate
// perturbs the checksum but cannot be recovered from the identifier.
//
// Validation and introspection are total functions over arbitrary strings:
// they report failure through their return values and never panic. The only
// error Generate returns for bad input is *UnknownTypeError.
package uild

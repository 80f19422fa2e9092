// Package redact detects and replaces literal secret assignments in source text.
//
// Detection is driven by an ordered table of rules. Each rule names a label and
// a keyword expression; the keyword is wrapped into the fixed shape
//
//	KEYWORD <spaces> = <spaces> 'VALUE' | "VALUE"
//
// and matched case-insensitively. Every match is rewritten to the canonical
// assignment label="[REDACTED]".
//
// # Limitations
//
// Matching is lexical. A secret assembled by concatenation, read through a
// variable, or passed as a keyword argument without a quoted literal on the
// right-hand side of '=' is not detected. This package is not a general
// secret-scanning engine: there is no entropy analysis and no parsing.
//
// # Idempotence
//
// A match whose quoted value is already the placeholder is left in place and
// does not count as a finding, so scanning redacted output reports nothing and
// rewriting can never loop.
package redact

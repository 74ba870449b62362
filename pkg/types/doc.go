// Package types holds the small vocabulary shared by the hive reader, the
// navigator and the terminal UI: typed errors with stable kinds and the
// registry value type enumeration.
//
// This package has no dependencies beyond the standard library.
package types

// Package bad marks a type that cannot be mapped.
package bad

// kmgo:data
type Names []string

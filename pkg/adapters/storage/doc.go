// Package storage provides report storage implementations.
//
// Implementations:
//   - memory: bounded in-memory history backing the observability API
package storage

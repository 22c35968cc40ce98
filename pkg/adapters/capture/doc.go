// Package capture provides capture source implementations.
//
// Implementations:
//   - sim: simulated cameras with pluggable latency/failure profiles
package capture

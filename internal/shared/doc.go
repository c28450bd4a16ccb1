// Package shared holds helpers used across the dashboard packages that
// belong to no single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- a capturing slog handler with log assertions
//	- rentals file fixtures in the public dataset layout
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    records, err := dataprocessing.Load(strings.NewReader(testutil.SampleRentals()))
//	    ...
//	}
//
// This package must not import business packages so that any package's
// tests can depend on it.
package shared

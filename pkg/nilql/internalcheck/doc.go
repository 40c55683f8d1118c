// Package internalcheck holds static policy tests over the nilql packages.
//
// The tests load the library with golang.org/x/tools/go/packages and fail
// on code patterns that leak or mishandle secrets: hexadecimal formatting
// verbs in format strings, == on byte slices, non-cryptographic randomness,
// and key material passed to fmt, log, slog or the logging package.
// It exports nothing and is not meant to be imported.
package internalcheck

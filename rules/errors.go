//go:build ruleguard

// Package gorules defines custom linter rules for the graphing API.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// StdErrors flags direct use of the standard errors package outside
// internal/errors.
//
// The internal package re-exports Is, As, Join and NewStd so call sites
// need only one import:
//
//	errors.NewStd("record not found")
//	errors.Is(err, datastore.ErrReferenced)
func StdErrors(m dsl.Matcher) {
	m.Import("errors")

	m.Match(`errors.New($msg)`).
		Where(!m.File().PkgPath.Matches(`internal/errors$`)).
		Report("use errors.NewStd($msg) from internal/errors").
		Suggest("errors.NewStd($msg)")
}

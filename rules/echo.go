//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// HandlerErrorText flags handlers that put err.Error() in a response body.
// Handlers return the error instead and resources.WriteError renders it,
// so storage failures never leak driver text to clients.
func HandlerErrorText(m dsl.Matcher) {
	m.Match(
		`$c.JSON($code, $err.Error())`,
		`$c.String($code, $err.Error())`,
		`$c.JSON($code, map[string]string{$*_, $_: $err.Error(), $*_})`,
		`$c.JSON($code, map[string]any{$*_, $_: $err.Error(), $*_})`,
	).
		Where(m["c"].Type.Is("echo.Context") && m["err"].Type.Implements("error")).
		Report("return the error from the handler and let the error handler render it")
}

//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// TestifyErrorAssertions suggests the dedicated testify error helpers.
func TestifyErrorAssertions(m dsl.Matcher) {
	m.Match(`assert.Nil($t, $err)`).
		Where(m["err"].Type.Implements("error")).
		Report("use assert.NoError($t, $err)").
		Suggest("assert.NoError($t, $err)")

	m.Match(`require.Nil($t, $err)`).
		Where(m["err"].Type.Implements("error")).
		Report("use require.NoError($t, $err)").
		Suggest("require.NoError($t, $err)")

	m.Match(`assert.NotNil($t, $err)`).
		Where(m["err"].Type.Implements("error")).
		Report("use assert.Error($t, $err)").
		Suggest("assert.Error($t, $err)")

	m.Match(`assert.Equal($t, $code, $rec.Code)`).
		Where(m["rec"].Type.Is("*httptest.ResponseRecorder") && m["code"].Text.Matches(`^\d+$`)).
		Report("use the net/http status constant instead of $code")
}

// BenchmarkLoop suggests b.Loop() over explicit b.N loops.
func BenchmarkLoop(m dsl.Matcher) {
	m.Match(`for range $b.N { $*body }`).
		Where(m["b"].Type.Is("*testing.B")).
		Report("use for $b.Loop() { ... } instead of for range $b.N").
		Suggest("for $b.Loop() { $body }")
}

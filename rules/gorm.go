//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// FormattedSQL detects SQL text built with fmt.Sprintf and passed to GORM.
// Values belong in placeholders:
//
//	db.Where("dataset_id = ?", id)
func FormattedSQL(m dsl.Matcher) {
	m.Match(
		`$db.Raw(fmt.Sprintf($*_), $*_)`,
		`$db.Exec(fmt.Sprintf($*_), $*_)`,
		`$db.Where(fmt.Sprintf($*_), $*_)`,
		`$db.Order(fmt.Sprintf($*_))`,
	).
		Where(m["db"].Type.Is("*gorm.DB")).
		Report("pass values as ? placeholders instead of formatting SQL")
}

// MissingContext flags repository queries that drop the request context.
func MissingContext(m dsl.Matcher) {
	m.Match(
		`$db.First($*_)`,
		`$db.Find($*_)`,
		`$db.Create($*_)`,
		`$db.Save($*_)`,
		`$db.Delete($*_)`,
	).
		Where(m["db"].Type.Is("*gorm.DB") &&
			m["db"].Text.Matches(`^r\.db$`) &&
			m.File().PkgPath.Matches(`internal/datastore$`)).
		Report("call $db.WithContext(ctx) before issuing the query")
}

/*
Hand-off from finished "sqlsel" commands to "github.com/go-rel/rel". This
package never executes anything: it only converts a `*sqlsel.Command` into a
`rel.SQLQuery`, which a `rel.Repository` then runs via `FindAll`, `Find` or
`Iterate`.

Postgres-style drivers take commands as-is via `Query`. MySQL expects `?`
placeholders, which `MySQL` produces by rebinding `$N` in order.
*/
package relsel

import (
	"github.com/go-rel/mysql"
	"github.com/go-rel/rel"
	"github.com/mitranim/sqlp"
	"github.com/mitranim/sqlsel"
	"github.com/pkg/errors"
)

// Placeholder mark used by MySQL drivers.
const MarkMySQL = `?`

// Converts a finished command into a `rel.SQLQuery` without changing the text
// or the values.
func Query[A sqlsel.ArgLister](cmd *sqlsel.Command[A]) rel.SQLQuery {
	text, args := cmd.Reify()
	return rel.SQL(text, args...)
}

/*
Converts a finished command into a MySQL `rel.SQLQuery`: placeholders `$N` are
replaced with `?`, and every value goes through go-rel/mysql's `ValueConvert`,
which formats times the way MySQL expects.
*/
func MySQL[A sqlsel.ArgLister](cmd *sqlsel.Command[A]) (rel.SQLQuery, error) {
	text, args := cmd.Reify()

	text, err := Rebind(text, MarkMySQL)
	if err != nil {
		return rel.SQLQuery{}, err
	}
	if len(args) == 0 {
		return rel.SQL(text), nil
	}

	vals := make([]any, len(args))
	for ind, arg := range args {
		val, err := mysql.ValueConvert{}.ConvertValue(arg)
		if err != nil {
			return rel.SQLQuery{}, errors.Wrapf(err, `converting argument $%d for mysql`, ind+1)
		}
		vals[ind] = val
	}
	return rel.SQL(text, vals...), nil
}

/*
Replaces ordinal parameters `$1, $2, ...` with `mark`. Text inside quotes and
comments is left alone. Parameters must appear exactly once each, in
ascending order starting with $1, which always holds for commands built by
"sqlsel". Named parameters are rejected.
*/
func Rebind(text, mark string) (_ string, err error) {
	defer recTokenizer(&err)

	buf := make([]byte, 0, len(text))
	tokenizer := sqlp.Tokenizer{Source: text}
	next := 1

	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		switch node := node.(type) {
		case sqlp.NodeOrdinalParam:
			if int(node) != next {
				return ``, errors.Errorf(`rebinding %q: expected parameter $%d, got %v`, text, next, node)
			}
			buf = append(buf, mark...)
			next++

		case sqlp.NodeNamedParam:
			return ``, errors.Errorf(`rebinding %q: unexpected named parameter %q`, text, string(node))

		default:
			node.Append(&buf)
		}
	}
	return string(buf), nil
}

// Must be deferred.
func recTokenizer(ptr *error) {
	val := recover()
	if val == nil {
		return
	}

	err, _ := val.(error)
	if err != nil {
		*ptr = errors.Wrap(err, `tokenizing command text`)
		return
	}
	panic(val)
}

/*
Static column list with each name quoted as a MySQL identifier, for columns
whose names collide with keywords:

	cols, err := relsel.MySQLColumns(`id`, `order`)
	// `id`, `order`
*/
func MySQLColumns(names ...string) (sqlsel.Columns, error) {
	quoted := make([]string, len(names))
	for ind, name := range names {
		quoted[ind] = mysql.Quote{}.ID(name)
	}

	cols, err := sqlsel.ColumnsOf(quoted...)
	return cols, errors.Wrap(err, `quoting mysql columns`)
}

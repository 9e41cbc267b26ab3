/*
SQL Select: a builder for parameterized `SELECT` commands where the shape of the
API only allows well-formed clause sequences, and where ordinal parameters such
as $1, $2 always match the collection of bound arguments.

Key Features

• One type per stage of the grammar. Each stage exposes only the methods that
are legal at that point: a `FROM` can't precede columns, and a finished
`Command` can't be modified.

• Parameters are numbered by the builder from the argument collection's count.
The count always starts at 1 for a fresh collection, and a parameter is never
skipped or reused.

• Text growth is explicit and fallible. Every transition reserves exactly the
bytes it's about to write. If the reservation fails, nothing is written and
the stage can be reused.

• The argument collection is pluggable: `List`, fixed-capacity `Array`, `Nop`
for literal-only commands, `DriverArgs` for early driver conversion, or any
type implementing `Args`.

• Static fragments (`Columns`, `Tables`, `Condition`) install pre-assembled,
validated text in one step.

Examples

	var args sqlsel.List

	start := sqlsel.Select(&args)
	cols, err := start.Columns([]string{`id`, `name`})
	if err != nil {
		return err
	}
	tables, err := cols.From(`users`)
	if err != nil {
		return err
	}
	filter, err := tables.Where().Compare(`id`, sqlsel.OpEq, 42)
	if err != nil {
		return err
	}
	cmd := filter.End()

	text, vals := cmd.Reify()
	// SELECT id, name FROM users WHERE id = $1
	// [42]

See "github.com/mitranim/sqlsel/relsel" for handing finished commands to
"github.com/go-rel/rel".
*/
package sqlsel

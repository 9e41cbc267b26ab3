package sqlsel

import (
	"fmt"
	"strings"

	"github.com/mitranim/sqlp"
)

/*
Pre-assembled column list, such as `id, name, email`, installed whole via
`StaticColumns` instead of column-by-column. Construct with `ColumnsOf`,
`ColumnsText` or `StructColumns`. The zero value is empty and rejected by the
builder with `ErrArgumentNotFound`.
*/
type Columns struct{ text string }

// Implement `fmt.Stringer`.
func (self Columns) String() string { return self.text }

func (self Columns) check(while string) error { return checkFragment(while, self.text) }

/*
Builds a comma-separated column list. Fails with `ErrArgumentNotFound` on empty
input, and with `ErrInvalidFragment` if the text contains parameters.
*/
func ColumnsOf(names ...string) (Columns, error) {
	const while = `building static columns`
	err := checkElems(while, names...)
	if err != nil {
		return Columns{}, err
	}

	text, err := fragment(while, strings.Join(names, sepComma))
	return Columns{text}, err
}

// Variant of `ColumnsOf` that panics on error.
func TryColumnsOf(names ...string) Columns { return try1(ColumnsOf(names...)) }

// Wraps arbitrary column-list text, such as `count(*) AS total`.
func ColumnsText(text string) (Columns, error) {
	text, err := fragment(`building static columns`, text)
	return Columns{text}, err
}

// Variant of `ColumnsText` that panics on error.
func TryColumnsText(text string) Columns { return try1(ColumnsText(text)) }

/*
Pre-assembled table list, possibly with aliases and joins, installed whole via
`StaticFrom` or `StaticTables`. Construct with `TablesOf` or `TablesAs`, then
optionally extend with joins. The zero value is empty and rejected by the
builder with `ErrArgumentNotFound`.
*/
type Tables struct{ text string }

// Implement `fmt.Stringer`.
func (self Tables) String() string { return self.text }

func (self Tables) check(while string) error { return checkFragment(while, self.text) }

// Table name with an optional alias, rendered as `name` or `name AS alias`.
type Table struct {
	Name  string
	Alias string
}

func (self Table) String() string {
	if self.Alias == `` {
		return self.Name
	}
	return self.Name + sepAs + self.Alias
}

// Builds a comma-separated table list.
func TablesOf(names ...string) (Tables, error) {
	const while = `building static tables`
	err := checkElems(while, names...)
	if err != nil {
		return Tables{}, err
	}

	text, err := fragment(while, strings.Join(names, sepComma))
	return Tables{text}, err
}

// Variant of `TablesOf` that panics on error.
func TryTablesOf(names ...string) Tables { return try1(TablesOf(names...)) }

// Builds a comma-separated table list where each table may have an alias.
// Every table must have a name.
func TablesAs(tables ...Table) (Tables, error) {
	const while = `building static tables`
	var buf strings.Builder
	for ind, table := range tables {
		err := checkElems(while, table.Name)
		if err == nil && table.Alias != `` {
			err = checkElems(while, table.Alias)
		}
		if err != nil {
			return Tables{}, err
		}

		if ind > 0 {
			buf.WriteString(sepComma)
		}
		buf.WriteString(table.String())
	}

	text, err := fragment(while, buf.String())
	return Tables{text}, err
}

// Variant of `TablesAs` that panics on error.
func TryTablesAs(tables ...Table) Tables { return try1(TablesAs(tables...)) }

// Appends `<kind> JOIN <table> ON <cond>`.
func (self Tables) Join(kind JoinKind, table string, on Condition) (Tables, error) {
	const while = `adding join`
	err := self.join(while, kind, table)
	if err == nil {
		err = on.check(while)
	}
	if err != nil {
		return Tables{}, err
	}

	text, err := fragment(while, self.text+sepSpace+string(kind)+` JOIN `+table+` ON `+on.text)
	return Tables{text}, err
}

// Appends `<kind> JOIN <table> USING (<col0>, <col1>, ...)`.
func (self Tables) JoinUsing(kind JoinKind, table string, cols ...string) (Tables, error) {
	const while = `adding join`
	err := self.join(while, kind, table)
	if err == nil && len(cols) == 0 {
		err = ErrArgumentNotFound.while(while)
	}
	if err == nil {
		err = checkElems(while, cols...)
	}
	if err != nil {
		return Tables{}, err
	}

	text, err := fragment(while, self.text+sepSpace+string(kind)+` JOIN `+table+
		` USING (`+strings.Join(cols, sepComma)+`)`)
	return Tables{text}, err
}

// Appends `CROSS JOIN <table>`.
func (self Tables) CrossJoin(table string) (Tables, error) {
	const while = `adding cross join`
	err := self.check(while)
	if err == nil {
		err = checkElems(while, table)
	}
	if err != nil {
		return Tables{}, err
	}

	text, err := fragment(while, self.text+` CROSS JOIN `+table)
	return Tables{text}, err
}

func (self Tables) join(while string, kind JoinKind, table string) error {
	err := self.check(while)
	if err == nil {
		err = checkElems(while, table)
	}
	if err != nil {
		return err
	}
	return kind.check(while)
}

// Join type used by `Tables.Join` and `Tables.JoinUsing`.
type JoinKind string

const (
	JoinInner JoinKind = `INNER`
	JoinLeft  JoinKind = `LEFT`
	JoinRight JoinKind = `RIGHT`
	JoinFull  JoinKind = `FULL`
)

func (self JoinKind) check(while string) error {
	switch self {
	case JoinInner, JoinLeft, JoinRight, JoinFull:
		return nil
	default:
		return ErrInvalidInput.while(while).because(fmt.Errorf(`unknown join kind %q`, string(self)))
	}
}

// Comparison operator used in conditions.
type Op string

const (
	OpEq  Op = `=`
	OpNe  Op = `<>`
	OpGt  Op = `>`
	OpLt  Op = `<`
	OpGte Op = `>=`
	OpLte Op = `<=`
)

/*
Parses a comparison operator. Accepts `!=` as a synonym of `<>`, which is
what gets rendered.
*/
func ParseOp(src string) (Op, error) {
	if src == `!=` {
		return OpNe, nil
	}
	op := Op(src)
	return op, op.check(`parsing comparison operator`)
}

func (self Op) check(while string) error {
	switch self {
	case OpEq, OpNe, OpGt, OpLt, OpGte, OpLte:
		return nil
	default:
		return ErrInvalidInput.while(while).because(fmt.Errorf(`unknown comparison operator %q`, string(self)))
	}
}

/*
Pre-assembled boolean condition, such as `a.id = b.a_id AND a.kind <> b.kind`.
Used in joins and in `WHERE`. Construct with `Cond`, then extend with `And` and
`Or`. The zero value is empty and rejected with `ErrArgumentNotFound`.
*/
type Condition struct{ text string }

// Implement `fmt.Stringer`.
func (self Condition) String() string { return self.text }

func (self Condition) check(while string) error { return checkFragment(while, self.text) }

// Builds `<lhs> <op> <rhs>`.
func Cond(lhs string, op Op, rhs string) (Condition, error) {
	const while = `building condition`
	err := checkElems(while, lhs, rhs)
	if err == nil {
		err = op.check(while)
	}
	if err != nil {
		return Condition{}, err
	}

	text, err := fragment(while, lhs+sepSpace+string(op)+sepSpace+rhs)
	return Condition{text}, err
}

// Variant of `Cond` that panics on error.
func TryCond(lhs string, op Op, rhs string) Condition { return try1(Cond(lhs, op, rhs)) }

// Appends ` AND <lhs> <op> <rhs>`.
func (self Condition) And(lhs string, op Op, rhs string) (Condition, error) {
	return self.logical(sepAnd, lhs, op, rhs)
}

// Appends ` OR <lhs> <op> <rhs>`.
func (self Condition) Or(lhs string, op Op, rhs string) (Condition, error) {
	return self.logical(sepOr, lhs, op, rhs)
}

// Returns `NOT (<cond>)`. Empty input stays empty.
func (self Condition) Not() Condition {
	if self.text == `` {
		return self
	}
	return Condition{`NOT (` + self.text + `)`}
}

func (self Condition) logical(sep, lhs string, op Op, rhs string) (Condition, error) {
	const while = `extending condition`
	err := self.check(while)
	if err != nil {
		return Condition{}, err
	}

	next, err := Cond(lhs, op, rhs)
	if err != nil {
		return Condition{}, err
	}
	return Condition{self.text + sep + next.text}, nil
}

// Every element of a list must be non-blank, otherwise joining would leave a
// dangling separator such as `a, `.
func checkElems(while string, vals ...string) error {
	for _, val := range vals {
		if strings.TrimSpace(val) == `` {
			return ErrArgumentNotFound.while(while).because(
				fmt.Errorf(`blank element in %q`, vals),
			)
		}
	}
	return nil
}

func checkFragment(while, text string) error {
	if text == `` {
		return ErrArgumentNotFound.while(while)
	}
	return nil
}

/*
Validates fragment text: it must be non-blank and must not contain ordinal or
named parameters, because the builder numbers all parameters itself and a
parameter inside a static fragment would desynchronize the numbering.
*/
func fragment(while, text string) (_ string, err error) {
	if strings.TrimSpace(text) == `` {
		return ``, ErrArgumentNotFound.while(while)
	}

	defer recFragment(&err, while)

	tokenizer := sqlp.Tokenizer{Source: text}
	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		switch node := node.(type) {
		case sqlp.NodeOrdinalParam:
			return ``, ErrInvalidFragment.while(while).because(
				fmt.Errorf(`unexpected ordinal parameter %v in %q`, node, text),
			)

		case sqlp.NodeNamedParam:
			return ``, ErrInvalidFragment.while(while).because(
				fmt.Errorf(`unexpected named parameter %q in %q`, string(node), text),
			)
		}
	}
	return text, nil
}

// Must be deferred. The tokenizer panics on malformed text, such as an
// unterminated quote.
func recFragment(ptr *error, while string) {
	val := recover()
	if val == nil {
		return
	}

	err, _ := val.(error)
	if err != nil {
		*ptr = ErrInvalidFragment.while(while).because(err)
		return
	}

	panic(val)
}

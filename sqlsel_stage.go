package sqlsel

import "fmt"

/*
Starts a `SELECT` command. The argument collection is owned by the resulting
chain: every bound value is pushed into it and numbered after its current
count, which means a fresh collection yields `$1, $2, ...`.

	var args sqlsel.List
	start := sqlsel.Select(&args)

Each method of each stage either returns the next stage, or an error and no
stage. After a successful transition into a different stage type, the receiver
is consumed: using it again fails with `ErrConsumedStage`. After a failed
transition, the receiver is unchanged and may be used again, for example with
a smaller payload.
*/
func Select[A Args](args A) *Start[A] { return start(`SELECT`, args) }

// Same as `Select` but starts with `SELECT ALL`.
func SelectAll[A Args](args A) *Start[A] { return start(`SELECT ALL`, args) }

// Same as `Select` but starts with `SELECT DISTINCT`.
func SelectDistinct[A Args](args A) *Start[A] { return start(`SELECT DISTINCT`, args) }

func start[A Args](keyword string, args A) *Start[A] {
	return &Start[A]{&state[A]{
		buf:  Buf{Text: []byte(keyword), Limit: DefaultTextLimit},
		args: args,
	}}
}

/*
Shared by every stage of one chain. Only one stage at a time refers to it:
transitions move the pointer forward and clear it in the consumed stage.
*/
type state[A Args] struct {
	buf  Buf
	args A
}

func acquire[A Args](ref **state[A], while string) (*state[A], error) {
	if ref == nil || *ref == nil {
		return nil, ErrConsumedStage.while(while)
	}
	return *ref, nil
}

func mustAcquire[A Args](ref **state[A], while string) *state[A] {
	st, err := acquire(ref, while)
	if err != nil {
		panic(err)
	}
	return st
}

func release[A Args](ref **state[A]) *state[A] {
	st := *ref
	*ref = nil
	return st
}

func stateString[A Args](ref **state[A]) string {
	if ref == nil || *ref == nil {
		return ``
	}
	return (*ref).buf.String()
}

// Appends all strings or nothing.
func (self *state[A]) strs(while string, vals ...string) error {
	var size int
	for _, val := range vals {
		size += len(val)
	}

	err := self.buf.Reserve(size)
	if err != nil {
		return rewhile(err, while)
	}

	for _, val := range vals {
		self.buf.Str(val)
	}
	return nil
}

/*
Appends `lead` and the first value, then `, ` and each subsequent value. Empty
input is rejected before touching the buffer.
*/
func (self *state[A]) list(while, lead string, vals []string) error {
	if len(vals) == 0 {
		return ErrArgumentNotFound.while(while)
	}
	err := checkElems(while, vals...)
	if err != nil {
		return err
	}

	size := len(lead) + len(vals[0])
	for _, val := range vals[1:] {
		size += len(sepComma) + len(val)
	}

	err = self.buf.Reserve(size)
	if err != nil {
		return rewhile(err, while)
	}

	self.buf.Str(lead)
	self.buf.Str(vals[0])
	for _, val := range vals[1:] {
		self.buf.Str(sepComma)
		self.buf.Str(val)
	}
	return nil
}

/*
Pushes the value and appends `lead` followed by the ordinal parameter. The
text is reserved before the push, so a successful push is always followed by
its parameter. The returned bool reports that the collection changed without
a matching parameter, in which case the stage must not be reused.
*/
func (self *state[A]) bind(while, lead string, val any) (bool, error) {
	next := self.args.Count() + 1

	err := self.buf.Reserve(len(lead) + ordLen(next))
	if err != nil {
		return false, rewhile(err, while)
	}

	err = self.args.Push(val)
	if err != nil {
		return false, errArgument(while, err)
	}

	count := self.args.Count()
	if count != next {
		return true, ErrInternal.while(while).because(fmt.Errorf(
			`argument count after push: expected %d, got %d`, next, count,
		))
	}

	self.buf.Str(lead)
	self.buf.Ord(count)
	return false, nil
}

/*
Binds each value in order: the first one after `lead`, the rest after `, `.
Text for all of them is reserved upfront. If a push fails after at least one
success, the text still matches the collection, but the stage is broken.
*/
func (self *state[A]) bindAll(while, lead string, vals []any) (bool, error) {
	if len(vals) == 0 {
		return false, ErrArgumentNotFound.while(while)
	}

	next := self.args.Count() + 1
	size := len(lead) + ordLen(next)
	for ind := 1; ind < len(vals); ind++ {
		size += len(sepComma) + ordLen(next+ind)
	}

	err := self.buf.Reserve(size)
	if err != nil {
		return false, rewhile(err, while)
	}

	for ind, val := range vals {
		sep := sepComma
		if ind == 0 {
			sep = lead
		}

		broken, err := self.bind(while, sep, val)
		if err != nil {
			return broken || ind > 0, err
		}
	}
	return false, nil
}

func (self *state[A]) command() *Command[A] {
	return &Command[A]{text: self.buf.Text, args: self.args}
}

/*
Stage right after `SELECT`, `SELECT ALL` or `SELECT DISTINCT`. Allows starting
a column list, starting a value list, or installing a static column fragment.
*/
type Start[A Args] struct{ st *state[A] }

func (self *Start[A]) ref() **state[A] {
	if self == nil {
		return nil
	}
	return &self.st
}

// Implement `fmt.Stringer`, returning the text so far.
func (self *Start[A]) String() string { return stateString(self.ref()) }

/*
Overrides the text length limit of this chain, which starts as
`DefaultTextLimit`. Zero or negative disables the limit. Panics with
`ErrConsumedStage` if the stage was consumed.
*/
func (self *Start[A]) Limit(size int) *Start[A] {
	mustAcquire(self.ref(), `setting text limit`).buf.Limit = size
	return self
}

// Adds the first column: `SELECT <col>`.
func (self *Start[A]) Column(col string) (*ColumnList[A], error) {
	const while = `adding column`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = checkElems(while, col)
	}
	if err == nil {
		err = st.strs(while, sepSpace, col)
	}
	if err != nil {
		return nil, err
	}
	return &ColumnList[A]{release(self.ref())}, nil
}

// Adds the first column with an alias: `SELECT <col> AS <alias>`.
func (self *Start[A]) ColumnAs(col, alias string) (*ColumnList[A], error) {
	const while = `adding aliased column`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = checkElems(while, col, alias)
	}
	if err == nil {
		err = st.strs(while, sepSpace, col, sepAs, alias)
	}
	if err != nil {
		return nil, err
	}
	return &ColumnList[A]{release(self.ref())}, nil
}

/*
Adds the given columns: `SELECT <col0>, <col1>, ...`. Empty input fails with
`ErrArgumentNotFound`.
*/
func (self *Start[A]) Columns(cols []string) (*ColumnList[A], error) {
	const while = `adding columns`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = st.list(while, sepSpace, cols)
	}
	if err != nil {
		return nil, err
	}
	return &ColumnList[A]{release(self.ref())}, nil
}

/*
Installs a complete, pre-assembled column list. The next step is `FROM` or the
end of the command.
*/
func (self *Start[A]) StaticColumns(cols Columns) (*FromClause[A], error) {
	const while = `adding static columns`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = cols.check(while)
	}
	if err == nil {
		err = st.strs(while, sepSpace, cols.text)
	}
	if err != nil {
		return nil, err
	}
	return &FromClause[A]{release(self.ref())}, nil
}

// Binds the first value of a value list: `SELECT $1`.
func (self *Start[A]) Value(val any) (*ValueList[A], error) {
	const while = `binding value`
	st, err := acquire(self.ref(), while)
	if err != nil {
		return nil, err
	}

	broken, err := st.bind(while, sepSpace, val)
	if err != nil {
		if broken {
			release(self.ref())
		}
		return nil, err
	}
	return &ValueList[A]{release(self.ref())}, nil
}

/*
Binds all values and finishes the command: `SELECT $1, $2, ...`. Empty input
fails with `ErrArgumentNotFound`. If the collection rejects a value after
accepting some, the stage is consumed and the error is returned.
*/
func (self *Start[A]) Values(vals ...any) (*Command[A], error) {
	const while = `binding values`
	st, err := acquire(self.ref(), while)
	if err != nil {
		return nil, err
	}

	broken, err := st.bindAll(while, sepSpace, vals)
	if err != nil {
		if broken {
			release(self.ref())
		}
		return nil, err
	}
	return release(self.ref()).command(), nil
}

/*
Stage after at least one column. Allows more columns, a static column fragment,
or `FROM`.
*/
type ColumnList[A Args] struct{ st *state[A] }

func (self *ColumnList[A]) ref() **state[A] {
	if self == nil {
		return nil
	}
	return &self.st
}

// Implement `fmt.Stringer`, returning the text so far.
func (self *ColumnList[A]) String() string { return stateString(self.ref()) }

// Adds another column: `, <col>`.
func (self *ColumnList[A]) Column(col string) (*ColumnList[A], error) {
	const while = `adding column`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = checkElems(while, col)
	}
	if err == nil {
		err = st.strs(while, sepComma, col)
	}
	if err != nil {
		return nil, err
	}
	return self, nil
}

// Adds another column with an alias: `, <col> AS <alias>`.
func (self *ColumnList[A]) ColumnAs(col, alias string) (*ColumnList[A], error) {
	const while = `adding aliased column`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = checkElems(while, col, alias)
	}
	if err == nil {
		err = st.strs(while, sepComma, col, sepAs, alias)
	}
	if err != nil {
		return nil, err
	}
	return self, nil
}

/*
Adds more columns: `, <col0>, <col1>, ...`. Empty input fails with
`ErrArgumentNotFound`.
*/
func (self *ColumnList[A]) Columns(cols []string) (*ColumnList[A], error) {
	const while = `adding columns`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = st.list(while, sepComma, cols)
	}
	if err != nil {
		return nil, err
	}
	return self, nil
}

/*
Appends a pre-assembled column fragment after the existing columns, completing
the column list. The next step is `FROM` or the end of the command.
*/
func (self *ColumnList[A]) StaticColumns(cols Columns) (*FromClause[A], error) {
	const while = `adding static columns`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = cols.check(while)
	}
	if err == nil {
		err = st.strs(while, sepComma, cols.text)
	}
	if err != nil {
		return nil, err
	}
	return &FromClause[A]{release(self.ref())}, nil
}

// Starts the `FROM` clause with one table: ` FROM <table>`.
func (self *ColumnList[A]) From(table string) (*TableList[A], error) {
	return from(self.ref(), table)
}

// Starts the `FROM` clause with several tables. Empty input fails with
// `ErrArgumentNotFound`.
func (self *ColumnList[A]) FromTables(tables []string) (*TableList[A], error) {
	return fromTables(self.ref(), tables)
}

// Starts the `FROM` clause with a pre-assembled table fragment.
func (self *ColumnList[A]) StaticFrom(tables Tables) (*TableList[A], error) {
	return staticFrom(self.ref(), tables)
}

/*
Stage after a complete column list. Allows `FROM`, or ending the command
without one, such as `SELECT now()`.
*/
type FromClause[A Args] struct{ st *state[A] }

func (self *FromClause[A]) ref() **state[A] {
	if self == nil {
		return nil
	}
	return &self.st
}

// Implement `fmt.Stringer`, returning the text so far.
func (self *FromClause[A]) String() string { return stateString(self.ref()) }

// Starts the `FROM` clause with one table: ` FROM <table>`.
func (self *FromClause[A]) From(table string) (*TableList[A], error) {
	return from(self.ref(), table)
}

// Starts the `FROM` clause with several tables. Empty input fails with
// `ErrArgumentNotFound`.
func (self *FromClause[A]) FromTables(tables []string) (*TableList[A], error) {
	return fromTables(self.ref(), tables)
}

// Starts the `FROM` clause with a pre-assembled table fragment.
func (self *FromClause[A]) StaticFrom(tables Tables) (*TableList[A], error) {
	return staticFrom(self.ref(), tables)
}

// Finishes the command. Panics with `ErrConsumedStage` if the stage was
// consumed.
func (self *FromClause[A]) End() *Command[A] { return end(self.ref()) }

func from[A Args](ref **state[A], table string) (*TableList[A], error) {
	const while = `starting from clause`
	st, err := acquire(ref, while)
	if err == nil {
		err = checkElems(while, table)
	}
	if err == nil {
		err = st.strs(while, sepFrom, table)
	}
	if err != nil {
		return nil, err
	}
	return &TableList[A]{release(ref)}, nil
}

func fromTables[A Args](ref **state[A], tables []string) (*TableList[A], error) {
	const while = `starting from clause`
	st, err := acquire(ref, while)
	if err == nil {
		err = st.list(while, sepFrom, tables)
	}
	if err != nil {
		return nil, err
	}
	return &TableList[A]{release(ref)}, nil
}

func staticFrom[A Args](ref **state[A], tables Tables) (*TableList[A], error) {
	const while = `starting static from clause`
	st, err := acquire(ref, while)
	if err == nil {
		err = tables.check(while)
	}
	if err == nil {
		err = st.strs(while, sepFrom, tables.text)
	}
	if err != nil {
		return nil, err
	}
	return &TableList[A]{release(ref)}, nil
}

func end[A Args](ref **state[A]) *Command[A] {
	mustAcquire(ref, `ending command`)
	return release(ref).command()
}

// Stage after at least one bound value in a value list.
type ValueList[A Args] struct{ st *state[A] }

func (self *ValueList[A]) ref() **state[A] {
	if self == nil {
		return nil
	}
	return &self.st
}

// Implement `fmt.Stringer`, returning the text so far.
func (self *ValueList[A]) String() string { return stateString(self.ref()) }

// Binds another value: `, $N`.
func (self *ValueList[A]) Value(val any) (*ValueList[A], error) {
	const while = `binding value`
	st, err := acquire(self.ref(), while)
	if err != nil {
		return nil, err
	}

	broken, err := st.bind(while, sepComma, val)
	if err != nil {
		if broken {
			release(self.ref())
		}
		return nil, err
	}
	return self, nil
}

// Finishes the command. Panics with `ErrConsumedStage` if the stage was
// consumed.
func (self *ValueList[A]) End() *Command[A] { return end(self.ref()) }

// Stage after at least one table in the `FROM` clause.
type TableList[A Args] struct{ st *state[A] }

func (self *TableList[A]) ref() **state[A] {
	if self == nil {
		return nil
	}
	return &self.st
}

// Implement `fmt.Stringer`, returning the text so far.
func (self *TableList[A]) String() string { return stateString(self.ref()) }

// Adds another table: `, <table>`.
func (self *TableList[A]) From(table string) (*TableList[A], error) {
	const while = `adding table`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = checkElems(while, table)
	}
	if err == nil {
		err = st.strs(while, sepComma, table)
	}
	if err != nil {
		return nil, err
	}
	return self, nil
}

/*
Adds more tables: `, <table0>, <table1>, ...`. Empty input fails with
`ErrArgumentNotFound`.
*/
func (self *TableList[A]) Tables(tables []string) (*TableList[A], error) {
	const while = `adding tables`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = st.list(while, sepComma, tables)
	}
	if err != nil {
		return nil, err
	}
	return self, nil
}

// Adds a pre-assembled table fragment: `, <fragment>`.
func (self *TableList[A]) StaticTables(tables Tables) (*TableList[A], error) {
	const while = `adding static tables`
	st, err := acquire(self.ref(), while)
	if err == nil {
		err = tables.check(while)
	}
	if err == nil {
		err = st.strs(while, sepComma, tables.text)
	}
	if err != nil {
		return nil, err
	}
	return self, nil
}

/*
Begins the `WHERE` section. Writes nothing by itself: the keyword is written
together with the first condition, so the text never ends with a dangling
`WHERE`. Panics with `ErrConsumedStage` if the stage was consumed.
*/
func (self *TableList[A]) Where() *WhereClause[A] {
	mustAcquire(self.ref(), `beginning where clause`)
	return &WhereClause[A]{release(self.ref())}
}

// Finishes the command. Panics with `ErrConsumedStage` if the stage was
// consumed.
func (self *TableList[A]) End() *Command[A] { return end(self.ref()) }

// Stage after `(*TableList).Where`, before the first condition.
type WhereClause[A Args] struct{ st *state[A] }

func (self *WhereClause[A]) ref() **state[A] {
	if self == nil {
		return nil
	}
	return &self.st
}

// Implement `fmt.Stringer`, returning the text so far.
func (self *WhereClause[A]) String() string { return stateString(self.ref()) }

// Adds the first condition: ` WHERE <cond>`.
func (self *WhereClause[A]) Cond(cond Condition) (*Filter[A], error) {
	return cond0(self.ref(), sepWhere, cond)
}

// Adds the first comparison against a bound value: ` WHERE <lhs> <op> $N`.
func (self *WhereClause[A]) Compare(lhs string, op Op, val any) (*Filter[A], error) {
	return compare0(self.ref(), sepWhere, lhs, op, val)
}

// Finishes the command without conditions. Panics with `ErrConsumedStage` if
// the stage was consumed.
func (self *WhereClause[A]) End() *Command[A] { return end(self.ref()) }

// Stage after at least one `WHERE` condition.
type Filter[A Args] struct{ st *state[A] }

func (self *Filter[A]) ref() **state[A] {
	if self == nil {
		return nil
	}
	return &self.st
}

// Implement `fmt.Stringer`, returning the text so far.
func (self *Filter[A]) String() string { return stateString(self.ref()) }

// Adds ` AND <cond>`.
func (self *Filter[A]) And(cond Condition) (*Filter[A], error) {
	return self.cond(sepAnd, cond)
}

// Adds ` OR <cond>`.
func (self *Filter[A]) Or(cond Condition) (*Filter[A], error) {
	return self.cond(sepOr, cond)
}

// Adds ` AND <lhs> <op> $N`.
func (self *Filter[A]) AndCompare(lhs string, op Op, val any) (*Filter[A], error) {
	return self.compare(sepAnd, lhs, op, val)
}

// Adds ` OR <lhs> <op> $N`.
func (self *Filter[A]) OrCompare(lhs string, op Op, val any) (*Filter[A], error) {
	return self.compare(sepOr, lhs, op, val)
}

// Finishes the command. Panics with `ErrConsumedStage` if the stage was
// consumed.
func (self *Filter[A]) End() *Command[A] { return end(self.ref()) }

func (self *Filter[A]) cond(lead string, cond Condition) (*Filter[A], error) {
	out, err := cond0(self.ref(), lead, cond)
	if err != nil {
		return nil, err
	}
	self.st = out.st
	return self, nil
}

func (self *Filter[A]) compare(lead, lhs string, op Op, val any) (*Filter[A], error) {
	out, err := compare0(self.ref(), lead, lhs, op, val)
	if err != nil {
		return nil, err
	}
	self.st = out.st
	return self, nil
}

func cond0[A Args](ref **state[A], lead string, cond Condition) (*Filter[A], error) {
	const while = `adding condition`
	st, err := acquire(ref, while)
	if err == nil {
		err = cond.check(while)
	}
	if err == nil {
		err = st.strs(while, lead, cond.text)
	}
	if err != nil {
		return nil, err
	}
	return &Filter[A]{release(ref)}, nil
}

func compare0[A Args](ref **state[A], lead, lhs string, op Op, val any) (*Filter[A], error) {
	const while = `adding comparison`
	st, err := acquire(ref, while)
	if err == nil {
		err = checkElems(while, lhs)
	}
	if err == nil {
		err = op.check(while)
	}
	if err != nil {
		return nil, err
	}

	broken, err := st.bind(while, lead+lhs+sepSpace+string(op)+sepSpace, val)
	if err != nil {
		if broken {
			release(ref)
		}
		return nil, err
	}
	return &Filter[A]{release(ref)}, nil
}

const (
	sepSpace = ` `
	sepComma = `, `
	sepAs    = ` AS `
	sepFrom  = ` FROM `
	sepWhere = ` WHERE `
	sepAnd   = ` AND `
	sepOr    = ` OR `
)

func rewhile(err error, while string) error {
	val, ok := err.(Err)
	if ok {
		return val.while(while)
	}
	return err
}

// Package querydesc reads declarative SELECT descriptions from YAML and drives
// them through the "sqlsel" stage chain.
package querydesc

import (
	"os"
	"strings"

	"github.com/mitranim/sqlsel"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Desc describes one SELECT command.
type Desc struct {
	Select        string   `yaml:"select"`
	Limit         int      `yaml:"limit"`
	Columns       []Column `yaml:"columns"`
	StaticColumns string   `yaml:"static_columns"`
	Values        []any    `yaml:"values"`
	From          []string `yaml:"from"`
	Joins         []Join   `yaml:"joins"`
	Where         []Cond   `yaml:"where"`
}

// Column is either a bare expression or an expression with an alias. In YAML,
// a plain string is shorthand for `{expr: <string>}`.
type Column struct {
	Expr string `yaml:"expr"`
	As   string `yaml:"as"`
}

// UnmarshalYAML accepts both `name` and `{expr: name, as: n}`.
func (c *Column) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Expr = node.Value
		return nil
	}
	type column Column
	return node.Decode((*column)(c))
}

// Join adds `<kind> JOIN <table> ON <lhs> <op> <rhs>` to the FROM clause.
type Join struct {
	Kind  string `yaml:"kind"`
	Table string `yaml:"table"`
	On    Cond   `yaml:"on"`
}

/*
Cond is one WHERE condition. With `rhs` it's a static condition such as
`age > 18`. Otherwise `value` is bound as a parameter. `logic` joins it to the
previous condition and defaults to `and`.
*/
type Cond struct {
	Logic string `yaml:"logic"`
	Lhs   string `yaml:"lhs"`
	Op    string `yaml:"op"`
	Rhs   string `yaml:"rhs"`
	Value any    `yaml:"value"`
}

// Load reads a description from a YAML file.
func Load(path string) (Desc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Desc{}, errors.Wrap(err, "read query description")
	}
	return Parse(data)
}

// Parse decodes a description from YAML.
func Parse(data []byte) (Desc, error) {
	var desc Desc
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return Desc{}, errors.Wrap(err, "parse query description")
	}
	return desc, nil
}

// Build renders the description, pushing bound values into args.
func Build[A sqlsel.Args](desc Desc, args A) (*sqlsel.Command[A], error) {
	start, err := begin(desc.Select, args)
	if err != nil {
		return nil, err
	}
	if desc.Limit != 0 {
		start.Limit(desc.Limit)
	}

	if len(desc.Values) > 0 {
		if len(desc.Columns) > 0 || desc.StaticColumns != "" || len(desc.From) > 0 || len(desc.Joins) > 0 || len(desc.Where) > 0 {
			return nil, errors.New("values can't be combined with columns, from, joins or where")
		}
		cmd, err := start.Values(desc.Values...)
		return cmd, errors.Wrap(err, "build value list")
	}

	next, done, err := buildColumns(desc, start)
	if err != nil {
		return nil, err
	}

	if len(desc.From) == 0 {
		if len(desc.Joins) > 0 || len(desc.Where) > 0 {
			return nil, errors.New("joins and where require from")
		}
		if done == nil {
			return nil, errors.Wrap(sqlsel.ErrArgumentNotFound, "columns require from")
		}
		return done.End(), nil
	}

	tables, err := buildFrom(desc, next)
	if err != nil {
		return nil, err
	}
	if len(desc.Where) == 0 {
		return tables.End(), nil
	}
	return buildWhere(desc.Where, tables.Where())
}

// Implemented by `*sqlsel.ColumnList` and `*sqlsel.FromClause`.
type fromStage[A sqlsel.Args] interface {
	FromTables([]string) (*sqlsel.TableList[A], error)
	StaticFrom(sqlsel.Tables) (*sqlsel.TableList[A], error)
}

func begin[A sqlsel.Args](keyword string, args A) (*sqlsel.Start[A], error) {
	switch strings.ToLower(keyword) {
	case "":
		return sqlsel.Select(args), nil
	case "all":
		return sqlsel.SelectAll(args), nil
	case "distinct":
		return sqlsel.SelectDistinct(args), nil
	default:
		return nil, errors.Wrapf(sqlsel.ErrInvalidInput, "unknown select keyword %q", keyword)
	}
}

/*
Returns the stage right before FROM. Dynamic columns must be followed by FROM,
so the returned `*sqlsel.FromClause`, which may end the command, is nil unless
the column list was completed with static columns.
*/
func buildColumns[A sqlsel.Args](desc Desc, start *sqlsel.Start[A]) (fromStage[A], *sqlsel.FromClause[A], error) {
	var static sqlsel.Columns
	if desc.StaticColumns != "" {
		cols, err := sqlsel.ColumnsText(desc.StaticColumns)
		if err != nil {
			return nil, nil, errors.Wrap(err, "static columns")
		}
		static = cols
	}

	if len(desc.Columns) == 0 {
		from, err := start.StaticColumns(static)
		if err != nil {
			return nil, nil, errors.Wrap(err, "add static columns")
		}
		return from, from, nil
	}

	cols, err := addColumn(desc.Columns[0], start.Column, start.ColumnAs)
	if err != nil {
		return nil, nil, err
	}
	for _, col := range desc.Columns[1:] {
		cols, err = addColumn(col, cols.Column, cols.ColumnAs)
		if err != nil {
			return nil, nil, err
		}
	}

	if desc.StaticColumns == "" {
		return cols, nil, nil
	}
	from, err := cols.StaticColumns(static)
	if err != nil {
		return nil, nil, errors.Wrap(err, "add static columns")
	}
	return from, from, nil
}

func addColumn[A sqlsel.Args](
	col Column,
	column func(string) (*sqlsel.ColumnList[A], error),
	columnAs func(string, string) (*sqlsel.ColumnList[A], error),
) (*sqlsel.ColumnList[A], error) {
	if col.As == "" {
		out, err := column(col.Expr)
		return out, errors.Wrapf(err, "add column %q", col.Expr)
	}
	out, err := columnAs(col.Expr, col.As)
	return out, errors.Wrapf(err, "add column %q as %q", col.Expr, col.As)
}

func buildFrom[A sqlsel.Args](desc Desc, next fromStage[A]) (*sqlsel.TableList[A], error) {
	if len(desc.Joins) == 0 {
		tables, err := next.FromTables(desc.From)
		return tables, errors.Wrap(err, "add from")
	}

	static, err := sqlsel.TablesOf(desc.From...)
	if err != nil {
		return nil, errors.Wrap(err, "from tables")
	}
	for _, join := range desc.Joins {
		static, err = addJoin(static, join)
		if err != nil {
			return nil, err
		}
	}

	tables, err := next.StaticFrom(static)
	return tables, errors.Wrap(err, "add from")
}

func addJoin(tables sqlsel.Tables, join Join) (sqlsel.Tables, error) {
	kind := sqlsel.JoinKind(strings.ToUpper(join.Kind))
	if kind == "" {
		kind = sqlsel.JoinInner
	}

	on, err := staticCond(join.On)
	if err != nil {
		return sqlsel.Tables{}, errors.Wrapf(err, "join %q", join.Table)
	}

	out, err := tables.Join(kind, join.Table, on)
	return out, errors.Wrapf(err, "join %q", join.Table)
}

func buildWhere[A sqlsel.Args](conds []Cond, where *sqlsel.WhereClause[A]) (*sqlsel.Command[A], error) {
	head := conds[0]
	if head.Logic != "" {
		return nil, errors.Errorf("first condition on %q can't have logic %q", head.Lhs, head.Logic)
	}

	filter, err := addCond(head, where.Cond, where.Compare)
	if err != nil {
		return nil, err
	}

	for _, cond := range conds[1:] {
		switch strings.ToLower(cond.Logic) {
		case "", "and":
			filter, err = addCond(cond, filter.And, filter.AndCompare)
		case "or":
			filter, err = addCond(cond, filter.Or, filter.OrCompare)
		default:
			err = errors.Wrapf(sqlsel.ErrInvalidInput, "condition on %q: unknown logic %q", cond.Lhs, cond.Logic)
		}
		if err != nil {
			return nil, err
		}
	}
	return filter.End(), nil
}

func addCond[A sqlsel.Args](
	cond Cond,
	static func(sqlsel.Condition) (*sqlsel.Filter[A], error),
	compare func(string, sqlsel.Op, any) (*sqlsel.Filter[A], error),
) (*sqlsel.Filter[A], error) {
	if cond.Rhs != "" {
		if cond.Value != nil {
			return nil, errors.Errorf("condition on %q has both rhs and value", cond.Lhs)
		}
		val, err := staticCond(cond)
		if err != nil {
			return nil, errors.Wrapf(err, "condition on %q", cond.Lhs)
		}
		out, err := static(val)
		return out, errors.Wrapf(err, "add condition on %q", cond.Lhs)
	}

	op, err := sqlsel.ParseOp(cond.Op)
	if err != nil {
		return nil, errors.Wrapf(err, "condition on %q", cond.Lhs)
	}
	out, err := compare(cond.Lhs, op, cond.Value)
	return out, errors.Wrapf(err, "add comparison on %q", cond.Lhs)
}

func staticCond(cond Cond) (sqlsel.Condition, error) {
	op, err := sqlsel.ParseOp(cond.Op)
	if err != nil {
		return sqlsel.Condition{}, err
	}
	return sqlsel.Cond(cond.Lhs, op, cond.Rhs)
}

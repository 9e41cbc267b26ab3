package relsel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-rel/rel"
	"github.com/go-rel/reltest"
	"github.com/mitranim/sqlsel"
	"github.com/mitranim/sqlsel/relsel"
	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type User struct {
	ID      int       `db:"id"`
	Name    string    `db:"name"`
	Created time.Time `db:"created"`
}

func usersQuery(t *testing.T, args sqlsel.ArgLister, id int, created time.Time) *sqlsel.Command[sqlsel.ArgLister] {
	t.Helper()

	cols, err := sqlsel.Select(args).Columns([]string{`id`, `name`, `created`})
	require.NoError(t, err)
	tables, err := cols.From(`users`)
	require.NoError(t, err)
	filter, err := tables.Where().Compare(`id`, sqlsel.OpGte, id)
	require.NoError(t, err)
	filter, err = filter.AndCompare(`created`, sqlsel.OpLt, created)
	require.NoError(t, err)
	filter, err = filter.Or(sqlsel.TryCond(`name`, sqlsel.OpEq, `'$1'`))
	require.NoError(t, err)
	return filter.End()
}

func TestQuery(t *testing.T) {
	created := time.Date(2021, 1, 2, 3, 4, 5, 600, time.UTC)
	query := relsel.Query(usersQuery(t, new(sqlsel.List), 10, created))

	assert.Equal(t, `SELECT id, name, created FROM users WHERE id >= $1 AND created < $2 OR name = '$1'`, query.Statement)
	assert.Equal(t, []any{10, created}, query.Values)
}

func TestMySQL(t *testing.T) {
	created := time.Date(2021, 1, 2, 3, 4, 5, 600, time.UTC)

	tests := []struct {
		name string
		args sqlsel.ArgLister
		vals []any
	}{
		{
			name: "list",
			args: new(sqlsel.List),
			vals: []any{int64(10), "2021-01-02 03:04:05"},
		},
		{
			name: "driver args",
			args: new(sqlsel.DriverArgs),
			vals: []any{int64(10), "2021-01-02 03:04:05"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			query, err := relsel.MySQL(usersQuery(t, test.args, 10, created))
			require.NoError(t, err)

			assert.Equal(t, `SELECT id, name, created FROM users WHERE id >= ? AND created < ? OR name = '$1'`, query.Statement)
			assert.Equal(t, test.vals, query.Values)

			stmt, err := parser.New().ParseOneStmt(query.Statement, "", "")
			require.NoError(t, err)
			assert.IsType(t, &ast.SelectStmt{}, stmt)
		})
	}
}

func TestMySQL_values(t *testing.T) {
	var args sqlsel.List
	cmd, err := sqlsel.Select(&args).Values(1, "two", nil)
	require.NoError(t, err)

	query, err := relsel.MySQL(cmd)
	require.NoError(t, err)
	assert.Equal(t, `SELECT ?, ?, ?`, query.Statement)
	assert.Equal(t, []any{int64(1), "two", nil}, query.Values)

	_, err = parser.New().ParseOneStmt(query.Statement, "", "")
	require.NoError(t, err)
}

func TestMySQL_literal(t *testing.T) {
	from, err := sqlsel.Select(sqlsel.Nop{}).StaticColumns(sqlsel.TryColumnsText(`now()`))
	require.NoError(t, err)

	query, err := relsel.MySQL(from.End())
	require.NoError(t, err)
	assert.Equal(t, `SELECT now()`, query.Statement)
	assert.Empty(t, query.Values)
}

func TestMySQL_unsupported(t *testing.T) {
	var args sqlsel.List
	cmd, err := sqlsel.Select(&args).Values(struct{}{})
	require.NoError(t, err)

	_, err = relsel.MySQL(cmd)
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		result string
		fails  bool
	}{
		{name: "empty", text: ``, result: ``},
		{name: "no params", text: `SELECT 1`, result: `SELECT 1`},
		{name: "in order", text: `SELECT $1, $2, $3`, result: `SELECT ?, ?, ?`},
		{name: "many", text: `SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10`, result: `SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?`},
		{name: "quoted", text: `SELECT '$2', "$3", $1`, result: `SELECT '$2', "$3", ?`},
		{name: "out of order", text: `SELECT $2, $1`, fails: true},
		{name: "repeated", text: `SELECT $1, $1`, fails: true},
		{name: "named", text: `SELECT :one`, fails: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := relsel.Rebind(test.text, relsel.MarkMySQL)
			if test.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.result, result)
		})
	}
}

func TestMySQLColumns(t *testing.T) {
	cols, err := relsel.MySQLColumns(`id`, `order`, "we`ird")
	require.NoError(t, err)
	assert.Equal(t, "`id`, `order`, `we``ird`", cols.String())

	_, err = relsel.MySQLColumns()
	assert.True(t, errors.Is(err, sqlsel.ErrArgumentNotFound))
}

func TestQuery_repository(t *testing.T) {
	var (
		ctx     = context.Background()
		repo    = reltest.New()
		created = time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
		query   = relsel.Query(usersQuery(t, new(sqlsel.List), 10, created))
		result  = []User{{ID: 10, Name: "one", Created: created}}
	)

	repo.ExpectFindAll(query).Result(result)

	var users []User
	require.NoError(t, repo.FindAll(ctx, &users, query))
	assert.Equal(t, result, users)

	repo.AssertExpectations(t)
}

func TestQuery_repository_mysql(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = reltest.New()
		args sqlsel.List
	)

	cols, err := sqlsel.Select(&args).Column(`id`)
	require.NoError(t, err)
	tables, err := cols.From(`users`)
	require.NoError(t, err)
	filter, err := tables.Where().Compare(`name`, sqlsel.OpEq, "one")
	require.NoError(t, err)

	query, err := relsel.MySQL(filter.End())
	require.NoError(t, err)

	repo.ExpectFindAll(rel.SQL(`SELECT id FROM users WHERE name = ?`, "one")).Result([]User{{ID: 1}})

	var users []User
	require.NoError(t, repo.FindAll(ctx, &users, query))
	assert.Equal(t, []User{{ID: 1}}, users)

	repo.AssertExpectations(t)
}

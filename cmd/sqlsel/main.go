package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mitranim/sqlsel"
	"github.com/mitranim/sqlsel/internal/querydesc"
	"github.com/mitranim/sqlsel/relsel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func main() {
	queryPath := flag.String("query", "query.yaml", "path to query description")
	forMySQL := flag.Bool("mysql", false, "rebind placeholders to ? and convert values for mysql")
	verbose := flag.Bool("verbose", false, "development logging")
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(os.Stdout, logger, *queryPath, *forMySQL); err != nil {
		logger.Error("render failed", zap.String("query", *queryPath), zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction(zap.Fields(zap.String("app", "sqlsel")))
}

func run(out io.Writer, logger *zap.Logger, path string, forMySQL bool) error {
	desc, err := querydesc.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded query description", zap.String("path", path), zap.String("select", desc.Select))

	var args sqlsel.List
	cmd, err := querydesc.Build(desc, &args)
	if err != nil {
		return err
	}

	text, vals := cmd.Reify()
	if forMySQL {
		query, err := relsel.MySQL(cmd)
		if err != nil {
			return err
		}
		text, vals = query.Statement, query.Values
	}
	logger.Info("rendered query", zap.Int("bytes", len(text)), zap.Int("args", len(vals)), zap.Bool("mysql", forMySQL))

	return write(out, text, vals)
}

func write(out io.Writer, text string, vals []any) error {
	if vals == nil {
		vals = []any{}
	}
	data, err := json.Marshal(vals)
	if err != nil {
		return errors.Wrap(err, "encode args")
	}
	_, err = fmt.Fprintf(out, "%s\n%s\n", text, data)
	return errors.Wrap(err, "write output")
}

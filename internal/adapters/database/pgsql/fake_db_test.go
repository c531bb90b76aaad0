package pgsql

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type rateRow struct {
	from, to string
	rate     decimal.Decimal
	updated  time.Time
}

type entryRow struct {
	owner    string
	amount   decimal.Decimal
	currency string
	income   bool
	at       time.Time
}

// fakeDB answers the statements the repositories issue from in-memory tables.
type fakeDB struct {
	rates   map[string]rateRow
	entries []entryRow
	owners  map[string]string
	err     error
	sql     []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{rates: map[string]rateRow{}, owners: map[string]string{}}
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.sql = append(db.sql, sql)
	if db.err != nil {
		return pgconn.CommandTag{}, db.err
	}
	if !strings.Contains(sql, "INSERT INTO exchange_rates") || !strings.Contains(sql, "ON CONFLICT") {
		return pgconn.CommandTag{}, fmt.Errorf("unexpected statement: %s", sql)
	}
	row := rateRow{from: args[0].(string), to: args[1].(string), rate: args[2].(decimal.Decimal), updated: args[3].(time.Time)}
	db.rates[row.from+":"+row.to] = row
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.sql = append(db.sql, sql)
	if db.err != nil {
		return fakeRow{err: db.err}
	}
	switch {
	case strings.Contains(sql, "FROM exchange_rates"):
		row, ok := db.rates[args[0].(string)+":"+args[1].(string)]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{values: []any{row.from, row.to, row.rate, row.updated}}
	case strings.Contains(sql, "FROM owners"):
		currency, ok := db.owners[args[0].(string)]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{values: []any{currency}}
	}
	return fakeRow{err: fmt.Errorf("unexpected query: %s", sql)}
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.sql = append(db.sql, sql)
	if db.err != nil {
		return nil, db.err
	}
	var out [][]any
	switch {
	case strings.Contains(sql, "FROM exchange_rates"):
		keys := make([]string, 0, len(db.rates))
		for k := range db.rates {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			row := db.rates[k]
			out = append(out, []any{row.from, row.to, row.rate, row.updated})
		}
	case strings.Contains(sql, "FROM transactions"):
		for _, e := range db.entries {
			if e.owner == args[0].(string) {
				out = append(out, []any{e.amount, e.currency, e.income, e.at})
			}
		}
	default:
		return nil, fmt.Errorf("unexpected query: %s", sql)
	}
	return &fakeRows{rows: out, idx: -1}, nil
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

// fakeRows implements the pgx.Rows methods the repositories call.
type fakeRows struct {
	pgx.Rows
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error { return assign(dest, r.rows[r.idx]) }

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Close() {}

func assign(dest, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = values[i].(string)
		case *bool:
			*p = values[i].(bool)
		case *decimal.Decimal:
			*p = values[i].(decimal.Decimal)
		case *time.Time:
			*p = values[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

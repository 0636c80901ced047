// Package pgload loads the person-level analytic Parquet file into
// PostgreSQL for SQL consumers and external estimation engines.
package pgload

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so the same queries run
// inside and outside transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries wraps the person_pmed statements.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// InsertPersonParams mirrors the person_pmed columns.
type InsertPersonParams struct {
	Dupersid string
	Agelast  int32
	Sex      int32
	Racethx  int32
	Povcat   int32
	Inscov   int32
	Diabdx   int32
	Varstr   int32
	Varpsu   int32
	Perwt    float64
	Rxtot    int32
	Rxxptot  pgtype.Numeric
	Anyfill  int32
}

const insertPerson = `
INSERT INTO person_pmed (
    dupersid, agelast, sex, racethx, povcat, inscov, diabdx,
    varstr, varpsu, perwt, rxtot, rxxptot, anyfill
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func (q *Queries) InsertPerson(ctx context.Context, p InsertPersonParams) error {
	_, err := q.db.Exec(ctx, insertPerson,
		p.Dupersid, p.Agelast, p.Sex, p.Racethx, p.Povcat, p.Inscov, p.Diabdx,
		p.Varstr, p.Varpsu, p.Perwt, p.Rxtot, p.Rxxptot, p.Anyfill)
	return err
}

const countPersons = `SELECT count(*) FROM person_pmed`

func (q *Queries) CountPersons(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countPersons).Scan(&n)
	return n, err
}

const countAnyFill = `SELECT count(*) FROM person_pmed WHERE anyfill = 1`

func (q *Queries) CountAnyFill(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countAnyFill).Scan(&n)
	return n, err
}

const sumFillCounts = `SELECT coalesce(sum(rxtot), 0) FROM person_pmed`

func (q *Queries) SumFillCounts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, sumFillCounts).Scan(&n)
	return n, err
}

// PersonSummary is the fill summary stored for one person.
type PersonSummary struct {
	Dupersid string
	Rxtot    int32
	Rxxptot  pgtype.Numeric
	Anyfill  int32
	Perwt    float64
}

const getPerson = `
SELECT dupersid, rxtot, rxxptot, anyfill, perwt
FROM person_pmed WHERE dupersid = $1`

func (q *Queries) GetPerson(ctx context.Context, dupersid string) (PersonSummary, error) {
	var p PersonSummary
	err := q.db.QueryRow(ctx, getPerson, dupersid).
		Scan(&p.Dupersid, &p.Rxtot, &p.Rxxptot, &p.Anyfill, &p.Perwt)
	return p, err
}

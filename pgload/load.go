package pgload

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parquet-go/parquet-go"

	"mepslink/meps"
)

//go:embed schema.sql
var schema string

// LoadParquet streams an analytic Parquet file into the person_pmed
// table using batched transactions. The table's primary key re-enforces
// the one-row-per-person invariant at the database layer: a duplicate
// person id fails the batch and aborts the load.
func LoadParquet(ctx context.Context, parquetPath, connStr string, batchSize int) error {
	start := time.Now()

	f, err := os.Open(parquetPath)
	if err != nil {
		return fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[meps.PersonRow](f)
	defer reader.Close()
	totalRows := reader.NumRows()

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("parse connection: %w", err)
	}
	poolConfig.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	var (
		tx       pgx.Tx
		q        *Queries
		inserted int64
		batch    int
		lastLog  = time.Now()
	)

	beginTx := func() error {
		tx, err = pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		q = New(tx)
		return nil
	}

	if err := beginTx(); err != nil {
		return err
	}

	const readBatch = 4096
	buf := make([]meps.PersonRow, readBatch)

	for {
		n, readErr := reader.Read(buf)

		for i := 0; i < n; i++ {
			if err := q.InsertPerson(ctx, insertParams(&buf[i])); err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("insert person %s: %w", buf[i].PersonID, err)
			}
			inserted++
			batch++

			if batch >= batchSize {
				if err := tx.Commit(ctx); err != nil {
					return fmt.Errorf("commit: %w", err)
				}
				if err := beginTx(); err != nil {
					return err
				}
				batch = 0
			}

			if time.Since(lastLog) >= 5*time.Second {
				elapsed := time.Since(start).Seconds()
				log.Printf("  progress: %d/%d rows (%.0f rows/s)",
					inserted, totalRows, float64(inserted)/elapsed)
				lastLog = time.Now()
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			tx.Rollback(ctx)
			return fmt.Errorf("read parquet: %w", readErr)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("final commit: %w", err)
	}

	elapsed := time.Since(start)
	log.Printf("loaded %d persons in %s (%.0f rows/s)",
		inserted, elapsed.Round(time.Millisecond), float64(inserted)/elapsed.Seconds())
	return nil
}

func insertParams(r *meps.PersonRow) InsertPersonParams {
	return InsertPersonParams{
		Dupersid: r.PersonID,
		Agelast:  r.Age,
		Sex:      r.Sex,
		Racethx:  r.RaceEth,
		Povcat:   r.PovCat,
		Inscov:   r.InsCov,
		Diabdx:   r.DiabetesDx,
		Varstr:   r.Stratum,
		Varpsu:   r.Cluster,
		Perwt:    r.Weight,
		Rxtot:    r.FillCount,
		Rxxptot:  floatToNumeric(r.ExpTotal),
		Anyfill:  r.AnyFill,
	}
}

func floatToNumeric(f float64) pgtype.Numeric {
	bf := big.NewFloat(f)
	text := bf.Text('f', -1)
	var num pgtype.Numeric
	num.Scan(text)
	return num
}

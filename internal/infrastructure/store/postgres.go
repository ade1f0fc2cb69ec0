package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// ConnectPostgres opens a pooled connection and verifies it.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return err
	}
	log.Println("[Store] Schema is up to date")
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case pqCode(err) == uniqueViolation:
		return ErrDuplicate
	case pqCode(err) == invalidTextRepresentation:
		// A malformed UUID can never match a row.
		return ErrNotFound
	}
	return err
}

// requireAffected turns a write that matched no row into ErrNotFound.
func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// affectedOne reports whether a conditional write matched its row.
func affectedOne(res sql.Result, err error) (bool, error) {
	if err != nil {
		if translate(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func jsonValue(v any) ([]byte, error) {
	return json.Marshal(v)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

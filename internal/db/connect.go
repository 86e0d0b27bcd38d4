package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"modernc.org/sqlite"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:quizzer.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/quizzer?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// either driver, so callers can map a lost insert race to the same response as
// a pre-checked duplicate.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		// SQLITE_CONSTRAINT_UNIQUE, SQLITE_CONSTRAINT_PRIMARYKEY
		return sqErr.Code() == 2067 || sqErr.Code() == 1555
	}
	return false
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS quizzes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  author_id INTEGER NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS questions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  text TEXT NOT NULL,
  correct_option_id INTEGER NOT NULL DEFAULT -1
);

CREATE TABLE IF NOT EXISTS answer_options (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_question_rel (
  quiz_id INTEGER NOT NULL,
  question_id INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS question_answer_rel (
  question_id INTEGER NOT NULL,
  answer_option_id INTEGER NOT NULL
);

-- Append-only solve log. Rows are written once per answered question per
-- session and never mutated or deleted.
CREATE TABLE IF NOT EXISTS answer_records (
  user_id INTEGER NOT NULL,
  quiz_id INTEGER NOT NULL,
  session_id INTEGER NOT NULL,
  question_id INTEGER NOT NULL,
  option_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answer_records_user ON answer_records(user_id, session_id);

-- Reporting view over the solve log. questions is LEFT-joined so history rows
-- survive a quiz edit, which replaces question ids; such records then grade as
-- incorrect rather than disappearing.
CREATE VIEW IF NOT EXISTS quiz_results AS
  SELECT ar.user_id, ar.quiz_id, ar.session_id, ar.question_id, ar.option_id,
         qu.correct_option_id,
         qz.name AS quiz_name, qz.author_id,
         su.username AS user_name, au.username AS author_name
  FROM answer_records ar
  JOIN quizzes qz ON qz.id = ar.quiz_id
  LEFT JOIN questions qu ON qu.id = ar.question_id
  JOIN users su ON su.id = ar.user_id
  JOIN users au ON au.id = qz.author_id;
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS quizzes (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  author_id BIGINT NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS questions (
  id BIGSERIAL PRIMARY KEY,
  text TEXT NOT NULL,
  correct_option_id BIGINT NOT NULL DEFAULT -1
);

CREATE TABLE IF NOT EXISTS answer_options (
  id BIGSERIAL PRIMARY KEY,
  text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_question_rel (
  quiz_id BIGINT NOT NULL,
  question_id BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS question_answer_rel (
  question_id BIGINT NOT NULL,
  answer_option_id BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS answer_records (
  user_id BIGINT NOT NULL,
  quiz_id BIGINT NOT NULL,
  session_id BIGINT NOT NULL,
  question_id BIGINT NOT NULL,
  option_id BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answer_records_user ON answer_records(user_id, session_id);

CREATE OR REPLACE VIEW quiz_results AS
  SELECT ar.user_id, ar.quiz_id, ar.session_id, ar.question_id, ar.option_id,
         qu.correct_option_id,
         qz.name AS quiz_name, qz.author_id,
         su.username AS user_name, au.username AS author_name
  FROM answer_records ar
  JOIN quizzes qz ON qz.id = ar.quiz_id
  LEFT JOIN questions qu ON qu.id = ar.question_id
  JOIN users su ON su.id = ar.user_id
  JOIN users au ON au.id = qz.author_id;
`

package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Driver("oracle"), ""); err == nil {
		t.Fatal("unknown driver should fail")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	h, err := Open(context.Background(), DriverSQLite,
		"file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })

	insert := func() error {
		_, err := h.Exec(
			`INSERT INTO users (username, password_hash, role, created_at) VALUES ('alice','x','author',0)`)
		return err
	}
	if err := insert(); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err = insert()
	if err == nil {
		t.Fatal("duplicate username should violate the unique constraint")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("constraint failure not recognized: %v", err)
	}

	for _, other := range []error{nil, sql.ErrNoRows, errors.New("disk on fire")} {
		if IsUniqueViolation(other) {
			t.Errorf("%v misclassified as unique violation", other)
		}
	}
}

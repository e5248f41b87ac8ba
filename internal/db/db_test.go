package db

import (
	"path/filepath"
	"testing"

	"socialnet/internal/models"
)

func TestIsPostgres(t *testing.T) {
	cases := map[string]bool{
		"postgres://u:p@h/db":            true,
		"postgresql://u:p@h/db":          true,
		"host=localhost user=u dbname=d": true,
		"/tmp/test.db":                   false,
		"file:test.db?cache=shared":      false,
	}
	for dsn, want := range cases {
		if got := IsPostgres(dsn); got != want {
			t.Errorf("IsPostgres(%q) = %v, want %v", dsn, got, want)
		}
	}
}

func TestSqliteDSN(t *testing.T) {
	if got := sqliteDSN("/tmp/a.db"); got != "/tmp/a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Errorf("got %q", got)
	}
	if got := sqliteDSN("a.db?mode=rwc"); got != "a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Errorf("got %q", got)
	}
	if got := sqliteDSN("a.db?_pragma=journal_mode(WAL)"); got != "a.db?_pragma=journal_mode(WAL)" {
		t.Errorf("caller pragmas must be kept, got %q", got)
	}
}

func TestInitMigratesSchema(t *testing.T) {
	conn, err := Init(filepath.Join(t.TempDir(), "init.db"))
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	if DB != conn {
		t.Error("Init should set DB")
	}
	for _, m := range []any{&models.User{}, &models.Post{}, &models.Comment{}, &models.Follow{}, &models.Like{}} {
		if !conn.Migrator().HasTable(m) {
			t.Errorf("missing table for %T", m)
		}
	}
}

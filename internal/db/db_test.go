package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestParseDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    Driver
		wantErr bool
	}{
		{in: "postgres", want: Postgres},
		{in: "PostgreSQL", want: Postgres},
		{in: "pgx", want: Postgres},
		{in: "sqlite", want: SQLite},
		{in: " sqlite3 ", want: SQLite},
		{in: "mysql", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDriver(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	query := `UPDATE products SET name = ?, price = ? WHERE id = ?`

	if got := SQLite.Rebind(query); got != query {
		t.Errorf("sqlite query should be unchanged, got %q", got)
	}

	want := `UPDATE products SET name = $1, price = $2 WHERE id = $3`
	if got := Postgres.Rebind(query); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestConnectSQLiteAndEnsureSchema(t *testing.T) {
	database, err := Connect(SQLite, filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := EnsureSchema(ctx, database, SQLite); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	// second run must be a no-op
	if err := EnsureSchema(ctx, database, SQLite); err != nil {
		t.Fatalf("ensure schema twice: %v", err)
	}

	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty table, got %d rows", count)
	}
}

func TestConnectEmptyURL(t *testing.T) {
	if _, err := Connect(Postgres, ""); err == nil {
		t.Fatal("expected error for empty database URL")
	}
}

package testutil

import (
	"context"
	"testing"
)

func TestStubDBStoresAndQueriesState(t *testing.T) {
	ctx := context.Background()
	db, conn := NewStubDB()
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2)`, "entries", []byte(`[]`)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got, ok := conn.Payload("entries"); !ok || string(got) != "[]" {
		t.Fatalf("unexpected payload %q ok=%v", got, ok)
	}

	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var seen int
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			t.Fatalf("scan: %v", err)
		}
		seen++
	}
	_ = rows.Close()
	if seen != 1 {
		t.Fatalf("expected one row, got %d", seen)
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM state WHERE bucket = $1`, "entries"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := conn.Payload("entries"); ok {
		t.Fatalf("expected row deleted")
	}
	if _, err := db.ExecContext(ctx, `UPDATE state SET payload = $1`, "x"); err == nil {
		t.Fatalf("expected unsupported statement error")
	}
}

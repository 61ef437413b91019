package db

import "testing"

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer d.Close()

	// Every table in the schema should exist.
	for _, table := range []string{"notifications", "task_runs", "kv_cache"} {
		var name string
		err := d.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestKVRoundTrip(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer d.Close()

	if _, err := d.Exec("INSERT INTO kv_cache (key, value) VALUES (?, ?)", "plan", "pro"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var v string
	if err := d.QueryRow("SELECT value FROM kv_cache WHERE key = ?", "plan").Scan(&v); err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != "pro" {
		t.Errorf("expected pro, got %q", v)
	}
}

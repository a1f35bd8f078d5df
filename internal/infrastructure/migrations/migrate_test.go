package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsPaired(t *testing.T) {
	fsys, dir := Source()
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}

func TestSchemaCoversLedgerTables(t *testing.T) {
	fsys, _ := Source()
	b, err := fs.ReadFile(fsys, "sql/000001_loan_ledger.up.sql")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, table := range []string{"loan_products", "loans", "loan_payments", "collateral_changes", "liquidations", "audit_logs"} {
		if !strings.Contains(string(b), "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Errorf("table %s missing from schema", table)
		}
	}
}

package migrations

import (
	"testing"

	"github.com/pressly/goose/v3"
)

func TestMigrationsAreCollectable(t *testing.T) {
	goose.SetBaseFS(FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("SetDialect: %v", err)
	}

	files, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("CollectMigrations: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(files))
	}
	for i, m := range files {
		if m.Version != int64(i+1) {
			t.Errorf("expected version %d at position %d, got %d", i+1, i, m.Version)
		}
	}
}

package migrations_test

import (
	"context"
	"testing"

	"github.com/playperu/codexhunt/internal/database"
	"github.com/playperu/codexhunt/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	want := []string{"teams", "members", "coupons"}

	for _, table := range want {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}

func TestTeamDefaults(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO teams (id, name, story) VALUES ('123456', 'Nebula', 2)`); err != nil {
		t.Fatalf("insert team: %v", err)
	}

	var stage, phase int
	var health float64
	var restored bool
	err = db.QueryRow(`SELECT stage, phase, health, is_restored FROM teams WHERE id = '123456'`).
		Scan(&stage, &phase, &health, &restored)
	if err != nil {
		t.Fatalf("select team: %v", err)
	}
	if stage != 1 || phase != 1 || health != 100 || restored {
		t.Errorf("defaults = (%d, %d, %v, %v), want (1, 1, 100, false)", stage, phase, health, restored)
	}
}

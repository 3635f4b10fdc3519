package main

import (
	"regexp"
	"testing"

	"github.com/geseib/personalboard/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.AccessCode{}); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}
	return db
}

func TestRandomCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := randomCode()
		if err != nil {
			t.Fatalf("randomCode returned error: %v", err)
		}
		if !sixDigits.MatchString(code) {
			t.Fatalf("expected 6 digits, got %q", code)
		}
	}
}

func TestMintUniqueAvailableCodes(t *testing.T) {
	db := setupTestDB(t)

	codes, err := mint(db, 50)
	if err != nil {
		t.Fatalf("mint returned error: %v", err)
	}
	if len(codes) != 50 {
		t.Fatalf("expected 50 codes, got %d", len(codes))
	}

	seen := map[string]bool{}
	for _, code := range codes {
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
		if !sixDigits.MatchString(code) {
			t.Fatalf("expected 6 digits, got %q", code)
		}
	}

	var rows []models.AccessCode
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("failed loading rows: %v", err)
	}
	if len(rows) != 50 {
		t.Fatalf("expected 50 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Status != models.CodeStatusAvailable {
			t.Fatalf("expected AVAILABLE, got %s", row.Status)
		}
	}
}

func TestMintReRollsCollisions(t *testing.T) {
	db := setupTestDB(t)

	// Pre-seed a code; a collision during minting must be skipped, not fail.
	if err := db.Create(&models.AccessCode{Code: "123456", Status: models.CodeStatusClaimed}).Error; err != nil {
		t.Fatalf("failed seeding: %v", err)
	}

	codes, err := mint(db, 20)
	if err != nil {
		t.Fatalf("mint returned error: %v", err)
	}
	for _, code := range codes {
		if code == "123456" {
			t.Fatal("mint must not report a pre-existing code as newly minted")
		}
	}
}

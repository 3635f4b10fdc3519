package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geseib/personalboard/internal/models"
	"github.com/geseib/personalboard/internal/protocol"
	"github.com/geseib/personalboard/internal/secrets"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

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

	if err := db.AutoMigrate(&models.AccessCode{}, &models.AuditLog{}); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}
	return db
}

type failingProvider struct{}

func (failingProvider) FetchSigningSecret(context.Context) ([]byte, error) {
	return nil, errors.New("parameter store unreachable")
}

func TestActivationServiceClaim(t *testing.T) {
	db := setupTestDB(t)
	svc := NewActivationService(db, secrets.NewCache(secrets.StaticProvider("secret")))

	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return frozen }

	if err := db.Create(&models.AccessCode{Code: "100200", Status: models.CodeStatusAvailable}).Error; err != nil {
		t.Fatalf("failed seeding code: %v", err)
	}

	t.Run("successful claim derives all timestamps from now", func(t *testing.T) {
		grant, err := svc.Claim(context.Background(), "100200", "device-a")
		if err != nil {
			t.Fatalf("Claim returned error: %v", err)
		}
		if grant.ExpiresIn != protocol.SessionLifetimeSeconds {
			t.Fatalf("expected ExpiresIn=%d, got %d", protocol.SessionLifetimeSeconds, grant.ExpiresIn)
		}
		if want := frozen.Unix() + protocol.SessionLifetimeSeconds; grant.ExpiresAt != want {
			t.Fatalf("expected ExpiresAt=%d, got %d", want, grant.ExpiresAt)
		}

		var row models.AccessCode
		if err := db.First(&row, "code = ?", "100200").Error; err != nil {
			t.Fatalf("failed loading row: %v", err)
		}
		if row.Status != models.CodeStatusClaimed {
			t.Fatalf("expected CLAIMED, got %s", row.Status)
		}
		if row.ClientID != "device-a" {
			t.Fatalf("expected client binding, got %q", row.ClientID)
		}
		if row.ClaimedAt != frozen.Unix() {
			t.Fatalf("expected claimedAt=%d, got %d", frozen.Unix(), row.ClaimedAt)
		}
		if row.ExpiresAt != row.ClaimedAt+protocol.SessionLifetimeSeconds {
			t.Fatalf("expiresAt must be claimedAt+7d, got %d", row.ExpiresAt)
		}
		if row.TTL != row.ExpiresAt+86400 {
			t.Fatalf("ttl must be expiresAt+1d, got %d", row.TTL)
		}
	})

	t.Run("CLAIMED is terminal for every client", func(t *testing.T) {
		if _, err := svc.Claim(context.Background(), "100200", "device-a"); !errors.Is(err, ErrCodeRejected) {
			t.Fatalf("expected ErrCodeRejected for same client, got %v", err)
		}
		if _, err := svc.Claim(context.Background(), "100200", "device-b"); !errors.Is(err, ErrCodeRejected) {
			t.Fatalf("expected ErrCodeRejected for other client, got %v", err)
		}
	})

	t.Run("unknown code is rejected", func(t *testing.T) {
		if _, err := svc.Claim(context.Background(), "000001", "device-a"); !errors.Is(err, ErrCodeRejected) {
			t.Fatalf("expected ErrCodeRejected, got %v", err)
		}
	})

	t.Run("UNSET and ASSIGNED are claimable", func(t *testing.T) {
		for i, status := range []models.CodeStatus{models.CodeStatusUnset, models.CodeStatusAssigned} {
			code := []string{"300100", "300200"}[i]
			if err := db.Create(&models.AccessCode{Code: code, Status: status}).Error; err != nil {
				t.Fatalf("failed seeding: %v", err)
			}
			if _, err := svc.Claim(context.Background(), code, "device-c"); err != nil {
				t.Fatalf("expected claim from %s to succeed, got %v", status, err)
			}
		}
	})
}

func TestActivationServiceSecretFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := NewActivationService(db, secrets.NewCache(failingProvider{}))

	if err := db.Create(&models.AccessCode{Code: "400400", Status: models.CodeStatusAvailable}).Error; err != nil {
		t.Fatalf("failed seeding code: %v", err)
	}

	_, err := svc.Claim(context.Background(), "400400", "device-a")
	if !errors.Is(err, ErrSigningSecret) {
		t.Fatalf("expected ErrSigningSecret, got %v", err)
	}

	// A configuration failure must not burn the code.
	var row models.AccessCode
	if err := db.First(&row, "code = ?", "400400").Error; err != nil {
		t.Fatalf("failed loading row: %v", err)
	}
	if row.Status != models.CodeStatusAvailable {
		t.Fatalf("expected code to stay AVAILABLE, got %s", row.Status)
	}
}

func TestActivationServiceValidateSession(t *testing.T) {
	db := setupTestDB(t)
	svc := NewActivationService(db, secrets.NewCache(secrets.StaticProvider("secret")))

	if err := db.Create(&models.AccessCode{Code: "500500", Status: models.CodeStatusAvailable}).Error; err != nil {
		t.Fatalf("failed seeding code: %v", err)
	}
	grant, err := svc.Claim(context.Background(), "500500", "device-a")
	if err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}

	t.Run("fresh token validates", func(t *testing.T) {
		claims, err := svc.ValidateSession(context.Background(), grant.Token)
		if err != nil {
			t.Fatalf("ValidateSession returned error: %v", err)
		}
		if claims.Subject != "device-a" || claims.ID != "500500" {
			t.Fatalf("unexpected claims: sub=%q jti=%q", claims.Subject, claims.ID)
		}
	})

	t.Run("deleted row revokes the session", func(t *testing.T) {
		if err := db.Delete(&models.AccessCode{}, "code = ?", "500500").Error; err != nil {
			t.Fatalf("failed deleting row: %v", err)
		}
		if _, err := svc.ValidateSession(context.Background(), grant.Token); err == nil {
			t.Fatal("expected revoked session to fail validation")
		}
	})
}

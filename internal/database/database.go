package database

import (
	"fmt"
	"time"

	"github.com/geseib/personalboard/internal/config"
	"github.com/geseib/personalboard/internal/models"
	"github.com/geseib/personalboard/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.AccessCode{},
		&models.AuditLog{},
	)
}

// StartTTLSweeper periodically deletes claimed codes whose ttl has passed.
// This stands in for the managed store's native record-expiry attribute:
// a claimed code's row outlives its session token by a one-day grace
// period and is then gone for good.
func StartTTLSweeper(db *gorm.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			sweep(db)
		}
	}()
}

func sweep(db *gorm.DB) {
	now := time.Now().Unix()
	res := db.Where("ttl > 0 AND ttl < ?", now).Delete(&models.AccessCode{})
	if res.Error != nil {
		logger.Error("code_sweep_failed", res.Error, nil)
		return
	}
	if res.RowsAffected > 0 {
		logger.Info("code_sweep", map[string]interface{}{
			"deleted": res.RowsAffected,
		})
	}
}

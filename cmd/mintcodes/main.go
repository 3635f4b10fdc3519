// Command mintcodes seeds a batch of AVAILABLE access codes for human
// distribution. Codes are printed one per line; collisions with existing
// rows are re-rolled.
package main

import (
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/big"

	"github.com/geseib/personalboard/internal/config"
	"github.com/geseib/personalboard/internal/database"
	"github.com/geseib/personalboard/internal/models"
	"gorm.io/gorm"
)

func main() {
	count := flag.Int("n", 10, "number of codes to mint")
	flag.Parse()

	if *count < 1 {
		log.Fatal("-n must be at least 1")
	}

	cfg := config.Load()
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	codes, err := mint(db, *count)
	if err != nil {
		log.Fatalf("minting codes: %v", err)
	}
	for _, code := range codes {
		fmt.Println(code)
	}
}

func mint(db *gorm.DB, count int) ([]string, error) {
	codes := make([]string, 0, count)
	for len(codes) < count {
		code, err := randomCode()
		if err != nil {
			return nil, err
		}

		row := models.AccessCode{Code: code, Status: models.CodeStatusAvailable}
		if err := db.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

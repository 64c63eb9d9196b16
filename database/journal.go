package database

import (
	"log"

	"receiving-portal/config"
	"receiving-portal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OpenJournalDB connects to the optional receipts journal. With no DSN
// configured the portal runs without a journal and returns (nil, nil).
func OpenJournalDB() (*gorm.DB, error) {
	if config.JournalDSN == "" {
		log.Println("Journal database not configured, receipts will not be logged locally")
		return nil, nil
	}

	db, err := gorm.Open(postgres.Open(config.JournalDSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.ReceiptLog{}, &models.LoginLog{}); err != nil {
		return nil, err
	}
	return db, nil
}

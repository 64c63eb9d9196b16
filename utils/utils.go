package utils

import (
	"log"

	"receiving-portal/models"

	"gorm.io/gorm"
)

// Journal writes are best-effort: a dead journal database must never block
// a receipt that the backend already accepted.

func InsertReceiptLog(db *gorm.DB, entry models.ReceiptLog) {
	if db == nil {
		return
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Warning: receipt log insert failed: %v", err)
	}
}

func InsertLoginLog(db *gorm.DB, entry models.LoginLog) {
	if db == nil {
		return
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Warning: login log insert failed: %v", err)
	}
}

func CloseLoginLog(db *gorm.DB, sessionID string) {
	if db == nil {
		return
	}
	if err := db.Model(&models.LoginLog{}).
		Where("session_id = ? AND logout_at IS NULL", sessionID).
		Update("logout_at", gorm.Expr("NOW()")).Error; err != nil {
		log.Printf("Warning: login log close failed: %v", err)
	}
}

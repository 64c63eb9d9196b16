package models

import (
	"time"

	"receiving-portal/controllers/idgen"
	"receiving-portal/types"

	"gorm.io/gorm"
)

// ReceiptLog records every GRPO posted through this portal. Best-effort
// audit trail, the receiving workflow never depends on it.
type ReceiptLog struct {
	ID           types.SnowflakeID `json:"id" gorm:"primary_key"`
	CreatedAt    time.Time         `json:"created_at"`
	PoDocEntry   int               `json:"po_doc_entry"`
	WhsCode      string            `json:"whs_code"`
	PostedQty    float64           `json:"posted_qty"`
	PostedBy     string            `json:"posted_by"`
	GrpoDocEntry int               `json:"grpo_doc_entry"`
	SupplierRef  string            `json:"supplier_ref"`
	PayloadJSON  string            `json:"payload_json" gorm:"type:text"`
	OpHash       string            `json:"op_hash" gorm:"index"`
}

func (r *ReceiptLog) BeforeCreate(tx *gorm.DB) (err error) {
	r.ID = types.SnowflakeID(idgen.GenerateID())
	return
}

type LoginLog struct {
	ID            types.SnowflakeID `json:"id" gorm:"primary_key"`
	CreatedAt     time.Time         `json:"created_at"`
	SessionID     string            `json:"session_id" gorm:"index"`
	Username      string            `json:"username"`
	IPAddress     string            `json:"ip_address"`
	UserAgent     string            `json:"user_agent"`
	LoginStatus   string            `json:"login_status"`
	FailureReason *string           `json:"failure_reason"`
	LoginAt       *time.Time        `json:"login_at"`
	LogoutAt      *time.Time        `json:"logout_at"`
}

func (l *LoginLog) BeforeCreate(tx *gorm.DB) (err error) {
	l.ID = types.SnowflakeID(idgen.GenerateID())
	return
}

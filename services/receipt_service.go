package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"

	"receiving-portal/models"
	"receiving-portal/repositories"
	"receiving-portal/utils"
)

type SubmissionStatus string

const (
	SubmitIdle       SubmissionStatus = "idle"
	SubmitValidating SubmissionStatus = "validating"
	SubmitSubmitting SubmissionStatus = "submitting"
	SubmitSucceeded  SubmissionStatus = "succeeded"
	SubmitFailed     SubmissionStatus = "failed"
)

// Pre-flight failures. Each is a distinct user-facing condition and none of
// them makes a network call.
var (
	ErrNoOpenOrder  = errors.New("no order is open")
	ErrNoWarehouse  = errors.New("no warehouse selected")
	ErrNoQuantities = errors.New("no quantities greater than zero")
)

// LineQtyError aborts a submission whose proposal exceeds the line's open
// quantity. The clamp makes this unreachable through normal input; it guards
// against an open quantity that went stale between fetch and submit.
type LineQtyError struct {
	LineNum  int
	Proposed float64
	Open     float64
}

func (e *LineQtyError) Error() string {
	return fmt.Sprintf("quantity %g exceeds open quantity %g on line %d", e.Proposed, e.Open, e.LineNum)
}

// SubmissionResult is what a successful submission hands back: the opaque
// GRPO id plus the ledger rebuilt from the post-submit detail fetch.
type SubmissionResult struct {
	GrpoDocEntry int            `json:"grpoDocEntry"`
	OpHash       string         `json:"opHash"`
	Lines        []LineProposal `json:"lines"`
	Refreshed    bool           `json:"refreshed"`
}

type ReceiptService struct {
	repo   repositories.OrderRepository
	db     *gorm.DB // optional journal
	mailer *Mailer  // optional notification
}

func NewReceiptService(repo repositories.OrderRepository, db *gorm.DB, mailer *Mailer) *ReceiptService {
	return &ReceiptService{repo: repo, db: db, mailer: mailer}
}

// Submit runs one submission attempt end to end:
// validate locally, post the receipt, then re-fetch the order detail and
// reinitialize the ledger from it. The open quantities after a post are
// whatever the backend says they are; they are never derived locally by
// subtracting the submitted quantity, because the posting may be partial,
// rejected per line, or raced by receipts from other sessions.
func (rs *ReceiptService) Submit(st *SessionState, supplierRef string) (*SubmissionResult, error) {
	st.mu.Lock()
	st.SubmitStatus = SubmitValidating

	if st.ledger == nil {
		st.SubmitStatus = SubmitFailed
		st.mu.Unlock()
		return nil, ErrNoOpenOrder
	}
	whs := st.ledger.WhsCode
	if whs == "" {
		st.SubmitStatus = SubmitFailed
		st.mu.Unlock()
		return nil, ErrNoWarehouse
	}
	positives := st.ledger.PositiveProposals()
	if len(positives) == 0 {
		st.SubmitStatus = SubmitFailed
		st.mu.Unlock()
		return nil, ErrNoQuantities
	}
	for _, p := range positives {
		line, _ := st.ledger.Line(p.LineNum)
		if p.Quantity > line.OpenQty {
			st.SubmitStatus = SubmitFailed
			st.mu.Unlock()
			return nil, &LineQtyError{LineNum: p.LineNum, Proposed: p.Quantity, Open: line.OpenQty}
		}
	}

	receipt := &models.ReceiptRequest{
		DocEntry:    st.ledger.DocEntry,
		WhsCode:     whs,
		SupplierRef: supplierRef,
		Lines:       positives,
	}
	token := st.Token
	username := st.Username
	docEntry := st.ledger.DocEntry

	st.SubmitStatus = SubmitSubmitting
	st.mu.Unlock()

	res, err := rs.repo.PostReceipt(token, receipt)
	if err != nil {
		// Nothing was applied optimistically, so the ledger stays as the
		// user left it and a corrected retry needs no re-typing.
		st.mu.Lock()
		st.SubmitStatus = SubmitFailed
		st.mu.Unlock()
		return nil, err
	}

	// The post-submit fetch is the single source of truth for open
	// quantities from here on.
	detail, fetchErr := rs.repo.FetchOrderDetail(token, docEntry, whs)

	st.mu.Lock()
	st.SubmitStatus = SubmitSucceeded
	result := &SubmissionResult{GrpoDocEntry: res.GrpoDocEntry}
	if st.openDoc == docEntry {
		if fetchErr == nil {
			st.ledger = NewLedgerFromDetail(detail, whs)
			result.Lines = st.ledger.Lines()
			result.Refreshed = true
		} else {
			// The receipt is posted but we could not refresh. Drop the
			// stale ledger instead of guessing at new open quantities.
			st.discardLedgerLocked()
		}
	}
	st.mu.Unlock()

	result.OpHash = opHash(username, receipt)
	rs.journal(username, receipt, res, result.OpHash)
	rs.notify(username, receipt, res.GrpoDocEntry)

	return result, nil
}

func (rs *ReceiptService) journal(username string, receipt *models.ReceiptRequest, res *models.ReceiptResult, hash string) {
	if rs.db == nil {
		return
	}
	total := 0.0
	for _, l := range receipt.Lines {
		total += l.Quantity
	}
	payload, _ := json.Marshal(receipt)
	utils.InsertReceiptLog(rs.db, models.ReceiptLog{
		PoDocEntry:   receipt.DocEntry,
		WhsCode:      receipt.WhsCode,
		PostedQty:    total,
		PostedBy:     username,
		GrpoDocEntry: res.GrpoDocEntry,
		SupplierRef:  receipt.SupplierRef,
		PayloadJSON:  string(payload),
		OpHash:       hash,
	})
}

func (rs *ReceiptService) notify(username string, receipt *models.ReceiptRequest, grpoDocEntry int) {
	if rs.mailer == nil {
		return
	}
	if err := rs.mailer.SendReceiptPosted(username, receipt, grpoDocEntry); err != nil {
		log.Printf("Warning: receipt notification mail failed: %v", err)
	}
}

// opHash fingerprints one posting: user + document + warehouse + lines +
// day. The same fingerprint on the same day means the same operation.
func opHash(username string, receipt *models.ReceiptRequest) string {
	lines := slices.Clone(receipt.Lines)
	slices.SortFunc(lines, func(a, b models.ReceiptLine) int { return a.LineNum - b.LineNum })

	payload := map[string]interface{}{
		"sub":      username,
		"docEntry": receipt.DocEntry,
		"whs":      receipt.WhsCode,
		"lines":    lines,
		"date":     time.Now().Format("2006-01-02"),
	}
	if receipt.SupplierRef != "" {
		payload["supplierRef"] = receipt.SupplierRef
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

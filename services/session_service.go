package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"receiving-portal/models"
	"receiving-portal/repositories"
)

// ErrStaleView means a slow fetch finished after the user had already moved
// on (closed the order, opened another one). The response is discarded so it
// cannot clobber the newer view.
var ErrStaleView = errors.New("view changed while loading")

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SessionState is the portal-side state of one logged-in user: filter
// criteria, the current result page, the selected warehouse and, while an
// order is open, its quantity ledger. All mutation goes through the named
// operations on SessionService; there is one writer at a time per session.
type SessionState struct {
	mu sync.Mutex

	SessionID  string
	Username   string
	Role       string
	Warehouses []string
	Token      string // upstream bearer token

	Criteria models.SearchCriteria
	Total    int
	Results  []models.PurchaseOrderSummary

	ledger       *Ledger
	openDoc      int // docEntry of the order being viewed (or fetched), 0 = none
	gen          int // bumped on every criteria change, guards slow search responses
	submitting   bool
	SubmitStatus SubmissionStatus
}

// SearchFilters is what the search form sends. Empty dates fall back to the
// current calendar month.
type SearchFilters struct {
	VendorCode string `json:"vendorCode"`
	DueFrom    string `json:"dueFrom"`
	DueTo      string `json:"dueTo"`
	WhsCode    string `json:"whsCode"`
}

type SessionService struct {
	repo     repositories.OrderRepository
	pageSize int

	mu       sync.RWMutex
	sessions map[string]*SessionState
}

func NewSessionService(repo repositories.OrderRepository, pageSize int) *SessionService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &SessionService{
		repo:     repo,
		pageSize: pageSize,
		sessions: make(map[string]*SessionState),
	}
}

// Create registers a new session for a logged-in user. The first warehouse
// of the user becomes the selected one, dates default to the current month.
func (s *SessionService) Create(login *models.LoginResult) *SessionState {
	dueFrom, dueTo := currentMonthRange()

	whs := ""
	if len(login.Warehouses) > 0 {
		whs = login.Warehouses[0]
	}

	st := &SessionState{
		SessionID:  uuid.New().String(),
		Username:   login.Username,
		Role:       login.Role,
		Warehouses: login.Warehouses,
		Token:      login.Token,
		Criteria: models.SearchCriteria{
			DueFrom:  dueFrom,
			DueTo:    dueTo,
			WhsCode:  whs,
			Page:     1,
			PageSize: s.pageSize,
		},
		SubmitStatus: SubmitIdle,
	}

	s.mu.Lock()
	s.sessions[st.SessionID] = st
	s.mu.Unlock()
	return st
}

func (s *SessionService) Get(sessionID string) (*SessionState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[sessionID]
	return st, ok
}

func (s *SessionService) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Search applies new filters, resets to page 1 and runs exactly one search.
func (s *SessionService) Search(st *SessionState, f SearchFilters) (*models.OrderPage, error) {
	st.mu.Lock()
	if f.WhsCode != "" && f.WhsCode != st.Criteria.WhsCode {
		if !st.canAccessWarehouse(f.WhsCode) {
			st.mu.Unlock()
			return nil, &ValidationError{Field: "whsCode", Message: fmt.Sprintf("no access to warehouse %s", f.WhsCode)}
		}
		st.Criteria.WhsCode = f.WhsCode
		st.discardLedgerLocked()
	}
	st.Criteria.VendorCode = f.VendorCode
	if f.DueFrom != "" || f.DueTo != "" {
		st.Criteria.DueFrom = f.DueFrom
		st.Criteria.DueTo = f.DueTo
	} else {
		st.Criteria.DueFrom, st.Criteria.DueTo = currentMonthRange()
	}
	st.Criteria.Page = 1
	st.gen++
	st.mu.Unlock()

	return s.runSearch(st)
}

// Reload repeats the search for the current criteria and page.
func (s *SessionService) Reload(st *SessionState) (*models.OrderPage, error) {
	return s.runSearch(st)
}

// NextPage advances one page and searches. Past the last page it is a no-op
// and no request goes out.
func (s *SessionService) NextPage(st *SessionState) (*models.OrderPage, error) {
	st.mu.Lock()
	if st.Criteria.Page >= st.maxPageLocked() {
		page := st.currentPageLocked()
		st.mu.Unlock()
		return page, nil
	}
	st.Criteria.Page++
	st.mu.Unlock()

	return s.runSearch(st)
}

// PrevPage goes one page back and searches. Below page 1 it is a no-op.
func (s *SessionService) PrevPage(st *SessionState) (*models.OrderPage, error) {
	st.mu.Lock()
	if st.Criteria.Page <= 1 {
		page := st.currentPageLocked()
		st.mu.Unlock()
		return page, nil
	}
	st.Criteria.Page--
	st.mu.Unlock()

	return s.runSearch(st)
}

// SelectWarehouse switches the working warehouse, discards any open order,
// resets to page 1 and searches.
func (s *SessionService) SelectWarehouse(st *SessionState, whsCode string) (*models.OrderPage, error) {
	st.mu.Lock()
	if !st.canAccessWarehouse(whsCode) {
		st.mu.Unlock()
		return nil, &ValidationError{Field: "whsCode", Message: fmt.Sprintf("no access to warehouse %s", whsCode)}
	}
	st.Criteria.WhsCode = whsCode
	st.Criteria.Page = 1
	st.gen++
	st.discardLedgerLocked()
	st.mu.Unlock()

	return s.runSearch(st)
}

// OpenOrder fetches the order detail and builds a fresh ledger from it.
// The fetch runs without holding the session, so by the time it returns the
// user may have closed the view or opened another order. In that case the
// result is dropped (ErrStaleView), never applied.
func (s *SessionService) OpenOrder(st *SessionState, docEntry int) (*Ledger, error) {
	st.mu.Lock()
	token := st.Token
	whs := st.Criteria.WhsCode
	st.openDoc = docEntry
	st.ledger = nil
	st.mu.Unlock()

	detail, err := s.repo.FetchOrderDetail(token, docEntry, whs)

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.openDoc != docEntry {
		return nil, ErrStaleView
	}
	if err != nil {
		st.openDoc = 0
		return nil, err
	}
	st.ledger = NewLedgerFromDetail(detail, whs)
	return st.ledger, nil
}

// CloseOrder discards the ledger. In-flight fetches for it become stale.
func (s *SessionService) CloseOrder(st *SessionState) {
	st.mu.Lock()
	st.discardLedgerLocked()
	st.mu.Unlock()
}

// SetProposed clamps and stores one proposed receive quantity.
func (s *SessionService) SetProposed(st *SessionState, lineNum int, raw float64) (LineProposal, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.ledger == nil {
		return LineProposal{}, ErrNoOpenOrder
	}
	if _, ok := st.ledger.SetProposed(lineNum, raw); !ok {
		return LineProposal{}, &ValidationError{Field: "lineNum", Message: fmt.Sprintf("unknown line %d", lineNum)}
	}
	line, _ := st.ledger.Line(lineNum)
	return line, nil
}

// Ledger returns the open order's working set, or nil.
func (s *SessionService) Ledger(st *SessionState) *Ledger {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ledger
}

// CurrentPage returns the last fetched result page without searching.
func (s *SessionService) CurrentPage(st *SessionState) *models.OrderPage {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.currentPageLocked()
}

// Criteria returns a copy of the current criteria.
func (s *SessionService) Criteria(st *SessionState) models.SearchCriteria {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.Criteria
}

// runSearch issues one backend search for the criteria as they are now.
// A result is applied only if the criteria did not change underneath the
// request; a stale result still returns to its caller but does not touch
// the shared state.
func (s *SessionService) runSearch(st *SessionState) (*models.OrderPage, error) {
	st.mu.Lock()
	criteria := st.Criteria
	token := st.Token
	gen := st.gen
	st.mu.Unlock()

	page, err := s.repo.SearchOrders(token, criteria)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	if st.gen == gen {
		st.Total = page.Total
		st.Results = page.Data
	}
	st.mu.Unlock()
	return page, nil
}

// BeginSubmit marks the session as submitting. False means a submission is
// already in flight: the trigger stays disabled until EndSubmit.
func (st *SessionState) BeginSubmit() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.submitting {
		return false
	}
	st.submitting = true
	return true
}

func (st *SessionState) EndSubmit() {
	st.mu.Lock()
	st.submitting = false
	st.mu.Unlock()
}

func (st *SessionState) canAccessWarehouse(whs string) bool {
	for _, w := range st.Warehouses {
		if w == whs {
			return true
		}
	}
	return false
}

func (st *SessionState) discardLedgerLocked() {
	st.ledger = nil
	st.openDoc = 0
}

func (st *SessionState) currentPageLocked() *models.OrderPage {
	return &models.OrderPage{Data: st.Results, Total: st.Total}
}

func (st *SessionState) maxPageLocked() int {
	if st.Total <= 0 {
		return 1
	}
	max := (st.Total + st.Criteria.PageSize - 1) / st.Criteria.PageSize
	if max < 1 {
		max = 1
	}
	return max
}

func currentMonthRange() (string, string) {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}

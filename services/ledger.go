package services

import (
	"golang.org/x/exp/slices"

	"receiving-portal/models"
)

// LineProposal is the working state of one purchase order line: the fetched
// quantities plus the quantity the user wants to receive now. OpenQty is
// read-only here, it always comes from the last detail fetch.
type LineProposal struct {
	LineNum     int     `json:"lineNum"`
	ItemCode    string  `json:"itemCode"`
	Description string  `json:"description"`
	OrderedQty  float64 `json:"orderedQty"`
	ReceivedQty float64 `json:"receivedQty"`
	OpenQty     float64 `json:"openQty"`
	ProposedQty float64 `json:"proposedQty"`
}

// Ledger holds the proposals for the currently open order, keyed by line
// number. Line order is the order the backend returned the detail in.
type Ledger struct {
	DocEntry int
	DocNum   int
	WhsCode  string

	lines []LineProposal
	index map[int]int
}

// NewLedgerFromDetail seeds every proposal with the line's open quantity.
// That is only a convenience default: zero and anything in between are valid.
func NewLedgerFromDetail(detail *models.OrderDetail, whsCode string) *Ledger {
	l := &Ledger{
		DocEntry: detail.DocEntry,
		DocNum:   detail.DocNum,
		WhsCode:  whsCode,
		index:    make(map[int]int, len(detail.Lines)),
	}
	for _, line := range detail.Lines {
		l.index[line.LineNum] = len(l.lines)
		l.lines = append(l.lines, LineProposal{
			LineNum:     line.LineNum,
			ItemCode:    line.ItemCode,
			Description: line.Description,
			OrderedQty:  line.OrderedQty,
			ReceivedQty: line.ReceivedQty,
			OpenQty:     line.OpenQty,
			ProposedQty: line.OpenQty,
		})
	}
	return l
}

// SetProposed stores a proposal for a line, clamped into [0, openQty].
// Out-of-range input is corrected silently, never rejected: the caller is
// typing into a quantity box and expects the field to snap back.
// Returns the stored value.
func (l *Ledger) SetProposed(lineNum int, raw float64) (float64, bool) {
	i, ok := l.index[lineNum]
	if !ok {
		return 0, false
	}
	qty := raw
	if qty < 0 {
		qty = 0
	}
	if qty > l.lines[i].OpenQty {
		qty = l.lines[i].OpenQty
	}
	l.lines[i].ProposedQty = qty
	return qty, true
}

// Lines returns a copy of the working set in display order.
func (l *Ledger) Lines() []LineProposal {
	return slices.Clone(l.lines)
}

func (l *Ledger) Line(lineNum int) (LineProposal, bool) {
	i, ok := l.index[lineNum]
	if !ok {
		return LineProposal{}, false
	}
	return l.lines[i], true
}

// PositiveProposals filters to quantity > 0, preserving line order. This is
// the canonical input for building a receipt request.
func (l *Ledger) PositiveProposals() []models.ReceiptLine {
	var out []models.ReceiptLine
	for _, line := range l.lines {
		if line.ProposedQty > 0 {
			out = append(out, models.ReceiptLine{LineNum: line.LineNum, Quantity: line.ProposedQty})
		}
	}
	return out
}

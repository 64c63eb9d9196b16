package models

type ReceiptLine struct {
	LineNum  int     `json:"lineNum"`
	Quantity float64 `json:"quantity"`
}

// ReceiptRequest is built fresh per submission from the positive proposals
// of the open order. It is never kept around after the call.
type ReceiptRequest struct {
	DocEntry    int           `json:"docEntry"`
	WhsCode     string        `json:"whsCode"`
	SupplierRef string        `json:"supplierRef,omitempty"`
	Lines       []ReceiptLine `json:"lines"`
}

// ReceiptResult carries the opaque GRPO document id returned by the backend.
type ReceiptResult struct {
	GrpoDocEntry int `json:"grpoDocEntry"`
}

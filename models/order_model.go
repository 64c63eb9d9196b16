package models

// PurchaseOrderSummary is one row of the open purchase order list.
// Rows live only until the next search or page change.
type PurchaseOrderSummary struct {
	DocEntry     int     `json:"docEntry"`
	DocNum       int     `json:"docNum"`
	VendorCode   string  `json:"vendorCode"`
	VendorName   string  `json:"vendorName"`
	DocDueDate   string  `json:"docDueDate"`
	TotalOpenQty float64 `json:"totalOpenQty"`
}

// PurchaseOrderLine mirrors one document line as the backend reports it.
// OpenQty = OrderedQty - ReceivedQty is maintained by the backend and is
// never recomputed here. It is only trustworthy right after a detail fetch.
type PurchaseOrderLine struct {
	LineNum       int     `json:"lineNum"`
	ItemCode      string  `json:"itemCode"`
	Description   string  `json:"description"`
	OrderedQty    float64 `json:"orderedQty"`
	ReceivedQty   float64 `json:"receivedQty"`
	OpenQty       float64 `json:"openQty"`
	WarehouseCode string  `json:"warehouseCode"`
}

type OrderDetail struct {
	DocEntry   int                 `json:"docEntry"`
	DocNum     int                 `json:"docNum"`
	DocDueDate string              `json:"docDueDate"`
	Lines      []PurchaseOrderLine `json:"lines"`
}

type OrderPage struct {
	Data  []PurchaseOrderSummary `json:"data"`
	Total int                    `json:"total"`
}

// SearchCriteria holds the current filter set for the open-orders list.
// Dates are YYYY-MM-DD. Page is 1-based.
type SearchCriteria struct {
	VendorCode string `json:"vendorCode"`
	DueFrom    string `json:"dueFrom"`
	DueTo      string `json:"dueTo"`
	WhsCode    string `json:"whsCode"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

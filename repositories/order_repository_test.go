package repositories

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"receiving-portal/models"
)

func TestSearchOrdersBuildsQuery(t *testing.T) {
	var gotQuery map[string]string
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		json.NewEncoder(w).Encode(models.OrderPage{
			Total: 1,
			Data: []models.PurchaseOrderSummary{
				{DocEntry: 500, DocNum: 10042, VendorCode: "V100", VendorName: "Proveedor 100", DocDueDate: "2026-08-15"},
			},
		})
	}))
	defer srv.Close()

	repo := NewOrderRepositoryWith(srv.URL, nil)
	page, err := repo.SearchOrders("tok", models.SearchCriteria{
		VendorCode: "V100",
		DueFrom:    "2026-08-01",
		DueTo:      "2026-08-31",
		WhsCode:    "WH1",
		Page:       2,
		PageSize:   20,
	})
	require.NoError(t, err)

	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, "2", gotQuery["page"])
	require.Equal(t, "20", gotQuery["pageSize"])
	require.Equal(t, "2026-08-01", gotQuery["due_from"])
	require.Equal(t, "2026-08-31", gotQuery["due_to"])
	require.Equal(t, "V100", gotQuery["vendorCode"])
	require.Equal(t, "WH1", gotQuery["whsCode"])

	require.Equal(t, 1, page.Total)
	require.Equal(t, 500, page.Data[0].DocEntry)
}

func TestSearchOrdersOmitsEmptyOptionalFilters(t *testing.T) {
	var query map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		json.NewEncoder(w).Encode(models.OrderPage{})
	}))
	defer srv.Close()

	repo := NewOrderRepositoryWith(srv.URL, nil)
	_, err := repo.SearchOrders("tok", models.SearchCriteria{
		DueFrom: "2026-08-01", DueTo: "2026-08-31", Page: 1, PageSize: 20,
	})
	require.NoError(t, err)

	_, hasVendor := query["vendorCode"]
	require.False(t, hasVendor)
	_, hasWhs := query["whsCode"]
	require.False(t, hasWhs)
}

func TestUnauthorizedBecomesErrUnauthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Token inválido o ausente"},
		})
	}))
	defer srv.Close()

	repo := NewOrderRepositoryWith(srv.URL, nil)

	_, err := repo.SearchOrders("tok", models.SearchCriteria{Page: 1, PageSize: 20})
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = repo.FetchOrderDetail("tok", 500, "WH1")
	require.ErrorIs(t, err, ErrUnauthenticated)

	err = repo.Me("tok")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNotFoundDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	repo := NewOrderRepositoryWith(srv.URL, nil)
	_, err := repo.FetchOrderDetail("tok", 999999, "WH1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestErrorEnvelopeIsSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Cantidad 12 > OpenQty 10 en línea 1"},
		})
	}))
	defer srv.Close()

	repo := NewOrderRepositoryWith(srv.URL, nil)
	_, err := repo.PostReceipt("tok", &models.ReceiptRequest{DocEntry: 500, WhsCode: "WH1"})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, "Cantidad 12 > OpenQty 10 en línea 1", upstream.Message)
	require.Equal(t, http.StatusBadRequest, upstream.StatusCode)
}

func TestPlainTextErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("service layer down"))
	}))
	defer srv.Close()

	repo := NewOrderRepositoryWith(srv.URL, nil)
	_, err := repo.SearchOrders("tok", models.SearchCriteria{Page: 1, PageSize: 20})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, "service layer down", upstream.Message)
}

func TestPostReceiptBodyAndResult(t *testing.T) {
	var got models.ReceiptRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/receipts", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.ReceiptResult{GrpoDocEntry: 900})
	}))
	defer srv.Close()

	repo := NewOrderRepositoryWith(srv.URL, nil)
	result, err := repo.PostReceipt("tok", &models.ReceiptRequest{
		DocEntry:    500,
		WhsCode:     "WH1",
		SupplierRef: "REM-123",
		Lines:       []models.ReceiptLine{{LineNum: 1, Quantity: 7}},
	})
	require.NoError(t, err)

	require.Equal(t, 900, result.GrpoDocEntry)
	require.Equal(t, 500, got.DocEntry)
	require.Equal(t, "WH1", got.WhsCode)
	require.Equal(t, "REM-123", got.SupplierRef)
	require.Equal(t, []models.ReceiptLine{{LineNum: 1, Quantity: 7}}, got.Lines)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(models.LoginResult{
			Token:      "jwt-token",
			Username:   creds["username"],
			Role:       "user",
			Warehouses: []string{"WH1", "WH2"},
		})
	}))
	defer srv.Close()

	repo := NewOrderRepositoryWith(srv.URL, nil)

	result, err := repo.Login("maria", "secret")
	require.NoError(t, err)
	require.Equal(t, "jwt-token", result.Token)
	require.Equal(t, []string{"WH1", "WH2"}, result.Warehouses)

	_, err = repo.Login("maria", "wrong")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestFetchOrderDetailPathAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/500", r.URL.Path)
		require.Equal(t, "WH1", r.URL.Query().Get("whsCode"))
		json.NewEncoder(w).Encode(models.OrderDetail{
			DocEntry: 500,
			DocNum:   10042,
			Lines: []models.PurchaseOrderLine{
				{LineNum: 0, ItemCode: "A-100", OrderedQty: 20, ReceivedQty: 15, OpenQty: 5},
			},
		})
	}))
	defer srv.Close()

	repo := NewOrderRepositoryWith(srv.URL, nil)
	detail, err := repo.FetchOrderDetail("tok", 500, "WH1")
	require.NoError(t, err)
	require.Equal(t, 500, detail.DocEntry)
	require.Len(t, detail.Lines, 1)
	require.Equal(t, 5.0, detail.Lines[0].OpenQty)
}

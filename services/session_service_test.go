package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"receiving-portal/models"
)

func newTestSession(repo *fakeRepo, warehouses ...string) (*SessionService, *SessionState) {
	svc := NewSessionService(repo, 20)
	st := svc.Create(&models.LoginResult{
		Token:      "tok",
		Username:   "maria",
		Role:       "user",
		Warehouses: warehouses,
	})
	return svc, st
}

func TestCreateDefaultsToCurrentMonthAndFirstWarehouse(t *testing.T) {
	_, st := newTestSession(&fakeRepo{}, "WH1", "WH2")

	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)

	require.Equal(t, first.Format("2006-01-02"), st.Criteria.DueFrom)
	require.Equal(t, last.Format("2006-01-02"), st.Criteria.DueTo)
	require.Equal(t, "WH1", st.Criteria.WhsCode)
	require.Equal(t, 1, st.Criteria.Page)
	require.Equal(t, 20, st.Criteria.PageSize)
}

func TestSearchResetsPageAndSearchesOnce(t *testing.T) {
	repo := &fakeRepo{
		searchFn: func(c models.SearchCriteria) (*models.OrderPage, error) {
			return &models.OrderPage{Total: 100}, nil
		},
	}
	svc, st := newTestSession(repo, "WH1")

	_, err := svc.Search(st, SearchFilters{DueFrom: "2026-08-01", DueTo: "2026-08-31"})
	require.NoError(t, err)
	_, err = svc.NextPage(st)
	require.NoError(t, err)
	require.Equal(t, 2, st.Criteria.Page)

	repo.searchCalls = 0
	_, err = svc.Search(st, SearchFilters{VendorCode: "V100", DueFrom: "2026-08-01", DueTo: "2026-08-31"})
	require.NoError(t, err)

	require.Equal(t, 1, repo.searchCalls)
	require.Equal(t, 1, repo.lastCriteria.Page)
	require.Equal(t, "V100", repo.lastCriteria.VendorCode)
}

func TestPagingClampsAtBounds(t *testing.T) {
	repo := &fakeRepo{
		searchFn: func(c models.SearchCriteria) (*models.OrderPage, error) {
			return &models.OrderPage{Total: 45}, nil
		},
	}
	svc, st := newTestSession(repo, "WH1")

	_, err := svc.Search(st, SearchFilters{})
	require.NoError(t, err)
	require.Equal(t, 1, repo.searchCalls)

	// 45 rows at 20 per page = 3 pages
	_, err = svc.NextPage(st)
	require.NoError(t, err)
	_, err = svc.NextPage(st)
	require.NoError(t, err)
	require.Equal(t, 3, st.Criteria.Page)
	require.Equal(t, 3, repo.searchCalls)

	// Past the last page: no-op, no request
	_, err = svc.NextPage(st)
	require.NoError(t, err)
	require.Equal(t, 3, st.Criteria.Page)
	require.Equal(t, 3, repo.searchCalls)

	_, err = svc.PrevPage(st)
	require.NoError(t, err)
	_, err = svc.PrevPage(st)
	require.NoError(t, err)
	require.Equal(t, 1, st.Criteria.Page)
	require.Equal(t, 5, repo.searchCalls)

	// Below page 1: no-op, no request
	_, err = svc.PrevPage(st)
	require.NoError(t, err)
	require.Equal(t, 1, st.Criteria.Page)
	require.Equal(t, 5, repo.searchCalls)
}

func TestPagingPreservesFilters(t *testing.T) {
	repo := &fakeRepo{
		searchFn: func(c models.SearchCriteria) (*models.OrderPage, error) {
			return &models.OrderPage{Total: 60}, nil
		},
	}
	svc, st := newTestSession(repo, "WH1")

	_, err := svc.Search(st, SearchFilters{VendorCode: "V100", DueFrom: "2026-08-01", DueTo: "2026-08-31"})
	require.NoError(t, err)

	_, err = svc.NextPage(st)
	require.NoError(t, err)

	require.Equal(t, "V100", repo.lastCriteria.VendorCode)
	require.Equal(t, "2026-08-01", repo.lastCriteria.DueFrom)
	require.Equal(t, "2026-08-31", repo.lastCriteria.DueTo)
	require.Equal(t, 2, repo.lastCriteria.Page)
}

func TestSelectWarehouseChecksMembershipAndResetsPage(t *testing.T) {
	repo := &fakeRepo{
		searchFn: func(c models.SearchCriteria) (*models.OrderPage, error) {
			return &models.OrderPage{Total: 100}, nil
		},
	}
	svc, st := newTestSession(repo, "WH1", "WH2")

	_, err := svc.SelectWarehouse(st, "WH9")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "whsCode", vErr.Field)

	_, err = svc.Search(st, SearchFilters{})
	require.NoError(t, err)
	_, err = svc.NextPage(st)
	require.NoError(t, err)
	require.Equal(t, 2, st.Criteria.Page)

	calls := repo.searchCalls
	_, err = svc.SelectWarehouse(st, "WH2")
	require.NoError(t, err)
	require.Equal(t, "WH2", st.Criteria.WhsCode)
	require.Equal(t, 1, st.Criteria.Page)
	require.Equal(t, calls+1, repo.searchCalls)
}

func TestSelectWarehouseDiscardsOpenOrder(t *testing.T) {
	repo := &fakeRepo{
		detailFn: func(docEntry int, whsCode string) (*models.OrderDetail, error) {
			return sampleDetail(), nil
		},
		searchFn: func(c models.SearchCriteria) (*models.OrderPage, error) {
			return &models.OrderPage{}, nil
		},
	}
	svc, st := newTestSession(repo, "WH1", "WH2")

	_, err := svc.OpenOrder(st, 500)
	require.NoError(t, err)
	require.NotNil(t, svc.Ledger(st))

	_, err = svc.SelectWarehouse(st, "WH2")
	require.NoError(t, err)
	require.Nil(t, svc.Ledger(st))
}

func TestOpenOrderBuildsLedger(t *testing.T) {
	repo := &fakeRepo{
		detailFn: func(docEntry int, whsCode string) (*models.OrderDetail, error) {
			return sampleDetail(), nil
		},
	}
	svc, st := newTestSession(repo, "WH1")

	ledger, err := svc.OpenOrder(st, 500)
	require.NoError(t, err)
	require.Equal(t, 500, ledger.DocEntry)
	require.Equal(t, "WH1", ledger.WhsCode)
	require.Len(t, ledger.Lines(), 3)
}

func TestLateDetailResponseIsDiscarded(t *testing.T) {
	var svc *SessionService
	var st *SessionState

	repo := &fakeRepo{}
	repo.detailFn = func(docEntry int, whsCode string) (*models.OrderDetail, error) {
		// The user closes the view while the fetch is still in flight.
		svc.CloseOrder(st)
		return sampleDetail(), nil
	}

	svc = NewSessionService(repo, 20)
	st = svc.Create(&models.LoginResult{Token: "tok", Username: "maria", Warehouses: []string{"WH1"}})

	_, err := svc.OpenOrder(st, 500)
	require.ErrorIs(t, err, ErrStaleView)
	require.Nil(t, svc.Ledger(st))
}

func TestSlowSearchNeverClobbersNewerCriteria(t *testing.T) {
	var svc *SessionService
	var st *SessionState

	pageA := &models.OrderPage{Total: 1, Data: []models.PurchaseOrderSummary{{DocEntry: 1}}}
	pageB := &models.OrderPage{Total: 2, Data: []models.PurchaseOrderSummary{{DocEntry: 2}}}

	repo := &fakeRepo{}
	call := 0
	repo.searchFn = func(c models.SearchCriteria) (*models.OrderPage, error) {
		call++
		if call == 1 {
			// While the first search is in flight the user searches again
			// with different filters. That one returns first.
			_, err := svc.Search(st, SearchFilters{VendorCode: "V2"})
			require.NoError(t, err)
			return pageA, nil
		}
		return pageB, nil
	}

	svc = NewSessionService(repo, 20)
	st = svc.Create(&models.LoginResult{Token: "tok", Username: "maria", Warehouses: []string{"WH1"}})

	_, err := svc.Search(st, SearchFilters{VendorCode: "V1"})
	require.NoError(t, err)

	// The late first response must not overwrite the newer result.
	current := svc.CurrentPage(st)
	require.Equal(t, pageB.Total, current.Total)
	require.Equal(t, 2, current.Data[0].DocEntry)
}

func TestBeginSubmitRefusesWhileInFlight(t *testing.T) {
	_, st := newTestSession(&fakeRepo{}, "WH1")

	require.True(t, st.BeginSubmit())
	require.False(t, st.BeginSubmit())
	st.EndSubmit()
	require.True(t, st.BeginSubmit())
}

func TestSetProposedWithoutOpenOrder(t *testing.T) {
	svc, st := newTestSession(&fakeRepo{}, "WH1")

	_, err := svc.SetProposed(st, 0, 5)
	require.ErrorIs(t, err, ErrNoOpenOrder)
}

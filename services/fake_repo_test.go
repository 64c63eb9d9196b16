package services

import (
	"errors"

	"receiving-portal/models"
)

// fakeRepo is an in-memory stand-in for the ERP backend.
type fakeRepo struct {
	searchCalls int
	detailCalls int
	postCalls   int

	lastCriteria models.SearchCriteria
	lastReceipt  *models.ReceiptRequest

	searchFn func(criteria models.SearchCriteria) (*models.OrderPage, error)
	detailFn func(docEntry int, whsCode string) (*models.OrderDetail, error)
	postFn   func(req *models.ReceiptRequest) (*models.ReceiptResult, error)
}

func (f *fakeRepo) Login(username, password string) (*models.LoginResult, error) {
	return &models.LoginResult{Token: "tok", Username: username, Role: "user"}, nil
}

func (f *fakeRepo) Me(token string) error {
	return nil
}

func (f *fakeRepo) SearchOrders(token string, criteria models.SearchCriteria) (*models.OrderPage, error) {
	f.searchCalls++
	f.lastCriteria = criteria
	if f.searchFn != nil {
		return f.searchFn(criteria)
	}
	return &models.OrderPage{}, nil
}

func (f *fakeRepo) FetchOrderDetail(token string, docEntry int, whsCode string) (*models.OrderDetail, error) {
	f.detailCalls++
	if f.detailFn != nil {
		return f.detailFn(docEntry, whsCode)
	}
	return nil, errors.New("no detail configured")
}

func (f *fakeRepo) PostReceipt(token string, req *models.ReceiptRequest) (*models.ReceiptResult, error) {
	f.postCalls++
	f.lastReceipt = req
	if f.postFn != nil {
		return f.postFn(req)
	}
	return &models.ReceiptResult{GrpoDocEntry: 1}, nil
}

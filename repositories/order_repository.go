package repositories

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"receiving-portal/config"
	"receiving-portal/models"
)

var (
	// ErrUnauthenticated means the backend rejected our token (401/403).
	// The current portal session is dead, the client must log in again.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound is returned when the backend does not know the order.
	ErrNotFound = errors.New("order not found")
)

// UpstreamError carries the backend's own message so it can be shown to the
// user verbatim (closed order, stale open quantity, ...).
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// OrderRepository is the portal's view of the ERP backend. Pure
// request/response, no local state beyond the HTTP client.
type OrderRepository interface {
	Login(username, password string) (*models.LoginResult, error)
	Me(token string) error
	SearchOrders(token string, criteria models.SearchCriteria) (*models.OrderPage, error)
	FetchOrderDetail(token string, docEntry int, whsCode string) (*models.OrderDetail, error)
	PostReceipt(token string, req *models.ReceiptRequest) (*models.ReceiptResult, error)
}

type HTTPOrderRepository struct {
	BaseURL string
	Client  *http.Client
}

// NewOrderRepository builds the repository from the loaded config, including
// the optional CA bundle / verify knobs for self-signed ERP gateways.
func NewOrderRepository() *HTTPOrderRepository {
	transport := &http.Transport{}

	tlsConfig := &tls.Config{}
	if !config.ERPVerifySSL {
		tlsConfig.InsecureSkipVerify = true
	} else if config.ERPCABundle != "" {
		pem, err := os.ReadFile(config.ERPCABundle)
		if err != nil {
			log.Printf("Warning: cannot read CA bundle %s: %v", config.ERPCABundle, err)
		} else {
			pool := x509.NewCertPool()
			if pool.AppendCertsFromPEM(pem) {
				tlsConfig.RootCAs = pool
			}
		}
	}
	transport.TLSClientConfig = tlsConfig

	return &HTTPOrderRepository{
		BaseURL: config.ERPBaseURL,
		Client: &http.Client{
			Timeout:   time.Duration(config.ERPTimeout) * time.Second,
			Transport: transport,
		},
	}
}

// NewOrderRepositoryWith is the test-friendly constructor.
func NewOrderRepositoryWith(baseURL string, client *http.Client) *HTTPOrderRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPOrderRepository{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

func (r *HTTPOrderRepository) Login(username, password string) (*models.LoginResult, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})

	req, err := http.NewRequest(http.MethodPost, r.BaseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var result models.LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if result.Token == "" {
		return nil, fmt.Errorf("login response without token")
	}
	return &result, nil
}

func (r *HTTPOrderRepository) Me(token string) error {
	resp, err := r.do(token, http.MethodGet, "/api/me", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (r *HTTPOrderRepository) SearchOrders(token string, criteria models.SearchCriteria) (*models.OrderPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(criteria.Page))
	params.Set("pageSize", strconv.Itoa(criteria.PageSize))
	params.Set("due_from", criteria.DueFrom)
	params.Set("due_to", criteria.DueTo)
	if criteria.VendorCode != "" {
		params.Set("vendorCode", criteria.VendorCode)
	}
	if criteria.WhsCode != "" {
		params.Set("whsCode", criteria.WhsCode)
	}

	resp, err := r.do(token, http.MethodGet, "/api/orders", params, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var page models.OrderPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode order list: %w", err)
	}
	return &page, nil
}

func (r *HTTPOrderRepository) FetchOrderDetail(token string, docEntry int, whsCode string) (*models.OrderDetail, error) {
	params := url.Values{}
	if whsCode != "" {
		params.Set("whsCode", whsCode)
	}

	resp, err := r.do(token, http.MethodGet, "/api/orders/"+strconv.Itoa(docEntry), params, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var detail models.OrderDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("decode order detail: %w", err)
	}
	return &detail, nil
}

func (r *HTTPOrderRepository) PostReceipt(token string, receipt *models.ReceiptRequest) (*models.ReceiptResult, error) {
	body, err := json.Marshal(receipt)
	if err != nil {
		return nil, err
	}

	resp, err := r.do(token, http.MethodPost, "/api/receipts", nil, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp)
	}

	var result models.ReceiptResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode receipt response: %w", err)
	}
	return &result, nil
}

func (r *HTTPOrderRepository) do(token, method, path string, params url.Values, body io.Reader) (*http.Response, error) {
	u := r.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequest(method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unreachable: %w", err)
	}
	return resp, nil
}

// decodeError turns a non-2xx response into the portal error taxonomy.
// The backend sends {"error":{"message":...}} but plain text happens too.
func decodeError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthenticated
	case http.StatusNotFound:
		return ErrNotFound
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return &UpstreamError{StatusCode: resp.StatusCode, Message: envelope.Error.Message}
		}
		if envelope.Message != "" {
			return &UpstreamError{StatusCode: resp.StatusCode, Message: envelope.Message}
		}
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = resp.Status
	}
	return &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
}

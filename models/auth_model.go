package models

// LoginResult is what the ERP backend returns on a successful login.
type LoginResult struct {
	Token      string   `json:"token"`
	Username   string   `json:"username"`
	Role       string   `json:"role"`
	Warehouses []string `json:"warehouses"`
}

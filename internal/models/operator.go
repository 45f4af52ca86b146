package models

// Operator is an account allowed to drive the sensor through the API.
type Operator struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

package models

// TokenPair is returned by the auth service on login
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Credentials are posted to the login endpoint
type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Registration is posted to the register endpoint
type Registration struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Address is a saved delivery address
type Address struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Line1        string `json:"line1"`
	Line2        string `json:"line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	IsDefault    bool   `json:"isDefault"`
	Instructions string `json:"instructions,omitempty"`
}

// PaymentMethod is a saved card reference. Only display data is kept.
type PaymentMethod struct {
	ID        string `json:"id"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	Exp       string `json:"exp"`
	IsDefault bool   `json:"isDefault"`
}

// Profile is the device-local user profile blob
type Profile struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Avatar         string          `json:"avatar,omitempty"`
	Addresses      []Address       `json:"addresses"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
}

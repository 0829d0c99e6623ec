package domain

import "time"

const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

// Account is the credential record for one user. Mobile and Email are each
// unique across the store. Federated accounts whose provider withheld the
// email may carry neither identifier.
type Account struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Mobile       *string    `json:"mobile,omitempty"`
	Email        *string    `json:"email,omitempty"`
	PasswordHash *string    `json:"-"`
	IsVerified   bool       `json:"is_verified"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Device is one client installation, unique per account by DeviceID.
type Device struct {
	AccountID   string    `json:"account_id"`
	DeviceID    string    `json:"device_id"`
	PushToken   *string   `json:"push_token,omitempty"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// LinkedIdentity records a federated (provider, providerUserID) pair bound
// to a local account. The pair is globally unique.
type LinkedIdentity struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	Provider       string    `json:"provider"`
	ProviderUserID string    `json:"provider_user_id"`
	EmailAtLink    *string   `json:"email_at_link,omitempty"`
	LinkedAt       time.Time `json:"linked_at"`
}

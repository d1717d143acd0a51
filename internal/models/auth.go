package models

// Credentials address the remote document: a static access key plus the
// identifier of the bin. Absence of either routes every operation to the
// local cache instead.
type Credentials struct {
	APIKey string `json:"apiKey"`
	BinID  string `json:"binId"`
}

func (c Credentials) Configured() bool {
	return c.APIKey != "" && c.BinID != ""
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type SetCredentialsRequest struct {
	APIKey string `json:"apiKey"`
	BinID  string `json:"binId"`
}

type ProvisionRequest struct {
	Name string `json:"name"`
}

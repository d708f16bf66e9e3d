package domain

// TokenPair is what a successful login or refresh returns: a short-lived
// access token and a longer-lived refresh token, both self-contained JWTs.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // seconds until access expiry
}

// MFAEnrollment is returned when a user begins TOTP enrolment. The secret is
// shown exactly once; afterwards only codes derived from it are accepted.
type MFAEnrollment struct {
	Secret  string `json:"secret"`
	URL     string `json:"url"` // otpauth:// provisioning URL
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

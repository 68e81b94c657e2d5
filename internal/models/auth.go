package models

// VerifyOTPResponse is the body of POST /auth/otp/verify.
type VerifyOTPResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	NewUser   bool   `json:"newUser"`
}

// TokenClaims is the part of the token payload the client relies on.
type TokenClaims struct {
	Role   Role  `json:"role"`
	UserID int64 `json:"userId"`
}

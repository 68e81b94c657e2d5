package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"turfbook/internal/models"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidPhone = errors.New("please enter a valid 10-digit phone number")
	ErrInvalidOTP   = errors.New("please enter a valid 6-digit OTP")
	ErrNameRequired = errors.New("please enter your name")
	ErrNameTooShort = errors.New("name must be at least 2 characters long")
	ErrInvalidToken = errors.New("invalid token payload")
	ErrWrongState   = errors.New("action not allowed in current auth state")
	ErrBusy         = errors.New("request already in progress")
)

// ValidatePhone accepts exactly ten ASCII digits.
func ValidatePhone(phone string) error {
	if len(phone) != models.PhoneDigits {
		return ErrInvalidPhone
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return ErrInvalidPhone
		}
	}
	return nil
}

// FormatPhoneForAPI prefixes the country code: 9876543210 -> +919876543210.
func FormatPhoneForAPI(phone, countryCode string) string {
	if countryCode == "" {
		countryCode = models.DefaultCountryCode
	}
	return countryCode + phone
}

// FormatPhoneForDisplay renders +91 98765 43210. Anything else is returned as is.
func FormatPhoneForDisplay(phone, countryCode string) string {
	if countryCode == "" {
		countryCode = models.DefaultCountryCode
	}
	digits := strings.TrimPrefix(phone, countryCode)
	if ValidatePhone(digits) != nil {
		return phone
	}
	return fmt.Sprintf("%s %s %s", countryCode, digits[:5], digits[5:])
}

func ValidateOTP(code string) error {
	if len(code) != models.OTPLength {
		return ErrInvalidOTP
	}
	return nil
}

// ValidateName returns the trimmed name.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(name) < models.MinNameLength {
		return "", ErrNameTooShort
	}
	return name, nil
}

// DecodeToken reads role and userId from the token payload.
// The signature is NOT verified; the backend stays the authority on every call.
func DecodeToken(token string) (models.TokenClaims, error) {
	var claims models.TokenClaims

	mc, err := tokenClaims(token)
	if err != nil {
		return claims, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims.Role = models.RoleUser
	if role, ok := mc["role"].(string); ok && role != "" {
		claims.Role = models.Role(role)
	}

	switch v := mc["userId"].(type) {
	case float64:
		claims.UserID = int64(v)
	case string:
		var id int64
		if _, err := fmt.Sscan(v, &id); err == nil {
			claims.UserID = id
		}
	}
	return claims, nil
}

// tokenClaims parses the payload segment. A header with an alg the jwt
// package does not know still yields the payload.
func tokenClaims(token string) (jwt.MapClaims, error) {
	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err == nil {
		if mc, ok := parsed.Claims.(jwt.MapClaims); ok {
			return mc, nil
		}
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		if err == nil {
			err = errors.New("token contains an invalid number of segments")
		}
		return nil, err
	}
	raw, decErr := jwt.DecodeSegment(parts[1])
	if decErr != nil {
		return nil, decErr
	}
	mc := jwt.MapClaims{}
	if jsonErr := json.Unmarshal(raw, &mc); jsonErr != nil {
		return nil, jsonErr
	}
	return mc, nil
}

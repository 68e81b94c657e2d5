package models

type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type Session struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
	UserID    int64  `json:"userId"`
	IsNewUser bool   `json:"isNewUser"`
	Name      string `json:"name,omitempty"`
}

// NeedsName reports whether onboarding still requires the name step.
// Admins never go through it.
func (s *Session) NeedsName() bool {
	return s.Role == RoleUser && s.IsNewUser && s.Name == ""
}

// AuthHeader returns the Authorization header value.
func (s *Session) AuthHeader() string {
	if s.Token == "" {
		return ""
	}
	tokenType := s.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + s.Token
}

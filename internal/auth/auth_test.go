package auth

import (
	"context"
	"errors"
	"testing"

	"turfbook/internal/api"
	"turfbook/internal/models"
	"turfbook/internal/notify"
	"turfbook/internal/session"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) SendOTP(ctx context.Context, phone string) error {
	return m.Called(ctx, phone).Error(0)
}

func (m *MockAuthAPI) VerifyOTP(ctx context.Context, phone, otp string) (*models.VerifyOTPResponse, error) {
	args := m.Called(ctx, phone, otp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerifyOTPResponse), args.Error(1)
}

func (m *MockAuthAPI) SetName(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func newFlow(t *testing.T) (*Flow, *MockAuthAPI, *session.Provider, *notify.Center) {
	t.Helper()
	m := new(MockAuthAPI)
	sessions := session.NewProvider(nil, nil)
	center := notify.NewCenter(nil)
	return NewFlow(m, sessions, center, "+91", nil), m, sessions, center
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"9876543210", true},
		{"987654321", false},
		{"98765432101", false},
		{"98765abcde", false},
		{"", false},
		{"98765 4321", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPhone)
			}
		})
	}
}

func TestPhoneFormatting(t *testing.T) {
	assert.Equal(t, "+919876543210", FormatPhoneForAPI("9876543210", ""))
	assert.Equal(t, "+91 98765 43210", FormatPhoneForDisplay("+919876543210", "+91"))
	assert.Equal(t, "+91 98765 43210", FormatPhoneForDisplay("9876543210", "+91"))
	assert.Equal(t, "12345", FormatPhoneForDisplay("12345", "+91"))
}

func TestValidateOTPAndName(t *testing.T) {
	assert.NoError(t, ValidateOTP("123456"))
	assert.ErrorIs(t, ValidateOTP("12345"), ErrInvalidOTP)
	assert.ErrorIs(t, ValidateOTP("1234567"), ErrInvalidOTP)

	name, err := ValidateName("  Ravi  ")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", name)

	_, err = ValidateName("   ")
	assert.ErrorIs(t, err, ErrNameRequired)
	_, err = ValidateName(" R ")
	assert.ErrorIs(t, err, ErrNameTooShort)
}

func TestDecodeToken(t *testing.T) {
	claims, err := DecodeToken(signToken(t, jwt.MapClaims{"role": "ROLE_ADMIN", "userId": 17}))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, int64(17), claims.UserID)

	claims, err = DecodeToken(signToken(t, jwt.MapClaims{"userId": "23"}))
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, int64(23), claims.UserID)

	_, err = DecodeToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = DecodeToken("a.%%%.c")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeToken_UnknownAlgorithm(t *testing.T) {
	header := jwt.EncodeSegment([]byte(`{"alg":"XS999","typ":"JWT"}`))
	payload := jwt.EncodeSegment([]byte(`{"role":"ROLE_ADMIN","userId":42}`))

	claims, err := DecodeToken(header + "." + payload + ".sig")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestFlow_NewUserRoutesToNameEntry(t *testing.T) {
	f, m, sessions, _ := newFlow(t)
	ctx := context.Background()
	token := signToken(t, jwt.MapClaims{"role": "ROLE_USER", "userId": 5})

	m.On("SendOTP", ctx, "+919876543210").Return(nil).Once()
	m.On("VerifyOTP", ctx, "+919876543210", "123456").
		Return(&models.VerifyOTPResponse{Token: token, TokenType: "Bearer", NewUser: true}, nil).Once()
	m.On("SetName", ctx, "Ravi").Return(nil).Once()

	require.NoError(t, f.SendOTP(ctx, "9876543210"))
	assert.Equal(t, StateOTPPending, f.State())
	assert.Equal(t, "+91 98765 43210", f.Phone())

	next, err := f.VerifyOTP(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, StateNameRequired, next)

	cur := sessions.Current()
	require.NotNil(t, cur)
	assert.Equal(t, models.RoleUser, cur.Role)
	assert.Equal(t, int64(5), cur.UserID)
	assert.True(t, cur.NeedsName())

	require.NoError(t, f.SetName(ctx, " Ravi "))
	assert.Equal(t, StateAuthenticated, f.State())
	assert.Equal(t, "Ravi", sessions.Current().Name)
	assert.False(t, sessions.Current().IsNewUser)
	m.AssertExpectations(t)
}

func TestFlow_AdminSkipsNameEntry(t *testing.T) {
	f, m, _, _ := newFlow(t)
	ctx := context.Background()
	token := signToken(t, jwt.MapClaims{"role": "ROLE_ADMIN", "userId": 1})

	m.On("SendOTP", ctx, "+919000000000").Return(nil)
	m.On("VerifyOTP", ctx, "+919000000000", "654321").
		Return(&models.VerifyOTPResponse{Token: token, NewUser: true}, nil)

	require.NoError(t, f.SendOTP(ctx, "9000000000"))
	next, err := f.VerifyOTP(ctx, "654321")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, next)
}

func TestFlow_ValidationBlocksNetwork(t *testing.T) {
	f, m, _, center := newFlow(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.SendOTP(ctx, "98765abcde"), ErrInvalidPhone)
	assert.Equal(t, StatePhoneEntry, f.State())

	last, ok := center.Last()
	require.True(t, ok)
	assert.Equal(t, models.NotificationError, last.Kind)
	assert.Equal(t, ErrInvalidPhone.Error(), last.Text)

	_, err := f.VerifyOTP(ctx, "12345")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	m.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlow_VerifyFailureReturnsToPhoneEntry(t *testing.T) {
	f, m, sessions, center := newFlow(t)
	ctx := context.Background()

	m.On("SendOTP", ctx, "+919876543210").Return(nil)
	m.On("VerifyOTP", ctx, "+919876543210", "000000").
		Return(nil, &api.Error{Status: 400, Message: "OTP expired"})

	require.NoError(t, f.SendOTP(ctx, "9876543210"))
	f.EnterOTP("0000001")
	assert.Equal(t, "000000", f.OTP())

	next, err := f.VerifyOTP(ctx, f.OTP())
	require.Error(t, err)
	assert.Equal(t, StatePhoneEntry, next)
	assert.Empty(t, f.OTP())
	assert.Nil(t, sessions.Current())

	last, _ := center.Last()
	assert.Equal(t, "OTP expired", last.Text)
}

func TestFlow_SendFailureKeepsState(t *testing.T) {
	f, m, _, center := newFlow(t)
	ctx := context.Background()
	m.On("SendOTP", ctx, "+919876543210").Return(errors.New("connection refused"))

	require.Error(t, f.SendOTP(ctx, "9876543210"))
	assert.Equal(t, StatePhoneEntry, f.State())
	last, _ := center.Last()
	assert.Equal(t, "Failed to send OTP", last.Text)
	assert.False(t, f.Busy())
}

func TestFlow_WrongState(t *testing.T) {
	f, _, _, _ := newFlow(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.ResendOTP(ctx), ErrWrongState)
	_, err := f.VerifyOTP(ctx, "123456")
	assert.ErrorIs(t, err, ErrWrongState)
	assert.ErrorIs(t, f.SetName(ctx, "Ravi"), ErrWrongState)
}

func TestFlow_ResendAndBack(t *testing.T) {
	f, m, _, _ := newFlow(t)
	ctx := context.Background()
	m.On("SendOTP", ctx, "+919876543210").Return(nil).Twice()

	require.NoError(t, f.SendOTP(ctx, "9876543210"))
	f.EnterOTP("12")
	require.NoError(t, f.ResendOTP(ctx))
	assert.Empty(t, f.OTP())

	f.Back()
	assert.Equal(t, StatePhoneEntry, f.State())
	m.AssertExpectations(t)
}

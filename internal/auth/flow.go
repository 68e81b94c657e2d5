package auth

import (
	"context"
	"errors"
	"sync"

	"turfbook/internal/api"
	"turfbook/internal/domain"
	"turfbook/internal/metrics"
	"turfbook/internal/models"
	"turfbook/internal/notify"

	"github.com/rs/zerolog"
)

type State int

const (
	StatePhoneEntry State = iota
	StateOTPPending
	StateAuthenticated
	StateNameRequired
)

func (s State) String() string {
	switch s {
	case StatePhoneEntry:
		return "phone_entry"
	case StateOTPPending:
		return "otp_pending"
	case StateAuthenticated:
		return "authenticated"
	case StateNameRequired:
		return "name_required"
	default:
		return "unknown"
	}
}

// SessionStore is the write side of the session provider.
type SessionStore interface {
	Login(s models.Session)
	UpdateUser(fn func(s *models.Session)) error
}

// Flow drives phone entry, OTP verification and first-time name entry.
type Flow struct {
	mu          sync.Mutex
	state       State
	phone       string // formatted for the API
	otp         string
	busy        bool
	countryCode string

	api      domain.AuthAPI
	sessions SessionStore
	notifier domain.Notifier
	logger   *zerolog.Logger
}

func NewFlow(authAPI domain.AuthAPI, sessions SessionStore, notifier domain.Notifier, countryCode string, logger *zerolog.Logger) *Flow {
	if countryCode == "" {
		countryCode = models.DefaultCountryCode
	}
	return &Flow{
		api:         authAPI,
		sessions:    sessions,
		notifier:    notifier,
		countryCode: countryCode,
		logger:      logger,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Phone returns the number the OTP was sent to, formatted for display.
func (f *Flow) Phone() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phone == "" {
		return ""
	}
	return FormatPhoneForDisplay(f.phone, f.countryCode)
}

// OTP returns the code currently entered.
func (f *Flow) OTP() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.otp
}

// EnterOTP records the code as typed; only the first six characters are kept.
func (f *Flow) EnterOTP(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(code) > models.OTPLength {
		code = code[:models.OTPLength]
	}
	f.otp = code
}

// Busy reports whether a network call is in flight.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

func (f *Flow) SendOTP(ctx context.Context, phone string) error {
	if err := ValidatePhone(phone); err != nil {
		f.fail(ctx, "Invalid Phone", err, "")
		return err
	}
	formatted := FormatPhoneForAPI(phone, f.countryCode)

	if err := f.begin(StatePhoneEntry, StateOTPPending); err != nil {
		return err
	}
	err := f.api.SendOTP(ctx, formatted)
	metrics.IncAction("send_otp", err)

	f.mu.Lock()
	f.busy = false
	if err == nil {
		f.state = StateOTPPending
		f.phone = formatted
		f.otp = ""
	}
	f.mu.Unlock()

	if err != nil {
		f.fail(ctx, "Error", err, "Failed to send OTP")
		return err
	}
	f.notify(ctx, notify.Success("OTP Sent", "OTP sent to "+FormatPhoneForDisplay(formatted, f.countryCode)))
	return nil
}

func (f *Flow) ResendOTP(ctx context.Context) error {
	if err := f.begin(StateOTPPending); err != nil {
		return err
	}
	phone := f.currentPhone()
	err := f.api.SendOTP(ctx, phone)
	metrics.IncAction("resend_otp", err)
	f.done()

	if err != nil {
		f.fail(ctx, "Error", err, "Failed to resend OTP")
		return err
	}
	f.mu.Lock()
	f.otp = ""
	f.mu.Unlock()
	f.notify(ctx, notify.Success("OTP Resent", "A new OTP has been sent to your phone"))
	return nil
}

// VerifyOTP blocks unless code has exactly six characters. Any failure clears
// the entered code and returns to phone entry.
func (f *Flow) VerifyOTP(ctx context.Context, code string) (State, error) {
	if err := ValidateOTP(code); err != nil {
		f.fail(ctx, "Invalid OTP", err, "")
		return f.State(), err
	}
	if err := f.begin(StateOTPPending); err != nil {
		return f.State(), err
	}
	phone := f.currentPhone()

	sess, err := f.verify(ctx, phone, code)
	metrics.IncAction("verify_otp", err)
	if err != nil {
		f.mu.Lock()
		f.busy = false
		f.otp = ""
		f.state = StatePhoneEntry
		f.mu.Unlock()

		f.fail(ctx, "Verification Failed", err, "Invalid OTP")
		return StatePhoneEntry, err
	}

	f.sessions.Login(*sess)

	next := StateAuthenticated
	if sess.Role == models.RoleUser && sess.IsNewUser {
		next = StateNameRequired
	}

	f.mu.Lock()
	f.busy = false
	f.otp = ""
	f.state = next
	f.mu.Unlock()

	if f.logger != nil {
		f.logger.Info().Int64("user_id", sess.UserID).Str("role", string(sess.Role)).Str("next", next.String()).Msg("otp verified")
	}
	return next, nil
}

func (f *Flow) verify(ctx context.Context, phone, code string) (*models.Session, error) {
	resp, err := f.api.VerifyOTP(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	claims, err := DecodeToken(resp.Token)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		Token:     resp.Token,
		TokenType: resp.TokenType,
		Phone:     phone,
		Role:      claims.Role,
		UserID:    claims.UserID,
		IsNewUser: resp.NewUser,
	}, nil
}

func (f *Flow) SetName(ctx context.Context, name string) error {
	trimmed, err := ValidateName(name)
	if err != nil {
		f.fail(ctx, "Invalid Name", err, "")
		return err
	}
	if err := f.begin(StateNameRequired); err != nil {
		return err
	}

	err = f.api.SetName(ctx, trimmed)
	metrics.IncAction("set_name", err)
	if err == nil {
		err = f.sessions.UpdateUser(func(s *models.Session) {
			s.Name = trimmed
			s.IsNewUser = false
		})
	}

	f.mu.Lock()
	f.busy = false
	if err == nil {
		f.state = StateAuthenticated
	}
	f.mu.Unlock()

	if err != nil {
		f.fail(ctx, "Error", err, "Failed to update name")
		return err
	}
	f.notify(ctx, notify.Success("Welcome", "Welcome, "+trimmed+"!"))
	return nil
}

// Back abandons the current attempt and returns to phone entry.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StatePhoneEntry
	f.otp = ""
}

// Reset is called after logout.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StatePhoneEntry
	f.phone = ""
	f.otp = ""
	f.busy = false
}

func (f *Flow) begin(allowed ...State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrBusy
	}
	ok := false
	for _, s := range allowed {
		if f.state == s {
			ok = true
			break
		}
	}
	if !ok {
		return ErrWrongState
	}
	f.busy = true
	return nil
}

func (f *Flow) done() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

func (f *Flow) currentPhone() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phone
}

// fail reports err. Validation errors carry their own text; backend errors use
// the backend message or fallback.
func (f *Flow) fail(ctx context.Context, title string, err error, fallback string) {
	text := err.Error()
	if fallback != "" {
		text = api.UserMessage(err, fallback)
	}
	if f.logger != nil && !errors.Is(err, ErrInvalidPhone) && !errors.Is(err, ErrInvalidOTP) {
		f.logger.Warn().Err(err).Str("state", f.State().String()).Msg(title)
	}
	f.notify(ctx, notify.Error(title, text))
}

func (f *Flow) notify(ctx context.Context, n models.Notification) {
	if f.notifier != nil {
		f.notifier.Notify(ctx, n)
	}
}

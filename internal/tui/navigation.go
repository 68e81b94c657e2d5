package tui

import "turfbook/internal/models"

const (
	pagePhone        = "phone"
	pageOTP          = "otp"
	pageName         = "name"
	pageTurfs        = "turfs"
	pageTurfDetail   = "turf_detail"
	pageMyBookings   = "my_bookings"
	pageDashboard    = "dashboard"
	pageTurfForm     = "turf_form"
	pageGallery      = "gallery"
	pageAllBookings  = "all_bookings"
	pageConfirmModal = "confirm"
)

var (
	authPages  = map[string]bool{pagePhone: true, pageOTP: true, pageName: true}
	userPages  = map[string]bool{pageTurfs: true, pageTurfDetail: true, pageMyBookings: true}
	adminPages = map[string]bool{pageDashboard: true, pageTurfForm: true, pageGallery: true, pageAllBookings: true}
)

// homePage is where a session lands after login or any session change.
func homePage(s *models.Session) string {
	switch {
	case s == nil:
		return pagePhone
	case s.NeedsName():
		return pageName
	case s.Role.IsAdmin():
		return pageDashboard
	default:
		return pageTurfs
	}
}

// allowed reports whether the session may open page.
func allowed(s *models.Session, page string) bool {
	if page == pageConfirmModal {
		return true
	}
	if s == nil {
		return authPages[page]
	}
	if s.NeedsName() {
		return page == pageName
	}
	if s.Role.IsAdmin() {
		return adminPages[page]
	}
	return userPages[page]
}

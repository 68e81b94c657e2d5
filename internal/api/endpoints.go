package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"turfbook/internal/models"
)

const turfListCacheKey = "turfs"

func turfCacheKey(id int64) string {
	return "turf:" + strconv.FormatInt(id, 10)
}

// SendOTP expects phone already formatted with the country code.
func (c *Client) SendOTP(ctx context.Context, phone string) error {
	body := map[string]string{"phone": phone}
	return c.doPost(ctx, "/auth/otp/send", "/auth/otp/send", body, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*models.VerifyOTPResponse, error) {
	body := map[string]string{"phone": phone, "otp": otp}
	var resp models.VerifyOTPResponse
	if err := c.doPost(ctx, "/auth/otp/verify", "/auth/otp/verify", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SetName(ctx context.Context, name string) error {
	return c.doPost(ctx, "/users/name", "/users/name", map[string]string{"name": name}, nil)
}

// ListTurfs returns the catalog in backend order.
func (c *Client) ListTurfs(ctx context.Context) ([]models.Turf, error) {
	var turfs []models.Turf
	if c.readCache(ctx, turfListCacheKey, &turfs) {
		return turfs, nil
	}
	if err := c.doGet(ctx, "/turfs", "/turfs", &turfs); err != nil {
		return nil, err
	}
	c.writeCache(ctx, turfListCacheKey, turfs)
	return turfs, nil
}

func (c *Client) GetTurf(ctx context.Context, id int64) (*models.Turf, error) {
	key := turfCacheKey(id)
	var turf models.Turf
	if c.readCache(ctx, key, &turf) {
		return &turf, nil
	}
	if err := c.doGet(ctx, "/turfs/{id}", fmt.Sprintf("/turfs/%d", id), &turf); err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, turf)
	return &turf, nil
}

// GetSlots is never cached; availability changes under concurrent bookings.
func (c *Client) GetSlots(ctx context.Context, turfID int64, date string) ([]models.TimeSlot, error) {
	path := fmt.Sprintf("/turfs/%d/slots?date=%s", turfID, url.QueryEscape(date))
	var slots []models.TimeSlot
	if err := c.doGet(ctx, "/turfs/{id}/slots", path, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// InvalidateTurf drops the cached catalog and, for id > 0, the cached turf.
func (c *Client) InvalidateTurf(ctx context.Context, id int64) {
	keys := []string{turfListCacheKey}
	if id > 0 {
		keys = append(keys, turfCacheKey(id))
	}
	c.dropCache(ctx, keys...)
}

func (c *Client) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := c.doPost(ctx, "/bookings", "/bookings", req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) MyBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.doGet(ctx, "/bookings/mine", "/bookings/mine", &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) AllBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.doGet(ctx, "/admin/bookings", "/admin/bookings", &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) CancelBooking(ctx context.Context, id int64) error {
	return c.doPost(ctx, "/bookings/{id}/cancel", fmt.Sprintf("/bookings/%d/cancel", id), nil, nil)
}

func (c *Client) CreateTurf(ctx context.Context, turf *models.Turf) (*models.Turf, error) {
	var created models.Turf
	if err := c.doPost(ctx, "/admin/turfs", "/admin/turfs", turf, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateTurf(ctx context.Context, turf *models.Turf) (*models.Turf, error) {
	var updated models.Turf
	path := fmt.Sprintf("/admin/turfs/%d", turf.ID)
	if err := c.doJSON(ctx, http.MethodPut, "/admin/turfs/{id}", path, turf, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteTurf(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/admin/turfs/{id}", fmt.Sprintf("/admin/turfs/%d", id), nil, nil)
}

func (c *Client) SetTurfAvailability(ctx context.Context, id int64, available bool) error {
	body := map[string]bool{"availability": available}
	path := fmt.Sprintf("/admin/turfs/%d/availability", id)
	return c.doJSON(ctx, http.MethodPatch, "/admin/turfs/{id}/availability", path, body, nil)
}

// UploadTurfImages sends every asset as a repeated "images" part.
func (c *Client) UploadTurfImages(ctx context.Context, id int64, images []models.ImageAsset) (*models.Turf, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, img := range images {
		contentType := img.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="image_%d.jpg"`, i))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create image part %d: %w", i, err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, fmt.Errorf("write image part %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/admin/turfs/%d/images", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var turf models.Turf
	if err := c.do(req, "POST /admin/turfs/{id}/images", &turf); err != nil {
		return nil, err
	}
	return &turf, nil
}

// DeleteTurfImages sends the URLs as a JSON array body.
func (c *Client) DeleteTurfImages(ctx context.Context, id int64, urls []string) error {
	path := fmt.Sprintf("/admin/turfs/%d/images", id)
	return c.doJSON(ctx, http.MethodDelete, "/admin/turfs/{id}/images", path, urls, nil)
}

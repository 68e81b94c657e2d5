package gallery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"turfbook/internal/api"
	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/metrics"
	"turfbook/internal/models"
	"turfbook/internal/notify"

	"github.com/rs/zerolog"
)

type Mode int

const (
	ModeBrowsing Mode = iota
	ModeUploading
	ModeDeleteSelecting
)

func (m Mode) String() string {
	switch m {
	case ModeBrowsing:
		return "browsing"
	case ModeUploading:
		return "uploading"
	case ModeDeleteSelecting:
		return "delete_selecting"
	default:
		return "unknown"
	}
}

var (
	ErrEmptySelection = errors.New("please select at least one image")
	ErrWrongMode      = errors.New("action not allowed in current gallery mode")
	ErrBusy           = errors.New("another image operation is in progress")
)

// Deps are the collaborators of a Gallery.
type Deps struct {
	Turfs    domain.TurfAPI
	Admin    domain.AdminAPI
	Cache    domain.TurfCache
	Events   domain.EventPublisher
	Notifier domain.Notifier
	Logger   *zerolog.Logger
	// OnRefresh is called after every successful mutation.
	OnRefresh func()
}

// Gallery is the admin image manager of one turf.
type Gallery struct {
	mu         sync.Mutex
	turf       models.Turf
	mode       Mode
	pending    []models.ImageAsset
	selected   []string
	uploading  bool
	deleting   bool
	refreshKey int64

	deps Deps
}

func New(turf models.Turf, deps Deps) *Gallery {
	return &Gallery{turf: turf, deps: deps}
}

func (g *Gallery) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

func (g *Gallery) Turf() models.Turf {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.turf
	t.Images = append([]string(nil), g.turf.Images...)
	return t
}

func (g *Gallery) RefreshKey() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refreshKey
}

// ImageURLs returns the turf images with the refresh key appended as a
// cache-busting query parameter.
func (g *Gallery) ImageURLs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.imageURLsLocked()
}

func (g *Gallery) imageURLsLocked() []string {
	out := make([]string, 0, len(g.turf.Images))
	for _, u := range g.turf.Images {
		if g.refreshKey == 0 {
			out = append(out, u)
			continue
		}
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		out = append(out, fmt.Sprintf("%s%sv=%d", u, sep, g.refreshKey))
	}
	return out
}

// View is a consistent copy of the gallery state for rendering.
// Images[i] and URLs[i] always refer to the same image.
type View struct {
	TurfName string
	Mode     Mode
	Images   []string
	URLs     []string
	Selected []string
	Pending  []models.ImageAsset
	Busy     bool
}

func (v View) IsSelected(url string) bool {
	return indexOf(v.Selected, url) >= 0
}

// Snapshot reads the whole gallery state under one lock.
func (g *Gallery) Snapshot() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return View{
		TurfName: g.turf.Name,
		Mode:     g.mode,
		Images:   append([]string(nil), g.turf.Images...),
		URLs:     g.imageURLsLocked(),
		Selected: append([]string(nil), g.selected...),
		Pending:  append([]models.ImageAsset(nil), g.pending...),
		Busy:     g.uploading || g.deleting,
	}
}

func (g *Gallery) Pending() []models.ImageAsset {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.ImageAsset(nil), g.pending...)
}

// Selected returns the delete selection in the order it was made.
func (g *Gallery) Selected() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.selected...)
}

func (g *Gallery) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.uploading || g.deleting
}

// Pick replaces the pending upload list. An empty pick is a cancelled picker.
func (g *Gallery) Pick(assets []models.ImageAsset) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == ModeDeleteSelecting {
		return ErrWrongMode
	}
	if len(assets) == 0 {
		return nil
	}
	g.pending = append([]models.ImageAsset(nil), assets...)
	g.mode = ModeUploading
	return nil
}

// RemovePicked drops one pending asset; an empty list returns to browsing.
func (g *Gallery) RemovePicked(i int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != ModeUploading || i < 0 || i >= len(g.pending) {
		return
	}
	g.pending = append(g.pending[:i], g.pending[i+1:]...)
	if len(g.pending) == 0 {
		g.mode = ModeBrowsing
	}
}

// ToggleDeleteMode flips between browsing and delete selection. The delete
// selection is always cleared and a pending upload is dropped.
func (g *Gallery) ToggleDeleteMode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selected = nil
	if g.mode == ModeDeleteSelecting {
		g.mode = ModeBrowsing
	} else {
		g.pending = nil
		g.mode = ModeDeleteSelecting
	}
	return g.mode
}

// ToggleImage flips url in the delete selection. Only in delete mode.
func (g *Gallery) ToggleImage(url string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != ModeDeleteSelecting {
		return false
	}
	if i := indexOf(g.selected, url); i >= 0 {
		g.selected = append(g.selected[:i], g.selected[i+1:]...)
		return true
	}
	if indexOf(g.turf.Images, url) < 0 {
		return false
	}
	g.selected = append(g.selected, url)
	return true
}

// Upload sends the pending assets.
func (g *Gallery) Upload(ctx context.Context) error {
	g.mu.Lock()
	if g.uploading || g.deleting {
		g.mu.Unlock()
		return ErrBusy
	}
	if g.mode != ModeUploading || len(g.pending) == 0 {
		g.mu.Unlock()
		g.notify(ctx, notify.Error("No Images", ErrEmptySelection.Error()))
		return ErrEmptySelection
	}
	g.uploading = true
	id := g.turf.ID
	assets := append([]models.ImageAsset(nil), g.pending...)
	g.mu.Unlock()

	_, err := g.deps.Admin.UploadTurfImages(ctx, id, assets)
	metrics.IncAction("upload_images", err)

	g.mu.Lock()
	g.uploading = false
	if err == nil {
		g.pending = nil
		g.mode = ModeBrowsing
	}
	g.mu.Unlock()

	if err != nil {
		g.logError(err, "image upload failed")
		g.notify(ctx, notify.Error("Upload Failed", api.UserMessage(err, "Failed to upload images")))
		return err
	}

	g.publish(events.EventImagesUploaded, nil, len(assets))
	g.notify(ctx, notify.Success("Success", fmt.Sprintf("%d image(s) uploaded successfully", len(assets))))
	g.refresh(ctx)
	return nil
}

// Confirmation is a pending delete awaiting the user's answer.
type Confirmation struct {
	g    *Gallery
	urls []string
}

func (c *Confirmation) Prompt() string {
	return fmt.Sprintf("Are you sure you want to delete %d image(s)?", len(c.urls))
}

func (c *Confirmation) URLs() []string {
	return append([]string(nil), c.urls...)
}

// Confirm sends the delete for exactly the URLs captured by RequestDelete.
func (c *Confirmation) Confirm(ctx context.Context) error {
	return c.g.deleteImages(ctx, c.urls)
}

// Cancel leaves the selection as is and sends nothing.
func (c *Confirmation) Cancel() {}

// RequestDelete validates the selection and returns a confirmation.
func (g *Gallery) RequestDelete(ctx context.Context) (*Confirmation, error) {
	g.mu.Lock()
	if g.mode != ModeDeleteSelecting {
		g.mu.Unlock()
		return nil, ErrWrongMode
	}
	if len(g.selected) == 0 {
		g.mu.Unlock()
		g.notify(ctx, notify.Error("No Images Selected", ErrEmptySelection.Error()))
		return nil, ErrEmptySelection
	}
	urls := append([]string(nil), g.selected...)
	g.mu.Unlock()
	return &Confirmation{g: g, urls: urls}, nil
}

func (g *Gallery) deleteImages(ctx context.Context, urls []string) error {
	g.mu.Lock()
	if g.uploading || g.deleting {
		g.mu.Unlock()
		return ErrBusy
	}
	g.deleting = true
	id := g.turf.ID
	g.mu.Unlock()

	err := g.deps.Admin.DeleteTurfImages(ctx, id, urls)
	metrics.IncAction("delete_images", err)

	g.mu.Lock()
	g.deleting = false
	if err == nil {
		g.selected = nil
		g.mode = ModeBrowsing
	}
	g.mu.Unlock()

	if err != nil {
		g.logError(err, "image delete failed")
		g.notify(ctx, notify.Error("Delete Failed", api.UserMessage(err, "Failed to delete images")))
		return err
	}

	g.publish(events.EventImagesDeleted, urls, len(urls))
	g.notify(ctx, notify.Success("Success", fmt.Sprintf("%d image(s) deleted successfully", len(urls))))
	g.refresh(ctx)
	return nil
}

// Reload re-fetches the turf from the backend.
func (g *Gallery) Reload(ctx context.Context) error {
	g.mu.Lock()
	id := g.turf.ID
	g.mu.Unlock()

	if g.deps.Cache != nil {
		g.deps.Cache.InvalidateTurf(ctx, id)
	}
	turf, err := g.deps.Turfs.GetTurf(ctx, id)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.turf = *turf
	g.refreshKey++
	// выбор мог ссылаться на уже удалённые изображения
	kept := g.selected[:0]
	for _, u := range g.selected {
		if indexOf(turf.Images, u) >= 0 {
			kept = append(kept, u)
		}
	}
	g.selected = kept
	g.mu.Unlock()
	return nil
}

func (g *Gallery) refresh(ctx context.Context) {
	if err := g.Reload(ctx); err != nil {
		g.logError(err, "gallery reload failed")
		g.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to refresh images")))
	}
	if g.deps.OnRefresh != nil {
		g.deps.OnRefresh()
	}
}

// Close resets the gallery for the next time it is opened.
func (g *Gallery) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = ModeBrowsing
	g.pending = nil
	g.selected = nil
	g.refreshKey++
}

func (g *Gallery) publish(eventType string, urls []string, count int) {
	if g.deps.Events == nil {
		return
	}
	t := g.Turf()
	payload := events.TurfEventPayload{TurfID: t.ID, TurfName: t.Name, ImageURLs: urls, Count: count}
	if err := g.deps.Events.PublishJSON(eventType, payload); err != nil {
		g.logError(err, "failed to publish gallery event")
	}
}

func (g *Gallery) notify(ctx context.Context, n models.Notification) {
	if g.deps.Notifier != nil {
		g.deps.Notifier.Notify(ctx, n)
	}
}

func (g *Gallery) logError(err error, msg string) {
	if g.deps.Logger != nil {
		g.deps.Logger.Warn().Err(err).Int64("turf_id", g.Turf().ID).Msg(msg)
	}
}

// ReadAssets loads image files picked by path.
func ReadAssets(paths []string) ([]models.ImageAsset, error) {
	assets := make([]models.ImageAsset, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(p), err)
		}
		assets = append(assets, models.ImageAsset{Source: p, ContentType: "image/jpeg", Data: data})
	}
	return assets, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

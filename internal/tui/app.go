package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"turfbook/internal/admin"
	"turfbook/internal/api"
	"turfbook/internal/auth"
	"turfbook/internal/booking"
	"turfbook/internal/catalog"
	"turfbook/internal/config"
	"turfbook/internal/events"
	"turfbook/internal/models"
	"turfbook/internal/notify"
	"turfbook/internal/session"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
)

// Deps wires controllers into the terminal UI.
type Deps struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	Client   *api.Client
	Sessions *session.Provider
	Auth     *auth.Flow
	Catalog  *catalog.Browser
	Bookings *booking.Service
	Turfs    *admin.TurfManager
	Notices  *notify.Center
	Events   *events.EventBus
}

// App is the terminal front end. All widget access happens on the tview
// event loop; network calls run in goroutines started by async.
type App struct {
	app    *tview.Application
	pages  *tview.Pages
	toast  *tview.TextView
	footer *tview.TextView
	deps   Deps

	mu         sync.Mutex
	current    string
	cancelPage context.CancelFunc
}

func New(deps Deps) *App {
	a := &App{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		toast:  tview.NewTextView().SetDynamicColors(true),
		footer: tview.NewTextView().SetTextAlign(tview.AlignCenter).SetTextColor(tcell.ColorYellow),
		deps:   deps,
	}

	deps.Notices.Listen(func(n models.Notification) {
		a.app.QueueUpdateDraw(func() { a.showToast(n) })
	})
	deps.Sessions.Subscribe(func(s *models.Session) {
		a.app.QueueUpdateDraw(func() { a.navigate(homePage(s)) })
	})

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			a.app.Stop()
			return nil
		}
		if event.Key() == tcell.KeyCtrlL && a.deps.Sessions.Current() != nil {
			a.confirm("Log out?", func() {
				a.deps.Auth.Reset()
				a.deps.Sessions.Logout()
			}, nil)
			return nil
		}
		return event
	})
	return a
}

// Run blocks until the user quits.
func (a *App) Run() error {
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.toast, 1, 0, false).
		AddItem(a.footer, 1, 0, false)

	a.navigate(homePage(a.deps.Sessions.Current()))
	return a.app.SetRoot(root, true).EnableMouse(true).Run()
}

func (a *App) Stop() {
	a.app.Stop()
}

// navigate swaps the visible page. The previous page's context is cancelled
// so its in-flight requests are abandoned.
func (a *App) navigate(page string) {
	s := a.deps.Sessions.Current()
	if !allowed(s, page) {
		a.deps.Logger.Warn().Str("page", page).Msg("navigation blocked")
		page = homePage(s)
	}

	ctx := a.pageContext(page)
	var (
		view tview.Primitive
		keys string
	)
	switch page {
	case pagePhone:
		view, keys = a.phoneScreen(ctx), "[Enter] Send OTP | [Ctrl+C] Quit"
	case pageOTP:
		view, keys = a.otpScreen(ctx), "[Enter] Verify | [Esc] Change number"
	case pageName:
		view, keys = a.nameScreen(ctx), "[Enter] Continue"
	case pageTurfs:
		view, keys = a.turfListScreen(ctx), "[/] Search | [Enter] Open | [b] My bookings | [r] Refresh | [Ctrl+L] Log out"
	case pageMyBookings:
		view, keys = a.myBookingsScreen(ctx), "[c] Cancel booking | [Esc] Back"
	case pageDashboard:
		view, keys = a.dashboardScreen(ctx), "[n] New | [e] Edit | [a] Availability | [g] Images | [d] Delete | [b] Bookings | [Ctrl+L] Log out"
	case pageAllBookings:
		view, keys = a.allBookingsScreen(ctx), "[Tab] Filter | [x] Export | [Esc] Back"
	default:
		return
	}

	a.pages.AddAndSwitchToPage(page, view, true)
	a.footer.SetText(keys)
	a.app.SetFocus(view)
}

// show opens a page built by the caller (detail, form, gallery).
func (a *App) show(page, keys string, build func(ctx context.Context) tview.Primitive) {
	if !allowed(a.deps.Sessions.Current(), page) {
		return
	}
	view := build(a.pageContext(page))
	a.pages.AddAndSwitchToPage(page, view, true)
	a.footer.SetText(keys)
	a.app.SetFocus(view)
}

func (a *App) pageContext(page string) context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancelPage != nil {
		a.cancelPage()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.current = page
	a.cancelPage = cancel
	return ctx
}

// async runs fn off the event loop and applies the returned UI update on it.
func (a *App) async(ctx context.Context, fn func(ctx context.Context) func()) {
	go func() {
		update := fn(ctx)
		if update == nil || ctx.Err() != nil {
			return
		}
		a.app.QueueUpdateDraw(update)
	}()
}

func (a *App) showToast(n models.Notification) {
	color := "green"
	switch n.Kind {
	case models.NotificationError:
		color = "red"
	case models.NotificationInfo:
		color = "white"
	}
	a.toast.SetText(fmt.Sprintf(" [%s::b]%s[-::-] %s", color, tview.Escape(n.Title), tview.Escape(n.Text)))

	shown := n.CreatedAt
	time.AfterFunc(4*time.Second, func() {
		a.app.QueueUpdateDraw(func() {
			if last, ok := a.deps.Notices.Last(); ok && last.CreatedAt.Equal(shown) {
				a.toast.Clear()
			}
		})
	})
}

// confirm shows a Yes/No modal over the current page. onNo may be nil.
func (a *App) confirm(text string, onYes, onNo func()) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(_ int, label string) {
			a.pages.RemovePage(pageConfirmModal)
			if label == "Yes" {
				onYes()
			} else if onNo != nil {
				onNo()
			}
		})
	a.pages.AddPage(pageConfirmModal, modal, true, true)
	a.app.SetFocus(modal)
}

func (a *App) notify(ctx context.Context, n models.Notification) {
	a.deps.Notices.Notify(ctx, n)
}

func headerCell(text string) *tview.TableCell {
	return tview.NewTableCell(text).
		SetTextColor(tcell.ColorYellow).
		SetAttributes(tcell.AttrBold).
		SetSelectable(false)
}

func framed(p tview.Primitive, title string) *tview.Flex {
	f := tview.NewFlex().SetDirection(tview.FlexRow).AddItem(p, 0, 1, true)
	f.SetBorder(true).SetTitle(" " + title + " ").SetBorderAttributes(tcell.AttrBold)
	return f
}

package tui

import (
	"context"
	"fmt"
	"time"

	"turfbook/internal/api"
	"turfbook/internal/booking"
	"turfbook/internal/models"
	"turfbook/internal/notify"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func statusColor(st models.BookingStatus) tcell.Color {
	switch st {
	case models.BookingStatusConfirmed:
		return tcell.ColorGreen
	case models.BookingStatusPending:
		return tcell.ColorYellow
	default:
		return tcell.ColorRed
	}
}

func (a *App) myBookingsScreen(ctx context.Context) tview.Primitive {
	svc := a.deps.Bookings
	table := tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)

	render := func() {
		table.Clear()
		for col, h := range []string{"TURF", "DATE", "SLOTS", "AMOUNT", "STATUS", ""} {
			table.SetCell(0, col, headerCell(h))
		}
		list := svc.Cached()
		if len(list) == 0 {
			table.SetCell(1, 0, tview.NewTableCell("No bookings yet").SetTextColor(tcell.ColorGray).SetSelectable(false))
			return
		}
		for i := range list {
			b := list[i]
			row := i + 1
			hint := ""
			if svc.CanCancel(&b) {
				hint = "cancellable"
			}
			table.SetCell(row, 0, tview.NewTableCell(tview.Escape(b.TurfName)).SetReference(b).SetExpansion(1))
			table.SetCell(row, 1, tview.NewTableCell(b.Date.Format("02 Jan 2006")))
			table.SetCell(row, 2, tview.NewTableCell(booking.SlotSummary(&b)))
			table.SetCell(row, 3, tview.NewTableCell("₹"+b.TotalAmount.StringFixed(2)).SetAlign(tview.AlignRight))
			table.SetCell(row, 4, tview.NewTableCell(string(b.Status)).SetTextColor(statusColor(b.Status)))
			table.SetCell(row, 5, tview.NewTableCell(hint).SetTextColor(tcell.ColorGray))
		}
	}
	load := func() {
		a.async(ctx, func(ctx context.Context) func() {
			if _, err := svc.Mine(ctx); err != nil {
				a.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to load bookings")))
			}
			return render
		})
	}

	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			a.navigate(pageTurfs)
			return nil
		}
		switch event.Rune() {
		case 'r':
			load()
			return nil
		case 'c':
			row, _ := table.GetSelection()
			b, ok := table.GetCell(row, 0).GetReference().(models.Booking)
			if !ok {
				return nil
			}
			// окно отмены проверяется заново в момент нажатия
			if !svc.CanCancel(&b) {
				a.notify(ctx, notify.Error("Cannot Cancel", "Bookings can only be cancelled at least 2 hours in advance"))
				return nil
			}
			a.confirm(fmt.Sprintf("Cancel booking at %s on %s?", tview.Escape(b.TurfName), b.Date.Format("02 Jan")), func() {
				a.app.SetFocus(table)
				a.async(ctx, func(ctx context.Context) func() {
					if err := svc.Cancel(ctx, &b); err != nil {
						a.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to cancel booking")))
					} else {
						a.notify(ctx, notify.Success("Cancelled", "Your booking has been cancelled"))
					}
					return render
				})
			}, nil)
			return nil
		}
		return event
	})

	render()
	load()
	return framed(table, "My bookings")
}

func (a *App) allBookingsScreen(ctx context.Context) tview.Primitive {
	svc := a.deps.Bookings
	filter := booking.FilterAll
	tabs := tview.NewTextView().SetDynamicColors(true)
	table := tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)

	render := func() {
		all := svc.CachedAll()
		text := ""
		for _, tab := range booking.Tabs(all) {
			if tab.Key == filter {
				text += fmt.Sprintf(" [black:yellow] %s (%d) [-:-]", tab.Label, tab.Count)
			} else {
				text += fmt.Sprintf("  %s (%d) ", tab.Label, tab.Count)
			}
		}
		tabs.SetText(text)

		table.Clear()
		for col, h := range []string{"#", "TURF", "PLAYER", "PHONE", "DATE", "SLOTS", "AMOUNT", "STATUS"} {
			table.SetCell(0, col, headerCell(h))
		}
		list := booking.Filter(all, filter)
		if len(list) == 0 {
			table.SetCell(1, 1, tview.NewTableCell("No bookings available").SetTextColor(tcell.ColorGray).SetSelectable(false))
			return
		}
		for i := range list {
			b := list[i]
			row := i + 1
			table.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf("%d", b.ID)))
			table.SetCell(row, 1, tview.NewTableCell(tview.Escape(b.TurfName)).SetExpansion(1))
			table.SetCell(row, 2, tview.NewTableCell(tview.Escape(b.PlayerName)))
			table.SetCell(row, 3, tview.NewTableCell(b.Phone))
			table.SetCell(row, 4, tview.NewTableCell(b.Date.Format("02 Jan 2006")))
			table.SetCell(row, 5, tview.NewTableCell(booking.SlotSummary(&b)))
			table.SetCell(row, 6, tview.NewTableCell("₹"+b.TotalAmount.StringFixed(2)).SetAlign(tview.AlignRight))
			table.SetCell(row, 7, tview.NewTableCell(string(b.Status)).SetTextColor(statusColor(b.Status)))
		}
	}
	load := func() {
		a.async(ctx, func(ctx context.Context) func() {
			if _, err := svc.All(ctx); err != nil {
				a.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to load bookings")))
			}
			return render
		})
	}

	order := []string{booking.FilterAll}
	for _, st := range models.BookingStatuses {
		order = append(order, string(st))
	}

	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			a.navigate(pageDashboard)
			return nil
		case tcell.KeyTab:
			for i, key := range order {
				if key == filter {
					filter = order[(i+1)%len(order)]
					break
				}
			}
			render()
			return nil
		}
		switch event.Rune() {
		case 'r':
			load()
			return nil
		case 'x':
			list := booking.Filter(svc.CachedAll(), filter)
			dir := a.deps.Config.Exports.Path
			a.async(ctx, func(ctx context.Context) func() {
				path, err := booking.ExportXLSX(list, dir, time.Now())
				if err != nil {
					a.deps.Logger.Error().Err(err).Msg("bookings export failed")
					a.notify(ctx, notify.Error("Export Failed", err.Error()))
					return nil
				}
				a.deps.Logger.Info().Str("file_path", path).Int("rows", len(list)).Msg("bookings exported")
				a.notify(ctx, notify.Success("Exported", path))
				return nil
			})
			return nil
		}
		return event
	})

	render()
	load()

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tabs, 1, 0, false).
		AddItem(table, 0, 1, true)
	return framed(layout, "All bookings")
}

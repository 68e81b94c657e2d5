package tui

import (
	"context"
	"fmt"
	"time"

	"turfbook/internal/models"
	"turfbook/internal/slots"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func (a *App) turfListScreen(ctx context.Context) tview.Primitive {
	browser := a.deps.Catalog
	table := tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	search := tview.NewInputField().SetLabel("Search: ").SetText(browser.Query())

	render := func() {
		table.Clear()
		for col, h := range []string{"TURF", "LOCATION", "RATING", "₹/HOUR", "STATUS"} {
			table.SetCell(0, col, headerCell(h))
		}
		visible := browser.Visible()
		if len(visible) == 0 {
			msg := "No turfs available"
			if browser.Query() != "" {
				msg = "No turfs match your search"
			}
			table.SetCell(1, 0, tview.NewTableCell(msg).SetTextColor(tcell.ColorGray).SetSelectable(false))
			return
		}
		for i, t := range visible {
			row := i + 1
			status, color := "Open", tcell.ColorGreen
			if !t.IsActive() {
				status, color = "Closed", tcell.ColorGray
			}
			table.SetCell(row, 0, tview.NewTableCell(tview.Escape(t.Name)).SetReference(t.ID).SetExpansion(1))
			table.SetCell(row, 1, tview.NewTableCell(tview.Escape(t.Location)).SetExpansion(1))
			table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%.1f", t.Rating)))
			table.SetCell(row, 3, tview.NewTableCell(t.PricePerHour.StringFixed(0)).SetAlign(tview.AlignRight))
			table.SetCell(row, 4, tview.NewTableCell(status).SetTextColor(color))
		}
	}
	load := func(refresh bool) {
		a.async(ctx, func(ctx context.Context) func() {
			if refresh {
				_ = browser.Refresh(ctx)
			} else {
				_ = browser.Load(ctx)
			}
			return render
		})
	}

	search.SetChangedFunc(func(text string) {
		browser.Search(text)
		render()
	})
	search.SetDoneFunc(func(tcell.Key) { a.app.SetFocus(table) })

	table.SetSelectedFunc(func(row, _ int) {
		if id, ok := table.GetCell(row, 0).GetReference().(int64); ok {
			a.openTurf(id)
		}
	})
	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case '/':
			a.app.SetFocus(search)
			return nil
		case 'r':
			load(true)
			return nil
		case 'b':
			a.navigate(pageMyBookings)
			return nil
		}
		return event
	})

	render()
	load(false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(search, 1, 0, false).
		AddItem(table, 0, 1, true)
	return framed(layout, "Turfs")
}

func (a *App) openTurf(id int64) {
	a.show(pageTurfDetail, "[Space] Select slot | [Enter] Book | [←/→] Date | [r] Reload | [Esc] Back", func(ctx context.Context) tview.Primitive {
		return a.turfDetailScreen(ctx, id)
	})
}

func (a *App) turfDetailScreen(ctx context.Context, id int64) tview.Primitive {
	days := a.deps.Config.Booking.DateRangeDays
	dates := slots.NextDates(time.Now(), days)
	dateIdx := 0

	sel := slots.NewSelector(id, dates[0], a.deps.Client, a.deps.Bookings, a.deps.Notices, a.deps.Logger)

	info := tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	table := tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	summary := tview.NewTextView().SetDynamicColors(true)

	renderSlots := func() {
		table.Clear()
		for col, h := range []string{"", "TIME", "PRICE", ""} {
			table.SetCell(0, col, headerCell(h))
		}
		list := sel.Slots()
		if len(list) == 0 {
			table.SetCell(1, 1, tview.NewTableCell("No slots for this date").SetTextColor(tcell.ColorGray).SetSelectable(false))
		}
		for i, s := range list {
			row := i + 1
			mark, color, note := "[ ]", tcell.ColorWhite, ""
			switch {
			case !s.IsAvailable:
				mark, color, note = " x ", tcell.ColorGray, "Booked"
			case sel.IsSelected(s):
				mark, color = "[x]", tcell.ColorGreen
			}
			table.SetCell(row, 0, tview.NewTableCell(mark).SetTextColor(color).SetReference(s))
			table.SetCell(row, 1, tview.NewTableCell(s.Label()).SetTextColor(color).SetExpansion(1))
			table.SetCell(row, 2, tview.NewTableCell("₹"+s.Price.StringFixed(0)).SetTextColor(color).SetAlign(tview.AlignRight))
			table.SetCell(row, 3, tview.NewTableCell(note).SetTextColor(tcell.ColorGray))
		}

		picked := sel.Selected()
		text := fmt.Sprintf(" Date: [yellow]%s[-]  (%d/%d)", sel.Date(), dateIdx+1, len(dates))
		if len(picked) > 0 {
			text += fmt.Sprintf("   Selected: %d slot(s)   Total: [green::b]₹%s[-::-]", len(picked), sel.Total().StringFixed(2))
		}
		switch {
		case sel.Submitting():
			text += "   [yellow]Booking...[-]"
		case sel.Stale() && !sel.Loading():
			text += "   [gray](r to refresh)[-]"
		}
		summary.SetText(text)
	}
	loadSlots := func() {
		a.async(ctx, func(ctx context.Context) func() {
			_ = sel.Load(ctx)
			return renderSlots
		})
	}

	a.async(ctx, func(ctx context.Context) func() {
		turf, err := a.deps.Catalog.Detail(ctx, id)
		if err != nil {
			return nil
		}
		return func() {
			desc := turf.Description
			if desc == "" {
				desc = "No description"
			}
			info.SetText(fmt.Sprintf("[::b]%s[::-]\n%s   ★ %.1f   ₹%s/hour   %s\n%s\n%d photo(s)",
				tview.Escape(turf.Name), tview.Escape(turf.Location), turf.Rating,
				turf.PricePerHour.StringFixed(0), tview.Escape(turf.ContactNumber),
				tview.Escape(desc), len(turf.Images)))
		}
	})
	renderSlots()
	loadSlots()

	submit := func() {
		draft, err := sel.Draft()
		if err != nil {
			a.notify(ctx, models.Notification{Kind: models.NotificationError, Title: "No Slots Selected", Text: err.Error()})
			return
		}
		text := fmt.Sprintf("Book %d slot(s) on %s for ₹%s?", len(draft.Slots), draft.Date, draft.TotalAmount.StringFixed(2))
		a.confirm(text, func() {
			a.app.SetFocus(table)
			a.async(ctx, func(ctx context.Context) func() {
				_, _ = sel.SubmitAndRefresh(ctx)
				return renderSlots
			})
			renderSlots()
		}, nil)
	}

	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			a.navigate(pageTurfs)
			return nil
		case tcell.KeyEnter:
			submit()
			return nil
		case tcell.KeyLeft, tcell.KeyRight:
			if event.Key() == tcell.KeyLeft && dateIdx > 0 {
				dateIdx--
			} else if event.Key() == tcell.KeyRight && dateIdx < len(dates)-1 {
				dateIdx++
			} else {
				return nil
			}
			sel.SetDate(dates[dateIdx])
			renderSlots()
			loadSlots()
			return nil
		}
		switch event.Rune() {
		case ' ':
			row, _ := table.GetSelection()
			if s, ok := table.GetCell(row, 0).GetReference().(models.TimeSlot); ok {
				sel.Toggle(s)
				renderSlots()
			}
			return nil
		case 'r':
			loadSlots()
			return nil
		}
		return event
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(info, 5, 0, false).
		AddItem(summary, 1, 0, false).
		AddItem(table, 0, 1, true)
	return framed(layout, "Book a slot")
}

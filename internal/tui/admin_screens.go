package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"turfbook/internal/api"
	"turfbook/internal/gallery"
	"turfbook/internal/models"
	"turfbook/internal/notify"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/shopspring/decimal"
)

func (a *App) dashboardScreen(ctx context.Context) tview.Primitive {
	mgr := a.deps.Turfs
	stats := tview.NewTextView().SetDynamicColors(true)
	table := tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)

	render := func() {
		total, active, withImages := mgr.Stats()
		stats.SetText(fmt.Sprintf(" Turfs: [::b]%d[::-]   Active: [green]%d[-]   With photos: %d", total, active, withImages))

		table.Clear()
		for col, h := range []string{"#", "TURF", "LOCATION", "₹/HOUR", "PHOTOS", "STATUS"} {
			table.SetCell(0, col, headerCell(h))
		}
		for i, t := range mgr.Turfs() {
			row := i + 1
			status, color := "Active", tcell.ColorGreen
			if !t.IsActive() {
				status, color = "Inactive", tcell.ColorRed
			}
			table.SetCell(row, 0, tview.NewTableCell(strconv.FormatInt(t.ID, 10)).SetReference(t))
			table.SetCell(row, 1, tview.NewTableCell(tview.Escape(t.Name)).SetExpansion(1))
			table.SetCell(row, 2, tview.NewTableCell(tview.Escape(t.Location)).SetExpansion(1))
			table.SetCell(row, 3, tview.NewTableCell(t.PricePerHour.StringFixed(0)).SetAlign(tview.AlignRight))
			table.SetCell(row, 4, tview.NewTableCell(strconv.Itoa(len(t.Images))).SetAlign(tview.AlignRight))
			table.SetCell(row, 5, tview.NewTableCell(status).SetTextColor(color))
		}
	}
	load := func() {
		a.async(ctx, func(ctx context.Context) func() {
			if _, err := mgr.List(ctx); err != nil {
				a.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to load turfs")))
			}
			return render
		})
	}
	selected := func() (models.Turf, bool) {
		row, _ := table.GetSelection()
		t, ok := table.GetCell(row, 0).GetReference().(models.Turf)
		return t, ok
	}

	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'r':
			load()
		case 'n':
			a.openTurfForm(nil)
		case 'b':
			a.navigate(pageAllBookings)
		case 'e':
			if t, ok := selected(); ok {
				a.openTurfForm(&t)
			}
		case 'g':
			if t, ok := selected(); ok {
				a.openGallery(t)
			}
		case 'a':
			if t, ok := selected(); ok {
				next := !t.IsActive()
				a.async(ctx, func(ctx context.Context) func() {
					if err := mgr.SetAvailability(ctx, t.ID, next); err != nil {
						a.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to update availability")))
					}
					return render
				})
			}
		case 'd':
			if t, ok := selected(); ok {
				a.confirm(fmt.Sprintf("Delete turf %q?", t.Name), func() {
					a.app.SetFocus(table)
					a.async(ctx, func(ctx context.Context) func() {
						if err := mgr.Delete(ctx, &t); err != nil {
							a.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to delete turf")))
						} else {
							a.notify(ctx, notify.Success("Deleted", t.Name+" removed"))
						}
						return render
					})
				}, nil)
			}
		default:
			return event
		}
		return nil
	})

	render()
	load()

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(stats, 1, 0, false).
		AddItem(table, 0, 1, true)
	return framed(layout, "Admin dashboard")
}

// openTurfForm edits t, or creates a turf when t is nil.
func (a *App) openTurfForm(t *models.Turf) {
	a.show(pageTurfForm, "[Tab] Next field | [Esc] Back", func(ctx context.Context) tview.Primitive {
		return a.turfFormScreen(ctx, t)
	})
}

func (a *App) turfFormScreen(ctx context.Context, existing *models.Turf) tview.Primitive {
	draft := models.Turf{}
	title := "New turf"
	if existing != nil {
		draft = *existing
		title = "Edit " + existing.Name
	}

	form := tview.NewForm()
	form.AddInputField("Name", draft.Name, 40, nil, func(s string) { draft.Name = s })
	form.AddInputField("Location", draft.Location, 40, nil, func(s string) { draft.Location = s })
	price := ""
	if !draft.PricePerHour.IsZero() {
		price = draft.PricePerHour.String()
	}
	form.AddInputField("Price per hour", price, 12, nil, func(s string) { price = s })
	form.AddInputField("Contact number", draft.ContactNumber, 20, nil, func(s string) { draft.ContactNumber = s })
	form.AddTextArea("Description", draft.Description, 40, 3, 0, func(s string) { draft.Description = s })

	form.AddButton("Save", func() {
		p, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil {
			p = decimal.Zero
		}
		draft.PricePerHour = p
		turf := draft
		a.async(ctx, func(ctx context.Context) func() {
			var err error
			if turf.ID > 0 {
				_, err = a.deps.Turfs.Update(ctx, &turf)
			} else {
				_, err = a.deps.Turfs.Create(ctx, &turf)
			}
			if err != nil {
				a.notify(ctx, notify.Error("Error", api.UserMessage(err, err.Error())))
				return nil
			}
			a.notify(ctx, notify.Success("Saved", turf.Name+" saved"))
			return func() { a.navigate(pageDashboard) }
		})
	})
	form.AddButton("Cancel", func() { a.navigate(pageDashboard) })
	form.SetCancelFunc(func() { a.navigate(pageDashboard) })
	form.SetBorder(true).SetTitle(" " + title + " ")
	return form
}

func (a *App) openGallery(t models.Turf) {
	a.show(pageGallery, "[u] Upload | [x] Delete mode | [Space] Select | [D] Delete selected | [Esc] Back", func(ctx context.Context) tview.Primitive {
		return a.galleryScreen(ctx, t)
	})
}

func (a *App) galleryScreen(ctx context.Context, t models.Turf) tview.Primitive {
	g := gallery.New(t, gallery.Deps{
		Turfs:    a.deps.Client,
		Admin:    a.deps.Client,
		Cache:    a.deps.Client,
		Events:   a.deps.Events,
		Notifier: a.deps.Notices,
		Logger:   a.deps.Logger,
		OnRefresh: func() {
			// список турфов на дашборде тоже устарел
			go func() { _, _ = a.deps.Turfs.List(ctx) }()
		},
	})

	header := tview.NewTextView().SetDynamicColors(true)
	list := tview.NewTable().SetSelectable(true, false)
	paths := tview.NewInputField().SetLabel("Image files (comma separated): ")

	render := func() {
		v := g.Snapshot()
		text := fmt.Sprintf(" [::b]%s[::-]   mode: [yellow]%s[-]", tview.Escape(v.TurfName), v.Mode)
		switch v.Mode {
		case gallery.ModeUploading:
			text += fmt.Sprintf("   %d file(s) ready, press [green]U[-] to upload", len(v.Pending))
		case gallery.ModeDeleteSelecting:
			text += fmt.Sprintf("   %d selected", len(v.Selected))
		}
		if v.Busy {
			text += "   [yellow]working...[-]"
		}
		header.SetText(text)

		list.Clear()
		if len(v.Images) == 0 {
			list.SetCell(0, 1, tview.NewTableCell("No images yet").SetTextColor(tcell.ColorGray).SetSelectable(false))
		}
		for i, u := range v.Images {
			mark := "   "
			if v.Mode == gallery.ModeDeleteSelecting {
				mark = "[ ]"
				if v.IsSelected(u) {
					mark = "[x]"
				}
			}
			list.SetCell(i, 0, tview.NewTableCell(mark).SetReference(u))
			list.SetCell(i, 1, tview.NewTableCell(tview.Escape(v.URLs[i])).SetExpansion(1))
		}
		for i, p := range v.Pending {
			row := len(v.Images) + i
			list.SetCell(row, 0, tview.NewTableCell(" + ").SetTextColor(tcell.ColorGreen).SetReference(i))
			list.SetCell(row, 1, tview.NewTableCell(tview.Escape(p.Source)).SetTextColor(tcell.ColorGreen))
		}
	}

	paths.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			assets, err := gallery.ReadAssets(strings.Split(paths.GetText(), ","))
			if err != nil {
				a.notify(ctx, notify.Error("Error", err.Error()))
			} else if err := g.Pick(assets); err != nil {
				a.notify(ctx, notify.Error("Error", err.Error()))
			}
			paths.SetText("")
		}
		render()
		a.app.SetFocus(list)
	})

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			g.Close()
			a.navigate(pageDashboard)
			return nil
		}
		switch event.Rune() {
		case 'u':
			a.app.SetFocus(paths)
		case 'U':
			a.async(ctx, func(ctx context.Context) func() {
				_ = g.Upload(ctx)
				return render
			})
			render()
		case 'x':
			g.ToggleDeleteMode()
			render()
		case ' ':
			row, _ := list.GetSelection()
			switch ref := list.GetCell(row, 0).GetReference().(type) {
			case string:
				g.ToggleImage(ref)
			case int:
				g.RemovePicked(ref)
			}
			render()
		case 'D':
			c, err := g.RequestDelete(ctx)
			if err != nil {
				if errors.Is(err, gallery.ErrWrongMode) {
					a.notify(ctx, notify.Info("Delete", "Press x to select images first"))
				}
				return nil
			}
			a.confirm(c.Prompt(), func() {
				a.app.SetFocus(list)
				a.async(ctx, func(ctx context.Context) func() {
					_ = c.Confirm(ctx)
					return render
				})
				render()
			}, c.Cancel)
		default:
			return event
		}
		return nil
	})

	render()
	a.async(ctx, func(ctx context.Context) func() {
		if err := g.Reload(ctx); err != nil {
			a.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to load images")))
		}
		return render
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(paths, 1, 0, false).
		AddItem(list, 0, 1, true)
	return framed(layout, "Images")
}

package tui

import (
	"context"

	"turfbook/internal/auth"
	"turfbook/internal/models"

	"github.com/rivo/tview"
)

func (a *App) phoneScreen(ctx context.Context) tview.Primitive {
	form := tview.NewForm()
	form.AddInputField("Phone (+91)", "", models.PhoneDigits+2, tview.InputFieldInteger, nil)
	form.AddButton("Send OTP", func() {
		phone := form.GetFormItem(0).(*tview.InputField).GetText()
		a.async(ctx, func(ctx context.Context) func() {
			if err := a.deps.Auth.SendOTP(ctx, phone); err != nil {
				return nil
			}
			return func() { a.navigate(pageOTP) }
		})
	})
	form.AddButton("Quit", a.Stop)
	form.SetBorder(true).SetTitle(" Welcome to Turfbook ")
	return form
}

func (a *App) otpScreen(ctx context.Context) tview.Primitive {
	flow := a.deps.Auth
	form := tview.NewForm()
	form.AddTextView("Sent to", flow.Phone(), 0, 1, true, false)
	form.AddInputField("OTP", flow.OTP(), models.OTPLength+2, tview.InputFieldInteger, flow.EnterOTP)
	form.AddButton("Verify", func() {
		code := form.GetFormItem(1).(*tview.InputField).GetText()
		a.async(ctx, func(ctx context.Context) func() {
			next, err := flow.VerifyOTP(ctx, code)
			if err != nil && next == auth.StatePhoneEntry {
				return func() { a.navigate(pagePhone) }
			}
			// успешный вход переключает экран через подписку на сессию
			return nil
		})
	})
	form.AddButton("Resend", func() {
		a.async(ctx, func(ctx context.Context) func() {
			if err := flow.ResendOTP(ctx); err != nil {
				return nil
			}
			return func() { form.GetFormItem(1).(*tview.InputField).SetText("") }
		})
	})
	form.AddButton("Change number", func() {
		flow.Back()
		a.navigate(pagePhone)
	})
	form.SetCancelFunc(func() {
		flow.Back()
		a.navigate(pagePhone)
	})
	form.SetBorder(true).SetTitle(" Verify OTP ")
	return form
}

func (a *App) nameScreen(ctx context.Context) tview.Primitive {
	form := tview.NewForm()
	form.AddInputField("Your name", "", 30, nil, nil)
	form.AddButton("Continue", func() {
		name := form.GetFormItem(0).(*tview.InputField).GetText()
		a.async(ctx, func(ctx context.Context) func() {
			_ = a.deps.Auth.SetName(ctx, name)
			return nil
		})
	})
	form.SetBorder(true).SetTitle(" What should we call you? ")
	return form
}

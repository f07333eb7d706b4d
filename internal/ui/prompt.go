package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// dialogPrompter asks questions with dialogs and shows notices in the status
// bar. It must be called on the event loop.
type dialogPrompter struct {
	window fyne.Window
	status *widget.Label
}

func (p *dialogPrompter) Confirm(message string, onYes func()) {
	dialog.ShowConfirm("Confirm", message, func(ok bool) {
		if ok {
			onYes()
		}
	}, p.window)
}

func (p *dialogPrompter) Notify(message string) {
	p.status.SetText(message)
}

func (p *dialogPrompter) Alert(err error) {
	p.status.SetText(err.Error())
	dialog.ShowError(err, p.window)
}

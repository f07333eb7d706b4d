package ui

import (
	"context"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"AnnotateBoard/internal/config"
	"AnnotateBoard/internal/net"
)

// RunApp opens the annotation window over doc and blocks until it is closed.
// A non-empty liveURL makes the board report saves made elsewhere.
func RunApp(ctx context.Context, cfg *config.Config, gw net.Gateway, doc image.Image, liveURL string) {
	myApp := app.New()
	myWindow := myApp.NewWindow("Annotate")
	myWindow.Resize(fyne.NewSize(1024, 768))

	board := NewBoard(ctx, myWindow, cfg, gw, doc)
	toolbar := NewToolbar(board)

	content := container.NewBorder(toolbar.CanvasObject(), board.Status(), nil, nil, board.Content())
	myWindow.SetContent(content)

	if liveURL != "" {
		board.Watch(liveURL)
	}
	myWindow.ShowAndRun()
}

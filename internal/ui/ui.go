// Package ui provides the main entry point for the UI.
package ui

import (
	"github.com/palemoky/draw-and-guess/internal/ui/model"
	"github.com/palemoky/draw-and-guess/internal/ui/view"
)

// NewOnlineModel creates a new OnlineModel with the view renderer wired in.
func NewOnlineModel(serverURL string) *model.OnlineModel {
	m := model.NewOnlineModel(serverURL)
	m.SetViewRenderer(view.Render)
	return m
}

package overlay

import (
	"github.com/sirupsen/logrus"

	"github.com/dudu/facehighlight/internal/geometry"
)

// Logged writes renderer instructions to a logger, for headless runs
type Logged struct {
	Log *logrus.Logger
}

// Show logs the display rect
func (l Logged) Show(rect geometry.Rect) {
	l.Log.WithField("rect", rect.String()).Info("Show highlight")
}

// Hide logs the hide instruction
func (l Logged) Hide() {
	l.Log.Debug("Hide highlight")
}

// Package view holds helpers shared by the dashboard views.
package view

import (
	"context"

	"github.com/cli/browser"

	"github.com/okian/pulseboard/pkg/logger"
)

// Opener opens a URL outside the process.
type Opener func(url string)

// BrowserOpener opens URLs with the system browser. Failures are logged.
func BrowserOpener(l logger.Logger) Opener {
	return func(url string) {
		if err := browser.OpenURL(url); err != nil {
			l.Warn(context.Background(), "failed to open browser", logger.String("url", url), logger.Error(err))
		}
	}
}

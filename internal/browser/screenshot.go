package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"

	"go-linkedin-extractor/pkg/logging"
)

// ScreenshotDebugger saves full-page screenshots when navigation misbehaves.
type ScreenshotDebugger struct {
	outputDir string
	log       *logging.Logger
}

func NewScreenshotDebugger(dir string, log *logging.Logger) *ScreenshotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	return &ScreenshotDebugger{outputDir: dir, log: log}
}

func (s *ScreenshotDebugger) Capture(page playwright.Page, name string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create screenshot dir")
	}
	filename := fmt.Sprintf("%s_%s.png", name, time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.outputDir, filename)

	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.log.Warn("⚠️ failed to capture screenshot", "err", err)
		return "", errors.Wrap(err, "screenshot")
	}
	s.log.Info("📸 screenshot saved", "path", path)
	return path, nil
}

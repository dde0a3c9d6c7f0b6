package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"flyer-studio/models"
	"flyer-studio/utils"
)

// Format is an export file type.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

const (
	// US Letter, in inches.
	paperWidth  = 8.5
	paperHeight = 11.0

	screenshotQuality = 90
	exportTimeout     = 60 * time.Second
)

// Exporter prints rendered flyers with headless Chrome.
type Exporter struct {
	renderer  Renderer
	chromeBin string
	retry     *utils.RetryConfig
	logger    *utils.Logger
	timeout   time.Duration
}

// NewExporter creates an Exporter. An empty chromeBin means the binary is
// looked up on PATH and in the usual install locations at export time.
func NewExporter(renderer Renderer, chromeBin string, maxRetries int, logger *utils.Logger) *Exporter {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Exporter{
		renderer:  renderer,
		chromeBin: chromeBin,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		logger:  logger,
		timeout: exportTimeout,
	}
}

// Export renders doc and prints it in the requested format.
func (e *Exporter) Export(ctx context.Context, doc *models.GeneratedDocument, format Format) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if format != FormatPDF && format != FormatPNG {
		return nil, fmt.Errorf("export: unsupported format %q", format)
	}

	markup, err := e.renderer.Render(doc)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "flyer-*.html")
	if err != nil {
		return nil, fmt.Errorf("export: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(markup); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("export: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("export: close temp file: %w", err)
	}

	chromeBin := findChromeBinary(e.chromeBin)
	e.logger.Debug("[export] %s: printing %s with %q", doc.Metadata.RequestID, format, chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1280, 1650),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var out []byte
	err = e.retry.Do(ctx, "export-"+string(format), func() error {
		tabCtx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, e.timeout)
		defer cancelTimeout()

		actions := []chromedp.Action{
			chromedp.Navigate("file://" + tmp.Name()),
			chromedp.WaitReady("main.flyer", chromedp.ByQuery),
		}
		switch format {
		case FormatPDF:
			actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
				buf, _, err := page.PrintToPDF().
					WithPrintBackground(true).
					WithPaperWidth(paperWidth).
					WithPaperHeight(paperHeight).
					Do(ctx)
				if err != nil {
					return err
				}
				out = buf
				return nil
			}))
		case FormatPNG:
			actions = append(actions, chromedp.FullScreenshot(&out, screenshotQuality))
		}

		if err := chromedp.Run(tabCtx, actions...); err != nil {
			return fmt.Errorf("chromedp print: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	e.logger.Info("[export] %s: %s ready (%d bytes)", doc.Metadata.RequestID, format, len(out))
	return out, nil
}

// ExportToDir exports doc and writes it to dir. It returns the written
// path.
func (e *Exporter) ExportToDir(ctx context.Context, doc *models.GeneratedDocument, format Format, dir string) (string, error) {
	data, err := e.Export(ctx, doc, format)
	if err != nil {
		return "", err
	}
	return Save(dir, doc, format, data)
}

// Save writes exported bytes to dir as <request id>.<format>.
func Save(dir string, doc *models.GeneratedDocument, format Format, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}
	name := doc.Metadata.RequestID
	if name == "" {
		name = "flyer-" + doc.Metadata.GeneratedAt.Format("20060102-150405")
	}
	path := filepath.Join(dir, name+"."+string(format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("export: write %q: %w", path, err)
	}
	return path, nil
}

// findChromeBinary returns the first usable Chrome/Chromium binary, preferring
// the configured path and then CHROME_BIN.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if v := os.Getenv("CHROME_BIN"); v != "" {
		return v
	}
	for _, name := range []string{
		"google-chrome-stable",
		"google-chrome",
		"chromium-browser",
		"chromium",
	} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, path := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

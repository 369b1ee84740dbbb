// Package ocr shells out to tesseract and pdftoppm for scanned documents.
// The engine probes tesseract availability in the background at startup;
// callers wait for readiness with a bounded poll and fail fast with
// ErrOCRNotReady instead of blocking an upload indefinitely.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/regdesk/regdesk/internal/core/domain"
)

// basePDFDPI is the nominal resolution of a PDF point grid. RenderScale
// multiplies it; 2.0 renders pages at 144 dpi, enough for tesseract to
// resolve 10pt body text on typical regulator letterheads.
const basePDFDPI = 72

type Config struct {
	Tesseract string // binary name or absolute path, default "tesseract"
	Pdftoppm  string // binary name or absolute path, default "pdftoppm"
	Language  string // tesseract language pack, default "eng"

	// RenderScale upscales rasterized PDF pages before recognition.
	RenderScale float64

	// ReadyWait bounds how long a caller blocks waiting for the engine
	// probe; PollEvery is the re-check interval.
	ReadyWait time.Duration
	PollEvery time.Duration
}

func (c Config) withDefaults() Config {
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Language == "" {
		c.Language = "eng"
	}
	if c.RenderScale <= 0 {
		c.RenderScale = 2.0
	}
	if c.ReadyWait <= 0 {
		c.ReadyWait = 6 * time.Second
	}
	if c.PollEvery <= 0 {
		c.PollEvery = 150 * time.Millisecond
	}
	return c
}

type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	mu      sync.Mutex
	ready   bool
	initErr error
}

func New(cfg Config, logger *slog.Logger) *Engine {
	return newEngine(cfg, execRunner{}, logger)
}

func newEngine(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		cfg:    cfg.withDefaults(),
		runner: runner,
		logger: logger,
	}
	go e.probe()
	return e
}

// probe checks that the tesseract binary responds. It runs once in the
// background so a cold container does not stall the first upload request.
func (e *Engine) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, "--version")

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.initErr = fmt.Errorf("tesseract probe: %w: %s", err, truncate(string(stderr), 512))
		e.logger.Error("ocr_engine_unavailable", "error", e.initErr)
		return
	}
	e.ready = true
	e.logger.Info("ocr_engine_ready", "tesseract", e.cfg.Tesseract, "language", e.cfg.Language)
}

func (e *Engine) status() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready, e.initErr
}

// WaitReady blocks until the engine probe succeeds, the probe fails, the
// bounded wait elapses, or ctx is cancelled. The wait ceiling keeps upload
// requests from hanging when tesseract is missing from the host.
func (e *Engine) WaitReady(ctx context.Context) error {
	deadline := time.Now().Add(e.cfg.ReadyWait)
	for {
		ready, err := e.status()
		if err != nil {
			return domain.WrapError(domain.ErrOCRNotReady, "ocr.wait_ready", err)
		}
		if ready {
			return nil
		}
		if time.Now().After(deadline) {
			return domain.WrapError(domain.ErrOCRNotReady, "ocr.wait_ready",
				fmt.Errorf("engine not ready after %s", e.cfg.ReadyWait))
		}
		select {
		case <-ctx.Done():
			return domain.WrapError(domain.ErrOCRNotReady, "ocr.wait_ready", ctx.Err())
		case <-time.After(e.cfg.PollEvery):
		}
	}
}

// RecognizePDF rasterizes every page of the PDF and recognizes them in
// order. Pages are joined with a blank line. Returns the page count so the
// caller can account for OCR volume.
func (e *Engine) RecognizePDF(ctx context.Context, content []byte) (string, int, error) {
	if err := e.WaitReady(ctx); err != nil {
		return "", 0, err
	}

	tmpDir, err := os.MkdirTemp("", "regdesk-ocr-*")
	if err != nil {
		return "", 0, domain.WrapError(domain.ErrExtraction, "ocr.recognize_pdf", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("ocr_tmp_cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	src := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		return "", 0, domain.WrapError(domain.ErrExtraction, "ocr.recognize_pdf", err)
	}

	dpi := int(basePDFDPI * e.cfg.RenderScale)
	prefix := filepath.Join(tmpDir, "page")
	if _, stderr, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", dpi), "-png", src, prefix); err != nil {
		return "", 0, domain.WrapError(domain.ErrExtraction, "ocr.render_pdf",
			fmt.Errorf("%w: %s", err, truncate(string(stderr), 512)))
	}

	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if len(pages) == 0 {
		return "", 0, domain.WrapError(domain.ErrExtraction, "ocr.render_pdf",
			errors.New("pdftoppm produced no page images"))
	}

	var b strings.Builder
	for _, img := range pages {
		text, err := e.recognizeFile(ctx, img)
		if err != nil {
			return "", 0, err
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(text))
	}
	return b.String(), len(pages), nil
}

// RecognizeImage recognizes a single uploaded image. ext is the original
// filename extension, kept so the temp artifact has a plausible name.
func (e *Engine) RecognizeImage(ctx context.Context, content []byte, ext string) (string, error) {
	if err := e.WaitReady(ctx); err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "regdesk-ocr-*")
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr.recognize_image", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("ocr_tmp_cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	if ext == "" {
		ext = ".png"
	}
	src := filepath.Join(tmpDir, "input"+strings.ToLower(ext))
	if err := os.WriteFile(src, content, 0o600); err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr.recognize_image", err)
	}

	text, err := e.recognizeFile(ctx, src)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e *Engine) recognizeFile(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.Language)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr.tesseract",
			fmt.Errorf("%w: %s", err, truncate(string(stderr), 512)))
	}
	return string(out), nil
}

// Package ocr recognises text on scanned PDF pages using the external
// tesseract and pdftoppm binaries.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
)

// Ensure Tesseract implements the interface.
var _ driven.Recognizer = (*Tesseract)(nil)

// renderDPI balances recognition quality against render time.
const renderDPI = 300

// Tesseract shells out to pdftoppm to rasterise one page and to
// tesseract to recognise it. Both binaries must be on PATH.
type Tesseract struct {
	lang string
}

// NewTesseract creates a recognizer with the given language hint
// (e.g. "por", "eng").
func NewTesseract(lang string) *Tesseract {
	return &Tesseract{lang: lang}
}

// Available reports whether the external binaries can be found.
func (t *Tesseract) Available() bool {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return false
	}
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return false
	}
	return true
}

// Recognize renders the 1-based page to a temp image and runs
// tesseract over it.
func (t *Tesseract) Recognize(ctx context.Context, path string, page int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("invalid page %d", page)
	}

	tmpDir, err := os.MkdirTemp("", "pdfdex-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	image, err := t.renderPage(ctx, path, page, tmpDir)
	if err != nil {
		return "", err
	}

	return t.recognizeImage(ctx, image)
}

// renderPage rasterises a single page with pdftoppm and returns the
// path of the produced PNG.
func (t *Tesseract) renderPage(ctx context.Context, path string, page int, tmpDir string) (string, error) {
	prefix := filepath.Join(tmpDir, "page")
	pageArg := strconv.Itoa(page)

	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-f", pageArg, "-l", pageArg,
		"-r", strconv.Itoa(renderDPI),
		"-png", "-singlefile",
		path, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm page %d of %s: %w (%s)", page, path, err, strings.TrimSpace(stderr.String()))
	}
	return prefix + ".png", nil
}

// recognizeImage runs tesseract over the image, writing to stdout.
func (t *Tesseract) recognizeImage(ctx context.Context, image string) (string, error) {
	args := []string{image, "stdout"}
	if t.lang != "" {
		args = append(args, "-l", t.lang)
	}

	cmd := exec.CommandContext(ctx, "tesseract", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract on %s: %w (%s)", image, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
)

// Ensure PopplerRenderer implements the interface.
var _ driven.PageRenderer = (*PopplerRenderer)(nil)

// Rendering at a modest resolution is enough for a 200px thumbnail.
const rendererDPI = 72

// PopplerRenderer rasterises the first page of a PDF with the external
// pdftoppm binary.
type PopplerRenderer struct{}

// NewPopplerRenderer creates a renderer backed by pdftoppm.
func NewPopplerRenderer() *PopplerRenderer {
	return &PopplerRenderer{}
}

// Available reports whether pdftoppm can be found on PATH.
func (r *PopplerRenderer) Available() bool {
	_, err := exec.LookPath("pdftoppm")
	return err == nil
}

// RenderFirstPage rasterises page 1 to a temp PNG and decodes it.
func (r *PopplerRenderer) RenderFirstPage(ctx context.Context, path string) (image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "pdfdex-thumb-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-f", "1", "-l", "1",
		"-r", fmt.Sprintf("%d", rendererDPI),
		"-png", "-singlefile",
		path, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm first page of %s: %w (%s)", path, err, strings.TrimSpace(stderr.String()))
	}

	img, err := imaging.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("decoding rendered page: %w", err)
	}
	return img, nil
}

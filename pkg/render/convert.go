package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	wferrors "github.com/matzehuels/waterfall/pkg/errors"
)

// converter is the external tool used for SVG conversion.
var converter = "rsvg-convert"

// ErrConverterMissing is returned when rsvg-convert is not on PATH.
var ErrConverterMissing = wferrors.New(wferrors.ErrCodeUnsupported,
	"PNG and PDF export require librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")

// Available reports whether SVG conversion is possible on this host.
func Available() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

// ToPDF converts SVG bytes to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts SVG bytes to PNG. A scale of 2 doubles the resolution.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func convert(ctx context.Context, svg []byte, format string, extra ...string) ([]byte, error) {
	if !Available() {
		return nil, ErrConverterMissing
	}

	args := append([]string{"-f", format}, extra...)
	cmd := exec.CommandContext(ctx, converter, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, wferrors.Wrap(wferrors.ErrCodeInternal, err,
			"%s conversion failed: %s", format, bytes.TrimSpace(stderr.Bytes()))
	}
	return out.Bytes(), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pdiddy/textcompile/internal/container"
	"github.com/pdiddy/textcompile/pkg/types"
)

const (
	defaultTesseract = "tesseract"
	defaultLang      = "eng"
	defaultOCRImage  = "tesseractshadow/tesseract4re:latest"
)

// runner lets tests stub external commands.
type runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// Tesseract runs the host tesseract binary.
type Tesseract struct {
	bin    string
	lang   string
	runner runner
}

// NewTesseract returns an OCR engine backed by the tesseract binary.
func NewTesseract(cfg types.OCRConfig) *Tesseract {
	bin := cfg.Tesseract
	if bin == "" {
		bin = defaultTesseract
	}
	lang := cfg.Lang
	if lang == "" {
		lang = defaultLang
	}
	return &Tesseract{bin: bin, lang: lang, runner: execRunner{}}
}

// Recognize runs `tesseract <path> stdout -l <lang>`.
func (t *Tesseract) Recognize(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	out, errb, err := t.runner.Run(ctx, t.bin, path, "stdout", "-l", t.lang)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

// ContainerOCR pipes images through tesseract running in a container.
type ContainerOCR struct {
	runtime container.Runtime
	image   string
	lang    string
}

// NewContainerOCR checks that the tesseract image exists in rt before
// returning.
func NewContainerOCR(ctx context.Context, rt container.Runtime, cfg types.OCRConfig) (*ContainerOCR, error) {
	image := cfg.Image
	if image == "" {
		image = defaultOCRImage
	}
	lang := cfg.Lang
	if lang == "" {
		lang = defaultLang
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("OCR image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerOCR{runtime: rt, image: image, lang: lang}, nil
}

// Recognize streams the image into `tesseract stdin stdout -l <lang>`.
func (c *ContainerOCR) Recognize(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, []string{"tesseract", "stdin", "stdout", "-l", c.lang}, f, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// NewOCR builds the OCR engine selected by cfg.Backend.
func NewOCR(ctx context.Context, cfg types.OCRConfig) (OCR, error) {
	switch cfg.Backend {
	case "", types.OCRTesseract:
		return NewTesseract(cfg), nil
	case types.OCRContainer:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewContainerOCR(ctx, rt, cfg)
	default:
		return nil, fmt.Errorf("unknown OCR backend %q (use tesseract or container)", cfg.Backend)
	}
}

package optimizer

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"club-la-victoria/internal/common/logger"

	"github.com/disintegration/imaging"
)

// Encoder writes img in the derived format.
type Encoder interface {
	Encode(w io.Writer, img image.Image, quality int) error
}

type Executor struct {
	encoder Encoder
	logger  logger.Logger
}

func NewExecutor(encoder Encoder, log logger.Logger) *Executor {
	return &Executor{encoder: encoder, logger: log}
}

// Execute converts one task. It never returns an error: every failure is a
// Failed result and the derived file is left untouched.
func (e *Executor) Execute(ctx context.Context, task *Task) Result {
	if err := ctx.Err(); err != nil {
		return failed(task, err.Error())
	}

	srcInfo, err := os.Stat(task.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return skipped(task, ReasonSourceMissing)
		}
		return failed(task, err.Error())
	}
	if !srcInfo.Mode().IsRegular() {
		return failed(task, "source is not a regular file")
	}

	if dstInfo, err := os.Stat(task.DerivedPath); err == nil {
		if dstInfo.IsDir() {
			return failed(task, "derived path is a directory")
		}
		if !dstInfo.ModTime().Before(srcInfo.ModTime()) {
			return skipped(task, ReasonAlreadyFresh)
		}
	}

	width, err := e.convert(task)
	if err != nil {
		e.logger.Debug("image conversion failed", map[string]interface{}{
			"source": task.SourcePath,
			"error":  err.Error(),
		})
		return failed(task, err.Error())
	}

	dstInfo, err := os.Stat(task.DerivedPath)
	if err != nil {
		return failed(task, err.Error())
	}
	return optimized(task, srcInfo.Size(), dstInfo.Size(), width)
}

func (e *Executor) convert(task *Task) (int, error) {
	img, err := imaging.Open(task.SourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	if img.Bounds().Dx() > task.TargetWidth {
		img = imaging.Resize(img, task.TargetWidth, 0, imaging.Lanczos)
	}

	if err := writeAtomic(task.DerivedPath, func(w io.Writer) error {
		return e.encoder.Encode(w, img, task.Quality)
	}); err != nil {
		return 0, err
	}
	return img.Bounds().Dx(), nil
}

// writeAtomic writes to a temp file beside path and renames it into place.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err = write(buf); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

package capture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Mingwen111/3d-car-viewer/internal/logger"
)

// Sink stores an encoded capture. write produces the file contents; Save
// returns where they ended up.
type Sink interface {
	Save(name string, write func(io.Writer) error) (string, error)
}

// DirSink writes captures under Dir with their fixed names. Files are
// written to a temporary name first so a failed encode never leaves a
// truncated capture behind.
type DirSink struct {
	Dir string
}

// Save implements Sink.
func (s DirSink) Save(name string, write func(io.Writer) error) (string, error) {
	return writeAtomic(filepath.Join(s.Dir, name), write)
}

func writeAtomic(path string, write func(io.Writer) error) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("moving file into place: %w", err)
	}
	return path, nil
}

// SaveResult reports the outcome of an asynchronous DialogSink save.
type SaveResult struct {
	Name string
	Path string
	Err  error
}

// DialogSink asks the user where to save with a native dialog. The dialog
// blocks, so it runs on its own goroutine: Save encodes into memory,
// returns an empty path, and the outcome arrives later on Results. When
// the dialog is cancelled or fails, the capture goes to Fallback.
type DialogSink struct {
	Fallback Sink
	Results  chan SaveResult

	// ask shows the dialog; replaced in tests.
	ask func(name string) (string, error)
}

// NewDialogSink creates a dialog sink backed by fallback.
func NewDialogSink(fallback Sink) *DialogSink {
	return &DialogSink{
		Fallback: fallback,
		Results:  make(chan SaveResult, 4),
		ask:      askSavePath,
	}
}

// Save implements Sink.
func (s *DialogSink) Save(name string, write func(io.Writer) error) (string, error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return "", err
	}
	data := buf.Bytes()
	copyOut := func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}

	go func() {
		res := SaveResult{Name: name}
		path, err := s.ask(name)
		switch {
		case err == nil:
			res.Path, res.Err = writeAtomic(path, copyOut)
		default:
			if !errors.Is(err, dialog.ErrCancelled) {
				logger.Warn("save dialog failed", zap.Error(err))
			}
			res.Path, res.Err = s.Fallback.Save(name, copyOut)
		}
		s.Results <- res
	}()
	return "", nil
}

func askSavePath(name string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	path, err := dialog.File().
		Filter(strings.ToUpper(ext)+" image", ext).
		Title("Save " + name).
		SetStartFile(name).
		Save()
	if err != nil {
		return "", err
	}
	if filepath.Ext(path) == "" {
		path += "." + ext
	}
	return path, nil
}

package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const maxLineBytes = 16 << 20

// jsonlWriter writes one JSON object per line. The file is truncated on
// open and owned by the run until Close.
type jsonlWriter struct {
	path string
	f    *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
	n    int
}

func createJSONL(path string) (*jsonlWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "pipeline: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: create %s", path)
	}
	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &jsonlWriter{path: path, f: f, buf: buf, enc: enc}, nil
}

// Write encodes v followed by a newline.
func (w *jsonlWriter) Write(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", w.path)
	}
	w.n++
	return nil
}

// Count returns the number of lines written.
func (w *jsonlWriter) Count() int { return w.n }

func (w *jsonlWriter) Close() error {
	flushErr := w.buf.Flush()
	closeErr := w.f.Close()
	if flushErr != nil {
		return eris.Wrapf(flushErr, "pipeline: flush %s", w.path)
	}
	return eris.Wrapf(closeErr, "pipeline: close %s", w.path)
}

// readJSONL decodes each non-blank line of path into a T and passes it to fn.
// Lines that do not decode are logged and skipped.
func readJSONL[T any](path string, fn func(T) error) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			zap.L().Warn("pipeline: skipping malformed line",
				zap.String("path", path),
				zap.Int("line", line),
				zap.Error(err),
			)
			continue
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return eris.Wrapf(sc.Err(), "pipeline: read %s", path)
}

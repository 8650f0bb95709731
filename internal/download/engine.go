// Package download transfers single files into the local mirror.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"canvas-sync/internal/domain"
	"canvas-sync/internal/httpx"
	"canvas-sync/internal/logging"
	"canvas-sync/internal/report"
	"canvas-sync/internal/slug"
)

const DefaultChunkSize = 4096

var (
	ErrInvalidPath = errors.New("download: invalid path")
	ErrUnnamed     = errors.New("download: no file name could be derived")
	ErrTransport   = errors.New("download: transport failure")
)

// Request is one file to fetch. An empty Name means the name is read from the
// response's Content-Disposition header.
type Request struct {
	URL  string
	Dir  string
	Name string
}

// Engine downloads files, skipping those already present.
// It is safe for concurrent use; two fetches of the same target never both write it.
type Engine struct {
	HTTP      *http.Client
	Reporter  report.Reporter
	Log       logging.Logger
	ChunkSize int

	locks pathLocks
}

func NewEngine(client *http.Client, rep report.Reporter, log logging.Logger) *Engine {
	if client == nil {
		client = &http.Client{Timeout: 0} // transfers may run long; ctx bounds them
	}
	if rep == nil {
		rep = report.Nop
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{HTTP: client, Reporter: rep, Log: log, ChunkSize: DefaultChunkSize}
}

// Fetch syncs one file and returns its outcome. Errors never escape as Go errors;
// they come back as Failed outcomes so the caller can move on to the next file.
func (e *Engine) Fetch(ctx context.Context, req Request, rep report.Reporter) domain.Outcome {
	if rep == nil {
		rep = e.Reporter
	}

	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return e.fail(ctx, rep, displayName(req), req.Dir, domain.ReasonInvalidPath, fmt.Errorf("%w: %v", ErrInvalidPath, err))
	}

	if req.Name != "" {
		target, err := targetPath(req.Dir, req.Name)
		if err != nil {
			return e.fail(ctx, rep, req.Name, "", domain.ReasonUnnamed, err)
		}
		unlock := e.locks.lock(target)
		defer unlock()

		if exists(target) {
			rep.Report(report.Event{Kind: report.Skipped, Name: req.Name})
			return domain.Skipped(req.Name, target)
		}

		resp, err := e.get(ctx, req.URL)
		if err != nil {
			return e.fail(ctx, rep, req.Name, target, domain.ReasonTransport, err)
		}
		defer resp.Body.Close()
		return e.write(ctx, rep, resp, req.Name, target)
	}

	// Name only known from the response: transfer first, check existence before any byte lands.
	resp, err := e.get(ctx, req.URL)
	if err != nil {
		return e.fail(ctx, rep, req.URL, "", domain.ReasonTransport, err)
	}
	defer resp.Body.Close()

	name := NameFromDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		return e.fail(ctx, rep, req.URL, "", domain.ReasonUnnamed, ErrUnnamed)
	}
	target, err := targetPath(req.Dir, name)
	if err != nil {
		return e.fail(ctx, rep, name, "", domain.ReasonUnnamed, err)
	}

	unlock := e.locks.lock(target)
	defer unlock()

	if exists(target) {
		rep.Report(report.Event{Kind: report.Skipped, Name: name})
		return domain.Skipped(name, target)
	}
	return e.write(ctx, rep, resp, name, target)
}

func (e *Engine) get(ctx context.Context, rawURL string) (*http.Response, error) {
	resp, err := httpx.Stream(ctx, e.HTTP, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

// write streams the body into a temporary sibling and renames it onto target,
// so an interrupted transfer never leaves a file that a rerun would skip.
func (e *Engine) write(ctx context.Context, rep report.Reporter, resp *http.Response, name, target string) domain.Outcome {
	start := time.Now()
	tmp := fmt.Sprintf("%s.%s.part", target, uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return e.fail(ctx, rep, name, target, domain.ReasonInvalidPath, fmt.Errorf("%w: %v", ErrInvalidPath, err))
	}

	wire := &countingReader{r: resp.Body}
	body, err := httpx.DecodeReader(resp.Header.Get("Content-Encoding"), wire)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return e.fail(ctx, rep, name, target, domain.ReasonTransport, fmt.Errorf("%w: %v", ErrTransport, err))
	}

	var n int64
	var copyErr error
	if total := resp.ContentLength; total > 0 {
		n, copyErr = e.copyWithProgress(rep, f, body, wire, total, name)
	} else {
		rep.Report(report.Event{Kind: report.Progress, Name: name, Percent: report.Indeterminate})
		n, copyErr = io.Copy(f, body)
	}

	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp)
		var werr *writeError
		if errors.As(copyErr, &werr) || (copyErr == nil && closeErr != nil) {
			return e.fail(ctx, rep, name, target, domain.ReasonInvalidPath, fmt.Errorf("%w: %v", ErrInvalidPath, errors.Join(copyErr, closeErr)))
		}
		return e.fail(ctx, rep, name, target, domain.ReasonTransport, fmt.Errorf("%w: %v", ErrTransport, copyErr))
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return e.fail(ctx, rep, name, target, domain.ReasonInvalidPath, fmt.Errorf("%w: %v", ErrInvalidPath, err))
	}

	e.Log.Debug(ctx, "file downloaded", "name", name, "path", target, "bytes", n, "took", time.Since(start))
	rep.Report(report.Event{Kind: report.Complete, Name: name, Bytes: n})
	return domain.Downloaded(name, target, n)
}

// copyWithProgress writes body in fixed-size chunks and reports the integer
// percentage of wire bytes only when it grows. The last value reported is 100.
func (e *Engine) copyWithProgress(rep report.Reporter, w io.Writer, body io.Reader, wire *countingReader, total int64, name string) (int64, error) {
	size := e.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)

	var written int64
	last := -1
	for {
		nr, rerr := body.Read(buf)
		if nr > 0 {
			nw, werr := w.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, &writeError{werr}
			}
			if nw != nr {
				return written, &writeError{io.ErrShortWrite}
			}

			pct := int(wire.n * 100 / total)
			if pct > 100 {
				pct = 100
			}
			if pct > last {
				last = pct
				rep.Report(report.Event{Kind: report.Progress, Name: name, Percent: pct})
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, rerr
		}
	}
	if last < 100 {
		rep.Report(report.Event{Kind: report.Progress, Name: name, Percent: 100})
	}
	return written, nil
}

func (e *Engine) fail(ctx context.Context, rep report.Reporter, name, path string, reason domain.Reason, err error) domain.Outcome {
	e.Log.Warn(ctx, "file sync failed", "name", name, "path", path, "reason", string(reason), "err", err)
	rep.Report(report.Event{Kind: report.Error, Name: name, Message: failMessage(reason)})
	return domain.Failed(name, path, reason, err)
}

func failMessage(reason domain.Reason) string {
	switch reason {
	case domain.ReasonInvalidPath:
		return "invalid path"
	case domain.ReasonUnnamed:
		return "no file name"
	default:
		return "download failed"
	}
}

// targetPath resolves name into a file path under dir.
func targetPath(dir, name string) (string, error) {
	seg := slug.Segment(name)
	if seg == "" || seg == "." || seg == ".." {
		return "", fmt.Errorf("%w: %q resolves to an empty name", ErrUnnamed, name)
	}
	return filepath.Join(dir, seg), nil
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

func displayName(req Request) string {
	if req.Name != "" {
		return req.Name
	}
	return req.URL
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type writeError struct{ err error }

func (w *writeError) Error() string { return w.err.Error() }
func (w *writeError) Unwrap() error { return w.err }

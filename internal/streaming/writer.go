package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var (
	// ErrWriteTimeout is returned when a single chunk could not be written
	// before the write deadline.
	ErrWriteTimeout = errors.New("write timeout: client not receiving data")

	// ErrClientGone is returned when the request context ends mid-transfer.
	ErrClientGone = errors.New("client disconnected")
)

// Config bounds a single book transfer.
type Config struct {
	// WriteTimeout is the deadline applied to each chunk write.
	WriteTimeout time.Duration

	// ChunkSize is the read buffer size; each chunk is flushed separately.
	ChunkSize int

	// OnProgress is called after every flushed chunk with the running total.
	OnProgress func(written int64)
}

// DefaultConfig returns the settings used for book downloads.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// Result describes a finished transfer, successful or not.
type Result struct {
	Bytes    int64
	Duration time.Duration
}

// Copy streams src to w chunk by chunk. Each write gets its own deadline when
// the underlying connection supports one, so a stalled reader cannot pin the
// handler after the server's WriteTimeout has been disabled.
func Copy(ctx context.Context, w http.ResponseWriter, src io.Reader, cfg Config) (Result, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultConfig().ChunkSize
	}

	rc := http.NewResponseController(w)
	buf := make([]byte, cfg.ChunkSize)
	start := time.Now()
	var res Result

	defer func() {
		// Clear the deadline so keep-alive requests on this connection start fresh.
		_ = rc.SetWriteDeadline(time.Time{})
	}()

	for {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, contextError(err)
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if cfg.WriteTimeout > 0 {
				if err := rc.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
					res.Duration = time.Since(start)
					return res, fmt.Errorf("setting write deadline: %w", err)
				}
			}

			m, err := w.Write(buf[:n])
			res.Bytes += int64(m)
			if err != nil {
				res.Duration = time.Since(start)
				if errors.Is(err, os.ErrDeadlineExceeded) {
					return res, ErrWriteTimeout
				}
				return res, err
			}

			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				res.Duration = time.Since(start)
				return res, err
			}

			if cfg.OnProgress != nil {
				cfg.OnProgress(res.Bytes)
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("reading book: %w", readErr)
		}
	}

	res.Duration = time.Since(start)
	return res, nil
}

func contextError(err error) error {
	if errors.Is(err, context.Canceled) {
		return ErrClientGone
	}
	return err
}

// Outcome classifies a Copy error into a short label for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "complete"
	case errors.Is(err, ErrClientGone):
		return "client_gone"
	case errors.Is(err, ErrWriteTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

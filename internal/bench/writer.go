package bench

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// TrialLog appends trial records to a zstd-compressed JSONL file, one
// object per line.
type TrialLog struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// OpenTrialLog opens the log file for appending.
func OpenTrialLog(path string) (*TrialLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trial log: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &TrialLog{
		f:   f,
		enc: enc,
		w:   bufio.NewWriter(enc),
	}, nil
}

// Write appends one record.
func (l *TrialLog) Write(v any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	return l.w.WriteByte('\n')
}

// Close flushes and closes the log.
func (l *TrialLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.w.Flush(); err != nil {
		return err
	}
	if err := l.enc.Close(); err != nil {
		return err
	}
	return l.f.Close()
}

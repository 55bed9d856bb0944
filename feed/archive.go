// Package feed replicates combat events to external consumers: a
// websocket broadcast server for live viewers and a compressed JSONL
// archive for replay.
package feed

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/types"
)

// Archive appends wire-encoded events to hourly-rotated zstd-compressed
// JSONL files. It implements bus.Listener so it can subscribe directly.
type Archive struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	dropped int
}

// NewArchive creates an archive writing under baseDir. Files are named
// <prefix>-<yyyy-mm-dd-hh>.jsonl.zst.
func NewArchive(baseDir, prefix string) *Archive {
	return &Archive{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

// HandleEvent encodes and appends one event. Write failures are counted,
// never propagated to the bus.
func (a *Archive) HandleEvent(e types.CombatEvent) {
	if err := a.Write(e); err != nil {
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
	}
}

// Dropped returns the number of events lost to write failures.
func (a *Archive) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Write appends one event as a wire-encoded JSONL line.
func (a *Archive) Write(e types.CombatEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != a.curHour {
		if err := a.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := bus.Encode(e)
	if err != nil {
		return err
	}
	if _, err := a.w.Write(b); err != nil {
		return err
	}
	if err := a.w.WriteByte('\n'); err != nil {
		return err
	}
	return a.w.Flush()
}

// Close flushes and closes the current file.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closeLocked()
}

func (a *Archive) rotateLocked(hour string) error {
	if err := a.closeLocked(); err != nil {
		return err
	}
	path := a.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	a.f = f
	a.enc = enc
	a.w = bufio.NewWriterSize(enc, 128*1024)
	a.curHour = hour
	return nil
}

func (a *Archive) closeLocked() error {
	var err1 error
	if a.w != nil {
		_ = a.w.Flush()
	}
	if a.enc != nil {
		err1 = a.enc.Close()
		a.enc = nil
	}
	if a.f != nil {
		_ = a.f.Close()
		a.f = nil
	}
	a.w = nil
	return err1
}

func (a *Archive) pathForHour(hour string) string {
	return filepath.Join(a.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", a.prefix, hour))
}

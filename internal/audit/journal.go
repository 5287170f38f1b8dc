// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// Package audit keeps a local journal of sign-in attempts, one JSON object
// per line. When the journal grows past its size limit it is rotated and
// the rotated file compressed with zstd.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/pverkade/signon/internal/logging"
)

// DefaultMaxSizeKB bounds the live journal file when the config does not
// set a limit.
const DefaultMaxSizeKB = 512

// Entry is one journal line. Status is the HTTP status of the reply, zero
// when the request never produced one.
type Entry struct {
	Time     time.Time `json:"time"`
	TraceID  string    `json:"trace_id"`
	Username string    `json:"username"`
	Attempt  int       `json:"attempt"`
	Outcome  string    `json:"outcome"`
	Status   int       `json:"status,omitempty"`
}

// Journal appends entries to a single file and rotates it by size.
type Journal struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	f       *os.File
	size    int64
}

// Open creates or opens the journal at path. maxSizeKB caps the live file;
// values <= 0 fall back to DefaultMaxSizeKB.
func Open(path string, maxSizeKB int) (*Journal, error) {
	if maxSizeKB <= 0 {
		maxSizeKB = DefaultMaxSizeKB
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat journal: %w", err)
	}
	return &Journal{
		path:    path,
		maxSize: int64(maxSizeKB) * 1024,
		f:       f,
		size:    info.Size(),
	}, nil
}

// Record appends e to the journal, rotating first when the line would push
// the file past its size limit.
func (j *Journal) Record(e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return errors.New("journal is closed")
	}
	if j.size > 0 && j.size+int64(len(line)) > j.maxSize {
		if err := j.rotateLocked(); err != nil {
			return err
		}
	}
	n, err := j.f.Write(line)
	j.size += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return nil
}

// Close flushes and closes the journal file. Further Record calls fail.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return nil
	}
	err := j.f.Close()
	j.f = nil
	return err
}

// rotateLocked archives the live file under a timestamped name, compresses
// the archive, and reopens a fresh journal. Callers hold j.mu.
func (j *Journal) rotateLocked() error {
	if err := j.f.Close(); err != nil {
		return fmt.Errorf("failed to close journal for rotation: %w", err)
	}
	j.f = nil

	stamp := time.Now().UTC().Format("20060102T150405.000000000Z")
	archived := fmt.Sprintf("%s.%s", j.path, stamp)
	if err := os.Rename(j.path, archived); err != nil {
		return fmt.Errorf("failed to archive journal: %w", err)
	}
	if err := compressFile(archived); err != nil {
		// Keep the plain archive rather than lose entries.
		logging.Warnf("audit: compression of %s failed: %v", archived, err)
	} else if err := os.Remove(archived); err != nil {
		logging.Warnf("audit: could not remove archived journal %s: %v", archived, err)
	}

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to reopen journal after rotation: %w", err)
	}
	j.f = f
	j.size = 0
	return nil
}

// compressFile writes src to src.zst using zstd.
func compressFile(src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(src+".zst", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(out)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := io.Copy(zw, in); err != nil {
		_ = zw.Close()
		_ = out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

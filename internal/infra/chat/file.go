package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"stephbot/internal/domain"
)

// FileSource polls a drop directory for utterances: .txt files become
// text turns, anything else is treated as audio for transcription.
// Files are processed once, oldest name first.
type FileSource struct {
	dir       string
	mu        sync.Mutex
	processed map[string]bool
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:       dir,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating drop dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextUtterance(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		if data, ok, err := f.scanOnce(); err != nil {
			return nil, err
		} else if ok {
			return data, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (f *FileSource) scanOnce() ([]byte, bool, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, false, fmt.Errorf("reading drop dir: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, entry := range entries {
		if entry.IsDir() || f.processed[entry.Name()] {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		f.processed[entry.Name()] = true

		if strings.HasSuffix(entry.Name(), ".txt") {
			text := strings.TrimSpace(string(data))
			if text == "" {
				continue
			}
			return []byte(domain.TextUtterancePrefix + text), true, nil
		}
		if len(data) == 0 {
			continue
		}
		return data, true, nil
	}

	return nil, false, nil
}

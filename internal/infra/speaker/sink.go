package speaker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileSink writes each utterance's audio to its own mp3 under dir,
// where a player or the serving layer can pick it up.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (f *FileSink) Play(_ context.Context, audio []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	name := fmt.Sprintf("speech-%d.mp3", time.Now().UnixNano())
	if err := os.WriteFile(filepath.Join(f.dir, name), audio, 0644); err != nil {
		return fmt.Errorf("writing audio: %w", err)
	}
	return nil
}

// DiscardSink drops audio; useful in tests and headless setups.
type DiscardSink struct{}

func (DiscardSink) Play(_ context.Context, _ []byte) error {
	return nil
}

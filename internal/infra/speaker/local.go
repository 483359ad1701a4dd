package speaker

import (
	"context"
	"fmt"
	"os/exec"
)

// LocalSynth speaks through an external synthesizer binary. It is the
// fallback when the TTS proxy or provider is unavailable, standing in
// for the browser's built-in speech synthesis.
type LocalSynth struct {
	command string
	args    []string
}

func NewLocalSynth(command string, args ...string) *LocalSynth {
	if command == "" {
		command = "espeak"
	}
	return &LocalSynth{command: command, args: args}
}

func (l *LocalSynth) Speak(ctx context.Context, text string) error {
	args := append(append([]string{}, l.args...), text)
	cmd := exec.CommandContext(ctx, l.command, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", l.command, err)
	}
	return nil
}

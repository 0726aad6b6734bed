package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/graphmap/pkg/observability"
	"github.com/matzehuels/graphmap/pkg/pipeline"
)

// spinnerFrames are drawn every spinnerInterval.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner draws a progress indicator on stderr until it is stopped or its
// context ends.
type Spinner struct {
	ctx    context.Context
	cancel context.CancelFunc
	w      io.Writer

	mu      sync.Mutex
	message string
	width   int // widest line drawn, for clearing

	once    sync.Once
	stopped chan struct{}
	started bool
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that stops when ctx ends.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		ctx:     ctx,
		cancel:  cancel,
		w:       os.Stderr,
		message: message,
		stopped: make(chan struct{}),
	}
}

// Start begins drawing. Calling it again has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	s.width = max(s.width, len(s.message)+2)
	fmt.Fprintf(s.w, "\r%s\033[K", line)
}

// Stop stops the spinner and clears its line. It is safe to call more than
// once, and before Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// SetMessage replaces the message shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Message returns the current message.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context has ended, either through
// Stop or through the parent context.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// stageMessages are the spinner messages shown while a pipeline stage runs.
var stageMessages = map[string]string{
	pipeline.StagePrepare:   "Preparing graph...",
	pipeline.StageLayout:    "Laying out clusters...",
	pipeline.StagePack:      "Packing clusters...",
	pipeline.StageCompose:   "Composing canvas...",
	pipeline.StagePartition: "Partitioning territories...",
	pipeline.StageColor:     "Coloring territories...",
}

// stageHooks shows the running pipeline stage on a spinner and forwards
// every event to the wrapped hooks.
type stageHooks struct {
	observability.PipelineHooks
	spinner *Spinner
}

func (h stageHooks) OnStageStart(ctx context.Context, stage string, size int) {
	if msg, ok := stageMessages[stage]; ok {
		h.spinner.SetMessage(fmt.Sprintf("%s (%d)", msg, size))
	}
	h.PipelineHooks.OnStageStart(ctx, stage, size)
}

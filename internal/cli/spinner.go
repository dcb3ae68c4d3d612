package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	spinnerFrames   = "⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏"
	spinnerInterval = 80 * time.Millisecond
)

// Spinner animates a one-line status on stderr while a pipeline stage
// runs. Cancelling the parent context clears the line and ends the
// animation; [Spinner.Stop] does the same on demand.
type Spinner struct {
	out    io.Writer
	msg    string
	parent context.Context

	started atomic.Bool
	quit    chan struct{}
	exited  chan struct{}
	once    sync.Once
}

func newSpinner(msg string) *Spinner {
	return newSpinnerWithContext(context.Background(), msg)
}

func newSpinnerWithContext(ctx context.Context, msg string) *Spinner {
	return &Spinner{
		out:    os.Stderr,
		msg:    msg,
		parent: ctx,
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// Start runs the animation in the background.
func (s *Spinner) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.exited)
	frames := []rune(spinnerFrames)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.parent.Done():
			s.clear()
			return
		case <-s.quit:
			return
		case <-tick.C:
			frame := string(frames[i%len(frames)])
			fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg))
		}
	}
}

// Stop ends the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	if s.started.Load() {
		<-s.exited
	}
	s.clear()
}

func (s *Spinner) clear() {
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len([]rune(s.msg))+2))
}

// StopWithSuccess stops and prints msg as a success line.
func (s *Spinner) StopWithSuccess(msg string) {
	s.Stop()
	printSuccess("%s", msg)
}

// StopWithError stops and prints msg as a failure line.
func (s *Spinner) StopWithError(msg string) {
	s.Stop()
	printError("%s", msg)
}

// Cancelled reports whether the parent context ended, as opposed to an
// explicit Stop.
func (s *Spinner) Cancelled() bool { return s.parent.Err() != nil }

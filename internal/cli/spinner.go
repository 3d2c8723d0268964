package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// searchSpinner animates a status line while a design is routed and drawn.
// Its Progress method is an ordering.ProgressFunc: once trials arrive the
// line shows explored/total orders and the best score so far, and switches
// to "drawing" after the last order.
type searchSpinner struct {
	w       io.Writer
	label   string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}

	mu        sync.Mutex
	started   bool
	explored  int
	total     int
	routed    int
	cost      int
	seen      bool
	lastWidth int
}

// newSearchSpinner creates a spinner writing to w that stops when ctx is
// cancelled.
func newSearchSpinner(ctx context.Context, w io.Writer, label string) *searchSpinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &searchSpinner{
		w:       w,
		label:   label,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Progress records a search step. Parallel trials may report out of order,
// so the explored count never goes backwards.
func (s *searchSpinner) Progress(explored, total, bestRouted, bestCost int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explored = max(s.explored, explored)
	s.total = total
	s.routed, s.cost = bestRouted, bestCost
	s.seen = true
}

// status returns the current line text without the frame.
func (s *searchSpinner) status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seen {
		return s.label
	}
	if s.total > 0 && s.explored >= s.total {
		return fmt.Sprintf("%s %d orders searched, best %d routed at cost %d; drawing", s.label, s.total, s.routed, s.cost)
	}
	return fmt.Sprintf("%s %d/%d orders, best %d routed at cost %d", s.label, s.explored, s.total, s.routed, s.cost)
}

// Start begins the animation. Calling Start twice has no effect.
func (s *searchSpinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *searchSpinner) draw(frame string) {
	text := s.status()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(text)

	s.mu.Lock()
	defer s.mu.Unlock()
	pad := max(s.lastWidth-lipgloss.Width(line), 0)
	fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad))
	s.lastWidth = lipgloss.Width(line)
}

// Stop ends the animation and clears the line. It is safe to call more
// than once, and before Start.
func (s *searchSpinner) Stop() {
	s.cancel()
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	select {
	case <-s.done:
	default:
		close(s.done)
	}
	if started {
		<-s.stopped
	}
	s.clearLine()
}

func (s *searchSpinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastWidth == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.lastWidth))
	s.lastWidth = 0
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *searchSpinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess(s.w, "%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *searchSpinner) StopWithError(message string) {
	s.Stop()
	printError(s.w, "%s", message)
}

// Cancelled reports whether the parent context ended the spinner.
func (s *searchSpinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
		return s.ctx.Err() != nil
	}
}

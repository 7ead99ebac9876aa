// Package ui holds terminal feedback helpers shared by commands: a spinner
// for waits of unknown length and a progress bar for batches.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/pinvite/internal/ui/styles"
	"golang.org/x/term"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// animate reports whether w should get in-place redraws.
func animate(w io.Writer) bool {
	return !styles.IsAccessible() && isTerminal(w)
}

// Spinner provides a simple animated spinner for long operations
type Spinner struct {
	out     io.Writer
	message string
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(message string) *Spinner {
	return NewSpinnerTo(os.Stderr, message)
}

// NewSpinnerTo creates a spinner writing to w.
func NewSpinnerTo(w io.Writer, message string) *Spinner {
	return &Spinner{
		out:     w,
		message: message,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the spinner animation in the background. Without a terminal
// it prints the message once.
func (s *Spinner) Start() {
	if !animate(s.out) {
		fmt.Fprintln(s.out, s.message+"...")
		close(s.stopped)
		return
	}

	go func() {
		defer close(s.stopped)
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		style := lipgloss.NewStyle().Foreground(styles.Accent)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.done:
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprintf(s.out, "\r%s %s", style.Render(frames[i%len(frames)]), s.message)
			}
		}
	}()
}

// Stop stops the spinner and waits for the line to be cleared. It is safe
// to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	<-s.stopped
}

// Success stops the spinner and shows a success message
func (s *Spinner) Success(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, styles.SuccessMsg(msg))
}

// Error stops the spinner and shows an error message
func (s *Spinner) Error(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, styles.ErrorMsg(msg))
}

// Progress is a bar for batches of known size, such as mail delivery.
// Increment may be called from several goroutines.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	total   int
	current int
	failed  int
	label   string
	width   int
}

// NewProgress creates a progress bar writing to stderr.
func NewProgress(label string, total int) *Progress {
	return NewProgressTo(os.Stderr, label, total)
}

// NewProgressTo creates a progress bar writing to w.
func NewProgressTo(w io.Writer, label string, total int) *Progress {
	return &Progress{out: w, label: label, total: total, width: 30}
}

// Increment records one finished item. ok=false counts it as failed.
func (p *Progress) Increment(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	if !ok {
		p.failed++
	}
	p.render()
}

// Done finishes the progress bar
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if animate(p.out) {
		fmt.Fprintln(p.out)
	}
}

func (p *Progress) render() {
	if p.total <= 0 {
		return
	}
	if !animate(p.out) {
		// Print every 10% to avoid spam
		pct := p.current * 100 / p.total
		prev := (p.current - 1) * 100 / p.total
		if p.current == p.total || pct/10 != prev/10 {
			fmt.Fprintf(p.out, "%s: %d%% (%d of %d)\n", p.label, pct, p.current, p.total)
		}
		return
	}

	pct := float64(p.current) / float64(p.total)
	filled := int(pct * float64(p.width))
	bar := lipgloss.NewStyle().Foreground(styles.Success).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(styles.Muted).Render(strings.Repeat("░", p.width-filled))

	failed := ""
	if p.failed > 0 {
		failed = " " + styles.Errorf("%d failed", p.failed)
	}
	fmt.Fprintf(p.out, "\r%s %s %3d%% [%d/%d]%s", p.label, bar, int(pct*100), p.current, p.total, failed)
}

package progress

import (
	"strings"
	"sync"
	"time"

	"github.com/quicktok/quicktok/format"
)

var spinnerParts = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates while a blocking call such as training runs and shows
// the elapsed time.
type Spinner struct {
	mu sync.Mutex

	message string
	value   int

	started time.Time
	stopped time.Time
}

func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		started: time.Now(),
	}
}

func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// String renders the next frame. Each call advances the animation.
func (s *Spinner) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sb strings.Builder
	if message := strings.TrimSpace(s.message); message != "" {
		sb.WriteString(message)
		sb.WriteString(" ")
	}

	if s.stopped.IsZero() {
		sb.WriteString(spinnerParts[s.value])
		sb.WriteString(" ")
		sb.WriteString(format.Elapsed(time.Since(s.started).Truncate(100 * time.Millisecond)))
		s.value = (s.value + 1) % len(spinnerParts)
	} else {
		sb.WriteString(format.Elapsed(s.stopped.Sub(s.started)))
	}

	return sb.String()
}

func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped.IsZero() {
		s.stopped = time.Now()
	}
}

// Elapsed returns the time between start and Stop, or until now while the
// spinner is running.
func (s *Spinner) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped.IsZero() {
		return time.Since(s.started)
	}

	return s.stopped.Sub(s.started)
}

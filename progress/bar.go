package progress

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/quicktok/quicktok/format"
)

// Bar tracks a count of units such as learned merges against a known total.
type Bar struct {
	mu sync.Mutex

	message string
	unit    string

	maxValue     int
	currentValue int

	started time.Time
}

func NewBar(message, unit string, maxValue int) *Bar {
	return &Bar{
		message:  message,
		unit:     unit,
		maxValue: maxValue,
		started:  time.Now(),
	}
}

func (b *Bar) Set(value int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentValue = min(value, b.maxValue)
}

func (b *Bar) percent() float64 {
	if b.maxValue > 0 {
		return float64(b.currentValue) / float64(b.maxValue) * 100
	}

	return 0
}

// rate is units per second since the bar was created.
func (b *Bar) rate() float64 {
	elapsed := time.Since(b.started).Seconds()
	if elapsed <= 0 {
		return 0
	}

	return float64(b.currentValue) / elapsed
}

func (b *Bar) String() string {
	width, _ := termSize()
	return b.render(width)
}

func (b *Bar) render(termWidth int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var pre, mid, suf strings.Builder

	if message := strings.TrimSpace(b.message); message != "" {
		pre.WriteString(message)
		pre.WriteString(" ")
	}

	fmt.Fprintf(&pre, "%3.0f%% ", math.Floor(b.percent()))

	fmt.Fprintf(&suf, "(%s/%s %s", format.HumanNumber(b.currentValue), format.HumanNumber(b.maxValue), b.unit)
	if b.currentValue > 0 && b.currentValue < b.maxValue {
		fmt.Fprintf(&suf, ", %.0f/s", b.rate())
	}
	fmt.Fprintf(&suf, ") %s", format.Elapsed(time.Since(b.started).Truncate(time.Second)))

	// 2 boundary characters and 1 trailing space
	f := termWidth - pre.Len() - suf.Len() - 3
	if f > 0 {
		n := int(float64(f) * b.percent() / 100)
		mid.WriteString("▕")
		mid.WriteString(strings.Repeat("█", n))
		mid.WriteString(strings.Repeat(" ", f-n))
		mid.WriteString("▏ ")
	}

	return pre.String() + mid.String() + suf.String()
}

package output

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/avinashk/batchrun/internal/util"
)

const progressBarWidth = 25

// ProgressBar renders human-readable progress lines, one per task
// completion. Its Update method satisfies the runner.ProgressFunc contract.
type ProgressBar struct {
	mu     sync.Mutex
	w      io.Writer
	name   string
	colors *ColorScheme
}

// NewProgressBar creates a progress renderer writing to w.
func NewProgressBar(w io.Writer, name string, noColor bool) *ProgressBar {
	return &ProgressBar{
		w:      w,
		name:   name,
		colors: NewColorScheme(w, noColor),
	}
}

// Update renders one progress line. Safe for use from the coordinator
// goroutine on every task completion.
func (p *ProgressBar) Update(completed, total int, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s progress: %s in %s\n", p.name, p.line(completed, total), util.Elapsed(elapsed))
}

// line renders "[#####....] 3/10 [30.0%]".
func (p *ProgressBar) line(completed, total int) string {
	percent := 0.0
	if total > 0 {
		percent = float64(completed) / float64(total) * 100
	}
	filled := int(math.Round(percent / 100 * progressBarWidth))
	if filled > progressBarWidth {
		filled = progressBarWidth
	}

	bar := strings.Repeat("#", filled) + strings.Repeat(".", progressBarWidth-filled)
	if !p.colors.Disabled {
		bar = p.colors.Success(bar)
	}

	return fmt.Sprintf("[%s] %d/%d [%.1f%%]", bar, completed, total, percent)
}

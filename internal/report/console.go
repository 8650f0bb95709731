package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	ansiReset   = "\033[0m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiInverse = "\033[30;47m"
)

// Console renders events as indented, optionally colored lines.
// With Live set, progress rewrites the current line with '\r'; otherwise only
// the final line of each transfer is printed.
type Console struct {
	W     io.Writer
	Color bool
	Live  bool

	mu      sync.Mutex
	partial bool // a '\r' progress line is open
}

func NewConsole(w io.Writer, color, live bool) *Console {
	return &Console{W: w, Color: color, Live: live}
}

func (c *Console) Report(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e.Kind {
	case GroupStarted:
		c.line(ansiInverse, 0, e.Course)
	case ItemFound:
		c.line("", 1, fmt.Sprintf("[%s] %s", itemTag(e.ItemKind), e.Name))
	case Progress:
		if !c.Live {
			return
		}
		text := fmt.Sprintf("%3d%% | %s", e.Percent, e.Name)
		if e.Percent == Indeterminate {
			text = fmt.Sprintf(" ... | %s", e.Name)
		}
		fmt.Fprint(c.W, "\r"+c.paint(ansiGreen, pad(2)+text))
		c.partial = true
	case Complete:
		c.line(ansiGreen, 2, fmt.Sprintf("100%% | %s (%s)", e.Name, HumanBytes(e.Bytes)))
	case Skipped:
		c.line(ansiYellow, 2, e.Name)
	case Error:
		msg := "error: " + e.Message
		if e.Name != "" {
			msg += " | " + e.Name
		}
		c.line(ansiRed, 2, msg)
	}
}

func (c *Console) line(color string, indent int, text string) {
	prefix := ""
	if c.partial {
		prefix = "\r"
		c.partial = false
	}
	fmt.Fprintln(c.W, prefix+c.paint(color, pad(indent)+text))
}

func (c *Console) paint(color, s string) string {
	if !c.Color || color == "" {
		return s
	}
	return color + s + ansiReset
}

func pad(n int) string { return strings.Repeat(" ", n) }

func itemTag(kind string) string {
	switch kind {
	case "folder":
		return "F"
	case "module":
		return "M"
	default:
		return "?"
	}
}

// HumanBytes formats n with binary units, e.g. "1.5 KiB".
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

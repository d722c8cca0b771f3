package logging

import (
	"strings"
	"sync"
)

// captureSize is how many recent server log lines are kept in memory.
const captureSize = 64

// LogCapture keeps the most recent log lines in a ring.
type LogCapture struct {
	mu    sync.RWMutex
	lines []string
	next  int
	full  bool
}

// NewLogCapture creates a capture holding up to size lines.
func NewLogCapture(size int) *LogCapture {
	if size < 1 {
		size = 1
	}
	return &LogCapture{lines: make([]string, size)}
}

// GlobalLogCapture receives INFO+ server logs once Init has run.
var GlobalLogCapture = NewLogCapture(captureSize)

// Write implements io.Writer. Each non-empty line of p becomes one entry.
func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range strings.Split(string(p), "\n") {
		if line == "" {
			continue
		}
		c.lines[c.next] = line
		c.next = (c.next + 1) % len(c.lines)
		if c.next == 0 {
			c.full = true
		}
	}
	return len(p), nil
}

// Last returns the most recent line, or "" if nothing was logged yet.
func (c *LogCapture) Last() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.full && c.next == 0 {
		return ""
	}
	return c.lines[(c.next-1+len(c.lines))%len(c.lines)]
}

// Recent returns up to n lines, oldest first.
func (c *LogCapture) Recent(n int) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := c.next
	if c.full {
		count = len(c.lines)
	}
	if n <= 0 || n > count {
		n = count
	}

	out := make([]string, 0, n)
	start := (c.next - n + len(c.lines)) % len(c.lines)
	for i := 0; i < n; i++ {
		out = append(out, c.lines[(start+i)%len(c.lines)])
	}
	return out
}

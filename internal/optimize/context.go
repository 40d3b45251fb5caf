package optimize

import (
	"sort"
	"sync"

	"github.com/orizon-lang/astopt/internal/position"
)

// Entry records one applied rewrite. Entries are immutable once recorded.
type Entry struct {
	PassID      string
	Description string
	File        string
	Span        position.Span
	Before      string
	After       string
}

// StringLiteralInfo tracks one string literal across every file of a run.
type StringLiteralInfo struct {
	Content   string
	Name      string
	Count     int
	FirstFile string
}

// Context is the shared state of one optimization run: the change log,
// the cross-file string table and the structural fingerprinter.
type Context struct {
	mu sync.Mutex

	entries []Entry

	strings     map[string]*StringLiteralInfo
	stringOrder []string
	stringNames map[string]bool

	enabled     bool
	currentFile string

	fingerprints *Fingerprinter
	onRecord     func(Entry)
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{
		strings:      make(map[string]*StringLiteralInfo),
		stringNames:  make(map[string]bool),
		enabled:      true,
		fingerprints: NewFingerprinter(defaultFingerprintCacheSize),
	}
}

// Enabled reports the global switch as seen by this run.
func (c *Context) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *Context) setEnabled(v bool) {
	c.mu.Lock()
	c.enabled = v
	c.mu.Unlock()
}

// CurrentFile returns the path of the unit being transformed.
func (c *Context) CurrentFile() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentFile
}

// SetCurrentFile is called by the runner before each Transform.
func (c *Context) SetCurrentFile(path string) {
	c.mu.Lock()
	c.currentFile = path
	c.mu.Unlock()
}

// Fingerprints returns the run-scoped fingerprinter.
func (c *Context) Fingerprints() *Fingerprinter { return c.fingerprints }

// Record appends an entry for the current file.
func (c *Context) Record(passID, description string, span position.Span, before, after string) {
	c.mu.Lock()
	e := Entry{
		PassID:      passID,
		Description: description,
		File:        c.currentFile,
		Span:        span,
		Before:      Snippet(before),
		After:       Snippet(after),
	}
	c.entries = append(c.entries, e)
	hook := c.onRecord
	c.mu.Unlock()

	if hook != nil {
		hook(e)
	}
}

// mark returns a rollback point for the entry log.
func (c *Context) mark() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// rollback drops entries recorded since mark and the string counts they
// carried. Only the runner calls this.
func (c *Context) rollback(mark int, strings stringSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mark < len(c.entries) {
		c.entries = c.entries[:mark]
	}
	strings.restore(c)
}

// Count returns the total number of recorded entries.
func (c *Context) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CountsByPass returns the number of entries per pass id.
func (c *Context) CountsByPass() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range c.entries {
		counts[e.PassID]++
	}
	return counts
}

// Entries returns a copy of the log in recording order.
func (c *Context) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// EntriesForFile returns the entries recorded against path.
func (c *Context) EntriesForFile(path string) []Entry {
	return c.filter(func(e Entry) bool { return e.File == path })
}

// EntriesForPass returns the entries recorded by one pass.
func (c *Context) EntriesForPass(id string) []Entry {
	return c.filter(func(e Entry) bool { return e.PassID == id })
}

func (c *Context) filter(keep func(Entry) bool) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Entry
	for _, e := range c.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Files returns the distinct files that received entries, sorted.
func (c *Context) Files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]bool)
	var files []string
	for _, e := range c.entries {
		if !seen[e.File] {
			seen[e.File] = true
			files = append(files, e.File)
		}
	}
	sort.Strings(files)
	return files
}

// StringLiterals returns the string table in first-seen order.
func (c *Context) StringLiterals() []StringLiteralInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StringLiteralInfo, 0, len(c.stringOrder))
	for _, content := range c.stringOrder {
		out = append(out, *c.strings[content])
	}
	return out
}

// noteString counts one occurrence of a literal and returns the updated
// info. A new literal gets a candidate constant name unique in this run.
func (c *Context) noteString(content string) StringLiteralInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.strings[content]
	if !ok {
		info = &StringLiteralInfo{
			Content:   content,
			Name:      uniqueConstName(content, c.stringNames),
			FirstFile: c.currentFile,
		}
		c.stringNames[info.Name] = true
		c.strings[content] = info
		c.stringOrder = append(c.stringOrder, content)
	}
	info.Count++
	return *info
}

// stringSnapshot captures the string table so a failed pass can be undone.
type stringSnapshot struct {
	order  int
	counts map[string]int
}

func (c *Context) snapshotStrings() stringSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := stringSnapshot{order: len(c.stringOrder), counts: make(map[string]int, len(c.strings))}
	for k, v := range c.strings {
		snap.counts[k] = v.Count
	}
	return snap
}

// restore must be called with c.mu held.
func (s stringSnapshot) restore(c *Context) {
	if s.counts == nil {
		return
	}
	for _, content := range c.stringOrder[s.order:] {
		delete(c.stringNames, c.strings[content].Name)
		delete(c.strings, content)
	}
	c.stringOrder = c.stringOrder[:s.order]
	for k, n := range s.counts {
		if info, ok := c.strings[k]; ok {
			info.Count = n
		}
	}
}

// Package sink receives listed item names one at a time.
package sink

import (
	"fmt"
	"io"
	"slices"
)

// Sink accepts one item name per call.
type Sink interface {
	Emit(item string) error
}

// Console writes each item as one line to an io.Writer, typically os.Stdout.
type Console struct {
	w io.Writer
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Emit writes item followed by a newline.
func (c *Console) Emit(item string) error {
	if _, err := fmt.Fprintln(c.w, item); err != nil {
		return fmt.Errorf("sink: write %s: %w", item, err)
	}
	return nil
}

// Collector keeps emitted items in order in memory.
type Collector struct {
	items []string
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Emit appends item.
func (c *Collector) Emit(item string) error {
	c.items = append(c.items, item)
	return nil
}

// Items returns a copy of everything emitted so far. It is never nil.
func (c *Collector) Items() []string {
	if c.items == nil {
		return []string{}
	}
	return slices.Clone(c.items)
}

var (
	_ Sink = (*Console)(nil)
	_ Sink = (*Collector)(nil)
)

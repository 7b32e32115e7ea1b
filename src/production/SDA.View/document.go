// Package view renders records into named tables and routes row gestures to handlers.
//
// Every render clears the target table before appending rows, so a table is either Empty
// or fully Populated. Handlers are bound per table, not per row, so rows rendered after
// binding still reach them.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrContainerNotFound = errors.New("container not found")
	ErrNoHandler         = errors.New("no handler bound")
	ErrRowNotFound       = errors.New("row not found")
)

// EventKind is a row gesture
type EventKind string

const (
	EventClick    EventKind = "click"
	EventDblClick EventKind = "dblclick"
	EventDelete   EventKind = "delete"
)

// ParseEventKind accepts the names used on the wire
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case EventClick, EventDblClick, EventDelete:
		return k, nil
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// State of a table
type State string

const (
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

// Row is one rendered record. Index is 1-based and independent of Key.
type Row struct {
	Index int      `json:"index"`
	Key   string   `json:"key"`
	Cells []string `json:"cells"`
}

// Handler receives the row a gesture landed on
type Handler func(ctx context.Context, row Row) error

// RowTemplate turns one record into a row key and its cells
type RowTemplate[T any] func(record T) (key string, cells []string)

type table struct {
	id       string
	columns  []string
	rows     []Row
	handlers map[EventKind]Handler
}

func (t *table) state() State {
	if len(t.rows) == 0 {
		return StateEmpty
	}
	return StatePopulated
}

// Document is a set of named tables
type Document struct {
	mu     sync.RWMutex
	tables map[string]*table
	order  []string
}

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{tables: make(map[string]*table)}
}

// AddTable declares a container with its header columns. Declaring it again replaces the
// columns and keeps rows and bindings.
func (d *Document) AddTable(id string, columns ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.tables[id]; ok {
		t.columns = append([]string(nil), columns...)
		return
	}
	d.tables[id] = &table{
		id:       id,
		columns:  append([]string(nil), columns...),
		handlers: make(map[EventKind]Handler),
	}
	d.order = append(d.order, id)
}

// Tables lists container ids in declaration order
func (d *Document) Tables() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.order...)
}

// Render replaces the rows of containerID with one row per record, in order
func Render[T any](d *Document, containerID string, records []T, tmpl RowTemplate[T]) error {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		key, cells := tmpl(rec)
		rows = append(rows, Row{Index: i + 1, Key: key, Cells: cells})
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lookup(containerID)
	if err != nil {
		return err
	}
	t.rows = rows
	return nil
}

// Clear empties a table
func (d *Document) Clear(containerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lookup(containerID)
	if err != nil {
		return err
	}
	t.rows = nil
	return nil
}

// ClearAll empties every table
func (d *Document) ClearAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.tables {
		t.rows = nil
	}
}

// State reports whether containerID holds rows
func (d *Document) State(containerID string) (State, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, err := d.lookup(containerID)
	if err != nil {
		return "", err
	}
	return t.state(), nil
}

// Rows returns a copy of the rows of containerID
func (d *Document) Rows(containerID string) ([]Row, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, err := d.lookup(containerID)
	if err != nil {
		return nil, err
	}
	return copyRows(t.rows), nil
}

// BindRowAction attaches handler to every current and future row of containerID.
// Binding the same kind again replaces the handler.
func (d *Document) BindRowAction(containerID string, kind EventKind, handler Handler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lookup(containerID)
	if err != nil {
		return err
	}
	t.handlers[kind] = handler
	return nil
}

// Dispatch runs the handler bound to kind on the row with the given key.
// The handler runs without the document lock held so it may render.
func (d *Document) Dispatch(ctx context.Context, containerID string, kind EventKind, key string) error {
	d.mu.RLock()
	t, err := d.lookup(containerID)
	if err != nil {
		d.mu.RUnlock()
		return err
	}
	handler, ok := t.handlers[kind]
	if !ok {
		d.mu.RUnlock()
		return fmt.Errorf("%w: %s on %s", ErrNoHandler, kind, containerID)
	}
	row, found := Row{}, false
	for _, r := range t.rows {
		if r.Key == key {
			row, found = r, true
			break
		}
	}
	d.mu.RUnlock()

	if !found {
		return fmt.Errorf("%w: %q in %s", ErrRowNotFound, key, containerID)
	}
	return handler(ctx, row)
}

func (d *Document) lookup(containerID string) (*table, error) {
	t, ok := d.tables[containerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, containerID)
	}
	return t, nil
}

func copyRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{Index: r.Index, Key: r.Key, Cells: append([]string(nil), r.Cells...)}
	}
	return out
}

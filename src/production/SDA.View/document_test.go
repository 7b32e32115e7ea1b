package view

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type device struct {
	id   string
	host string
}

func deviceRow(d device) (string, []string) {
	return d.id, []string{d.id, d.host}
}

func newDoc() *Document {
	doc := NewDocument()
	doc.AddTable("device_table", "ID", "Host")
	return doc
}

func TestRenderAssignsOneBasedIndex(t *testing.T) {
	doc := newDoc()

	err := Render(doc, "device_table", []device{{"x9", "a"}, {"b7", "b"}}, deviceRow)
	require.NoError(t, err)

	rows, err := doc.Rows("device_table")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "x9", rows[0].Key)
	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, []string{"b7", "b"}, rows[1].Cells)

	state, _ := doc.State("device_table")
	assert.Equal(t, StatePopulated, state)
}

func TestRenderZeroRecords(t *testing.T) {
	doc := newDoc()
	require.NoError(t, Render(doc, "device_table", []device{{"1", "a"}}, deviceRow))

	err := Render(doc, "device_table", []device{}, deviceRow)
	require.NoError(t, err)

	rows, _ := doc.Rows("device_table")
	assert.Empty(t, rows)
	state, _ := doc.State("device_table")
	assert.Equal(t, StateEmpty, state)

	require.NoError(t, Render[device](doc, "device_table", nil, deviceRow))
}

func TestRenderReplacesRows(t *testing.T) {
	doc := newDoc()
	require.NoError(t, Render(doc, "device_table", []device{{"1", "a"}, {"2", "b"}}, deviceRow))
	require.NoError(t, Render(doc, "device_table", []device{{"3", "c"}}, deviceRow))

	rows, _ := doc.Rows("device_table")
	require.Len(t, rows, 1)
	assert.Equal(t, "3", rows[0].Key)
	assert.Equal(t, 1, rows[0].Index)
}

func TestMissingContainerIsReported(t *testing.T) {
	doc := newDoc()

	err := Render(doc, "nope", []device{{"1", "a"}}, deviceRow)
	assert.ErrorIs(t, err, ErrContainerNotFound)

	assert.ErrorIs(t, doc.Clear("nope"), ErrContainerNotFound)
	assert.ErrorIs(t, doc.BindRowAction("nope", EventClick, nil), ErrContainerNotFound)
	assert.ErrorIs(t, doc.Dispatch(context.Background(), "nope", EventClick, "1"), ErrContainerNotFound)

	_, err = doc.Snapshot("nope")
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestClearTransitionsToEmpty(t *testing.T) {
	doc := newDoc()
	require.NoError(t, Render(doc, "device_table", []device{{"1", "a"}}, deviceRow))

	require.NoError(t, doc.Clear("device_table"))

	state, _ := doc.State("device_table")
	assert.Equal(t, StateEmpty, state)
}

func TestBindingReachesRowsRenderedLater(t *testing.T) {
	doc := newDoc()

	var got Row
	err := doc.BindRowAction("device_table", EventDblClick, func(_ context.Context, row Row) error {
		got = row
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, Render(doc, "device_table", []device{{"1", "a"}, {"2", "b"}}, deviceRow))

	require.NoError(t, doc.Dispatch(context.Background(), "device_table", EventDblClick, "2"))
	assert.Equal(t, 2, got.Index)
	assert.Equal(t, "2", got.Key)
}

func TestDispatchErrors(t *testing.T) {
	doc := newDoc()
	require.NoError(t, Render(doc, "device_table", []device{{"1", "a"}}, deviceRow))

	err := doc.Dispatch(context.Background(), "device_table", EventClick, "1")
	assert.ErrorIs(t, err, ErrNoHandler)

	boom := errors.New("boom")
	require.NoError(t, doc.BindRowAction("device_table", EventClick, func(context.Context, Row) error { return boom }))

	err = doc.Dispatch(context.Background(), "device_table", EventClick, "missing")
	assert.ErrorIs(t, err, ErrRowNotFound)

	err = doc.Dispatch(context.Background(), "device_table", EventClick, "1")
	assert.ErrorIs(t, err, boom)
}

func TestHandlerMayRender(t *testing.T) {
	doc := newDoc()
	doc.AddTable("app_table", "App")
	require.NoError(t, Render(doc, "device_table", []device{{"1", "a"}}, deviceRow))

	require.NoError(t, doc.BindRowAction("device_table", EventClick, func(_ context.Context, row Row) error {
		return Render(doc, "app_table", []string{"app-of-" + row.Key}, func(s string) (string, []string) {
			return s, []string{s}
		})
	}))

	require.NoError(t, doc.Dispatch(context.Background(), "device_table", EventClick, "1"))

	rows, _ := doc.Rows("app_table")
	require.Len(t, rows, 1)
	assert.Equal(t, "app-of-1", rows[0].Key)
}

func TestSnapshotAndWriters(t *testing.T) {
	doc := newDoc()
	require.NoError(t, Render(doc, "device_table", []device{{"1", "<b>host</b>"}}, deviceRow))

	snap, err := doc.Snapshot("device_table")
	require.NoError(t, err)
	assert.Equal(t, []string{"No.", "ID", "Host"}, snap.Columns)
	assert.Equal(t, StatePopulated, snap.State)

	var html bytes.Buffer
	require.NoError(t, doc.WriteHTML(&html, "device_table"))
	assert.Contains(t, html.String(), `<table id="device_table" data-state="populated">`)
	assert.Contains(t, html.String(), `&lt;b&gt;host&lt;/b&gt;`)
	assert.Contains(t, html.String(), `title="1"`)

	var text bytes.Buffer
	require.NoError(t, doc.WriteText(&text, "device_table"))
	lines := strings.Split(strings.TrimSpace(text.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "No."))
	assert.True(t, strings.HasPrefix(lines[1], "1"))
}

func TestParseEventKind(t *testing.T) {
	k, err := ParseEventKind("dblclick")
	require.NoError(t, err)
	assert.Equal(t, EventDblClick, k)

	_, err = ParseEventKind("hover")
	assert.Error(t, err)
}

func TestTablesKeepsDeclarationOrder(t *testing.T) {
	doc := NewDocument()
	doc.AddTable("b")
	doc.AddTable("a")
	doc.AddTable("b", "X")

	assert.Equal(t, []string{"b", "a"}, doc.Tables())
}

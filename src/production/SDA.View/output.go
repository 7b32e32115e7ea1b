package view

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"text/tabwriter"
)

const indexColumn = "No."

// Snapshot is the serialisable form of one table
type Snapshot struct {
	ID      string   `json:"id"`
	State   State    `json:"state"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Snapshot copies containerID for serialisation
func (d *Document) Snapshot(containerID string) (Snapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, err := d.lookup(containerID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		ID:      t.id,
		State:   t.state(),
		Columns: append([]string{indexColumn}, t.columns...),
		Rows:    copyRows(t.rows),
	}, nil
}

var tableTemplate = template.Must(template.New("table").Parse(
	`<table id="{{.ID}}" data-state="{{.State}}">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr title="{{.Key}}" data-key="{{.Key}}"><td>{{.Index}}</td>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
`))

// WriteHTML writes containerID as an escaped HTML table fragment
func (d *Document) WriteHTML(w io.Writer, containerID string) error {
	snap, err := d.Snapshot(containerID)
	if err != nil {
		return err
	}
	return tableTemplate.Execute(w, snap)
}

// WriteText writes containerID as aligned columns
func (d *Document) WriteText(w io.Writer, containerID string) error {
	snap, err := d.Snapshot(containerID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(snap.Columns, "\t"))
	for _, r := range snap.Rows {
		fmt.Fprintf(tw, "%d\t%s\n", r.Index, strings.Join(r.Cells, "\t"))
	}
	return tw.Flush()
}

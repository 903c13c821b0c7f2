// Package tui is the terminal conversations dashboard.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/honganh1206/convodash/dashboard"
	"github.com/honganh1206/convodash/query"
	"github.com/honganh1206/convodash/schema"
	"github.com/honganh1206/convodash/ui"
	"github.com/honganh1206/convodash/view"
	"github.com/rivo/tview"
)

const keyHelp = "n next · p prev · f filters · c clear · r refresh · enter open · q quit"

// PageSizeSaver remembers the chosen page size between runs.
type PageSizeSaver interface {
	SetPageSize(n int) error
}

type Options struct {
	View  view.Options
	Prefs PageSizeSaver
	// OpenURL opens a viewer link. Defaults to the system browser.
	OpenURL func(url string) error
	Logger  *slog.Logger
}

type Dashboard struct {
	sync    *dashboard.Synchronizer
	updates <-chan dashboard.State
	opts    Options
	logger  *slog.Logger

	app      *tview.Application
	layout   *tview.Flex
	form     *tview.Form
	pageSize *tview.DropDown
	stats    *tview.TextView
	table    *tview.Table
	footer   *tview.TextView

	rows []view.Row
}

func New(sync *dashboard.Synchronizer, initialPageSize int, opts Options) *Dashboard {
	if opts.OpenURL == nil {
		opts.OpenURL = openBrowser
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Dashboard{
		sync:    sync,
		updates: sync.Subscribe(),
		opts:    opts,
		logger:  opts.Logger,
		app:     tview.NewApplication(),
	}
	d.build(initialPageSize)
	return d
}

func (d *Dashboard) build(initialPageSize int) {
	header := tview.NewTextView().
		SetDynamicColors(true).
		SetText("[::b]Conversations Dashboard")

	d.form = tview.NewForm().SetHorizontal(true)
	d.form.SetBorder(true).SetTitle("Filters").SetTitleAlign(tview.AlignLeft)
	d.form.SetCancelFunc(func() {
		d.app.SetFocus(d.table)
	})

	for _, field := range query.DateFields {
		input := tview.NewInputField().
			SetLabel(field.Label() + " ").
			SetFieldWidth(12).
			SetPlaceholder("YYYY-MM-DD")
		input.SetDoneFunc(func(tcell.Key) {
			d.applyDate(field, input.GetText())
		})
		d.form.AddFormItem(input)
	}

	options := make([]string, len(schema.PageSizes))
	current := 0
	for i, n := range schema.PageSizes {
		options[i] = strconv.Itoa(n)
		if n == initialPageSize {
			current = i
		}
	}
	d.pageSize = tview.NewDropDown().
		SetLabel("Rows per page ").
		SetOptions(options, nil).
		SetCurrentOption(current)
	d.pageSize.SetSelectedFunc(func(text string, index int) {
		d.applyPageSize(schema.PageSizes[index])
	})
	d.form.AddFormItem(d.pageSize)

	d.stats = tview.NewTextView().SetDynamicColors(true)

	d.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	d.table.SetBorder(true).SetTitle("Conversations").SetTitleAlign(tview.AlignLeft)
	d.table.SetSelectedFunc(func(row, column int) {
		d.openRow(row - 1)
	})
	d.table.SetInputCapture(d.handleTableKey)

	d.footer = tview.NewTextView().SetDynamicColors(true)

	d.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(d.form, 3, 0, false).
		AddItem(d.stats, 1, 0, false).
		AddItem(d.table, 0, 1, true).
		AddItem(d.footer, 2, 0, false)
}

// Run starts the synchronizer and blocks until the user quits or ctx is done.
func (d *Dashboard) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := d.sync.Run(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("Synchronizer stopped", "error", err)
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				d.app.Stop()
				return
			case st := <-d.updates:
				d.app.QueueUpdateDraw(func() {
					d.render(st)
				})
			}
		}
	}()

	return d.app.SetRoot(d.layout, true).SetFocus(d.table).Run()
}

func (d *Dashboard) handleTableKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() != tcell.KeyRune {
		return event
	}

	switch event.Rune() {
	case 'n':
		d.sync.NextPage()
	case 'p':
		d.sync.PrevPage()
	case 'f':
		d.app.SetFocus(d.form)
	case 'c':
		d.clearInputs()
		d.sync.ClearFilters()
	case 'r':
		d.sync.Refresh()
	case 'q':
		d.app.Stop()
	default:
		return event
	}
	return nil
}

func (d *Dashboard) applyDate(field query.DateField, value string) {
	if err := d.sync.SetDateFilter(field, value); err != nil {
		d.logger.Error("Failed to set date filter", "field", field.Param(), "error", err)
	}
}

func (d *Dashboard) applyPageSize(n int) {
	if err := d.sync.SetPageSize(n); err != nil {
		d.logger.Error("Failed to set page size", "page_size", n, "error", err)
		return
	}
	if d.opts.Prefs != nil {
		if err := d.opts.Prefs.SetPageSize(n); err != nil {
			d.logger.Warn("Failed to save page size", "error", err)
		}
	}
}

func (d *Dashboard) clearInputs() {
	for i := range query.DateFields {
		if input, ok := d.form.GetFormItem(i).(*tview.InputField); ok {
			input.SetText("")
		}
	}
}

func (d *Dashboard) openRow(i int) {
	if i < 0 || i >= len(d.rows) {
		return
	}
	url := d.rows[i].ViewURL
	if err := d.opts.OpenURL(url); err != nil {
		d.logger.Error("Failed to open viewer", "url", url, "error", err)
		d.footer.SetText(ui.FormatStatus(ui.StatusFormat{Name: "Failed to open viewer", Detail: err.Error(), IsError: true}))
	}
}

// render redraws every widget from st. It must run on the application
// goroutine.
func (d *Dashboard) render(st dashboard.State) {
	m := view.Derive(st.Loading, st.Response, d.opts.View).WithError(st.Err)

	d.renderStats(m)
	d.renderTable(m)
	d.renderFooter(m)
}

func (d *Dashboard) renderStats(m view.Model) {
	if m.Stats == nil {
		d.stats.SetText("")
		return
	}
	d.stats.SetText(fmt.Sprintf("Total Conversations: [::b]%d[::-]   Current Page: [::b]%s[::-]   Showing: [::b]%s[::-]",
		m.Stats.TotalConversations, m.Stats.PageText(), m.Stats.ShowingText()))
}

func (d *Dashboard) renderTable(m view.Model) {
	d.table.Clear()
	d.rows = m.Rows

	for col, title := range []string{"ID", "Created At", "Updated At", "Viewer"} {
		d.table.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	if m.Body != view.BodyRows {
		d.table.SetCell(1, 0, tview.NewTableCell(m.Placeholder).
			SetSelectable(false).
			SetExpansion(1))
		return
	}

	for i, r := range m.Rows {
		d.table.SetCell(i+1, 0, tview.NewTableCell(tview.Escape(r.ID)))
		d.table.SetCell(i+1, 1, tview.NewTableCell(r.CreatedAt))
		d.table.SetCell(i+1, 2, tview.NewTableCell(r.UpdatedAt))
		d.table.SetCell(i+1, 3, tview.NewTableCell(tview.Escape(r.ViewURL)).SetTextColor(tcell.ColorBlue))
	}
	if len(m.Rows) > 0 {
		d.table.Select(1, 0)
	}
}

func (d *Dashboard) renderFooter(m view.Model) {
	var status ui.StatusFormat
	switch {
	case m.Error != "":
		status = ui.StatusFormat{Name: "Failed to load conversations", Detail: m.Error, IsError: true}
	case m.Body == view.BodyLoading:
		status = ui.StatusFormat{Name: view.LoadingText, IsLoading: true}
	default:
		status = ui.StatusFormat{Name: "Up to date"}
	}

	line := ui.FormatStatus(status)
	if m.Pagination.Visible {
		prev, next := "[gray]◀[-]", "[gray]▶[-]"
		if m.Pagination.CanPrev {
			prev = "◀"
		}
		if m.Pagination.CanNext {
			next = "▶"
		}
		line = fmt.Sprintf("%s %s %s   %s", prev, m.Pagination.Label, next, line)
	}

	d.footer.SetText(line + "\n[gray]" + keyHelp)
}

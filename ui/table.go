// Package ui is the optional terminal view of the checking results.
//
// Purpose: browse standings, open an entry's contact log, clear manual
// overrides and filter with a search query (call:, cat:, place:, status:).
// Key aspects: rows are coloured by display class; rendering helpers are
// pure so they can be tested without a screen.
// Upstream: root program when ui.mode is "table" and stdout is a terminal.
// Downstream: tview/tcell.
package ui

import (
	"context"
	"fmt"

	"contestcheck/config"
	"contestcheck/contest"
	"contestcheck/ranking"
	"contestcheck/store"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	accentTag   = "[#ff69b4]"
	accentReset = "[-]"
)

var (
	uiBorderColor = tcell.ColorGray
	uiTitleColor  = tcell.ColorHotPink
)

// Source supplies the view with current results.
type Source interface {
	Standings() []ranking.Ranked
	Status() store.Status
}

// ResultsTable is the tview application showing the standings.
type ResultsTable struct {
	app     *tview.Application
	pages   *tview.Pages
	table   *tview.Table
	detail  *tview.TextView
	log     *tview.Table
	status  *tview.TextView
	search  *tview.InputField
	filter  *SearchFilter
	source  Source
	cats    config.CategoryConfig
	title   string
	rows    []EntryRow
	entries map[string]*contest.Entry

	ctx    context.Context
	cancel context.CancelFunc

	// OnClearOverride is called with the selected callsign when the user
	// presses 'x'. The table refreshes afterwards.
	OnClearOverride func(callsign string) error
}

// NewResultsTable builds the view. Run starts it.
func NewResultsTable(title string, src Source, cats config.CategoryConfig) *ResultsTable {
	ctx, cancel := context.WithCancel(context.Background())
	t := &ResultsTable{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		source: src,
		cats:   cats,
		title:  title,
		ctx:    ctx,
		cancel: cancel,
	}

	t.filter = NewSearchFilter(ctx, searchDelay, func() { t.app.QueueUpdateDraw(t.refresh) })

	t.table = tview.NewTable().SetFixed(1, 0).SetSelectable(true, false)
	t.table.SetBorder(true).SetTitle(accentText(title)).SetTitleAlign(tview.AlignLeft)
	t.table.SetBorderColor(uiBorderColor)
	t.table.SetTitleColor(uiTitleColor)
	t.table.SetSelectedFunc(func(row, _ int) { t.openDetail(row) })

	t.status = tview.NewTextView().SetDynamicColors(true)
	t.search = tview.NewInputField().SetLabel("/ ")
	t.search.SetChangedFunc(func(text string) {
		t.filter.Edit(text)
	})
	t.search.SetDoneFunc(func(tcell.Key) { t.app.SetFocus(t.table) })

	results := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.table, 0, 1, true).
		AddItem(t.search, 1, 0, false).
		AddItem(t.status, 1, 0, false).
		AddItem(buildFooter(), 1, 0, false)

	t.detail = tview.NewTextView().SetDynamicColors(false)
	t.detail.SetBorder(true).SetBorderColor(uiBorderColor)
	t.log = tview.NewTable().SetFixed(1, 0).SetSelectable(true, false)
	t.log.SetBorder(true).SetTitle(accentText("Contacts")).SetBorderColor(uiBorderColor)
	detail := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.detail, 7, 0, false).
		AddItem(t.log, 0, 1, true)

	t.pages.AddPage("results", results, true, true)
	t.pages.AddPage("detail", detail, true, false)
	t.app.SetRoot(t.pages, true)
	t.installKeybindings()
	t.refresh()
	return t
}

// Run blocks until the user quits.
func (t *ResultsTable) Run() error {
	defer t.cancel()
	return t.app.Run()
}

// Stop ends Run.
func (t *ResultsTable) Stop() {
	t.cancel()
	t.app.Stop()
}

func (t *ResultsTable) installKeybindings() {
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if t.app.GetFocus() == t.search {
			return event
		}
		if name, _ := t.pages.GetFrontPage(); name == "detail" {
			if event.Key() == tcell.KeyEsc || event.Rune() == 'q' {
				t.pages.SwitchToPage("results")
				t.app.SetFocus(t.table)
				return nil
			}
			return event
		}
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEsc:
			t.Stop()
			return nil
		}
		switch event.Rune() {
		case 'q', 'Q':
			t.Stop()
			return nil
		case '/':
			t.app.SetFocus(t.search)
			return nil
		case 'x':
			t.clearSelected()
			return nil
		}
		return event
	})
}

func (t *ResultsTable) refresh() {
	standings := t.source.Standings()
	t.entries = make(map[string]*contest.Entry, len(standings))
	for _, r := range standings {
		if r.Entry != nil {
			t.entries[r.Entry.Callsign] = r.Entry
		}
	}
	query := t.filter.Active()
	t.rows = t.rows[:0]
	for _, row := range EntryRows(standings, t.cats) {
		if query.Match(row) {
			t.rows = append(t.rows, row)
		}
	}

	t.table.Clear()
	for col, h := range EntryHeaders {
		t.table.SetCell(0, col, tview.NewTableCell(h).SetTextColor(uiTitleColor).SetSelectable(false))
	}
	for i, row := range t.rows {
		color := ClassColor(row.Class)
		for col, text := range row.Cells {
			cell := tview.NewTableCell(text).SetTextColor(color)
			if col >= 4 && col <= 8 {
				cell.SetAlign(tview.AlignRight)
			}
			t.table.SetCell(i+1, col, cell)
		}
	}
	t.status.SetText(t.source.Status().String())
}

func (t *ResultsTable) selected() *contest.Entry {
	row, _ := t.table.GetSelection()
	if row < 1 || row > len(t.rows) {
		return nil
	}
	return t.entries[t.rows[row-1].Callsign]
}

func (t *ResultsTable) openDetail(row int) {
	if row < 1 || row > len(t.rows) {
		return
	}
	e := t.entries[t.rows[row-1].Callsign]
	if e == nil {
		return
	}
	t.detail.SetTitle(accentText(e.Callsign))
	t.detail.SetText(DetailText(e, t.cats))
	t.log.Clear()
	for col, h := range ContactHeaders {
		t.log.SetCell(0, col, tview.NewTableCell(h).SetTextColor(uiTitleColor).SetSelectable(false))
	}
	for i, cells := range ContactRows(e) {
		color := tcell.ColorWhite
		if e.Contacts[i].Dup {
			color = tcell.ColorRed
		}
		for col, text := range cells {
			t.log.SetCell(i+1, col, tview.NewTableCell(text).SetTextColor(color))
		}
	}
	t.pages.SwitchToPage("detail")
	t.app.SetFocus(t.log)
}

func (t *ResultsTable) clearSelected() {
	e := t.selected()
	if e == nil || t.OnClearOverride == nil || e.Override == nil {
		return
	}
	if err := t.OnClearOverride(e.Callsign); err != nil {
		t.status.SetText(fmt.Sprintf("[red]clear %s: %v[-]", e.Callsign, err))
		return
	}
	t.refresh()
}

func accentText(s string) string {
	return accentTag + s + accentReset
}

func buildFooter() *tview.TextView {
	return tview.NewTextView().SetDynamicColors(true).SetText(
		accentText("Enter") + "Contacts  " + accentText("/") + "Search  " + accentText("x") + "Clear override  [Q]Quit",
	)
}

// Package browse implements the interactive record viewer: a two-pane
// tview layout, a scrollable list of decoded records on the left and their
// details on the right, adapted from the teacher's recordList/detailsText
// split in its TUI entrypoint down to the fields the new typed
// redorec.Record carries.
package browse

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/yamaru/redolog-scan/internal/redorec"
)

// Run launches the interactive browser over records and blocks until the
// user quits (q or Ctrl-C).
func Run(records []redorec.Record) error {
	app := tview.NewApplication()

	list := tview.NewList()
	list.SetBorder(true)
	list.SetTitle(" Records ")
	list.ShowSecondaryText(false)

	details := tview.NewTextView()
	details.SetBorder(true)
	details.SetTitle(" Details ")
	details.SetDynamicColors(true)
	details.SetScrollable(true)
	details.SetWrap(true)

	footer := tview.NewTextView()
	footer.SetBorder(true)
	footer.SetTextAlign(tview.AlignCenter)
	footer.SetText(fmt.Sprintf("%d records | ↑/↓ navigate | q quit", len(records)))

	for i, rec := range records {
		list.AddItem(listLabel(i, rec), "", 0, nil)
	}

	showDetails := func(index int) {
		if index < 0 || index >= len(records) {
			details.SetText("")
			return
		}
		details.SetText(detailText(records[index]))
	}
	list.SetChangedFunc(func(index int, _ string, _ string, _ rune) { showDetails(index) })
	if len(records) > 0 {
		showDetails(0)
	}

	root := tview.NewFlex()
	left := tview.NewFlex().SetDirection(tview.FlexRow).AddItem(list, 0, 1, true)
	right := tview.NewFlex().SetDirection(tview.FlexRow).AddItem(details, 0, 1, false)
	root.AddItem(left, 0, 1, true).AddItem(right, 0, 2, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(root, 0, 1, true).
		AddItem(footer, 3, 0, false)

	layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			app.Stop()
			return nil
		}
		return event
	})

	return app.SetRoot(layout, true).SetFocus(list).Run()
}

func listLabel(index int, rec redorec.Record) string {
	if rec.Type.HasSpacePage() {
		return fmt.Sprintf("%4d  %-28s space=%d page=%d", index+1, rec.Type, rec.SpaceID, rec.PageNo)
	}
	return fmt.Sprintf("%4d  %-28s", index+1, rec.Type)
}

func detailText(rec redorec.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]type:[-] %s (%d)\n", rec.Type, uint8(rec.Type))
	fmt.Fprintf(&b, "[yellow]lsn:[-] [%d,%d)\n", rec.StartLSN, rec.EndLSN)
	fmt.Fprintf(&b, "[yellow]single_rec:[-] %v\n", rec.SingleRec)
	if rec.Type.HasSpacePage() {
		fmt.Fprintf(&b, "[yellow]space_id:[-] %d\n[yellow]page_no:[-] %d\n", rec.SpaceID, rec.PageNo)
	}
	if rec.Type == redorec.TableDynamicMeta {
		fmt.Fprintf(&b, "[yellow]table_id:[-] %d\n[yellow]version:[-] %d\n", rec.TableID, rec.Version)
	}
	if rec.Sub != "" {
		fmt.Fprintf(&b, "[yellow]sub:[-] %s\n", rec.Sub)
	}
	fmt.Fprintf(&b, "[yellow]body_len:[-] %d\n", len(rec.Body))
	if len(rec.Body) > 0 {
		fmt.Fprintf(&b, "[yellow]body:[-] % x\n", rec.Body)
	}
	return b.String()
}

package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/markis/flashdeck/internal/history"
)

// History prints saved decks as a table, newest first.
func History(out io.Writer, entries []history.Entry, isTTY bool, width int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No history yet")
		return err
	}

	tp := tableprinter.New(out, isTTY, width)
	tp.AddHeader([]string{"ID", "FILE", "CARDS", "DATE"})
	for _, e := range entries {
		tp.AddField(strconv.FormatInt(e.ID, 10))
		tp.AddField(e.Filename)
		tp.AddField(strconv.Itoa(e.CardCount))
		tp.AddField(e.Date + " " + e.Time)
		tp.EndRow()
	}
	return tp.Render()
}

// cmd_display.go - Display und Output-Funktionen
// Hauptfunktionen: displayResponse, renderToolCalls
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/7blacky7/toolfence/api"
)

type displayResponseState struct {
	lineLength int
	wordBuffer string
}

// terminalWidth - Breite von stdout, 0 wenn kein Terminal
func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// displayResponse - Zeigt Antwort-Text mit optionalem Word-Wrap an
func displayResponse(w io.Writer, content string, termWidth int, state *displayResponseState) {
	if termWidth < 10 {
		fmt.Fprintf(w, "%s%s", state.wordBuffer, content)
		state.wordBuffer = ""
		return
	}

	for _, ch := range content {
		if state.lineLength+1 > termWidth-5 {
			if runewidth.StringWidth(state.wordBuffer) > termWidth-10 {
				fmt.Fprintf(w, "%s%c", state.wordBuffer, ch)
				state.wordBuffer = ""
				state.lineLength = 0
				continue
			}

			// angefangenes Wort in die naechste Zeile verschieben
			a := runewidth.StringWidth(state.wordBuffer)
			if a > 0 {
				fmt.Fprintf(w, "\x1b[%dD", a)
			}
			fmt.Fprintf(w, "\x1b[K\n")
			fmt.Fprintf(w, "%s%c", state.wordBuffer, ch)
			chWidth := runewidth.RuneWidth(ch)

			state.lineLength = runewidth.StringWidth(state.wordBuffer) + chWidth
			continue
		}

		fmt.Fprint(w, string(ch))
		state.lineLength += runewidth.RuneWidth(ch)
		if runewidth.RuneWidth(ch) >= 2 {
			state.wordBuffer = ""
			continue
		}

		switch ch {
		case ' ', '\t':
			state.wordBuffer = ""
		case '\n', '\r':
			state.lineLength = 0
			state.wordBuffer = ""
		default:
			state.wordBuffer += string(ch)
		}
	}
}

// renderToolCalls - Tabelle der erkannten Tool-Calls
func renderToolCalls(w io.Writer, toolCalls []api.ToolCall) {
	if len(toolCalls) == 0 {
		return
	}

	data := make([][]string, 0, len(toolCalls))
	for _, tc := range toolCalls {
		data = append(data, []string{
			strconv.Itoa(tc.Function.Index),
			tc.Function.Name,
			tc.ID,
			tc.Function.Arguments.String(),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "TOOL", "ID", "ARGUMENTS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

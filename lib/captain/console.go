// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package captain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/armada/lib/protocol"
)

// console renders operator-facing text. Styles come from a renderer
// bound to the output, so a pipe or a test buffer gets plain text.
type console struct {
	out     io.Writer
	heading lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
}

func newConsole(out io.Writer) *console {
	renderer := lipgloss.NewRenderer(out)
	return &console{
		out:     out,
		heading: renderer.NewStyle().Bold(true),
		ok:      renderer.NewStyle().Foreground(lipgloss.Color("2")),
		fail:    renderer.NewStyle().Foreground(lipgloss.Color("1")),
		muted:   renderer.NewStyle().Faint(true),
	}
}

func (c *console) line(text string) {
	fmt.Fprintln(c.out, text)
}

func (c *console) info(text string)    { c.line(text) }
func (c *console) success(text string) { c.line(c.ok.Render(text)) }
func (c *console) failure(text string) { c.line(c.fail.Render(text)) }

func (c *console) status(id int, status protocol.Status) {
	c.line(fmt.Sprintf("ship %d: %s", id, status))
}

func (c *console) banner(live int) {
	c.line(c.heading.Render(fmt.Sprintf("%d ships under command", live)))
	c.line(c.muted.Render("type help for commands"))
}

func (c *console) help() {
	commands := [][2]string{
		{"status", "status of every live ship"},
		{"<id> status", "status of one ship"},
		{"<id> up|down|left|right", "move one ship"},
		{"<id> exit", "ask one ship to leave"},
		{"map", "draw the chart"},
		{"exit", "terminate the fleet"},
	}
	width := 0
	for _, command := range commands {
		width = max(width, lipgloss.Width(command[0]))
	}
	for _, command := range commands {
		name := command[0] + strings.Repeat(" ", width-lipgloss.Width(command[0]))
		c.line("  " + c.heading.Render(name) + "  " + command[1])
	}
}

// scoreTable prints one row per launched ship.
func (c *console) scoreTable(results []Result) {
	if len(results) == 0 {
		c.line("no ships sailed")
		return
	}

	rows := [][]string{{"SHIP", "PID", "GOLD"}}
	for _, result := range results {
		rows = append(rows, []string{
			strconv.Itoa(result.ID),
			strconv.Itoa(result.PID),
			result.Status.String(),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for column, cell := range row {
			widths[column] = max(widths[column], lipgloss.Width(cell))
		}
	}

	for index, row := range rows {
		cells := make([]string, len(row))
		for column, cell := range row {
			cells[column] = cell + strings.Repeat(" ", widths[column]-lipgloss.Width(cell))
		}
		text := strings.TrimRight(strings.Join(cells, "  "), " ")
		if index == 0 {
			text = c.heading.Render(text)
		}
		c.line(text)
	}
}

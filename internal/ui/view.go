package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/portside/portside/internal/state"
)

// renderMain paints the full dashboard: header, tab bar, active table, the
// log pane on the containers tab, and the status line.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderTable())

	if m.snapshot.Tab == state.TabContainers && len(m.snapshot.Logs) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderLogPane())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// renderHeader shows the app name and the resource summary.
func (m Model) renderHeader() string {
	sum := state.Summarize(m.snapshot)
	summary := fmt.Sprintf(
		"%d running / %d stopped / %d paused   cpu %.1f%%   mem %.1fMB   images %.0fMB",
		sum.Running, sum.Stopped, sum.Paused, sum.TotalCPU, sum.TotalMem, sum.ImagesSizeMB,
	)
	name := m.styles.Accent.Render("portside")
	return m.styles.Header.Width(m.width).Render(name + "  " + summary)
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, len(state.Tabs))
	for _, tab := range state.Tabs {
		label := fmt.Sprintf("%d %s", int(tab)+1, tab)
		if tab == m.snapshot.Tab {
			parts = append(parts, m.styles.TabActive.Render(label))
		} else {
			parts = append(parts, m.styles.TabInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderTable() string {
	switch m.snapshot.Tab {
	case state.TabContainers:
		return m.renderContainerRows()
	case state.TabImages:
		return m.renderImageRows()
	case state.TabVolumes:
		return m.renderVolumeRows()
	case state.TabNetworks:
		return m.renderNetworkRows()
	case state.TabCompose:
		return m.renderComposeRows()
	default:
		return ""
	}
}

func (m Model) renderContainerRows() string {
	snap := m.snapshot
	if len(snap.Containers) == 0 {
		return m.styles.Muted.Render("  no containers")
	}

	var b strings.Builder
	b.WriteString(m.styles.Muted.Render(
		padRow([]string{"", "NAME", "STATE", "STATUS", "CPU", "MEM", "IMAGE"}, containerWidths)))
	for i, c := range snap.Containers {
		st := snap.Stats[c.ID]
		cells := []string{
			rowMarker(snap, c.ID),
			c.Name,
			c.State,
			c.Status,
			orDash(st.CPU),
			orDash(st.Memory),
			c.Image,
		}
		line := padRow(cells, containerWidths)
		b.WriteString("\n")
		b.WriteString(m.styleRow(line, i == snap.Cursor, m.styles.StateStyle(c.State)))
	}
	return b.String()
}

func (m Model) renderImageRows() string {
	snap := m.snapshot
	if len(snap.Images) == 0 {
		return m.styles.Muted.Render("  no images")
	}

	var b strings.Builder
	b.WriteString(m.styles.Muted.Render(padRow([]string{"", "ID", "TAGS", "SIZE"}, imageWidths)))
	for i, img := range snap.Images {
		cells := []string{
			rowMarker(snap, img.ID),
			img.ShortID,
			strings.Join(img.Tags, ", "),
			fmt.Sprintf("%.1fMB", img.SizeMB),
		}
		b.WriteString("\n")
		b.WriteString(m.styleRow(padRow(cells, imageWidths), i == snap.Cursor, m.styles.Text))
	}
	return b.String()
}

func (m Model) renderVolumeRows() string {
	snap := m.snapshot
	if len(snap.Volumes) == 0 {
		return m.styles.Muted.Render("  no volumes")
	}

	var b strings.Builder
	b.WriteString(m.styles.Muted.Render(padRow([]string{"", "NAME", "DRIVER", "MOUNTPOINT"}, volumeWidths)))
	for i, v := range snap.Volumes {
		cells := []string{rowMarker(snap, v.Name), v.Name, v.Driver, v.Mountpoint}
		b.WriteString("\n")
		b.WriteString(m.styleRow(padRow(cells, volumeWidths), i == snap.Cursor, m.styles.Text))
	}
	return b.String()
}

func (m Model) renderNetworkRows() string {
	snap := m.snapshot
	if len(snap.Networks) == 0 {
		return m.styles.Muted.Render("  no networks")
	}

	var b strings.Builder
	b.WriteString(m.styles.Muted.Render(padRow([]string{"", "ID", "NAME", "DRIVER"}, networkWidths)))
	for i, n := range snap.Networks {
		cells := []string{rowMarker(snap, n.ID), shortID(n.ID), n.Name, n.Driver}
		b.WriteString("\n")
		b.WriteString(m.styleRow(padRow(cells, networkWidths), i == snap.Cursor, m.styles.Text))
	}
	return b.String()
}

func (m Model) renderComposeRows() string {
	snap := m.snapshot
	if len(snap.Composes) == 0 {
		return m.styles.Muted.Render("  no compose projects")
	}

	var b strings.Builder
	b.WriteString(m.styles.Muted.Render(padRow([]string{"", "PROJECT", "STATUS"}, composeWidths)))
	for i, p := range snap.Composes {
		cells := []string{rowMarker(snap, p.Name), p.Name, p.Status}
		b.WriteString("\n")
		b.WriteString(m.styleRow(padRow(cells, composeWidths), i == snap.Cursor, m.styles.Text))
	}
	return b.String()
}

// renderLogPane shows the focused container's tail.
func (m Model) renderLogPane() string {
	lines := m.snapshot.Logs
	if limit := m.logPaneHeight(); len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	var b strings.Builder
	b.WriteString(m.styles.Muted.Render("── logs " + strings.Repeat("─", max(0, m.width-8))))
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(m.styles.Text.Render(truncate(line, m.width)))
	}
	return b.String()
}

func (m Model) logPaneHeight() int {
	h := m.height/3 - 1
	if h < 3 {
		h = 3
	}
	return h
}

// renderStatusLine shows either the active error, the current prompt, or the
// ambient footer.
func (m Model) renderStatusLine() string {
	switch m.mode {
	case modeFilter, modePrompt:
		label := "filter"
		if m.mode == modePrompt {
			label = m.pendingAction.String()
		}
		return m.styles.Prompt.Render(label+": ") + m.input.View()
	case modeConfirm:
		return m.styles.Danger.Render(confirmLabel(m.pendingAction, m.pendingTargets))
	}

	if m.snapshot.LastError.Active(time.Now()) {
		return m.styles.ErrorBar.Width(m.width).Render(m.snapshot.LastError.Message)
	}

	parts := []string{"sort: " + m.snapshot.Sort.String()}
	if m.snapshot.Filter != "" {
		parts = append(parts, "filter: "+m.snapshot.Filter)
	}
	if m.snapshot.BulkMode {
		parts = append(parts, fmt.Sprintf("bulk: %d selected", len(m.snapshot.SelectedIDs())))
	}
	parts = append(parts, "? help")
	return m.styles.Footer.Width(m.width).Render(strings.Join(parts, "   "))
}

// renderHelp paints the full-screen key reference.
func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.Accent.Render("portside keys"))
	b.WriteString("\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			help := binding.Help()
			b.WriteString(fmt.Sprintf("  %-12s %s\n",
				m.styles.Warning.Render(help.Key), help.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Muted.Render("press any key to close"))
	return b.String()
}

// Column widths per tab; the first column is the bulk-selection marker.
var (
	containerWidths = []int{2, 24, 10, 22, 7, 10, 0}
	imageWidths     = []int{2, 14, 40, 0}
	volumeWidths    = []int{2, 28, 10, 0}
	networkWidths   = []int{2, 14, 24, 0}
	composeWidths   = []int{2, 28, 0}
)

// rowMarker renders the bulk-selection cell for one row.
func rowMarker(snap state.AppState, id string) string {
	if !snap.BulkMode {
		return " "
	}
	if snap.Selected[id] {
		return "*"
	}
	return "·"
}

// padRow left-aligns cells into fixed-width columns; width 0 means the rest
// of the line.
func padRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		if w == 0 {
			b.WriteString(cell)
			continue
		}
		b.WriteString(pad(cell, w))
	}
	return b.String()
}

func pad(s string, width int) string {
	s = truncate(s, width-1)
	return s + strings.Repeat(" ", width-len([]rune(s)))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "--"
	}
	return s
}

func (m Model) styleRow(line string, focused bool, style lipgloss.Style) string {
	line = truncate(line, max(m.width, 1))
	if focused {
		return m.styles.Selected.Render(line)
	}
	return style.Render(line)
}

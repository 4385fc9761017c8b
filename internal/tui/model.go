// Package tui is the terminal dashboard: a searchable market table with
// an all/favorites tab pair and a per-coin detail pane with price charts.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/favorites"
	"crypto-tracker/internal/service"
	"crypto-tracker/internal/view"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const refreshInterval = 120 * time.Second

// Services bundles everything the dashboard needs.
type Services struct {
	Markets   *service.MarketService
	Favorites *favorites.Store
}

type screen int

const (
	screenTable screen = iota
	screenDetail
)

type marketsMsg struct {
	err error
}

type detailMsg struct {
	gen    int
	detail *domain.CoinDetail
	err    error
}

type chartMsg struct {
	gen    int
	r      domain.TimeRange
	series domain.DisplaySeries
	err    error
}

type tickMsg time.Time

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	svc Services

	table     table.Model
	search    textinput.Model
	searching bool
	tab       view.Tab

	screen     screen
	selectedID string
	detail     *domain.CoinDetail
	chart      domain.DisplaySeries
	chartRange domain.TimeRange

	// generation counters: responses carrying a stale generation are
	// dropped instead of overwriting newer data
	detailGen int
	chartGen  int

	width   int
	height  int
	loading bool
	errMsg  string
}

func NewModel(svc Services) Model {
	search := textinput.New()
	search.Placeholder = "name or symbol"
	search.CharLimit = 40

	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "", Width: 2},
		{Title: "Name", Width: 22},
		{Title: "Symbol", Width: 8},
		{Title: "Price", Width: 14},
		{Title: "24h %", Width: 9},
		{Title: "7d %", Width: 9},
		{Title: "Market Cap", Width: 12},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	return Model{
		svc:        svc,
		table:      tbl,
		search:     search,
		tab:        view.TabAll,
		chartRange: domain.Range7d,
		loading:    true,
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if height > 10 {
		m.table.SetHeight(height - 8)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), scheduleTick())
}

func scheduleTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refreshCmd() tea.Cmd {
	markets := m.svc.Markets
	return func() tea.Msg {
		err := markets.RefreshMarkets(context.Background())
		return marketsMsg{err: err}
	}
}

func (m Model) fetchDetailCmd(gen int, id string) tea.Cmd {
	markets := m.svc.Markets
	return func() tea.Msg {
		detail, err := markets.FetchDetail(context.Background(), id)
		return detailMsg{gen: gen, detail: detail, err: err}
	}
}

func (m Model) fetchChartCmd(gen int, id string, r domain.TimeRange) tea.Cmd {
	markets := m.svc.Markets
	return func() tea.Msg {
		series, err := markets.FetchChart(context.Background(), id, r)
		return chartMsg{gen: gen, r: r, series: series, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), scheduleTick())

	case marketsMsg:
		m.loading = false
		if msg.err != nil {
			// prior rows stay on screen; only the message changes
			m.errMsg = msg.err.Error()
		} else {
			m.errMsg = ""
		}
		m.syncRows()
		return m, nil

	case detailMsg:
		if msg.gen != m.detailGen {
			return m, nil
		}
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.detail = msg.detail
		return m, nil

	case chartMsg:
		if msg.gen != m.chartGen {
			return m, nil
		}
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.chart = msg.series
		m.chartRange = msg.r
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.syncRows()
			return m, cmd
		}
		m.syncRows()
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case "tab":
		if m.tab == view.TabAll {
			m.tab = view.TabFavorites
		} else {
			m.tab = view.TabAll
		}
		m.syncRows()
		return m, nil

	case "f":
		if id := m.cursorID(); id != "" {
			m.svc.Favorites.Toggle(context.Background(), id)
			m.syncRows()
		}
		return m, nil

	case "r":
		m.loading = true
		return m, m.refreshCmd()

	case "enter":
		if m.screen == screenTable {
			if id := m.cursorID(); id != "" {
				return m.openDetail(id)
			}
		}
		return m, nil

	case "esc":
		if m.screen == screenDetail {
			m.screen = screenTable
			m.detail = nil
			m.chart = nil
		} else if m.search.Value() != "" {
			m.search.SetValue("")
			m.syncRows()
		}
		return m, nil

	case "1", "2", "3", "4", "5":
		if m.screen == screenDetail {
			ranges := domain.TimeRanges
			idx := int(msg.String()[0] - '1')
			if idx < len(ranges) {
				return m.switchRange(ranges[idx])
			}
		}
		return m, nil
	}

	if m.screen == screenTable {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) openDetail(id string) (tea.Model, tea.Cmd) {
	m.screen = screenDetail
	m.selectedID = id
	m.detail = nil
	m.chart = nil
	m.detailGen++
	m.chartGen++
	return m, tea.Batch(
		m.fetchDetailCmd(m.detailGen, id),
		m.fetchChartCmd(m.chartGen, id, m.chartRange),
	)
}

func (m Model) switchRange(r domain.TimeRange) (tea.Model, tea.Cmd) {
	m.chartRange = r
	m.chartGen++
	return m, m.fetchChartCmd(m.chartGen, m.selectedID, r)
}

// rows recomputes the projected rows from the current inputs.
func (m *Model) rows() []domain.Coin {
	return view.Project(m.svc.Markets.Snapshot(), m.search.Value(), m.svc.Favorites, m.tab)
}

func (m *Model) syncRows() {
	coins := m.rows()
	rows := make([]table.Row, 0, len(coins))
	for _, coin := range coins {
		star := ""
		if coin.Favorite {
			star = "★"
		}
		change7d := "-"
		if coin.Change7dPct != nil {
			change7d = formatPct(*coin.Change7dPct)
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", coin.MarketCapRank),
			star,
			coin.Name,
			strings.ToUpper(coin.Symbol),
			formatPrice(coin.CurrentPrice),
			formatPct(coin.Change24hPct),
			change7d,
			formatCap(coin.MarketCap),
		})
	}
	m.table.SetRows(rows)
}

// cursorID maps the table cursor back to a coin id through the same
// projection that produced the rows.
func (m *Model) cursorID() string {
	coins := m.rows()
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(coins) {
		return ""
	}
	return coins[idx].ID
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	tabStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("243"))
	activeTab   = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("212"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	upStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Crypto Tracker"))
	b.WriteString("\n")

	if m.screen == screenDetail {
		b.WriteString(m.detailView())
	} else {
		b.WriteString(m.tableView())
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errStyle.Render("error: "+m.errMsg))
	}
	b.WriteString("\n" + m.helpView())
	return b.String()
}

func (m Model) tableView() string {
	var b strings.Builder

	tabs := []string{
		renderTab("All", m.tab == view.TabAll),
		renderTab("Favorites", m.tab == view.TabFavorites),
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString("search: " + m.search.View() + "\n")
	}

	if m.loading && m.svc.Markets.Snapshot() == nil {
		b.WriteString("\nLoading market data...\n")
		return b.String()
	}

	if len(m.table.Rows()) == 0 {
		b.WriteString("\n" + statusStyle.Render(view.EmptyMessage(m.tab, m.search.Value())) + "\n")
		return b.String()
	}

	b.WriteString(m.table.View())
	if snap := m.svc.Markets.Snapshot(); snap != nil {
		b.WriteString("\n" + statusStyle.Render("updated "+snap.FetchedAt.Format("15:04:05")))
	}
	return b.String()
}

func renderTab(label string, active bool) string {
	if active {
		return activeTab.Render("[" + label + "]")
	}
	return tabStyle.Render(label)
}

func (m Model) detailView() string {
	var b strings.Builder

	if m.detail == nil {
		b.WriteString("\nLoading " + m.selectedID + "...\n")
	} else {
		d := m.detail
		fav := ""
		if m.svc.Favorites.IsFavorite(d.ID) {
			fav = " ★"
		}
		b.WriteString(fmt.Sprintf("\n%s (%s)%s  rank #%d\n",
			titleStyle.Render(d.Name), strings.ToUpper(d.Symbol), fav, d.MarketCapRank))
		b.WriteString(fmt.Sprintf("Price %s   MCap %s   Vol %s\n",
			formatPrice(d.CurrentPrice), formatCap(d.MarketCap), formatCap(d.TotalVolume)))
		b.WriteString(fmt.Sprintf("24h %s  7d %s  30d %s  60d %s  1y %s\n",
			colorPct(d.Change24hPct), colorPct(d.Change7dPct), colorPct(d.Change30dPct),
			colorPct(d.Change60dPct), colorPct(d.Change1yPct)))
		b.WriteString(fmt.Sprintf("ATH %s (%s)   ATL %s (%s)\n",
			formatPrice(d.ATH), d.ATHDate.Format("Jan 2 2006"),
			formatPrice(d.ATL), d.ATLDate.Format("Jan 2 2006")))
		if d.CirculatingSupply > 0 {
			b.WriteString(fmt.Sprintf("Supply %s / %s\n",
				formatCap(d.CirculatingSupply), formatCap(d.MaxSupply)))
		}
	}

	b.WriteString("\n" + m.rangeSelector() + "\n")
	if m.chart == nil {
		b.WriteString("Loading chart...\n")
	} else {
		width := m.width
		if width <= 0 {
			width = 80
		}
		b.WriteString(RenderChart(m.chart, width-4, 10))
	}
	return b.String()
}

func (m Model) rangeSelector() string {
	parts := make([]string, 0, len(domain.TimeRanges))
	for i, r := range domain.TimeRanges {
		label := fmt.Sprintf("%d:%s", i+1, r)
		if r == m.chartRange {
			parts = append(parts, activeTab.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) helpView() string {
	if m.screen == screenDetail {
		return helpStyle.Render("1-5 range • f favorite • esc back • q quit")
	}
	return helpStyle.Render("↑/↓ move • enter detail • / search • tab favorites • f toggle • r refresh • q quit")
}

func colorPct(v float64) string {
	s := formatPct(v)
	if v < 0 {
		return downStyle.Render(s)
	}
	return upStyle.Render(s)
}

func formatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

func formatPrice(v float64) string {
	switch {
	case v >= 1000:
		return fmt.Sprintf("$%.0f", v)
	case v >= 1:
		return fmt.Sprintf("$%.2f", v)
	default:
		return fmt.Sprintf("$%.6f", v)
	}
}

func formatCap(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v == 0:
		return "-"
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

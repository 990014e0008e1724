package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"movie-finder-cli/browser"
	"movie-finder-cli/model"
)

type appState int

const (
	stateBrowse appState = iota
	stateDetail
)

// Deps wires the TUI to an already configured browser.
type Deps struct {
	Browser *browser.Browser
	// Context bounds every catalog and backend call. Defaults to Background.
	Context context.Context
}

type appModel struct {
	browser *browser.Browser
	ctx     context.Context

	state  appState
	notice string

	width  int
	height int

	search    textinput.Model
	movieList list.Model
	detail    viewport.Model
	spinner   spinner.Model
}

type errMsg struct {
	err error
}

type queryTickMsg struct {
	tag int
}

type moviesMsg struct {
	result browser.Result
}

type trendingMsg struct {
	result browser.TrendingResult
}

type detailMsg struct {
	result browser.DetailResult
}

func New(deps Deps) tea.Model {
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := appModel{
		browser: deps.Browser,
		ctx:     ctx,
		state:   stateBrowse,
	}

	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "Search through thousands of movies"
	ti.CharLimit = 120
	ti.Focus()
	m.search = ti

	m.movieList = newList("Popular Movies")
	m.detail = viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	req := m.browser.Begin(false)
	trending := m.browser.BeginTrending()
	return tea.Batch(
		m.fetchMoviesCmd(req),
		m.fetchTrendingCmd(trending),
		m.spinner.Tick,
		textinput.Blink,
	)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		var (
			cmd     tea.Cmd
			handled bool
		)
		m, cmd, handled = m.handleKey(msg)
		if handled {
			return m, cmd
		}
		if m.state == stateBrowse && isQueryKey(msg) {
			return m.updateQuery(msg)
		}
		// fallthrough to component update

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoading() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.notice = msg.err.Error()
		return m, nil

	case queryTickMsg:
		if m.browser.SettleQuery(msg.tag) {
			return m, m.startFetch(false)
		}
		return m, nil

	case moviesMsg:
		if m.browser.Apply(msg.result) {
			m.syncList(msg.result.Append)
		}
		return m, nil

	case trendingMsg:
		m.browser.ApplyTrending(msg.result)
		return m, nil

	case detailMsg:
		if m.browser.ApplyDetail(msg.result) {
			m.detail.SetContent(renderDetail(m.browser.Snapshot().Detail))
			m.detail.GotoTop()
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateBrowse:
		m.movieList, cmd = m.movieList.Update(msg)
	case stateDetail:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	if m.state == stateDetail {
		return header + "\n\n" + m.detailView()
	}
	return header + "\n\n" +
		m.trendingView() + "\n\n" +
		m.search.View() + "\n\n" +
		m.resultsView() + "\n" +
		m.pagerView()
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Movie Finder")
	s := m.browser.Snapshot()

	sub := []string{fmt.Sprintf("Mode: %s", s.Mode)}
	if s.Debounced != "" {
		sub = append(sub, fmt.Sprintf("Query: %s", s.Debounced))
	}
	sub = append(sub, fmt.Sprintf("Page %d / %d", s.Page, s.TotalPages))
	meta := "\n" + lipgloss.NewStyle().Faint(true).Render(strings.Join(sub, " • "))

	hints := "ctrl+c quit • type to search • enter details • pgup/pgdown page • ctrl+l load more • ctrl+r retry trending • esc clear"
	if m.state == stateDetail {
		hints = "ctrl+c quit • esc close • o open trailer • ↑/↓ scroll"
	}
	noticeLine := ""
	if m.notice != "" {
		noticeLine = "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render(m.notice)
	}
	return title + meta + noticeLine + "\n" + hint(hints)
}

func (m appModel) trendingView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Trending Movies")
	t := m.browser.Snapshot().Trending

	var body string
	switch {
	case t.Loading:
		body = fmt.Sprintf("%s Loading trending", m.spinner.View())
	case t.Err != "":
		body = errorText(t.Err) + "  " + hint("ctrl+r retry")
	case len(t.Entries) == 0:
		body = hint("No movies found.")
	default:
		parts := make([]string, 0, len(t.Entries))
		for _, e := range t.Entries {
			parts = append(parts, fmt.Sprintf("%d. %s", e.Rank, e.DisplayTitle()))
		}
		body = strings.Join(parts, "   ")
	}
	return title + "\n" + body
}

func (m appModel) resultsView() string {
	s := m.browser.Snapshot()
	switch {
	case s.Loading:
		return fmt.Sprintf("%s Loading movies\n\n%s", m.spinner.View(), hint("Fetching data..."))
	case s.Err != "":
		return errorText(s.Err)
	case len(s.Results) == 0:
		return hint("No movies found.")
	default:
		return m.movieList.View()
	}
}

func (m appModel) pagerView() string {
	prev := "‹ pgup"
	next := "pgdown ›"
	if !m.browser.CanPrev() {
		prev = hint(prev)
	}
	if !m.browser.CanNext() {
		next = hint(next)
	}
	s := m.browser.Snapshot()
	return fmt.Sprintf("%s   %d / %d   %s", prev, s.Page, s.TotalPages, next)
}

func (m appModel) detailView() string {
	d := m.browser.Snapshot().Detail
	switch {
	case d.Loading:
		return fmt.Sprintf("%s Loading movie details\n\n%s", m.spinner.View(), hint("esc close"))
	case d.Err != "":
		return errorText(d.Err) + "\n\n" + hint("esc close")
	default:
		return m.detail.View()
	}
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true
	case "esc":
		if m.state == stateDetail {
			m.browser.CloseDetail()
			m.state = stateBrowse
			return m, nil, true
		}
		m.notice = ""
		if m.search.Value() == "" {
			return m, nil, true
		}
		m.search.SetValue("")
		if m.browser.SettleQuery(m.browser.SetQuery("")) {
			return m, m.startFetch(false), true
		}
		return m, nil, true
	case "o":
		if m.state == stateDetail {
			if trailer, ok := m.browser.Snapshot().Detail.Detail.FirstTrailer(); ok {
				return m, openURLCmd(trailer.WatchURL()), true
			}
			return m, nil, true
		}
	}

	if m.state != stateBrowse {
		return m, nil, false
	}

	switch msg.String() {
	case "pgup", "ctrl+b":
		if m.browser.PrevPage() {
			return m, m.startFetch(false), true
		}
		return m, nil, true
	case "pgdown", "ctrl+n":
		if m.browser.NextPage() {
			return m, m.startFetch(false), true
		}
		return m, nil, true
	case "ctrl+l":
		if m.browser.LoadMore() {
			return m, m.startFetch(true), true
		}
		return m, nil, true
	case "ctrl+r":
		if m.browser.Snapshot().Trending.Loading {
			return m, nil, true
		}
		req := m.browser.BeginTrending()
		return m, tea.Batch(m.fetchTrendingCmd(req), m.spinner.Tick), true
	case "enter":
		return m.openDetail()
	}
	return m, nil, false
}

func (m appModel) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	tag := m.browser.SetQuery(m.search.Value())
	return m, tea.Batch(cmd, m.debounceCmd(tag))
}

func (m appModel) openDetail() (appModel, tea.Cmd, bool) {
	item, ok := m.movieList.SelectedItem().(movieItem)
	if !ok || m.browser.Snapshot().Loading {
		return m, nil, true
	}
	req := m.browser.BeginDetail(item.movie)
	m.state = stateDetail
	m.detail.SetContent("")
	return m, tea.Batch(m.fetchDetailCmd(req), m.spinner.Tick), true
}

// isQueryKey reports whether the key edits the search box.
func isQueryKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes:
		return len(msg.Runes) > 0 && !msg.Alt
	case tea.KeySpace, tea.KeyBackspace, tea.KeyDelete, tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd, tea.KeyCtrlU:
		return true
	default:
		return false
	}
}

func (m appModel) isLoading() bool {
	s := m.browser.Snapshot()
	return s.Loading || s.Trending.Loading || s.Detail.Loading
}

func (m *appModel) syncList(appended bool) {
	s := m.browser.Snapshot()
	m.movieList.Title = "Popular Movies"
	if s.Mode == browser.ModeSearch {
		m.movieList.Title = fmt.Sprintf("Results for %q", s.Debounced)
	}
	index := m.movieList.Index()
	m.movieList.SetItems(buildMovieItems(s.Results, s.Genres))
	if appended {
		m.movieList.Select(index)
	} else {
		m.movieList.Select(0)
	}
}

func (m *appModel) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 12
	if h < 6 {
		h = 6
	}
	m.movieList.SetSize(m.width, h)
	m.search.Width = m.width - len(m.search.Prompt) - 2
	m.detail.Width = m.width
	m.detail.Height = m.height - 6
	if m.state == stateDetail {
		m.detail.SetContent(renderDetail(m.browser.Snapshot().Detail))
	}
}

func (m appModel) debounceCmd(tag int) tea.Cmd {
	return tea.Tick(m.browser.Config().Debounce, func(time.Time) tea.Msg {
		return queryTickMsg{tag: tag}
	})
}

func (m appModel) startFetch(appendResults bool) tea.Cmd {
	req := m.browser.Begin(appendResults)
	return tea.Batch(m.fetchMoviesCmd(req), m.spinner.Tick)
}

func (m appModel) fetchMoviesCmd(req browser.Request) tea.Cmd {
	runner, ctx := m.browser.Runner(), m.ctx
	return func() tea.Msg {
		return moviesMsg{result: runner.Fetch(ctx, req)}
	}
}

func (m appModel) fetchTrendingCmd(req browser.TrendingRequest) tea.Cmd {
	runner, ctx := m.browser.Runner(), m.ctx
	return func() tea.Msg {
		return trendingMsg{result: runner.FetchTrending(ctx, req)}
	}
}

func (m appModel) fetchDetailCmd(req browser.DetailRequest) tea.Cmd {
	runner, ctx := m.browser.Runner(), m.ctx
	return func() tea.Msg {
		return detailMsg{result: runner.FetchDetail(ctx, req)}
	}
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowFilter(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errorText(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(text)
}

func openURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := openURL(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func openURL(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported OS for opening browser: %s", runtime.GOOS)
	}
}

type movieItem struct {
	movie  model.MovieSummary
	genres []string
}

func (m movieItem) Title() string {
	return m.movie.Title
}

func (m movieItem) Description() string {
	return strings.Join([]string{
		"★ " + FormatRating(m.movie.VoteAverage),
		m.movie.Kind(),
		FirstGenre(m.genres),
	}, listSeparator)
}

func (m movieItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{m.movie.Title, m.movie.OriginalTitle}, " "))
}

func buildMovieItems(movies []model.MovieSummary, genres model.GenreMap) []list.Item {
	items := make([]list.Item, 0, len(movies))
	for _, movie := range movies {
		items = append(items, movieItem{movie: movie, genres: genres.Names(movie.GenreIDs)})
	}
	return items
}

// Package tui is the terminal front end: a login page and a dashboard page
// driven by the page controllers, rendered with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/patric-chuzhbe/linkshrink/internal/controller"
	"github.com/patric-chuzhbe/linkshrink/internal/models"
	"github.com/patric-chuzhbe/linkshrink/internal/session"
)

type gatewayAPI interface {
	CreateUser(ctx context.Context, credentials models.Credentials) error
	IssueToken(ctx context.Context, credentials models.Credentials) (string, error)
	ListLinks(ctx context.Context, token string) (models.Links, error)
	CreateLink(ctx context.Context, token, originalURL string) error
}

type sessionKeeper interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	Claims(ctx context.Context) (*session.Claims, error)
}

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

type field int

const (
	fieldSignupEmail field = iota
	fieldSignupPassword
	fieldLoginEmail
	fieldLoginPassword
	fieldCount
)

// claimsMsg carries who the stored token belongs to, for the header only.
type claimsMsg struct {
	signedInAs string
}

// App is the root bubbletea model.
type App struct {
	ctx       context.Context
	bridge    *bridge
	session   sessionKeeper
	dashboard *controller.Dashboard

	page    string
	message models.Message

	// login page
	focus  field
	inputs [fieldCount]string

	// dashboard page
	urlInput   string
	links      models.Links
	cursor     int
	signedInAs string

	width  int
	height int
}

// New builds the app and binds the auth controller to the login page.
func New(ctx context.Context, api gatewayAPI, sess sessionKeeper, b *bridge) App {
	auth := controller.NewAuth(api, sess, authView{b: b})
	auth.Bind()

	return App{
		ctx:       ctx,
		bridge:    b,
		session:   sess,
		dashboard: controller.NewDashboard(api, sess, dashboardView{b: b}),
		focus:     fieldLoginEmail,
	}
}

// Run starts the terminal UI on the dashboard page. Without a stored token
// the dashboard guard sends the user to the login page right away.
func Run(ctx context.Context, api gatewayAPI, sess sessionKeeper) error {
	b := newBridge(nil)
	app := New(ctx, api, sess, b)

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	b.setSend(program.Send)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}

	return nil
}

func (a App) Init() tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{page: models.PageDashboard}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case navigateMsg:
		return a.visit(msg.page)

	case messageMsg:
		a.message = msg.message
		return a, nil

	case linksMsg:
		a.links = msg.links
		if a.cursor >= len(a.links) {
			a.cursor = max(len(a.links)-1, 0)
		}
		return a, nil

	case resetSignupMsg:
		a.inputs[fieldSignupEmail] = ""
		a.inputs[fieldSignupPassword] = ""
		return a, nil

	case resetCreateLinkMsg:
		a.urlInput = ""
		return a, nil

	case claimsMsg:
		a.signedInAs = msg.signedInAs
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			return a, tea.Quit
		}
		if a.page == models.PageDashboard {
			return a.updateDashboard(msg)
		}
		return a.updateLogin(msg)
	}

	return a, nil
}

// visit behaves like loading a page: the previous page state is gone and
// the dashboard runs its guard and first fetch.
func (a App) visit(page string) (tea.Model, tea.Cmd) {
	a.page = page
	a.message = models.Message{}
	a.links = nil
	a.cursor = 0
	a.urlInput = ""
	a.signedInAs = ""

	if page != models.PageDashboard {
		a.inputs = [fieldCount]string{}
		a.focus = fieldLoginEmail
		return a, nil
	}

	ctx, dashboard, sess := a.ctx, a.dashboard, a.session
	return a, func() tea.Msg {
		if !dashboard.Load(ctx) {
			return nil
		}
		claims, err := sess.Claims(ctx)
		if err != nil {
			return nil
		}
		return claimsMsg{signedInAs: claims.Subject}
	}
}

func (a App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		a.focus = (a.focus + 1) % fieldCount
	case "shift+tab", "up":
		a.focus = (a.focus + fieldCount - 1) % fieldCount
	case "enter":
		return a, a.submitAuthForm()
	default:
		a.inputs[a.focus] = editRune(a.inputs[a.focus], msg.String())
	}

	return a, nil
}

func (a App) submitAuthForm() tea.Cmd {
	signup, login, _, _ := a.bridge.handlers()
	ctx := a.ctx

	if a.focus == fieldSignupEmail || a.focus == fieldSignupPassword {
		if signup == nil {
			return nil
		}
		email, password := a.inputs[fieldSignupEmail], a.inputs[fieldSignupPassword]
		return func() tea.Msg {
			signup(ctx, email, password)
			return nil
		}
	}

	if login == nil {
		return nil
	}
	email, password := a.inputs[fieldLoginEmail], a.inputs[fieldLoginPassword]
	return func() tea.Msg {
		login(ctx, email, password)
		return nil
	}
}

func (a App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, _, createLink, logout := a.bridge.handlers()
	ctx := a.ctx

	switch msg.String() {
	case "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down":
		if a.cursor < len(a.links)-1 {
			a.cursor++
		}
	case "enter":
		if createLink == nil {
			return a, nil
		}
		originalURL := strings.TrimSpace(a.urlInput)
		return a, func() tea.Msg {
			createLink(ctx, originalURL)
			return nil
		}
	case "ctrl+r":
		dashboard := a.dashboard
		return a, func() tea.Msg {
			dashboard.FetchLinks(ctx)
			return nil
		}
	case "ctrl+l":
		if logout == nil {
			return a, nil
		}
		return a, func() tea.Msg {
			logout(ctx)
			return nil
		}
	case "ctrl+y":
		a.message = a.copySelected()
	default:
		a.urlInput = editRune(a.urlInput, msg.String())
	}

	return a, nil
}

func (a App) copySelected() models.Message {
	if len(a.links) == 0 {
		return models.Message{Text: "Nothing to copy.", Kind: models.MessageError}
	}
	shortURL := a.links[a.cursor].ShortURL
	if err := writeClipboard(shortURL); err != nil {
		return models.Message{Text: "Could not copy: " + err.Error(), Kind: models.MessageError}
	}

	return models.Message{Text: "Copied " + shortURL, Kind: models.MessageSuccess}
}

func (a App) View() string {
	var body string
	switch a.page {
	case models.PageDashboard:
		body = a.viewDashboard()
	case models.PageLogin:
		body = a.viewLogin()
	default:
		body = dimStyle.Render("Loading…")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("linkshrink"),
		"",
		body,
		"",
		renderMessage(a.message),
	)
}

func (a App) renderField(f field, label string, secret bool) string {
	value := a.inputs[f]
	if secret {
		value = mask(value)
	}
	style := fieldStyle
	if a.focus == f {
		style = focusedStyle
		value += accentStyle.Render("█")
	}

	return fmt.Sprintf("%-10s %s", label, style.Render(value))
}

func (a App) viewLogin() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render("Sign up"),
		a.renderField(fieldSignupEmail, "Email", false),
		a.renderField(fieldSignupPassword, "Password", true),
		"",
		headingStyle.Render("Log in"),
		a.renderField(fieldLoginEmail, "Email", false),
		a.renderField(fieldLoginPassword, "Password", true),
		"",
		dimStyle.Render("tab: next field · enter: submit · esc: quit"),
	)
}

func (a App) viewDashboard() string {
	lines := []string{headingStyle.Render("Your links")}
	if a.signedInAs != "" {
		lines[0] += dimStyle.Render("  signed in as " + a.signedInAs)
	}

	urlWidth := 0
	if a.width > 0 {
		urlWidth = (a.width - 6) / 2
	}
	if len(a.links) == 0 {
		lines = append(lines, dimStyle.Render("No links yet."))
	}
	for i, link := range a.links {
		marker := "  "
		row := shortURLStyle.Render(truncate(link.ShortURL, urlWidth)) + "  " + dimStyle.Render(truncate(link.OriginalURL, urlWidth))
		if i == a.cursor {
			marker = accentStyle.Render("› ")
			row = selectedStyle.Render(row)
		}
		lines = append(lines, marker+row)
	}

	lines = append(lines,
		"",
		fmt.Sprintf("%-10s %s", "New URL", focusedStyle.Render(a.urlInput+accentStyle.Render("█"))),
		"",
		dimStyle.Render("enter: shorten · ↑/↓: select · ctrl+y: copy · ctrl+r: refresh · ctrl+l: log out · esc: quit"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/patric-chuzhbe/linkshrink/internal/controller"
	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

// Messages the views post into the UI loop. Controllers run inside
// commands, so every change they make to the screen arrives as one of these.
type (
	messageMsg         struct{ message models.Message }
	navigateMsg        struct{ page string }
	linksMsg           struct{ links models.Links }
	resetSignupMsg     struct{}
	resetCreateLinkMsg struct{}
)

// bridge connects the controllers to the running program: display changes
// are sent as messages, registered handlers are kept for the UI loop.
type bridge struct {
	mu         sync.Mutex
	send       func(tea.Msg)
	signup     controller.CredentialsHandler
	login      controller.CredentialsHandler
	createLink controller.LinkHandler
	logout     controller.ActionHandler
}

func newBridge(send func(tea.Msg)) *bridge {
	return &bridge{send: send}
}

func (b *bridge) post(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()

	if send != nil {
		send(msg)
	}
}

func (b *bridge) setSend(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *bridge) handlers() (signup, login controller.CredentialsHandler, createLink controller.LinkHandler, logout controller.ActionHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.signup, b.login, b.createLink, b.logout
}

type authView struct {
	b *bridge
}

func (v authView) ShowMessage(message models.Message) { v.b.post(messageMsg{message: message}) }
func (v authView) Navigate(page string)                { v.b.post(navigateMsg{page: page}) }
func (v authView) ResetSignupForm()                    { v.b.post(resetSignupMsg{}) }

func (v authView) OnSignup(handler controller.CredentialsHandler) {
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	v.b.signup = handler
}

func (v authView) OnLogin(handler controller.CredentialsHandler) {
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	v.b.login = handler
}

type dashboardView struct {
	b *bridge
}

func (v dashboardView) ShowMessage(message models.Message) { v.b.post(messageMsg{message: message}) }
func (v dashboardView) Navigate(page string)                { v.b.post(navigateMsg{page: page}) }
func (v dashboardView) RenderLinks(links models.Links)      { v.b.post(linksMsg{links: links}) }
func (v dashboardView) ResetCreateLinkForm()                { v.b.post(resetCreateLinkMsg{}) }

func (v dashboardView) OnCreateLink(handler controller.LinkHandler) {
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	v.b.createLink = handler
}

func (v dashboardView) OnLogout(handler controller.ActionHandler) {
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	v.b.logout = handler
}

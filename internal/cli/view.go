package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/linkshrink/internal/controller"
	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

// consoleView plays both pages on a plain writer. It remembers the last
// message and page so the command can decide its exit status.
type consoleView struct {
	out     io.Writer
	page    string
	message models.Message

	createLink controller.LinkHandler
	logout     controller.ActionHandler
}

func (v *consoleView) ShowMessage(message models.Message) {
	v.message = message
	fmt.Fprintln(v.out, message.Text)
}

func (v *consoleView) Navigate(page string) {
	v.page = page
}

func (v *consoleView) ResetSignupForm() {}

func (v *consoleView) ResetCreateLinkForm() {}

func (v *consoleView) OnSignup(controller.CredentialsHandler) {}

func (v *consoleView) OnLogin(controller.CredentialsHandler) {}

func (v *consoleView) OnCreateLink(handler controller.LinkHandler) {
	v.createLink = handler
}

func (v *consoleView) OnLogout(handler controller.ActionHandler) {
	v.logout = handler
}

// RenderLinks prints the complete list every time it is called.
func (v *consoleView) RenderLinks(links models.Links) {
	if len(links) == 0 {
		fmt.Fprintln(v.out, "No links yet.")
		return
	}

	rows := funk.Map(links, func(link models.Link) []string {
		return []string{link.ShortURL, link.OriginalURL}
	}).([][]string)

	fmt.Fprintln(v.out, table.New().
		Headers("SHORT URL", "ORIGINAL URL").
		Rows(rows...).
		String())
}

func (v *consoleView) failed() bool {
	return v.message.Kind == models.MessageError
}

// reset forgets the outcome of the previous command.
func (v *consoleView) reset() {
	v.page = ""
	v.message = models.Message{}
}

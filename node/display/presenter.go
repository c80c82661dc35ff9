// Package display forwards node events to local output devices.
// Presenters never report failure to their caller.
package display

import "github.com/viatext/vtnode/std/log"

// Presenter receives identity and message events.
type Presenter interface {
	IdentityChanged(id string)
	Message(title string, text string)
}

// Null discards every event.
type Null struct{}

func (Null) IdentityChanged(string) {}
func (Null) Message(string, string) {}

// LogPresenter writes events to the default logger.
type LogPresenter struct{}

func (LogPresenter) String() string {
	return "display"
}

func (p LogPresenter) IdentityChanged(id string) {
	log.Info(p, "Identity changed", "id", id)
}

func (p LogPresenter) Message(title string, text string) {
	log.Info(p, title, "text", text)
}

// Multi fans events out to several presenters in order.
type Multi []Presenter

func (m Multi) IdentityChanged(id string) {
	for _, p := range m {
		p.IdentityChanged(id)
	}
}

func (m Multi) Message(title string, text string) {
	for _, p := range m {
		p.Message(title, text)
	}
}

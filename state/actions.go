package state

import "github.com/deemkeen/postbox/domain"

// Action is the closed set of global intents. Only types in this package
// implement it.
type Action interface {
	isGlobalAction()
}

type Login struct {
	Data domain.User
}

type Logout struct{}

type FlashMessage struct {
	Value string
}

// DismissFlashMessage drops the oldest flash message once the display layer
// is done showing it.
type DismissFlashMessage struct{}

type OpenSearch struct{}

type CloseSearch struct{}

type ToggleChat struct{}

type CloseChat struct{}

type IncrementUnreadChatCount struct{}

type ClearUnreadChatCount struct{}

func (Login) isGlobalAction()                    {}
func (Logout) isGlobalAction()                   {}
func (FlashMessage) isGlobalAction()             {}
func (DismissFlashMessage) isGlobalAction()      {}
func (OpenSearch) isGlobalAction()               {}
func (CloseSearch) isGlobalAction()              {}
func (ToggleChat) isGlobalAction()               {}
func (CloseChat) isGlobalAction()                {}
func (IncrementUnreadChatCount) isGlobalAction() {}
func (ClearUnreadChatCount) isGlobalAction()     {}

// Flash is shorthand for dispatching a flash message.
func Flash(g *Global, value string) {
	g.Dispatch(FlashMessage{Value: value})
}

package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/postbox/ui/common"
)

// Bridge carries core events into the running program. It is the views'
// Navigator and the notify hook of every mounted store.
type Bridge struct {
	program atomic.Pointer[tea.Program]
}

func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach starts forwarding. Events before Attach are dropped; the first
// frame reads every snapshot anyway.
func (b *Bridge) Attach(p *tea.Program) {
	b.program.Store(p)
}

func (b *Bridge) Navigate(path string) {
	b.send(common.NavigateMsg{Path: path})
}

func (b *Bridge) Changed() {
	b.send(common.StateChangedMsg{})
}

func (b *Bridge) send(msg tea.Msg) {
	if p := b.program.Load(); p != nil {
		p.Send(msg)
	}
}

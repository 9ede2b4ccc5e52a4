// Package term implements a terminal presenter that renders toasts as
// styled lines. It confirms show and dismiss synchronously, which makes it
// useful both as a demo presenter and as a reference for the confirmation
// contract.
package term

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/LucaLeukert/toastd/internal/model"
	"github.com/LucaLeukert/toastd/internal/queue"
)

// Host is the slice of the coordinator the presenter reports back to.
type Host interface {
	Shown(id string)
	Dismissed(id string, reason model.DismissReason)
}

var variantStyles = map[model.Variant]lipgloss.Style{
	model.VariantSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	model.VariantError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	model.VariantInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	model.VariantLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
}

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Underline(true)
)

// Presenter writes one styled line per lifecycle transition.
type Presenter struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
	host   Host
}

// New creates a terminal presenter writing to w.
func New(w io.Writer, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{w: w, logger: logger}
}

// SetHost attaches the coordinator the presenter confirms to.
func (p *Presenter) SetHost(h Host) {
	p.mu.Lock()
	p.host = h
	p.mu.Unlock()
}

// Present renders the toast and confirms it as shown.
func (p *Presenter) Present(t *model.Toast, edge model.Edge, placement queue.Placement) {
	p.mu.Lock()
	host := p.host
	fmt.Fprintln(p.w, p.renderLine(t, string(edge)+"/"+string(placement)))
	p.mu.Unlock()

	if host != nil {
		host.Shown(t.ID)
	}
}

// Update re-renders an already-visible toast.
func (p *Presenter) Update(id string, t *model.Toast) {
	p.mu.Lock()
	fmt.Fprintln(p.w, p.renderLine(t, "update"))
	p.mu.Unlock()
}

// RequestDismiss prints the removal and confirms it immediately; a terminal
// has no exit animation to wait for.
func (p *Presenter) RequestDismiss(id string, reason model.DismissReason) {
	p.mu.Lock()
	host := p.host
	fmt.Fprintln(p.w, dimStyle.Render(fmt.Sprintf("  × %s (%s)", id, reason)))
	p.mu.Unlock()

	if host != nil {
		host.Dismissed(id, reason)
	}
}

// SetCollapsedIndicator prints the queue depth for an edge when non-zero.
func (p *Presenter) SetCollapsedIndicator(edge model.Edge, pending int) {
	if pending == 0 {
		return
	}
	p.mu.Lock()
	fmt.Fprintln(p.w, dimStyle.Render(fmt.Sprintf("  … %d queued (%s)", pending, edge)))
	p.mu.Unlock()
}

func (p *Presenter) renderLine(t *model.Toast, tag string) string {
	style, ok := variantStyles[t.Variant]
	if !ok {
		style = variantStyles[model.VariantInfo]
	}

	line := style.Render(fmt.Sprintf("[%s]", t.Variant))
	if t.Title != "" {
		line += " " + style.Render(t.Title) + ":"
	}
	line += " " + t.Message
	if t.ActionLabel != "" {
		line += " " + actionStyle.Render("["+t.ActionLabel+"]")
	}
	line += " " + dimStyle.Render("("+tag+")")
	if !t.Infinite() {
		expires := humanize.RelTime(time.Now().Add(t.Duration), time.Now(), "", "from now")
		line += " " + dimStyle.Render("expires "+expires)
	}
	return line
}

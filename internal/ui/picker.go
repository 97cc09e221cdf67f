package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/krypton/internal/wallet"
)

// ErrPickCancelled is returned when the user leaves the picker without
// choosing.
var ErrPickCancelled = errors.New("selection cancelled")

// pickerModel is the Bubble Tea model for choosing a wallet.
type pickerModel struct {
	title    string
	wallets  []*wallet.Wallet
	cursor   int
	selected *wallet.Wallet
	quitting bool
}

func newPicker(title string, wallets []*wallet.Wallet) pickerModel {
	m := pickerModel{title: title, wallets: wallets}
	for i, w := range wallets {
		if w.IsDefault {
			m.cursor = i
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.wallets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.wallets[m.cursor]
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n\n")

	for i, w := range m.wallets {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}

		line := prefix + padR(StyleValue.Render(w.Name), 16) + "  " + StyleMeta.Render(w.Address)
		switch {
		case !w.CanSign():
			line += StyleDim.Render("  watch-only")
		case w.IsDefault:
			line += StyleSuccess.Render("  ★ default")
		}

		if i == m.cursor {
			sb.WriteString(StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Enter ] select   [ q ] cancel") + "\n")
	return sb.String()
}

// PickWallet runs an interactive wallet picker and returns the chosen
// wallet's name, or ErrPickCancelled.
func PickWallet(title string, wallets []*wallet.Wallet) (string, error) {
	if len(wallets) == 0 {
		return "", fmt.Errorf("no wallets to pick from")
	}

	final, err := tea.NewProgram(newPicker(title, wallets), tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}

	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", ErrPickCancelled
	}
	return fm.selected.Name, nil
}

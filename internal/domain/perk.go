package domain

import (
	"fmt"
	"strings"
)

// PerkDescription holds the named text fields of a perk, each optional
type PerkDescription struct {
	MainEffect       string `json:"main_effect,omitempty"`
	SecondaryEffect  string `json:"secondary_effect,omitempty"`
	AdditionalEffect string `json:"additional_effect,omitempty"`
	Quote            string `json:"quote,omitempty"`
}

// Lines returns the non-empty description fields in display order
func (d PerkDescription) Lines() []string {
	lines := make([]string, 0, 4)
	for _, field := range []string{d.MainEffect, d.SecondaryEffect, d.AdditionalEffect, d.Quote} {
		if strings.TrimSpace(field) != "" {
			lines = append(lines, field)
		}
	}
	return lines
}

// Perk represents a catalog entry. Perks are immutable once the catalog is loaded.
type Perk struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Character   string          `json:"character,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description PerkDescription `json:"description"`
	ImageRef    string          `json:"image_ref,omitempty"`
}

// HelpText formats the perk title and its description lines for chat output
func (p Perk) HelpText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- ***%s*** ---\n", strings.ToUpper(p.Title))
	for _, line := range p.Description.Lines() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

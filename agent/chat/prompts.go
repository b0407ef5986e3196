package chat

import (
	_ "embed"
	"strings"

	contractx "github.com/avamind/ava-core/agent/contract"
)

var (
	//go:embed template/secretary.txt
	secretaryRaw string

	//go:embed template/intimate_playful.txt
	intimatePlayfulRaw string

	//go:embed template/intimate_dominant.txt
	intimateDominantRaw string

	//go:embed template/intimate_shy.txt
	intimateShyRaw string

	//go:embed template/intimate_caring.txt
	intimateCaringRaw string

	//go:embed template/intimate_intellectual.txt
	intimateIntellectualRaw string

	//go:embed template/intimate_adventurous.txt
	intimateAdventurousRaw string
)

var intimateTemplates = map[string]string{
	"playful":      intimatePlayfulRaw,
	"dominant":     intimateDominantRaw,
	"shy":          intimateShyRaw,
	"caring":       intimateCaringRaw,
	"intellectual": intimateIntellectualRaw,
	"adventurous":  intimateAdventurousRaw,
}

// systemPrompt renders the mode-appropriate persona prompt for a profile.
// Unknown intimate personas fall back to caring.
func systemPrompt(mode contractx.Mode, profile contractx.Profile) string {
	name := profile.Name
	if name == "" {
		name = "Ava"
	}
	persona := strings.ToLower(strings.TrimSpace(profile.Persona))
	if persona == "" {
		persona = "caring"
	}

	if mode == contractx.ModeIntimate {
		tmpl, ok := intimateTemplates[persona]
		if !ok {
			tmpl = intimateCaringRaw
		}
		return renderPrompt(tmpl, name, persona)
	}
	return renderPrompt(secretaryRaw, name, persona)
}

func renderPrompt(tmpl, name, persona string) string {
	out := strings.ReplaceAll(tmpl, "{name}", name)
	out = strings.ReplaceAll(out, "{personality}", persona)
	return strings.TrimSpace(out)
}

package chat

import (
	"strings"
	"testing"

	contractx "github.com/avamind/ava-core/agent/contract"
)

func TestSystemPromptPerMode(t *testing.T) {
	t.Parallel()

	profile := contractx.Profile{Name: "Luna", Persona: "playful"}

	secretary := systemPrompt(contractx.ModeSecretary, profile)
	if !strings.Contains(secretary, "Luna") || !strings.Contains(secretary, "playful") {
		t.Fatalf("secretary prompt missing substitutions: %q", secretary)
	}
	if strings.Contains(secretary, "{name}") || strings.Contains(secretary, "{personality}") {
		t.Fatal("placeholders must not survive rendering")
	}

	intimate := systemPrompt(contractx.ModeIntimate, profile)
	if !strings.Contains(intimate, "private conversation") {
		t.Fatalf("intimate prompt = %q, want persona template", intimate)
	}
	if intimate == secretary {
		t.Fatal("the two modes must render different prompts")
	}
}

func TestSystemPromptUnknownPersonaFallsBackToCaring(t *testing.T) {
	t.Parallel()

	got := systemPrompt(contractx.ModeIntimate, contractx.Profile{Name: "Luna", Persona: "astronaut"})
	if !strings.Contains(got, "caring") {
		t.Fatalf("prompt = %q, want caring fallback", got)
	}

	// Empty profile still renders something usable.
	got = systemPrompt(contractx.ModeIntimate, contractx.Profile{})
	if !strings.Contains(got, "Ava") {
		t.Fatalf("prompt = %q, want default name", got)
	}
}

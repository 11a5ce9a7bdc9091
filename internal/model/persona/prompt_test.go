package persona

import (
	"strings"
	"testing"
)

func TestBuildSystemPromptForErick(t *testing.T) {
	prompt := BuildSystemPrompt(Erick())
	if !strings.HasPrefix(prompt, "Eres Erick, un amigo virtual de apoyo emocional.") {
		t.Fatalf("unexpected prompt start: %q", prompt[:40])
	}
	for _, section := range []string{"PERSONALIDAD:", "FORMA DE HABLAR:", "LÍMITES:", "EJEMPLOS DE RESPUESTAS:"} {
		if !strings.Contains(prompt, section) {
			t.Fatalf("prompt missing section %q", section)
		}
	}
	if !strings.Contains(prompt, "- NO diagnosticas ni recetas") {
		t.Fatal("prompt missing safety limits")
	}
}

func TestBuildSystemPromptIsStable(t *testing.T) {
	if BuildSystemPrompt(Erick()) != BuildSystemPrompt(Erick()) {
		t.Fatal("system prompt should be constant")
	}
}

func TestBuildSystemPromptFallsBackForUnknownPersona(t *testing.T) {
	prompt := BuildSystemPrompt(Persona{ID: "guest", Name: "Ana", Title: "oyente", Tone: "tranquilo"})
	if !strings.HasPrefix(prompt, "Eres Ana, oyente.") {
		t.Fatalf("unexpected fallback prompt: %q", prompt)
	}
}

package llm

import (
	"testing"
)

func TestNewProviderSelection(t *testing.T) {
	p, err := NewProvider(Config{Provider: ""})
	if err != nil || p != nil {
		t.Errorf("empty provider should disable extraction, got %v / %v", p, err)
	}

	p, err = NewProvider(Config{Provider: "openai", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("openai provider: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("expected openai, got %s", p.Name())
	}

	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("openai without an API key should fail")
	}

	p, err = NewProvider(Config{Provider: "OLLAMA"})
	if err != nil {
		t.Fatalf("ollama provider: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("expected ollama, got %s", p.Name())
	}

	if _, err := NewProvider(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("unknown provider should fail")
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		`{"claims":[]}`:                        `{"claims":[]}`,
		"```json\n{\"claims\":[]}\n```":        `{"claims":[]}`,
		"```\n{\"claims\":[]}\n```":            `{"claims":[]}`,
		"  \n```json\n{\"claims\":[]}\n```\n ": `{"claims":[]}`,
	}
	for input, want := range cases {
		if got := StripCodeFences(input); got != want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", input, got, want)
		}
	}
}

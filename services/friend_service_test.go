package services

import (
	"strings"
	"testing"
)

func TestGenerateFriendCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateFriendCode()
		if err != nil {
			t.Fatalf("generateFriendCode() error = %v", err)
		}
		if len(code) != friendCodeLength {
			t.Fatalf("len(code) = %d, want %d", len(code), friendCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(friendCodeAlphabet, r) {
				t.Fatalf("code %q contains invalid character %q", code, r)
			}
		}
		seen[code] = true
	}
	// 100 кодов из 36^5 — коллизии всех подряд крайне маловероятны.
	if len(seen) < 90 {
		t.Errorf("only %d distinct codes out of 100", len(seen))
	}
}

func TestGenerateFriendCodeCoversAlphabet(t *testing.T) {
	// 2000 кодов по 5 символов: каждый символ алфавита должен встретиться.
	counts := make(map[rune]int, len(friendCodeAlphabet))
	for i := 0; i < 2000; i++ {
		code, err := generateFriendCode()
		if err != nil {
			t.Fatalf("generateFriendCode() error = %v", err)
		}
		for _, r := range code {
			counts[r]++
		}
	}
	for _, r := range friendCodeAlphabet {
		if counts[r] == 0 {
			t.Errorf("character %q never generated", r)
		}
	}
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		url  string
		want MatchSource
	}{
		{"https://www.sofascore.com/football/match/x#id:1", SourceSofascore},
		{"https://es.besoccer.com/partido/a/b/1", SourceBesoccer},
		{"", SourceSofascore},
	}
	for _, tt := range tests {
		if got := detectSource(tt.url); got != tt.want {
			t.Errorf("detectSource(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

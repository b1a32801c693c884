package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Backpropagation: A Tour", "Backpropagation- A Tour"},
		{"a/b\\c", "a-b-c"},
		{"what?", "what"},
		{"  spaced  ", "spaced"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("Scene One!"); got != "scene_one" {
		t.Fatalf("unexpected token: %q", got)
	}
	if got := SanitizeToken(""); got != "unknown" {
		t.Fatalf("expected unknown for empty input, got %q", got)
	}
}

func TestDeliverableName(t *testing.T) {
	if got := DeliverableName("Backpropagation Explained"); got != "Backpropagation_Explained" {
		t.Fatalf("unexpected deliverable name: %q", got)
	}
	if got := DeliverableName("  lots   of \t gaps "); got != "lots_of_gaps" {
		t.Fatalf("unexpected deliverable name: %q", got)
	}
	if got := DeliverableName(""); got != "untitled" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := DisplayTitle("the chain rule"); got != "The Chain Rule" {
		t.Fatalf("unexpected display title: %q", got)
	}
}

package services

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "Senior Python Developer", "senior python developer"},
		{"keeps tech symbols", "C++ and C# and Node.js", "c++ and c# and node.js"},
		{"keeps ci/cd", "CI/CD pipelines", "ci/cd pipelines"},
		{"strips punctuation", "skills: python, sql!", "skills python sql"},
		{"collapses whitespace", "a\t b\n\nc", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Fatalf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Go, Python & node.js")
	want := []string{"go", "python", "node.js"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}

	if got := Tokenize(""); got != nil {
		t.Fatalf("Tokenize(empty) = %v, want nil", got)
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("  hello\n\n  world  ", 100); got != "hello world" {
		t.Fatalf("Excerpt = %q, want %q", got, "hello world")
	}

	long := Excerpt("abcdef ghij", 6)
	if long != "abcdef" {
		t.Fatalf("Excerpt truncation = %q, want %q", long, "abcdef")
	}

	if got := Excerpt("", 10); got != "" {
		t.Fatalf("Excerpt(empty) = %q, want empty", got)
	}
}

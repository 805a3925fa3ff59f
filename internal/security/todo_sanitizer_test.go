package security

import "testing"

var _ TodoSanitizerService = (*todoSanitizer)(nil)

func TestSanitizeTitle_RemovesScriptTags(t *testing.T) {
	s := NewTodoSanitizer()

	got := s.SanitizeTitle(`Buy milk<script>alert("xss")</script>`)
	if got != "Buy milk" {
		t.Errorf("SanitizeTitle = %q, want %q", got, "Buy milk")
	}
}

func TestSanitizeTitle_RemovesAllMarkup(t *testing.T) {
	s := NewTodoSanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold tag", "<b>urgent</b>", "urgent"},
		{"iframe", `<iframe src="https://evil.example"></iframe>`, ""},
		{"event handler", `<img src=x onerror=alert(1)>note`, "note"},
		{"plain text unchanged", "Walk the dog", "Walk the dog"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SanitizeTitle(tt.in); got != tt.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeDescription_RemovesStyleTags(t *testing.T) {
	s := NewTodoSanitizer()

	got := s.SanitizeDescription("<style>body{display:none}</style>2 liters")
	if got != "2 liters" {
		t.Errorf("SanitizeDescription = %q, want %q", got, "2 liters")
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewTodoSanitizer()

	once := s.SanitizeTitle("<b>hello</b> world")
	twice := s.SanitizeTitle(once)
	if once != twice {
		t.Errorf("sanitization is not idempotent: %q != %q", once, twice)
	}
}

package watch

import "testing"

func TestNameFilter(t *testing.T) {
	f := NewNameFilter("patterns.yaml", "templates.yaml")
	tests := []struct {
		path string
		want bool
	}{
		{"/ws/.riskgate/patterns.yaml", true},
		{"/ws/.riskgate/templates.yaml", true},
		{"/ws/.riskgate/riskgate.yaml", false},
		{"/ws/.riskgate/events.jsonl", false},
		{"/ws/.riskgate/.patterns.yaml.swp", false},
		{"/ws/.riskgate/patterns.yaml~", false},
		{"patterns.yaml", true},
	}
	for _, tt := range tests {
		if got := f.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

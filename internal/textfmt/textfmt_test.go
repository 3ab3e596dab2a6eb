package textfmt

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	long := strings.Repeat("x", BlockThreshold)
	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantText string
	}{
		{"plain prose", "Which command lists files?", KindProse, "Which command lists files?"},
		{"empty", "", KindProse, ""},
		{"lone backtick", "`", KindProse, "`"},
		{"inline code", "`ls -la`", KindInline, "ls -la"},
		{"empty literal", "``", KindInline, ""},
		{"exactly threshold", "`" + long + "`", KindInline, long},
		{"over threshold", "`" + long + "y`", KindBlock, long + "y"},
		{"multi-line", "`for f in *; do\n  echo $f\ndone`", KindBlock, "for f in *; do\n  echo $f\ndone"},
		{"two literals", "`ls` or `dir`", KindProse, "`ls` or `dir`"},
		{"open only", "`ls -la", KindProse, "`ls -la"},
		{"embedded code", "Run `ls` now", KindProse, "Run `ls` now"},
		{"multibyte under threshold", "`" + strings.Repeat("é", BlockThreshold) + "`", KindInline, strings.Repeat("é", BlockThreshold)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			if got.Kind != tt.wantKind {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.input, got.Kind, tt.wantKind)
			}
			if got.Text != tt.wantText {
				t.Errorf("Classify(%q).Text = %q, want %q", tt.input, got.Text, tt.wantText)
			}
		})
	}
}

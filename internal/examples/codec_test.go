package examples

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignoreID = cmpopts.IgnoreFields(Pair{}, "ID")

func TestParseExamples(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Pair
	}{
		{
			name: "no block",
			text: "You are terse.",
			want: []Pair{},
		},
		{
			name: "single pair",
			text: "Base\n\n<examples>\n<user>\nhi\n</user>\n<assistant>\nhello\n</assistant>\n</examples>",
			want: []Pair{{User: "hi", Assistant: "hello"}},
		},
		{
			name: "missing assistant becomes empty",
			text: "<examples><user>a</user><user>b</user><assistant>x</assistant></examples>",
			want: []Pair{{User: "a", Assistant: "x"}, {User: "b", Assistant: ""}},
		},
		{
			name: "missing user becomes empty",
			text: "<examples><assistant>x</assistant><assistant>y</assistant></examples>",
			want: []Pair{{User: "", Assistant: "x"}, {User: "", Assistant: "y"}},
		},
		{
			name: "values trimmed and multiline preserved",
			text: "<examples><user>  line one\nline two  </user><assistant>\n\tok\n</assistant></examples>",
			want: []Pair{{User: "line one\nline two", Assistant: "ok"}},
		},
		{
			name: "only first block used",
			text: "<examples><user>a</user></examples> and <examples><user>b</user></examples>",
			want: []Pair{{User: "a", Assistant: ""}},
		},
		{
			name: "unclosed block yields nothing",
			text: "<examples><user>a</user>",
			want: []Pair{},
		},
		{
			name: "markers are case sensitive",
			text: "<EXAMPLES><user>a</user></EXAMPLES>",
			want: []Pair{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseExamples(tt.text)
			if got == nil {
				t.Fatal("ParseExamples() returned nil, want non-nil slice")
			}
			if diff := cmp.Diff(tt.want, got, ignoreID); diff != "" {
				t.Errorf("ParseExamples() mismatch (-want +got):\n%s", diff)
			}
			for _, p := range got {
				if p.ID == "" {
					t.Error("pair missing ID")
				}
			}
		})
	}
}

func TestParseExamples_AssignsDistinctIDs(t *testing.T) {
	pairs := ParseExamples("<examples><user>a</user><user>b</user></examples>")
	if len(pairs) != 2 || pairs[0].ID == pairs[1].ID {
		t.Fatalf("expected two pairs with distinct IDs, got %+v", pairs)
	}
}

func TestExtractBaseText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"no block", "  plain text \n", "plain text"},
		{"block at end", "Be brief.\n\n<examples><user>a</user></examples>", "Be brief."},
		{"block in middle", "Before\n<examples>\n<user>a</user>\n</examples>\nAfter", "Before\n\nAfter"},
		{"only block", "<examples><user>a</user></examples>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractBaseText(tt.text); got != tt.want {
				t.Errorf("ExtractBaseText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatExamples(t *testing.T) {
	got := FormatExamples([]Pair{
		{User: " hi ", Assistant: "hello"},
		{User: "", Assistant: "dropped"},
		{User: "bye", Assistant: ""},
	})
	want := "<examples>\n" +
		"<user>\nhi\n</user>\n<assistant>\nhello\n</assistant>\n\n" +
		"<user>\nbye\n</user>\n<assistant>\n\n</assistant>\n" +
		"</examples>"
	if got != want {
		t.Errorf("FormatExamples() =\n%q\nwant\n%q", got, want)
	}
}

func TestEmptyExamplesElision(t *testing.T) {
	if got := FormatExamples(nil); got != "" {
		t.Errorf("FormatExamples(nil) = %q, want empty", got)
	}
	if got := FormatExamples([]Pair{{User: "  ", Assistant: "x"}}); got != "" {
		t.Errorf("FormatExamples(blank user) = %q, want empty", got)
	}
	if got := Compose("  Be helpful.  ", nil); got != "Be helpful." {
		t.Errorf("Compose(base, nil) = %q, want %q", got, "Be helpful.")
	}
	if strings.Contains(Compose("x", []Pair{{User: "", Assistant: "y"}}), blockOpen) {
		t.Error("Compose() appended a block for pairs with only empty users")
	}
}

func TestComposeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		pairs []Pair
		want  []Pair
	}{
		{
			name:  "simple",
			base:  "You are a pirate.",
			pairs: []Pair{{User: "hi", Assistant: "arr"}},
			want:  []Pair{{User: "hi", Assistant: "arr"}},
		},
		{
			name: "drops empty users and trims",
			base: "\n  Multi\nline base  \n",
			pairs: []Pair{
				{User: "  q1 ", Assistant: " a1\n"},
				{User: "", Assistant: "ignored"},
				{User: "q2", Assistant: ""},
			},
			want: []Pair{
				{User: "q1", Assistant: "a1"},
				{User: "q2", Assistant: ""},
			},
		},
		{
			name:  "empty base",
			base:  "",
			pairs: []Pair{{User: "only", Assistant: "examples"}},
			want:  []Pair{{User: "only", Assistant: "examples"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composed := Compose(tt.base, tt.pairs)

			base, pairs := Split(composed)
			if base != strings.TrimSpace(tt.base) {
				t.Errorf("base = %q, want %q", base, strings.TrimSpace(tt.base))
			}
			if diff := cmp.Diff(tt.want, pairs, ignoreID); diff != "" {
				t.Errorf("pairs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComposeIdempotence(t *testing.T) {
	inputs := []string{
		"Base text\n\n<examples>\n<user>a</user>\n<assistant>b</assistant>\n<user>c</user>\n</examples>",
		"<examples><assistant>orphan</assistant><user>q</user></examples> trailing words",
		"no examples at all",
	}

	for _, text := range inputs {
		once := Compose(ExtractBaseText(text), ParseExamples(text))
		twice := Compose(ExtractBaseText(once), ParseExamples(once))
		if once != twice {
			t.Errorf("recompose not stable:\nonce:  %q\ntwice: %q", once, twice)
		}
		if diff := cmp.Diff(ParseExamples(once), ParseExamples(twice), ignoreID); diff != "" {
			t.Errorf("pairs drifted (-once +twice):\n%s", diff)
		}
	}
}

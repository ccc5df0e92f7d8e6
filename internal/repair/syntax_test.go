package repair

import (
	"strings"
	"testing"

	"github.com/deeklead/wfmend/internal/document"
	"github.com/deeklead/wfmend/internal/parser"
)

func TestFixTextTrailingWhitespace(t *testing.T) {
	fixed, _ := FixText("name: \"X\"   \njobs: \"\"\t\n")
	if strings.Contains(fixed, " \n") || strings.Contains(fixed, "\t\n") {
		t.Errorf("trailing whitespace not stripped: %q", fixed)
	}
}

func TestFixTextTabIndentation(t *testing.T) {
	fixed, _ := FixText("jobs:\n\tbuild:\n\t\truns-on: \"r\"\n")
	want := "jobs:\n  build:\n    runs-on: \"r\"\n"
	if fixed != want {
		t.Errorf("FixText() = %q, want %q", fixed, want)
	}
}

func TestFixTextBareKeyCoercion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare key with no block",
			input: "name:\n",
			want:  "name: \"\"\n",
		},
		{
			name:  "bare key before sibling",
			input: "name:\njobs: \"\"\n",
			want:  "name: \"\"\njobs: \"\"\n",
		},
		{
			// A key opening an indented block is a mapping header and
			// must not be touched.
			name:  "block opener untouched",
			input: "jobs:\n  a: \"\"\n",
			want:  "jobs:\n  a: \"\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed, _ := FixText(tt.input)
			if fixed != tt.want {
				t.Errorf("FixText() = %q, want %q", fixed, tt.want)
			}
		})
	}
}

func TestFixTextQuotesReservedCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "colon in value",
			input: "cmd: echo: hi\n",
			want:  "cmd: \"echo: hi\"\n",
		},
		{
			name:  "quote in value",
			input: `say: it"s fine` + "\n",
			want:  `say: "it\"s fine"` + "\n",
		},
		{
			name:  "sequence item value",
			input: "steps:\n  - run: echo: done\n",
			want:  "steps:\n  - run: \"echo: done\"\n",
		},
		{
			name:  "already quoted left alone",
			input: "cmd: \"echo: hi\"\n",
			want:  "cmd: \"echo: hi\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed, _ := FixText(tt.input)
			if fixed != tt.want {
				t.Errorf("FixText() = %q, want %q", fixed, tt.want)
			}
		})
	}
}

func TestFixTextDuplicateTopLevelKeys(t *testing.T) {
	input := "name: \"Build\"\nname: \"Build2\"\njobs:\n  a:\n    runs-on: \"r\"\n"
	fixed, actions := FixText(input)

	if strings.Contains(fixed, "Build2") {
		t.Errorf("duplicate not removed: %q", fixed)
	}
	if !strings.Contains(fixed, "name: \"Build\"") {
		t.Errorf("first occurrence lost: %q", fixed)
	}
	if len(actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(actions))
	}
	if actions[0].Code != document.ActionDuplicateKeyRemoved {
		t.Errorf("action code = %q, want %q", actions[0].Code, document.ActionDuplicateKeyRemoved)
	}
	if actions[0].Path.String() != "name" {
		t.Errorf("action path = %q, want name", actions[0].Path)
	}
}

func TestFixTextDuplicateKeyDropsWholeBlock(t *testing.T) {
	input := "jobs:\n  a:\n    runs-on: \"r\"\njobs:\n  b:\n    runs-on: \"x\"\nname: \"N\"\n"
	fixed, actions := FixText(input)

	if strings.Contains(fixed, "b:") {
		t.Errorf("duplicate block not dropped: %q", fixed)
	}
	if !strings.Contains(fixed, "name: \"N\"") {
		t.Errorf("following top-level key lost: %q", fixed)
	}
	if len(actions) != 1 {
		t.Errorf("actions = %d, want 1", len(actions))
	}
}

func TestFixTextDuplicateKeyKeepsFollowingComment(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "comment after duplicate scalar",
			input: "name: \"A\"\nname: \"B\"\n# deploy section\njobs:\n  a:\n    runs-on: \"r\"\n",
		},
		{
			name:  "comment after duplicate block",
			input: "jobs:\n  a:\n    runs-on: \"r\"\njobs:\n  b:\n    runs-on: \"x\"\n# deploy section\nname: \"A\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed, actions := FixText(tt.input)
			if !strings.Contains(fixed, "# deploy section") {
				t.Errorf("top-level comment dropped with the duplicate block:\n%s", fixed)
			}
			if strings.Contains(fixed, "\"B\"") || strings.Contains(fixed, "b:") {
				t.Errorf("duplicate not removed:\n%s", fixed)
			}
			if len(actions) != 1 {
				t.Errorf("actions = %d, want 1", len(actions))
			}
		})
	}
}

func TestFixTextMakesDocumentParseable(t *testing.T) {
	input := "name:   \nname: other\njobs:\n\tbuild:\n\t\truns-on: ubuntu: latest\n"

	if _, err := parser.Parse(input); err == nil {
		t.Fatal("input unexpectedly parses before repair")
	}

	fixed, _ := FixText(input)
	root, err := parser.Parse(fixed)
	if err != nil {
		t.Fatalf("Parse(fixed) error = %v\nfixed:\n%s", err, fixed)
	}
	if got := document.Lookup(root, document.Path{"jobs", "build", "runs-on"}); got == nil || got.Value != "ubuntu: latest" {
		t.Errorf("runs-on = %+v, want quoted \"ubuntu: latest\"", got)
	}
}

func TestFixTextAppliedTwiceIsStable(t *testing.T) {
	input := "name:\t\ncmd: echo: hi\n"
	once, _ := FixText(input)
	twice, actions := FixText(once)
	if once != twice {
		t.Errorf("second pass changed text:\nonce:  %q\ntwice: %q", once, twice)
	}
	if len(actions) != 0 {
		t.Errorf("second pass actions = %d, want 0", len(actions))
	}
}

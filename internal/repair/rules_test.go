package repair

import (
	"testing"

	"github.com/deeklead/wfmend/internal/document"
	"github.com/deeklead/wfmend/internal/parser"
	"github.com/deeklead/wfmend/internal/validate"
)

func mustParse(t *testing.T, text string) *document.Node {
	t.Helper()
	root, err := parser.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return root
}

func TestHumanizeFilename(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"nightly-build.cfg", "Nightly Build"},
		{"/ci/defs/deploy_prod.cfg", "Deploy Prod"},
		{"release.cfg", "Release"},
		{"a-b_c.cfg", "A B C"},
	}
	for _, tt := range tests {
		if got := HumanizeFilename(tt.path); got != tt.want {
			t.Errorf("HumanizeFilename(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestApplySynthesizesName(t *testing.T) {
	root := mustParse(t, "on:\n  push:\n    branches:\n      - \"main\"\njobs:\n  a:\n    runs-on: \"r\"\n    steps:\n      - name: \"S\"\n")

	issues := validate.Check(root)
	actions := Apply(root, issues, "/defs/nightly-build.cfg")

	if len(actions) != 1 {
		t.Fatalf("actions = %v, want 1", actions)
	}
	if actions[0].Code != document.ActionNameSynthesized {
		t.Errorf("code = %q", actions[0].Code)
	}
	if got := root.Get("name"); got == nil || got.Value != "Nightly Build" || !got.Quoted {
		t.Errorf("name = %+v, want quoted \"Nightly Build\"", got)
	}
}

func TestApplyAddsDefaultTrigger(t *testing.T) {
	root := mustParse(t, "name: \"X\"\njobs:\n  a:\n    runs-on: \"r\"\n    steps:\n      - name: \"S\"\n")

	Apply(root, validate.Check(root), "x.cfg")

	branches := document.Lookup(root, document.Path{"on", "push", "branches"})
	if branches == nil || branches.Kind != document.KindSequence {
		t.Fatalf("on.push.branches = %+v, want sequence", branches)
	}
	got := make([]string, 0, len(branches.Items))
	for _, b := range branches.Items {
		got = append(got, b.Value)
	}
	if len(got) != 2 || got[0] != "main" || got[1] != "master" {
		t.Errorf("branches = %v, want [main master]", got)
	}
}

func TestApplyAddsDefaultRuntime(t *testing.T) {
	root := mustParse(t, "name: \"X\"\non: \"push\"\njobs:\n  a:\n    steps:\n      - name: \"S\"\n")

	Apply(root, validate.Check(root), "x.cfg")

	runsOn := document.Lookup(root, document.Path{"jobs", "a", "runs-on"})
	if runsOn == nil || runsOn.Value != DefaultRuntime {
		t.Errorf("runs-on = %+v, want %q", runsOn, DefaultRuntime)
	}
}

func TestApplyInsertsPlaceholderStep(t *testing.T) {
	root := mustParse(t, "name: \"X\"\non: \"push\"\njobs:\n  a:\n    runs-on: \"r\"\n    steps: \"\"\n")

	Apply(root, validate.Check(root), "x.cfg")

	steps := document.Lookup(root, document.Path{"jobs", "a", "steps"})
	if steps == nil || steps.Kind != document.KindSequence || len(steps.Items) != 1 {
		t.Fatalf("steps = %+v, want sequence of 1", steps)
	}
	if got := steps.Items[0].Get("name").Value; got != PlaceholderStepName {
		t.Errorf("placeholder name = %q, want %q", got, PlaceholderStepName)
	}

	// Re-validation reports no MissingSteps.
	for _, iss := range validate.Check(root) {
		if iss.Code == document.IssueMissingSteps {
			t.Errorf("MissingSteps still reported after repair: %v", iss)
		}
	}
}

func TestApplySynthesizesStepNames(t *testing.T) {
	root := mustParse(t, "name: \"X\"\non: \"push\"\njobs:\n  a:\n    runs-on: \"r\"\n    steps:\n      - run: \"one\"\n      - name: \"Named\"\n        run: \"two\"\n      - run: \"three\"\n")

	Apply(root, validate.Check(root), "x.cfg")

	steps := document.Lookup(root, document.Path{"jobs", "a", "steps"})
	wantNames := []string{"Step 1", "Named", "Step 3"}
	for i, want := range wantNames {
		if got := steps.Items[i].Get("name").Value; got != want {
			t.Errorf("step %d name = %q, want %q", i, got, want)
		}
	}
}

func TestApplyOnValidTreeIsNoOp(t *testing.T) {
	text := "name: \"X\"\non: \"push\"\njobs:\n  a:\n    runs-on: \"r\"\n    steps:\n      - name: \"S\"\n"
	root := mustParse(t, text)

	actions := Apply(root, validate.Check(root), "x.cfg")
	if len(actions) != 0 {
		t.Errorf("actions = %v, want none", actions)
	}
	if got := parser.Serialize(root); got != text {
		t.Errorf("tree mutated by no-op repair:\n%s", got)
	}
}

func TestApplyMissingJobsHasNoRule(t *testing.T) {
	root := mustParse(t, "name: \"X\"\non: \"push\"\n")

	actions := Apply(root, validate.Check(root), "x.cfg")
	if len(actions) != 0 {
		t.Errorf("actions = %v, want none", actions)
	}

	unresolved := validate.Check(root)
	if len(unresolved) != 1 || unresolved[0].Code != document.IssueMissingJobs {
		t.Errorf("unresolved = %v, want exactly MissingJobs", unresolved)
	}
}

package repair

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deeklead/wfmend/internal/document"
	"github.com/deeklead/wfmend/internal/validate"
)

// Defaults synthesized by the repair rules.
const (
	DefaultRuntime         = "ubuntu-latest"
	PlaceholderStepName    = "Placeholder"
	PlaceholderStepCommand = "true"
)

// DefaultBranches are the conventional primary branches the synthesized
// push trigger restricts to.
var DefaultBranches = []string{"main", "master"}

// Rule mutates the tree at the issue's path and reports what it changed.
// A nil return means the rule did not apply.
type Rule func(root *document.Node, iss document.Issue, docPath string) *document.RepairAction

// rules is the closed lookup table from remediation hint to repair rule.
// Issues whose hint is absent here stay unresolved.
var rules = map[document.RemediationHint]Rule{
	document.HintNameFromFilename:   synthesizeName,
	document.HintDefaultPushTrigger: addDefaultTrigger,
	document.HintDefaultRuntime:     addDefaultRuntime,
	document.HintPlaceholderStep:    insertPlaceholderStep,
	document.HintStepNameByIndex:    synthesizeStepName,
}

// Apply runs the registered rule for each issue, in the validator's priority
// order, and returns the applied actions. Applying the rule set to a tree
// that already satisfies every invariant is a no-op.
func Apply(root *document.Node, issues []document.Issue, docPath string) []document.RepairAction {
	var actions []document.RepairAction
	for _, iss := range issues {
		rule, ok := rules[iss.Hint]
		if !ok {
			continue
		}
		if act := rule(root, iss, docPath); act != nil {
			actions = append(actions, *act)
		}
	}
	return actions
}

func synthesizeName(root *document.Node, iss document.Issue, docPath string) *document.RepairAction {
	before := ""
	if prev := root.Get(validate.FieldName); prev != nil && prev.Kind == document.KindScalar {
		before = prev.Value
	}
	name := HumanizeFilename(docPath)
	root.Set(validate.FieldName, document.QuotedScalar(name))
	return &document.RepairAction{
		Code:   document.ActionNameSynthesized,
		Path:   iss.Path,
		Before: before,
		After:  name,
	}
}

// HumanizeFilename derives a display name from a document path:
// "nightly-build.cfg" becomes "Nightly Build".
func HumanizeFilename(docPath string) string {
	base := filepath.Base(docPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(base)
}

func addDefaultTrigger(root *document.Node, iss document.Issue, _ string) *document.RepairAction {
	branches := document.NewSequence()
	for _, b := range DefaultBranches {
		branches.Append(document.QuotedScalar(b))
	}
	push := document.NewMapping()
	push.Set("branches", branches)
	trigger := document.NewMapping()
	trigger.Set("push", push)
	root.Set(validate.FieldTrigger, trigger)
	return &document.RepairAction{
		Code:  document.ActionTriggerAdded,
		Path:  iss.Path,
		After: "push on " + strings.Join(DefaultBranches, ", "),
	}
}

func addDefaultRuntime(root *document.Node, iss document.Issue, _ string) *document.RepairAction {
	job := document.Lookup(root, iss.Path[:len(iss.Path)-1])
	if job == nil || job.Kind != document.KindMapping {
		return nil
	}
	job.Set(validate.FieldRunsOn, document.QuotedScalar(DefaultRuntime))
	return &document.RepairAction{
		Code:  document.ActionRuntimeTargetAdded,
		Path:  iss.Path,
		After: DefaultRuntime,
	}
}

// insertPlaceholderStep gives the job a single no-op step rather than
// leaving the sequence empty, so a written job always has runnable steps.
func insertPlaceholderStep(root *document.Node, iss document.Issue, _ string) *document.RepairAction {
	job := document.Lookup(root, iss.Path[:len(iss.Path)-1])
	if job == nil || job.Kind != document.KindMapping {
		return nil
	}
	step := document.NewMapping()
	step.Set(validate.FieldName, document.QuotedScalar(PlaceholderStepName))
	step.Set("run", document.QuotedScalar(PlaceholderStepCommand))
	steps := document.NewSequence()
	steps.Append(step)
	job.Set(validate.FieldSteps, steps)
	return &document.RepairAction{
		Code:  document.ActionPlaceholderStepAdded,
		Path:  iss.Path,
		After: PlaceholderStepName,
	}
}

func synthesizeStepName(root *document.Node, iss document.Issue, _ string) *document.RepairAction {
	step := document.Lookup(root, iss.Path)
	if step == nil || step.Kind != document.KindMapping {
		return nil
	}
	idx, err := strconv.Atoi(iss.Path[len(iss.Path)-1])
	if err != nil {
		return nil
	}
	name := fmt.Sprintf("Step %d", idx+1)
	step.Set(validate.FieldName, document.QuotedScalar(name))
	return &document.RepairAction{
		Code:  document.ActionStepNameSynthesized,
		Path:  iss.Path,
		After: name,
	}
}

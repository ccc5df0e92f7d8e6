// Package template emits minimal valid workflow definition skeletons.
package template

import (
	"github.com/deeklead/wfmend/internal/document"
	"github.com/deeklead/wfmend/internal/parser"
	"github.com/deeklead/wfmend/internal/repair"
	"github.com/deeklead/wfmend/internal/validate"
)

// Skeleton builds a minimal tree that satisfies every schema invariant:
// a name, a push trigger on the primary branches, and one job with a
// runtime target and a single step.
func Skeleton(name string) *document.Node {
	branches := document.NewSequence()
	for _, b := range repair.DefaultBranches {
		branches.Append(document.QuotedScalar(b))
	}
	push := document.NewMapping()
	push.Set("branches", branches)
	trigger := document.NewMapping()
	trigger.Set("push", push)

	step := document.NewMapping()
	step.Set(validate.FieldName, document.QuotedScalar("Checkout"))
	step.Set("run", document.QuotedScalar("true"))
	steps := document.NewSequence()
	steps.Append(step)

	job := document.NewMapping()
	job.Set(validate.FieldRunsOn, document.QuotedScalar(repair.DefaultRuntime))
	job.Set(validate.FieldSteps, steps)
	jobs := document.NewMapping()
	jobs.Set("build", job)

	root := document.NewMapping()
	root.Set(validate.FieldName, document.QuotedScalar(name))
	root.Set(validate.FieldTrigger, trigger)
	root.Set(validate.FieldJobs, jobs)
	return root
}

// Render serializes a skeleton to canonical text.
func Render(name string) string {
	return parser.Serialize(Skeleton(name))
}

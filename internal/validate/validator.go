// Package validate walks a parsed workflow tree and reports structural
// defects against the pipeline-definition invariants.
package validate

import (
	"fmt"

	"github.com/deeklead/wfmend/internal/document"
)

// Field names of the workflow definition schema.
const (
	FieldName    = "name"
	FieldTrigger = "on"
	FieldJobs    = "jobs"
	FieldRunsOn  = "runs-on"
	FieldSteps   = "steps"
)

// Check walks the tree in priority order and returns every detected issue.
// Earlier issues repair structures that later checks depend on, so the
// repair engine applies fixes in this same order.
func Check(root *document.Node) []document.Issue {
	if root == nil || root.Kind != document.KindMapping {
		return []document.Issue{{
			Code:     document.IssueInvalidRoot,
			Severity: document.SeverityError,
			Message:  "document root must be a mapping",
		}}
	}

	var issues []document.Issue

	if !hasNonEmptyScalar(root, FieldName) {
		issues = append(issues, document.Issue{
			Code:     document.IssueMissingName,
			Severity: document.SeverityError,
			Path:     document.Path{FieldName},
			Message:  `top-level "name" is missing or empty`,
			Hint:     document.HintNameFromFilename,
		})
	}

	if !root.Has(FieldTrigger) {
		issues = append(issues, document.Issue{
			Code:     document.IssueMissingTrigger,
			Severity: document.SeverityError,
			Path:     document.Path{FieldTrigger},
			Message:  "no trigger specification",
			Hint:     document.HintDefaultPushTrigger,
		})
	}

	jobs := root.Get(FieldJobs)
	if jobs == nil || jobs.Kind != document.KindMapping || len(jobs.Entries) == 0 {
		// No synthesis possible: an empty pipeline has nothing to run.
		issues = append(issues, document.Issue{
			Code:     document.IssueMissingJobs,
			Severity: document.SeverityError,
			Path:     document.Path{FieldJobs},
			Message:  `"jobs" is missing or empty`,
		})
		return issues
	}

	for _, job := range jobs.Entries {
		jobPath := document.Path{FieldJobs, job.Key}
		issues = append(issues, checkJob(job.Key, job.Value, jobPath)...)
	}
	return issues
}

func checkJob(name string, job *document.Node, jobPath document.Path) []document.Issue {
	var issues []document.Issue

	if !hasNonEmptyScalar(job, FieldRunsOn) {
		issues = append(issues, document.Issue{
			Code:     document.IssueMissingRuntimeTarget,
			Severity: document.SeverityError,
			Path:     jobPath.Child(FieldRunsOn),
			Message:  fmt.Sprintf("job %q has no runtime target", name),
			Hint:     document.HintDefaultRuntime,
		})
	}

	steps := job.Get(FieldSteps)
	if steps == nil || steps.Kind != document.KindSequence || len(steps.Items) == 0 {
		issues = append(issues, document.Issue{
			Code:     document.IssueMissingSteps,
			Severity: document.SeverityError,
			Path:     jobPath.Child(FieldSteps),
			Message:  fmt.Sprintf("job %q has no steps", name),
			Hint:     document.HintPlaceholderStep,
		})
		return issues
	}

	for i, step := range steps.Items {
		if !hasNonEmptyScalar(step, FieldName) {
			issues = append(issues, document.Issue{
				Code:     document.IssueMissingStepName,
				Severity: document.SeverityWarning,
				Path:     jobPath.Child(FieldSteps).Index(i),
				Message:  fmt.Sprintf("job %q step %d has no name", name, i+1),
				Hint:     document.HintStepNameByIndex,
			})
		}
	}
	return issues
}

func hasNonEmptyScalar(n *document.Node, key string) bool {
	v := n.Get(key)
	return v != nil && v.Kind == document.KindScalar && v.Value != ""
}

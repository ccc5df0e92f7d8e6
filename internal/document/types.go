package document

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueCode identifies a structural defect found by the schema validator.
type IssueCode string

const (
	IssueInvalidRoot          IssueCode = "InvalidRoot"
	IssueMissingName          IssueCode = "MissingName"
	IssueMissingTrigger       IssueCode = "MissingTrigger"
	IssueMissingJobs          IssueCode = "MissingJobs"
	IssueMissingRuntimeTarget IssueCode = "MissingRuntimeTarget"
	IssueMissingSteps         IssueCode = "MissingSteps"
	IssueMissingStepName      IssueCode = "MissingStepName"
)

// RemediationHint selects the repair rule for an issue. The zero value means
// no rule exists and the issue stays unresolved.
type RemediationHint int

const (
	HintNone RemediationHint = iota
	HintNameFromFilename
	HintDefaultPushTrigger
	HintDefaultRuntime
	HintPlaceholderStep
	HintStepNameByIndex
)

// Issue is a detected structural defect with enough position information to
// drive a repair rule.
type Issue struct {
	Code     IssueCode       `json:"code"`
	Severity Severity        `json:"severity"`
	Path     Path            `json:"path"`
	Message  string          `json:"message"`
	Hint     RemediationHint `json:"-"`
}

// ActionCode identifies an applied repair.
type ActionCode string

const (
	ActionDuplicateKeyRemoved  ActionCode = "DuplicateKeyRemoved"
	ActionNameSynthesized      ActionCode = "NameSynthesized"
	ActionTriggerAdded         ActionCode = "TriggerAdded"
	ActionRuntimeTargetAdded   ActionCode = "RuntimeTargetAdded"
	ActionPlaceholderStepAdded ActionCode = "PlaceholderStepAdded"
	ActionStepNameSynthesized  ActionCode = "StepNameSynthesized"
)

// RepairAction records one deterministic mutation applied to a document,
// either at the text level (syntax pass) or at the tree level (rule engine).
type RepairAction struct {
	Code   ActionCode `json:"code"`
	Path   Path       `json:"path"`
	Before string     `json:"before,omitempty"`
	After  string     `json:"after,omitempty"`
}

// Outcome is the terminal state of a processed document. CLEAN means the
// document satisfied every invariant and the file was left untouched.
// WITHHELD means nothing was written while issues remain, either because the
// withhold policy blocked a partial write or because no repair rule applied
// to any of the issues.
type Outcome string

const (
	OutcomeWritten      Outcome = "WRITTEN"
	OutcomeClean        Outcome = "CLEAN"
	OutcomeUnrepairable Outcome = "UNREPAIRABLE"
	OutcomeWriteFailed  Outcome = "WRITE_FAILED"
	OutcomeIOError      Outcome = "IO_ERROR"
	OutcomeWithheld     Outcome = "WITHHELD"
)

// Result is the per-document record aggregated into the run report.
type Result struct {
	Path       string         `json:"path"`
	Outcome    Outcome        `json:"outcome"`
	Repairs    []RepairAction `json:"repairsApplied,omitempty"`
	Unresolved []Issue        `json:"unresolvedIssues,omitempty"`
	BackupPath string         `json:"backupPath,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Document carries one workflow definition through the pipeline. The tree is
// nil until parsing succeeds; ParseErr keeps the last parser failure.
type Document struct {
	Path     string
	Raw      string
	Tree     *Node
	ParseErr error
}

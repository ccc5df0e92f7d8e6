// Package engine drives each workflow definition through the full pipeline:
// load, parse, syntax repair, validate, structural repair, serialize, write.
// Documents are independent of each other; one bad document never blocks
// the rest of the batch.
package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/deeklead/wfmend/internal/config"
	"github.com/deeklead/wfmend/internal/document"
	"github.com/deeklead/wfmend/internal/parser"
	"github.com/deeklead/wfmend/internal/repair"
	"github.com/deeklead/wfmend/internal/report"
	"github.com/deeklead/wfmend/internal/scan"
	"github.com/deeklead/wfmend/internal/tracklog"
	"github.com/deeklead/wfmend/internal/validate"
	"github.com/deeklead/wfmend/internal/writer"
)

// Engine processes batches of workflow definition documents.
type Engine struct {
	cfg    *config.Config
	writer *writer.Writer
	track  *tracklog.Logger

	// OnResult, when set, is invoked once per completed document. It is
	// called from worker goroutines; the callback must be safe for
	// concurrent use.
	OnResult func(document.Result)
}

// New builds an engine from the given configuration.
func New(cfg *config.Config) *Engine {
	return &Engine{
		cfg:    cfg,
		writer: writer.New(cfg.IOTimeout.Duration),
		track:  tracklog.New(cfg.TrackLog),
	}
}

// FixAll discovers every candidate document under root and runs the full
// repair pipeline on each, on a worker pool bounded by the configured
// concurrency. Cancellation is checked between documents; in-flight
// documents finish their atomic write, so every document ends in a
// terminal, disk-consistent state. Results are in completion order.
func (e *Engine) FixAll(ctx context.Context, root string) (*report.RunReport, error) {
	paths, err := scan.Find(root, e.cfg.Extensions)
	if err != nil {
		return nil, fmt.Errorf("discovering documents: %w", err)
	}

	rep := report.New()
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.cfg.Concurrency)

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Every goroutine is spawned up front and queues on the
			// semaphore, so the cancellation check has to happen here,
			// once a worker slot is actually held.
			if ctx.Err() != nil {
				return
			}

			res := e.Process(ctx, path)

			mu.Lock()
			rep.Add(res)
			mu.Unlock()

			if e.OnResult != nil {
				e.OnResult(res)
			}
		}(path)
	}
	wg.Wait()

	rep.Finalize()
	return rep, nil
}

// Process runs one document through the pipeline and returns its terminal
// result. All expected failures are returned as data on the result; Process
// itself never fails.
func (e *Engine) Process(ctx context.Context, path string) document.Result {
	res := document.Result{Path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		res.Outcome = document.OutcomeIOError
		res.Error = err.Error()
		e.record(tracklog.EventIOError, path, res.Error)
		return res
	}
	doc := &document.Document{Path: path, Raw: string(raw)}

	textRepaired := false
	tree, perr := parser.Parse(doc.Raw)
	if perr != nil {
		// Single bounded syntax-repair attempt: fix the text once,
		// re-parse once. No retry loop.
		fixed, actions := repair.FixText(doc.Raw)
		tree, perr = parser.Parse(fixed)
		if perr != nil {
			doc.ParseErr = perr
			res.Outcome = document.OutcomeUnrepairable
			res.Error = perr.Error()
			e.record(tracklog.EventUnrepairable, path, res.Error)
			return res
		}
		res.Repairs = append(res.Repairs, actions...)
		textRepaired = true
	}
	doc.Tree = tree

	issues := validate.Check(doc.Tree)
	res.Repairs = append(res.Repairs, repair.Apply(doc.Tree, issues, path)...)
	res.Unresolved = validate.Check(doc.Tree)

	if len(res.Repairs) == 0 && !textRepaired {
		// Nothing changed: leave the file untouched so re-running the
		// engine stays idempotent and mints no backups. A document that
		// still carries issues no rule can resolve is not clean, just
		// unwritable.
		if len(res.Unresolved) > 0 {
			res.Outcome = document.OutcomeWithheld
			e.record(tracklog.EventWithheld, path,
				fmt.Sprintf("no applicable repairs, %d unresolved issues", len(res.Unresolved)))
			return res
		}
		res.Outcome = document.OutcomeClean
		e.record(tracklog.EventClean, path, "no repairs required")
		return res
	}

	if e.cfg.WritePolicy == config.PolicyWithhold && len(res.Unresolved) > 0 {
		res.Outcome = document.OutcomeWithheld
		e.record(tracklog.EventWithheld, path,
			fmt.Sprintf("%d unresolved issues, write withheld", len(res.Unresolved)))
		return res
	}

	text := parser.Serialize(doc.Tree)
	backup, err := e.writer.Replace(ctx, path, raw, text)
	res.BackupPath = backup
	if err != nil {
		res.Outcome = document.OutcomeWriteFailed
		res.Error = err.Error()
		e.record(tracklog.EventWriteFailed, path, res.Error)
		return res
	}

	res.Outcome = document.OutcomeWritten
	e.record(tracklog.EventRepaired, path,
		fmt.Sprintf("%d repairs applied", len(res.Repairs)))
	return res
}

// Validation is the outcome of a validate-only inspection: no writes, just
// the issues a fix-all run would act on.
type Validation struct {
	Issues     []document.Issue
	ParseErr   error
	Repairable bool // syntax defects the repair pass would fix in memory
}

// ValidateOnly parses and validates a single document without writing
// anything. When parsing fails, the syntax repair pass is tried in memory
// to report whether the document would be repairable.
func (e *Engine) ValidateOnly(path string) (*Validation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	tree, perr := parser.Parse(string(raw))
	if perr != nil {
		fixed, _ := repair.FixText(string(raw))
		tree, err = parser.Parse(fixed)
		if err != nil {
			return &Validation{ParseErr: perr}, nil
		}
		return &Validation{Issues: validate.Check(tree), ParseErr: perr, Repairable: true}, nil
	}
	return &Validation{Issues: validate.Check(tree)}, nil
}

func (e *Engine) record(typ tracklog.EventType, path, detail string) {
	// Track log failures never affect document outcomes.
	_ = e.track.Record(tracklog.Event{
		Timestamp: time.Now(),
		Type:      typ,
		Document:  path,
		Detail:    detail,
	})
}

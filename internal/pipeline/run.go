// Package pipeline composes retrieval, cleaning, extraction, narrative generation
// and rendering into one cover letter run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter/internal/db"
	"github.com/jonathan/cover-letter/internal/fetch"
	"github.com/jonathan/cover-letter/internal/ingestion"
	"github.com/jonathan/cover-letter/internal/observability"
	"github.com/jonathan/cover-letter/internal/parsing"
	"github.com/jonathan/cover-letter/internal/rendering"
	"github.com/jonathan/cover-letter/internal/types"
)

// Retriever loads posting content for a request.
type Retriever interface {
	Retrieve(ctx context.Context, req types.PostingRequest) (*types.RetrievalAttempt, error)
}

// Extractor derives job details from a cleaned posting.
type Extractor interface {
	Extract(ctx context.Context, posting types.CleanedPosting) (types.ExtractionResult, error)
}

// Narrator generates the letter fragments.
type Narrator interface {
	Generate(ctx context.Context, details types.ExtractionResult, posting types.CleanedPosting) (types.NarrativeBundle, error)
}

// RunStore persists runs and their artifacts. *db.DB implements it.
type RunStore interface {
	CreateRun(ctx context.Context, jobURL string) (uuid.UUID, error)
	SaveTextArtifact(ctx context.Context, runID uuid.UUID, step, text string) error
	SaveExtraction(ctx context.Context, runID uuid.UUID, result types.ExtractionResult) error
	SaveNarrative(ctx context.Context, runID uuid.UUID, bundle types.NarrativeBundle) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

var _ RunStore = (*db.DB)(nil)

// ManualEntryReason explains which stage came back empty.
type ManualEntryReason string

const (
	// ReasonDetails means no company and position were found
	ReasonDetails ManualEntryReason = "details"
	// ReasonPosting means no posting text was retrieved
	ReasonPosting ManualEntryReason = "posting"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for one run
type RunOptions struct {
	JobURL string
	// JobTextPath supplies the posting text when retrieval yields nothing.
	JobTextPath string
	// Company and Position are used when extraction yields nothing.
	Company  string
	Position string

	// ExtractOnly stops after extraction.
	ExtractOnly bool
	// PostingDir, when set, receives the cleaned posting and its metadata.
	PostingDir string

	OutputDir    string
	Format       rendering.Format
	TemplatePath string

	Verbose    bool
	OnProgress ProgressCallback
}

// Result is the outcome of a run. When NeedsManualEntry is set the run stopped
// early and Reason names the missing input.
type Result struct {
	RunID            uuid.UUID
	Attempt          *types.RetrievalAttempt
	Posting          types.CleanedPosting
	Details          types.ExtractionResult
	Narrative        types.NarrativeBundle
	Letter           types.LetterContext
	OutputPath       string
	NeedsManualEntry bool
	Reason           ManualEntryReason
}

// Deps are the collaborators a Pipeline drives. Store is optional.
type Deps struct {
	Retriever Retriever
	Extractor Extractor
	Narrator  Narrator
	Store     RunStore
}

// Pipeline runs the cover letter steps in sequence.
type Pipeline struct {
	deps    Deps
	out     io.Writer
	printer *observability.Printer
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a Pipeline that prints step headlines to stdout.
func New(deps Deps, logger zerolog.Logger) *Pipeline {
	return NewWithOutput(deps, os.Stdout, logger)
}

// NewWithOutput creates a Pipeline that prints step headlines to out.
func NewWithOutput(deps Deps, out io.Writer, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		deps:    deps,
		out:     out,
		printer: observability.NewPrinter(out),
		logger:  logger,
		now:     time.Now,
	}
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID uuid.UUID, step, message string, content any) {
	if opts.OnProgress == nil {
		return
	}
	event := ProgressEvent{Step: step, Message: message, Content: content}
	if runID != uuid.Nil {
		event.RunID = runID.String()
	}
	opts.OnProgress(event)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Pipeline) stepf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Run executes one cover letter run for opts.JobURL.
// Retrieval or extraction coming back empty is not an error: the returned
// Result has NeedsManualEntry set unless opts carries the missing input.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	req, err := fetch.NewPostingRequest(opts.JobURL)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	result.RunID = p.createRun(ctx, req.URL)

	status := db.RunStatusFailed
	defer func() { p.completeRun(ctx, result.RunID, status) }()

	// Step 1: retrieve and clean
	p.stepf("Step 1/4: Retrieving job posting from %s...", req.URL)
	attempt, err := p.deps.Retriever.Retrieve(ctx, req)
	switch {
	case errors.Is(err, fetch.ErrNotFound):
		p.logger.Warn().Err(err).Str("url", req.URL).Msg("No posting content retrieved")
	case err != nil:
		return nil, fmt.Errorf("job retrieval failed: %w", err)
	default:
		result.Attempt = attempt
		result.Posting = ingestion.Clean(attempt.RawBodyText, attempt.ListItemText)
		if opts.Verbose {
			p.printer.PrintRetrieval(attempt, result.Posting)
		}
		p.saveText(ctx, result.RunID, db.StepPosting, result.Posting.Text)
		if opts.PostingDir != "" {
			meta := ingestion.FromAttempt(result.Posting, req.URL, string(fetch.DetectPlatform(req.URL)), attempt)
			if err := ingestion.WriteOutput(opts.PostingDir, result.Posting, meta); err != nil {
				p.logger.Warn().Err(err).Str("dir", opts.PostingDir).Msg("Failed to save cleaned posting")
			}
		}
		emitProgress(&opts, result.RunID, db.StepPosting,
			fmt.Sprintf("Retrieved %d characters on attempt %d", len([]rune(result.Posting.Text)), attempt.AttemptNumber), nil)
	}

	// Step 2: extract job details
	if result.Attempt != nil {
		p.stepf("Step 2/4: Extracting job details...")
		details, err := p.deps.Extractor.Extract(ctx, result.Posting)
		switch {
		case errors.Is(err, parsing.ErrNotFound):
			p.logger.Warn().Err(err).Msg("Unable to extract company name or position title")
		case err != nil:
			return nil, fmt.Errorf("job detail extraction failed: %w", err)
		default:
			result.Details = details
		}
	} else {
		p.stepf("Step 2/4: Skipping extraction, no posting content")
	}

	if !result.Details.Valid() {
		if opts.Company == "" || opts.Position == "" {
			status = db.RunStatusManualEntry
			result.NeedsManualEntry = true
			result.Reason = ReasonDetails
			return result, nil
		}
		result.Details = types.ExtractionResult{CompanyName: opts.Company, PositionName: opts.Position}
		p.logger.Info().Str("company", opts.Company).Str("position", opts.Position).Msg("Using manually entered job details")
	}
	if opts.Verbose {
		p.printer.PrintExtraction(result.Details)
	}
	p.saveExtraction(ctx, result.RunID, result.Details)
	emitProgress(&opts, result.RunID, db.StepExtraction,
		fmt.Sprintf("Extracted %s at %s", result.Details.PositionName, result.Details.CompanyName), result.Details)

	if opts.ExtractOnly {
		status = db.RunStatusCompleted
		return result, nil
	}

	if result.Posting.IsEmpty() {
		if opts.JobTextPath == "" {
			status = db.RunStatusManualEntry
			result.NeedsManualEntry = true
			result.Reason = ReasonPosting
			return result, nil
		}
		posting, _, err := ingestion.IngestFromFile(opts.JobTextPath)
		if err != nil {
			return nil, fmt.Errorf("manual job text failed: %w", err)
		}
		result.Posting = posting
		p.saveText(ctx, result.RunID, db.StepPosting, posting.Text)
	}

	// Step 3: narrative
	shortForm := rendering.ShortFormPosition(result.Details.PositionName)
	p.stepf("Step 3/4: Generating %s cover letter for %s...", shortForm, result.Details.CompanyName)
	bundle, err := p.deps.Narrator.Generate(ctx, result.Details, result.Posting)
	if err != nil {
		return nil, fmt.Errorf("narrative generation failed: %w", err)
	}
	result.Narrative = bundle
	if opts.Verbose {
		p.printer.PrintNarrative(bundle)
	}
	p.saveNarrative(ctx, result.RunID, bundle)
	emitProgress(&opts, result.RunID, db.StepNarrative, "Generated closing sentence and values paragraph", bundle)

	// Step 4: render
	now := p.now()
	result.Letter = rendering.BuildContext(result.Details, bundle, now)
	if opts.OutputDir != "" {
		p.stepf("Step 4/4: Rendering letter...")
		format := opts.Format
		if format == "" {
			format = rendering.FormatText
		}
		path, err := rendering.WriteLetter(opts.OutputDir, format, opts.TemplatePath, result.Details, result.Letter, now)
		if err != nil {
			return nil, fmt.Errorf("rendering failed: %w", err)
		}
		result.OutputPath = path
		if opts.Verbose {
			p.printer.PrintOutput(path)
		}
		if letter, err := rendering.RenderLetter(opts.TemplatePath, result.Letter); err == nil {
			p.saveText(ctx, result.RunID, db.StepLetter, letter)
		}
		emitProgress(&opts, result.RunID, db.StepLetter, fmt.Sprintf("Wrote %s", path), nil)
	}

	status = db.RunStatusCompleted
	return result, nil
}

func (p *Pipeline) createRun(ctx context.Context, jobURL string) uuid.UUID {
	if p.deps.Store == nil {
		return uuid.Nil
	}
	runID, err := p.deps.Store.CreateRun(ctx, jobURL)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to create database run, continuing without persistence")
		return uuid.Nil
	}
	p.logger.Debug().Str("run_id", runID.String()).Msg("Created database run")
	return runID
}

func (p *Pipeline) saveText(ctx context.Context, runID uuid.UUID, step, text string) {
	if p.deps.Store == nil || runID == uuid.Nil {
		return
	}
	if err := p.deps.Store.SaveTextArtifact(ctx, runID, step, text); err != nil {
		p.logger.Warn().Err(err).Str("step", step).Msg("Failed to save artifact")
	}
}

func (p *Pipeline) saveExtraction(ctx context.Context, runID uuid.UUID, details types.ExtractionResult) {
	if p.deps.Store == nil || runID == uuid.Nil {
		return
	}
	if err := p.deps.Store.SaveExtraction(ctx, runID, details); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to save extraction")
	}
}

func (p *Pipeline) saveNarrative(ctx context.Context, runID uuid.UUID, bundle types.NarrativeBundle) {
	if p.deps.Store == nil || runID == uuid.Nil {
		return
	}
	if err := p.deps.Store.SaveNarrative(ctx, runID, bundle); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to save narrative")
	}
}

func (p *Pipeline) completeRun(ctx context.Context, runID uuid.UUID, status string) {
	if p.deps.Store == nil || runID == uuid.Nil {
		return
	}
	if err := p.deps.Store.CompleteRun(context.WithoutCancel(ctx), runID, status); err != nil {
		p.logger.Warn().Err(err).Str("status", status).Msg("Failed to complete database run")
	}
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/cvparse/internal/events"
	"github.com/dgallion1/cvparse/internal/logger"
	"github.com/dgallion1/cvparse/internal/parser"
	"github.com/dgallion1/cvparse/internal/resume"
	"github.com/dgallion1/cvparse/internal/stats"
	"github.com/dgallion1/cvparse/internal/storage"
)

// Result is the outcome of a successfully processed job.
type Result struct {
	ResumeID  string
	UploadKey string
	RecordKey string
	Record    *storage.Record
}

// StageError reports the pipeline phase in which a job failed.
type StageError struct {
	Phase string
	Err   error
}

func (e *StageError) Error() string { return e.Phase + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// FailedPhase returns the phase recorded in err, or "" if there is none.
func FailedPhase(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Phase
	}
	return ""
}

// Worker runs uploaded files through extraction, parsing and storage.
// It holds no per-job state and is shared by all pool goroutines.
type Worker struct {
	records   *storage.Records
	publisher events.Publisher
	parser    *resume.Parser
	latency   *stats.Latency
	extract   parser.Options
	log       *logger.Logger

	backoff func(int) time.Duration
}

func NewWorker(records *storage.Records, pub events.Publisher, p *resume.Parser, latency *stats.Latency, extract parser.Options, log *logger.Logger) *Worker {
	if pub == nil {
		pub = events.Noop{}
	}
	if p == nil {
		p = resume.NewParser()
	}
	return &Worker{
		records:   records,
		publisher: pub,
		parser:    p,
		latency:   latency,
		extract:   extract,
		log:       log.WithComponent("worker"),
		backoff:   Backoff,
	}
}

// ParseText parses plain text and records the parse latency.
func (w *Worker) ParseText(text string) *resume.Resume {
	return w.parseWith(w.parser, text)
}

// ParseTextMode is ParseText with the segmentation mode chosen per call.
// An empty mode uses the worker's parser.
func (w *Worker) ParseTextMode(text, mode string) (*resume.Resume, error) {
	if mode == "" {
		return w.ParseText(text), nil
	}
	seg, err := resume.SegmenterFor(mode)
	if err != nil {
		return nil, err
	}
	return w.parseWith(resume.NewParser(resume.WithSegmenter(seg)), text), nil
}

func (w *Worker) parseWith(p *resume.Parser, text string) *resume.Resume {
	start := time.Now()
	res := p.Parse(text)
	if w.latency != nil {
		w.latency.Since(start)
	}
	return res
}

// Process runs the pipeline for a queued job. Failures are recorded on
// the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	if _, err := w.run(ctx, job); err != nil {
		w.log.WithJob(job.ID, job.ResumeID).Error().Err(err).Msg("job failed")
	}
}

// ProcessSync runs the pipeline inline for one file and returns its result.
func (w *Worker) ProcessSync(ctx context.Context, filename string, data []byte) (*Result, error) {
	return w.run(ctx, NewJob(filename, data))
}

func (w *Worker) run(ctx context.Context, job *Job) (*Result, error) {
	log := w.log.WithJob(job.ID, job.ResumeID)
	defer job.releaseFileData()

	// Phase 1: extract text
	job.SetStatus(StatusExtracting, "extracting")
	data := job.FileData()
	ext, err := parser.ForFile(job.Filename, w.extract)
	if err != nil {
		return nil, w.fail(job, "extracting", err)
	}
	doc, err := ext.Extract(bytes.NewReader(data), job.Filename)
	if err != nil {
		return nil, w.fail(job, "extracting", fmt.Errorf("extract %s: %w", job.Filename, err))
	}
	job.SetText(doc.Text)
	log.Debug().Int("pages", doc.Pages).Int("chars", len(doc.Text)).Msg("text extracted")

	// Phase 2: parse
	job.SetStatus(StatusParsing, "parsing")
	res := w.ParseText(doc.Text)
	job.SetResult(res)

	// Phase 3: store upload and record
	job.SetStatus(StatusStoring, "storing")
	var uploadKey string
	err = withRetry(ctx, log, "save upload", w.backoff, func() error {
		var err error
		uploadKey, err = w.records.SaveUpload(ctx, job.ResumeID, job.Filename, parser.ContentType(job.Filename), data)
		return err
	})
	if err != nil {
		return nil, w.fail(job, "storing", fmt.Errorf("store upload: %w", err))
	}

	snap := job.Snapshot()
	rec := &storage.Record{
		ID:          job.ResumeID,
		Filename:    job.Filename,
		ContentHash: snap.ContentHash,
		UploadKey:   uploadKey,
		CreatedAt:   job.CreatedAt.UTC(),
		Parsed:      res,
	}
	var recordKey string
	err = withRetry(ctx, log, "save record", w.backoff, func() error {
		var err error
		recordKey, err = w.records.SaveRecord(ctx, rec)
		return err
	})
	if err != nil {
		return nil, w.fail(job, "storing", fmt.Errorf("store record: %w", err))
	}
	job.SetKeys(uploadKey, recordKey)

	// Phase 4: announce
	ev := events.ParsedEvent{
		ResumeID:    job.ResumeID,
		Filename:    job.Filename,
		ContentHash: snap.ContentHash,
		UploadKey:   uploadKey,
		RecordKey:   recordKey,
		Sections:    snap.Progress.Sections,
		ParsedAt:    time.Now().UTC(),
	}
	if err := w.publisher.PublishParsed(ctx, ev); err != nil {
		log.Warn().Err(err).Msg("publish parsed event")
		job.AddError(fmt.Sprintf("publish: %s", err))
	}

	job.SetStatus(StatusCompleted, "done")
	log.Info().Str("filename", job.Filename).Strs("sections", snap.Progress.Sections).Msg("resume parsed")
	return &Result{
		ResumeID:  job.ResumeID,
		UploadKey: uploadKey,
		RecordKey: recordKey,
		Record:    rec,
	}, nil
}

func (w *Worker) fail(job *Job, phase string, err error) error {
	job.Fail(phase, err)
	return &StageError{Phase: phase, Err: err}
}

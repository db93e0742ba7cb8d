package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/dgallion1/cvparse/internal/resume"
	"github.com/google/uuid"
)

// JobStatus represents the state of a parse job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusParsing    JobStatus = "parsing"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks one uploaded file through extraction, parsing and storage.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	ResumeID string `json:"resume_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	fileData []byte
	result   *resume.Resume
	errors   []string
}

// Progress is what the status endpoint reports about a job.
type Progress struct {
	TextChars int      `json:"text_chars"`
	Sections  []string `json:"sections"`
	UploadKey string   `json:"upload_key,omitempty"`
	RecordKey string   `json:"record_key,omitempty"`
	Errors    []string `json:"errors"`
}

// NewJob creates a queued job holding data. The resume ID doubles as the
// storage prefix for the upload and its record.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		ResumeID:  uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup evicts finished jobs not updated within the TTL and returns how
// many were removed. Jobs still in flight are kept.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail records err and moves the job to failed during phase.
func (j *Job) Fail(phase string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err.Error())
	j.Progress.Errors = j.errors
	j.Status = StatusFailed
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a non-fatal error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetText records the extracted text size and its content hash.
func (j *Job) SetText(text string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TextChars = len(text)
	j.ContentHash = ContentHashHex([]byte(text))
	j.UpdatedAt = time.Now()
}

// SetResult stores the parse result and the sections it found.
func (j *Job) SetResult(res *resume.Resume) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.Progress.Sections = DetectedSections(res)
	j.UpdatedAt = time.Now()
}

// Result returns the parse result, or nil before parsing finished.
func (j *Job) Result() *resume.Resume {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// SetKeys records where the upload and its record were stored.
func (j *Job) SetKeys(uploadKey, recordKey string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.UploadKey = uploadKey
	j.Progress.RecordKey = recordKey
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFileData drops the upload bytes once they are no longer needed.
func (j *Job) releaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	ResumeID    string    `json:"resume_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	sections := append([]string{}, j.Progress.Sections...)
	return JobSnapshot{
		ID:          j.ID,
		ResumeID:    j.ResumeID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		Progress: Progress{
			TextChars: j.Progress.TextChars,
			Sections:  sections,
			UploadKey: j.Progress.UploadKey,
			RecordKey: j.Progress.RecordKey,
			Errors:    errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// DetectedSections lists the headers found in res, in canonical order.
func DetectedSections(res *resume.Resume) []string {
	out := []string{}
	if res == nil {
		return out
	}
	for _, sec := range resume.Headers {
		if res.Has(sec) {
			out = append(out, string(sec))
		}
	}
	return out
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

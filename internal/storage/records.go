package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/cvparse/internal/resume"
)

// Record is the stored outcome of one parsed upload.
type Record struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	ContentHash string         `json:"content_hash"`
	UploadKey   string         `json:"upload_key"`
	CreatedAt   time.Time      `json:"created_at"`
	Parsed      *resume.Resume `json:"parsed"`
}

// UploadKey is where the original file of upload id is kept.
func UploadKey(id, filename string) string {
	return fmt.Sprintf("uploads/%s/%s", id, filename)
}

// RecordKey is where the parsed record of upload id is kept.
func RecordKey(id string) string {
	return fmt.Sprintf("records/%s/parsed.json", id)
}

// Records reads and writes uploads and parsed records on an ObjectStore.
type Records struct {
	store ObjectStore
}

func NewRecords(store ObjectStore) *Records {
	return &Records{store: store}
}

// SaveUpload stores the original file and returns its key.
func (r *Records) SaveUpload(ctx context.Context, id, filename, contentType string, data []byte) (string, error) {
	key := UploadKey(id, filename)
	if err := r.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", err
	}
	return key, nil
}

// SaveRecord stores rec as JSON and returns its key.
func (r *Records) SaveRecord(ctx context.Context, rec *Record) (string, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	key := RecordKey(rec.ID)
	if err := r.store.Put(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return "", err
	}
	return key, nil
}

// LoadRecord fetches the record for id. Missing records yield ErrNotFound.
func (r *Records) LoadRecord(ctx context.Context, id string) (*Record, error) {
	body, err := r.store.Get(ctx, RecordKey(id))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return &rec, nil
}

// Delete removes the record for id and, when known, its original upload.
// It returns ErrNotFound if there was no record.
func (r *Records) Delete(ctx context.Context, id string) error {
	rec, err := r.LoadRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec.UploadKey != "" {
		exists, err := r.store.Exists(ctx, rec.UploadKey)
		if err != nil {
			return err
		}
		if exists {
			if err := r.store.Delete(ctx, rec.UploadKey); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}
	}
	return r.store.Delete(ctx, RecordKey(id))
}

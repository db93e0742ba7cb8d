// Package events announces parsed resumes to downstream consumers.
package events

import (
	"context"
	"time"
)

// RoutingKeyParsed is the routing key of ParsedEvent messages.
const RoutingKeyParsed = "resume.parsed"

// ParsedEvent is published once a resume has been parsed and stored.
type ParsedEvent struct {
	ResumeID    string    `json:"resume_id"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash,omitempty"`
	UploadKey   string    `json:"upload_key"`
	RecordKey   string    `json:"record_key"`
	Sections    []string  `json:"sections"`
	ParsedAt    time.Time `json:"parsed_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishParsed(ctx context.Context, ev ParsedEvent) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishParsed(context.Context, ParsedEvent) error { return nil }
func (Noop) Close() error                                     { return nil }

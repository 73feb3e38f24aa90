// Package audit indexes authentication events into Elasticsearch so that
// security reviews can query them later. Recording is best-effort and never
// blocks an auth decision.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
)

const Index = "auth_events"

type Event struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	UserID uint      `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

type Recorder interface {
	Record(ctx context.Context, e Event) error
}

type ESRecorder struct {
	ES *elasticsearch.Client
}

func NewESRecorder(client *elasticsearch.Client) *ESRecorder {
	return &ESRecorder{ES: client}
}

func NewEvent(eventType string, userID uint, email string) Event {
	return Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		UserID: userID,
		Email:  email,
		At:     time.Now().UTC(),
	}
}

func (r *ESRecorder) Record(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}

	res, err := r.ES.Index(
		Index,
		bytes.NewReader(data),
		r.ES.Index.WithDocumentID(e.ID),
		r.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("audit: index event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("audit: index event: %s", res.Status())
	}
	return nil
}

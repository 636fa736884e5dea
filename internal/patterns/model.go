// Package patterns stores consolidated analyses so later generations can reuse
// them without re-acquiring and re-analyzing reference videos.
package patterns

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("pattern not found")
	ErrForbidden = errors.New("pattern belongs to another user")
)

// Pattern matches the patterns table. Analysis is the consolidated analysis
// document exactly as returned to clients.
type Pattern struct {
	ID          uuid.UUID       `json:"id"`
	OwnerUserID uuid.UUID       `json:"owner_user_id"`
	Name        string          `json:"name"`
	SourceURLs  []string        `json:"source_urls"`
	Analysis    json.RawMessage `json:"analysis"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ListParams struct {
	Page     int
	PageSize int
}

func DefaultListParams() ListParams {
	return ListParams{Page: 1, PageSize: 20}
}

package schema

import (
	"errors"
	"fmt"
	"time"
)

// Page sizes offered by the dashboard's rows-per-page selector.
var PageSizes = []int{10, 15, 20}

const DefaultPageSize = 10

type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationsResponse is one page of the upstream listing. It is always
// replaced as a whole, never merged.
type ConversationsResponse struct {
	Items           []Conversation `json:"items"`
	TotalItems      int            `json:"total_items"`
	StartIndex      int            `json:"start_index"`
	EndIndex        int            `json:"end_index"`
	TotalPages      int            `json:"total_pages"`
	CurrentPage     int            `json:"current_page"`
	CurrentPageSize int            `json:"current_page_size"`
}

var ErrInvalidPage = errors.New("not a conversations page")

// Validate reports whether r holds a usable page: at least one page, the
// current page within range, and items present whenever the total says so.
// A decoded null, {} or error body fails.
func (r *ConversationsResponse) Validate() error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: empty", ErrInvalidPage)
	case r.TotalPages < 1:
		return fmt.Errorf("%w: total_pages=%d", ErrInvalidPage, r.TotalPages)
	case r.CurrentPage < 1 || r.CurrentPage > r.TotalPages:
		return fmt.Errorf("%w: current_page=%d total_pages=%d", ErrInvalidPage, r.CurrentPage, r.TotalPages)
	case r.Items == nil && r.TotalItems > 0:
		return fmt.Errorf("%w: items missing for total_items=%d", ErrInvalidPage, r.TotalItems)
	}
	return nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func ValidPageSize(n int) bool {
	for _, size := range PageSizes {
		if size == n {
			return true
		}
	}
	return false
}

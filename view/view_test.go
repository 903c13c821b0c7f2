package view

import (
	"errors"
	"testing"
	"time"

	"github.com/honganh1206/convodash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opts = Options{ViewerHost: "viewer.example", Location: time.UTC}

func response(current, total int, ids ...string) *schema.ConversationsResponse {
	items := make([]schema.Conversation, 0, len(ids))
	for _, id := range ids {
		items = append(items, schema.Conversation{
			ID:        id,
			CreatedAt: time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 5, 2, 9, 45, 15, 0, time.UTC),
		})
	}
	start := (current - 1) * 10
	return &schema.ConversationsResponse{
		Items:           items,
		TotalItems:      total * 10,
		StartIndex:      start,
		EndIndex:        start + len(items),
		TotalPages:      total,
		CurrentPage:     current,
		CurrentPageSize: 10,
	}
}

func TestDerive_Loading(t *testing.T) {
	m := Derive(true, nil, opts)

	assert.Equal(t, BodyLoading, m.Body)
	assert.Equal(t, LoadingText, m.Placeholder)
	assert.Nil(t, m.Stats)
	assert.False(t, m.Pagination.Visible)
}

func TestDerive_LoadingWithStaleResponse(t *testing.T) {
	m := Derive(true, response(2, 3, "a"), opts)

	assert.Equal(t, BodyLoading, m.Body)
	assert.Empty(t, m.Rows)
	require.NotNil(t, m.Stats)
	assert.Equal(t, 2, m.Stats.CurrentPage)
}

func TestDerive_EmptyState(t *testing.T) {
	resp := &schema.ConversationsResponse{
		Items:           []schema.Conversation{},
		TotalItems:      0,
		TotalPages:      1,
		CurrentPage:     1,
		CurrentPageSize: 10,
	}

	m := Derive(false, resp, opts)

	assert.Equal(t, BodyEmpty, m.Body)
	assert.Equal(t, "No conversations found", m.Placeholder)
	assert.Empty(t, m.Rows)
	require.NotNil(t, m.Stats)
	assert.Equal(t, 0, m.Stats.TotalConversations)
}

func TestDerive_NilItemsIsEmpty(t *testing.T) {
	m := Derive(false, &schema.ConversationsResponse{TotalPages: 1, CurrentPage: 1}, opts)
	assert.Equal(t, BodyEmpty, m.Body)
}

func TestDerive_Rows(t *testing.T) {
	m := Derive(false, response(1, 1, "c-2", "c-1"), opts)

	assert.Equal(t, BodyRows, m.Body)
	require.Len(t, m.Rows, 2)
	assert.Equal(t, "c-2", m.Rows[0].ID)
	assert.Equal(t, "c-1", m.Rows[1].ID)
	assert.Equal(t, "2024-05-01 08:30:00", m.Rows[0].CreatedAt)
	assert.Equal(t, "2024-05-02 09:45:15", m.Rows[0].UpdatedAt)
	assert.Equal(t, "https://viewer.example/?conversation=c-2", m.Rows[0].ViewURL)
}

func TestDerive_RowTimesInViewerLocation(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*60*60)
	m := Derive(false, response(1, 1, "x"), Options{Location: riyadh})

	assert.Equal(t, "2024-05-01 11:30:00", m.Rows[0].CreatedAt)
	assert.Equal(t, "https://argaam.vacts.online/?conversation=x", m.Rows[0].ViewURL)
}

func TestDerive_NoResponseNotLoading(t *testing.T) {
	m := Derive(false, nil, opts)

	assert.Equal(t, BodyRows, m.Body)
	assert.Empty(t, m.Rows)
	assert.Nil(t, m.Stats)
}

func TestDerive_Stats(t *testing.T) {
	m := Derive(false, response(2, 4, "a", "b", "c"), opts)

	require.NotNil(t, m.Stats)
	assert.Equal(t, 40, m.Stats.TotalConversations)
	assert.Equal(t, "2 / 4", m.Stats.PageText())
	assert.Equal(t, "11 - 13", m.Stats.ShowingText())
}

func TestDerive_Pagination(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		visible bool
		canPrev bool
		canNext bool
	}{
		{"single page", 1, 1, false, false, false},
		{"first of many", 1, 3, true, false, true},
		{"middle", 2, 3, true, true, true},
		{"last", 3, 3, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Derive(false, response(tt.current, tt.total, "x"), opts)

			assert.Equal(t, tt.visible, m.Pagination.Visible)
			assert.Equal(t, tt.canPrev, m.Pagination.CanPrev)
			assert.Equal(t, tt.canNext, m.Pagination.CanNext)
		})
	}

	m := Derive(false, response(2, 5, "x"), opts)
	assert.Equal(t, "Page 2 of 5", m.Pagination.Label)
}

func TestViewerURL_EscapesID(t *testing.T) {
	assert.Equal(t, "https://viewer.example/?conversation=a+b%26c", ViewerURL("viewer.example", "a b&c"))
}

func TestModel_WithError(t *testing.T) {
	m := Derive(false, nil, opts).WithError(errors.New("boom"))
	assert.Equal(t, "boom", m.Error)

	m = Derive(false, nil, opts).WithError(nil)
	assert.Empty(t, m.Error)
}

func TestBody_String(t *testing.T) {
	assert.Equal(t, "loading", BodyLoading.String())
	assert.Equal(t, "empty", BodyEmpty.String())
	assert.Equal(t, "rows", BodyRows.String())
}

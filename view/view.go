package view

import (
	"fmt"
	"net/url"
	"time"

	"github.com/honganh1206/convodash/schema"
)

const (
	LoadingText = "Loading conversations..."
	EmptyText   = "No conversations found"

	DefaultViewerHost = "argaam.vacts.online"
	TimeLayout        = "2006-01-02 15:04:05"
)

type Body int

const (
	BodyRows Body = iota
	BodyLoading
	BodyEmpty
)

func (b Body) String() string {
	switch b {
	case BodyLoading:
		return "loading"
	case BodyEmpty:
		return "empty"
	default:
		return "rows"
	}
}

type Options struct {
	ViewerHost string
	Location   *time.Location
}

type Stats struct {
	TotalConversations int
	CurrentPage        int
	TotalPages         int
	ShowingFrom        int
	ShowingTo          int
}

func (s Stats) PageText() string {
	return fmt.Sprintf("%d / %d", s.CurrentPage, s.TotalPages)
}

func (s Stats) ShowingText() string {
	return fmt.Sprintf("%d - %d", s.ShowingFrom, s.ShowingTo)
}

type Row struct {
	ID        string
	CreatedAt string
	UpdatedAt string
	ViewURL   string
}

type Pagination struct {
	Visible bool
	Label   string
	CanPrev bool
	CanNext bool
}

type Model struct {
	Body        Body
	Placeholder string
	// Stats is nil until a response has arrived.
	Stats      *Stats
	Rows       []Row
	Pagination Pagination
	Error      string
}

// Derive computes everything the dashboard displays from the loading flag and
// the latest response. It has no side effects.
func Derive(loading bool, resp *schema.ConversationsResponse, opts Options) Model {
	if opts.ViewerHost == "" {
		opts.ViewerHost = DefaultViewerHost
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	var m Model

	if resp != nil {
		m.Stats = &Stats{
			TotalConversations: resp.TotalItems,
			CurrentPage:        resp.CurrentPage,
			TotalPages:         resp.TotalPages,
			ShowingFrom:        resp.StartIndex + 1,
			ShowingTo:          resp.EndIndex,
		}
		m.Pagination = Pagination{
			Visible: resp.TotalPages > 1,
			Label:   fmt.Sprintf("Page %d of %d", resp.CurrentPage, resp.TotalPages),
			CanPrev: resp.CurrentPage > 1,
			CanNext: resp.CurrentPage < resp.TotalPages,
		}
	}

	switch {
	case loading:
		m.Body = BodyLoading
		m.Placeholder = LoadingText
	case resp != nil && len(resp.Items) == 0:
		m.Body = BodyEmpty
		m.Placeholder = EmptyText
	default:
		m.Body = BodyRows
		if resp != nil {
			m.Rows = make([]Row, 0, len(resp.Items))
			for _, c := range resp.Items {
				m.Rows = append(m.Rows, Row{
					ID:        c.ID,
					CreatedAt: formatTime(c.CreatedAt, opts.Location),
					UpdatedAt: formatTime(c.UpdatedAt, opts.Location),
					ViewURL:   ViewerURL(opts.ViewerHost, c.ID),
				})
			}
		}
	}

	return m
}

// WithError attaches the last failure to the model.
func (m Model) WithError(err error) Model {
	if err != nil {
		m.Error = err.Error()
	}
	return m
}

func ViewerURL(host, id string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/",
		RawQuery: url.Values{"conversation": {id}}.Encode(),
	}
	return u.String()
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(TimeLayout)
}

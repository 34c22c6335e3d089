package v1

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/cgallello/remembered/server/service/reminder"
	"github.com/cgallello/remembered/store"
)

// maxFeedItems caps the upcoming feed.
const maxFeedItems = 50

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Feed renders upcoming reminders as an Atom feed.
// GET /api/v1/feed.atom
func (s *APIV1Service) Feed(c echo.Context) error {
	limit := maxFeedItems
	list, err := s.Reminder.List(c.Request().Context(), reminder.ListRequest{Upcoming: true, Limit: &limit})
	if err != nil {
		return s.writeError(c, err)
	}

	base := c.Scheme() + "://" + c.Request().Host + "/api/v1/reminders/"
	feed := &feeds.Feed{
		Title:       "Remembered: upcoming",
		Link:        &feeds.Link{Href: base},
		Description: "Upcoming birthdays, anniversaries and appointments",
		Created:     s.Reminder.Now(),
	}
	for _, r := range list {
		item, err := s.feedItem(base, r)
		if err != nil {
			return s.writeError(c, err)
		}
		feed.Items = append(feed.Items, item)
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return s.writeError(c, fmt.Errorf("failed to render feed: %w", err))
	}
	return c.Blob(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(atom))
}

func (s *APIV1Service) feedItem(base string, r *store.Reminder) (*feeds.Item, error) {
	date := r.DateTime(s.Reminder.Location())
	title := r.Title
	if countdown := s.Reminder.Countdown(r); countdown != "" {
		title = fmt.Sprintf("%s (%s)", r.Title, countdown)
	}

	item := &feeds.Item{
		Id:      r.UID,
		Title:   title,
		Link:    &feeds.Link{Href: base + r.UID},
		Created: time.Unix(r.CreatedTs, 0),
		Updated: time.Unix(r.UpdatedTs, 0),
	}
	if date != nil {
		item.Description = fmt.Sprintf("%s on %s", r.Type, date.Format("Monday, January 2, 2006"))
	}
	if r.Notes != "" {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(r.Notes), &buf); err != nil {
			return nil, fmt.Errorf("failed to render notes of %s: %w", r.UID, err)
		}
		item.Content = buf.String()
	}
	return item, nil
}

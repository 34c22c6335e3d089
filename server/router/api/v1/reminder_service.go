package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cgallello/remembered/plugin/notify"
	"github.com/cgallello/remembered/plugin/parse"
	apperrors "github.com/cgallello/remembered/server/internal/errors"
	"github.com/cgallello/remembered/server/service/reminder"
	"github.com/cgallello/remembered/store"
)

// Reminder is the API representation of a stored reminder.
type Reminder struct {
	UID                   string     `json:"uid"`
	RawInput              string     `json:"raw_input"`
	Title                 string     `json:"title"`
	Date                  *time.Time `json:"date,omitempty"`
	Type                  string     `json:"type"`
	Recurrence            string     `json:"recurrence"`
	NeedsReview           bool       `json:"needs_review"`
	Notes                 string     `json:"notes,omitempty"`
	NotificationEnabled   bool       `json:"notification_enabled"`
	NotificationIntervals []string   `json:"notification_intervals"`
	ContactID             string     `json:"contact_id,omitempty"`
	ContactDisplayName    string     `json:"contact_display_name,omitempty"`
	DaysUntil             *int       `json:"days_until,omitempty"`
	Countdown             string     `json:"countdown,omitempty"`
	CreatedTs             int64      `json:"created_ts"`
	UpdatedTs             int64      `json:"updated_ts"`
}

func (s *APIV1Service) convertReminder(r *store.Reminder) *Reminder {
	view := &Reminder{
		UID:                   r.UID,
		RawInput:              r.RawInput,
		Title:                 r.Title,
		Date:                  r.DateTime(s.Reminder.Location()),
		Type:                  r.Type,
		Recurrence:            r.Recurrence,
		NeedsReview:           r.NeedsReview,
		Notes:                 r.Notes,
		NotificationEnabled:   r.NotificationEnabled,
		NotificationIntervals: r.NotificationIntervals,
		ContactID:             r.ContactID,
		ContactDisplayName:    r.ContactDisplayName,
		CreatedTs:             r.CreatedTs,
		UpdatedTs:             r.UpdatedTs,
	}
	if view.NotificationIntervals == nil {
		view.NotificationIntervals = []string{}
	}
	if days, ok := s.Reminder.DaysUntil(r); ok {
		view.DaysUntil = &days
		view.Countdown = reminder.Countdown(days)
	}
	return view
}

// OutcomeResponse is returned by calls that save a reminder.
type OutcomeResponse struct {
	Reminder *Reminder      `json:"reminder"`
	Alerts   []notify.Alert `json:"alerts"`
	// AlertError is set when the reminder was saved but its alerts were not.
	AlertError *ErrorResponse `json:"alert_error,omitempty"`
}

func (s *APIV1Service) convertOutcome(out *reminder.Outcome) *OutcomeResponse {
	resp := &OutcomeResponse{
		Reminder: s.convertReminder(out.Reminder),
		Alerts:   out.Alerts,
	}
	if resp.Alerts == nil {
		resp.Alerts = []notify.Alert{}
	}
	if out.AlertErr != nil {
		resp.AlertError = newErrorResponse(out.AlertErr)
	}
	return resp
}

// ParseRequest is the body of POST /parse.
type ParseRequest struct {
	Text       string `json:"text"`
	StickyType string `json:"sticky_type,omitempty"`
}

// ParseResponse previews what a capture would save.
type ParseResponse struct {
	parse.Result
	PredictedType parse.Category `json:"predicted_type"`
	Countdown     string         `json:"countdown,omitempty"`
}

// Parse previews the parse of a phrase without saving it.
// POST /api/v1/parse
func (s *APIV1Service) Parse(c echo.Context) error {
	var req ParseRequest
	if err := c.Bind(&req); err != nil {
		return s.bindError(c, err)
	}
	var sticky parse.Category
	if req.StickyType != "" {
		category, ok := parse.ParseCategory(req.StickyType)
		if !ok {
			return s.writeError(c, apperrors.InvalidArgument("unknown sticky_type "+req.StickyType))
		}
		sticky = category
	}

	result, predicted, err := s.Reminder.PredictType(c.Request().Context(), req.Text, sticky)
	if err != nil {
		return s.writeError(c, err)
	}
	resp := &ParseResponse{Result: result, PredictedType: predicted}
	if days, ok := reminder.DaysUntil(result.Date, s.Reminder.Now()); ok {
		resp.Countdown = reminder.Countdown(days)
	}
	return c.JSON(http.StatusOK, resp)
}

// CaptureRequest is the body of POST /reminders.
type CaptureRequest struct {
	Text        string `json:"text"`
	ContactName string `json:"contact_name,omitempty"`
	ContactID   string `json:"contact_id,omitempty"`
}

// CaptureReminder parses and saves a new reminder.
// POST /api/v1/reminders
func (s *APIV1Service) CaptureReminder(c echo.Context) error {
	var req CaptureRequest
	if err := c.Bind(&req); err != nil {
		return s.bindError(c, err)
	}
	out, err := s.Reminder.Capture(c.Request().Context(), reminder.CaptureRequest{
		Text:        req.Text,
		ContactName: req.ContactName,
		ContactID:   req.ContactID,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, s.convertOutcome(out))
}

// ListRemindersResponse is the body of GET /reminders.
type ListRemindersResponse struct {
	Reminders []*Reminder `json:"reminders"`
}

// ListReminders lists reminders, soonest first and undated last.
// GET /api/v1/reminders?type=birthday&needs_review=true&upcoming=true&limit=10&offset=0
func (s *APIV1Service) ListReminders(c echo.Context) error {
	req := reminder.ListRequest{}
	if v := c.QueryParam("type"); v != "" {
		req.Type = &v
	}
	if v := c.QueryParam("needs_review"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s.writeError(c, apperrors.InvalidArgument("needs_review must be a boolean"))
		}
		req.NeedsReview = &b
	}
	if v := c.QueryParam("upcoming"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s.writeError(c, apperrors.InvalidArgument("upcoming must be a boolean"))
		}
		req.Upcoming = b
	}
	for name, target := range map[string]**int{"limit": &req.Limit, "offset": &req.Offset} {
		v := c.QueryParam(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return s.writeError(c, apperrors.InvalidArgument(name+" must be a non-negative integer"))
		}
		*target = &n
	}

	list, err := s.Reminder.List(c.Request().Context(), req)
	if err != nil {
		return s.writeError(c, err)
	}
	resp := &ListRemindersResponse{Reminders: make([]*Reminder, 0, len(list))}
	for _, r := range list {
		resp.Reminders = append(resp.Reminders, s.convertReminder(r))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetReminder returns one reminder.
// GET /api/v1/reminders/:uid
func (s *APIV1Service) GetReminder(c echo.Context) error {
	r, err := s.Reminder.Get(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, s.convertReminder(r))
}

// UpdateReminderRequest is the body of PATCH /reminders/:uid. Absent fields
// are left unchanged.
type UpdateReminderRequest struct {
	Title                 *string   `json:"title,omitempty"`
	Date                  *string   `json:"date,omitempty"`
	ClearDate             bool      `json:"clear_date,omitempty"`
	Type                  *string   `json:"type,omitempty"`
	Recurrence            *string   `json:"recurrence,omitempty"`
	Notes                 *string   `json:"notes,omitempty"`
	NotificationIntervals *[]string `json:"notification_intervals,omitempty"`
}

// UpdateReminder edits a reminder and reschedules its alerts.
// PATCH /api/v1/reminders/:uid
func (s *APIV1Service) UpdateReminder(c echo.Context) error {
	var req UpdateReminderRequest
	if err := c.Bind(&req); err != nil {
		return s.bindError(c, err)
	}
	update := reminder.UpdateRequest{
		Title:      req.Title,
		ClearDate:  req.ClearDate,
		Type:       req.Type,
		Recurrence: req.Recurrence,
		Notes:      req.Notes,
		Intervals:  req.NotificationIntervals,
	}
	if req.Date != nil && !req.ClearDate {
		date, err := parseDate(*req.Date, s.Reminder.Location())
		if err != nil {
			return s.writeError(c, err)
		}
		update.Date = &date
	}

	out, err := s.Reminder.Update(c.Request().Context(), c.Param("uid"), update)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, s.convertOutcome(out))
}

// DeleteReminder deletes a reminder and its alerts.
// DELETE /api/v1/reminders/:uid
func (s *APIV1Service) DeleteReminder(c echo.Context) error {
	if err := s.Reminder.Delete(c.Request().Context(), c.Param("uid")); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// TriggerResponse is one computed trigger.
type TriggerResponse struct {
	ID        string          `json:"id"`
	Interval  notify.Interval `json:"interval"`
	Friendly  string          `json:"friendly"`
	At        time.Time       `json:"at"`
	Repeating bool            `json:"repeating"`
}

// ListTriggers previews the triggers a reminder currently computes to.
// GET /api/v1/reminders/:uid/triggers
func (s *APIV1Service) ListTriggers(c echo.Context) error {
	uid := c.Param("uid")
	triggers, err := s.Reminder.Triggers(c.Request().Context(), uid)
	if err != nil {
		return s.writeError(c, err)
	}
	resp := make([]TriggerResponse, 0, len(triggers))
	for _, t := range triggers {
		resp = append(resp, TriggerResponse{
			ID:        notify.TriggerID(uid, t.Interval),
			Interval:  t.Interval,
			Friendly:  t.Interval.Friendly(),
			At:        t.At,
			Repeating: t.Repeating,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"triggers": resp})
}

// SetNotificationsRequest is the body of POST /reminders/:uid/notifications.
type SetNotificationsRequest struct {
	Enabled bool `json:"enabled"`
}

// SetNotifications turns a reminder's alerts on or off.
// POST /api/v1/reminders/:uid/notifications
func (s *APIV1Service) SetNotifications(c echo.Context) error {
	var req SetNotificationsRequest
	if err := c.Bind(&req); err != nil {
		return s.bindError(c, err)
	}
	out, err := s.Reminder.SetNotifications(c.Request().Context(), c.Param("uid"), req.Enabled)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, s.convertOutcome(out))
}

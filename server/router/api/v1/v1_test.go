package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgallello/remembered/internal/profile"
	"github.com/cgallello/remembered/plugin/notify"
	apperrors "github.com/cgallello/remembered/server/internal/errors"
	"github.com/cgallello/remembered/server/internal/observability"
	"github.com/cgallello/remembered/server/service/reminder"
	storetest "github.com/cgallello/remembered/store/test"
)

var fixedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type testAPI struct {
	echo      *echo.Echo
	scheduler *notify.MemoryAlertScheduler
}

func newTestAPI(t *testing.T, pro bool) *testAPI {
	t.Helper()
	ts := storetest.NewTestingStore(context.Background(), t)
	scheduler := notify.NewMemoryAlertScheduler()
	now := func() time.Time { return fixedNow }
	svc := reminder.NewService(ts, notify.NewManager(scheduler, now),
		reminder.WithClock(now),
		reminder.WithLocation(time.UTC),
		reminder.WithEntitlement(reminder.StaticEntitlement(pro)),
	)

	api := NewAPIV1Service(&profile.Profile{Mode: "dev", Version: "test"}, svc)
	api.Metrics = observability.NewMetrics(10)
	e := echo.New()
	api.RegisterRoutes(e)
	return &testAPI{echo: e, scheduler: scheduler}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testAPI) capture(t *testing.T, text string) *OutcomeResponse {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/reminders", `{"text":"`+text+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*OutcomeResponse](t, rec)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, false)
	for _, path := range []string{"/healthz", "/api/v1/healthz"} {
		rec := api.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	}
}

func TestParse(t *testing.T) {
	api := newTestAPI(t, false)

	rec := api.do(t, http.MethodPost, "/api/v1/parse", `{"text":"Stef birthday 8/8"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, "Stef", got["title"])
	assert.Equal(t, "birthday", got["type"])
	assert.Equal(t, "birthday", got["predicted_type"])
	assert.Equal(t, "2027-08-08T12:00:00Z", got["date"])
	assert.Equal(t, "293 days", got["countdown"])

	rec = api.do(t, http.MethodPost, "/api/v1/parse", `{"text":"Lunch","sticky_type":"medical"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[map[string]any](t, rec)
	assert.Equal(t, "other", got["type"])
	assert.Equal(t, "medical", got["predicted_type"])
	assert.NotContains(t, got, "date")

	rec = api.do(t, http.MethodPost, "/api/v1/parse", `{"text":"Lunch","sticky_type":"holiday"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.ErrCodeInvalidArgument, decode[*ErrorResponse](t, rec).Code)

	rec = api.do(t, http.MethodPost, "/api/v1/parse", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReminderLifecycle(t *testing.T) {
	api := newTestAPI(t, false)

	created := api.capture(t, "Stef birthday 8/8")
	uid := created.Reminder.UID
	require.NotEmpty(t, uid)
	assert.Equal(t, "Stef", created.Reminder.Title)
	assert.Equal(t, []string{"oneWeek", "dayOf"}, created.Reminder.NotificationIntervals)
	assert.Equal(t, "293 days", created.Reminder.Countdown)
	assert.Empty(t, created.Alerts)
	assert.Nil(t, created.AlertError)

	undated := api.capture(t, "Dentist checkup")
	assert.True(t, undated.Reminder.NeedsReview)
	assert.Nil(t, undated.Reminder.DaysUntil)

	rec := api.do(t, http.MethodGet, "/api/v1/reminders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[*ListRemindersResponse](t, rec)
	require.Len(t, list.Reminders, 2)
	assert.Equal(t, uid, list.Reminders[0].UID)

	rec = api.do(t, http.MethodGet, "/api/v1/reminders?needs_review=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[*ListRemindersResponse](t, rec)
	require.Len(t, list.Reminders, 1)
	assert.Equal(t, "Dentist", list.Reminders[0].Title)

	rec = api.do(t, http.MethodGet, "/api/v1/reminders?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPatch, "/api/v1/reminders/"+undated.Reminder.UID, `{"date":"2026-12-25","recurrence":"annual"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[*OutcomeResponse](t, rec)
	require.NotNil(t, patched.Reminder.Date)
	assert.Equal(t, time.Date(2026, 12, 25, 12, 0, 0, 0, time.UTC), patched.Reminder.Date.UTC())
	assert.False(t, patched.Reminder.NeedsReview)
	assert.Equal(t, "annual", patched.Reminder.Recurrence)

	rec = api.do(t, http.MethodPatch, "/api/v1/reminders/"+uid, `{"date":"next week"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/reminders/"+uid, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Stef", decode[*Reminder](t, rec).Title)

	rec = api.do(t, http.MethodGet, "/api/v1/reminders/"+uid+"/triggers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"triggers":[]`, "notifications are off")

	rec = api.do(t, http.MethodPost, "/api/v1/reminders/"+uid+"/notifications", `{"enabled":true}`)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, apperrors.ErrCodeNotEntitled, decode[*ErrorResponse](t, rec).Code)

	rec = api.do(t, http.MethodDelete, "/api/v1/reminders/"+uid, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/reminders/"+uid, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errResp := decode[*ErrorResponse](t, rec)
	assert.Equal(t, apperrors.ErrCodeNotFound, errResp.Code)
	assert.False(t, errResp.Retryable)
}

func TestNotificationsForPro(t *testing.T) {
	api := newTestAPI(t, true)

	created := api.capture(t, "Mom anniversary 11/20")
	uid := created.Reminder.UID
	assert.True(t, created.Reminder.NotificationEnabled)
	require.Len(t, created.Alerts, 2)
	assert.Equal(t, uid+"-oneWeek", created.Alerts[0].ID)

	rec := api.do(t, http.MethodGet, "/api/v1/reminders/"+uid+"/triggers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	triggers := decode[map[string][]TriggerResponse](t, rec)["triggers"]
	require.Len(t, triggers, 2)
	assert.Equal(t, "in 1 week", triggers[0].Friendly)
	assert.Equal(t, uid+"-dayOf", triggers[1].ID)

	rec = api.do(t, http.MethodGet, "/api/v1/settings/notification-time", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "09:00", decode[*NotificationTime](t, rec).Time)

	rec = api.do(t, http.MethodPut, "/api/v1/settings/notification-time", `{"hour":18,"minute":30}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	nt := decode[*NotificationTime](t, rec)
	assert.Equal(t, "18:30", nt.Time)
	require.NotNil(t, nt.Alerts)
	assert.Equal(t, 2, *nt.Alerts)

	alert, ok := api.scheduler.Get(uid + "-dayOf")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 11, 20, 18, 30, 0, 0, time.UTC), alert.At)

	rec = api.do(t, http.MethodPut, "/api/v1/settings/notification-time", `{"hour":24,"minute":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/alerts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	alerts := decode[map[string][]notify.Alert](t, rec)["alerts"]
	assert.Len(t, alerts, 2)

	rec = api.do(t, http.MethodPost, "/api/v1/reminders/"+uid+"/notifications", `{"enabled":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[*OutcomeResponse](t, rec).Reminder.NotificationEnabled)
	assert.Zero(t, api.scheduler.Len())

	rec = api.do(t, http.MethodGet, "/api/v1/system/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFeed(t *testing.T) {
	api := newTestAPI(t, false)

	created := api.capture(t, "Stef birthday 8/8")
	rec := api.do(t, http.MethodPatch, "/api/v1/reminders/"+created.Reminder.UID, `{"notes":"bring *cake*"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	api.capture(t, "Dentist checkup")

	rec = api.do(t, http.MethodGet, "/api/v1/feed.atom", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/atom+xml")

	body := rec.Body.String()
	assert.Contains(t, body, "<feed")
	assert.Contains(t, body, "Stef (293 days)")
	assert.Contains(t, body, "birthday on Sunday, August 8, 2027")
	assert.Contains(t, body, "&lt;em&gt;cake&lt;/em&gt;")
	assert.NotContains(t, body, "Dentist", "undated reminders are not upcoming")
}

package calendar

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleGateway talks to Google Calendar with a service account.
type GoogleGateway struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogleGateway creates a gateway from a service-account credentials file.
func NewGoogleGateway(ctx context.Context, credentialsFile, calendarID string) (*GoogleGateway, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read credentials file %s", credentialsFile)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse service account credentials")
	}

	return NewGoogleGatewayWithOptions(ctx, calendarID, option.WithHTTPClient(jwtConfig.Client(ctx)))
}

// NewGoogleGatewayWithOptions creates a gateway with explicit client options.
func NewGoogleGatewayWithOptions(ctx context.Context, calendarID string, opts ...option.ClientOption) (*GoogleGateway, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar service")
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleGateway{svc: svc, calendarID: calendarID}, nil
}

// InsertEvent implements Gateway.
func (g *GoogleGateway) InsertEvent(ctx context.Context, event Event) (*Event, error) {
	body := &gcal.Event{
		Summary: event.Summary,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, body).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert event")
	}

	slog.Info("event created", "calendar_id", g.calendarID, "event_id", created.Id, "link", created.HtmlLink)
	return fromGoogleEvent(created), nil
}

// ListEvents implements Gateway.
func (g *GoogleGateway) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*Event, error) {
	call := g.svc.Events.List(g.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	var events []*Event
	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			events = append(events, fromGoogleEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}
	return events, nil
}

func fromGoogleEvent(item *gcal.Event) *Event {
	event := &Event{
		ID:       item.Id,
		Summary:  item.Summary,
		HTMLLink: item.HtmlLink,
	}
	if item.Start != nil {
		event.TimeZone = item.Start.TimeZone
		event.StartRaw, event.Start = parseEventDateTime(item.Start)
	}
	if item.End != nil {
		_, event.End = parseEventDateTime(item.End)
	}
	return event
}

// parseEventDateTime prefers the timed value and falls back to the all-day date.
func parseEventDateTime(dt *gcal.EventDateTime) (string, time.Time) {
	if dt.DateTime != "" {
		t, _ := time.Parse(time.RFC3339, dt.DateTime)
		return dt.DateTime, t
	}

	loc := time.UTC
	if dt.TimeZone != "" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	}
	t, _ := time.ParseInLocation(time.DateOnly, dt.Date, loc)
	return dt.Date, t
}

// Ensure GoogleGateway implements Gateway
var _ Gateway = (*GoogleGateway)(nil)

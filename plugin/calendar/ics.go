package calendar

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"github.com/teambition/rrule-go"
)

const (
	icsProductID = "-//calassist//calendar assistant//EN"

	// maxOccurrencesPerEvent caps recurrence expansion of a single VEVENT.
	maxOccurrencesPerEvent = 5000
)

// ICSGateway keeps events in a local iCalendar file.
type ICSGateway struct {
	mu   sync.Mutex
	path string
	loc  *time.Location
	now  func() time.Time
}

// NewICSGateway creates a gateway backed by the file at path. The file is
// created on first insert. Listed events are reported in loc.
func NewICSGateway(path string, loc *time.Location) *ICSGateway {
	if loc == nil {
		loc = time.Local
	}
	return &ICSGateway{
		path: path,
		loc:  loc,
		now:  time.Now,
	}
}

// InsertEvent implements Gateway.
func (g *ICSGateway) InsertEvent(ctx context.Context, event Event) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cal, err := g.load()
	if err != nil {
		return nil, err
	}

	uid := shortuuid.New()
	now := g.now()

	ve := cal.AddEvent(uid)
	ve.SetCreatedTime(now)
	ve.SetDtStampTime(now)
	ve.SetModifiedAt(now)
	ve.SetStartAt(event.Start)
	ve.SetEndAt(event.End)
	ve.SetSummary(event.Summary)

	if err := g.save(cal); err != nil {
		return nil, err
	}

	created := &Event{
		ID:       uid,
		Summary:  event.Summary,
		Start:    event.Start.In(g.loc),
		End:      event.End.In(g.loc),
		TimeZone: g.loc.String(),
		StartRaw: event.Start.In(g.loc).Format(time.RFC3339),
	}
	slog.Info("event created", "path", g.path, "event_id", uid)
	return created, nil
}

// ListEvents implements Gateway.
func (g *ICSGateway) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timeMax.Before(timeMin) {
		return nil, errors.New("timeMax is before timeMin")
	}

	g.mu.Lock()
	cal, err := g.load()
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var events []*Event
	for _, ve := range cal.Events() {
		occurrences, err := g.expand(ve, timeMin, timeMax)
		if err != nil {
			slog.Warn("skipping unreadable event", "path", g.path, "error", err)
			continue
		}
		events = append(events, occurrences...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// expand returns the occurrences of ve that overlap [from, to].
func (g *ICSGateway) expand(ve *ical.VEvent, from, to time.Time) ([]*Event, error) {
	start, err := ve.GetStartAt()
	if err != nil {
		return nil, errors.Wrap(err, "invalid DTSTART")
	}
	end, err := ve.GetEndAt()
	if err != nil || end.Before(start) {
		end = start
	}
	duration := end.Sub(start)

	var summary, uid string
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = p.Value
	}

	starts := []time.Time{start}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		rule, err := rrule.StrToRRule(p.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid RRULE %q", p.Value)
		}
		rule.DTStart(start)

		var set rrule.Set
		set.RRule(rule)
		// Include occurrences that started before the window but still run into it.
		starts = set.Between(from.Add(-duration), to, true)
		if len(starts) > maxOccurrencesPerEvent {
			starts = starts[:maxOccurrencesPerEvent]
		}
	}

	out := make([]*Event, 0, len(starts))
	for _, s := range starts {
		e := s.Add(duration)
		if e.Before(from) || (duration > 0 && e.Equal(from)) || s.After(to) {
			continue
		}
		local := s.In(g.loc)
		out = append(out, &Event{
			ID:       uid,
			Summary:  summary,
			Start:    local,
			End:      e.In(g.loc),
			TimeZone: g.loc.String(),
			StartRaw: local.Format(time.RFC3339),
		})
	}
	return out, nil
}

// load reads the calendar file, or returns an empty calendar if it does not exist yet.
func (g *ICSGateway) load() (*ical.Calendar, error) {
	data, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(bytes.TrimSpace(data)) == 0) {
		cal := ical.NewCalendar()
		cal.SetMethod(ical.MethodPublish)
		cal.SetProductId(icsProductID)
		return cal, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read calendar file %s", g.path)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse calendar file %s", g.path)
	}
	return cal, nil
}

// save writes the calendar through a temp file so readers never see a partial file.
func (g *ICSGateway) save(cal *ical.Calendar) error {
	dir := filepath.Dir(g.path)
	tmp, err := os.CreateTemp(dir, ".calassist-*.ics")
	if err != nil {
		return errors.Wrap(err, "failed to create temp calendar file")
	}
	defer os.Remove(tmp.Name())

	if err := cal.SerializeTo(tmp); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to serialize calendar")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write calendar")
	}
	if err := os.Rename(tmp.Name(), g.path); err != nil {
		return errors.Wrapf(err, "failed to replace calendar file %s", g.path)
	}
	return nil
}

// Ensure ICSGateway implements Gateway
var _ Gateway = (*ICSGateway)(nil)

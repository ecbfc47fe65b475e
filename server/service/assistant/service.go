package assistant

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/calassist/plugin/ai"
	"github.com/hrygo/calassist/plugin/ai/aitime"
	"github.com/hrygo/calassist/plugin/ai/router"
	"github.com/hrygo/calassist/plugin/ai/session"
	"github.com/hrygo/calassist/plugin/ai/timeout"
	"github.com/hrygo/calassist/plugin/calendar"
	errs "github.com/hrygo/calassist/server/internal/errors"
	"github.com/hrygo/calassist/server/internal/observability"
	"github.com/hrygo/calassist/server/timezone"
)

// DefaultBookingWorkers bounds concurrent calendar inserts.
const DefaultBookingWorkers = 4

// Config wires the collaborators of the message router.
type Config struct {
	Extractor aitime.Extractor
	Router    router.RouterService
	Sessions  session.Store
	Calendar  calendar.Gateway
	Chat      ai.LLMService

	// Location is the home timezone for listings and confirmations.
	Location *time.Location
	// BookingWorkers bounds concurrent calendar inserts. Default: 4.
	BookingWorkers int

	Metrics *observability.Metrics
	Logger  *slog.Logger
	// Now is the clock used for "tomorrow". Default: the wall clock in Location.
	Now func() time.Time
}

// Service is the message router.
type Service struct {
	extractor aitime.Extractor
	router    router.RouterService
	sessions  session.Store
	calendar  calendar.Gateway
	chat      ai.LLMService

	loc         *time.Location
	bookingPool *semaphore.Weighted
	metrics     *observability.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a message router.
func NewService(cfg Config) (*Service, error) {
	switch {
	case cfg.Extractor == nil:
		return nil, errors.New("assistant: datetime extractor is required")
	case cfg.Router == nil:
		return nil, errors.New("assistant: intent router is required")
	case cfg.Sessions == nil:
		return nil, errors.New("assistant: session store is required")
	case cfg.Calendar == nil:
		return nil, errors.New("assistant: calendar gateway is required")
	case cfg.Chat == nil:
		return nil, errors.New("assistant: chat model is required")
	}

	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.BookingWorkers <= 0 {
		cfg.BookingWorkers = DefaultBookingWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		loc := cfg.Location
		cfg.Now = func() time.Time { return timezone.NowInTimezone(loc) }
	}

	return &Service{
		extractor:   cfg.Extractor,
		router:      cfg.Router,
		sessions:    cfg.Sessions,
		calendar:    cfg.Calendar,
		chat:        cfg.Chat,
		loc:         cfg.Location,
		bookingPool: semaphore.NewWeighted(int64(cfg.BookingWorkers)),
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}, nil
}

// Handle implements Handler.
func (s *Service) Handle(ctx context.Context, sessionID, message string) (string, error) {
	if sessionID == "" {
		sessionID = session.DefaultSessionID
	}

	rc := observability.NewRequestContext(s.logger, sessionID)
	if parent, ok := observability.FromContext(ctx); ok {
		rc.RequestID = parent.RequestID
	}
	ctx = observability.WithRequestContext(ctx, rc)

	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	if err := s.sessions.Append(ctx, sessionID, session.UserMessage(message)); err != nil {
		return "", errors.Wrap(err, "failed to record user message")
	}

	intent := s.router.ClassifyIntent(ctx, message)
	rc.SetIntent(intent.String())
	s.metrics.IncMessage(intent.String())
	rc.Debug("message received", slog.Int(observability.LogFieldMessageLen, len(message)))

	reply, status := s.dispatch(ctx, rc, intent, sessionID, message)

	if err := s.sessions.Append(ctx, sessionID, session.AssistantMessage(reply)); err != nil {
		rc.Error("failed to record assistant reply", err)
	}

	s.metrics.SetSessions(s.sessions.Len())
	s.metrics.ObserveDispatch(intent.String(), status, rc.Duration())
	rc.Info("message handled",
		slog.String("status", status),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()))

	return reply, nil
}

// dispatch runs the action for intent. Errors and panics become the
// internal error reply.
func (s *Service) dispatch(ctx context.Context, rc *observability.RequestContext, intent router.Intent, sessionID, message string) (reply string, status string) {
	defer func() {
		if r := recover(); r != nil {
			err := errs.Internal("dispatch panicked", fmt.Errorf("%v", r))
			rc.Error("dispatch panicked", err,
				slog.String(observability.LogFieldErrorCode, string(err.Code)),
				slog.String("stack", string(debug.Stack())))
			reply, status = fmt.Sprintf(ReplyInternalError, r), statusError
		}
	}()

	var err error
	switch intent {
	case router.IntentListAppointments:
		reply, err = s.listAppointments(ctx, rc)
	case router.IntentBookEvent:
		reply, err = s.bookEvent(ctx, rc, message)
	default:
		reply, err = s.generalChat(ctx, sessionID)
	}

	if err != nil {
		code := errs.GetCodeFromError(err, errs.ErrCodeInternal)
		rc.Error("dispatch failed", err, slog.String(observability.LogFieldErrorCode, string(code)))
		return fmt.Sprintf(ReplyInternalError, causeMessage(err)), statusError
	}
	return reply, statusOK
}

// listAppointments replies with tomorrow's events. A failed listing is
// logged and reported like an empty day.
func (s *Service) listAppointments(ctx context.Context, rc *observability.RequestContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout.CalendarTimeout)
	defer cancel()

	events, err := calendar.EventsForTomorrow(ctx, s.calendar, s.loc, s.now())
	if err != nil {
		gwErr := errs.CalendarUnavailable(opList, err)
		rc.Warn("listing appointments failed, reporting none",
			slog.String("error", gwErr.Error()),
			slog.String(observability.LogFieldErrorCode, string(gwErr.Code)))
		s.metrics.IncGatewayFailure(observability.GatewayCalendar, opList)
		s.metrics.IncListing(observability.ListOutcomeFailed)
		return ReplyNoAppointments, nil
	}

	if len(events) == 0 {
		s.metrics.IncListing(observability.ListOutcomeEmpty)
		return ReplyNoAppointments, nil
	}
	s.metrics.IncListing(observability.ListOutcomeFound)

	return formatAppointments(events), nil
}

// bookEvent extracts a time and title from message and inserts the event.
func (s *Service) bookEvent(ctx context.Context, rc *observability.RequestContext, message string) (string, error) {
	interval, err := s.extractor.Extract(ctx, message)
	if stderrors.Is(err, aitime.ErrNoMatch) {
		rc.Info("no date or time in booking request")
		return ReplyClarification, nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to extract booking time")
	}

	title := s.router.ExtractTitle(message)
	event := calendar.Event{
		Summary:  title,
		Start:    interval.Start,
		End:      interval.End,
		TimeZone: s.loc.String(),
	}

	created, err := s.insert(ctx, event)
	if err != nil {
		gwErr := errs.CalendarUnavailable(opInsert, err)
		rc.Error("booking failed", gwErr, slog.String(observability.LogFieldErrorCode, string(gwErr.Code)))
		s.metrics.IncGatewayFailure(observability.GatewayCalendar, opInsert)
		return fmt.Sprintf(ReplyBookingFailed, title), nil
	}

	rc.Info("event booked",
		slog.String("title", title),
		slog.String("event_id", created.ID),
		slog.String("start", interval.Start.Format(time.RFC3339)))
	return fmt.Sprintf(ReplyBooked, title, timezone.FormatBooking(interval.Start, s.loc)), nil
}

// insert runs a calendar insert on the bounded booking pool.
func (s *Service) insert(ctx context.Context, event calendar.Event) (*calendar.Event, error) {
	if err := s.bookingPool.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.bookingPool.Release(1)

	s.metrics.IncBookingsInFlight()
	defer s.metrics.DecBookingsInFlight()

	ctx, cancel := context.WithTimeout(ctx, timeout.CalendarTimeout)
	defer cancel()

	return s.calendar.InsertEvent(ctx, event)
}

// generalChat sends the whole transcript, including the new user turn, to
// the chat model.
func (s *Service) generalChat(ctx context.Context, sessionID string) (string, error) {
	transcript := s.sessions.GetOrCreate(ctx, sessionID)

	messages := make([]ai.Message, 0, len(transcript))
	for _, m := range transcript {
		messages = append(messages, ai.Message{Role: string(m.Role), Content: m.Content})
	}

	reply, err := s.chat.Chat(ctx, messages)
	if err != nil {
		s.metrics.IncGatewayFailure(observability.GatewayChat, opChat)
		return "", errs.LLMUnavailable(err)
	}
	return reply, nil
}

func formatAppointments(events []*calendar.Event) string {
	var b strings.Builder
	b.WriteString(ReplyAppointmentsHeader)
	for _, e := range events {
		summary := e.Summary
		if summary == "" {
			summary = UntitledEvent
		}
		fmt.Fprintf(&b, ReplyAppointmentLine, summary, timezone.FormatListingStart(e.StartRaw))
	}
	return b.String()
}

// causeMessage renders the error a user sees: the gateway's own message
// rather than the internal code wrapper.
func causeMessage(err error) string {
	var aiErr *errs.AIError
	if stderrors.As(err, &aiErr) && aiErr.Cause != nil {
		return aiErr.Cause.Error()
	}
	return err.Error()
}

// Ensure Service implements Handler
var _ Handler = (*Service)(nil)

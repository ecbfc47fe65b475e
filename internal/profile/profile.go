package profile

import (
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/calassist/server/timezone"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Version is the current version of server
	Version string

	// Timezone is the home timezone used to read booking times (default: Asia/Kolkata)
	Timezone string

	// Calendar Configuration
	CalendarBackend string // CALASSIST_CALENDAR_BACKEND: google or ics (default: google)
	CalendarID      string // CALASSIST_CALENDAR_ID (default: primary)
	CredentialsFile string // CALASSIST_CREDENTIALS_FILE (default: credentials.json)
	ICSPath         string // CALASSIST_ICS_PATH (default: calendar.ics)

	// Chat Model Configuration
	LLMProvider    string  // CALASSIST_LLM_PROVIDER (default: openai)
	LLMModel       string  // CALASSIST_LLM_MODEL (default: gpt-4o-mini)
	LLMAPIKey      string  // CALASSIST_LLM_API_KEY
	LLMBaseURL     string  // CALASSIST_LLM_BASE_URL (default: provider endpoint)
	LLMMaxTokens   int     // CALASSIST_LLM_MAX_TOKENS (default: 2048)
	LLMTemperature float32 // CALASSIST_LLM_TEMPERATURE (CLI default: 0.7), 0 is a valid setting

	// Session Configuration
	SessionCapacity int           // CALASSIST_SESSION_CAPACITY, 0 keeps every session
	SessionIdleTTL  time.Duration // CALASSIST_SESSION_IDLE_TTL, 0 disables idle cleanup

	// Runtime limits
	BookingWorkers int     // CALASSIST_BOOKING_WORKERS (default: 4)
	RateLimit      float64 // CALASSIST_RATE_LIMIT requests per second per session (default: 10)
	RateBurst      int     // CALASSIST_RATE_BURST (default: 20)
	IPRateLimit    float64 // CALASSIST_IP_RATE_LIMIT requests per second per client IP (default: 50)
	IPRateBurst    int     // CALASSIST_IP_RATE_BURST (default: 100)
}

const (
	DefaultTimezone        = timezone.TimezoneAsiaKolkata
	DefaultCalendarID      = "primary"
	DefaultCredentialsFile = "credentials.json"
	DefaultICSPath         = "calendar.ics"
	DefaultLLMProvider     = "openai"
	DefaultLLMModel        = "gpt-4o-mini"
	DefaultLLMTemperature  = 0.7
	DefaultBookingWorkers  = 4
	DefaultRateLimit       = 10
	DefaultRateBurst       = 20
	DefaultIPRateLimit     = 50
	DefaultIPRateBurst     = 100
)

const (
	BackendGoogle = "google"
	BackendICS    = "ics"
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Validate fills defaults and checks the fields that cannot be defaulted.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Port == 0 {
		p.Port = 8000
	}

	if p.Timezone == "" {
		p.Timezone = DefaultTimezone
	}
	if !timezone.IsValidTimezone(p.Timezone) {
		return errors.Errorf("invalid timezone %q", p.Timezone)
	}

	if p.CalendarBackend == "" {
		p.CalendarBackend = BackendGoogle
	}
	if p.CalendarID == "" {
		p.CalendarID = DefaultCalendarID
	}
	switch p.CalendarBackend {
	case BackendGoogle:
		if p.CredentialsFile == "" {
			p.CredentialsFile = DefaultCredentialsFile
		}
		if _, err := os.Stat(p.CredentialsFile); err != nil {
			slog.Error("failed to access calendar credentials", slog.String("file", p.CredentialsFile), slog.String("error", err.Error()))
			return errors.Wrapf(err, "unable to access credentials file %s", p.CredentialsFile)
		}
	case BackendICS:
		if p.ICSPath == "" {
			p.ICSPath = DefaultICSPath
		}
	default:
		return errors.Errorf("unsupported calendar backend %q", p.CalendarBackend)
	}

	if p.LLMProvider == "" {
		p.LLMProvider = DefaultLLMProvider
	}
	if p.LLMModel == "" {
		p.LLMModel = DefaultLLMModel
	}

	if p.SessionCapacity < 0 {
		return errors.Errorf("session capacity must not be negative, got %d", p.SessionCapacity)
	}
	if p.SessionIdleTTL < 0 {
		p.SessionIdleTTL = 0
	}
	if p.BookingWorkers <= 0 {
		p.BookingWorkers = DefaultBookingWorkers
	}
	if p.RateLimit <= 0 {
		p.RateLimit = DefaultRateLimit
	}
	if p.RateBurst <= 0 {
		p.RateBurst = DefaultRateBurst
	}
	if p.IPRateLimit <= 0 {
		p.IPRateLimit = DefaultIPRateLimit
	}
	if p.IPRateBurst <= 0 {
		p.IPRateBurst = DefaultIPRateBurst
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/calassist/internal/profile"
	"github.com/hrygo/calassist/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "calassist",
		Short: `A conversational calendar assistant: list tomorrow's appointments, book events from plain English, chat about the rest.`,
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile, err := loadProfile()
			if err != nil {
				slog.Error("invalid configuration", "error", err)
				os.Exit(1)
			}
			setupLogger(instanceProfile)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := server.NewServer(ctx, instanceProfile)
			if err != nil {
				slog.Error("failed to create server", "error", err)
				os.Exit(1)
			}
			if err := s.Start(); err != nil {
				slog.Error("failed to start server", "error", err)
				os.Exit(1)
			}

			printGreetings(instanceProfile)

			if err := s.Run(ctx); err != nil {
				slog.Error("server exited with error", "error", err)
				os.Exit(1)
			}
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 8000)
	viper.SetDefault("timezone", profile.DefaultTimezone)
	viper.SetDefault("calendar-backend", profile.BackendGoogle)
	viper.SetDefault("calendar-id", profile.DefaultCalendarID)
	viper.SetDefault("credentials-file", profile.DefaultCredentialsFile)
	viper.SetDefault("ics-path", profile.DefaultICSPath)
	viper.SetDefault("llm-provider", profile.DefaultLLMProvider)
	viper.SetDefault("llm-model", profile.DefaultLLMModel)
	viper.SetDefault("llm-temperature", profile.DefaultLLMTemperature)
	viper.SetDefault("booking-workers", profile.DefaultBookingWorkers)
	viper.SetDefault("rate-limit", profile.DefaultRateLimit)
	viper.SetDefault("rate-burst", profile.DefaultRateBurst)
	viper.SetDefault("ip-rate-limit", profile.DefaultIPRateLimit)
	viper.SetDefault("ip-rate-burst", profile.DefaultIPRateBurst)

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 8000, "port of server")
	flags.String("timezone", profile.DefaultTimezone, "home timezone used to read booking times")
	flags.String("calendar-backend", profile.BackendGoogle, `calendar backend, "google" or "ics"`)
	flags.String("calendar-id", profile.DefaultCalendarID, "google calendar id")
	flags.String("credentials-file", profile.DefaultCredentialsFile, "google service account credentials")
	flags.String("ics-path", profile.DefaultICSPath, "iCalendar file used by the ics backend")
	flags.String("llm-provider", profile.DefaultLLMProvider, "chat model provider: openai, deepseek or ollama")
	flags.String("llm-model", profile.DefaultLLMModel, "chat model name")
	flags.String("llm-api-key", "", "chat model API key")
	flags.String("llm-base-url", "", "chat model endpoint, defaults to the provider's")
	flags.Int("llm-max-tokens", 2048, "maximum tokens per chat reply")
	flags.Float32("llm-temperature", profile.DefaultLLMTemperature, "chat model temperature")
	flags.Int("session-capacity", 0, "maximum sessions kept in memory, 0 keeps all")
	flags.Duration("session-idle-ttl", 0, "drop sessions idle for this long, 0 disables")
	flags.Int("booking-workers", profile.DefaultBookingWorkers, "concurrent calendar inserts")
	flags.Float64("rate-limit", profile.DefaultRateLimit, "chat requests per second per session")
	flags.Int("rate-burst", profile.DefaultRateBurst, "chat request burst per session")
	flags.Float64("ip-rate-limit", profile.DefaultIPRateLimit, "chat requests per second per client IP")
	flags.Int("ip-rate-burst", profile.DefaultIPRateBurst, "chat request burst per client IP")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("calassist")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:            viper.GetString("mode"),
		Addr:            viper.GetString("addr"),
		Port:            viper.GetInt("port"),
		Version:         version,
		Timezone:        viper.GetString("timezone"),
		CalendarBackend: viper.GetString("calendar-backend"),
		CalendarID:      viper.GetString("calendar-id"),
		CredentialsFile: viper.GetString("credentials-file"),
		ICSPath:         viper.GetString("ics-path"),
		LLMProvider:     viper.GetString("llm-provider"),
		LLMModel:        viper.GetString("llm-model"),
		LLMAPIKey:       viper.GetString("llm-api-key"),
		LLMBaseURL:      viper.GetString("llm-base-url"),
		LLMMaxTokens:    viper.GetInt("llm-max-tokens"),
		LLMTemperature:  float32(viper.GetFloat64("llm-temperature")),
		SessionCapacity: viper.GetInt("session-capacity"),
		SessionIdleTTL:  viper.GetDuration("session-idle-ttl"),
		BookingWorkers:  viper.GetInt("booking-workers"),
		RateLimit:       viper.GetFloat64("rate-limit"),
		RateBurst:       viper.GetInt("rate-burst"),
		IPRateLimit:     viper.GetFloat64("ip-rate-limit"),
		IPRateBurst:     viper.GetInt("ip-rate-burst"),
	}
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	return instanceProfile, nil
}

func setupLogger(p *profile.Profile) {
	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("calassist %s started successfully!\n", p.Version)
	if p.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
	}
	fmt.Printf("Calendar backend: %s, home timezone: %s\n", p.CalendarBackend, p.Timezone)
	if len(p.Addr) != 0 {
		fmt.Printf("Server running at http://%s:%d\n", p.Addr, p.Port)
	} else {
		fmt.Printf("Server running on port %d\n", p.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}

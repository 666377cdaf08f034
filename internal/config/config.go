package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values. It is built once at process
// start and passed into the services that need it; core logic never
// reads configuration ambiently.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// CalDAV store.
	CalDAVServerURL           string `mapstructure:"CALDAV_SERVER_URL"`
	CalDAVUsername            string `mapstructure:"CALDAV_USERNAME"`
	CalDAVPassword            string `mapstructure:"CALDAV_PASSWORD"`
	CalDAVCalendar            string `mapstructure:"CALDAV_CALENDAR"`
	CalDAVAdditionalCalendars string `mapstructure:"CALDAV_ADDITIONAL_CALENDARS"`

	// Meeting-room API.
	MeetAPIBaseURL string `mapstructure:"MEET_API_BASE_URL"`
	MeetAPIKey     string `mapstructure:"MEET_API_KEY"`

	// Booking identity.
	OrganizerEmail string `mapstructure:"ORGANIZER_EMAIL"`

	// Optional Google Calendar busy source.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleAccount      string `mapstructure:"GOOGLE_ACCOUNT"`
	GoogleCalendarIDs  string `mapstructure:"GOOGLE_CALENDAR_IDS"`

	// Weekly working hours, each "H-H,H-H" (e.g. "8-12,14-18").
	HoursMon string `mapstructure:"HOURS_MON"`
	HoursTue string `mapstructure:"HOURS_TUE"`
	HoursWed string `mapstructure:"HOURS_WED"`
	HoursThu string `mapstructure:"HOURS_THU"`
	HoursFri string `mapstructure:"HOURS_FRI"`
	HoursSat string `mapstructure:"HOURS_SAT"`
	HoursSun string `mapstructure:"HOURS_SUN"`

	// Allowed slot lengths in hours, e.g. "0.5,1".
	SlotLengths string `mapstructure:"SLOT_LENGTHS"`
}

// Load reads configuration from a config.yaml (current or config/
// directory) and the environment, with environment taking precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv values survive Unmarshal.
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("CALDAV_SERVER_URL", "")
	v.SetDefault("CALDAV_USERNAME", "")
	v.SetDefault("CALDAV_PASSWORD", "")
	v.SetDefault("CALDAV_CALENDAR", "")
	v.SetDefault("CALDAV_ADDITIONAL_CALENDARS", "")
	v.SetDefault("MEET_API_BASE_URL", "https://api.whereby.dev/v1")
	v.SetDefault("MEET_API_KEY", "")
	v.SetDefault("ORGANIZER_EMAIL", "")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_ACCOUNT", "default")
	v.SetDefault("GOOGLE_CALENDAR_IDS", "")
	v.SetDefault("HOURS_MON", "9-17")
	v.SetDefault("HOURS_TUE", "9-17")
	v.SetDefault("HOURS_WED", "9-17")
	v.SetDefault("HOURS_THU", "9-17")
	v.SetDefault("HOURS_FRI", "9-17")
	v.SetDefault("HOURS_SAT", "")
	v.SetDefault("HOURS_SUN", "")
	v.SetDefault("SLOT_LENGTHS", "0.5,1")

	// Missing config file is fine; environment variables carry the rest.
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WeekdayHours returns the raw per-weekday strings keyed the way the
// schedule parser expects.
func (c *Config) WeekdayHours() map[string]string {
	return map[string]string{
		"MON": c.HoursMon,
		"TUE": c.HoursTue,
		"WED": c.HoursWed,
		"THU": c.HoursThu,
		"FRI": c.HoursFri,
		"SAT": c.HoursSat,
		"SUN": c.HoursSun,
	}
}

// AdditionalCalendars splits the comma-separated additional calendar
// names, dropping empties.
func (c *Config) AdditionalCalendars() []string {
	return splitList(c.CalDAVAdditionalCalendars)
}

// GoogleCalendars splits the comma-separated Google calendar IDs.
func (c *Config) GoogleCalendars() []string {
	return splitList(c.GoogleCalendarIDs)
}

// GoogleEnabled reports whether the optional Google busy source is
// configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && len(c.GoogleCalendars()) > 0
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

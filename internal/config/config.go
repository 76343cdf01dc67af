package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"wedding-site/internal/models"
)

// WeddingDateLayout is accepted for WEDDING_DATE in addition to RFC 3339.
const WeddingDateLayout = "2006-01-02T15:04:05"

// Config holds the application configuration
type Config struct {
	Env       string
	Addr      string
	PublicURL string
	LogLevel  string
	LogFormat string

	WhatsAppDataDir  string
	WhatsAppNotifyTo string

	WeddingDate     time.Time
	WeddingLocation string
	BrideName       string
	GroomName       string

	Store StoreConfig
	Mail  MailConfig
	Redis RedisConfig

	IPLookupURL    string
	HTTPTimeout    time.Duration
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For; empty keeps gin's default.
	TrustedProxies []string
	GalleryEager   int
	MediaDir       string

	Content models.Content
}

// StoreConfig selects and configures the row store backend.
type StoreConfig struct {
	Driver      string
	DataDir     string
	SQLitePath  string
	DatabaseURL string
	SupabaseURL string
	SupabaseKey string
}

// MailConfig configures the RSVP confirmation email.
type MailConfig struct {
	Driver       string
	ResendAPIKey string
	ResendURL    string
	From         string
	Subject      string
	OverrideTo   string
}

// RedisConfig is optional; an empty address keeps like locks in process.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// IsProd reports whether the server runs in production mode.
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

var defaults = map[string]any{
	"ENV":                "development",
	"ADDR":               ":8080",
	"PUBLIC_URL":         "http://localhost:8080",
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "console",
	"WHATSAPP_DATA_DIR":  "data",
	"WHATSAPP_NOTIFY_TO": "",
	"WEDDING_DATE":       "2024-12-31T10:00:00",
	"WEDDING_LOCATION":   "St. Mary's Cathedral",
	"BRIDE_NAME":         "Sarah Anderson",
	"GROOM_NAME":         "Michael Roberts",
	"STORE_DRIVER":       "file",
	"DATA_DIR":           "data",
	"SQLITE_PATH":        "data/wedding.db",
	"DATABASE_URL":       "",
	"SUPABASE_URL":       "",
	"SUPABASE_ANON_KEY":  "",
	"MAIL_DRIVER":        "function",
	"RESEND_API_KEY":     "",
	"RESEND_URL":         "https://api.resend.com/emails",
	"MAIL_FROM":          "onboarding@resend.dev",
	"MAIL_SUBJECT":       "Wedding RSVP Confirmation",
	"EMAIL_OVERRIDE_TO":  "",
	"REDIS_ADDR":         "",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"IP_LOOKUP_URL":      "https://api.ipify.org?format=json",
	"HTTP_TIMEOUT":       "10s",
	"ALLOWED_ORIGINS":    "http://localhost:8080",
	"TRUSTED_PROXIES":    "",
	"GALLERY_EAGER":      3,
	"CONTENT_FILE":       "",
	"MEDIA_DIR":          "media",
}

// LoadConfig loads configuration from a .env file, environment variables and
// an optional content file, falling back to defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	weddingDate, err := parseWeddingDate(v.GetString("WEDDING_DATE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:              v.GetString("ENV"),
		Addr:             v.GetString("ADDR"),
		PublicURL:        strings.TrimRight(v.GetString("PUBLIC_URL"), "/"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		WhatsAppDataDir:  v.GetString("WHATSAPP_DATA_DIR"),
		WhatsAppNotifyTo: v.GetString("WHATSAPP_NOTIFY_TO"),
		WeddingDate:      weddingDate,
		WeddingLocation:  v.GetString("WEDDING_LOCATION"),
		BrideName:        v.GetString("BRIDE_NAME"),
		GroomName:        v.GetString("GROOM_NAME"),
		Store: StoreConfig{
			Driver:      v.GetString("STORE_DRIVER"),
			DataDir:     v.GetString("DATA_DIR"),
			SQLitePath:  v.GetString("SQLITE_PATH"),
			DatabaseURL: v.GetString("DATABASE_URL"),
			SupabaseURL: strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
			SupabaseKey: v.GetString("SUPABASE_ANON_KEY"),
		},
		Mail: MailConfig{
			Driver:       v.GetString("MAIL_DRIVER"),
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
			ResendURL:    v.GetString("RESEND_URL"),
			From:         v.GetString("MAIL_FROM"),
			Subject:      v.GetString("MAIL_SUBJECT"),
			OverrideTo:   v.GetString("EMAIL_OVERRIDE_TO"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		IPLookupURL:    v.GetString("IP_LOOKUP_URL"),
		HTTPTimeout:    v.GetDuration("HTTP_TIMEOUT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		GalleryEager:   v.GetInt("GALLERY_EAGER"),
		MediaDir:       v.GetString("MEDIA_DIR"),
	}

	content, err := loadContent(v.GetString("CONTENT_FILE"), cfg.BrideName, cfg.GroomName)
	if err != nil {
		return nil, err
	}
	cfg.Content = content

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "file", "sql":
	case "rest":
		if c.Store.SupabaseURL == "" || c.Store.SupabaseKey == "" {
			return errors.New("STORE_DRIVER=rest needs SUPABASE_URL and SUPABASE_ANON_KEY")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Mail.Driver {
	case "function", "resend", "none":
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver)
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("invalid TRUSTED_PROXIES entry %q", p)
			}
		}
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

func parseWeddingDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(WeddingDateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid WEDDING_DATE %q: %w", value, err)
	}
	return t, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Session tokens
	JWTSecret      string
	SessionExpiry  time.Duration
	SessionCookie  string
	RedirectCookie string

	// Identity provider (Google OAuth)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Access policy
	AllowedEmailSuffix string

	// Outbound mail
	SendGridAPIKey string
	SendGridAPIURL string
	MailFrom       string

	// Feed. 0 disables pruning of the loaded working set (snapshot semantics).
	FeedPruneInterval time.Duration

	// Server
	Port          string
	CORSOrigins   string
	PublicBaseURL string
}

func Load() *Config {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "bearbites"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		SessionExpiry:  parseDuration(getEnv("SESSION_EXPIRY", "168h"), 168*time.Hour),
		SessionCookie:  getEnv("SESSION_COOKIE", "bearbites_session"),
		RedirectCookie: getEnv("REDIRECT_COOKIE", "postSignInRedirect"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/callback"),

		AllowedEmailSuffix: getEnv("ALLOWED_EMAIL_SUFFIX", "@berkeley.edu"),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		SendGridAPIURL: getEnv("SENDGRID_API_URL", "https://api.sendgrid.com/v3/mail/send"),
		MailFrom:       getEnv("MAIL_FROM", "bearbites@asuc.org"),

		FeedPruneInterval: parseDuration(getEnv("FEED_PRUNE_INTERVAL", "0s"), 0),

		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

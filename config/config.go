package config

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/jordanlanch/ironoak/pkg/secrets"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string
	BaseURL        string

	// Storage
	DataDir string

	// Redis (optional: webhook dedupe and durable follow-ups)
	RedisURL string

	// Follow-up calls
	FollowUpBackend    string // "timer" or "asynq"
	FollowUpQueue      string
	FollowUpMinMinutes int
	FollowUpMaxMinutes int

	// JWT & Security
	JWTSecret          string
	JWTExpirationHours int
	AdminEmail         string
	AdminAPIKey        string

	// CORS
	CORSAllowedOrigins []string

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	// Twilio
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	TwilioValidate    bool

	// Conversational agent
	AgentAPIKey      string
	AgentID          string
	AgentRegisterURL string
	AgentName        string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePaymentLink   string

	// Google Calendar
	GoogleCalendarID        string
	GoogleServiceAccountKey string

	// Business
	OperatorPhone    string
	OperatorContact  string
	BookingLink      string
	CourseDates      string
	CourseTime       string
	CourseLocation   string
	CoursePrice      string
	MinCallSeconds   int
	CalendarTimezone string

	// Logging
	LogLevel string

	// Sentry
	SentryDSN         string
	SentryEnvironment string

	// Secrets backend
	SecretsBackend string
	AWSRegion      string

	// Backups
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	S3Bucket            string
	BackupRetentionDays int

	// Notifications
	SlackWebhookURL string
	SendGridAPIKey  string
	EmailFrom       string
	EmailFromName   string
	OperatorEmail   string
}

// Load loads configuration from environment variables, reading a .env file first when one exists
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️  Failed to read .env file: %v", err)
	}

	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),
		BaseURL:        strings.TrimRight(getEnv("BASE_URL", "https://api.iron-oak.ca"), "/"),

		// Storage
		DataDir: getDataDir(),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Follow-ups
		FollowUpBackend:    getEnv("FOLLOWUP_BACKEND", "timer"),
		FollowUpQueue:      getEnv("FOLLOWUP_QUEUE", "followups"),
		FollowUpMinMinutes: getEnvAsInt("FOLLOWUP_MIN_MINUTES", 5),
		FollowUpMaxMinutes: getEnvAsInt("FOLLOWUP_MAX_MINUTES", 10),

		// JWT
		JWTSecret:          getEnv("JWT_SECRET", "change-this-in-production"),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@iron-oak.ca"),
		AdminAPIKey:        getEnv("ADMIN_API_KEY", ""),

		// CORS
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{
			"https://iron-oak.ca",
			"https://www.iron-oak.ca",
		}),

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),

		// Twilio
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		TwilioValidate:    getEnvAsBool("TWILIO_VALIDATE_SIGNATURES", true),

		// Agent
		AgentAPIKey:      getEnv("ELEVENLABS_API_KEY", ""),
		AgentID:          getEnv("ELEVENLABS_AGENT_ID", ""),
		AgentRegisterURL: getEnv("ELEVENLABS_REGISTER_URL", "https://api.elevenlabs.io/v1/convai/twilio/register-call"),
		AgentName:        getEnv("AGENT_NAME", "Jordan AI"),

		// Stripe
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePaymentLink:   getEnv("STRIPE_PAYMENT_LINK", "https://buy.stripe.com/3cI8wPfvVh0tgTb7iSgnK02"),

		// Google Calendar
		GoogleCalendarID:        getEnv("GOOGLE_CALENDAR_ID", "primary"),
		GoogleServiceAccountKey: getEnv("GOOGLE_SERVICE_ACCOUNT_KEY", ""),

		// Business
		OperatorPhone:    getEnv("OPERATOR_PHONE", "+14036136014"),
		OperatorContact:  getEnv("OPERATOR_CONTACT", "403-613-6014"),
		BookingLink:      getEnv("BOOKING_LINK", "https://calendly.com/iron-oak"),
		CourseDates:      getEnv("COURSE_DATES", ""),
		CourseTime:       getEnv("COURSE_TIME", ""),
		CourseLocation:   getEnv("COURSE_LOCATION", ""),
		CoursePrice:      getEnv("COURSE_PRICE", "$280 CAD (all 4 sessions)"),
		MinCallSeconds:   getEnvAsInt("MIN_CALL_SECONDS", 20),
		CalendarTimezone: getEnv("CALENDAR_TIMEZONE", "America/Denver"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "development"),

		// Secrets
		SecretsBackend: getEnv("SECRETS_BACKEND", "env"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),

		// Backups
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		BackupRetentionDays: getEnvAsInt("BACKUP_RETENTION_DAYS", 30),

		// Notifications
		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:       getEnv("EMAIL_FROM", "noreply@iron-oak.ca"),
		EmailFromName:   getEnv("EMAIL_FROM_NAME", "Iron & Oak"),
		OperatorEmail:   getEnv("OPERATOR_EMAIL", ""),
	}
}

// ResolveSecrets overlays credentials held by the secrets backend onto the
// values read from the environment
func (c *Config) ResolveSecrets(ctx context.Context, m secrets.Manager) {
	secrets.Overlay(ctx, m, map[string]*string{
		"TWILIO_AUTH_TOKEN":     &c.TwilioAuthToken,
		"STRIPE_SECRET_KEY":     &c.StripeSecretKey,
		"STRIPE_WEBHOOK_SECRET": &c.StripeWebhookSecret,
		"ELEVENLABS_API_KEY":    &c.AgentAPIKey,
		"JWT_SECRET":            &c.JWTSecret,
		"ADMIN_API_KEY":         &c.AdminAPIKey,
		"SENDGRID_API_KEY":      &c.SendGridAPIKey,
	})
}

// getDataDir honours the volume mount variables of the hosting platforms before falling back to ./data
func getDataDir() string {
	for _, key := range []string{"DATA_DIR", "RAILWAY_VOLUME_MOUNT_PATH", "RENDER_DISK_PATH"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "./data"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

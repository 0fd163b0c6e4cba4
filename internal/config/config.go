package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	Debug              bool
	CORSAllowedOrigins []string
	StaffAuthSecret    string
	RateLimitRPS       float64
	RateLimitBurst     int

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Conversation context store
	ContextMaxHistory    int
	ContextIdleTTL       time.Duration
	ContextSweepInterval time.Duration

	FeedbackAggregateInterval time.Duration

	// HIPAA / compliance
	HIPAAAutoRedact       bool
	HIPAARedactNamesDates bool
	HIPAAAuditEnabled     bool
	DisclaimerEnabled     bool
	DisclaimerLevel       string

	// Voice service seam
	VoiceInputEnabled  bool
	VoiceOutputEnabled bool
	VoiceStubDelay     time.Duration

	// EHR integration seam
	EHREnabled        bool
	EHRRequireConsent bool

	// Triage escalation
	TriageAutoPrioritize bool
	TriageEscalate       bool
	EscalationEmail      string
	EscalationAckWindow  time.Duration
	ReminderInterval     time.Duration

	MaxSpecialties   int
	MaxProviderTypes int

	// ResponseSeed seeds template selection; zero seeds from the clock.
	ResponseSeed int64

	AWSRegion             string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	AWSEndpointOverride   string
	TicketUpdatesQueueURL string

	// EmailProvider selects staff email delivery: "sendgrid" or "ses".
	EmailProvider string
	SESFromEmail  string

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

// Features is the per-request view of the feature toggles.
type Features struct {
	AutoRedact        bool
	RedactNamesDates  bool
	AuditPHI          bool
	Disclaimer        bool
	VoiceInput        bool
	VoiceOutput       bool
	EHR               bool
	EHRRequireConsent bool
	AutoPrioritize    bool
	Escalate          bool
	MaxSpecialties    int
	MaxProviderTypes  int
	Debug             bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Debug:              getEnvAsBool("DEBUG", false),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		StaffAuthSecret:    getEnv("STAFF_AUTH_SECRET", ""),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ContextMaxHistory:    getEnvAsInt("CONTEXT_MAX_HISTORY", 10),
		ContextIdleTTL:       getEnvAsDuration("CONTEXT_IDLE_TTL", 30*time.Minute),
		ContextSweepInterval: getEnvAsDuration("CONTEXT_SWEEP_INTERVAL", 15*time.Minute),

		FeedbackAggregateInterval: getEnvAsDuration("FEEDBACK_AGGREGATE_INTERVAL", time.Hour),

		HIPAAAutoRedact:       getEnvAsBool("HIPAA_AUTO_REDACT", true),
		HIPAARedactNamesDates: getEnvAsBool("HIPAA_REDACT_NAMES_DATES", false),
		HIPAAAuditEnabled:     getEnvAsBool("HIPAA_AUDIT_ENABLED", true),
		DisclaimerEnabled:     getEnvAsBool("DISCLAIMER_ENABLED", false),
		DisclaimerLevel:       strings.ToLower(getEnv("DISCLAIMER_LEVEL", "medium")),

		VoiceInputEnabled:  getEnvAsBool("VOICE_INPUT_ENABLED", false),
		VoiceOutputEnabled: getEnvAsBool("VOICE_OUTPUT_ENABLED", false),
		VoiceStubDelay:     getEnvAsDuration("VOICE_STUB_DELAY", 500*time.Millisecond),

		EHREnabled:        getEnvAsBool("EHR_ENABLED", false),
		EHRRequireConsent: getEnvAsBool("EHR_REQUIRE_CONSENT", true),

		TriageAutoPrioritize: getEnvAsBool("TRIAGE_AUTO_PRIORITIZE", true),
		TriageEscalate:       getEnvAsBool("TRIAGE_ESCALATE", true),
		EscalationEmail:      getEnv("ESCALATION_EMAIL", ""),
		EscalationAckWindow:  getEnvAsDuration("ESCALATION_ACK_WINDOW", 10*time.Minute),
		ReminderInterval:     getEnvAsDuration("ESCALATION_REMINDER_INTERVAL", time.Minute),

		MaxSpecialties:   getEnvAsInt("MAX_SPECIALTIES", 3),
		MaxProviderTypes: getEnvAsInt("MAX_PROVIDER_TYPES", 5),

		ResponseSeed: getEnvAsInt64("RESPONSE_SEED", 0),

		AWSRegion:             getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:        getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride:   getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		TicketUpdatesQueueURL: getEnv("TICKET_UPDATES_QUEUE_URL", ""),

		EmailProvider: strings.ToLower(getEnv("EMAIL_PROVIDER", "sendgrid")),
		SESFromEmail:  getEnv("SES_FROM_EMAIL", ""),

		// SendGrid Email Configuration
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "CareLine Support"),
	}
}

// Features projects the toggles consulted by the analysis pipeline.
func (c *Config) Features() Features {
	return Features{
		AutoRedact:        c.HIPAAAutoRedact,
		RedactNamesDates:  c.HIPAARedactNamesDates,
		AuditPHI:          c.HIPAAAuditEnabled,
		Disclaimer:        c.DisclaimerEnabled,
		VoiceInput:        c.VoiceInputEnabled,
		VoiceOutput:       c.VoiceOutputEnabled,
		EHR:               c.EHREnabled,
		EHRRequireConsent: c.EHRRequireConsent,
		AutoPrioritize:    c.TriageAutoPrioritize,
		Escalate:          c.TriageEscalate,
		MaxSpecialties:    c.MaxSpecialties,
		MaxProviderTypes:  c.MaxProviderTypes,
		Debug:             c.Debug,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

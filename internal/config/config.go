package config

import (
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string `env:"APP_PORT" env-default:"5000"`
	AppEnv   string `env:"APP_ENV" env-default:"development"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	AWSRegion      string `env:"AWS_REGION" env-default:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	DynamoTables   DynamoTables

	Verification Verification

	MongoURI      string `env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" env-default:"storefront"`

	FrontendURL string `env:"FRONTEND_URL" env-default:"http://localhost:5173"`
	SiteName    string `env:"SITE_NAME" env-default:"FashionHub"`
	EmailFrom   string `env:"EMAIL_FROM" env-default:"onboarding@example.com"`
	SMTP        SMTP

	S3BucketName string `env:"S3_BUCKET_NAME" env-default:"storefront-product-images"`
	SNSRegion    string `env:"SNS_REGION" env-default:"us-east-1"`
	SMSEnabled   bool   `env:"SMS_ENABLED" env-default:"false"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	JWTPrivateKeyPath string        `env:"JWT_PRIVATE_KEY_PATH" env-default:"./private_key.pem"`
	JWTPublicKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH" env-default:"./public_key.pem"`
	JWTExpiry         time.Duration `env:"JWT_EXPIRY" env-default:"168h"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-default:"*" env-separator:","` // CORS allowed origins
	// Reverse proxies (CIDR or IP) whose X-Forwarded-For / X-Real-Ip headers are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES" env-separator:","`
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users              string `env:"DYNAMO_TABLE_USERS" env-default:"users"`
	VerificationTokens string `env:"DYNAMO_TABLE_VERIFICATION_TOKENS" env-default:"verification_tokens"`
	Products           string `env:"DYNAMO_TABLE_PRODUCTS" env-default:"products"`
	Carts              string `env:"DYNAMO_TABLE_CARTS" env-default:"carts"`
	Orders             string `env:"DYNAMO_TABLE_ORDERS" env-default:"orders"`
}

// Verification controls the email verification flow.
type Verification struct {
	Store         string        `env:"VERIFICATION_STORE" env-default:"dynamo"` // "dynamo" | "mongo"
	TokenTTL      time.Duration `env:"VERIFICATION_TOKEN_TTL" env-default:"24h"`
	SweepSchedule string        `env:"VERIFICATION_SWEEP_SCHEDULE" env-default:"@hourly"`
	RequireProof  bool          `env:"REQUIRE_VERIFICATION_PROOF" env-default:"false"`
	ProofTTL      time.Duration `env:"VERIFICATION_PROOF_TTL" env-default:"30m"`
}

// SMTP configures the outbound mail provider. An empty Host disables delivery
// and the verification link is logged instead.
type SMTP struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	TLS      bool   `env:"SMTP_TLS" env-default:"true"`
}

// placeholderHosts are values shipped in example .env files that must not be dialed.
var placeholderHosts = map[string]bool{
	"your-smtp-host":   true,
	"smtp.example.com": true,
}

// MailConfigured reports whether a real mail provider is configured.
func (c *Config) MailConfigured() bool {
	host := strings.TrimSpace(c.SMTP.Host)
	return host != "" && !placeholderHosts[strings.ToLower(host)]
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

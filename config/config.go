package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `envPrefix:"OVATION_APP_"`
	Server   ServerConfig   `envPrefix:"OVATION_SERVER_"`
	Log      LogConfig      `envPrefix:"OVATION_LOG_"`
	Database DatabaseConfig `envPrefix:"OVATION_DB_"`
	Session  SessionConfig  `envPrefix:"OVATION_SESSION_"`
	Auth     AuthConfig     `envPrefix:"OVATION_AUTH_"`
	Mail     MailConfig     `envPrefix:"OVATION_MAIL_"`
	OAuth    OAuthConfig    `envPrefix:"OVATION_OAUTH_"`
	Storage  StorageConfig  `envPrefix:"OVATION_STORAGE_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"Ovation"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
	// Destination users land on once a session is established.
	LoginRedirect string `env:"LOGIN_REDIRECT" envDefault:"/dashboard"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"ovation.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type SessionConfig struct {
	Store    string        `env:"STORE" envDefault:"database"`
	Name     string        `env:"NAME" envDefault:"ovation_session"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"720h"`
	Path     string        `env:"PATH" envDefault:"/"`
	Domain   string        `env:"DOMAIN"`
	Secure   bool          `env:"SECURE" envDefault:"false"`
	HttpOnly bool          `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string        `env:"SAME_SITE" envDefault:"lax"`
}

type AuthConfig struct {
	BcryptCost              int           `env:"BCRYPT_COST" envDefault:"10"`
	VerificationTokenLength int           `env:"VERIFICATION_TOKEN_LENGTH" envDefault:"32"`
	VerificationTokenExpiry time.Duration `env:"VERIFICATION_TOKEN_EXPIRY" envDefault:"1h"`
	MinPasswordLength       int           `env:"MIN_PASSWORD_LENGTH" envDefault:"8"`
	MaxPasswordLength       int           `env:"MAX_PASSWORD_LENGTH" envDefault:"72"`
}

type MailConfig struct {
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         int    `env:"PORT" envDefault:"587"`
	Username     string `env:"USERNAME"`
	Password     string `env:"PASSWORD"`
	Encryption   string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress  string `env:"FROM_ADDRESS"`
	FromName     string `env:"FROM_NAME" envDefault:"Ovation"`
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"templates/mail"`
}

type OAuthConfig struct {
	StateSecret string              `env:"STATE_SECRET"`
	StateExpiry time.Duration       `env:"STATE_EXPIRY" envDefault:"10m"`
	Google      OAuthProviderConfig `envPrefix:"GOOGLE_"`
	GitHub      OAuthProviderConfig `envPrefix:"GITHUB_"`
}

type OAuthProviderConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

type StorageConfig struct {
	Endpoint  string `env:"ENDPOINT"`
	Region    string `env:"REGION" envDefault:"us-east-1"`
	Bucket    string `env:"BUCKET" envDefault:"ovation-avatars"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	// Public base URL avatars are served from, e.g. a CDN in front of the bucket.
	PublicURL string `env:"PUBLIC_URL"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Environment    string   `mapstructure:"ENVIRONMENT"`
	Version        string   `mapstructure:"VERSION"`
	TrustedOrigins []string `mapstructure:"TRUSTED_ORIGINS"`
	TLSCertFile    string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile     string   `mapstructure:"TLS_KEY_FILE"`

	DBHost         string        `mapstructure:"POSTGRES_HOST"`
	DBPort         string        `mapstructure:"POSTGRES_PORT"`
	DBUser         string        `mapstructure:"POSTGRES_USER"`
	DBPassword     string        `mapstructure:"POSTGRES_PASSWORD"`
	DBName         string        `mapstructure:"POSTGRES_DB"`
	DBMaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxIdleTime  time.Duration `mapstructure:"DB_MAX_IDLE_TIME"`
	// DBMigrations is a golang-migrate source URL applied at startup, e.g.
	// file://migrations. Empty skips migrations.
	DBMigrations string `mapstructure:"DB_MIGRATIONS"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTIssuer string        `mapstructure:"JWT_ISSUER"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	RateLimitEnabled       bool `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitAuthPerMinute int  `mapstructure:"RATE_LIMIT_AUTH_PER_MINUTE"`
	RateLimitAPIPerMinute  int  `mapstructure:"RATE_LIMIT_API_PER_MINUTE"`

	// StrictHTTPStatus sends login failures as 422 instead of a 200 carrying
	// status 422 in the body.
	StrictHTTPStatus bool `mapstructure:"STRICT_HTTP_STATUS"`
	BlogOwnerOnly    bool `mapstructure:"BLOG_OWNER_ONLY"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	ImagesDir     string `mapstructure:"IMAGES_DIR"`
	S3Bucket      string `mapstructure:"S3_BUCKET"`
	S3Region      string `mapstructure:"S3_REGION"`
	S3AccessKey   string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey   string `mapstructure:"S3_SECRET_KEY"`
	S3Endpoint    string `mapstructure:"S3_ENDPOINT"`

	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`

	OTELEndpoint string `mapstructure:"OTEL_ENDPOINT"`
}

// Every key needs a default, otherwise viper does not pick it up from the
// environment during Unmarshal.
var configDefaults = map[string]any{
	"PORT":            "4000",
	"ENVIRONMENT":     "development",
	"VERSION":         "1.0.0",
	"TRUSTED_ORIGINS": []string{},
	"TLS_CERT_FILE":   "",
	"TLS_KEY_FILE":    "",

	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "",
	"POSTGRES_PASSWORD": "",
	"POSTGRES_DB":       "",
	"DB_MAX_OPEN_CONNS": 25,
	"DB_MAX_IDLE_CONNS": 25,
	"DB_MAX_IDLE_TIME":  "15m",
	"DB_MIGRATIONS":     "",

	"JWT_SECRET": "",
	"JWT_ISSUER": "blogauth",
	"TOKEN_TTL":  "168h",

	"RATE_LIMIT_ENABLED":         true,
	"RATE_LIMIT_AUTH_PER_MINUTE": 5,
	"RATE_LIMIT_API_PER_MINUTE":  10,

	"STRICT_HTTP_STATUS": false,
	"BLOG_OWNER_ONLY":    true,

	"STORAGE_DRIVER": "local",
	"IMAGES_DIR":     "./public/images",
	"S3_BUCKET":      "",
	"S3_REGION":      "us-east-1",
	"S3_ACCESS_KEY":  "",
	"S3_SECRET_KEY":  "",
	"S3_ENDPOINT":    "",

	"MAIL_HOST":     "",
	"MAIL_PORT":     587,
	"MAIL_USER":     "",
	"MAIL_PASSWORD": "",
	"MAIL_SENDER":   "",

	"RABBITMQ_HOST":     "",
	"RABBITMQ_PORT":     "5672",
	"RABBITMQ_USER":     "guest",
	"RABBITMQ_PASSWORD": "guest",

	"OTEL_ENDPOINT": "",
}

// loadConfig reads a dotenv file and lets environment variables override it.
// A missing file is fine, the environment and defaults are used instead.
func loadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")

		err := v.ReadInConfig()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch {
	case len(c.JWTSecret) < 16:
		return errors.New("JWT_SECRET must be at least 16 characters long")
	case c.StorageDriver != "local" && c.StorageDriver != "s3":
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	case c.StorageDriver == "s3" && c.S3Bucket == "":
		return errors.New("S3_BUCKET must be set when STORAGE_DRIVER is s3")
	case c.RateLimitAuthPerMinute < 1 || c.RateLimitAPIPerMinute < 1:
		return errors.New("rate limits must be at least one request per minute")
	}

	return nil
}

func (c *Config) addr() string {
	return ":" + c.Port
}

func (c *Config) rabbitURI() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.MQUser, c.MQPassword, c.MQHost, c.MQPort)
}

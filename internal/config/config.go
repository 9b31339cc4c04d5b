package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"

	BlobFirebase   = "firebase"
	BlobCloudinary = "cloudinary"
	BlobMemory     = "memory"
)

type GilasAI struct {
	ApiKey string `env:"GILAS_API_KEY"`
	ApiUrl string `env:"GILAS_API_URL" envDefault:"https://api.gilas.io/v1/chat/completions"`
	Model  string `env:"GILAS_GPT_MODEL" envDefault:"gpt-3.5-turbo"`
	// Reviews longer than this are cut before being sent for sentiment labelling.
	MaxReviewTokens int `env:"SENTIMENT_MAX_REVIEW_TOKENS" envDefault:"256"`
}

// Firebase holds the service account. The fields are marshalled as-is into the
// credentials JSON handed to the firebase SDK.
type Firebase struct {
	Type                    string        `env:"FIREBASE_TYPE" json:"type"`
	ProjectId               string        `env:"FIREBASE_PROJECT_ID" json:"project_id"`
	PrivateKeyId            string        `env:"FIREBASE_PRIVATE_KEY_ID" json:"private_key_id"`
	PrivateKey              string        `env:"FIREBASE_PRIVATE_KEY" json:"private_key"`
	ClientEmail             string        `env:"FIREBASE_CLIENT_EMAIL" json:"client_email"`
	ClientId                string        `env:"FIREBASE_CLIENT_ID" json:"client_id"`
	AuthUri                 string        `env:"FIREBASE_AUTH_URI" json:"auth_uri"`
	TokenUri                string        `env:"FIREBASE_TOKEN_URI" json:"token_uri"`
	AuthProviderX509CertUrl string        `env:"FIREBASE_AUTH_PROVIDER_X509_CERT_URL" json:"auth_provider_x509_cert_url"`
	ClientX509CertUrl       string        `env:"FIREBASE_CLIENT_X509_CERT_URL" json:"client_x509_cert_url"`
	WriteTimeoutSecond      time.Duration `env:"FIREBASE_WRITE_TIMEOUT_SECOND" json:"-"`
}

type Storage struct {
	Backend          string `env:"STORE_BACKEND" envDefault:"firestore"`
	Bucket           string `env:"FIREBASE_STORAGE_BUCKET"`
	BlobBackend      string `env:"BLOB_BACKEND" envDefault:"firebase"`
	CloudinaryURL    string `env:"CLOUDINARY_URL"`
	CloudinaryFolder string `env:"CLOUDINARY_FOLDER" envDefault:"reviews"`
	MaxUploadBytes   int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
}

type Server struct {
	Addr           string        `env:"HTTP_ADDR" envDefault:":5001"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://*,http://*"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"60s"`
	StaticDir      string        `env:"STATIC_DIR"`
}

type RateLimiter struct {
	Enabled   bool          `env:"RATE_LIMITER_ENABLED" envDefault:"true"`
	Requests  int           `env:"RATE_LIMITER_REQUESTS" envDefault:"100"`
	Window    time.Duration `env:"RATE_LIMITER_WINDOW" envDefault:"1m"`
	RedisAddr string        `env:"REDIS_ADDR"`
}

type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_REVIEW_TOPIC" envDefault:"review-events"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY"`
}

type Config struct {
	GilasAI
	Firebase
	Storage
	Server
	RateLimiter
	Kafka
	Log
}

func LoadConfigOrPanic() Config {
	config, err := load(env.Options{})
	if err != nil {
		panic(err)
	}
	return config
}

func load(opts env.Options) (Config, error) {
	var config *Config = new(Config)
	if err := env.ParseWithOptions(config, opts); err != nil {
		return Config{}, err
	}

	if err := config.normalize(); err != nil {
		return Config{}, err
	}
	return *config, nil
}

func (c *Config) normalize() error {

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Storage.BlobBackend = strings.ToLower(strings.TrimSpace(c.Storage.BlobBackend))

	switch c.Storage.Backend {
	case StoreFirestore:
	case StoreMemory:
		// no firebase app in memory mode, so photos cannot go to firebase storage
		if c.Storage.BlobBackend == BlobFirebase {
			c.Storage.BlobBackend = BlobMemory
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Storage.Backend)
	}

	switch c.Storage.BlobBackend {
	case BlobFirebase, BlobMemory:
	case BlobCloudinary:
		if c.Storage.CloudinaryURL == "" {
			return fmt.Errorf("config: CLOUDINARY_URL is required when BLOB_BACKEND=%s", BlobCloudinary)
		}
	default:
		return fmt.Errorf("config: unknown BLOB_BACKEND %q", c.Storage.BlobBackend)
	}

	if c.Storage.Backend == StoreFirestore {
		if c.Firebase.ProjectId == "" || c.Firebase.PrivateKey == "" || c.Firebase.ClientEmail == "" {
			return fmt.Errorf("config: firebase credentials are required when STORE_BACKEND=%s", StoreFirestore)
		}

		decodedBytes, err := base64.StdEncoding.DecodeString(c.Firebase.PrivateKey)
		if err != nil {
			return fmt.Errorf("config: FIREBASE_PRIVATE_KEY: %w", err)
		}
		c.Firebase.PrivateKey = string(decodedBytes)
		c.Firebase.PrivateKey = strings.ReplaceAll(c.Firebase.PrivateKey, "\\n", "\n")

		if c.Storage.Bucket == "" {
			c.Storage.Bucket = c.Firebase.ProjectId + ".appspot.com"
		}
	}

	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "restaurant-reviews"
	}

	if c.WriteTimeoutSecond == 0 {
		c.WriteTimeoutSecond = time.Second * 30
	}

	if c.Storage.MaxUploadBytes <= 0 {
		c.Storage.MaxUploadBytes = 5 << 20
	}

	return nil
}

// SentimentEnabled reports whether reviews should be labelled by the GPT worker.
func (c Config) SentimentEnabled() bool {
	return c.GilasAI.ApiKey != ""
}

func (c Config) FirebaseEnabled() bool {
	return c.Storage.Backend == StoreFirestore
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port                  int      `yaml:"port"`
		RequestTimeoutSeconds int      `yaml:"requestTimeoutSeconds"`
		AllowedOrigins        []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`

	Completion struct {
		// Provider is "gemini" or "openai".
		Provider        string   `yaml:"provider"`
		APIKey          string   `yaml:"apiKey"`
		Model           string   `yaml:"model"`
		BaseURL         string   `yaml:"baseUrl"`
		// Temperature is nil when unset; 0 is a valid setting.
		Temperature     *float32 `yaml:"temperature"`
		MaxOutputTokens int      `yaml:"maxOutputTokens"`
	} `yaml:"completion"`

	Auth struct {
		FirebaseProjectID          string `yaml:"firebaseProjectId"`
		FirebaseServiceAccountPath string `yaml:"firebaseServiceAccountPath"`
		JWTSecret                  string `yaml:"jwtSecret"`
		JWTIssuer                  string `yaml:"jwtIssuer"`
	} `yaml:"auth"`

	Store struct {
		// Driver is one of memory, sqlite, mysql, postgres, firestore, minio.
		Driver              string `yaml:"driver"`
		SQLitePath          string `yaml:"sqlitePath"`
		FirestoreCollection string `yaml:"firestoreCollection"`
	} `yaml:"store"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Client struct {
		APIURL string `yaml:"apiUrl"`
	} `yaml:"client"`
}

// Load reads .env (if present), the YAML file at path (if present), then
// applies environment overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	if err := num("PORT", &c.Server.Port); err != nil {
		return err
	}
	if err := num("REQUEST_TIMEOUT_SECONDS", &c.Server.RequestTimeoutSeconds); err != nil {
		return err
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)

	str("COMPLETION_PROVIDER", &c.Completion.Provider)
	str("COMPLETION_MODEL", &c.Completion.Model)
	str("COMPLETION_BASE_URL", &c.Completion.BaseURL)
	if v, ok := lookup("COMPLETION_TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("COMPLETION_TEMPERATURE: %w", err)
		}
		t := float32(f)
		c.Completion.Temperature = &t
	}
	// the key variable follows the provider; checked after the provider override
	if strings.EqualFold(c.Completion.Provider, "openai") {
		str("OPENAI_API_KEY", &c.Completion.APIKey)
	} else {
		str("GEMINI_API_KEY", &c.Completion.APIKey)
	}

	str("FIREBASE_PROJECT_ID", &c.Auth.FirebaseProjectID)
	str("FIREBASE_SERVICE_ACCOUNT_PATH", &c.Auth.FirebaseServiceAccountPath)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("JWT_ISSUER", &c.Auth.JWTIssuer)

	str("STORE_DRIVER", &c.Store.Driver)
	str("SQLITE_PATH", &c.Store.SQLitePath)

	str("DATABASE_HOST", &c.Database.Host)
	if err := num("DATABASE_PORT", &c.Database.Port); err != nil {
		return err
	}
	str("DATABASE_USER", &c.Database.User)
	str("DATABASE_PASSWORD", &c.Database.Password)
	str("DATABASE_NAME", &c.Database.Name)
	str("DATABASE_SSLMODE", &c.Database.SSLMode)

	str("MINIO_ENDPOINT", &c.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &c.Minio.SecretKey)
	str("MINIO_BUCKET", &c.Minio.BucketName)
	str("MINIO_REGION", &c.Minio.Region)
	if v, ok := lookup("MINIO_USE_SSL"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MINIO_USE_SSL: %w", err)
		}
		c.Minio.UseSSL = b
	}

	str("API_URL", &c.Client.APIURL)
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = 60
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Completion.Provider = strings.ToLower(c.Completion.Provider)
	if c.Completion.Provider == "" {
		c.Completion.Provider = "gemini"
	}
	if c.Completion.Temperature == nil {
		t := float32(0.7)
		c.Completion.Temperature = &t
	}
	if c.Completion.MaxOutputTokens == 0 {
		c.Completion.MaxOutputTokens = 8192
	}
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "analyses.db"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
		if c.Store.Driver == "postgres" {
			c.Database.Port = 5432
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Client.APIURL == "" {
		c.Client.APIURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

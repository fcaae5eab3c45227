package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	EventsChannel          string
	JWTSecret              string
	JWTTTL                 time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	VideoUploadTimeout     time.Duration
	MaxVideoMB             int
	MaxFileMB              int
	CORSOrigins            string
	RateLimitMax           int
	RateLimitWindow        time.Duration
	AnalyticsCacheTTL      time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// CloudinaryEnabled reports whether media hosting credentials are present.
func (c Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LEARN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "Sri Lankan Learning Platform")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.channel", "learning")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("cloudinary.folder", "learning-platform")
	v.SetDefault("cloudinary.upload_timeout", "90s")
	v.SetDefault("upload.max_video_mb", 500)
	v.SetDefault("upload.max_file_mb", 50)
	v.SetDefault("cors.origins", "*")
	v.SetDefault("rate_limit.max", 100)
	v.SetDefault("rate_limit.window", "15m")
	v.SetDefault("analytics.cache_ttl", "5m")

	durations := map[string]time.Duration{}
	for _, key := range []string{"jwt.ttl", "cloudinary.upload_timeout", "rate_limit.window", "analytics.cache_ttl"} {
		parsed, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("invalid %s: must be positive", key)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 strings.ToLower(v.GetString("app.env")),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventsChannel:          v.GetString("events.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 durations["jwt.ttl"],
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		VideoUploadTimeout:     durations["cloudinary.upload_timeout"],
		MaxVideoMB:             v.GetInt("upload.max_video_mb"),
		MaxFileMB:              v.GetInt("upload.max_file_mb"),
		CORSOrigins:            v.GetString("cors.origins"),
		RateLimitMax:           v.GetInt("rate_limit.max"),
		RateLimitWindow:        durations["rate_limit.window"],
		AnalyticsCacheTTL:      durations["analytics.cache_ttl"],
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MaxVideoMB <= 0 {
		cfg.MaxVideoMB = 500
	}

	if cfg.MaxFileMB <= 0 {
		cfg.MaxFileMB = 50
	}

	return cfg, nil
}

package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper). Built once at startup and
// passed to router.CreateApp; nothing reads viper after Load returns.
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	DatabaseURL         string // postgres://... or sqlite://path (sqlite://:memory: for throwaway runs)
	AutoMigrate         bool
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	SupabaseURL         string // storage sign URLs and public URLs for listing images
	SupabaseSecretKey   string // service_role key
	MediaBucket         string
	SendinblueAPIKey    string // Brevo transactional email; empty disables email
	MailFrom            string
	SiteBaseURL         string // used for links inside emails
	KafkaBrokers        []string
	KafkaTopicPrefix    string
	ListingPageSize     int
}

// IsProduction reports whether the app runs with production cookie/logging settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("MEDIA_BUCKET", "post_images")
	v.SetDefault("KAFKA_TOPIC_PREFIX", "postmarket")
	v.SetDefault("LISTING_PAGE_SIZE", 10)

	pageSize := v.GetInt("LISTING_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 10
	}

	return &Config{
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		AutoMigrate:         v.GetBool("DB_AUTO_MIGRATE"),
		RedisURL:            v.GetString("REDIS_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(v.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		SupabaseURL:         v.GetString("SUPABASE_URL"),
		SupabaseSecretKey:   v.GetString("SUPABASE_SECRET_KEY"),
		MediaBucket:         v.GetString("MEDIA_BUCKET"),
		SendinblueAPIKey:    v.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            v.GetString("MAIL_FROM"),
		SiteBaseURL:         siteBaseURL(v.GetString("SITE_BASE_URL")),
		KafkaBrokers:        splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopicPrefix:    v.GetString("KAFKA_TOPIC_PREFIX"),
		ListingPageSize:     pageSize,
	}, nil
}

func siteBaseURL(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s == "" {
		return "http://localhost:8080"
	}
	return s
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

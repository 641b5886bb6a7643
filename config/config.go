package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings is the typed view of the environment the server runs with.
type Settings struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBTimeZone string

	JWTSecret string

	StorageDriver  string // supabase | s3
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3PublicURL    string
	S3PathStyle    bool

	MuxBaseURL     string
	MuxTokenID     string
	MuxTokenSecret string
	MuxTimeout     time.Duration

	CleanupSchedule    string
	CleanupMaxAttempts int
}

// Load reads .env (if present) and the process environment.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("STORAGE_DRIVER", "supabase")
	v.SetDefault("SUPABASE_BUCKET", "uploads")
	v.SetDefault("S3_REGION", "auto")
	v.SetDefault("S3_PATH_STYLE", false)
	v.SetDefault("MUX_BASE_URL", "https://api.mux.com")
	v.SetDefault("MUX_TIMEOUT", 15*time.Second)
	v.SetDefault("CLEANUP_SCHEDULE", "@every 5m")
	v.SetDefault("CLEANUP_MAX_ATTEMPTS", 5)
	v.AutomaticEnv()

	return Settings{
		Port:        v.GetString("PORT"),
		GinMode:     v.GetString("GIN_MODE"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBTimeZone: v.GetString("DB_TIMEZONE"),

		JWTSecret: v.GetString("JWT_SECRET"),

		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		SupabaseURL:    strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseKey:    v.GetString("SUPABASE_KEY"),
		SupabaseBucket: v.GetString("SUPABASE_BUCKET"),
		S3Endpoint:     v.GetString("S3_ENDPOINT"),
		S3Region:       v.GetString("S3_REGION"),
		S3AccessKey:    v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretKey:    v.GetString("S3_SECRET_KEY"),
		S3Bucket:       v.GetString("S3_BUCKET"),
		S3PublicURL:    strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
		S3PathStyle:    v.GetBool("S3_PATH_STYLE"),

		MuxBaseURL:     v.GetString("MUX_BASE_URL"),
		MuxTokenID:     v.GetString("MUX_TOKEN_ID"),
		MuxTokenSecret: v.GetString("MUX_TOKEN_SECRET"),
		MuxTimeout:     v.GetDuration("MUX_TIMEOUT"),

		CleanupSchedule:    v.GetString("CLEANUP_SCHEDULE"),
		CleanupMaxAttempts: v.GetInt("CLEANUP_MAX_ATTEMPTS"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

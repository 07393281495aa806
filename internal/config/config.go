package config

import "os"

// Config is everything read from the environment at boot. Object-store
// settings may be missing; in that case uploads and deletes fail hard
// instead of the whole process refusing to start.
type Config struct {
	Port string

	MongoURI string
	MongoDB  string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	// S3PublicURL is the browser-facing base, distinct from the private
	// API endpoint. Pointing it at the endpoint is a known misconfig:
	// image URLs stop rendering.
	S3PublicURL string

	AdminUserID      string
	AdminUser        string
	AdminPass        string
	AdminAllowedCSV  string
	SecretKey        string
	LedgerWebhookURL string
	OpenAIKey        string

	GoogleClientID     string
	GoogleClientSecret string
	BaseURL            string
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "secondcell"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		AdminUserID:      getEnv("ADMIN_USER_ID", "admin"),
		AdminUser:        getEnv("ADMIN_USER", "admin"),
		AdminPass:        getEnv("ADMIN_PASS", "admin123"),
		AdminAllowedCSV:  os.Getenv("ADMIN_ALLOWED_EMAILS"),
		SecretKey:        os.Getenv("SECRET_KEY"),
		LedgerWebhookURL: os.Getenv("LEDGER_WEBHOOK_URL"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
	}
}

// StorageConfigured reports whether the object-store gateway has enough
// to operate. Absent config degrades upload/delete, it does not crash.
func (c Config) StorageConfigured() bool {
	return c.S3Endpoint != "" && c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3PublicURL != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

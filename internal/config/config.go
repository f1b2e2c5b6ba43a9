package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	Environment string
	AppId       string
	UploadPath  string // Physical directory for uploaded template PDFs
	OutputPath  string // Default directory for generated certificates
	CleanupCron string // Schedule for the retention sweep
	RetainDays  int    // Terminal jobs older than this are swept
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "go-certify"),
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-certify"),
		UploadPath:  getEnv("UPLOAD_PATH", "./uploads/templates"),
		OutputPath:  getEnv("OUTPUT_PATH", "./output"),
		CleanupCron: getEnv("CLEANUP_CRON", "0 3 * * *"),
		RetainDays:  getEnvInt("RETAIN_DAYS", 30),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

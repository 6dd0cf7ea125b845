package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var (
	MongoURI          string
	Port              string
	AWSRegion         string
	AWSBucketName     string
	JWTSecret         string
	SendGridAPIKey    string
	NotifyEmail       string
	ExportSchema      string
	EnrichCollections bool
	BrowserFallback   bool
	SelectorRulesFile string
	UserAgent         string
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using default values or system environment variables")
	}

	MongoURI = os.Getenv("MONGO_URI")

	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}

	AWSRegion = os.Getenv("AWS_REGION")
	if AWSRegion == "" {
		AWSRegion = "us-east-1"
	}
	AWSBucketName = os.Getenv("AWS_BUCKET_NAME")

	JWTSecret = os.Getenv("JWT_SECRET")
	SendGridAPIKey = os.Getenv("SENDGRID_API_KEY")
	NotifyEmail = os.Getenv("NOTIFY_EMAIL")

	ExportSchema = strings.ToLower(os.Getenv("EXPORT_SCHEMA"))
	if ExportSchema == "" {
		ExportSchema = "legacy"
	}

	EnrichCollections = getBool("ENRICH_COLLECTIONS", true)
	BrowserFallback = getBool("BROWSER_FALLBACK", false)
	SelectorRulesFile = os.Getenv("SELECTOR_RULES_FILE")

	UserAgent = os.Getenv("USER_AGENT")
	if UserAgent == "" {
		UserAgent = defaultUserAgent
	}
}

func getBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.WithField("var", name).Warnf("Invalid boolean %q, using %t", raw, fallback)
		return fallback
	}
	return v
}

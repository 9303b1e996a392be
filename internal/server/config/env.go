package config

import (
	"os"
	"strconv"
)

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// parseEnv overlays secrets and deployment specific values from the
// environment. Variable names follow the ones the mobile backend was
// historically deployed with.
func parseEnv(config *Config) {
	envString(&config.DatabaseDSN, "DATABASE_URL")
	envString(&config.SecretKey, "JWT_SECRET")
	envString(&config.AdminSecret, "ADMIN_SECRET")
	envString(&config.RedisAddr, "REDIS_ADDR")
	envString(&config.RedisPassword, "REDIS_PASSWORD")
	envString(&config.SMSUsername, "HSP_SMS_USERNAME")
	envString(&config.SMSSenderID, "HSP_SMS_SENDER_ID")
	envString(&config.SMSAPIKey, "HSP_SMS_API_KEY")
	envString(&config.SMTPHost, "SMTP_HOST")
	envString(&config.SMTPPort, "SMTP_PORT")
	envString(&config.SMTPFrom, "SMTP_FROM")
	envString(&config.SMTPPassword, "SMTP_PASSWORD")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")

	if v, ok := lookupEnv("VASIHAT_DEV_MODE"); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.DevMode = b
		}
	}
}

func envString(dst *string, key string) {
	if v, ok := lookupEnv(key); ok && v != "" {
		*dst = v
	}
}

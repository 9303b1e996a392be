package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/flagx"
	"github.com/BijjaSagar/vashihat-nama/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. Pointer fields let a
// partial file override only what it mentions; durations accept "15m" or
// integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AdminSecret                  *string         `json:"admin_secret"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	SweepInterval                *timex.Duration `json:"sweep_interval"`
	DefaultCheckInFrequencyDays  *int            `json:"default_check_in_frequency_days"`
	OTPValidityDuration          *timex.Duration `json:"otp_validity_duration"`
	OTPMaxAttempts               *int            `json:"otp_max_attempts"`
	DevMode                      *bool           `json:"dev_mode"`

	RedisAddr     *string `json:"redis_addr"`
	RedisPassword *string `json:"redis_password"`
	RedisDB       *int    `json:"redis_db"`

	SMSBaseURL  *string `json:"sms_base_url"`
	SMSUsername *string `json:"sms_username"`
	SMSSenderID *string `json:"sms_sender_id"`
	SMSAPIKey   *string `json:"sms_api_key"`

	SMTPHost     *string `json:"smtp_host"`
	SMTPPort     *string `json:"smtp_port"`
	SMTPFrom     *string `json:"smtp_from"`
	SMTPPassword *string `json:"smtp_password"`

	S3RootUser              *string         `json:"s3_root_user"`
	S3RootPassword          *string         `json:"s3_root_password"`
	S3Bucket                *string         `json:"s3_bucket"`
	S3Region                *string         `json:"s3_region"`
	S3BaseEndpoint          *string         `json:"s3_base_endpoint"`
	PresignValidityDuration *timex.Duration `json:"presign_validity_duration"`
}

// parseJson loads the file named by -c/-config (if any) into config.
// A missing flag is a no-op; an unreadable or invalid file panics, since the
// server must not start with a half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFilePath()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AdminSecret, c.AdminSecret)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.SweepInterval, c.SweepInterval)
	setInt(&config.DefaultCheckInFrequencyDays, c.DefaultCheckInFrequencyDays)
	setDuration(&config.OTPValidityDuration, c.OTPValidityDuration)
	setInt(&config.OTPMaxAttempts, c.OTPMaxAttempts)
	if c.DevMode != nil {
		config.DevMode = *c.DevMode
	}

	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)

	setString(&config.SMSBaseURL, c.SMSBaseURL)
	setString(&config.SMSUsername, c.SMSUsername)
	setString(&config.SMSSenderID, c.SMSSenderID)
	setString(&config.SMSAPIKey, c.SMSAPIKey)

	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.SMTPPassword, c.SMTPPassword)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.PresignValidityDuration, c.PresignValidityDuration)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

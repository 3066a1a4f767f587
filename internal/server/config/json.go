package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/josegonzalo071-svg/house-backend/internal/flagx"
	"github.com/josegonzalo071-svg/house-backend/internal/timex"
)

// JsonConfig is the DTO for the optional JSON config file. Duration fields
// accept both "1h" strings and integer nanoseconds via timex.Duration; after
// unmarshalling, values are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	ResetTokenTTL    timex.Duration `json:"reset_token_ttl"`
	StoreCallTimeout timex.Duration `json:"store_call_timeout"`
	SMTPHost         string         `json:"smtp_host"`
	SMTPPort         int            `json:"smtp_port"`
	SMTPUsername     string         `json:"smtp_username"`
	SMTPPassword     string         `json:"smtp_password"`
	SMTPFrom         string         `json:"smtp_from"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
}

// parseJson overlays configuration from the JSON file named by the -c or
// -config flags, if present. Unreadable or invalid files panic: a deployment
// that asks for a config file and cannot have it should not start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.ResetTokenTTL.Duration != 0 {
		config.ResetTokenTTL = time.Duration(c.ResetTokenTTL.Duration)
	}
	if c.StoreCallTimeout.Duration != 0 {
		config.StoreCallTimeout = time.Duration(c.StoreCallTimeout.Duration)
	}
	if c.SMTPHost != "" {
		config.SMTPHost = c.SMTPHost
	}
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.SMTPUsername != "" {
		config.SMTPUsername = c.SMTPUsername
	}
	if c.SMTPPassword != "" {
		config.SMTPPassword = c.SMTPPassword
	}
	if c.SMTPFrom != "" {
		config.SMTPFrom = c.SMTPFrom
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OwnershipRule declares a route where the authenticated caller counts as
// the resource owner when the named request parameter equals their user id.
type OwnershipRule struct {
	Method    string `yaml:"method"`
	Path      string `yaml:"path"`
	Source    string `yaml:"source"`
	ParamName string `yaml:"paramName"`
}

type AppConfig struct {
	Port               int    `yaml:"port"`
	Env                string `yaml:"env"`
	GinMode            string `yaml:"gin_mode"`
	DebugOTPInResponse bool   `yaml:"debug_otp_in_response"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	AccessSecret        string `yaml:"access_secret"`
	RefreshSecret       string `yaml:"refresh_secret"`
	Issuer              string `yaml:"issuer"`
	AccessTTL           string `yaml:"access_ttl"`
	RefreshTTL          string `yaml:"refresh_ttl"`
	RotateRefreshTokens bool   `yaml:"rotate_refresh_tokens"`
}

type OTPConfig struct {
	TTL          string `yaml:"ttl"`
	MaxAttempts  int    `yaml:"max_attempts"`
	ResendWindow string `yaml:"resend_window"`
}

type TwilioConfig struct {
	AccountSID  string `yaml:"account_sid"`
	AuthToken   string `yaml:"auth_token"`
	FromNumber  string `yaml:"from_number"`
	SendTimeout string `yaml:"send_timeout"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type CleanupConfig struct {
	Interval string `yaml:"interval"`
}

type ConfigFile struct {
	App            AppConfig       `yaml:"app"`
	Database       DatabaseConfig  `yaml:"database"`
	Redis          RedisConfig     `yaml:"redis"`
	JWT            JWTConfig       `yaml:"jwt"`
	OTP            OTPConfig       `yaml:"otp"`
	Twilio         TwilioConfig    `yaml:"twilio"`
	Casbin         CasbinConfig    `yaml:"casbin"`
	Cleanup        CleanupConfig   `yaml:"cleanup"`
	OwnershipRules []OwnershipRule `yaml:"ownershipRules"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Port               string
	Env                string
	GinMode            string
	DebugOTPInResponse bool

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTAccessSecret     string
	JWTRefreshSecret    string
	JWTIssuer           string
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	RotateRefreshTokens bool

	OTPTTL          time.Duration
	OTPMaxAttempts  int
	OTPResendWindow time.Duration

	TwilioSID         string
	TwilioToken       string
	TwilioFrom        string
	TwilioSendTimeout time.Duration

	CasbinModelPath string
	CleanupInterval time.Duration
	OwnershipRules  []OwnershipRule
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Load reads config/config.yml and applies environment overrides for the
// values that differ per deployment (secrets, DSNs, debug switches).
func Load() (*Config, error) {
	return LoadFrom(env("CONFIG_PATH", "config/config.yml"))
}

// LoadFrom reads the config file at the given path.
func LoadFrom(path string) (*Config, error) {
	file, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accessTTL, err := time.ParseDuration(file.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}
	refreshTTL, err := time.ParseDuration(file.JWT.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}
	otpTTL, err := time.ParseDuration(file.OTP.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}
	resendWindow, err := time.ParseDuration(file.OTP.ResendWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP resend window: %w", err)
	}
	sendTimeout, err := time.ParseDuration(file.Twilio.SendTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid SMS send timeout: %w", err)
	}
	cleanupInterval, err := time.ParseDuration(file.Cleanup.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup interval: %w", err)
	}

	cfg := &Config{
		Port:               strconv.Itoa(file.App.Port),
		Env:                env("APP_ENV", file.App.Env),
		GinMode:            file.App.GinMode,
		DebugOTPInResponse: envBool("DEBUG_OTP_IN_RESPONSE", file.App.DebugOTPInResponse),

		DSN: env("DATABASE_DSN", file.Database.DSN),

		RedisAddr:     env("REDIS_ADDR", file.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", file.Redis.Password),
		RedisDB:       file.Redis.DB,

		JWTAccessSecret:     env("JWT_ACCESS_SECRET", file.JWT.AccessSecret),
		JWTRefreshSecret:    env("JWT_REFRESH_SECRET", file.JWT.RefreshSecret),
		JWTIssuer:           file.JWT.Issuer,
		AccessTTL:           accessTTL,
		RefreshTTL:          refreshTTL,
		RotateRefreshTokens: envBool("ROTATE_REFRESH_TOKENS", file.JWT.RotateRefreshTokens),

		OTPTTL:          otpTTL,
		OTPMaxAttempts:  file.OTP.MaxAttempts,
		OTPResendWindow: resendWindow,

		TwilioSID:         env("TWILIO_ACCOUNT_SID", file.Twilio.AccountSID),
		TwilioToken:       env("TWILIO_AUTH_TOKEN", file.Twilio.AuthToken),
		TwilioFrom:        env("TWILIO_FROM_NUMBER", file.Twilio.FromNumber),
		TwilioSendTimeout: sendTimeout,

		CasbinModelPath: file.Casbin.ModelPath,
		CleanupInterval: cleanupInterval,
		OwnershipRules:  file.OwnershipRules,
	}

	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("jwt access and refresh secrets must be configured")
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return nil, fmt.Errorf("jwt access and refresh secrets must differ")
	}
	if cfg.OTPMaxAttempts <= 0 {
		return nil, fmt.Errorf("otp max attempts must be positive")
	}

	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var file ConfigFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}
	return &file, nil
}

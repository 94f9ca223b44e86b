// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/yourusername/postboard/internal/guard"
)

// 実行モード
const (
	ModeDebug   = "debug"
	ModeRelease = "release"
	ModeTest    = "test"
)

// MinSecretLength は release モードで要求する署名鍵の最小バイト数です。
const MinSecretLength = 32

// DefaultEnvFile は既定で読み込む env ファイル名です。
const DefaultEnvFile = ".env.local"

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port         string `env:"PORT" envDefault:"8080"`
	GinMode      string `env:"GIN_MODE" envDefault:"debug"`
	PublicOrigin string `env:"PUBLIC_ORIGIN" envDefault:"http://localhost:8080"` // 外部から見たオリジン
	LogLevel     string `env:"LOG_LEVEL"`

	// セッション署名用の秘密鍵
	SessionSecret string `env:"SESSION_SECRET"`
	// SessionSecret が未設定のため起動時に生成したか
	GeneratedSecret bool

	// ストア設定
	DatabaseURL   string `env:"DATABASE_URL"`    // 認証情報用 PostgreSQL
	PostsRedisURL string `env:"POSTS_REDIS_URL"` // 投稿用 Redis

	// CORS設定
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// 許可リスト（未設定なら PublicOrigin から導出）
	LoginRedirectHosts   []string `env:"LOGIN_REDIRECT_HOSTS" envSeparator:","`
	RegisterReferrers    []string `env:"REGISTER_REFERRERS" envSeparator:","`
	PostConfirmReferrers []string `env:"POST_CONFIRM_REFERRERS" envSeparator:","`
	PostExecuteReferrers []string `env:"POST_EXECUTE_REFERRERS" envSeparator:","`

	// HTTPタイムアウト
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load は環境変数から設定を読み込みます。
// envFile（空なら .env.local）が存在する場合はそこから読み込みます。
func Load(envFile string) (*Config, error) {
	loadEnvFile(envFile)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finalize(&cfg)
}

// LoadFrom は与えられた環境変数マップから設定を読み込みます。
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finalize(&cfg)
}

func finalize(cfg *Config) (*Config, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(name string) {
	if name == "" {
		name = DefaultEnvFile
	}
	if err := godotenv.Load(name); err == nil || filepath.IsAbs(name) {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, name))
}

func (c *Config) applyDefaults() error {
	origin, err := url.Parse(c.PublicOrigin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return fmt.Errorf("PUBLIC_ORIGIN must be an absolute URL: %q", c.PublicOrigin)
	}
	base := origin.Scheme + "://" + origin.Host

	if len(c.LoginRedirectHosts) == 0 {
		c.LoginRedirectHosts = []string{base}
	}
	if len(c.RegisterReferrers) == 0 {
		c.RegisterReferrers = []string{base + "/register"}
	}
	if len(c.PostConfirmReferrers) == 0 {
		c.PostConfirmReferrers = []string{base + "/post"}
	}
	if len(c.PostExecuteReferrers) == 0 {
		c.PostExecuteReferrers = []string{base + "/post_confirm"}
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{base}
	}

	if c.SessionSecret == "" && c.GinMode != ModeRelease {
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		c.SessionSecret = secret
		c.GeneratedSecret = true
	}
	return nil
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.GinMode {
	case ModeDebug, ModeRelease, ModeTest:
	default:
		return fmt.Errorf("GIN_MODE must be one of debug, release, test: %q", c.GinMode)
	}

	if err := guard.ValidateHosts(c.LoginRedirectHosts); err != nil {
		return fmt.Errorf("LOGIN_REDIRECT_HOSTS: %w", err)
	}
	for key, list := range map[string][]string{
		"REGISTER_REFERRERS":     c.RegisterReferrers,
		"POST_CONFIRM_REFERRERS": c.PostConfirmReferrers,
		"POST_EXECUTE_REFERRERS": c.PostExecuteReferrers,
	} {
		if err := guard.ValidateOrigins(list); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	// 本番環境ではストアと秘密鍵を必須にする
	if c.GinMode == ModeRelease {
		if len(c.SessionSecret) < MinSecretLength {
			return fmt.Errorf("SESSION_SECRET must be at least %d bytes in release mode", MinSecretLength)
		}
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required in release mode")
		}
		if c.PostsRedisURL == "" {
			return errors.New("POSTS_REDIS_URL is required in release mode")
		}
	}

	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return errors.New("HTTP timeouts must be positive")
	}
	return nil
}

// IsRelease は release モードかを返します。
func (c *Config) IsRelease() bool {
	return c.GinMode == ModeRelease
}

// Addr は待ち受けアドレスを返します。
func (c *Config) Addr() string {
	return ":" + c.Port
}

func randomSecret() (string, error) {
	buf := make([]byte, MinSecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

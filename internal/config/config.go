// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 永続化バックエンドの種別
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// セッションストアの種別
const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// お問い合わせ通知の配送方式
const (
	ContactDeliverySMTP  = "smtp"
	ContactDeliveryQueue = "queue"
	ContactDeliveryLog   = "log"
)

// Config はアプリケーションの設定を保持する構造体です。
// プロセス起動時に一度だけ構築し、各コンポーネントへ渡します。
type Config struct {
	// サーバー設定
	Port           string   // APIサーバーのポート番号
	GinMode        string   // Ginの実行モード (debug, release, test)
	LogLevel       string   // ログレベル（空ならモードから決定）
	TrustedProxies []string // 信頼するリバースプロキシ

	// CORS設定
	CORSAllowedOrigins []string // CORS許可オリジン（カンマ区切り）

	// 永続化
	StorageDriver string // postgres | memory
	DatabaseURL   string // PostgreSQL 接続URL

	// セッション設定
	SessionStore      string        // redis | memory
	RedisURL          string        // セッション/キュー用Redis接続URL
	SessionSecret     string        // セッションキー導出用の秘密鍵
	SessionCookieName string        // セッションCookie名
	SessionTTL        time.Duration // 最終アクセスからの有効期間
	CookieSecure      bool          // Secure 属性
	CookieSameSite    string        // lax | strict | none
	CookieDomain      string        // Domain 属性（空なら付与しない）

	// 認証設定
	BcryptCost       int           // bcrypt のコスト
	LoginMaxAttempts int           // ロックまでの失敗回数
	LoginWindow      time.Duration // 失敗回数を数える期間
	LoginLock        time.Duration // ロック期間

	// お問い合わせメール設定
	ContactDelivery string        // smtp | queue | log
	SMTPHost        string        // SMTPサーバー
	SMTPPort        int           // SMTPポート
	SMTPUser        string        // SMTPユーザー（送信元アドレスにも使用）
	SMTPPass        string        // SMTPパスワード
	SMTPTimeout     time.Duration // 1通あたりの送信タイムアウト
	ContactEmailTo  string        // 宛先
	ContactEmailCC  []string      // CC（カンマ区切り）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", ""),
		TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),

		// CORS設定
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),

		// 永続化
		StorageDriver: getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		// セッション設定
		SessionStore:      getEnv("SESSION_STORE", SessionStoreRedis),
		RedisURL:          getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "galoya.sid"),
		SessionTTL:        time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
		CookieSecure:      getEnvAsBool("COOKIE_SECURE", false),
		CookieSameSite:    strings.ToLower(getEnv("COOKIE_SAMESITE", "lax")),
		CookieDomain:      getEnv("COOKIE_DOMAIN", ""),

		// 認証設定
		BcryptCost:       getEnvAsInt("BCRYPT_COST", 10),
		LoginMaxAttempts: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:      time.Duration(getEnvAsInt("LOGIN_WINDOW_MINUTES", 15)) * time.Minute,
		LoginLock:        time.Duration(getEnvAsInt("LOGIN_LOCK_MINUTES", 10)) * time.Minute,

		// お問い合わせメール設定
		ContactDelivery: getEnv("CONTACT_DELIVERY", ContactDeliveryLog),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPass:        getEnv("SMTP_PASS", ""),
		SMTPTimeout:     time.Duration(getEnvAsInt("SMTP_TIMEOUT_SECONDS", 15)) * time.Second,
		ContactEmailTo:  getEnv("CONTACT_EMAIL_TO", ""),
		ContactEmailCC:  splitList(getEnv("CONTACT_EMAIL_CC", "")),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
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

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=%s", StorageDriverPostgres)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER: %q", c.StorageDriver)
	}

	switch c.SessionStore {
	case SessionStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=%s", SessionStoreRedis)
		}
	case SessionStoreMemory:
	default:
		return fmt.Errorf("unknown SESSION_STORE: %q", c.SessionStore)
	}

	if c.SessionCookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if _, err := ParseSameSite(c.CookieSameSite); err != nil {
		return err
	}
	// SameSite=None はブラウザが Secure なしでは受け付けない
	if c.CookieSameSite == "none" && !c.CookieSecure {
		return fmt.Errorf("COOKIE_SAMESITE=none requires COOKIE_SECURE=true")
	}

	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS must not be empty")
	}
	for _, origin := range c.CORSAllowedOrigins {
		// 資格情報付きのCORSではワイルドカードを使えない
		if origin == "*" {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS must list explicit origins when cookies are used")
		}
	}

	if c.LoginMaxAttempts <= 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive")
	}

	switch c.ContactDelivery {
	case ContactDeliverySMTP, ContactDeliveryQueue:
		if c.SMTPHost == "" || c.ContactEmailTo == "" {
			return fmt.Errorf("SMTP_HOST and CONTACT_EMAIL_TO are required when CONTACT_DELIVERY=%s", c.ContactDelivery)
		}
		if c.ContactDelivery == ContactDeliveryQueue && c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CONTACT_DELIVERY=%s", ContactDeliveryQueue)
		}
	case ContactDeliveryLog:
	default:
		return fmt.Errorf("unknown CONTACT_DELIVERY: %q", c.ContactDelivery)
	}

	// ローカル開発ではセッション秘密鍵は任意
	if c.GinMode == "release" && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in release mode")
	}

	return nil
}

// ParseSameSite は COOKIE_SAMESITE の値を http.SameSite に変換します。
func ParseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(value) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("unknown COOKIE_SAMESITE: %q", value)
	}
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

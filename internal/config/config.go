// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile は既定で読み込む .env ファイル名です。
const DefaultEnvFile = ".env.local"

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	// CORS設定
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`

	// トークン署名鍵（有効期間は24時間固定）
	TokenSecret string `env:"TOKEN_SECRET"`

	// パスワード設定
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// 停止時にリクエスト完了を待つ秒数
	ShutdownTimeoutSeconds int `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`
}

// Override は検証前に設定を書き換える関数です。
type Override func(*Config)

// Load は環境変数から設定を読み込みます。
// envFile が空の場合は .env.local をカレントディレクトリ、親ディレクトリの順に探します。
// overrides はコマンドライン引数などを反映するためのもので、検証の前に適用されます。
func Load(envFile string, overrides ...Override) (*Config, error) {
	loadEnvFile(envFile)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	for _, override := range overrides {
		if override != nil {
			override(cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(envFile string) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("env file %s not loaded: %v", envFile, err)
		}
		return
	}

	if err := godotenv.Load(DefaultEnvFile); err == nil {
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

	_ = godotenv.Load(filepath.Join(parent, DefaultEnvFile))
}

// Validate は設定の妥当性を検証します。
// release 以外ではトークン鍵が空でもよく、その場合はプロセスごとのランダム鍵を使います。
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.TokenSecret == "" {
		if c.GinMode == "release" {
			return fmt.Errorf("TOKEN_SECRET is required in release mode")
		}
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("generate token secret: %w", err)
		}
		log.Printf("TOKEN_SECRET is not set; using a random secret for this process")
		c.TokenSecret = secret
	}

	return nil
}

// ShutdownTimeout は停止待ち時間を返します。
func (c *Config) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", buf), nil
}

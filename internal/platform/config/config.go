package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 기본값 (원 운영 설정과 동일)
const (
	DefaultIMAPAddr     = "imap.gmail.com:993"
	DefaultFromEmail    = "no_reply@worksmobile.com"
	DefaultInitialDelay = 5
	DefaultPollDelay    = 5
	DefaultPollRetries  = 12
	DefaultServerAddr   = ":8443"
)

type AuthConfig struct {
	Email        string `yaml:"email"`
	AppPassword  string `yaml:"app_password"`
	IMAPAddr     string `yaml:"imap_addr"`
	FromEmail    string `yaml:"from_email"`
	InitialDelay int    `yaml:"initial_delay"` // 초
	PollDelay    int    `yaml:"poll_delay"`    // 초
	PollRetries  int    `yaml:"poll_retries"`
}

type CalendarConfig struct {
	BaseURL string `yaml:"base_url"`
	// 브라우저 드라이버 없이 돌릴 때 쓰는 세션 쿠키 헤더 문자열
	Cookie string `yaml:"cookie"`
}

type BackendConfig struct {
	BaseURL  string `yaml:"base_url"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Token string `yaml:"token"` // serve 모드 트리거 보호용
}

type SyncConfig struct {
	ExcludeTags []string `yaml:"exclude_tags"`
}

type Config struct {
	Version  string         `yaml:"version"`
	Mode     string         `yaml:"mode"` // dev | release
	Auth     AuthConfig     `yaml:"auth"`
	Calendar CalendarConfig `yaml:"calendar"`
	Backend  BackendConfig  `yaml:"backend"`
	Server   ServerConfig   `yaml:"server"`
	Sync     SyncConfig     `yaml:"sync"`
}

func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("설정 파일 파싱 실패: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.Auth.IMAPAddr == "" {
		c.Auth.IMAPAddr = DefaultIMAPAddr
	}
	if c.Auth.FromEmail == "" {
		c.Auth.FromEmail = DefaultFromEmail
	}
	if c.Auth.InitialDelay <= 0 {
		c.Auth.InitialDelay = DefaultInitialDelay
	}
	if c.Auth.PollDelay <= 0 {
		c.Auth.PollDelay = DefaultPollDelay
	}
	if c.Auth.PollRetries <= 0 {
		c.Auth.PollRetries = DefaultPollRetries
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if len(c.Sync.ExcludeTags) == 0 {
		c.Sync.ExcludeTags = []string{"교육"}
	}
}

func (c *Config) validate() error {
	required := []struct {
		section, option, value string
	}{
		{"calendar", "base_url", c.Calendar.BaseURL},
		{"backend", "base_url", c.Backend.BaseURL},
		{"backend", "email", c.Backend.Email},
		{"backend", "password", c.Backend.Password},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("[%s] %s 설정을 찾을 수 없습니다", r.section, r.option)
		}
	}
	if c.Mode != "dev" && c.Mode != "release" {
		return fmt.Errorf("mode는 dev 또는 release: %q", c.Mode)
	}
	return nil
}

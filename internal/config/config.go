// Package config is the application configuration: the bot core settings
// plus the database, sessions, survey, access, exchange and ops sections.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/kuafsurvey/core/config"
	coredatabase "github.com/m3rciful/kuafsurvey/core/database"
	"github.com/m3rciful/kuafsurvey/internal/survey"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// RedisConfig points at the session store.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
	Prefix   string `yaml:"prefix" envconfig:"REDIS_PREFIX"`
	// SessionTTL expires untouched sessions; 0 keeps them until cleared.
	SessionTTL time.Duration `yaml:"session_ttl" envconfig:"REDIS_SESSION_TTL"`
}

// SessionConfig selects the session backend.
type SessionConfig struct {
	Backend string `yaml:"backend" envconfig:"SESSION_BACKEND"`
}

// SurveyConfig tunes the questionnaire.
type SurveyConfig struct {
	DuplicatePolicy string `yaml:"duplicate_policy" envconfig:"SURVEY_DUPLICATE_POLICY"`
}

// AccessConfig lists super admins and the channel users must follow.
type AccessConfig struct {
	SuperAdminIDs []int64 `yaml:"super_admin_ids" envconfig:"SUPER_ADMIN_IDS"`
	// Channel is the public username without "@"; empty disables the check.
	Channel string `yaml:"channel" envconfig:"CHANNEL_USERNAME"`
}

// ExchangeConfig controls spreadsheet import.
type ExchangeConfig struct {
	TempDir        string `yaml:"temp_dir" envconfig:"EXCHANGE_TEMP_DIR"`
	MaxImportBytes int64  `yaml:"max_import_bytes" envconfig:"EXCHANGE_MAX_IMPORT_BYTES"`
	// SeedFile is imported at startup while the students table is empty.
	SeedFile string `yaml:"seed_file" envconfig:"EXCHANGE_SEED_FILE"`
}

// SenderConfig sizes the asynchronous send queue used for broadcasts.
type SenderConfig struct {
	Workers   int     `yaml:"workers" envconfig:"SENDER_WORKERS"`
	QueueSize int     `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	PerSecond float64 `yaml:"per_second" envconfig:"SENDER_PER_SECOND"`
}

// OpsConfig is the health and metrics listener.
type OpsConfig struct {
	Listen   string `yaml:"listen" envconfig:"OPS_LISTEN"`
	Disabled bool   `yaml:"disabled" envconfig:"OPS_DISABLED"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Redis    RedisConfig         `yaml:"redis"`
	Session  SessionConfig       `yaml:"session"`
	Survey   SurveyConfig        `yaml:"survey"`
	Access   AccessConfig        `yaml:"access"`
	Exchange ExchangeConfig      `yaml:"exchange"`
	Sender   SenderConfig        `yaml:"sender"`
	Ops      OpsConfig           `yaml:"ops"`
}

// CoreConfig exposes the bot core section.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// Load reads path, applies environment overrides and normalizes the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	if err := c.normalizeSession(); err != nil {
		return err
	}

	policy, err := survey.ParseDuplicatePolicy(strings.ToLower(strings.TrimSpace(c.Survey.DuplicatePolicy)))
	if err != nil {
		return fmt.Errorf("survey.duplicate_policy: %w", err)
	}
	c.Survey.DuplicatePolicy = string(policy)

	c.Access.Channel = NormalizeChannel(c.Access.Channel)
	if c.Telegram.AdminID != 0 && !c.IsSuperAdmin(c.Telegram.AdminID) {
		c.Access.SuperAdminIDs = append(c.Access.SuperAdminIDs, c.Telegram.AdminID)
	}

	if strings.TrimSpace(c.Exchange.TempDir) == "" {
		c.Exchange.TempDir = os.TempDir()
	}
	if c.Exchange.MaxImportBytes <= 0 {
		c.Exchange.MaxImportBytes = 20 << 20
	}

	if c.Sender.QueueSize <= 0 {
		c.Sender.QueueSize = 1024
	}
	if c.Sender.PerSecond < 0 {
		return fmt.Errorf("sender.per_second must be >= 0")
	}
	if c.Sender.PerSecond == 0 {
		c.Sender.PerSecond = 25
	}

	if strings.TrimSpace(c.Ops.Listen) == "" {
		c.Ops.Listen = ":9090"
	}
	return nil
}

func (c *Config) normalizeSession() error {
	backend := strings.ToLower(strings.TrimSpace(c.Session.Backend))
	switch backend {
	case "":
		backend = SessionMemory
		if c.Redis.Addr != "" {
			backend = SessionRedis
		}
	case SessionMemory, SessionRedis:
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, redis", c.Session.Backend)
	}
	c.Session.Backend = backend

	if backend == SessionRedis && strings.TrimSpace(c.Redis.Addr) == "" {
		return fmt.Errorf("redis.addr is required for the redis session backend")
	}
	if c.Redis.SessionTTL < 0 {
		return fmt.Errorf("redis.session_ttl must be >= 0")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0")
	}
	return nil
}

// IsSuperAdmin reports whether id is listed as a super admin.
func (c *Config) IsSuperAdmin(id int64) bool {
	for _, v := range c.Access.SuperAdminIDs {
		if v == id {
			return true
		}
	}
	return false
}

// NormalizeChannel strips "@" and t.me prefixes from a channel reference.
func NormalizeChannel(raw string) string {
	s := strings.TrimSpace(raw)
	for _, p := range []string{"https://t.me/", "http://t.me/", "t.me/", "@"} {
		s = strings.TrimPrefix(s, p)
	}
	return strings.TrimSuffix(s, "/")
}

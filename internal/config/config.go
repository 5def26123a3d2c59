package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileEnv names the optional YAML file applied over the defaults.
const FileEnv = "PORTAL_CONFIG_FILE"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Portal    PortalConfig    `yaml:"portal"`
	Security  SecurityConfig  `yaml:"security"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Websocket WebsocketConfig `yaml:"websocket"`
	Views     ViewsConfig     `yaml:"views"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type LoggingConfig struct {
	Directory string `yaml:"directory"`
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
}

// PortalConfig locates the light-portal endpoints. Timeout zero means no
// request timeout.
type PortalConfig struct {
	BaseURL      string        `yaml:"baseUrl"`
	QueryPath    string        `yaml:"queryPath"`
	CommandPath  string        `yaml:"commandPath"`
	CSRFCookie   string        `yaml:"csrfCookie"`
	Timeout      time.Duration `yaml:"timeout"`
	EnvelopeHost string        `yaml:"envelopeHost"`
	Version      string        `yaml:"version"`
}

type SecurityConfig struct {
	JWTSecret      string   `yaml:"jwtSecret"`
	JWTPublicKey   string   `yaml:"jwtPublicKey"`
	TokenCookie    string   `yaml:"tokenCookie"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// KafkaConfig maps an entity to the topics carrying its events.
type KafkaConfig struct {
	Brokers []string            `yaml:"brokers"`
	GroupID string              `yaml:"groupId"`
	Topics  map[string][]string `yaml:"topics"`
}

type WebsocketConfig struct {
	AllowedActions []string      `yaml:"allowedActions"`
	SendBuffer     int           `yaml:"sendBuffer"`
	ReadLimit      int64         `yaml:"readLimit"`
	CommandTimeout time.Duration `yaml:"commandTimeout"`
	ConfirmTimeout time.Duration `yaml:"confirmTimeout"`
}

type ViewsConfig struct {
	MaxViews int           `yaml:"maxViews"`
	Debounce time.Duration `yaml:"debounce"`
	PageSize int           `yaml:"pageSize"`
}

func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080"},
		Logging: LoggingConfig{Directory: "./logs", Level: "info", Format: "text"},
		Portal: PortalConfig{
			BaseURL:     "https://localhost",
			QueryPath:   "/portal/query",
			CommandPath: "/portal/command",
			CSRFCookie:  "csrf",
			Version:     "0.1.0",
		},
		Security: SecurityConfig{TokenCookie: "accessToken"},
		Kafka:    KafkaConfig{GroupID: "portal-console", Topics: map[string][]string{}},
		Websocket: WebsocketConfig{
			AllowedActions: []string{"created", "updated", "deleted"},
			SendBuffer:     64,
			ReadLimit:      1 << 20,
			CommandTimeout: 2 * time.Minute,
			ConfirmTimeout: 60 * time.Second,
		},
		Views: ViewsConfig{MaxViews: 1024, Debounce: time.Second, PageSize: 10},
	}
}

// Load returns the defaults, overlaid by the file named in PORTAL_CONFIG_FILE
// and then by environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")

	setString(&c.Logging.Directory, "LOG_DIRECTORY")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	setString(&c.Portal.BaseURL, "PORTAL_BASE_URL")
	setString(&c.Portal.QueryPath, "PORTAL_QUERY_PATH")
	setString(&c.Portal.CommandPath, "PORTAL_COMMAND_PATH")
	setString(&c.Portal.CSRFCookie, "PORTAL_CSRF_COOKIE")
	setString(&c.Portal.EnvelopeHost, "PORTAL_ENVELOPE_HOST")
	setString(&c.Portal.Version, "PORTAL_VERSION")

	setString(&c.Security.JWTSecret, "JWT_SECRET")
	setString(&c.Security.JWTPublicKey, "JWT_PUBLIC_KEY")
	setString(&c.Security.TokenCookie, "TOKEN_COOKIE")
	setList(&c.Security.AllowedOrigins, "ALLOWED_ORIGINS")

	// KAFKA_BROKERS wins over the single-broker KAFKA_BROKER.
	if !setList(&c.Kafka.Brokers, "KAFKA_BROKERS") {
		setList(&c.Kafka.Brokers, "KAFKA_BROKER")
	}
	setString(&c.Kafka.GroupID, "KAFKA_GROUP_ID")
	if raw := strings.TrimSpace(os.Getenv("KAFKA_TOPICS")); raw != "" {
		c.Kafka.Topics = ParseTopics(raw)
	}

	setList(&c.Websocket.AllowedActions, "WS_ALLOWED_ACTIONS")

	for _, v := range []struct {
		key string
		fn  func(string) error
	}{
		{"PORTAL_TIMEOUT", durationInto(&c.Portal.Timeout)},
		{"WS_SEND_BUFFER", intInto(&c.Websocket.SendBuffer)},
		{"WS_READ_LIMIT", func(raw string) error {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return err
			}
			c.Websocket.ReadLimit = n
			return nil
		}},
		{"WS_COMMAND_TIMEOUT", durationInto(&c.Websocket.CommandTimeout)},
		{"WS_CONFIRM_TIMEOUT", durationInto(&c.Websocket.ConfirmTimeout)},
		{"VIEWS_MAX", intInto(&c.Views.MaxViews)},
		{"VIEWS_DEBOUNCE", durationInto(&c.Views.Debounce)},
		{"VIEWS_PAGE_SIZE", intInto(&c.Views.PageSize)},
	} {
		raw := strings.TrimSpace(os.Getenv(v.key))
		if raw == "" {
			continue
		}
		if err := v.fn(raw); err != nil {
			return fmt.Errorf("invalid %s %q: %w", v.key, raw, err)
		}
	}
	return nil
}

// ParseTopics reads "roles=portal.role,portal.role.audit;groups=portal.group".
// Entries without a topic list are ignored.
func ParseTopics(raw string) map[string][]string {
	out := map[string][]string{}
	for _, entry := range strings.Split(raw, ";") {
		entity, list, ok := strings.Cut(entry, "=")
		entity = strings.TrimSpace(entity)
		if !ok || entity == "" {
			continue
		}
		if topics := SplitList(list); len(topics) > 0 {
			out[entity] = append(out[entity], topics...)
		}
	}
	return out
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// AllTopics flattens the topic map in entity order.
func (k KafkaConfig) AllTopics() []string {
	entities := make([]string, 0, len(k.Topics))
	for entity := range k.Topics {
		entities = append(entities, entity)
	}
	sort.Strings(entities)
	var out []string
	seen := map[string]struct{}{}
	for _, entity := range entities {
		for _, t := range k.Topics[entity] {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) bool {
	if list := SplitList(os.Getenv(key)); len(list) > 0 {
		*dst = list
		return true
	}
	return false
}

func durationInto(dst *time.Duration) func(string) error {
	return func(raw string) error {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func intInto(dst *int) func(string) error {
	return func(raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

package srv

import (
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rowdybard/banterbox/pkg/ai"
	openaidriver "github.com/rowdybard/banterbox/pkg/ai/openai"
	"github.com/rowdybard/banterbox/pkg/cache"
	"github.com/rowdybard/banterbox/pkg/types"
)

// Srv is the external-service container: the advisory classifier and the
// judgment cache. Both degrade to a nil/no-op form when unconfigured.
type Srv struct {
	classifier      ai.Classifier
	classifyTimeout time.Duration
	cache           types.Cache
}

type ApplyFunc func(*Srv)

func SetupSrvs(opts ...ApplyFunc) *Srv {
	s := &Srv{
		cache:           &cache.EmptyCache{},
		classifyTimeout: time.Millisecond * types.ADVISORY_DEFAULT_TIMEOUT_MS,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type AIConfig struct {
	Driver    string       `toml:"driver"`
	Token     string       `toml:"token"`
	Endpoint  string       `toml:"endpoint"`
	Model     ai.ModelName `toml:"model"`
	TimeoutMs int          `toml:"timeout_ms"`
}

func (c *AIConfig) FromENV() {
	c.Token = os.Getenv("BANTERBOX_AI_TOKEN")
	c.Endpoint = os.Getenv("BANTERBOX_AI_ENDPOINT")
	c.Model.ChatModel = os.Getenv("BANTERBOX_AI_CHAT_MODEL")
	if v := os.Getenv("BANTERBOX_AI_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.TimeoutMs = ms
		}
	}
}

// ApplyClassifier wires the advisory classifier driver. A missing token
// leaves the classifier nil, which every caller treats as "advice
// unavailable".
func ApplyClassifier(cfg AIConfig) ApplyFunc {
	return func(s *Srv) {
		if cfg.TimeoutMs > 0 {
			s.classifyTimeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
		}
		if cfg.Token == "" {
			return
		}
		switch cfg.Driver {
		case openaidriver.NAME, "":
			s.classifier = openaidriver.New(cfg.Token, cfg.Endpoint, cfg.Model)
		}
	}
}

// ApplyCache wires the redis judgment cache when an address is configured.
func ApplyCache(addr, password string, db int, keyPrefix string) ApplyFunc {
	return func(s *Srv) {
		if addr == "" {
			return
		}
		cli := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})
		s.cache = cache.NewRedisCache(cli, keyPrefix)
	}
}

func (s *Srv) Classifier() ai.Classifier {
	return s.classifier
}

func (s *Srv) ClassifyTimeout() time.Duration {
	return s.classifyTimeout
}

func (s *Srv) Cache() types.Cache {
	return s.cache
}

package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0 (got %s)", c.Auth.TokenTTL)
	}

	if err := c.validateSession(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be > 0 (got %d)", c.RateLimit.RequestsPerMinute)
	}

	return nil
}

func (c *Config) validateSession() error {
	switch c.Session.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Session.Backend)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("ttl must be > 0 (got %s)", c.Session.TTL)
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("idle_timeout must be > 0 (got %s)", c.Session.IdleTimeout)
	}
	return nil
}

func (l *LLMConfig) validate() error {
	switch l.Provider {
	case ProviderStub:
	case ProviderAnthropic:
		if l.APIKey == "" {
			return fmt.Errorf("api_key is required for the anthropic provider")
		}
		if l.Model == "" {
			return fmt.Errorf("model is required for the anthropic provider")
		}
	default:
		return fmt.Errorf("unknown provider %q", l.Provider)
	}

	if l.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0 (got %d)", l.MaxTokens)
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", l.Timeout)
	}
	return nil
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8081" || cfg.LogLevel != "info" || cfg.ExportDelimiter != "," {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.AMQPURL != "" || cfg.AMQPExchange != "teamledger" || cfg.AMQPRoutingKey != "ledger.events" {
		t.Fatalf("unexpected AMQP defaults %+v", cfg)
	}
	if cfg.ReportCacheSize != 100 || cfg.ReportCacheTTL != 5*time.Minute || cfg.RateLimitPerMinute != 60 {
		t.Fatalf("unexpected cache defaults %+v", cfg)
	}
	if cfg.SeedDemo || len(cfg.Roster()) != 0 {
		t.Fatalf("expected no seed and no roster")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PORT":             "9090",
		"TEAM_ROSTER":      "John Doe, Jane Smith,,",
		"SEED_DEMO":        "true",
		"EXPORT_DELIMITER": ";",
		"REPORT_CACHE_TTL": "30s",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	roster := cfg.Roster()
	if len(roster) != 2 || roster[0] != "John Doe" || roster[1] != "Jane Smith" {
		t.Fatalf("unexpected roster %q", roster)
	}
	if !cfg.SeedDemo || cfg.Delimiter() != ';' || cfg.ReportCacheTTL != 30*time.Second || cfg.Port != "9090" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	if _, err := LoadFrom(map[string]string{"REPORT_CACHE_SIZE": "lots"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:               "8081",
			RateLimitPerMinute: 60,
			LogLevel:           "info",
			ExportDelimiter:    ",",
			AMQPExchange:       "teamledger",
			AMQPRoutingKey:     "ledger.events",
			ReportCacheSize:    10,
			ReportCacheTTL:     time.Minute,
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "valid with AMQP", mutate: func(c *Config) { c.AMQPURL = "amqps://user:pw@broker:5671/" }},
		{name: "non-numeric port", mutate: func(c *Config) { c.Port = "abc" }, errorString: "must be a number"},
		{name: "port out of range", mutate: func(c *Config) { c.Port = "70000" }, errorString: "between 1 and 65535"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, errorString: "invalid log level"},
		{name: "multi-char delimiter", mutate: func(c *Config) { c.ExportDelimiter = ";;" }, errorString: "single character"},
		{name: "quote delimiter", mutate: func(c *Config) { c.ExportDelimiter = `"` }, errorString: "invalid export delimiter"},
		{name: "bad AMQP scheme", mutate: func(c *Config) { c.AMQPURL = "http://broker" }, errorString: "must be 'amqp' or 'amqps'"},
		{name: "AMQP without exchange", mutate: func(c *Config) {
			c.AMQPURL = "amqp://broker"
			c.AMQPExchange = ""
		}, errorString: "exchange name cannot be empty"},
		{name: "zero cache size", mutate: func(c *Config) { c.ReportCacheSize = 0 }, errorString: "report cache size"},
		{name: "short cache TTL", mutate: func(c *Config) { c.ReportCacheTTL = time.Millisecond }, errorString: "report cache TTL"},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimitPerMinute = 0 }, errorString: "invalid rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorString) {
				t.Fatalf("expected error containing %q, got %v", tt.errorString, err)
			}
		})
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := Config{Port: "x", LogLevel: "info", ExportDelimiter: ",", ReportCacheSize: 0, ReportCacheTTL: time.Minute}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if n := strings.Count(err.Error(), "\n- "); n != 3 {
		t.Fatalf("expected 3 problems (port, rate limit, cache size), got %d: %v", n, err)
	}
}

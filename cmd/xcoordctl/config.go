package main

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xcoord/pkg/config/xconf"
	"github.com/omeyang/xcoord/pkg/distributed/xcron"
	"github.com/omeyang/xcoord/pkg/distributed/xlease"
	"github.com/omeyang/xcoord/pkg/mq/xstream"
)

// coordConfig 对应配置文件中的 coord 段。
type coordConfig struct {
	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Lock struct {
		DefaultLease time.Duration `koanf:"default_lease"`
		KeyPrefix    string        `koanf:"key_prefix"`
	} `koanf:"lock"`

	Claim struct {
		KeyPrefix string        `koanf:"key_prefix"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"claim"`

	Stream struct {
		MaxLen    int64  `koanf:"max_len"`
		Approx    bool   `koanf:"approx"`
		KeyPrefix string `koanf:"key_prefix"`
	} `koanf:"stream"`

	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
		File   string `koanf:"file"`
	} `koanf:"log"`
}

func defaultCoordConfig() coordConfig {
	var c coordConfig
	c.Redis.Addr = defaultAddr
	c.Lock.DefaultLease = xlease.DefaultLease
	c.Claim.TTL = xcron.DefaultClaimTTL
	c.Stream.MaxLen = xstream.DefaultMaxLen
	c.Stream.KeyPrefix = xstream.DefaultKeyPrefix
	c.Log.Level = "warn"
	c.Log.Format = "text"
	return c
}

// loadConfig 依次应用默认值、配置文件、显式设置的全局选项。
func loadConfig(cmd *cli.Command) (coordConfig, error) {
	cfg := defaultCoordConfig()

	if path := cmd.String("config"); path != "" {
		c, err := xconf.New(path)
		if err != nil {
			return cfg, err
		}
		if err := c.Unmarshal("coord", &cfg); err != nil {
			return cfg, err
		}
	}

	if cmd.IsSet("addr") {
		cfg.Redis.Addr = cmd.String("addr")
	}
	if cmd.IsSet("password") {
		cfg.Redis.Password = cmd.String("password")
	}
	if cmd.IsSet("db") {
		cfg.Redis.DB = int(cmd.Int("db"))
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	return cfg, nil
}

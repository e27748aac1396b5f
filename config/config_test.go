package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Server.Port != "8080" {
		t.Fatalf("默认端口应为8080，实际 %q", cfg.Server.Port)
	}
	if cfg.Mongo.URI != "mongodb://localhost:27017" || cfg.Mongo.Database != "social_system" {
		t.Fatalf("默认数据库配置不符: %+v", cfg.Mongo)
	}
	if cfg.JWT.ExpireTime != 24*time.Hour {
		t.Fatalf("默认JWT过期时间应为24h，实际 %v", cfg.JWT.ExpireTime)
	}
	if cfg.WebSocket.PingInterval != 30*time.Second || cfg.WebSocket.ReadTimeout != 90*time.Second {
		t.Fatalf("默认WebSocket心跳配置不符: %+v", cfg.WebSocket)
	}
	if cfg.Storage.RootDir != "data/uploads" || cfg.Storage.BaseURL != "/static/uploads" {
		t.Fatalf("默认存储配置不符: %+v", cfg.Storage)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DATABASE", "social_test")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_EXPIRE_TIME", "2h")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("WS_PING_INTERVAL", "15s")
	t.Setenv("STORAGE_ROOT_DIR", "/tmp/uploads")

	cfg := LoadConfig()

	if cfg.Server.Port != "9090" {
		t.Fatalf("环境变量应覆盖端口，实际 %q", cfg.Server.Port)
	}
	if cfg.Mongo.URI != "mongodb://db:27017" || cfg.Mongo.Database != "social_test" {
		t.Fatalf("环境变量应覆盖数据库配置: %+v", cfg.Mongo)
	}
	if cfg.JWT.Secret != "env-secret" || cfg.JWT.ExpireTime != 2*time.Hour {
		t.Fatalf("环境变量应覆盖JWT配置: %+v", cfg.JWT)
	}
	if cfg.Redis.Host != "cache" || cfg.Redis.DB != 3 {
		t.Fatalf("环境变量应覆盖Redis配置: %+v", cfg.Redis)
	}
	if cfg.WebSocket.PingInterval != 15*time.Second {
		t.Fatalf("环境变量应覆盖心跳间隔，实际 %v", cfg.WebSocket.PingInterval)
	}
	if cfg.Storage.RootDir != "/tmp/uploads" {
		t.Fatalf("环境变量应覆盖存储目录，实际 %q", cfg.Storage.RootDir)
	}
}

func TestBadDurationIgnored(t *testing.T) {
	t.Setenv("JWT_EXPIRE_TIME", "not-a-duration")

	cfg := LoadConfig()
	if cfg.JWT.ExpireTime != 24*time.Hour {
		t.Fatalf("非法时长应保持默认值，实际 %v", cfg.JWT.ExpireTime)
	}
}

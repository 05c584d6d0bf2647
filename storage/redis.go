package storage

import (
	"log"
	"strings"

	"vehicle-rental-server/config"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client

func InitializeRedis(cfg config.RedisConfig) *redis.Client {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
		log.Println("REDIS_URL not set, using localhost:6379 (development mode)")
	}

	opts := &redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	// Managed Redis hands out redis:// URLs rather than host:port.
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Panic("invalid REDIS_URL: " + err.Error())
		}
		opts = parsed
	}

	Redis = redis.NewClient(opts)

	log.Println("Redis initialized with address:", opts.Addr)
	return Redis
}

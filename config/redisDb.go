package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

func GetRedisDB() *redis.Client {
	return rdb
}

// GetRedisLock returns the distributed lock client, or nil when Redis is not
// configured. Callers treat a nil locker as "proceed without the lock".
func GetRedisLock() *redislock.Client {
	return locker
}

// ConnectRedis initializes the Redis client and lock client.
// Call from main(); safe to skip when REDIS_ADDR is unset.
func ConnectRedis() {
	godotenv.Load()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Printf("REDIS_ADDR not set; recalculation locks run without redis")
		return
	}

	rdb = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis ping failed (addr=%s): %v; recalculation locks run without redis", addr, err)
		rdb = nil
		return
	}

	locker = redislock.New(rdb)
	log.Printf("redis ready (addr=%s)", addr)
}

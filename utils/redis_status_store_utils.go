package utils

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-redis/redis/v8"
)

// RedisStatusStore keeps per-account scan status in redis so that multiple
// api_server replicas observe the same in-flight scans. It implements
// scanner.StatusStore.
type RedisStatusStore struct {
	inner     *redis.Client
	keyParser RedisKeyParser
}

var ctx = context.Background()

func GetRedisStatusStore() (*RedisStatusStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	return &RedisStatusStore{
		inner:     redisClient,
		keyParser: RedisKeyParser{delimiter: "__"},
	}, nil
}

type RedisKeyParser struct {
	delimiter string
}

func (r RedisKeyParser) DecodeScanKey(key string) (string, error) {
	splits := strings.Split(key, r.delimiter)
	if len(splits) != 2 || splits[0] != "scan" {
		return "", fmt.Errorf("invalid key: %s", key)
	}
	return splits[1], nil
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return id != "" && !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) EncodeScanKey(username string) (string, error) {
	if !r.ValidateId(username) {
		return "", fmt.Errorf("invalid username: %s", username)
	}
	return fmt.Sprintf("scan%s%s", r.delimiter, username), nil
}

// Get returns the stored scan status for the account, empty string when the
// account has never been scanned.
func (r *RedisStatusStore) Get(username string) (string, error) {
	key, err := r.keyParser.EncodeScanKey(username)
	if err != nil {
		return "", err
	}
	res, err := r.inner.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return res, nil
}

func (r *RedisStatusStore) Set(username string, status string) error {
	key, err := r.keyParser.EncodeScanKey(username)
	if err != nil {
		return err
	}
	return r.inner.Set(ctx, key, status, 0).Err()
}

// SetIfAbsent atomically claims the account's status entry. Returns true iff
// the entry was absent and is now set, which is what guards against two
// concurrent scans of the same account.
func (r *RedisStatusStore) SetIfAbsent(username string, status string) (bool, error) {
	key, err := r.keyParser.EncodeScanKey(username)
	if err != nil {
		return false, err
	}
	return r.inner.SetNX(ctx, key, status, 0).Result()
}

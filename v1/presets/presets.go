// Package presets wires common deployments so callers do not assemble the
// store and bus by hand.
package presets

import (
	redis "github.com/redis/go-redis/v9"

	"github.com/mirkobrombin/go-latch/v1/notify"
	"github.com/mirkobrombin/go-latch/v1/store"
)

// RedisOptions configures the connection to Redis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to Redis and returns a store and an event bus sharing
// one client. This is the standard multi-process deployment: the store
// mediates the lock protocol, the bus fans lifecycle events out to every
// interested process.
func NewRedis(opts RedisOptions) (*store.Redis, *notify.RedisBus) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return store.NewRedis(client), notify.NewRedisBus(client)
}

// NewStandalone returns a store and bus that run entirely in-memory with no
// external dependencies. Useful for tests and single-process callers.
func NewStandalone() (*store.Memory, *notify.InMemoryBus) {
	return store.NewMemory(), notify.NewInMemoryBus()
}

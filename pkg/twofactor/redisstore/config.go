package redisstore

import "time"

// Config holds the Redis connection settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required"`                       // ConnectionURL in the format "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`      // RetryAttempts is the number of connection attempts, the first one included.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`     // RetryInterval is the base of the fibonacci backoff between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`   // ConnectTimeout bounds the whole connect phase, retries included.
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"twofactor:"` // KeyPrefix is prepended to the user ID to form record keys.
}

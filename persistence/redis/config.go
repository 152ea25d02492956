package redis

// Config configures the Redis-backed implementations in this package.
type Config struct {
	Addrs     []string
	Namespace string
}

package config

import "time"

// Config is the fully-resolved set of knobs the CLI binds from flags and
// an optional config file via viper, matching the reference
// implementation's config.Config shape generalized to this engine's
// component set.
type Config struct {
	RedisConfig       RedisConfig
	HttpPort          int
	ExecutorCapacity  int
	GraphCacheTTL     time.Duration
	DelayPollInterval time.Duration
	Cluster           ClusterConfig
	// AuditLogPath, when non-empty, enables a JSON-lines per-node
	// execution audit trail written to this file path.
	AuditLogPath string
}

// RedisConfig addresses the single Redis deployment backing the graph
// store, step store, and execution store (component G and H).
type RedisConfig struct {
	Addrs     []string
	Namespace string
}

// ClusterConfig configures the optional cluster coordination extension
// (component K). See cluster.Config for field semantics.
type ClusterConfig struct {
	Enabled        bool
	NodeName       string
	BindAddr       string
	StartJoinAddrs []string
	PartitionCount int
}

// Default returns the configuration a bare `flowcraft-engine` with no
// flags would run with: local Redis, no clustering, a small worker pool.
func Default() Config {
	return Config{
		RedisConfig:       RedisConfig{Addrs: []string{"127.0.0.1:6379"}, Namespace: "flowcraft"},
		HttpPort:          8080,
		ExecutorCapacity:  8,
		GraphCacheTTL:     5 * time.Second,
		DelayPollInterval: 5 * time.Second,
		Cluster:           ClusterConfig{PartitionCount: 31},
	}
}

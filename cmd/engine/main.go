package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flowcraft/engine/agent"
	"github.com/flowcraft/engine/config"
)

type cli struct {
	cfg config.Config
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "flowcraft", "namespace used in storage keys")
	cmd.Flags().Int("http-port", 8080, "http port for the workflow REST api")
	cmd.Flags().Int("executor-capacity", 8, "concurrent workflow executions the worker pool can drive at once")
	cmd.Flags().Duration("graph-cache-ttl", 5*time.Second, "how long a loaded workflow graph is cached before re-reading redis")
	cmd.Flags().Duration("delay-poll-interval", 5*time.Second, "how often the delay poller scans for DELAY executions whose deadline has passed")
	cmd.Flags().Bool("cluster-enabled", false, "enable gossip-based cluster membership and partition ownership")
	cmd.Flags().String("cluster-node-name", "", "unique node name advertised to the cluster, defaults to hostname")
	cmd.Flags().String("cluster-bind-addr", "0.0.0.0:7946", "gossip bind address for cluster membership")
	cmd.Flags().StringSlice("cluster-join", nil, "addresses of existing cluster members to join on startup")
	cmd.Flags().Int("cluster-partitions", 31, "number of hash-ring partitions workflows are sharded across")
	cmd.Flags().String("audit-log-path", "", "file path for a JSON-lines per-node execution audit trail; empty disables it")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err = viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return err
			}
		}
	}

	c.cfg = config.Default()
	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.ExecutorCapacity = viper.GetInt("executor-capacity")
	c.cfg.GraphCacheTTL = viper.GetDuration("graph-cache-ttl")
	c.cfg.DelayPollInterval = viper.GetDuration("delay-poll-interval")

	c.cfg.Cluster.Enabled = viper.GetBool("cluster-enabled")
	c.cfg.Cluster.NodeName = viper.GetString("cluster-node-name")
	if c.cfg.Cluster.NodeName == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.cfg.Cluster.NodeName = hostname
		}
	}
	c.cfg.Cluster.BindAddr = viper.GetString("cluster-bind-addr")
	c.cfg.Cluster.StartJoinAddrs = viper.GetStringSlice("cluster-join")
	c.cfg.Cluster.PartitionCount = viper.GetInt("cluster-partitions")
	c.cfg.AuditLogPath = viper.GetString("audit-log-path")
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	a, err := agent.New(c.cfg)
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return a.Shutdown()
}

func main() {
	c := &cli{}

	cmd := &cobra.Command{
		Use:     "flowcraft-engine",
		Short:   "Runs the workflow execution engine HTTP service.",
		PreRunE: c.setupConfig,
		RunE:    c.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

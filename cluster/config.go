package cluster

// Config configures the optional cluster coordination extension
// (component K). When Enabled is false - the default, and the only mode
// exercised outside cluster_test.go - Cluster.OwnsWorkflow reports every
// workflow as owned by the local node and Membership is never started.
type Config struct {
	Enabled        bool
	NodeName       string
	BindAddr       string
	Tags           map[string]string
	StartJoinAddrs []string
	PartitionCount int
}

package cluster

// Cluster is the optional coordination extension (component K). When
// Config.Enabled is false it degrades to a no-op that owns every
// workflow locally, so the runner behaves exactly as a single-node
// engine - the default, and the only mode exercised outside
// cluster_test.go.
type Cluster struct {
	config     Config
	ring       *Ring
	membership *Membership
}

// NewCluster wires a Ring and, when enabled, joins serf gossip
// membership so the ring tracks the live set of engine processes.
func NewCluster(config Config) (*Cluster, error) {
	ring := NewRing(RingConfig{PartitionCount: config.PartitionCount})
	c := &Cluster{config: config, ring: ring}
	if !config.Enabled {
		return c, nil
	}
	ring.Join(config.NodeName, config.BindAddr, true)
	membership, err := New(ringHandler{ring}, config)
	if err != nil {
		return nil, err
	}
	c.membership = membership
	return c, nil
}

// OwnsWorkflow reports whether the local node is responsible for driving
// executions of workflowId. Always true when clustering is disabled.
func (c *Cluster) OwnsWorkflow(workflowId string) bool {
	if !c.config.Enabled {
		return true
	}
	return c.ring.OwnsKey(workflowId)
}

func (c *Cluster) Members() []ServerInfo {
	if c.membership == nil {
		return nil
	}
	return c.membership.GetServers()
}

// Stop leaves cluster membership gracefully. A no-op when disabled.
func (c *Cluster) Stop() error {
	if c.membership == nil {
		return nil
	}
	return c.membership.Leave()
}

// ringHandler adapts Ring to the Handler interface so Membership can
// notify it of gossip-discovered members, which are never local.
type ringHandler struct {
	*Ring
}

func (h ringHandler) Join(name, addr string) error {
	return h.Ring.Join(name, addr, false)
}

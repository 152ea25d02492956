package cluster

import (
	"sync"

	"github.com/buraksezer/consistent"
	"github.com/spaolacci/murmur3"

	"github.com/flowcraft/engine/logger"
	"github.com/flowcraft/engine/util"
	"go.uber.org/zap"
)

// hasher adapts murmur3 to consistent.Hasher, grounded on the reference
// implementation's cluster ring - murmur3 is buraksezer/consistent's
// documented hash choice.
type hasher struct{}

func NewHasher() *hasher {
	return &hasher{}
}

func (h hasher) Sum64(data []byte) uint64 {
	return murmur3.Sum64(data)
}

type RingConfig struct {
	PartitionCount int
}

// Ring partitions workflow execution ownership across known engine
// processes by consistent-hashing the workflow id. With zero members
// joined (the disabled-cluster default) OwnsKey reports every key as
// locally owned, so a single-node deployment behaves as if every
// workflow belongs to it.
type Ring struct {
	RingConfig
	hring     *consistent.Consistent
	nodes     map[string]Node
	temp      map[string]Node
	localNode Node
	mu        sync.Mutex
}

type Node struct {
	name string
	addr string
}

func (n Node) String() string {
	return n.name
}

// ServerInfo is the cluster-agnostic shape the HTTP/CLI layer sees when
// listing known members; it replaces the reference implementation's
// gRPC-generated Server message, which this engine has no RPC surface to
// carry.
type ServerInfo struct {
	Id      string
	RpcAddr string
}

func NewRing(c RingConfig) *Ring {
	if c.PartitionCount <= 0 {
		c.PartitionCount = 1
	}
	cfg := consistent.Config{
		PartitionCount:    c.PartitionCount,
		ReplicationFactor: 20,
		Load:              1.25,
		Hasher:            NewHasher(),
	}
	hr := consistent.New(nil, cfg)
	return &Ring{
		RingConfig: c,
		hring:      hr,
		nodes:      make(map[string]Node),
		temp:       make(map[string]Node),
	}
}

func (r *Ring) Join(name, addr string, isLocal bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[name]; ok {
		return nil
	}
	node := Node{name: name, addr: addr}
	if isLocal {
		logger.Info("adding member to cluster", zap.String("node", name), zap.String("address", addr))
		r.localNode = node
		r.nodes[name] = node
		r.hring.Add(node)
	} else {
		r.temp[name] = node
	}
	return nil
}

func (r *Ring) Leave(name string) error {
	logger.Info("removing member from cluster", zap.String("node", name))
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, name)
	delete(r.temp, name)
	r.hring.Remove(name)
	return nil
}

func (r *Ring) GetPartition(key string) int {
	return r.hring.FindPartitionID([]byte(key))
}

// OwnsKey reports whether the local node owns the partition key hashes
// to. With no members joined it returns true without consulting the
// hash ring; otherwise a partition with no owner counts as not local.
func (r *Ring) OwnsKey(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.nodes) == 0 {
		return true
	}
	owner := r.hring.GetPartitionOwner(r.GetPartition(key))
	return owner != nil && owner.String() == r.localNode.name
}

func (r *Ring) GetPartitions() []int {
	i := 0
	partitions := make([]int, 0)
	for i < r.PartitionCount {
		owner := r.hring.GetPartitionOwner(i)
		if owner != nil && owner.String() == r.localNode.name {
			partitions = append(partitions, i)
		}
		i++
	}
	util.Shuffle(partitions)
	return partitions
}

func (r *Ring) GetServers() []ServerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	servers := make([]ServerInfo, 0, len(r.nodes))
	for _, node := range r.nodes {
		servers = append(servers, ServerInfo{Id: node.name, RpcAddr: node.addr})
	}
	return servers
}

func (r *Ring) RefreshCluster() {
	r.copyNodes()
}

func (r *Ring) copyNodes() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, node := range r.temp {
		logger.Info("adding member to cluster", zap.String("node", name), zap.String("address", node.addr))
		r.nodes[name] = node
		r.hring.Add(node)
	}
	for k := range r.temp {
		delete(r.temp, k)
	}
}

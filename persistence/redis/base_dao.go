package redis

import (
	"fmt"
	"strings"

	rd "github.com/redis/go-redis/v9"
)

// baseDao is embedded by every Redis-backed implementation in this
// package: one shared client and namespace prefix so keys from different
// deployments never collide.
type baseDao struct {
	redisClient rd.UniversalClient
	namespace   string
}

func newBaseDao(conf Config) *baseDao {
	return &baseDao{
		redisClient: rd.NewUniversalClient(&rd.UniversalOptions{Addrs: conf.Addrs}),
		namespace:   conf.Namespace,
	}
}

// NewUniversalClient exposes the same client construction so callers that
// need to share one connection pool across several DAOs (graph store,
// step store, execution store) can build it once in the container and
// hand it down via WithClient.
func NewUniversalClient(conf Config) rd.UniversalClient {
	return rd.NewUniversalClient(&rd.UniversalOptions{Addrs: conf.Addrs})
}

func newBaseDaoWithClient(client rd.UniversalClient, namespace string) *baseDao {
	return &baseDao{redisClient: client, namespace: namespace}
}

func (bs *baseDao) getNamespaceKey(args ...string) string {
	return fmt.Sprintf("%s:%s", bs.namespace, strings.Join(args, ":"))
}

package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init sets the node number used for ids. Calling it is optional; the
// first GenerateID falls back to node 1. Only the first successful call
// takes effect.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if node == nil {
		node = n
	}
	return nil
}

// GenerateID returns a time-ordered 64-bit id. Movement and audit rows are
// keyed with it so that id order matches insertion order.
func GenerateID() int64 {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(1)
	}
	n := node
	mu.Unlock()
	return n.Generate().Int64()
}

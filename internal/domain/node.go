package domain

// Node is a statically configured fog node the manager may forward to
type Node struct {
	ID   string `yaml:"id" json:"id"`
	URL  string `yaml:"url" json:"url"`
	Port int    `yaml:"port" json:"port"`
}

// NodeDirectory resolves node ids to their configured addresses
type NodeDirectory map[string]Node

// NewNodeDirectory indexes nodes by id
func NewNodeDirectory(nodes []Node) NodeDirectory {
	dir := make(NodeDirectory, len(nodes))
	for _, n := range nodes {
		dir[n.ID] = n
	}
	return dir
}

// Lookup returns the node with the given id
func (d NodeDirectory) Lookup(id string) (Node, bool) {
	n, ok := d[id]
	return n, ok
}

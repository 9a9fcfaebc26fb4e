package topology

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/internal/cncerr"
	"github.com/ieee8021/tsn-cnc/internal/cnclog"
	topo "github.com/ieee8021/tsn-cnc/pkg/topology"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// FileAdapter serves a topology snapshot loaded from a YAML file. The
// file is read once at Run (or on an explicit Reload); there is no file
// watching, and a reload does not trigger recomputation by itself.
type FileAdapter struct {
	path string

	// Fallback NETCONF credentials applied to bridges whose topology
	// entry leaves them unset.
	DefaultUsername string
	DefaultPassword string
	DefaultPort     int

	mu   sync.RWMutex
	snap *topo.Topology

	ref *ccref.Ref
}

// NewFileAdapter returns an adapter reading path. Run or Reload must be
// called before Get.
func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

func (a *FileAdapter) SetControllerRef(ref *ccref.Ref) { a.ref = ref }

// Run loads the topology file. Load errors are logged, not fatal: the
// controller can still serve stream mutations against an empty topology.
func (a *FileAdapter) Run() {
	if err := a.Reload(); err != nil {
		cnclog.Logger.WithError(err).WithField("path", a.path).Error("topology: initial load failed")
	}
}

// Reload re-reads the topology file and swaps the served snapshot, then
// notifies the controller of the change.
func (a *FileAdapter) Reload() error {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return fmt.Errorf("reading topology file: %w", err)
	}
	snap, err := parseTopologyYAML(data)
	if err != nil {
		return err
	}
	for i := range snap.Nodes {
		p := snap.Nodes[i].SSHParams
		if p == nil {
			continue
		}
		if p.Username == "" {
			p.Username = a.DefaultUsername
		}
		if p.Password == "" {
			p.Password = a.DefaultPassword
		}
		if p.Port == 0 {
			p.Port = a.DefaultPort
		}
	}

	a.mu.Lock()
	a.snap = snap
	a.mu.Unlock()

	cnclog.Logger.WithFields(map[string]interface{}{
		"nodes":       len(snap.Nodes),
		"connections": len(snap.Connections),
		"paths":       len(snap.Paths),
	}).Info("topology: snapshot loaded")

	if a.ref != nil {
		if h, err := a.ref.Get(); err == nil {
			h.NotifyTopologyChanged()
		}
	}
	return nil
}

// Get returns the current snapshot.
func (a *FileAdapter) Get() (*topo.Topology, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.snap == nil {
		return nil, fmt.Errorf("%w: topology not loaded", cncerr.ErrInvalidState)
	}
	return a.snap, nil
}

// GetNode returns a single node from the current snapshot, or nil.
func (a *FileAdapter) GetNode(id tsn.NodeID) (*topo.Node, error) {
	snap, err := a.Get()
	if err != nil {
		return nil, err
	}
	return snap.GetNode(id), nil
}

// The YAML shapes mirror the wire topology model field for field.

type yamlTopology struct {
	Nodes       []yamlNode       `yaml:"nodes"`
	Connections []yamlConnection `yaml:"connections"`
	Paths       []yamlPath       `yaml:"paths"`
}

type yamlNode struct {
	ID    uint32     `yaml:"id"`
	Kind  string     `yaml:"kind"` // "bridge" or "end-station"
	SSH   *yamlSSH   `yaml:"ssh,omitempty"`
	Ports []yamlPort `yaml:"ports"`
}

type yamlSSH struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type yamlPort struct {
	Name            string `yaml:"name"`
	MacAddress      string `yaml:"mac_address"`
	TickGranularity uint32 `yaml:"tick_granularity,omitempty"`
}

type yamlConnection struct {
	ID uint32       `yaml:"id"`
	A  yamlEndpoint `yaml:"a"`
	B  yamlEndpoint `yaml:"b"`
}

type yamlEndpoint struct {
	Node uint32 `yaml:"node"`
	Port string `yaml:"port"`
}

type yamlPath struct {
	A    uint32   `yaml:"a"`
	B    uint32   `yaml:"b"`
	Hops []uint32 `yaml:"hops"`
}

func parseTopologyYAML(data []byte) (*topo.Topology, error) {
	var y yamlTopology
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("parsing topology yaml: %w", err)
	}

	out := &topo.Topology{}
	for _, n := range y.Nodes {
		node := topo.Node{ID: tsn.NodeID(n.ID)}
		switch n.Kind {
		case "bridge":
			node.Kind = topo.KindBridge
		case "end-station":
			node.Kind = topo.KindEndStation
		default:
			return nil, fmt.Errorf("node %d: unknown kind %q", n.ID, n.Kind)
		}
		if n.SSH != nil {
			node.SSHParams = &topo.SSHParams{
				Host:     n.SSH.Host,
				Port:     n.SSH.Port,
				Username: n.SSH.Username,
				Password: n.SSH.Password,
			}
		}
		for _, p := range n.Ports {
			node.Ports = append(node.Ports, topo.Port{
				Name:            p.Name,
				MacAddress:      p.MacAddress,
				TickGranularity: p.TickGranularity,
			})
		}
		out.Nodes = append(out.Nodes, node)
	}
	for _, c := range y.Connections {
		out.Connections = append(out.Connections, topo.Connection{
			ID: c.ID,
			A:  topo.ConnectionEndpoint{NodeID: tsn.NodeID(c.A.Node), PortName: c.A.Port},
			B:  topo.ConnectionEndpoint{NodeID: tsn.NodeID(c.B.Node), PortName: c.B.Port},
		})
	}
	for _, p := range y.Paths {
		hops := make([]tsn.NodeID, 0, len(p.Hops))
		for _, h := range p.Hops {
			hops = append(hops, tsn.NodeID(h))
		}
		out.Paths = append(out.Paths, topo.Path{
			EndpointA: tsn.NodeID(p.A),
			EndpointB: tsn.NodeID(p.B),
			Hops:      hops,
		})
	}
	return out, nil
}

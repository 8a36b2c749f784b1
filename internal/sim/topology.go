package sim

// Edge connects two nodes in the static graph and names the payload kind
// tokens on it carry.
type Edge struct {
	From NodeID
	To   NodeID
	Kind PayloadKind
}

// Topology is the fixed pipeline graph: node definitions, the hand-authored
// predecessor table used for handover resolution, and the routing geometry
// (highway lanes) shared by the route resolver.
//
// The predecessor table is authored, not derived: handover semantics depend
// on a curated fan-in order, and deriving it from edges would lose the
// preference information.
type Topology struct {
	nodes []Node
	preds map[NodeID][]NodeID
	edges []Edge

	// HighwayLanes are the y coordinates of the horizontal tunneling lanes
	// routes may fall back to when direct and L-shaped candidates collide.
	HighwayLanes []float64

	// Width and Height bound the design coordinate space.
	Width, Height float64

	center Vec2
}

// Stage node identifiers.
const (
	NodeGitHub      NodeID = "github"
	NodeFetcher     NodeID = "fetcher"
	NodeCache       NodeID = "cache"
	NodeAuditor     NodeID = "auditor"
	NodeWorkersHub  NodeID = "workers_hub"
	NodeMixBuffer   NodeID = "mixing_buffer"
	NodeMapperStruc NodeID = "mapper_structure"
	NodeMapperSem   NodeID = "mapper_semantics"
	NodeMapperDNA   NodeID = "mapper_dna"
	NodeSynthesizer NodeID = "synthesizer"
	NodeInsights    NodeID = "insight_store"
	NodeEmbedder    NodeID = "embedder"
	NodeArchive     NodeID = "archive"
)

// WorkerCount is the number of concrete worker satellites around the hub.
const WorkerCount = 4

// WorkerID returns the node id of the n-th worker (1-based).
func WorkerID(n int) NodeID {
	return NodeID("worker_" + string(rune('0'+n)))
}

// Health port affinities for stages backed by external services.
const (
	PortFetcher  = 8091
	PortEmbedder = 8092
	PortArchive  = 8093
)

// DefaultTopology builds the repo-analysis pipeline graph.
func DefaultTopology() *Topology {
	t := &Topology{
		preds:        make(map[NodeID][]NodeID),
		HighwayLanes: []float64{110, 300, 490},
		Width:        1260,
		Height:       600,
	}

	stage := func(id NodeID, label string, x, y, radius float64) *Node {
		t.nodes = append(t.nodes, Node{
			ID:           id,
			Kind:         KindStage,
			DefaultLabel: label,
			Pos:          Vec2{x, y},
			Rest:         Vec2{x, y},
			HitRadius:    radius,
			Visible:      true,
		})
		return &t.nodes[len(t.nodes)-1]
	}

	stage(NodeGitHub, "github", 80, 300, 22).Terminal = true
	stage(NodeFetcher, "fetcher", 200, 300, 20).Port = PortFetcher
	stage(NodeCache, "cache", 320, 300, 20)
	stage(NodeAuditor, "auditor", 440, 300, 20)
	hub := stage(NodeWorkersHub, "workers", 580, 300, 34)
	hub.Composite = true
	stage(NodeMixBuffer, "mix buffer", 720, 300, 20).IsBuffer = true
	stage(NodeMapperStruc, "structure", 840, 180, 20)
	stage(NodeMapperSem, "semantics", 840, 300, 20)
	stage(NodeMapperDNA, "dna", 840, 420, 20)
	stage(NodeSynthesizer, "synthesis", 960, 300, 22)
	stage(NodeEmbedder, "embedder", 1080, 300, 20).Port = PortEmbedder
	arc := stage(NodeArchive, "archive", 1190, 300, 22)
	arc.Terminal = true
	arc.Port = PortArchive

	// Worker satellites orbit the hub; initial angles spread evenly.
	for i := 1; i <= WorkerCount; i++ {
		angle := 2 * 3.141592653589793 * float64(i-1) / WorkerCount
		t.nodes = append(t.nodes, Node{
			ID:           WorkerID(i),
			Kind:         KindSatellite,
			DefaultLabel: "worker " + string(rune('0'+i)),
			Pos:          Vec2{580, 300},
			Rest:         Vec2{580, 300},
			HitRadius:    14,
			OrbitParent:  NodeWorkersHub,
			OrbitAngle:   angle,
			OrbitRadius:  64,
			OrbitSpeed:   0.004,
			Visible:      true,
		})
	}

	// Insight store trails the synthesizer as a satellite.
	t.nodes = append(t.nodes, Node{
		ID:           NodeInsights,
		Kind:         KindSatellite,
		DefaultLabel: "insights",
		Pos:          Vec2{960, 300},
		Rest:         Vec2{960, 300},
		HitRadius:    14,
		OrbitParent:  NodeSynthesizer,
		OrbitAngle:   1.9,
		OrbitRadius:  58,
		OrbitSpeed:   0.002,
		Visible:      true,
	})

	t.preds[NodeFetcher] = []NodeID{NodeGitHub}
	t.preds[NodeCache] = []NodeID{NodeFetcher}
	t.preds[NodeAuditor] = []NodeID{NodeCache}
	t.preds[NodeWorkersHub] = []NodeID{NodeAuditor}
	mixPreds := make([]NodeID, 0, WorkerCount+1)
	for i := 1; i <= WorkerCount; i++ {
		t.preds[WorkerID(i)] = []NodeID{NodeWorkersHub}
		mixPreds = append(mixPreds, WorkerID(i))
	}
	mixPreds = append(mixPreds, NodeWorkersHub)
	t.preds[NodeMixBuffer] = mixPreds
	t.preds[NodeMapperStruc] = []NodeID{NodeMixBuffer}
	t.preds[NodeMapperSem] = []NodeID{NodeMixBuffer}
	t.preds[NodeMapperDNA] = []NodeID{NodeMixBuffer}
	t.preds[NodeSynthesizer] = []NodeID{NodeMapperStruc, NodeMapperSem, NodeMapperDNA}
	t.preds[NodeEmbedder] = []NodeID{NodeSynthesizer}
	t.preds[NodeInsights] = []NodeID{NodeSynthesizer}
	t.preds[NodeArchive] = []NodeID{NodeEmbedder}

	t.edges = []Edge{
		{NodeGitHub, NodeFetcher, PayloadRawFile},
		{NodeFetcher, NodeCache, PayloadRawFile},
		{NodeCache, NodeAuditor, PayloadRawFile},
		{NodeAuditor, NodeWorkersHub, PayloadMetadata},
		{NodeMixBuffer, NodeMapperStruc, PayloadFragment},
		{NodeMixBuffer, NodeMapperSem, PayloadFragment},
		{NodeMixBuffer, NodeMapperDNA, PayloadFragment},
		{NodeMapperStruc, NodeSynthesizer, PayloadInsight},
		{NodeMapperSem, NodeSynthesizer, PayloadInsight},
		{NodeMapperDNA, NodeSynthesizer, PayloadInsight},
		{NodeSynthesizer, NodeEmbedder, PayloadDNASignal},
		{NodeSynthesizer, NodeInsights, PayloadInsight},
		{NodeEmbedder, NodeArchive, PayloadSecureStore},
	}
	for i := 1; i <= WorkerCount; i++ {
		t.edges = append(t.edges,
			Edge{NodeWorkersHub, WorkerID(i), PayloadRawFile},
			Edge{WorkerID(i), NodeMixBuffer, PayloadFragment},
		)
	}

	var sum Vec2
	for _, n := range t.nodes {
		sum = sum.Add(n.Rest)
	}
	t.center = sum.Scale(1 / float64(len(t.nodes)))

	return t
}

// Nodes returns the static node definitions in declaration order.
func (t *Topology) Nodes() []Node { return t.nodes }

// Edges returns the authored static edges in declaration order.
func (t *Topology) Edges() []Edge { return t.edges }

// Preds returns the hand-authored predecessor list for a node, in fan-in
// tie-break order. Nil for source nodes and unknown ids.
func (t *Topology) Preds(id NodeID) []NodeID { return t.preds[id] }

// EdgeKind returns the payload kind carried on an edge, falling back to
// raw-file for edges outside the authored set (dynamic slot edges).
func (t *Topology) EdgeKind(from, to NodeID) PayloadKind {
	for _, e := range t.edges {
		if e.From == from && e.To == to {
			return e.Kind
		}
	}
	return PayloadRawFile
}

// Center returns the topological center of the static graph, used as the
// last-resort camera focal point.
func (t *Topology) Center() Vec2 { return t.center }

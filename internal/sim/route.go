package sim

import (
	"hash/fnv"
	"math"
)

// Routing constants.
const (
	routeAlignThresh = 6.0  // endpoints this close on an axis snap onto it
	routeLaneSpread  = 6.0  // per-edge parallel separation step
	routePadding     = 18.0 // clearance beyond a node's hit radius
	routePaddingWide = 30.0 // clearance for composite/container nodes
)

type edgeKey struct {
	from NodeID
	to   NodeID
}

// RouteResolver computes and caches a collision-avoiding polyline between
// two node positions. Candidates cascade — direct segment, the two L-shaped
// Manhattan bends, highway lanes ranked by midpoint proximity — and the
// first candidate that clears every unrelated node wins; if nothing clears,
// the first L-bend is used regardless so a route always exists.
type RouteResolver struct {
	store *Store
	topo  *Topology

	cache map[edgeKey][]Vec2

	// computes counts cache misses; tests use it to prove cached routes
	// are returned without recomputation.
	computes int
}

// NewRouteResolver builds a resolver over store and topo.
func NewRouteResolver(store *Store, topo *Topology) *RouteResolver {
	return &RouteResolver{
		store: store,
		topo:  topo,
		cache: make(map[edgeKey][]Vec2),
	}
}

// Resolve returns the polyline for from→to, computing and caching it on
// first use. Unknown endpoints yield nil.
func (rr *RouteResolver) Resolve(from, to NodeID) []Vec2 {
	key := edgeKey{from, to}
	if pts, ok := rr.cache[key]; ok {
		return pts
	}
	a := rr.store.Get(from)
	b := rr.store.Get(to)
	if a == nil || b == nil {
		return nil
	}
	pts := rr.compute(a, b)
	rr.cache[key] = pts
	rr.computes++
	return pts
}

// InvalidateNode drops every cached route touching a node. Called when the
// layout moves it.
func (rr *RouteResolver) InvalidateNode(id NodeID) {
	for k := range rr.cache {
		if k.from == id || k.to == id {
			delete(rr.cache, k)
		}
	}
}

// InvalidateAll clears the whole cache.
func (rr *RouteResolver) InvalidateAll() {
	rr.cache = make(map[edgeKey][]Vec2)
}

// Computes returns how many routes have been computed (cache misses).
func (rr *RouteResolver) Computes() int { return rr.computes }

func (rr *RouteResolver) compute(a, b *Record) []Vec2 {
	p0 := a.Node.Pos
	p1 := b.Node.Pos
	lane := laneOffset(a.Node.ID, b.Node.ID)

	dx := p1.X - p0.X
	dy := p1.Y - p0.Y

	// Axis snap: near-aligned endpoints get pins forced onto the exact
	// shared axis so short hops render straight.
	if math.Abs(dy) < routeAlignThresh {
		p1.Y = p0.Y
		dy = 0
	} else if math.Abs(dx) < routeAlignThresh {
		p1.X = p0.X
		dx = 0
	}

	// Pins sit on the node boundary along the dominant axis, displaced
	// perpendicular by the deterministic lane offset so parallel edges
	// separate visually.
	var start, end Vec2
	horizontal := math.Abs(dx) >= math.Abs(dy)
	if horizontal {
		start = Vec2{p0.X + math.Copysign(a.Node.HitRadius, dx), p0.Y + lane}
		end = Vec2{p1.X - math.Copysign(b.Node.HitRadius, dx), p1.Y + lane}
	} else {
		start = Vec2{p0.X + lane, p0.Y + math.Copysign(a.Node.HitRadius, dy)}
		end = Vec2{p1.X + lane, p1.Y - math.Copysign(b.Node.HitRadius, dy)}
	}

	exclude := rr.exclusions(a, b)

	// Candidate 1: direct segment when aligned.
	if dy == 0 || dx == 0 {
		direct := []Vec2{start, end}
		if rr.clean(direct, exclude) {
			return direct
		}
	}

	// Candidate 2: the two Manhattan bends.
	bendA := []Vec2{start, {end.X, start.Y}, end}
	bendB := []Vec2{start, {start.X, end.Y}, end}
	if rr.clean(bendA, exclude) {
		return bendA
	}
	if rr.clean(bendB, exclude) {
		return bendB
	}

	// Candidate 3: highway lanes, nearest to the route's natural midpoint
	// first, each displaced by the edge's lane offset.
	midY := (start.Y + end.Y) / 2
	for _, laneY := range rr.lanesByProximity(midY) {
		y := laneY + lane
		hw := []Vec2{start, {start.X, y}, {end.X, y}, end}
		if rr.clean(hw, exclude) {
			return hw
		}
	}

	// Unconditional fallback: a route must always exist.
	return bendA
}

// exclusions returns the node ids a route may legally pass through: its own
// endpoints and, for satellite endpoints, their orbit parents.
func (rr *RouteResolver) exclusions(a, b *Record) map[NodeID]bool {
	ex := map[NodeID]bool{a.Node.ID: true, b.Node.ID: true}
	if a.Node.Kind == KindSatellite {
		ex[a.Node.OrbitParent] = true
	}
	if b.Node.Kind == KindSatellite {
		ex[b.Node.OrbitParent] = true
	}
	return ex
}

// clean reports whether no intermediate segment of the polyline passes
// within padding distance of any unrelated visible node.
func (rr *RouteResolver) clean(pts []Vec2, exclude map[NodeID]bool) bool {
	ok := true
	rr.store.Each(func(r *Record) {
		if !ok || !r.Node.Visible || exclude[r.Node.ID] {
			return
		}
		pad := r.Node.HitRadius + routePadding
		if r.Node.Composite {
			pad = r.Node.HitRadius + routePaddingWide
		}
		for i := 0; i+1 < len(pts); i++ {
			if segmentPointDist(pts[i], pts[i+1], r.Node.Pos) < pad {
				ok = false
				return
			}
		}
	})
	return ok
}

func (rr *RouteResolver) lanesByProximity(midY float64) []float64 {
	lanes := make([]float64, len(rr.topo.HighwayLanes))
	copy(lanes, rr.topo.HighwayLanes)
	// Insertion sort by distance to midY; the lane set is tiny.
	for i := 1; i < len(lanes); i++ {
		for j := i; j > 0 && math.Abs(lanes[j]-midY) < math.Abs(lanes[j-1]-midY); j-- {
			lanes[j], lanes[j-1] = lanes[j-1], lanes[j]
		}
	}
	return lanes
}

// laneOffset derives a stable perpendicular displacement from the edge's
// identity. Stable across ticks, so parallel edges keep their separation.
func laneOffset(from, to NodeID) float64 {
	h := fnv.New32a()
	h.Write([]byte(from))
	h.Write([]byte{':'})
	h.Write([]byte(to))
	step := int(h.Sum32()%5) - 2 // -2..2
	return float64(step) * routeLaneSpread
}

// segmentPointDist returns the distance from point p to segment ab.
func segmentPointDist(a, b, p Vec2) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq < 1e-9 {
		return p.Sub(a).Len()
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Sub(a.Add(ab.Scale(t))).Len()
}

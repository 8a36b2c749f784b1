package sim

import "time"

// Token is an item animating along an edge. Progress runs 0..1; tokens are
// destroyed purely by reaching 1, there is no cancellation path.
type Token struct {
	From     NodeID
	To       NodeID
	Kind     PayloadKind
	File     string
	Progress float64
	Speed    float64 // progress units per second
}

// Pulse is a short-lived ping anchored on a single node.
type Pulse struct {
	Node NodeID
	Born time.Time
	TTL  time.Duration
}

// AnimationClock owns traveling tokens and pulses and advances them each
// tick. Expiry is the only way either leaves the system.
type AnimationClock struct {
	tokens []Token
	pulses []Pulse

	tokenSpeed float64
	pulseTTL   time.Duration
}

// NewAnimationClock builds a clock. tokenSpeed is progress per second.
func NewAnimationClock(tokenSpeed float64, pulseTTL time.Duration) *AnimationClock {
	if tokenSpeed <= 0 {
		tokenSpeed = 0.9
	}
	if pulseTTL <= 0 {
		pulseTTL = 700 * time.Millisecond
	}
	return &AnimationClock{tokenSpeed: tokenSpeed, pulseTTL: pulseTTL}
}

// SpawnToken starts a token traveling from one node to another.
func (c *AnimationClock) SpawnToken(from, to NodeID, kind PayloadKind, file string) {
	c.tokens = append(c.tokens, Token{
		From:  from,
		To:    to,
		Kind:  kind,
		File:  file,
		Speed: c.tokenSpeed,
	})
}

// SpawnPulse starts a pulse on a node.
func (c *AnimationClock) SpawnPulse(node NodeID, now time.Time) {
	c.pulses = append(c.pulses, Pulse{Node: node, Born: now, TTL: c.pulseTTL})
}

// Advance moves every token by its speed over dt and expires finished
// tokens and aged-out pulses in place.
func (c *AnimationClock) Advance(now time.Time, dt time.Duration) {
	live := c.tokens[:0]
	for _, t := range c.tokens {
		t.Progress += t.Speed * dt.Seconds()
		if t.Progress < 1 {
			live = append(live, t)
		}
	}
	c.tokens = live

	alive := c.pulses[:0]
	for _, p := range c.pulses {
		if now.Sub(p.Born) < p.TTL {
			alive = append(alive, p)
		}
	}
	c.pulses = alive
}

// Tokens returns the live tokens. The slice is owned by the clock; callers
// copy before retaining.
func (c *AnimationClock) Tokens() []Token { return c.tokens }

// Pulses returns the live pulses.
func (c *AnimationClock) Pulses() []Pulse { return c.pulses }

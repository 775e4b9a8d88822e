package collision

import "log"

// ContactKind names a transition delivered to gameplay code.
type ContactKind uint8

const (
	CollisionEnter ContactKind = iota
	CollisionStay
	CollisionExit
	TriggerEnter
	TriggerStay
	TriggerExit
)

// ContactKindCount is the number of contact kinds.
const ContactKindCount = 6

var contactKindNames = [ContactKindCount]string{
	"collision_enter",
	"collision_stay",
	"collision_exit",
	"trigger_enter",
	"trigger_stay",
	"trigger_exit",
}

func (k ContactKind) String() string {
	if int(k) < len(contactKindNames) {
		return contactKindNames[k]
	}
	return "unknown"
}

// IsTrigger reports whether k is one of the trigger variants.
func (k ContactKind) IsTrigger() bool {
	return k >= TriggerEnter && k <= TriggerExit
}

type phase uint8

const (
	phaseEnter phase = iota
	phaseStay
	phaseExit
)

func kindFor(ph phase, trigger bool) ContactKind {
	k := ContactKind(ph)
	if trigger {
		k += TriggerEnter
	}
	return k
}

// Contact is one side's view of a transition. Both participants of a pair get
// their own Contact naming the other as counterpart.
type Contact struct {
	Kind        ContactKind
	Self        ProxyHandle
	Other       ProxyHandle
	OtherTarget Target
}

// Target receives contacts for one gameplay object.
type Target interface {
	HandleContact(Contact)
}

// TargetResolver maps a proxy handle back to its gameplay object. It reports
// false once the object is gone.
type TargetResolver interface {
	ResolveTarget(ProxyHandle) (Target, bool)
}

// ResponsePass turns the difference between the previous and current frame
// into Enter, Stay and Exit contacts.
type ResponsePass struct {
	reg     *Registry
	targets TargetResolver

	enters []CollisionPair
	stays  []CollisionPair
	exits  []CollisionPair

	stats  Stats
	logger *log.Logger
}

// ResponseOption configures a ResponsePass.
type ResponseOption func(*ResponsePass)

// WithResponseStats reports every pass to s.
func WithResponseStats(s Stats) ResponseOption {
	return func(r *ResponsePass) {
		r.stats = s
	}
}

// WithResponseLogger logs pairs skipped because a side no longer resolves.
func WithResponseLogger(l *log.Logger) ResponseOption {
	return func(r *ResponsePass) {
		r.logger = l
	}
}

// NewResponsePass creates a pass reading reg and dispatching through targets.
func NewResponsePass(reg *Registry, targets TargetResolver, opts ...ResponseOption) *ResponsePass {
	r := &ResponsePass{reg: reg, targets: targets}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Update dispatches this tick's transitions. It must run after the detection
// pass of the same tick.
func (r *ResponsePass) Update() {
	if r == nil || r.reg == nil || r.targets == nil {
		return
	}

	r.enters = r.reg.CollisionEnters(r.enters[:0])
	r.stays = r.reg.CollisionStays(r.stays[:0])
	r.exits = r.reg.CollisionExits(r.exits[:0])

	var st ResponseStats
	for _, ph := range []struct {
		pairs []CollisionPair
		phase phase
		count *int
	}{
		{r.enters, phaseEnter, &st.Enters},
		{r.stays, phaseStay, &st.Stays},
		{r.exits, phaseExit, &st.Exits},
	} {
		skipped := r.dispatch(ph.pairs, ph.phase)
		*ph.count = len(ph.pairs) - skipped
		st.Skipped += skipped
	}

	if r.stats != nil {
		r.stats.ObserveResponse(st)
	}
}

// dispatch delivers each pair to both sides. A side that no longer resolves,
// including one destroyed by a listener earlier in this pass, drops the pair.
func (r *ResponsePass) dispatch(pairs []CollisionPair, ph phase) int {
	skipped := 0
	for _, p := range pairs {
		a, okA := r.resolve(p.A)
		b, okB := r.resolve(p.B)
		if !okA || !okB {
			skipped++
			if r.logger != nil {
				r.logger.Printf("collision: skipped pair (%d, %d), target gone", p.A, p.B)
			}
			continue
		}

		kind := kindFor(ph, p.IsTriggerCollision)
		a.HandleContact(Contact{Kind: kind, Self: p.A, Other: p.B, OtherTarget: b})

		if _, ok := r.resolve(p.B); !ok {
			continue
		}
		b.HandleContact(Contact{Kind: kind, Self: p.B, Other: p.A, OtherTarget: a})
	}
	return skipped
}

// resolve requires both a live proxy and a live target.
func (r *ResponsePass) resolve(h ProxyHandle) (Target, bool) {
	if r.reg.GetProxy(h) == nil {
		return nil, false
	}
	return r.targets.ResolveTarget(h)
}

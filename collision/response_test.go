package collision

import "testing"

type recordingTarget struct {
	got []Contact
	on  func(Contact)
}

func (t *recordingTarget) HandleContact(c Contact) {
	t.got = append(t.got, c)
	if t.on != nil {
		t.on(c)
	}
}

type targetMap map[ProxyHandle]*recordingTarget

func (m targetMap) ResolveTarget(h ProxyHandle) (Target, bool) {
	t, ok := m[h]
	if !ok {
		return nil, false
	}
	return t, true
}

func TestResponseDispatchesBothSides(t *testing.T) {
	r := NewRegistry()
	det := NewDetectionPass(r, FixedBounds(Rect(0, 0, 100, 100)))
	targets := targetMap{}
	stats := &statsRecorder{}
	resp := NewResponsePass(r, targets, WithResponseStats(stats))

	p := r.CreateProxy(ProxyOptions{Bounds: Rect(0, 0, 10, 10)})
	q := r.CreateProxy(ProxyOptions{Bounds: Rect(5, 5, 10, 10)})
	targets[p] = &recordingTarget{}
	targets[q] = &recordingTarget{}

	det.Update()
	resp.Update()
	det.Update()
	resp.Update()
	r.SetBounds(q, Rect(100, 100, 10, 10))
	det.Update()
	resp.Update()

	wantKinds := []ContactKind{CollisionEnter, CollisionStay, CollisionExit}
	for _, side := range []struct {
		self, other ProxyHandle
	}{{p, q}, {q, p}} {
		got := targets[side.self].got
		if len(got) != len(wantKinds) {
			t.Fatalf("proxy %d expected %d contacts, got %v", side.self, len(wantKinds), got)
		}
		for i, c := range got {
			if c.Kind != wantKinds[i] || c.Self != side.self || c.Other != side.other {
				t.Fatalf("proxy %d contact %d = %+v", side.self, i, c)
			}
			if c.OtherTarget != Target(targets[side.other]) {
				t.Fatalf("proxy %d contact %d names the wrong counterpart", side.self, i)
			}
		}
	}

	if len(stats.responses) != 3 {
		t.Fatalf("expected 3 response stats, got %d", len(stats.responses))
	}
	if s := stats.responses[0]; s.Enters != 1 || s.Stays != 0 || s.Exits != 0 {
		t.Fatalf("tick 1 stats = %+v", s)
	}
}

func TestResponseTriggerKinds(t *testing.T) {
	r := NewRegistry()
	det := NewDetectionPass(r, FixedBounds(Rect(0, 0, 100, 100)))
	targets := targetMap{}
	resp := NewResponsePass(r, targets)

	coin := r.CreateProxy(ProxyOptions{Bounds: Rect(0, 0, 10, 10), IsTrigger: true})
	hero := r.CreateProxy(ProxyOptions{Bounds: Rect(5, 5, 10, 10)})
	targets[coin] = &recordingTarget{}
	targets[hero] = &recordingTarget{}

	det.Update()
	resp.Update()
	det.Update()
	resp.Update()
	r.SetBounds(hero, Rect(50, 50, 10, 10))
	det.Update()
	resp.Update()

	want := []ContactKind{TriggerEnter, TriggerStay, TriggerExit}
	for _, h := range []ProxyHandle{coin, hero} {
		got := targets[h].got
		if len(got) != len(want) {
			t.Fatalf("proxy %d got %v", h, got)
		}
		for i := range want {
			if got[i].Kind != want[i] || !got[i].Kind.IsTrigger() {
				t.Fatalf("proxy %d contact %d kind %v, want %v", h, i, got[i].Kind, want[i])
			}
		}
	}
}

func TestResponseSkipsUnresolved(t *testing.T) {
	r := NewRegistry()
	det := NewDetectionPass(r, FixedBounds(Rect(0, 0, 100, 100)))
	targets := targetMap{}
	stats := &statsRecorder{}
	resp := NewResponsePass(r, targets, WithResponseStats(stats))

	a := r.CreateProxy(ProxyOptions{Bounds: Rect(0, 0, 10, 10)})
	b := r.CreateProxy(ProxyOptions{Bounds: Rect(5, 5, 10, 10)})
	targets[a] = &recordingTarget{}

	det.Update()
	resp.Update()

	if len(targets[a].got) != 0 {
		t.Fatalf("pair with an unresolved side should be skipped, got %v", targets[a].got)
	}
	if st := stats.responses[0]; st.Skipped != 1 || st.Enters != 0 {
		t.Fatalf("expected one skipped pair and no dispatched enters, got %+v", st)
	}
	_ = b
}

func TestResponseListenerDestroysCounterpart(t *testing.T) {
	r := NewRegistry()
	det := NewDetectionPass(r, FixedBounds(Rect(0, 0, 100, 100)))
	targets := targetMap{}
	resp := NewResponsePass(r, targets)

	hero := r.CreateProxy(ProxyOptions{Bounds: Rect(0, 0, 10, 10)})
	coin := r.CreateProxy(ProxyOptions{Bounds: Rect(5, 5, 10, 10)})
	gem := r.CreateProxy(ProxyOptions{Bounds: Rect(2, 2, 4, 4)})

	targets[hero] = &recordingTarget{on: func(c Contact) {
		if c.Kind == CollisionEnter {
			r.DestroyProxy(c.Other)
			delete(targets, c.Other)
		}
	}}
	targets[coin] = &recordingTarget{}
	targets[gem] = &recordingTarget{}

	det.Update()
	resp.Update()

	if len(targets[hero].got) != 2 {
		t.Fatalf("hero should see both pickups, got %v", targets[hero].got)
	}
	if r.Len() != 1 {
		t.Fatalf("both pickups should be destroyed, %d proxies left", r.Len())
	}

	det.Update()
	resp.Update()
	if len(targets[hero].got) != 2 {
		t.Fatalf("destroyed proxies must not produce later contacts, got %v", targets[hero].got)
	}
}

func TestContactKindString(t *testing.T) {
	if CollisionEnter.String() != "collision_enter" || TriggerExit.String() != "trigger_exit" {
		t.Fatalf("unexpected names %q %q", CollisionEnter, TriggerExit)
	}
	if ContactKind(99).String() != "unknown" {
		t.Fatalf("out of range kind should be unknown")
	}
	if kindFor(phaseStay, true) != TriggerStay || kindFor(phaseExit, false) != CollisionExit {
		t.Fatalf("kindFor mapping broken")
	}
}

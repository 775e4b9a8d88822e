package physics

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/quadcollide/collision"
)

type enemy struct{ name string }

func TestBodiesResolve(t *testing.T) {
	bs := NewBodies()
	if bs.Register(collision.InvalidHandle, nil) != nil {
		t.Fatalf("invalid handle should not register")
	}

	b := bs.Register(3, &enemy{name: "slime"})
	if got := bs.Register(3, &enemy{name: "bat"}); got != b {
		t.Fatalf("re-register should return the existing body")
	}
	if e, ok := Owner[*enemy](bs, 3); !ok || e.name != "bat" {
		t.Fatalf("owner not replaced, got %+v ok=%v", e, ok)
	}
	if _, ok := Owner[string](bs, 3); ok {
		t.Fatalf("wrong owner type should not resolve")
	}

	target, ok := bs.ResolveTarget(3)
	if !ok || target != collision.Target(b) {
		t.Fatalf("ResolveTarget returned %v ok=%v", target, ok)
	}

	bs.Unregister(3)
	if _, ok := bs.ResolveTarget(3); ok || bs.Len() != 0 {
		t.Fatalf("unregistered body still resolves")
	}
	bs.Unregister(3)
}

func TestBodyDispatch(t *testing.T) {
	bs := NewBodies()
	b := bs.Register(1, "hero")
	other := bs.Register(2, &enemy{name: "slime"})

	var order []string
	b.On(collision.TriggerEnter).Subscribe(func(c collision.Contact) {
		order = append(order, "kind:"+c.Kind.String())
	})
	b.OnContact.Subscribe(func(c collision.Contact) {
		order = append(order, "any:"+c.Kind.String())
		if e, ok := OwnerOf[*enemy](c); !ok || e.name != "slime" {
			t.Fatalf("counterpart owner not resolved")
		}
	})

	b.HandleContact(collision.Contact{Kind: collision.TriggerEnter, Self: 1, Other: 2, OtherTarget: other})
	b.HandleContact(collision.Contact{Kind: collision.CollisionStay, Self: 1, Other: 2, OtherTarget: other})

	want := []string{"kind:trigger_enter", "any:trigger_enter", "any:collision_stay"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
	if b.On(collision.ContactKind(42)) != nil {
		t.Fatalf("unknown kind should have no signal")
	}
}

func TestBodiesWithResponsePass(t *testing.T) {
	reg := collision.NewRegistry()
	bs := NewBodies()
	det := collision.NewDetectionPass(reg, collision.FixedBounds(collision.Rect(0, 0, 100, 100)))
	resp := collision.NewResponsePass(reg, bs)

	hero := reg.CreateProxy(collision.ProxyOptions{Bounds: collision.Rect(0, 0, 10, 10)})
	coin := reg.CreateProxy(collision.ProxyOptions{Bounds: collision.Rect(5, 5, 4, 4), IsTrigger: true})
	bs.Register(hero, "hero")
	coinBody := bs.Register(coin, "coin")

	collected := 0
	coinBody.On(collision.TriggerEnter).Subscribe(func(c collision.Contact) {
		collected++
		reg.DestroyProxy(c.Self)
		bs.Unregister(c.Self)
	})

	for i := 0; i < 3; i++ {
		det.Update()
		resp.Update()
	}
	if collected != 1 {
		t.Fatalf("coin should be collected once, got %d", collected)
	}
	if reg.Len() != 1 || bs.Len() != 1 {
		t.Fatalf("coin should be gone, proxies=%d bodies=%d", reg.Len(), bs.Len())
	}
}

func TestSpaceSourceSync(t *testing.T) {
	reg := collision.NewRegistry()
	src := NewSpaceSource(nil)

	h := reg.CreateProxy(collision.ProxyOptions{})
	body := src.AddBox(h, collision.Rect(0, 0, 10, 10))
	if body == nil || src.Len() != 1 {
		t.Fatalf("AddBox failed")
	}

	reg.ClearDirtyFlags()
	src.Sync(reg)
	if got := reg.GetProxy(h).Bounds; got != collision.Rect(0, 0, 10, 10) {
		t.Fatalf("synced bounds = %v", got)
	}

	reg.ClearDirtyFlags()
	src.Sync(reg)
	if len(reg.DirtyHandles()) != 0 {
		t.Fatalf("unmoved shape should not dirty its proxy")
	}

	body.SetPosition(cp.Vector{X: 25, Y: 45})
	src.Sync(reg)
	if got := reg.GetProxy(h).Bounds; got != collision.Rect(20, 40, 10, 10) {
		t.Fatalf("moved bounds = %v", got)
	}
	if len(reg.DirtyHandles()) != 1 {
		t.Fatalf("moved shape should dirty its proxy")
	}

	src.Unbind(h)
	if _, ok := src.Shape(h); ok || src.Len() != 0 {
		t.Fatalf("Unbind left the shape bound")
	}
	count := 0
	src.Space().EachShape(func(*cp.Shape) { count++ })
	if count != 0 {
		t.Fatalf("shape still in space")
	}
}

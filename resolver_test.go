package witness

import "testing"

func TestChaseFollowsBoundVariable(t *testing.T) {
	r := newResolver()
	v := r.variable()
	if !v.IsVariable() {
		t.Fatal("fresh variable should report IsVariable")
	}
	if err := r.bind(v.varID, U32Format()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if got := chase(v); got.Kind() != KindU32 {
		t.Fatalf("chase(v) = %s, want U32", got.Kind())
	}
}

func TestChaseLeavesUnboundVariableAlone(t *testing.T) {
	r := newResolver()
	v := r.variable()
	if got := chase(v); got.Kind() != KindVariable {
		t.Fatalf("chase(unbound) = %s, want Variable", got.Kind())
	}
}

func TestChaseFollowsChainAcrossVariables(t *testing.T) {
	r := newResolver()
	a := r.variable()
	b := r.variable()
	if err := r.bind(b.varID, U8Format()); err != nil {
		t.Fatalf("bind b: %v", err)
	}
	if err := r.bind(a.varID, b); err != nil {
		t.Fatalf("bind a: %v", err)
	}
	if got := chase(a); got.Kind() != KindU8 {
		t.Fatalf("chase(a) = %s, want U8 after following through b", got.Kind())
	}
}

func TestBindRejectsDirectCycle(t *testing.T) {
	r := newResolver()
	v := r.variable()
	if err := r.bind(v.varID, v); err == nil {
		t.Fatal("binding a variable to itself should fail the occurs-check")
	}
}

func TestBindRejectsCycleThroughSeq(t *testing.T) {
	r := newResolver()
	v := r.variable()
	if err := r.bind(v.varID, SeqFormat(v)); err == nil {
		t.Fatal("binding a variable to Seq(itself) should fail the occurs-check")
	}
}

func TestBindAllowsCycleThroughTypeName(t *testing.T) {
	r := newResolver()
	v := r.variable()
	if err := r.bind(v.varID, TypeNameFormat("Node")); err != nil {
		t.Fatalf("TypeName positions should be opaque to the occurs-check: %v", err)
	}
}

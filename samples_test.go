package witness

import "testing"

func TestSamplesStoreRecordAndLookup(t *testing.T) {
	s := NewSamplesStore()
	s.Record("Bounded", 42)

	v, ok := s.Lookup("Bounded")
	if !ok {
		t.Fatal("Lookup should find a recorded sample")
	}
	if v.Int() != 42 {
		t.Fatalf("Lookup(Bounded).Int() = %d, want 42", v.Int())
	}
}

func TestSamplesStoreLookupMissing(t *testing.T) {
	s := NewSamplesStore()
	if _, ok := s.Lookup("Nonexistent"); ok {
		t.Fatal("Lookup should report false for an unrecorded name")
	}
}

func TestSamplesStoreRecordOverwrites(t *testing.T) {
	s := NewSamplesStore()
	s.Record("Bounded", 1)
	s.Record("Bounded", 2)
	v, _ := s.Lookup("Bounded")
	if v.Int() != 2 {
		t.Fatalf("second Record should overwrite the first, got %d", v.Int())
	}
}

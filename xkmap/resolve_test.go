package xkmap

import (
	"testing"

	"github.com/jezek/xgb/xproto"
)

func eqKeycodes(a, b []xproto.Keycode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

//----------

func TestFindKeySequence(t *testing.T) {
	km := getTestKMap(t)

	type pair struct {
		ks   xproto.Keysym
		mods []xproto.Keycode
		key  xproto.Keycode
		ok   bool
	}
	pairs := []pair{
		{0x61, []xproto.Keycode{}, 10, true},           // a
		{0x41, []xproto.Keycode{16}, 10, true},         // A: shift
		{0x40, []xproto.Keycode{18}, 9, true},          // @: altgr
		{0xc6, []xproto.Keycode{16, 18}, 10, true},     // Æ: shift+altgr
		{0x21, []xproto.Keycode{16}, 11, true},         // !: shift
		{0xff0d, []xproto.Keycode{}, 12, true},         // Return
		{0xffb1, []xproto.Keycode{16}, 20, true},       // KP_1
		{0xe9, nil, 0, false},                          // é: unassigned
		{0, nil, 0, false},
	}
	for i, p := range pairs {
		seq, ok := km.FindKeySequence(p.ks)
		if ok != p.ok {
			t.Fatalf("entry %v: 0x%x -> ok=%v, expected %v", i, p.ks, ok, p.ok)
		}
		if !ok {
			continue
		}
		if seq.Key != p.key || !eqKeycodes(seq.Mods, p.mods) {
			t.Fatalf("entry %v: 0x%x -> (%v,%v), expected (%v,%v)",
				i, p.ks, seq.Mods, seq.Key, p.mods, p.key)
		}
	}
}

func TestFindKeySequenceDeterminism(t *testing.T) {
	km := getTestKMap(t)

	for _, ks := range []xproto.Keysym{0x61, 0x41, 0xc6, 0xff0d} {
		first, ok := km.FindKeySequence(ks)
		if !ok {
			t.Fatalf("0x%x: no plan", ks)
		}
		for i := 0; i < 5; i++ {
			seq, ok := km.FindKeySequence(ks)
			if !ok || seq.Key != first.Key || !eqKeycodes(seq.Mods, first.Mods) {
				t.Fatalf("0x%x: plan changed between calls: (%v,%v) vs (%v,%v)",
					ks, first.Mods, first.Key, seq.Mods, seq.Key)
			}
		}
	}
}

// Playing a plan back against a fresh modifier state must select the
// level that produces the symbol the plan was resolved for.
func TestFindKeySequenceRoundTrip(t *testing.T) {
	km := getTestKMap(t)

	syms := []xproto.Keysym{0x61, 0x41, 0x40, 0xe6, 0xc6, 0x21, 0xff0d, 0xffb1, 0x20}
	for _, ks := range syms {
		seq, ok := km.FindKeySequence(ks)
		if !ok {
			t.Fatalf("0x%x: no plan", ks)
		}
		st := km.NewModState()
		for _, kc := range seq.Mods {
			st.KeyDown(kc)
		}
		if got := km.Lookup(seq.Key, st.Depressed()); got != ks {
			t.Fatalf("0x%x: plan (%v,%v) plays back as 0x%x",
				ks, seq.Mods, seq.Key, got)
		}
	}
}

// With no single key activating shift, a shifted cased letter falls
// through to the capslock alternative; a shifted symbol with no such
// alternative resolves to nothing.
func TestFindKeySequenceUnknownModifier(t *testing.T) {
	tbl := newTestTables()
	tbl.Modifiers.Keycodes[0*2] = 0 // no shift keycode
	km, err := NewKMap(tbl)
	if err != nil {
		t.Fatal(err)
	}

	seq, ok := km.FindKeySequence(0x41) // A
	if !ok || seq.Key != 10 || !eqKeycodes(seq.Mods, []xproto.Keycode{17}) {
		t.Fatalf("A -> (%v,%v,%v), expected capslock plan", seq.Mods, seq.Key, ok)
	}

	if _, ok := km.FindKeySequence(0x21); ok { // !
		t.Fatalf("expected no plan for ! without a shift keycode")
	}
}

//----------

func TestKeysymForByte(t *testing.T) {
	type pair struct {
		b  byte
		ks xproto.Keysym
	}
	pairs := []pair{
		{8, 0xff08},  // backspace
		{9, 0xff09},  // tab
		{13, 0xff0d}, // return
		{17, 0xff11},
		{7, 0x07},
		{18, 0x12},
		{'a', 0x61},
		{' ', 0x20},
		{0xe6, 0xe6},
	}
	for i, p := range pairs {
		if ks := KeysymForByte(p.b); ks != p.ks {
			t.Fatalf("entry %v: %v -> 0x%x, expected 0x%x", i, p.b, ks, p.ks)
		}
	}
}

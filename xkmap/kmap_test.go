package xkmap

import (
	"testing"

	"github.com/jezek/xgb/xproto"
)

// A small pc-style keyboard, keycodes 8..20, group-0 columns only:
//
//	9	q	Q	-	-	@
//	10	a	A	-	-	æ	Æ
//	11	1	!
//	12	Return
//	13	BackSpace
//	14	Tab
//	15	space
//	16	Shift_L		(modifier row 0)
//	17	Caps_Lock	(modifier row 1)
//	18	ISO_Level3_Shift(modifier row 7)
//	19	Num_Lock	(modifier row 4)
//	20	KP_End	KP_1
func newTestTables() *Tables {
	const min, max = 8, 20
	const stride = 7
	syms := make([]xproto.Keysym, (max-min+1)*stride)
	set := func(kc int, cols ...xproto.Keysym) {
		copy(syms[(kc-min)*stride:], cols)
	}
	set(9, 0x71, 0x51, 0, 0, 0x40)
	set(10, 0x61, 0x41, 0, 0, 0xe6, 0xc6)
	set(11, 0x31, 0x21)
	set(12, 0xff0d)
	set(13, 0xff08)
	set(14, 0xff09)
	set(15, 0x20)
	set(16, 0xffe1)
	set(17, 0xffe5)
	set(18, 0xfe03)
	set(19, 0xff7f)
	set(20, 0xff9c, 0xffb1)

	mods := make([]xproto.Keycode, 8*2)
	mods[0*2] = 16 // shift
	mods[1*2] = 17 // lock
	mods[4*2] = 19 // mod2 (numlock)
	mods[7*2] = 18 // mod5 (altgr)

	return &Tables{
		MinKeycode: min,
		MaxKeycode: max,
		Keyboard: &xproto.GetKeyboardMappingReply{
			KeysymsPerKeycode: stride,
			Keysyms:           syms,
		},
		Modifiers: &xproto.GetModifierMappingReply{
			KeycodesPerModifier: 2,
			Keycodes:            mods,
		},
	}
}

func getTestKMap(t *testing.T) *KMap {
	t.Helper()
	km, err := NewKMap(newTestTables())
	if err != nil {
		t.Fatal(err)
	}
	return km
}

func modSet(mods ...ModIndex) ModSet {
	ms := ModSet(0)
	for _, m := range mods {
		ms.Add(m)
	}
	return ms
}

//----------

func TestNewKMapChecks(t *testing.T) {
	tbl := newTestTables()
	tbl.Keyboard.KeysymsPerKeycode = 1
	if _, err := NewKMap(tbl); err == nil {
		t.Fatalf("expected error on narrow keysym table")
	}

	tbl = newTestTables()
	tbl.MinKeycode, tbl.MaxKeycode = 20, 8
	if _, err := NewKMap(tbl); err == nil {
		t.Fatalf("expected error on bad keycode range")
	}

	tbl = newTestTables()
	tbl.Modifiers = nil
	if _, err := NewKMap(tbl); err == nil {
		t.Fatalf("expected error on missing modifier reply")
	}
}

func TestModRowDetection(t *testing.T) {
	km := getTestKMap(t)
	if km.modRows.numLock != 4 {
		t.Fatalf("numlock row: %v", km.modRows.numLock)
	}
	if km.modRows.altGr != 7 {
		t.Fatalf("altgr row: %v", km.modRows.altGr)
	}
	if km.modRows.super != -1 || km.modRows.meta != -1 {
		t.Fatalf("super/meta rows: %v %v", km.modRows.super, km.modRows.meta)
	}
}

func TestModRowDetectionNonDefault(t *testing.T) {
	// altgr key sitting on mod3 instead of the usual mod5
	tbl := newTestTables()
	tbl.Modifiers.Keycodes[7*2] = 0
	tbl.Modifiers.Keycodes[5*2] = 18
	km, err := NewKMap(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if km.modRows.altGr != 5 {
		t.Fatalf("altgr row: %v", km.modRows.altGr)
	}
}

func TestModKeycodeDerivation(t *testing.T) {
	km := getTestKMap(t)

	type pair struct {
		m  ModIndex
		kc xproto.Keycode
		ok bool
	}
	pairs := []pair{
		{ModShift, 16, true},
		{ModLock, 17, true},
		{ModControl, 0, false},
		{Mod1, 0, false},
		{Mod2, 19, true},
		{Mod5, 18, true},
	}
	for i, p := range pairs {
		kc, ok := km.ModKeycode(p.m)
		if kc != p.kc || ok != p.ok {
			t.Fatalf("entry %v: mod %v -> (%v,%v), expected (%v,%v)",
				i, p.m, kc, ok, p.kc, p.ok)
		}
	}
}

//----------

func TestLookup(t *testing.T) {
	km := getTestKMap(t)

	type pair struct {
		kc xproto.Keycode
		ms ModSet
		ks xproto.Keysym
	}
	pairs := []pair{
		{10, 0, 0x61},
		{10, modSet(ModShift), 0x41},
		{10, modSet(ModLock), 0x41},
		{10, modSet(ModShift, ModLock), 0x61},
		{10, modSet(Mod5), 0xe6},
		{10, modSet(Mod5, ModShift), 0xc6},
		{11, 0, 0x31},
		{11, modSet(ModShift), 0x21},
		{11, modSet(ModLock), 0x31},
		{12, 0, 0xff0d},
		{12, modSet(ModShift), 0xff0d},
		{20, 0, 0xff9c},
		{20, modSet(ModShift), 0xffb1},
		{20, modSet(Mod2), 0xffb1},
		{20, modSet(Mod2, ModShift), 0xff9c},
	}
	for i, p := range pairs {
		ks := km.Lookup(p.kc, p.ms)
		if ks != p.ks {
			t.Fatalf("entry %v: (0x%x,%v) -> 0x%x, expected 0x%x",
				i, p.kc, p.ms, ks, p.ks)
		}
	}
}

func TestLevelFor(t *testing.T) {
	km := getTestKMap(t)

	type pair struct {
		kc    xproto.Keycode
		ms    ModSet
		level int
	}
	pairs := []pair{
		{10, 0, 0},
		{10, modSet(ModShift), 1},
		{10, modSet(ModLock), 1},
		{10, modSet(Mod5), 2},
		{10, modSet(Mod5, ModShift), 3},
		{20, modSet(Mod2), 1},
	}
	for i, p := range pairs {
		level := km.LevelFor(p.kc, p.ms)
		if level != p.level {
			t.Fatalf("entry %v: (0x%x,%v) -> level %v, expected %v",
				i, p.kc, p.ms, level, p.level)
		}
	}
}

// Package xkmap models the X11 core-protocol keyboard map: the forward
// keycode -> keysym table, the modifier table, and the derived reverse
// modifier -> keycode table needed to synthesize key sequences.
package xkmap

import (
	"unicode"

	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

// $ man keymaps
// https://tronche.com/gui/x/xlib/input/XGetKeyboardMapping.html
// https://tronche.com/gui/x/xlib/input/keyboard-encoding.html

// xproto.Keycode is a physical key.
// xproto.Keysym is the encoding of a symbol on the cap of a key.
// A list of keysyms is associated with each keycode.

//----------

// Tables holds the raw server replies a snapshot is built from.
type Tables struct {
	MinKeycode xproto.Keycode
	MaxKeycode xproto.Keycode
	Keyboard   *xproto.GetKeyboardMappingReply
	Modifiers  *xproto.GetModifierMappingReply
}

// Group 0 keysym columns: plain, shift, altgr, altgr+shift. Columns 2/3
// belong to group 2 and are never searched.
var levelCols = [...]int{0, 1, 4, 5}

//----------

// KMap is a snapshot of the keyboard map. It is immutable once built;
// layout changes are handled by building a new one.
type KMap struct {
	tbl *Tables

	modRows struct {
		numLock int8
		alt     int8
		altGr   int8
		super   int8
		meta    int8
	}

	// modKeycode[m] is the first keycode whose isolated press activates
	// modifier index m and nothing else; 0 when no single key does.
	modKeycode [8]xproto.Keycode
}

func NewKMap(tbl *Tables) (*KMap, error) {
	km := &KMap{tbl: tbl}
	if err := km.checkKeyboard(); err != nil {
		return nil, err
	}
	km.detectModRows()
	km.deriveModKeycodes()
	return km, nil
}

func (km *KMap) checkKeyboard() error {
	n := int(km.tbl.MaxKeycode) - int(km.tbl.MinKeycode) + 1
	if n <= 0 {
		return errors.Errorf("bad keycode count: %v", n)
	}
	if km.tbl.Keyboard == nil || km.tbl.Modifiers == nil {
		return errors.New("missing mapping replies")
	}
	if km.tbl.Keyboard.KeysymsPerKeycode < 2 {
		return errors.New("keysyms per keycode < 2")
	}
	return nil
}

//----------

func (km *KMap) detectModRows() {
	// 8 modifier rows, each with n keycodes
	//0	Shift
	//1	Lock (Caps Lock)
	//2	Control
	//--- detect
	//3	Mod1 (Usually Alt)
	//4	Mod2 (Often Num Lock)
	//5	Mod3 (Rarely used)
	//6	Mod4 (Often Super/Meta)
	//7	Mod5 (Often AltGr)

	// X11: keysyms to detect which row might have them
	type KS = xproto.Keysym
	numLocks := []KS{
		0xff7f, // XK_Num_Lock
	}
	alts := []KS{
		0xffe9, // XK_Alt_L
		0xffea, // XK_Alt_R
	}
	altGrs := []KS{
		0xfe03, // XK_ISO_Level3_Shift
		0xfe11, // XK_ISO_Level5_Shift
		0xff7e, // XK_ISO_Group_Shift
	}
	supers := []KS{
		0xffeb, // XK_Super_L
		0xffec, // XK_Super_R
	}
	metas := []KS{
		0xffe7, // XK_Meta_L
		0xffe8, // XK_Meta_R
	}

	// defaults
	km.modRows.numLock = 4
	km.modRows.alt = 3
	km.modRows.altGr = 7
	km.modRows.super = -1
	km.modRows.meta = -1

	type pair struct {
		row *int8
		kss []KS
	}
	pairs := []pair{
		{&km.modRows.numLock, numLocks},
		{&km.modRows.alt, alts},
		{&km.modRows.altGr, altGrs},
		{&km.modRows.super, supers},
		{&km.modRows.meta, metas},
	}

	// detect
	stride := int(km.tbl.Modifiers.KeycodesPerModifier)
	for r := int8(3); r < 8; r++ {
		kcs := km.tbl.Modifiers.Keycodes[int(r)*stride : (int(r)+1)*stride]
	kcLoop: // iterate keycodes/keysyms, keep first found row
		for _, kc := range kcs {
			kss := km.keycodeToKeysyms(kc)
			for _, ks := range kss {
				for _, p := range pairs {
					for _, ks2 := range p.kss {
						if ks == ks2 {
							*p.row = r
							break kcLoop
						}
					}
				}
			}
		}
	}
}

// deriveModKeycodes builds the reverse table: for each keycode, an
// isolated press is simulated from an empty baseline; a modifier index
// activated exclusively by that press gets the keycode, first one wins.
// A modifier only reachable through key combinations stays at 0 and any
// symbol needing it is unresolvable.
func (km *KMap) deriveModKeycodes() {
	st := km.NewModState()
	for j := int(km.tbl.MinKeycode); j <= int(km.tbl.MaxKeycode); j++ {
		kc := xproto.Keycode(j)
		st.Reset()
		st.KeyDown(kc)
		ms := st.Depressed()
		if ms.Count() != 1 {
			continue
		}
		m := ms.Indices()[0]
		if km.modKeycode[m] == 0 {
			km.modKeycode[m] = kc
		}
	}
}

// ModKeycode returns the keycode that exclusively activates modifier
// index m, if one was observed.
func (km *KMap) ModKeycode(m ModIndex) (xproto.Keycode, bool) {
	kc := km.modKeycode[m]
	return kc, kc != 0
}

//----------

func (km *KMap) keycodeToKeysyms(keycode xproto.Keycode) []xproto.Keysym {
	y := int(keycode) - int(km.tbl.MinKeycode)
	n := int(km.tbl.MaxKeycode) - int(km.tbl.MinKeycode) + 1
	if y < 0 || y >= n {
		return nil
	}
	stride := int(km.tbl.Keyboard.KeysymsPerKeycode) // usually ~7
	return km.tbl.Keyboard.Keysyms[y*stride : (y+1)*stride]
}

// keysymAt returns the explicit table entry for a group-0 level, 0 when
// the level is unassigned. No implicit case/fill rules apply here; those
// belong to Lookup.
func (km *KMap) keysymAt(kc xproto.Keycode, level int) xproto.Keysym {
	if level < 0 || level >= len(levelCols) {
		return 0
	}
	kss := km.keycodeToKeysyms(kc)
	col := levelCols[level]
	if col >= len(kss) {
		return 0
	}
	return kss[col]
}

// numLevels is how many group-0 levels the table width allows.
func (km *KMap) numLevels() int {
	n := 0
	for _, col := range levelCols {
		if col < int(km.tbl.Keyboard.KeysymsPerKeycode) {
			n++
		}
	}
	return n
}

//----------

// LevelFor reports which group-0 level a press of kc selects under the
// given held modifiers: altgr picks the second column pair, and within
// a pair the shifted entry is chosen per the usual rules (shift xor
// capslock for cased letters, numlock for keypad keys).
func (km *KMap) LevelFor(kc xproto.Keycode, ms ModSet) int {
	hasShift := ms.Has(ModShift)
	hasLock := ms.Has(ModLock)
	hasAltGr := km.modRows.altGr >= 0 && ms.Has(ModIndex(km.modRows.altGr))
	hasNumLock := km.modRows.numLock >= 0 && ms.Has(ModIndex(km.modRows.numLock))

	level := 0
	if hasAltGr {
		level = 2
	}

	ks1 := km.keysymAt(kc, level)
	ks2 := km.keysymAt(kc, level+1)
	if ks2 == 0 {
		ks2 = ks1
	}

	// keypad
	if hasNumLock && isKeypad(ks2) {
		if hasShift {
			return level
		}
		return level + 1
	}

	r1 := rune(ks1)
	hasLower := unicode.IsLower(unicode.ToLower(r1))
	if hasLower {
		shifted := (hasShift && !hasLock) || (!hasShift && hasLock)
		if shifted {
			return level + 1
		}
		return level
	}

	if hasShift {
		return level + 1
	}
	return level
}

// Lookup resolves the keysym produced by pressing kc with the given
// modifiers held. A pair with only its first entry assigned yields that
// entry for both levels.
func (km *KMap) Lookup(kc xproto.Keycode, ms ModSet) xproto.Keysym {
	level := km.LevelFor(kc, ms)
	ks := km.keysymAt(kc, level)
	if ks == 0 && level&1 == 1 {
		ks = km.keysymAt(kc, level-1)
	}
	return ks
}

//----------

func isKeypad(ks xproto.Keysym) bool {
	return (0xFF80 <= ks && ks <= 0xFFBD) ||
		(0x11000000 <= ks && ks <= 0x1100FFFF)
}

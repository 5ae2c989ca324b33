package xkmap

import (
	"unicode"

	"github.com/jezek/xgb/xproto"
)

// KeySeq is a plan to produce one keysym: press Mods in order, press
// Key, release Key, release Mods in reverse order.
type KeySeq struct {
	Mods []xproto.Keycode
	Key  xproto.Keycode
}

// FindKeySequence resolves the plan that produces ks under this
// snapshot: the first keycode/level match in table order, with the
// first mask alternative whose modifiers all have known keycodes. ok
// is false when no keycode produces ks, or when every alternative for
// the matched level needs a modifier without an activating keycode.
// Same snapshot, same target: same plan.
func (km *KMap) FindKeySequence(ks xproto.Keysym) (KeySeq, bool) {
	kc, level, ok := km.findKeysym(ks)
	if !ok {
		return KeySeq{}, false
	}
	for _, mask := range km.modMasksForLevel(kc, level) {
		mods, ok := km.modKeycodesFor(mask)
		if !ok {
			continue
		}
		return KeySeq{Mods: mods, Key: kc}, true
	}
	return KeySeq{}, false
}

// findKeysym scans keycodes ascending, levels ascending, for the first
// explicit table entry equal to ks. Ties across layout changes are a
// don't-care.
func (km *KMap) findKeysym(ks xproto.Keysym) (xproto.Keycode, int, bool) {
	if ks == 0 {
		return 0, 0, false
	}
	nl := km.numLevels()
	for j := int(km.tbl.MinKeycode); j <= int(km.tbl.MaxKeycode); j++ {
		kc := xproto.Keycode(j)
		for level := 0; level < nl; level++ {
			if km.keysymAt(kc, level) == ks {
				return kc, level, true
			}
		}
	}
	return 0, 0, false
}

// modMasksForLevel lists the mask alternatives that select a level on
// kc, simplest first: nothing for an even level, shift for an odd one,
// then the lock modifiers that also reach it (capslock for cased
// letter pairs, numlock for keypad pairs). Levels 2/3 add the altgr
// row to every alternative.
func (km *KMap) modMasksForLevel(kc xproto.Keycode, level int) []ModSet {
	base := ModSet(0)
	if level >= 2 {
		if km.modRows.altGr < 0 {
			return nil
		}
		base.Add(ModIndex(km.modRows.altGr))
	}
	if level&1 == 0 {
		return []ModSet{base}
	}

	withShift := base
	withShift.Add(ModShift)
	u := []ModSet{withShift}

	ks1 := km.keysymAt(kc, level-1)
	ks2 := km.keysymAt(kc, level)
	if unicode.IsLower(unicode.ToLower(rune(ks1))) {
		withLock := base
		withLock.Add(ModLock)
		u = append(u, withLock)
	}
	if isKeypad(ks2) && km.modRows.numLock >= 0 {
		withNum := base
		withNum.Add(ModIndex(km.modRows.numLock))
		u = append(u, withNum)
	}
	return u
}

// modKeycodesFor expands a mask into keycodes in ascending modifier
// index order; ok is false if any index has no known keycode.
func (km *KMap) modKeycodesFor(ms ModSet) ([]xproto.Keycode, bool) {
	u := []xproto.Keycode{}
	for _, m := range ms.Indices() {
		kc := km.modKeycode[m]
		if kc == 0 {
			return nil, false
		}
		u = append(u, kc)
	}
	return u, true
}

//----------

// KeysymForByte maps a byte to the keysym it resolves against: control
// bytes 8..17 land in the function keysym range (backspace, tab,
// linefeed, return, ...), the rest are their latin-1 value.
func KeysymForByte(b byte) xproto.Keysym {
	if b >= 8 && b <= 17 {
		return xproto.Keysym(b) + 0xFF00
	}
	return xproto.Keysym(b)
}

package xkmap

import (
	"math/bits"

	"github.com/jezek/xgb/xproto"
)

// ModIndex identifies one of the eight rows of the X modifier map.
type ModIndex uint8

const (
	ModShift ModIndex = iota
	ModLock
	ModControl
	Mod1
	Mod2
	Mod3
	Mod4
	Mod5
)

//----------

// ModSet is a set of modifier indices, one bit per row. All mask logic
// goes through this type to keep the bit semantics in one place.
type ModSet uint8

func (ms ModSet) Has(m ModIndex) bool { return ms&(1<<m) != 0 }
func (ms *ModSet) Add(m ModIndex)     { *ms |= 1 << m }
func (ms ModSet) Count() int          { return bits.OnesCount8(uint8(ms)) }
func (ms ModSet) Empty() bool         { return ms == 0 }

// Indices returns the members in ascending order.
func (ms ModSet) Indices() []ModIndex {
	u := []ModIndex{}
	for m := ModIndex(0); m < 8; m++ {
		if ms.Has(m) {
			u = append(u, m)
		}
	}
	return u
}

//----------

// ModState tracks which modifiers a sequence of key presses activates,
// against one snapshot's modifier table. Local to derivation and tests.
type ModState struct {
	km  *KMap
	cur ModSet
}

func (km *KMap) NewModState() *ModState {
	return &ModState{km: km}
}

func (st *ModState) Reset() {
	st.cur = 0
}

func (st *ModState) KeyDown(kc xproto.Keycode) {
	st.cur |= st.km.keycodeMods(kc)
}

func (st *ModState) Depressed() ModSet {
	return st.cur
}

//----------

// keycodeMods is the set of modifier rows listing kc.
func (km *KMap) keycodeMods(kc xproto.Keycode) ModSet {
	ms := ModSet(0)
	if kc == 0 {
		return ms
	}
	stride := int(km.tbl.Modifiers.KeycodesPerModifier)
	for m := ModIndex(0); m < 8; m++ {
		row := km.tbl.Modifiers.Keycodes[int(m)*stride : (int(m)+1)*stride]
		for _, kc2 := range row {
			if kc2 == kc {
				ms.Add(m)
			}
		}
	}
	return ms
}

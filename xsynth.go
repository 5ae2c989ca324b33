// Package xsynth synthesizes pointer and keyboard input against an X11
// session: it keeps a keymap snapshot current across layout changes
// and turns characters into modifier+key press sequences submitted
// through the fake-input extension.
package xsynth

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/jmigpin/xsynth/xconn"
	"github.com/jmigpin/xsynth/xkmap"
)

// Session is the protocol connection the engine drives. xconn.Conn is
// the live implementation.
type Session interface {
	Root() xproto.Window
	// PollEvent is non-blocking; (nil, nil) means the queue is empty.
	PollEvent() (xgb.Event, error)
	FakeInput(typ, detail byte, x, y int16) error
	FakeInputChecked(typ, detail byte, x, y int16) error
	KeyboardTables() (*xkmap.Tables, error)
	Flush() error
	Close()
}

// Synth synthesizes input events. Not safe for concurrent use: the
// keymap cache is replaced without locking, so callers that share an
// instance across goroutines serialize access themselves.
type Synth struct {
	sess Session
	km   *xkmap.KMap
}

// New connects to $DISPLAY and builds the first keymap snapshot.
func New() (*Synth, error) {
	return NewDisplay("")
}

// NewDisplay connects to the given display (":0" syntax).
func NewDisplay(display string) (*Synth, error) {
	c, err := xconn.Connect(display)
	if err != nil {
		return nil, err
	}
	syn, err := NewWithSession(c)
	if err != nil {
		c.Close()
		return nil, err
	}
	return syn, nil
}

// NewWithSession builds the engine over an established session.
func NewWithSession(s Session) (*Synth, error) {
	syn := &Synth{sess: s}
	if err := syn.rebuild(); err != nil {
		return nil, err
	}
	return syn, nil
}

func (syn *Synth) Close() {
	syn.sess.Close()
}

//----------

func (syn *Synth) rebuild() error {
	tbl, err := syn.sess.KeyboardTables()
	if err != nil {
		return err
	}
	km, err := xkmap.NewKMap(tbl)
	if err != nil {
		return err
	}
	syn.km = km
	return nil
}

// drainEvents empties the event queue before an operation acts, and
// rebuilds the keymap snapshot if a mapping change was queued. Several
// queued changes cause one rebuild: the fetch reads current server
// state, which already reflects them all.
func (syn *Synth) drainEvents() error {
	mapped := false
	for {
		ev, err := syn.sess.PollEvent()
		if ev == nil && err == nil {
			break
		}
		if err != nil {
			// queued protocol error from an earlier unchecked request
			continue
		}
		switch ev.(type) {
		case xproto.MappingNotifyEvent:
			mapped = true
		}
	}
	if mapped {
		return syn.rebuild()
	}
	return nil
}

//----------

// MovePointer warps the pointer to absolute root coordinates.
func (syn *Synth) MovePointer(x, y int16) error {
	if err := syn.drainEvents(); err != nil {
		return err
	}
	return syn.sess.FakeInputChecked(xproto.MotionNotify, 0, x, y)
}

// MovePointerRel moves the pointer relative to its current position.
func (syn *Synth) MovePointerRel(dx, dy int16) error {
	if err := syn.drainEvents(); err != nil {
		return err
	}
	return syn.sess.FakeInputChecked(xproto.MotionNotify, 1, dx, dy)
}

// Click presses or releases a pointer button at absolute root
// coordinates.
func (syn *Synth) Click(x, y int16, button uint8, press bool) error {
	if err := syn.drainEvents(); err != nil {
		return err
	}
	typ := byte(xproto.ButtonPress)
	if !press {
		typ = xproto.ButtonRelease
	}
	return syn.sess.FakeInputChecked(typ, button, x, y)
}

// Scroll emulates wheel motion with button press/release pairs:
// buttons 4/5 for vertical (positive dy scrolls up), 6/7 for
// horizontal (positive dx scrolls right), one pair per tick. Only the
// final event is round-tripped.
func (syn *Synth) Scroll(dx, dy int32) error {
	if err := syn.drainEvents(); err != nil {
		return err
	}
	type tick struct {
		button byte
		n      int32
	}
	ticks := []tick{}
	if dy > 0 {
		ticks = append(ticks, tick{4, dy})
	} else if dy < 0 {
		ticks = append(ticks, tick{5, -dy})
	}
	if dx < 0 {
		ticks = append(ticks, tick{6, -dx})
	} else if dx > 0 {
		ticks = append(ticks, tick{7, dx})
	}

	// pairs go out as they are generated; the count can be large
	total := int32(0)
	for _, tk := range ticks {
		total += tk.n
	}
	sent := int32(0)
	for _, tk := range ticks {
		for i := int32(0); i < tk.n; i++ {
			if err := syn.sess.FakeInput(xproto.ButtonPress, tk.button, 0, 0); err != nil {
				return err
			}
			sent++
			if sent == total {
				return syn.sess.FakeInputChecked(xproto.ButtonRelease, tk.button, 0, 0)
			}
			if err := syn.sess.FakeInput(xproto.ButtonRelease, tk.button, 0, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

//----------

// SendChar types one byte: it resolves the key sequence that produces
// the byte's keysym under the current layout and plays it out as
// press/release events, flushing once after the full sequence. A byte
// no key can produce is a no-op, not an error. A protocol failure
// mid-sequence can leave modifiers logically held on the receiving
// side; nothing is rolled back.
func (syn *Synth) SendChar(b byte) error {
	if err := syn.drainEvents(); err != nil {
		return err
	}
	seq, ok := syn.km.FindKeySequence(xkmap.KeysymForByte(b))
	if !ok {
		return nil
	}
	for _, kc := range seq.Mods {
		if err := syn.sess.FakeInput(xproto.KeyPress, byte(kc), 0, 0); err != nil {
			return err
		}
	}
	if err := syn.sess.FakeInput(xproto.KeyPress, byte(seq.Key), 0, 0); err != nil {
		return err
	}
	if err := syn.sess.FakeInput(xproto.KeyRelease, byte(seq.Key), 0, 0); err != nil {
		return err
	}
	for i := len(seq.Mods) - 1; i >= 0; i-- {
		if err := syn.sess.FakeInput(xproto.KeyRelease, byte(seq.Mods[i]), 0, 0); err != nil {
			return err
		}
	}
	return syn.sess.Flush()
}

// TypeString sends every rune of s that fits the single-byte range;
// larger runes are skipped.
func (syn *Synth) TypeString(s string) error {
	for _, ru := range s {
		if ru > 0xff {
			continue
		}
		if err := syn.SendChar(byte(ru)); err != nil {
			return err
		}
	}
	return nil
}

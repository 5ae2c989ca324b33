// Package xconn owns the X11 session: connection setup, the extension
// handshakes, keyboard table fetches, and XTEST fake-input submission.
package xconn

import (
	"os"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"
	"github.com/pkg/errors"

	"github.com/jmigpin/xsynth/xkmap"
)

// ErrNoKeyboard is reported when no device on the session identifies
// itself as a keyboard.
var ErrNoKeyboard = errors.New("xconn: no keyboard device")

type Conn struct {
	conn *xgb.Conn
	si   *xproto.SetupInfo
	root xproto.Window

	// major opcode of the input-device extension, from the presence
	// handshake; the raw requests below need it
	xiOpcode byte
}

// Connect dials the display (":0" syntax; empty means $DISPLAY) and
// negotiates the input-device and fake-input extensions, failing fast
// if either is missing.
func Connect(display string) (*Conn, error) {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrap(err, "x conn")
	}
	c := &Conn{conn: conn}
	c.si = xproto.Setup(conn)
	c.root = c.si.DefaultScreen(conn).Root

	if err := c.initExtensions(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

const xinputName = "XInputExtension"

func (c *Conn) initExtensions() error {
	// xgb ships no bindings for the input-device extension; the
	// presence check provides the major opcode for the raw requests
	reply, err := xproto.QueryExtension(c.conn, uint16(len(xinputName)), xinputName).Reply()
	if err != nil {
		return errors.Wrap(err, "xinput query")
	}
	if !reply.Present {
		return errors.Errorf("extension not present: %v", xinputName)
	}
	c.xiOpcode = reply.MajorOpcode

	if err := xtest.Init(c.conn); err != nil {
		return errors.Wrap(err, "xtest init")
	}
	if _, err := xtest.GetVersion(c.conn, 2, 2).Reply(); err != nil {
		return errors.Wrap(err, "xtest version")
	}
	return nil
}

func (c *Conn) Root() xproto.Window {
	return c.root
}

func (c *Conn) Close() {
	c.conn.Close()
}

//----------

// PollEvent returns the next queued event without blocking; (nil, nil)
// means the queue is empty. Queued protocol errors come back as the
// error value.
func (c *Conn) PollEvent() (xgb.Event, error) {
	ev, xerr := c.conn.PollForEvent()
	if xerr != nil {
		return nil, xerr
	}
	return ev, nil
}

// Flush pushes queued requests out to the server. xgb writes
// asynchronously; a sync round trip forces the queue.
func (c *Conn) Flush() error {
	c.conn.Sync()
	return nil
}

//----------

// FakeInput submits one synthetic event, unchecked. The event carries
// the current-time sentinel and the root window; the source window
// stays unset so receiving clients treat the input as genuine.
func (c *Conn) FakeInput(typ, detail byte, x, y int16) error {
	xtest.FakeInput(c.conn, typ, detail, xproto.TimeCurrentTime, c.root, x, y, 0)
	return nil
}

// FakeInputChecked submits one synthetic event and round-trips it, so
// a protocol rejection surfaces here.
func (c *Conn) FakeInputChecked(typ, detail byte, x, y int16) error {
	err := xtest.FakeInputChecked(c.conn, typ, detail, xproto.TimeCurrentTime, c.root, x, y, 0).Check()
	if err != nil {
		return errors.Wrap(err, "fake input")
	}
	return nil
}

//----------

// KeyboardTables fetches the keyboard and modifier tables for the
// first device flagged as a keyboard.
func (c *Conn) KeyboardTables() (*xkmap.Tables, error) {
	if _, err := c.keyboardDevice(); err != nil {
		return nil, err
	}
	count := byte(c.si.MaxKeycode - c.si.MinKeycode + 1)
	if count == 0 {
		return nil, errors.New("bad keycode count")
	}
	kreply, err := xproto.GetKeyboardMapping(c.conn, c.si.MinKeycode, count).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "keyboard mapping")
	}
	mreply, err := xproto.GetModifierMapping(c.conn).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "modifier mapping")
	}
	return &xkmap.Tables{
		MinKeycode: c.si.MinKeycode,
		MaxKeycode: c.si.MaxKeycode,
		Keyboard:   kreply,
		Modifiers:  mreply,
	}, nil
}

func (c *Conn) keyboardDevice() (byte, error) {
	devs, err := c.ListDevices()
	if err != nil {
		return 0, err
	}
	for _, d := range devs {
		if d.Keyboard {
			return d.ID, nil
		}
	}
	return 0, ErrNoKeyboard
}

//----------

// Device describes one entry of the session's input device list.
type Device struct {
	ID       byte
	Name     string
	Keyboard bool
}

// Input-device extension, version 1 wire protocol (XIproto.h). The
// request is built and the reply parsed by hand, the same way xgb's
// generated packages drive the connection.
const (
	xiListInputDevices = 2 // minor opcode

	deviceUseIsKeyboard = 1
)

// ListDevices issues ListInputDevices and decodes the reply.
func (c *Conn) ListDevices() ([]Device, error) {
	buf := make([]byte, 4)
	buf[0] = c.xiOpcode
	buf[1] = xiListInputDevices
	xgb.Put16(buf[2:], 1) // request length in 4-byte units

	cookie := c.conn.NewCookie(true, true)
	c.conn.NewRequest(buf, cookie)
	reply, err := cookie.Reply()
	if err != nil {
		return nil, errors.Wrap(err, "list input devices")
	}
	return parseDeviceList(reply)
}

// parseDeviceList decodes a ListInputDevices reply: a 32 byte header
// with the device count at byte 8, then 8 bytes per device (type atom,
// id, class count, use), then the class structs, then the names as
// counted strings.
func parseDeviceList(buf []byte) ([]Device, error) {
	if len(buf) < 32 {
		return nil, errors.Errorf("device reply too short: %v bytes", len(buf))
	}
	nd := int(buf[8])
	u := make([]Device, 0, nd)
	nclasses := make([]int, 0, nd)

	b := 32
	for i := 0; i < nd; i++ {
		if b+8 > len(buf) {
			return nil, errors.New("truncated device info")
		}
		u = append(u, Device{
			ID:       buf[b+4],
			Keyboard: buf[b+6] == deviceUseIsKeyboard,
		})
		nclasses = append(nclasses, int(buf[b+5]))
		b += 8
	}
	for _, n := range nclasses {
		for j := 0; j < n; j++ {
			if b+2 > len(buf) {
				return nil, errors.New("truncated class info")
			}
			l := int(buf[b+1]) // class struct length in bytes
			if l < 2 {
				return nil, errors.Errorf("bad class length: %v", l)
			}
			b += l
		}
	}
	for i := range u {
		if b >= len(buf) {
			return nil, errors.New("truncated device names")
		}
		n := int(buf[b])
		if b+1+n > len(buf) {
			return nil, errors.New("truncated device names")
		}
		u[i].Name = string(buf[b+1 : b+1+n])
		b += 1 + n
	}
	return u, nil
}

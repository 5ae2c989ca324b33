package bridge

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInjector struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeInjector) record(format string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeInjector) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeInjector) MovePointer(x, y int16) error {
	return f.record("move %v %v", x, y)
}

func (f *fakeInjector) MovePointerRel(dx, dy int16) error {
	return f.record("moverel %v %v", dx, dy)
}

func (f *fakeInjector) Click(x, y int16, button uint8, press bool) error {
	return f.record("click %v %v %v %v", x, y, button, press)
}

func (f *fakeInjector) Scroll(dx, dy int32) error {
	return f.record("scroll %v %v", dx, dy)
}

func (f *fakeInjector) SendChar(b byte) error {
	return f.record("char %v", b)
}

func (f *fakeInjector) TypeString(s string) error {
	return f.record("text %v", s)
}

//----------

func TestApply(t *testing.T) {
	inj := &fakeInjector{}
	s := NewServer(inj, 1)

	press := true
	events := []Event{
		{Type: "move", X: 10, Y: 20},
		{Type: "moverel", X: -3, Y: 4},
		{Type: "click", X: 1, Y: 2, Button: 3},
		{Type: "click", X: 1, Y: 2, Press: &press},
		{Type: "scroll", DY: -2},
		{Type: "char", Char: 'a'},
		{Type: "text", Text: "hi"},
		{Type: "bogus"},
	}
	for i := range events {
		require.NoError(t, s.apply(&events[i]))
	}

	assert.Equal(t, []string{
		"move 10 20",
		"moverel -3 4",
		"click 1 2 3 true",
		"click 1 2 3 false",
		"click 1 2 1 true", // default button fills in
		"scroll 0 -2",
		"char 97",
		"text hi",
	}, inj.snapshot())
}

func TestHandleWS(t *testing.T) {
	inj := &fakeInjector{}
	s := NewServer(inj, 1)

	srv := httptest.NewServer(http.HandlerFunc(s.handleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Event{Type: "move", X: 5, Y: 6}))
	require.NoError(t, conn.WriteJSON(Event{Type: "text", Text: "ok"}))

	require.Eventually(t, func() bool {
		return len(inj.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"move 5 6", "text ok"}, inj.snapshot())
}

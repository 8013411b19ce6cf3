package spectate

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

// Viewer is a client connection to a hub.
type Viewer struct {
	conn *websocket.Conn
	id   string
}

// Dial connects to a hub. url may be the server root or the /ws endpoint,
// with an http, https, ws or wss scheme. The hello frame is read before
// Dial returns.
func Dial(ctx context.Context, url string) (*Viewer, Frame, error) {
	url = wsURL(url)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, Frame{}, fmt.Errorf("spectate: dial %s: %w", url, err)
	}

	v := &Viewer{conn: conn}
	hello, err := v.Next()
	if err != nil {
		conn.Close()
		return nil, Frame{}, err
	}
	if hello.Type != FrameHello {
		conn.Close()
		return nil, Frame{}, fmt.Errorf("spectate: expected hello, got %q", hello.Type)
	}
	v.id = hello.ClientID
	return v, hello, nil
}

func wsURL(url string) string {
	switch {
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://"):
		url = "ws://" + url
	}
	if !strings.HasSuffix(url, "/ws") {
		url = strings.TrimSuffix(url, "/") + "/ws"
	}
	return url
}

// ID returns the id the hub assigned to this viewer.
func (v *Viewer) ID() string {
	return v.id
}

// Next blocks for the next frame.
func (v *Viewer) Next() (Frame, error) {
	var f Frame
	if err := v.conn.ReadJSON(&f); err != nil {
		return Frame{}, fmt.Errorf("spectate: read: %w", err)
	}
	return f, nil
}

// Close closes the connection.
func (v *Viewer) Close() error {
	_ = v.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return v.conn.Close()
}

package connection

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"raidcourt/broadcast"
	"raidcourt/engine"
	"raidcourt/room"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *room.Manager) {
	t.Helper()
	rooms := room.NewManager(room.ManagerOptions{MaxRooms: 10})
	logger := zap.NewNop()
	upgrader := NewUpgrader("*")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleConnections(w, r, rooms, upgrader, logger)
	}))
	t.Cleanup(func() {
		srv.Close()
		rooms.Shutdown()
	})
	return srv, rooms
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	b, err := broadcast.Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil reads frames until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) broadcast.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		env, err := broadcast.DecodeEnvelope(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Type == typ {
			return env
		}
	}
}

func errorMessage(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	env := readUntil(t, conn, broadcast.MsgError)
	msg, err := broadcast.DecodePayload[broadcast.ErrorMessage](env)
	if err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return msg.Message
}

func TestPingPong(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, broadcast.MsgPing, nil)
	env := readUntil(t, conn, broadcast.MsgPong)
	pong, _ := broadcast.DecodePayload[broadcast.Pong](env)
	if pong.T <= 0 {
		t.Fatalf("pong = %+v", pong)
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, broadcast.MsgJoinRoom, broadcast.JoinRoom{RoomID: "nope", Username: "ann"})
	if got := errorMessage(t, conn); got != room.ErrRoomNotFound.Error() {
		t.Fatalf("error = %q", got)
	}
}

func TestIntentsBeforeJoin(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	for _, typ := range []string{broadcast.MsgPlayerReady, broadcast.MsgRestartMatch} {
		send(t, conn, typ, nil)
		if got := errorMessage(t, conn); got != engine.ErrUnknownPlayer.Error() {
			t.Fatalf("%s: error = %q", typ, got)
		}
	}

	send(t, conn, "teleport", nil)
	if got := errorMessage(t, conn); got != "unknown message type" {
		t.Fatalf("error = %q", got)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := errorMessage(t, conn); got != "malformed message" {
		t.Fatalf("error = %q", got)
	}
}

func TestJoinReadyAndPlay(t *testing.T) {
	srv, rooms := newTestServer(t)
	r, err := rooms.Create("arena", 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	a := dial(t, srv)
	send(t, a, broadcast.MsgJoinRoom, broadcast.JoinRoom{RoomID: r.ID(), Username: "ann"})
	env := readUntil(t, a, broadcast.MsgJoinedRoom)
	joined, err := broadcast.DecodePayload[broadcast.JoinedRoom](env)
	if err != nil {
		t.Fatalf("decode joined_room: %v", err)
	}
	if joined.RoomID != r.ID() || joined.PlayerID == "" || joined.Team != engine.TeamA || joined.PlayersPerTeam != 1 {
		t.Fatalf("joined_room = %+v", joined)
	}
	if joined.Config.Court.W != 800 || joined.Config.Court.H != 600 || joined.Config.SafeZone != 60 {
		t.Fatalf("config = %+v", joined.Config)
	}

	send(t, a, broadcast.MsgJoinRoom, broadcast.JoinRoom{RoomID: r.ID(), Username: "ann"})
	if got := errorMessage(t, a); got != "already in a room" {
		t.Fatalf("error = %q", got)
	}

	b := dial(t, srv)
	send(t, b, broadcast.MsgJoinRoom, broadcast.JoinRoom{RoomID: r.ID(), Username: "bob"})
	readUntil(t, b, broadcast.MsgJoinedRoom)

	send(t, a, broadcast.MsgInput, map[string]any{"dir": map[string]int{"x": 2, "y": 0}})
	if got := errorMessage(t, a); !strings.Contains(got, engine.ErrInvalidDirection.Error()) {
		t.Fatalf("error = %q", got)
	}

	send(t, a, broadcast.MsgPlayerReady, nil)
	send(t, b, broadcast.MsgPlayerReady, nil)
	readUntil(t, a, engine.EventMatchStarted)
	env = readUntil(t, b, engine.EventRaidStart)
	raid, _ := broadcast.DecodePayload[engine.RaidStarted](env)
	if raid.Raider != joined.PlayerID {
		t.Fatalf("raider = %s, want %s", raid.Raider, joined.PlayerID)
	}
	readUntil(t, a, engine.EventSnapshot)

	send(t, a, broadcast.MsgRestartMatch, nil)
	if got := errorMessage(t, a); got != engine.ErrMatchNotFinished.Error() {
		t.Fatalf("error = %q", got)
	}
}

func TestDisconnectRemovesEmptyRoom(t *testing.T) {
	srv, rooms := newTestServer(t)
	r, _ := rooms.Create("arena", 2)

	a := dial(t, srv)
	send(t, a, broadcast.MsgJoinRoom, broadcast.JoinRoom{RoomID: r.ID(), Username: "ann"})
	readUntil(t, a, broadcast.MsgJoinedRoom)

	a.Close()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := rooms.Lookup(r.ID()); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room still registered after its only member disconnected")
}

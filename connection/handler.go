package connection

import (
	"errors"
	"net/http"
	"time"

	"raidcourt/broadcast"
	"raidcourt/engine"
	"raidcourt/room"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// NewUpgrader returns the upgrader for /ws. allowOrigin "*" accepts any origin.
func NewUpgrader(allowOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowOrigin == "" || allowOrigin == "*" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowOrigin
		},
	}
}

// HandleConnections はWebSocket接続へのアップグレードを行い、接続が閉じるまでブロックします。
func HandleConnections(w http.ResponseWriter, r *http.Request, rooms *room.Manager, upgrader websocket.Upgrader, logger *zap.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade が失敗時のレスポンスを書き込み済み
		logger.Error("Error upgrading WebSocket", zap.Error(err))
		return
	}

	client := newClient(uuid.New().String(), conn, logger)
	logger.Info("New client added", zap.String("playerID", client.ID), zap.String("remote", r.RemoteAddr))

	d := &dispatcher{rooms: rooms, log: logger, now: time.Now}
	go client.writePump()
	client.readPump(d)
}

type dispatcher struct {
	rooms *room.Manager
	log   *zap.Logger
	now   func() time.Time
}

// handle はメッセージタイプに基づいて適切なアクションを実行する
func (d *dispatcher) handle(c *Client, message []byte) {
	env, err := broadcast.DecodeEnvelope(message)
	if err != nil {
		d.log.Debug("Error decoding message", zap.String("playerID", c.ID), zap.Error(err))
		d.reply(c, broadcast.MsgError, broadcast.ErrorMessage{Message: "malformed message"})
		return
	}

	switch env.Type {
	case broadcast.MsgJoinRoom:
		err = d.joinRoom(c, env)
	case broadcast.MsgPlayerReady:
		err = d.inRoom(c, func(r *room.Room) error { return r.Ready(c.ID) })
	case broadcast.MsgInput:
		var in broadcast.Input
		if in, err = broadcast.DecodePayload[broadcast.Input](env); err == nil {
			err = d.inRoom(c, func(r *room.Room) error { return r.Input(c.ID, in.Dir.X, in.Dir.Y) })
		}
	case broadcast.MsgPing:
		d.reply(c, broadcast.MsgPong, broadcast.Pong{T: d.now().UnixMilli()})
	case broadcast.MsgRestartMatch:
		err = d.inRoom(c, func(r *room.Room) error { return r.Restart(c.ID) })
	default:
		d.log.Debug("Received unknown message type", zap.String("playerID", c.ID), zap.String("type", env.Type))
		err = errors.New("unknown message type")
	}

	if err != nil {
		d.reply(c, broadcast.MsgError, broadcast.ErrorMessage{Message: err.Error()})
	}
}

func (d *dispatcher) joinRoom(c *Client, env broadcast.Envelope) error {
	if c.room != nil {
		return errors.New("already in a room")
	}
	req, err := broadcast.DecodePayload[broadcast.JoinRoom](env)
	if err != nil {
		return err
	}
	r, err := d.rooms.Get(req.RoomID)
	if err != nil {
		return err
	}

	p, err := r.Join(c.ID, req.Username, c)
	if err != nil {
		return err
	}
	c.room = r

	d.reply(c, broadcast.MsgJoinedRoom, broadcast.JoinedRoom{
		RoomID:         r.ID(),
		PlayerID:       c.ID,
		Team:           p.Team,
		PlayersPerTeam: r.Summary().PlayersPerTeam,
		Config:         broadcast.CourtConfigFor(r.Settings()),
	})
	d.log.Info("Player joined room", zap.String("roomID", r.ID()), zap.String("playerID", c.ID), zap.String("username", p.Name))
	return nil
}

func (d *dispatcher) inRoom(c *Client, f func(r *room.Room) error) error {
	if c.room == nil {
		return engine.ErrUnknownPlayer
	}
	return f(c.room)
}

func (d *dispatcher) reply(c *Client, t string, payload any) {
	b, err := broadcast.Encode(t, payload)
	if err != nil {
		d.log.Error("Failed to encode reply", zap.String("type", t), zap.Error(err))
		return
	}
	_ = c.Send(b)
}

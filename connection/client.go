package connection

import (
	"errors"
	"sync"
	"time"

	"raidcourt/room"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingPeriod     = 10 * time.Second // 10秒ごとにPingを送信
	pongWait       = 60 * time.Second // 60秒の読み取りデッドライン
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

var errSlowClient = errors.New("send buffer full")

// Client はWebSocket接続1本分の状態です。IDはそのままプレイヤーIDになります。
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
	log  *zap.Logger

	// room は read pump だけが触る
	room *room.Room
}

func newClient(id string, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  logger,
	}
}

// Send queues a message without blocking. A client that cannot keep up is
// disconnected.
func (c *Client) Send(b []byte) error {
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		c.log.Warn("Client too slow, closing", zap.String("playerID", c.ID))
		c.close()
		return errSlowClient
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// writePump は送信キューの内容とPingを書き込むゴルーチン
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("Write failed", zap.String("playerID", c.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Error sending ping", zap.String("playerID", c.ID), zap.Error(err))
				return
			}
		}
	}
}

// readPump はクライアントごとにメッセージを読み取り、切断時にルームから退出させる
func (c *Client) readPump(d *dispatcher) {
	defer func() {
		if c.room != nil {
			if err := c.room.Leave(c.ID); err != nil && !errors.Is(err, room.ErrNotInRoom) {
				c.log.Error("Leave on disconnect failed", zap.String("playerID", c.ID), zap.Error(err))
			}
		}
		c.close()
		c.log.Info("Client removed", zap.String("playerID", c.ID))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error("WebSocket error", zap.String("playerID", c.ID), zap.Error(err))
			}
			return
		}
		d.handle(c, message)
	}
}

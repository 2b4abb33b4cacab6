package network

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cryptotycoon/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Command is an incoming player command from the frontend. Fields beyond
// Type are read per command kind; unknown fields are ignored.
type Command struct {
	Type    string  `json:"type"`
	CoinID  string  `json:"coin_id,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
	RigID   int     `json:"rig_id,omitempty"`
	Slot    int     `json:"slot,omitempty"`
	Speed   int     `json:"speed,omitempty"`
	Confirm bool    `json:"confirm,omitempty"`
}

// Command types understood by the server.
const (
	CmdSelectCoin    = "select_coin"
	CmdBuy           = "buy"
	CmdSell          = "sell"
	CmdSellAll       = "sell_all"
	CmdPromote       = "promote"
	CmdBribe         = "bribe"
	CmdReadNews      = "read_news"
	CmdRequestAdvice = "request_advice"
	CmdBuyRig        = "buy_rig"
	CmdBuyGPU        = "buy_gpu"
	CmdSetMiningCoin = "set_mining_coin"
	CmdSetTimeSpeed  = "set_time_speed"
	CmdToggleSandbox = "toggle_sandbox"
	CmdFullReset     = "full_reset"
	CmdNewGame       = "new_game"
	CmdLoadGame      = "load_game"
	CmdSaveGame      = "save_game"
	CmdDeleteSlot    = "delete_slot"
	CmdQuit          = "quit"
)

// Client holds one active WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new WebSocket client.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps commands from the websocket connection to the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
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
				c.hub.logger.Warn("websocket read failed", zap.Error(err))
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Error("failed to parse command", zap.Error(err))
			continue
		}
		c.hub.handler(cmd)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

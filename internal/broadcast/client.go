package broadcast

import (
    "errors"
    "sync"
    "time"

    "github.com/gorilla/websocket"
)

// sendBuffer is the number of events a client may fall behind before
// it is considered dead and dropped.
const sendBuffer = 16

// writeWait bounds how long a single WebSocket write may take.
const writeWait = 10 * time.Second

// ErrSlowClient is returned by Send when a client's buffer is full.
var ErrSlowClient = errors.New("subscriber send buffer full")

// WSClient adapts a gorilla WebSocket connection to the Subscriber
// interface.  Events are handed to a buffered channel and written by a
// single pump goroutine, so Send never blocks on the network.
type WSClient struct {
    conn      *websocket.Conn
    send      chan Event
    done      chan struct{}
    closeOnce sync.Once
}

// NewWSClient wraps the connection and starts its write pump.
func NewWSClient(conn *websocket.Conn) *WSClient {
    c := &WSClient{
        conn: conn,
        send: make(chan Event, sendBuffer),
        done: make(chan struct{}),
    }
    go c.writePump()
    return c
}

// Send queues an event for delivery.  It fails fast when the buffer is
// full or the client is already closed; the hub reacts by dropping the
// subscriber.
func (c *WSClient) Send(ev Event) error {
    select {
    case <-c.done:
        return errors.New("subscriber closed")
    default:
    }
    select {
    case c.send <- ev:
        return nil
    default:
        return ErrSlowClient
    }
}

// Close shuts the pump down and closes the underlying connection.
// The hub, the write pump and the connection handler all race to call
// it on a dying client, so the close itself must be exactly-once.
func (c *WSClient) Close() {
    c.closeOnce.Do(func() { close(c.done) })
}

func (c *WSClient) writePump() {
    defer c.conn.Close()
    for {
        select {
        case ev := <-c.send:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := c.conn.WriteJSON(ev); err != nil {
                c.Close()
                return
            }
        case <-c.done:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            _ = c.conn.WriteMessage(websocket.CloseMessage,
                websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
            return
        }
    }
}

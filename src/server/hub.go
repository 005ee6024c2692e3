package server

import (
	"encoding/json"
	"net/http"

	"market-breadth/src/analysis"
	"market-breadth/src/models"
	"market-breadth/src/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub
// -----------------------------------------------------------------------------

// directMessage is a reply addressed to a single client.
type directMessage struct {
	client  *Client
	payload *models.MLatestData
}

// runHub owns the client set and every send channel. Slow clients are dropped so a stalled
// consumer never blocks a broadcast.
func (s *APIServer) runHub() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int32(len(s.clients)))
			client.send <- s.initialPayload()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.connections.Store(int32(len(s.clients)))
			}

		case msg := <-s.direct:
			if _, ok := s.clients[msg.client]; !ok {
				continue
			}
			select {
			case msg.client.send <- msg.payload:
			default:
				delete(s.clients, msg.client)
				close(msg.client.send)
				s.connections.Store(int32(len(s.clients)))
				s.Logger.Warning("Dropped slow WebSocket client")
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					delete(s.clients, client)
					close(client.send)
					s.Logger.Warning("Dropped slow WebSocket client")
				}
			}
			s.connections.Store(int32(len(s.clients)))

		case <-s.quit:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.connections.Store(0)
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) initialPayload() *models.MLatestData {
	msg := &models.MLatestData{
		Type:      models.PayloadInitial,
		Series:    s.Live.All(),
		Timestamp: s.Now().Unix(),
	}
	if latest, ok := s.Live.Latest(); ok {
		msg.Latest = &latest
	}
	return msg
}

// -----------------------------------------------------------------------------

// Broadcast queues an UPDATE for every client. When the queue is full the
// update is dropped.
func (s *APIServer) Broadcast(snap models.MBreadthSnapshot) {
	msg := &models.MLatestData{
		Type:      models.PayloadUpdate,
		Latest:    &snap,
		Timestamp: snap.CapturedAt.Unix(),
	}
	select {
	case s.broadcast <- msg:
	default:
		s.Logger.Warning("Broadcast queue full, update dropped")
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan *models.MLatestData, 256),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------

// HandleClientMessage answers a subscribe command with a HISTORY payload,
// delivered through the hub. Replies to clients already gone are discarded.
func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}
	if cmd.Command != "subscribe" {
		return
	}

	response, err := s.historyPayload(cmd)
	if err != nil {
		s.Logger.Warning("Subscribe %q failed: %v", cmd.View, err)
		return
	}

	select {
	case s.direct <- directMessage{client: client, payload: response}:
	case <-s.quit:
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) historyPayload(cmd models.MSubscribeCommand) (*models.MLatestData, error) {
	start, end, err := storage.ResolveView(cmd.View, cmd.Date, cmd.From, cmd.To, s.Now())
	if err != nil {
		return nil, err
	}
	records, err := s.Store.QueryRange(start, end)
	if err != nil {
		return nil, err
	}
	summary := analysis.Summarize(records)

	view := cmd.View
	if view == "" {
		view = "today"
	}
	return &models.MLatestData{
		Type:      models.PayloadHistory,
		Series:    records,
		Summary:   &summary,
		View:      view,
		Timestamp: s.Now().Unix(),
	}, nil
}

package collab

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/inamate/vecdraw/internal/document"
	"github.com/inamate/vecdraw/internal/typeid"
)

// DocLoader loads the latest document of a project.
type DocLoader func(projectID string) (*document.InDocument, error)

// DocSaver persists a document snapshot of a project.
type DocSaver func(projectID string, doc *document.InDocument) error

type Room struct {
	projectID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	state     *DocumentState // nil when the document failed to load
}

func NewRoom(projectID string) *Room {
	return &Room{
		projectID: projectID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // projectID -> room
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once

	load DocLoader
	save DocSaver
}

func NewHub(load DocLoader, save DocSaver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		load:       load,
		save:       save,
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			h.saveAll()
			return
		}
	}
}

// Stop ends Run after saving every room with unsaved changes.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

// Unregister removes a client. It does not block once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ProjectID]
	if !ok {
		room = NewRoom(client.ProjectID)
		h.rooms[client.ProjectID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Load outside the lock; only the hub goroutine creates room state.
	if room.state == nil {
		doc, err := h.load(client.ProjectID)
		if err != nil {
			slog.Error("load document", "project", client.ProjectID, "error", err)
		} else {
			h.mu.Lock()
			room.state = NewDocumentState(doc)
			h.mu.Unlock()
		}
	}

	welcome, _ := json.Marshal(WelcomePayload{ClientID: client.ClientID, UserID: client.UserID})
	client.Send(&Message{Type: TypeWelcome, ProjectID: client.ProjectID, Payload: welcome})
	h.sendDocSync(client)

	// Send current presence state to new client
	stateMsg := room.presence.StateMessage()
	if stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		ClientID:    client.ClientID,
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:     TypePresenceJoin,
		UserID:   client.UserID,
		ClientID: client.ClientID,
		Payload:  joinPayload,
	}
	h.broadcastToRoom(client.ProjectID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ProjectID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.ClientID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.ProjectID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(room)
	}

	// Broadcast leave to remaining clients
	leavePayload, _ := json.Marshal(PresenceLeavePayload{
		ClientID: client.ClientID,
		UserID:   client.UserID,
	})
	leaveMsg := &Message{
		Type:     TypePresenceLeave,
		UserID:   client.UserID,
		ClientID: client.ClientID,
		Payload:  leavePayload,
	}
	h.broadcastToRoom(client.ProjectID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "project", client.ProjectID)
}

// saveRoom persists the room's document if it has unsaved changes.
func (h *Hub) saveRoom(room *Room) {
	if room.state == nil || h.save == nil {
		return
	}
	doc, dirty, err := room.state.TakeDirty()
	if err != nil {
		slog.Error("snapshot document", "project", room.projectID, "error", err)
		return
	}
	if !dirty {
		return
	}
	if err := h.save(room.projectID, doc); err != nil {
		slog.Error("save document", "project", room.projectID, "error", err)
		room.state.MarkDirty()
		return
	}
	slog.Info("document saved", "project", room.projectID)
}

func (h *Hub) saveAll() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		h.saveRoom(r)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	case TypeDocSync:
		h.sendDocSync(sender)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) roomState(projectID string) *DocumentState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[projectID]; ok {
		return room.state
	}
	return nil
}

func (h *Hub) sendDocSync(client *Client) {
	state := h.roomState(client.ProjectID)
	if state == nil {
		sendError(client, "document unavailable")
		return
	}
	doc, seq, err := state.Snapshot()
	if err != nil {
		slog.Error("snapshot document", "project", client.ProjectID, "error", err)
		sendError(client, "document unavailable")
		return
	}
	payload, _ := json.Marshal(DocSyncPayload{Document: doc, ServerSeq: seq})
	client.Send(&Message{Type: TypeDocSync, ProjectID: client.ProjectID, Seq: seq, Payload: payload})
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid op payload", "error", err, "user", sender.UserID)
		sendError(sender, "invalid operation payload")
		return
	}
	op := submit.Operation
	if op.ID == "" {
		op.ID = typeid.NewOpID()
	}

	nack := func(reason string) {
		payload, _ := json.Marshal(OperationNackPayload{OperationID: op.ID, Reason: reason})
		sender.Send(&Message{Type: TypeOpNack, Payload: payload})
	}

	state := h.roomState(sender.ProjectID)
	if state == nil {
		nack("document unavailable")
		return
	}

	seq, err := state.ApplyOperation(op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.Type, "object", op.ObjectID, "error", err)
		nack(err.Error())
		return
	}

	now := GetServerTimestamp()
	op.Timestamp = now

	ackPayload, _ := json.Marshal(OperationAckPayload{OperationID: op.ID, ServerSeq: seq, ServerTimestamp: now})
	sender.Send(&Message{Type: TypeOpAck, Seq: seq, Payload: ackPayload})

	bcPayload, _ := json.Marshal(OperationBroadcastPayload{Operation: op, UserID: sender.UserID, ServerSeq: seq})
	h.broadcastToRoom(sender.ProjectID, &Message{
		Type:    TypeOpBroadcast,
		UserID:  sender.UserID,
		Seq:     seq,
		Payload: bcPayload,
	}, sender.ClientID)

	if op.Type == OpObjectDelete {
		h.prunePresence(sender.ProjectID, state)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.UserID = sender.UserID
	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.ProjectID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.ClientID, &presence)
	h.broadcastPresence(room, sender.ClientID)
}

// broadcastPresence sends the stored presence of clientID to the rest of
// the room.
func (h *Hub) broadcastPresence(room *Room, clientID string) {
	p, ok := room.presence.get(clientID)
	if !ok {
		return
	}
	outPayload, _ := json.Marshal(p)
	h.broadcastToRoom(room.projectID, &Message{
		Type:     TypePresenceUpdate,
		UserID:   p.UserID,
		ClientID: clientID,
		Payload:  outPayload,
	}, clientID)
}

// prunePresence clears references to objects a delete removed and tells
// the room about every presence that changed.
func (h *Hub) prunePresence(projectID string, state *DocumentState) {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	for _, clientID := range room.presence.Prune(state.HasObject) {
		h.broadcastPresence(room, clientID)
	}
}

func (h *Hub) broadcastToRoom(projectID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

func sendError(c *Client, message string) {
	payload, _ := json.Marshal(ErrorPayload{Message: message})
	c.Send(&Message{Type: TypeError, Payload: payload})
}

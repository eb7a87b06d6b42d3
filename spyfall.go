// Spyfall
//
// One player creates a room and receives a four character code. Everyone
// else joins with that code and a display name. When the owner starts a
// round, every player but one is privately told the location and their
// occupation there; the remaining player is the spy and only learns that
// they are the spy. The owner ends the round, which reveals the location
// and the spy to the whole room.
//
// Routes:
// - $prefix/create?name=         → JSON {code} for a new room owned by name
// - $prefix/join?name=&code=     → JSON {code} after joining
// - $prefix/room/:code           → HTML client
// - $prefix/room/:code/ws?name=  → WebSocket for that player
// - $prefix/room/:code/qr        → PNG QR code for the room URL
//
// Each websocket connection gets a fresh handle. Roster updates and the end
// of round reveal are broadcast to every connection in the room; roles go
// only to the connection of the player they belong to.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/spyfall/games/spyfall"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "start", "end", "duration", "leave"
	Duration *int   `json:"duration,omitempty"` // start / duration, in seconds
}

// SimpleMessage is for generic notifications ("error", "left", etc.)
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CodeResponse answers /create and /join.
type CodeResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

type Client struct {
	conn   *websocket.Conn
	send   chan any
	handle spyfall.Handle
	name   string
}

type command struct {
	client *Client
	msg    ClientMessage
}

// Hub fans messages out to every connection of one room.
type Hub struct {
	code    string
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	commands chan command
	done     chan struct{}

	mu     sync.Mutex
	closed bool
}

func newHub(code string) *Hub {
	return &Hub{
		code:     code,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		commands: make(chan command),
		done:     make(chan struct{}),
	}
}

func (h *Hub) run(t *Transport) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

			t.track(c, h)

			if _, err := t.svc.Attach(c.name, h.code, c.handle); err != nil {
				h.trySend(c, SimpleMessage{Type: "error", Message: spyfall.UserMessage(err)})
				h.drop(c)
				t.untrack(c)
			}

		case c := <-h.unreg:
			h.drop(c)
			t.untrack(c)
			t.svc.Detach(h.code, c.handle)

		case cmd := <-h.commands:
			t.handleCommand(h, cmd)

		case <-h.done:
			return
		}
	}
}

// trySend queues msg for c without blocking. A client whose queue is full
// is dropped.
func (h *Hub) trySend(c *Client, msg any) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.trySendLocked(c, msg)
}

func (h *Hub) trySendLocked(c *Client, msg any) bool {
	if !h.clients[c] {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		delete(h.clients, c)
		close(c.send)
		return false
	}
}

func (h *Hub) broadcast(msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.trySendLocked(c, msg)
	}
}

// drop removes c and closes its queue, which ends its write pump.
func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// closeAll disconnects all clients of this hub and stops its loop.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}

	if !h.closed {
		h.closed = true
		close(h.done)
	}
}

// Transport owns the websocket hubs and implements spyfall.Notifier on top
// of them.
type Transport struct {
	cfg *Config
	svc *spyfall.Service

	mu      sync.Mutex
	hubs    map[string]*Hub
	handles map[spyfall.Handle]*Client
	owners  map[*Client]*Hub
}

func newTransport(cfg *Config) *Transport {
	t := &Transport{
		cfg:     cfg,
		hubs:    make(map[string]*Hub),
		handles: make(map[spyfall.Handle]*Client),
		owners:  make(map[*Client]*Hub),
	}

	t.svc = spyfall.NewService(spyfall.NewRegistry(),
		spyfall.WithNotifier(t),
		spyfall.WithLogger(cfg.log.With().Str("component", "rooms").Logger()),
		spyfall.WithMaxNameLength(cfg.maxNameLength),
		spyfall.WithRoomOptions(spyfall.WithDefaultDuration(cfg.roundSeconds())),
	)

	return t
}

func (t *Transport) getHub(code string) *Hub {
	t.mu.Lock()
	defer t.mu.Unlock()

	if hub, ok := t.hubs[code]; ok {
		return hub
	}

	hub := newHub(code)
	t.hubs[code] = hub
	go hub.run(t)
	return hub
}

func (t *Transport) track(c *Client, h *Hub) {
	t.mu.Lock()
	t.handles[c.handle] = c
	t.owners[c] = h
	t.mu.Unlock()
}

func (t *Transport) untrack(c *Client) {
	t.mu.Lock()
	delete(t.handles, c.handle)
	delete(t.owners, c)
	t.mu.Unlock()
}

// Broadcast implements spyfall.Notifier.
func (t *Transport) Broadcast(code string, msg any) {
	t.mu.Lock()
	hub, ok := t.hubs[code]
	t.mu.Unlock()

	if ok {
		hub.broadcast(msg)
	}
}

// Send implements spyfall.Notifier.
func (t *Transport) Send(h spyfall.Handle, msg any) error {
	t.mu.Lock()
	c, ok := t.handles[h]
	hub := t.owners[c]
	t.mu.Unlock()

	if !ok || hub == nil {
		return spyfall.ErrNotDeliverable
	}
	if !hub.trySend(c, msg) {
		return errors.New("connection send queue full or closed")
	}
	return nil
}

func (t *Transport) handleCommand(h *Hub, cmd command) {
	c := cmd.client
	msg := cmd.msg

	var err error

	switch msg.Type {
	case "start":
		_, err = t.svc.StartRound(c.name, h.code, msg.Duration)
	case "end":
		_, err = t.svc.EndRound(c.name, h.code)
	case "duration":
		if msg.Duration == nil {
			err = spyfall.ErrInvalidDuration
			break
		}
		err = t.svc.SetRoundDuration(c.name, h.code, *msg.Duration)
	case "leave":
		if err = t.svc.Leave(c.name, h.code); err == nil {
			h.trySend(c, SimpleMessage{Type: "left", Message: "You have left the room."})
			h.drop(c)
			t.untrack(c)
		}
	default:
		// ignore unknown types
	}

	if err != nil {
		t.cfg.log.Info().Err(err).Str("code", h.code).Str("player", c.name).Str("command", msg.Type).Msg("command rejected")
		h.trySend(c, SimpleMessage{Type: "error", Message: spyfall.UserMessage(err)})
	}
}

// reap removes idle rooms until ctx is cancelled.
func (t *Transport) reap(ctx context.Context) {
	idle := t.cfg.sessionTimeout
	if idle <= 0 {
		return
	}

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, code := range t.svc.Reap(time.Now().Add(-idle)) {
				t.closeHub(code)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (t *Transport) closeHub(code string) {
	t.mu.Lock()
	hub, ok := t.hubs[code]
	delete(t.hubs, code)
	t.mu.Unlock()

	if ok {
		hub.closeAll()
	}
}

func (t *Transport) closeAll() {
	t.mu.Lock()
	hubs := make([]*Hub, 0, len(t.hubs))
	for code, hub := range t.hubs {
		hubs = append(hubs, hub)
		delete(t.hubs, code)
	}
	t.mu.Unlock()

	for _, hub := range hubs {
		hub.closeAll()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}

func serveCreateRoom(cfg *Config, t *Transport, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		securityHeaders(cfg, w)

		code, err := t.svc.CreateRoom(r.URL.Query().Get("name"))
		if err != nil {
			if err := writeJSON(w, statusFor(err), CodeResponse{Error: spyfall.UserMessage(err)}); err != nil {
				errs <- err
			}
			return
		}

		cfg.log.Info().Str("code", code).Str("ip", realIP(r)).Msg("created room")

		if err := writeJSON(w, http.StatusOK, CodeResponse{Code: code}); err != nil {
			errs <- err
		}
	}
}

func serveJoinRoom(cfg *Config, t *Transport, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		securityHeaders(cfg, w)

		q := r.URL.Query()

		code, err := t.svc.JoinRoom(q.Get("name"), q.Get("code"))
		if err != nil {
			if err := writeJSON(w, statusFor(err), CodeResponse{Error: spyfall.UserMessage(err)}); err != nil {
				errs <- err
			}
			return
		}

		if err := writeJSON(w, http.StatusOK, CodeResponse{Code: code}); err != nil {
			errs <- err
		}
	}
}

func serveRoomPage(cfg *Config, t *Transport, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, err := t.svc.Room(ps.ByName("code"))
		if err != nil {
			if _, err := writeHTML(cfg, w, statusFor(err), newPage(cfg, "Room not found", spyfall.UserMessage(err))); err != nil {
				errs <- err
			}
			return
		}

		if _, err := writeHTML(cfg, w, http.StatusOK, roomPage(cfg, room.Code())); err != nil {
			errs <- err
		}
	}
}

// serveWS upgrades a player's connection and attaches it to their room.
func serveWS(cfg *Config, t *Transport) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, err := t.svc.Room(ps.ByName("code"))
		if err != nil {
			http.Error(w, spyfall.UserMessage(err), statusFor(err))
			return
		}

		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if _, ok := room.FindPlayer(name); !ok {
			http.Error(w, spyfall.UserMessage(spyfall.ErrPlayerNotFound), http.StatusForbidden)
			return
		}

		hub := t.getHub(room.Code())

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.log.Warn().Err(err).Str("ip", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			conn:   conn,
			send:   make(chan any, 16),
			handle: spyfall.Handle(uuid.NewString()),
			name:   name,
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.commands <- command{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// qrHandler generates a PNG QR code for the room page URL.
func qrHandler(cfg *Config, t *Transport) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, err := t.svc.Room(ps.ByName("code"))
		if err != nil {
			http.Error(w, spyfall.UserMessage(err), statusFor(err))
			return
		}

		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/room/" + room.Code()

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

// registerSpyfallGame sets up the room routes and returns the transport
// that owns them.
func registerSpyfallGame(cfg *Config, mux *httprouter.Router, errs chan<- error) *Transport {
	t := newTransport(cfg)

	mux.GET(cfg.prefix+"/create", serveCreateRoom(cfg, t, errs))
	mux.GET(cfg.prefix+"/join", serveJoinRoom(cfg, t, errs))

	mux.GET(cfg.prefix+"/room/:code", serveRoomPage(cfg, t, errs))
	mux.GET(cfg.prefix+"/room/:code/ws", serveWS(cfg, t))
	mux.GET(cfg.prefix+"/room/:code/qr", qrHandler(cfg, t))

	return t
}

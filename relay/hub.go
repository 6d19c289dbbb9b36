package relay

import (
	"context"
	"errors"
	"log"

	"arcade-match-system/engine"
	"arcade-match-system/models"
	"arcade-match-system/services"

	"github.com/gofiber/contrib/websocket"
)

// Lifecycle is the slice of the match service the relay drives.
// Implemented by services.MatchService; faked in tests.
type Lifecycle interface {
	GetMatch(id string) (*models.Match, error)
	Join(matchID, userID string) (*models.Match, error)
	RecordScore(matchID, userID string, score int) (*models.Match, error)
	Finish(matchID string) (*models.Match, error)
}

// Conn is the minimal write surface the hub needs from a socket.
type Conn interface {
	WriteJSON(v interface{}) error
}

// session is one open connection's relay-side state. Mutated only by
// the hub loop.
type session struct {
	conn        Conn
	userID      string
	matchID     string // set by join
	chatMatchID string // set by chat_join
}

type eventKind int

const (
	evRegister eventKind = iota
	evMessage
	evClose
	evCleanup
)

type event struct {
	kind    eventKind
	sess    *session
	data    []byte
	matchID string
}

// Hub multiplexes every live match over every open connection. All
// registries are owned by the single Run loop — one writer, no locks
// (the same shape as the playpool manager registries, minus the mutex).
// Lifecycle persistence is dispatched off-loop so a slow DB write for
// one match never stalls another match's broadcast.
type Hub struct {
	lifecycle Lifecycle

	inbox    chan event
	sessions map[*session]struct{}
	states   map[string]map[string]engine.Snapshot // matchID → userID → latest snapshot

	// dispatch runs lifecycle calls; production fire-and-forgets on a
	// goroutine, tests run inline for determinism.
	dispatch func(func())
}

func NewHub(lifecycle Lifecycle) *Hub {
	return &Hub{
		lifecycle: lifecycle,
		inbox:     make(chan event, 256),
		sessions:  make(map[*session]struct{}),
		states:    make(map[string]map[string]engine.Snapshot),
		dispatch:  func(f func()) { go f() },
	}
}

// Run processes relay events until ctx is cancelled. Events for the
// same match execute to completion in arrival order; that ordering is
// the protocol's only delivery guarantee.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.inbox:
			h.handle(ev)
		}
	}
}

func (h *Hub) handle(ev event) {
	switch ev.kind {
	case evRegister:
		h.sessions[ev.sess] = struct{}{}
	case evMessage:
		h.handleMessage(ev.sess, ev.data)
	case evClose:
		// Silent departure: the connection goes away, the match does
		// not. The opponent may keep playing.
		delete(h.sessions, ev.sess)
		log.Printf("🔌 [RELAY] connection closed (match %s)", ev.sess.matchID)
	case evCleanup:
		delete(h.states, ev.matchID)
	}
}

func (h *Hub) handleMessage(sess *session, data []byte) {
	env, err := ParseEnvelope(data)
	if err != nil {
		log.Printf("⚠️  [RELAY] dropping message: %v", err)
		return
	}

	switch env.Type {
	case TypeJoin:
		h.onJoin(sess, env.MatchID, env.UserID)
	case TypeGameState:
		h.onState(env.MatchID, env.UserID, *env.State)
	case TypeGameOver:
		h.onGameOver(env.MatchID, env.UserID, env.Score)
	case TypeChatJoin:
		sess.chatMatchID = env.MatchID
		sess.userID = env.UserID
	case TypeChatMessage:
		h.onChat(env.MatchID, env.Username, env.Message)
	}
}

// onJoin registers the connection under the match and, off-loop, seats
// the user as player 2 when the match is still waiting. Lifecycle
// conflicts (self-join, already started) are no-ops by design.
func (h *Hub) onJoin(sess *session, matchID, userID string) {
	sess.matchID = matchID
	sess.userID = userID
	if _, ok := h.states[matchID]; !ok {
		h.states[matchID] = make(map[string]engine.Snapshot)
	}
	log.Printf("🎮 [RELAY] user %s joined match %s", userID, matchID)

	h.dispatch(func() {
		if _, err := h.lifecycle.Join(matchID, userID); err != nil && !errors.Is(err, services.ErrMatchConflict) {
			log.Printf("⚠️  [RELAY] join persistence failed for match %s: %v", matchID, err)
		}
	})
}

// onState stores the sender's latest snapshot and immediately fans the
// full snapshot set out to every open connection on the match.
func (h *Hub) onState(matchID, userID string, state engine.Snapshot) {
	matchStates, ok := h.states[matchID]
	if !ok {
		// State before join — tolerated, the map is created lazily.
		matchStates = make(map[string]engine.Snapshot)
		h.states[matchID] = matchStates
	}
	matchStates[userID] = state

	broadcast := StateBroadcast{Type: TypeGameState}
	for id, snap := range matchStates {
		broadcast.States = append(broadcast.States, StateEntry{UserID: id, State: snap})
	}

	for sess := range h.sessions {
		if sess.matchID != matchID {
			continue
		}
		if err := sess.conn.WriteJSON(broadcast); err != nil {
			log.Printf("⚠️  [RELAY] broadcast to %s failed: %v", sess.userID, err)
		}
	}
}

// onGameOver records the reported final score and completes the match
// once both participants have one. Persistence failures never reach the
// connection: the client already shows its local game-over screen.
func (h *Hub) onGameOver(matchID, userID string, score int) {
	log.Printf("🏁 [RELAY] game over for match %s, user %s, score %d", matchID, userID, score)

	h.dispatch(func() {
		match, err := h.lifecycle.RecordScore(matchID, userID, score)
		if err != nil {
			log.Printf("⚠️  [RELAY] score persistence failed for match %s: %v (score may not be saved)", matchID, err)
			return
		}
		if !match.BothScored() {
			return
		}
		if _, err := h.lifecycle.Finish(matchID); err != nil && !errors.Is(err, services.ErrMatchConflict) {
			log.Printf("⚠️  [RELAY] finish persistence failed for match %s: %v", matchID, err)
			return
		}
		// Terminal — drop the in-memory snapshot set.
		h.inbox <- event{kind: evCleanup, matchID: matchID}
	})
}

func (h *Hub) onChat(matchID, username, message string) {
	broadcast := ChatBroadcast{Type: TypeChatMessage, Username: username, Message: message}
	for sess := range h.sessions {
		if sess.chatMatchID != matchID {
			continue
		}
		if err := sess.conn.WriteJSON(broadcast); err != nil {
			log.Printf("⚠️  [RELAY] chat delivery to %s failed: %v", sess.userID, err)
		}
	}
}

// ServeConn is the fiber websocket handler: it registers the session,
// then pumps raw frames into the hub loop until the socket closes.
func (h *Hub) ServeConn(c *websocket.Conn) {
	sess := &session{conn: c}
	h.inbox <- event{kind: evRegister, sess: sess}

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			break
		}
		h.inbox <- event{kind: evMessage, sess: sess, data: data}
	}
	h.inbox <- event{kind: evClose, sess: sess}
}

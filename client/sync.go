// Package client is the consumer-side counterpart of the relay: it
// owns the local game engine, streams its snapshots to /game-ws,
// mirrors the opponent's latest snapshot for rendering, and reports the
// final score into the match lifecycle.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"arcade-match-system/engine"
	"arcade-match-system/relay"

	"github.com/gorilla/websocket"
)

// Sync drives one player's side of a live match.
type Sync struct {
	conn    *websocket.Conn
	matchID string
	userID  string
	game    engine.Game

	// onFinish is invoked once with the final score; the caller hooks
	// its lifecycle-finish HTTP call (or XP settlement) here.
	onFinish func(score int)
	onChat   func(username, message string)

	mu        sync.Mutex
	opponents map[string]engine.Snapshot
	finished  bool

	writeMu sync.Mutex
}

// Dial connects to the relay endpoint (e.g. wss://host/game-ws) and
// joins the match. The engine instance is owned exclusively by this
// Sync; nothing else may mutate it.
func Dial(ctx context.Context, url, matchID, userID string, game engine.Game, onFinish func(int)) (*Sync, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("relay dial failed: %w", err)
	}
	s := &Sync{
		conn:      conn,
		matchID:   matchID,
		userID:    userID,
		game:      game,
		onFinish:  onFinish,
		opponents: make(map[string]engine.Snapshot),
	}
	if err := s.send(relay.Envelope{Type: relay.TypeJoin, MatchID: matchID, UserID: userID}); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sync) send(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Advance applies one input to the local engine and pushes the result
// to the relay: a snapshot while the game runs, gameOver exactly once
// when it ends.
func (s *Sync) Advance(in engine.Input) error {
	snap := s.game.Advance(in)
	if s.game.Over() {
		return s.reportGameOver()
	}
	return s.send(relay.Envelope{
		Type:    relay.TypeGameState,
		MatchID: s.matchID,
		UserID:  s.userID,
		State:   &snap,
	})
}

func (s *Sync) reportGameOver() error {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return nil
	}
	s.finished = true
	s.mu.Unlock()

	score := s.game.Score()
	err := s.send(relay.Envelope{
		Type:    relay.TypeGameOver,
		MatchID: s.matchID,
		UserID:  s.userID,
		Score:   score,
	})
	// The local game-over screen must show even when the relay write
	// fails; the score just may not be saved.
	if s.onFinish != nil {
		s.onFinish(score)
	}
	return err
}

// JoinChat subscribes to the match chat channel.
func (s *Sync) JoinChat(onChat func(username, message string)) error {
	s.mu.Lock()
	s.onChat = onChat
	s.mu.Unlock()
	return s.send(relay.Envelope{Type: relay.TypeChatJoin, MatchID: s.matchID, UserID: s.userID})
}

// SendChat posts a chat line to the match channel.
func (s *Sync) SendChat(username, message string) error {
	return s.send(relay.Envelope{
		Type:     relay.TypeChatMessage,
		MatchID:  s.matchID,
		UserID:   s.userID,
		Username: username,
		Message:  message,
	})
}

// Listen pumps relay broadcasts until the connection drops or ctx is
// cancelled. Run it on its own goroutine.
func (s *Sync) Listen(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		s.handleBroadcast(data)
	}
}

// handleBroadcast folds one server frame into local state.
func (s *Sync) handleBroadcast(data []byte) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return
	}

	switch probe.Type {
	case relay.TypeGameState:
		var broadcast relay.StateBroadcast
		if err := json.Unmarshal(data, &broadcast); err != nil {
			return
		}
		s.mu.Lock()
		for _, entry := range broadcast.States {
			if entry.UserID == s.userID {
				continue
			}
			s.opponents[entry.UserID] = entry.State
		}
		s.mu.Unlock()
	case relay.TypeChatMessage:
		var chat relay.ChatBroadcast
		if err := json.Unmarshal(data, &chat); err != nil {
			return
		}
		s.mu.Lock()
		onChat := s.onChat
		s.mu.Unlock()
		if onChat != nil {
			onChat(chat.Username, chat.Message)
		}
	}
}

// Opponent returns the last received snapshot for the (two-player
// match) opponent, false while none has arrived.
func (s *Sync) Opponent() (engine.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range s.opponents {
		return snap, true
	}
	return engine.Snapshot{}, false
}

// Close tears down the connection. The relay treats this as a silent
// departure; the match itself keeps its state.
func (s *Sync) Close() error {
	return s.conn.Close()
}

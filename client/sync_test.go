package client

import (
	"encoding/json"
	"testing"

	"arcade-match-system/engine"
	"arcade-match-system/relay"
)

func newLocalSync(userID string) *Sync {
	return &Sync{
		matchID:   "m1",
		userID:    userID,
		opponents: make(map[string]engine.Snapshot),
	}
}

func marshalBroadcast(t *testing.T, v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestHandleBroadcastMirrorsOpponent(t *testing.T) {
	s := newLocalSync("me")

	frame := marshalBroadcast(t, relay.StateBroadcast{
		Type: relay.TypeGameState,
		States: []relay.StateEntry{
			{UserID: "me", State: engine.Snapshot{Score: 500, Level: 2}},
			{UserID: "them", State: engine.Snapshot{Score: 300, Level: 1}},
		},
	})
	s.handleBroadcast(frame)

	snap, ok := s.Opponent()
	if !ok {
		t.Fatal("opponent snapshot missing after broadcast")
	}
	if snap.Score != 300 || snap.Level != 1 {
		t.Fatalf("opponent snapshot = %+v, want score 300 level 1", snap)
	}
	// The local engine is authoritative; the echoed own entry is dropped.
	if _, ok := s.opponents["me"]; ok {
		t.Fatal("own state entry must not be mirrored")
	}
}

func TestHandleBroadcastKeepsLatestSnapshot(t *testing.T) {
	s := newLocalSync("me")

	for _, score := range []int{100, 250} {
		s.handleBroadcast(marshalBroadcast(t, relay.StateBroadcast{
			Type:   relay.TypeGameState,
			States: []relay.StateEntry{{UserID: "them", State: engine.Snapshot{Score: score}}},
		}))
	}

	snap, _ := s.Opponent()
	if snap.Score != 250 {
		t.Fatalf("opponent score = %d, want the latest (250)", snap.Score)
	}
}

func TestHandleBroadcastChatCallback(t *testing.T) {
	s := newLocalSync("me")

	var gotUser, gotMsg string
	s.onChat = func(username, message string) {
		gotUser, gotMsg = username, message
	}

	s.handleBroadcast(marshalBroadcast(t, relay.ChatBroadcast{
		Type:     relay.TypeChatMessage,
		Username: "Alice",
		Message:  "rematch?",
	}))

	if gotUser != "Alice" || gotMsg != "rematch?" {
		t.Fatalf("chat callback got (%q, %q), want (Alice, rematch?)", gotUser, gotMsg)
	}
}

func TestHandleBroadcastIgnoresGarbage(t *testing.T) {
	s := newLocalSync("me")

	s.handleBroadcast([]byte(`{"type": "gameState"`)) // truncated
	s.handleBroadcast([]byte(`{"type": "unknown"}`))
	s.handleBroadcast([]byte(`{"type": "gameState", "states": "nope"}`))

	if _, ok := s.Opponent(); ok {
		t.Fatal("garbage frames must not create opponent state")
	}
}

func TestOpponentEmptyBeforeFirstBroadcast(t *testing.T) {
	s := newLocalSync("me")
	if _, ok := s.Opponent(); ok {
		t.Fatal("Opponent should report false before any broadcast")
	}
}

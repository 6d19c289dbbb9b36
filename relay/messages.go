package relay

import (
	"encoding/json"
	"fmt"

	"arcade-match-system/engine"
)

// Wire message types on /game-ws. Every inbound frame is one Envelope;
// unknown or incomplete frames are rejected at the boundary before any
// registry is touched.
const (
	TypeJoin        = "join"
	TypeGameState   = "gameState"
	TypeGameOver    = "gameOver"
	TypeChatJoin    = "chat_join"
	TypeChatMessage = "chat_message"
)

// Envelope is the tagged union covering every client→server message.
type Envelope struct {
	Type     string           `json:"type"`
	MatchID  string           `json:"matchId,omitempty"`
	UserID   string           `json:"userId,omitempty"`
	Username string           `json:"username,omitempty"`
	Message  string           `json:"message,omitempty"`
	Score    int              `json:"score,omitempty"`
	State    *engine.Snapshot `json:"state,omitempty"`
}

// ParseEnvelope decodes and validates an inbound frame. Anything it
// rejects is logged and dropped by the hub — never connection-fatal.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	switch env.Type {
	case TypeJoin, TypeChatJoin:
		if env.MatchID == "" || env.UserID == "" {
			return nil, fmt.Errorf("%s requires matchId and userId", env.Type)
		}
	case TypeGameState:
		if env.MatchID == "" || env.UserID == "" || env.State == nil {
			return nil, fmt.Errorf("gameState requires matchId, userId and state")
		}
	case TypeGameOver:
		if env.MatchID == "" || env.UserID == "" {
			return nil, fmt.Errorf("gameOver requires matchId and userId")
		}
	case TypeChatMessage:
		if env.MatchID == "" || env.Username == "" {
			return nil, fmt.Errorf("chat_message requires matchId and username")
		}
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
	return &env, nil
}

// StateEntry pairs a participant with their latest snapshot. On the
// wire it is the 2-tuple [userId, state].
type StateEntry struct {
	UserID string
	State  engine.Snapshot
}

func (e StateEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.UserID, e.State})
}

func (e *StateEntry) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &e.UserID); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &e.State)
}

// StateBroadcast is the server→client fan-out: the full snapshot set
// for one match, every participant's latest state included.
type StateBroadcast struct {
	Type   string       `json:"type"`
	States []StateEntry `json:"states"`
}

// ChatBroadcast is a delivered chat line.
type ChatBroadcast struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

package broadcast

import (
	"encoding/json"
	"testing"

	"raidcourt/engine"
)

func TestEncodeEventUsesWireName(t *testing.T) {
	b, err := EncodeEvent(engine.RaidStarted{Team: engine.TeamB, Raider: "p1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Type != engine.EventRaidStart {
		t.Fatalf("type = %q", env.Type)
	}
	got, err := DecodePayload[engine.RaidStarted](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Team != engine.TeamB || got.Raider != "p1" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestSnapshotFieldNames(t *testing.T) {
	snap := engine.Snapshot{
		Scores:        map[engine.Team]int{engine.TeamA: 5, engine.TeamB: 0},
		ActivePlayers: map[engine.Team]int{engine.TeamA: 2, engine.TeamB: 1},
		Players:       []engine.PlayerView{{ID: "p1", Username: "ann", X: 10, Y: 20, Act: 1, Team: engine.TeamA}},
		Obstacles:     []engine.Obstacle{{ID: "obs_1_0", X: 1, Y: 2, Width: 3, Height: 4}},
	}
	b, err := EncodeEvent(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"t", "timer", "raidTimer", "raidState", "hasCrossedMid", "scores", "activePlayers", "turn", "round", "raider", "players", "obstacles"} {
		if _, ok := raw.Data[key]; !ok {
			t.Errorf("snapshot missing %q", key)
		}
	}
	player := raw.Data["players"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"id", "username", "x", "y", "act", "team"} {
		if _, ok := player[key]; !ok {
			t.Errorf("player view missing %q", key)
		}
	}
	if scores := raw.Data["scores"].(map[string]interface{}); scores["TEAM_A"] != float64(5) {
		t.Errorf("scores = %v", scores)
	}
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not json", "hello"},
		{"no type", `{"data":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEnvelope([]byte(tt.in)); err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
		})
	}
}

func TestDecodePayloadWithoutData(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"player_ready"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := DecodePayload[JoinRoom](env); err != nil {
		t.Fatalf("payload-less message rejected: %v", err)
	}
}

func TestDecodeInput(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"input","data":{"dir":{"x":-1,"y":1}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	in, err := DecodePayload[Input](env)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if in.Dir.X != -1 || in.Dir.Y != 1 {
		t.Fatalf("dir = %+v", in.Dir)
	}

	env.Data = json.RawMessage(`{"dir":{"x":0.5,"y":0}}`)
	if _, err := DecodePayload[Input](env); err == nil {
		t.Fatalf("fractional axis accepted")
	}
}

func TestEncodeWithoutPayload(t *testing.T) {
	b, err := Encode(MsgPong, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(b) != `{"type":"pong"}` {
		t.Fatalf("encoded = %s", b)
	}
	if _, err := Encode("", nil); err == nil {
		t.Fatalf("missing type accepted")
	}
}

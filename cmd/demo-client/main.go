package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cuttlegame/cuttle-server-go/internal/ai"
	"github.com/cuttlegame/cuttle-server-go/internal/game"
	"github.com/cuttlegame/cuttle-server-go/internal/session"
)

// Demo client: creates a session against the server's auto opponent,
// subscribes to the websocket feed, and plays seat 0 with a local
// chooser until the game ends. Handy for smoke-testing a running
// server from the command line.

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func main() {
	server := flag.String("server", "http://localhost:8080", "base URL of the cuttle server")
	strategy := flag.String("strategy", "greedy", "chooser for seat 0 (random or greedy)")
	seed := flag.Int64("seed", 0, "deck seed; 0 shuffles randomly")
	flag.Parse()

	chooser, err := ai.New(*strategy, time.Now().UnixNano())
	if err != nil {
		log.Fatal(err)
	}

	snap, err := createSession(*server, *seed)
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	log.Printf("session %s created, version %d", snap.SessionID, snap.Version)

	wsURL := "ws" + (*server)[len("http"):] + "/api/sessions/" + snap.SessionID + "/ws?viewer=0"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", wsURL, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	ctx := context.Background()
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Fatalf("read: %v", err)
		}
		switch msg.Type {
		case "error":
			log.Printf("server error: %s", msg.Data)
		case "game_state":
			var snap session.Snapshot
			if err := json.Unmarshal(msg.Data, &snap); err != nil {
				log.Fatalf("decode snapshot: %v", err)
			}
			printState(snap.View)
			if snap.View.GameOver {
				log.Println("game over")
				return
			}
			if len(snap.Actions) == 0 {
				continue // opponent to act
			}
			choice, err := chooser.Choose(ctx, snap.View, snap.Actions)
			if err != nil {
				log.Fatalf("choose: %v", err)
			}
			log.Printf("playing: %s", snap.Actions[choice].Label)
			payload, _ := json.Marshal(map[string]int{
				"state_version": snap.Version,
				"action_id":     choice,
			})
			if err := conn.WriteJSON(wsMessage{Type: "action", Data: payload}); err != nil {
				log.Fatalf("write: %v", err)
			}
		}
	}
}

func createSession(server string, seed int64) (*session.Snapshot, error) {
	body, err := json.Marshal(session.CreateOptions{Seed: seed})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(server+"/api/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	var snap session.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func printState(v game.GameStateView) {
	phase := v.Phase.Kind
	log.Printf("turn %d (%s): you %d/%d on field, opponent %d/%d, deck %d",
		v.OverallTurn, phase,
		v.Players[0].Score, v.Players[0].TargetScore,
		v.Players[1].Score, v.Players[1].TargetScore,
		v.DeckSize,
	)
}

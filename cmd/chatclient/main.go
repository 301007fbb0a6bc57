// Command chatclient is a terminal client for the lobby server's chat game.
//
// It can host a fresh session or join an existing one by id. Once joined,
// every stdin line is sent to the room as a public message; lines of the
// form "/w <player> <text>" go out as private messages.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "chatclient",
		Usage: "terminal client for the lobby server chat game",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "localhost:8080",
				Usage: "server host:port",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "host",
				Usage: "create a new session and watch its traffic",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runHost(cmd.String("addr"))
				},
			},
			{
				Name:      "join",
				Usage:     "join a session as a named player",
				ArgsUsage: "<gameId> <playerName>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args := cmd.Args()
					if args.Len() != 2 {
						return fmt.Errorf("usage: chatclient join <gameId> <playerName>")
					}
					return runJoin(cmd.String("addr"), args.Get(0), args.Get(1))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func dial(addr string) (*websocket.Conn, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}
	return conn, nil
}

func runHost(addr string) error {
	conn, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "host"}); err != nil {
		return err
	}

	// The host only observes; print everything the session broadcasts.
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		printFrame(frame)
	}
}

func runJoin(addr, gameID, playerName string) error {
	conn, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	join := map[string]string{
		"type":       "join",
		"gameId":     gameID,
		"playerName": playerName,
	}
	if err := conn.WriteJSON(join); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				done <- err
				return
			}
			printFrame(frame)
		}
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := conn.WriteJSON(outbound(line)); err != nil {
				done <- err
				return
			}
		}
		done <- scanner.Err()
	}()

	return <-done
}

// outbound turns a stdin line into a chat message. "/w bob hi" becomes a
// private message to bob; anything else goes to the room.
func outbound(line string) map[string]string {
	if rest, ok := strings.CutPrefix(line, "/w "); ok {
		if name, text, ok := strings.Cut(strings.TrimSpace(rest), " "); ok {
			return map[string]string{
				"type":     "private_msg",
				"playerId": name,
				"msg":      text,
			}
		}
	}
	return map[string]string{
		"type": "public_msg",
		"msg":  line,
	}
}

// printFrame renders a server frame for the terminal. Unknown shapes are
// shown raw so protocol replies like duplicate_playername stay visible.
func printFrame(frame []byte) {
	var msg struct {
		Type       string `json:"type"`
		PlayerName string `json:"playerName"`
		Msg        string `json:"msg"`
		Private    bool   `json:"private"`
		Game       *struct {
			ID      string `json:"id"`
			Players []struct {
				Name      string `json:"name"`
				Connected bool   `json:"connected"`
			} `json:"players"`
		} `json:"game"`
	}
	if err := json.Unmarshal(frame, &msg); err != nil {
		fmt.Println(string(frame))
		return
	}

	switch msg.Type {
	case "chat_msg":
		if msg.Private {
			fmt.Printf("[private] %s: %s\n", msg.PlayerName, msg.Msg)
		} else {
			fmt.Printf("%s: %s\n", msg.PlayerName, msg.Msg)
		}
	case "hosted":
		fmt.Printf("* session created: %s\n", msg.Game.ID)
	case "joined":
		fmt.Printf("* %s joined session %s\n", msg.PlayerName, msg.Game.ID)
	case "player_disconnected":
		names := make([]string, 0)
		for _, p := range msg.Game.Players {
			if !p.Connected {
				names = append(names, p.Name)
			}
		}
		fmt.Printf("* player disconnected (offline: %s)\n", strings.Join(names, ", "))
	case "game_not_found":
		fmt.Println("* no such session")
	case "duplicate_playername":
		fmt.Println("* that name is already connected")
	default:
		fmt.Println(string(frame))
	}
}

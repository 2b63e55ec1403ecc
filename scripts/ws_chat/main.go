package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gookit/color"
	"github.com/samber/lo"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

type reply struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const help = `commands:
  /join <room> [password]    join a room and make it current
  /create <room> [password]  create a room
  /leave [room]              leave a room (default: current)
  /users [room]              list members (default: current)
  /rooms                     list every room
  /password [room]           show a room password (members only)
  /move <x> <y>              announce a position to your rooms
  anything else              message to the current room`

func run() error {
	addr := flag.String("addr", "ws://localhost:8000/ws", "WebSocket address")
	name := flag.String("name", "cli-user", "name announced on connect")
	hotel := flag.String("hotel", "cli", "hotel announced on connect")
	room := flag.String("room", "sys", "room to join on start")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	s := &session{conn: conn, current: *room}
	if err := s.send(ctx, proto.TypeConnect, proto.ConnectData{Name: *name, Hotel: *hotel}); err != nil {
		return err
	}
	if err := s.send(ctx, proto.TypeJoinRoom, proto.JoinRoomData{Room: *room}); err != nil {
		return err
	}

	color.Cyan.Printf("Connected to %s as %s@%s\n", *addr, *name, *hotel)
	fmt.Println(help)

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	s.inputLoop(ctx)
	return nil
}

type session struct {
	conn    *websocket.Conn
	current string
}

func (s *session) send(ctx context.Context, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, s.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func (s *session) inputLoop(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if err := s.command(ctx, line); err != nil {
				log.Printf("%v", err)
				return
			}
		}
	}
}

func (s *session) command(ctx context.Context, line string) error {
	if !strings.HasPrefix(line, "/") {
		return s.send(ctx, proto.TypeMessage, map[string]string{"room": s.current, "text": line})
	}

	fields := strings.Fields(line)
	arg := func(i int, fallback string) string {
		if i < len(fields) {
			return fields[i]
		}
		return fallback
	}
	password := func() *string {
		if len(fields) > 2 {
			return &fields[2]
		}
		return nil
	}

	switch fields[0] {
	case "/join":
		s.current = arg(1, s.current)
		return s.send(ctx, proto.TypeJoinRoom, proto.JoinRoomData{Room: s.current, Password: password()})
	case "/create":
		return s.send(ctx, proto.TypeCreateRoom, proto.CreateRoomData{Room: arg(1, ""), Password: password()})
	case "/leave":
		return s.send(ctx, proto.TypeLeaveRoom, proto.RoomData{Room: arg(1, s.current)})
	case "/users":
		return s.send(ctx, proto.TypeRoomUsers, proto.RoomData{Room: arg(1, s.current)})
	case "/rooms":
		return s.send(ctx, proto.TypeShowRooms, struct{}{})
	case "/password":
		return s.send(ctx, proto.TypePassword, proto.RoomData{Room: arg(1, s.current)})
	case "/move":
		return s.send(ctx, proto.TypeUserMove, map[string]string{"x": arg(1, "0"), "y": arg(2, "0")})
	default:
		fmt.Println(help)
		return nil
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var r reply
		if err := wsjson.Read(ctx, conn, &r); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		render(r)
	}
}

func render(r reply) {
	switch r.Type {
	case proto.TypeMessage:
		var msg map[string]any
		if err := json.Unmarshal(r.Data, &msg); err != nil {
			log.Printf("unmarshal message: %v", err)
			return
		}
		fmt.Printf("[%v] %s: %v\n", msg["room"], color.Green.Sprintf("%v", msg["habbo"]), msg["text"])
	case proto.TypeUserJoined:
		var evt proto.UserJoined
		if err := json.Unmarshal(r.Data, &evt); err == nil {
			color.Gray.Printf("[room %s] %s@%s joined\n", evt.Room, evt.Name, evt.Hotel)
		}
	case proto.TypeUserLeft:
		var evt proto.UserLeft
		if err := json.Unmarshal(r.Data, &evt); err == nil {
			color.Gray.Printf("[room %s] %s@%s left\n", evt.Room, evt.Name, evt.Hotel)
		}
	case proto.TypeNewRoom:
		var evt proto.NewRoom
		if err := json.Unmarshal(r.Data, &evt); err == nil {
			color.Yellow.Printf("room %s opened by %s (password: %t)\n", evt.Name, evt.Creator.Name, evt.Password)
		}
	case proto.TypeRoomInfo, proto.TypeRoomUsers:
		var info proto.RoomUsers
		if err := json.Unmarshal(r.Data, &info); err == nil {
			names := lo.Map(info.Users, func(p proto.Profile, _ int) string { return p.Name })
			color.Cyan.Printf("[room %s] %s\n", info.Room, strings.Join(names, ", "))
		}
	case proto.TypeShowRooms:
		var listing proto.ShowRooms
		if err := json.Unmarshal(r.Data, &listing); err == nil {
			for _, room := range listing.Rooms {
				color.Cyan.Printf("%-16s users=%d password=%t\n", room.Name, len(room.Users), room.Password)
			}
		}
	default:
		if strings.HasSuffix(r.Type, "_error") {
			var e proto.Error
			if err := json.Unmarshal(r.Data, &e); err == nil {
				color.Red.Printf("%s: %s\n", r.Type, e.Message)
				return
			}
		}
		fmt.Printf("%s %s\n", r.Type, r.Data)
	}
}

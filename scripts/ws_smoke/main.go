package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

type reply struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8000/ws", "WebSocket address")
	name := flag.String("name", "tester", "name announced on connect")
	hotel := flag.String("hotel", "smoke", "hotel announced on connect")
	room := flag.String("room", "smoke", "room to create or join")
	password := flag.String("password", "", "room password")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := dialWithRetry(ctx, *addr)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	// await reads until one of types arrives, echoing everything else.
	await := func(types ...string) (reply, error) {
		for {
			var r reply
			if err := wsjson.Read(ctx, conn, &r); err != nil {
				return r, fmt.Errorf("read: %w", err)
			}
			if lo.Contains(types, r.Type) {
				return r, nil
			}
			fmt.Printf("<- %s %s\n", r.Type, r.Data)
		}
	}

	if err := send(proto.TypeConnect, proto.ConnectData{Name: *name, Hotel: *hotel, Mission: "smoke test"}); err != nil {
		return err
	}
	r, err := await(proto.TypeConnect)
	if err != nil {
		return err
	}
	var status proto.ConnectReply
	if err := json.Unmarshal(r.Data, &status); err != nil {
		return fmt.Errorf("unmarshal connect reply: %w", err)
	}
	if status.Status != proto.StatusSuccess {
		return fmt.Errorf("connect rejected: %s (%s)", status.Message, status.Code)
	}
	fmt.Printf("connected as %s@%s\n", *name, *hotel)

	var pw *string
	if *password != "" {
		pw = password
	}
	if err := send(proto.TypeCreateRoom, proto.CreateRoomData{Room: *room, Password: pw}); err != nil {
		return err
	}
	r, err = await(proto.TypeRoomInfo, proto.ErrorType(proto.TypeCreateRoom))
	if err != nil {
		return err
	}
	if r.Type != proto.TypeRoomInfo {
		fmt.Printf("create_room: %s, joining instead\n", r.Data)
		if err := send(proto.TypeJoinRoom, proto.JoinRoomData{Room: *room, Password: pw}); err != nil {
			return err
		}
		r, err = await(proto.TypeRoomInfo, proto.ErrorType(proto.TypeJoinRoom))
		if err != nil {
			return err
		}
		if r.Type != proto.TypeRoomInfo {
			return fmt.Errorf("join_room rejected: %s", r.Data)
		}
	}
	fmt.Printf("in room %s: %s\n", *room, r.Data)

	if err := send(proto.TypeMessage, map[string]string{"room": *room, "text": *text}); err != nil {
		return err
	}
	r, err = await(proto.TypeMessage, proto.ErrorType(proto.TypeMessage))
	if err != nil {
		return err
	}
	if r.Type != proto.TypeMessage {
		return fmt.Errorf("message rejected: %s", r.Data)
	}
	fmt.Printf("message relayed: %s\n", r.Data)

	if err := send(proto.TypeShowRooms, struct{}{}); err != nil {
		return err
	}
	r, err = await(proto.TypeShowRooms)
	if err != nil {
		return err
	}
	var listing proto.ShowRooms
	if err := json.Unmarshal(r.Data, &listing); err != nil {
		return fmt.Errorf("unmarshal show_rooms: %w", err)
	}
	printRooms(listing.Rooms)
	return nil
}

func dialWithRetry(ctx context.Context, addr string) (*websocket.Conn, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	var conn *websocket.Conn
	err := backoff.RetryNotify(func() error {
		c, _, err := websocket.Dial(ctx, addr, nil)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, backoff.WithContext(policy, ctx), func(err error, next time.Duration) {
		log.Printf("dial %s: %v, retrying in %s", addr, err, next)
	})
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

func printRooms(rooms []proto.RoomSummary) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Password", "Users", "Members"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, r := range rooms {
		members := lo.Map(r.Users, func(p proto.Profile, _ int) string {
			return p.Name + "@" + p.Hotel
		})
		table.Append([]string{
			r.Name,
			strconv.FormatBool(r.Password),
			strconv.Itoa(len(r.Users)),
			strings.Join(members, ", "),
		})
	}
	table.Render()
}

package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/roomrelay/internal/config"
	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub        *core.Hub
	readLimit  int64
	queueLimit int
	rateLimit  int
	log        *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:        hub,
		readLimit:  cfg.MaxMessageBytes,
		queueLimit: cfg.OutboundQueueLimit,
		rateLimit:  cfg.RateLimitPerMinute,
		log:        logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()
	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	client := core.NewClient(utils.NewID(), h.queueLimit)
	logger := h.log.With().Str("client_id", client.ID).Str("addr", r.RemoteAddr).Logger()

	if err := h.hub.Register(client); err != nil {
		logger.Warn().Err(err).Msg("hub rejected connection")
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.hub.Unregister(client)
	logger.Debug().Msg("ws connected")

	limiter := newRateLimiter(h.rateLimit)
	stop := make(chan struct{})
	defer close(stop)
	limiter.startReset(stop)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return h.readLoop(ctx, conn, client, limiter, &logger)
	})
	g.Go(func() error {
		return h.writeLoop(ctx, conn, client)
	})
	err = g.Wait()

	status, reason := closeStatus(err)
	switch {
	case status == websocket.StatusInternalError:
		logger.Warn().Err(err).Msg("ws connection closed with error")
	case errors.Is(err, core.ErrOutboxFull):
		logger.Warn().Msg("ws client too slow, closing")
	default:
		logger.Debug().Err(err).Msg("ws disconnected")
	}
	conn.Close(status, reason)
}

// closeStatus maps the first error of a session to the close frame we send.
func closeStatus(err error) (websocket.StatusCode, string) {
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		return websocket.StatusNormalClosure, "closing"
	case errors.Is(err, core.ErrOutboxClosed):
		return websocket.StatusNormalClosure, "session closed"
	case errors.Is(err, core.ErrOutboxFull):
		return websocket.StatusPolicyViolation, "outbound queue overflow"
	case errors.Is(err, core.ErrHubStopped):
		return websocket.StatusGoingAway, "server shutting down"
	}
	switch s := websocket.CloseStatus(err); s {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
		return websocket.StatusNormalClosure, "closing"
	case websocket.StatusMessageTooBig:
		return s, "message too big"
	}
	return websocket.StatusInternalError, "internal error"
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *rateLimiter, logger *zerolog.Logger) error {
	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if !limiter.allow() {
			logger.Warn().Msg("rate limit exceeded, frame dropped")
			continue
		}
		if err := h.hub.Dispatch(ctx, client, frame); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		msg, err := client.Outbox().Pop(ctx)
		if err != nil {
			return err
		}
		if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
			return err
		}
	}
}

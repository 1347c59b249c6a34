package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/instance"
	"github.com/aristath/chartpresets/internal/modules/charts/pipeline"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	streamWriteWait = 10 * time.Second

	defaultCanvasWidth  = 800
	defaultCanvasHeight = 400
)

// Client message types
const (
	MessageCreate        = "create"
	MessageUpdateOptions = "updateOptions"
)

// Server message types
const (
	MessageState = "state"
	MessageError = "error"
)

// ClientMessage is what a stream client sends.
type ClientMessage struct {
	Type    string                   `json:"type"`
	Config  domain.ChartConfig       `json:"config"`
	Kind    domain.VisualizationKind `json:"kind,omitempty"`
	Inline  pipeline.Inline          `json:"inline"`
	Options domain.OptionValue       `json:"options,omitempty"`
	Width   int                      `json:"width,omitempty"`
	Height  int                      `json:"height,omitempty"`
}

// ServerMessage is what the stream pushes.
type ServerMessage struct {
	Type  string          `json:"type"`
	State *instance.State `json:"state,omitempty"`
	Error string          `json:"error,omitempty"`
}

// stream binds one websocket connection to one chart instance.
type stream struct {
	conn    *websocket.Conn
	manager *instance.Manager
	log     zerolog.Logger

	mu    sync.Mutex
	chart *instance.Chart
	runs  sync.WaitGroup
}

// SetOriginPatterns restricts which browser origins may open the stream.
func (h *Handler) SetOriginPatterns(patterns []string) {
	h.originPatterns = patterns
}

// HandleStream handles GET /api/charts/ws
// Every state an instance commits is pushed as a "state" message.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to accept chart stream")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	s := &stream{
		conn:    conn,
		manager: h.service.Manager(),
		log:     h.log.With().Str("component", "chart_stream").Logger(),
	}
	ctx := r.Context()
	defer s.close()

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				conn.Close(websocket.StatusNormalClosure, "")
			default:
				if !errors.Is(err, context.Canceled) {
					s.log.Debug().Err(err).Msg("Chart stream read ended")
				}
			}
			return
		}
		s.handle(ctx, msg)
	}
}

func (s *stream) handle(ctx context.Context, msg ClientMessage) {
	switch msg.Type {
	case MessageCreate:
		s.create(ctx, msg)
	case MessageUpdateOptions:
		s.mu.Lock()
		c := s.chart
		s.mu.Unlock()
		if c == nil {
			s.send(ctx, ServerMessage{Type: MessageError, Error: "no chart created on this stream"})
			return
		}
		s.run(func() { c.UpdateOptions(ctx, msg.Options) })
	default:
		s.send(ctx, ServerMessage{Type: MessageError, Error: "unknown message type: " + msg.Type})
	}
}

// create replaces the stream's chart with a new instance and loads it.
func (s *stream) create(ctx context.Context, msg ClientMessage) {
	if _, err := domain.ParsePresetKey(string(msg.Config.PresetKey)); err != nil {
		s.send(ctx, ServerMessage{Type: MessageError, Error: err.Error()})
		return
	}

	width, height := msg.Width, msg.Height
	if width <= 0 {
		width = defaultCanvasWidth
	}
	if height <= 0 {
		height = defaultCanvasHeight
	}

	c := s.manager.Create(msg.Config, instance.Options{
		Kind:   msg.Kind,
		Inline: msg.Inline,
		Width:  width,
		Height: height,
		OnChange: func(state instance.State) {
			s.send(ctx, ServerMessage{Type: MessageState, State: &state})
		},
	})

	s.mu.Lock()
	prev := s.chart
	s.chart = c
	s.mu.Unlock()
	if prev != nil {
		s.manager.Remove(prev.ID())
	}

	s.log.Debug().Str("chart_id", c.ID()).Str("preset", string(msg.Config.PresetKey)).Msg("Chart instance created")
	s.run(func() { c.Load(ctx) })
}

// run executes a pipeline run off the read loop so a newer message can
// supersede it.
func (s *stream) run(fn func()) {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		fn()
	}()
}

func (s *stream) send(ctx context.Context, msg ServerMessage) {
	ctx, cancel := context.WithTimeout(ctx, streamWriteWait)
	defer cancel()
	if err := wsjson.Write(ctx, s.conn, msg); err != nil {
		s.log.Debug().Err(err).Str("type", msg.Type).Msg("Failed to push chart stream message")
	}
}

func (s *stream) close() {
	s.mu.Lock()
	c := s.chart
	s.chart = nil
	s.mu.Unlock()
	if c != nil {
		s.manager.Remove(c.ID())
	}
	s.runs.Wait()
}

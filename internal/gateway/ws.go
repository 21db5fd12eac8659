package gateway

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"genui/internal/registry"
	"genui/internal/render"
	"genui/internal/uispec"
)

const (
	sessionWSWriteWait = 10 * time.Second
	sessionWSPongWait  = 60 * time.Second
	sessionWSPingEvery = (sessionWSPongWait * 9) / 10
)

var sessionWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type sessionWSInbound struct {
	Type   string         `json:"type"`
	Prompt string         `json:"prompt,omitempty"`
	Config any            `json:"config,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

type sessionWSOutbound struct {
	Type    string         `json:"type"`
	Spec    *uispec.Spec   `json:"spec,omitempty"`
	Result  map[string]any `json:"result,omitempty"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
}

// HandleSessionWS upgrades the connection and serves one render session:
// "generate" starts a stream, every aggregate change is pushed as a "spec"
// frame, "action" invokes a bound action against the session store.
func (s *Server) HandleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	conn, err := sessionWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(sessionWSPongWait)); err != nil {
		log.Printf("session ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(sessionWSPongWait))
	})

	writeCh := make(chan sessionWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(sessionWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// The session's render context. Seeded from the snapshot cache when the
	// client reconnects into a session that already streamed.
	state := &sessionState{reg: s.reg}
	if spec, ok := s.engine.Latest(sessionID); ok {
		state.apply(spec)
		pushSessionWS(writeCh, sessionWSOutbound{Type: "spec", Spec: &spec})
	}

	for {
		var in sessionWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(sessionWSPongWait))

		switch in.Type {
		case "generate":
			go s.runGeneration(ctx, sessionID, in.Prompt, writeCh, state)
		case "action":
			s.invokeAction(ctx, state, in, writeCh)
		default:
			pushSessionWS(writeCh, sessionWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unknown message type: " + in.Type,
			})
		}
	}
	cancel()
	<-writerDone
}

// sessionState guards the render context shared between the read loop and
// the generation goroutine.
type sessionState struct {
	mu  sync.Mutex
	reg *registry.Registry
	rc  *render.Context
}

func (st *sessionState) apply(spec uispec.Spec) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.rc == nil {
		st.rc = render.NewContext(spec, st.reg)
		return
	}
	st.rc.ApplySpec(spec)
}

func (st *sessionState) context() *render.Context {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.rc
}

func (s *Server) runGeneration(ctx context.Context, sessionID, prompt string, writeCh chan sessionWSOutbound, state *sessionState) {
	final, err := s.engine.Generate(ctx, sessionID, prompt, func(spec uispec.Spec) {
		state.apply(spec)
		pushSessionWS(writeCh, sessionWSOutbound{Type: "spec", Spec: &spec})
	})
	if err != nil {
		log.Printf("gateway: generation for %q failed: %v", sessionID, err)
		pushSessionWS(writeCh, sessionWSOutbound{
			Type:    "error",
			Code:    "generation_failed",
			Message: err.Error(),
		})
		return
	}
	pushSessionWS(writeCh, sessionWSOutbound{Type: "done", Spec: &final})
}

func (s *Server) invokeAction(ctx context.Context, state *sessionState, in sessionWSInbound, writeCh chan sessionWSOutbound) {
	rc := state.context()
	if rc == nil {
		pushSessionWS(writeCh, sessionWSOutbound{
			Type:    "error",
			Code:    "failed_precondition",
			Message: "no spec streamed yet",
		})
		return
	}
	inv := rc.ActionBinding(in.Config)
	if inv == nil {
		pushSessionWS(writeCh, sessionWSOutbound{
			Type:    "error",
			Code:    "not_found",
			Message: "action is not registered",
		})
		return
	}
	var args []render.ActionArg
	if in.Data != nil {
		args = append(args, render.DataArg(in.Data))
	}
	result, err := inv(ctx, args...)
	if err != nil {
		pushSessionWS(writeCh, sessionWSOutbound{
			Type:    "error",
			Code:    "action_failed",
			Message: err.Error(),
		})
		return
	}
	pushSessionWS(writeCh, sessionWSOutbound{Type: "action_result", Result: result})
}

func pushSessionWS(writeCh chan sessionWSOutbound, out sessionWSOutbound) {
	select {
	case writeCh <- out:
	default:
		log.Printf("session ws write buffer full, dropping %s frame", out.Type)
	}
}

package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/buuzzer/internal/api/middleware"
	"github.com/yoockh/buuzzer/internal/credentials"
	"github.com/yoockh/buuzzer/internal/history"
	"github.com/yoockh/buuzzer/internal/logger"
	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/providers/stt"
	"github.com/yoockh/buuzzer/internal/services"
	"github.com/yoockh/buuzzer/internal/stream"
	"github.com/yoockh/buuzzer/internal/utils"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 25 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// Streamer opens one answer stream. *stream.Client implements it.
type Streamer interface {
	StreamInterviewResponse(
		ctx context.Context,
		provider models.Provider,
		transcript string,
		prefs models.UserPreferences,
		history []models.InterviewResponse,
		h stream.Handlers,
	) *stream.Conn
}

type CopilotDeps struct {
	Streams         Streamer
	Preferences     services.PreferencesService
	STT             stt.Provider // nil disables audio_chunk
	STTLanguage     string
	DefaultProvider models.Provider
	HistoryCapacity int
	Logger          *logrus.Logger
}

type CopilotWSHandler struct {
	d        CopilotDeps
	upgrader websocket.Upgrader
}

func NewCopilotWSHandler(d CopilotDeps) *CopilotWSHandler {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	if d.DefaultProvider == "" {
		d.DefaultProvider = models.ProviderOpenAI
	}
	return &CopilotWSHandler{
		d: d,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Text        string `json:"text"`
	Provider    string `json:"provider"`
	AudioBase64 string `json:"audio_base64"`
	Language    string `json:"language"`
}

type wsServerMsg struct {
	Type       string     `json:"type"`
	ID         string     `json:"id,omitempty"`
	Token      string     `json:"token,omitempty"`
	Answer     string     `json:"answer,omitempty"`
	Text       string     `json:"text,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Status     string     `json:"status,omitempty"`
	Code       utils.Code `json:"code,omitempty"`
	Message    string     `json:"message,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(m wsServerMsg) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.c.WriteJSON(m)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
}

func (w *wsConn) fail(id string, code utils.Code, msg string) {
	_ = w.writeJSON(wsServerMsg{Type: "error", ID: id, Code: code, Message: msg})
}

func (w *wsConn) status(id, status string) {
	_ = w.writeJSON(wsServerMsg{Type: "status", ID: id, Status: status})
}

// copilotSession is the state of one websocket: its history and the single
// stream that may be in flight.
type copilotSession struct {
	h      *CopilotWSHandler
	ws     *wsConn
	userID string
	log    *logrus.Entry
	hist   *history.Session

	mu     sync.Mutex
	active *stream.Conn
}

func (s *copilotSession) swap(next *stream.Conn) {
	s.mu.Lock()
	prev := s.active
	s.active = next
	s.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
}

func (h *CopilotWSHandler) Copilot(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	reqID := c.GetString(middleware.CtxRequestID)
	ctx = credentials.WithToken(ctx, c.GetString(middleware.CtxAccessToken))
	ctx = logger.WithRequestID(ctx, reqID)

	s := &copilotSession{
		h:      h,
		ws:     &wsConn{c: conn},
		userID: userID,
		log: h.d.Logger.WithFields(logrus.Fields{
			"user_id":    userID,
			"request_id": reqID,
			"op":         "CopilotWSHandler.Copilot",
		}),
		hist: history.NewSession(h.d.HistoryCapacity),
	}
	defer s.swap(nil)

	go func() {
		t := time.NewTicker(wsPingInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.ws.ping(); err != nil {
					return
				}
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	s.ws.status("", "ready")
	s.log.Info("copilot connected")

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			s.log.WithError(rerr).Debug("copilot disconnected")
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			s.ws.fail("", utils.CodeInvalidArgument, "invalid json")
			continue
		}

		switch msg.Type {
		case "transcript":
			text := strings.TrimSpace(msg.Text)
			if text == "" {
				s.ws.fail(msg.ID, utils.CodeInvalidArgument, "text is required")
				continue
			}
			s.answer(ctx, msg.ID, msg.Provider, text)

		case "audio_chunk":
			s.transcribe(ctx, msg)

		case "reset_history":
			s.hist.Reset()
			s.ws.status(msg.ID, "history_cleared")

		case "cancel":
			s.swap(nil)
			s.ws.status(msg.ID, "cancelled")

		default:
			s.ws.fail(msg.ID, utils.CodeInvalidArgument, "unknown message type")
		}
	}
}

func (s *copilotSession) provider(raw string) models.Provider {
	if p, ok := models.ParseProvider(raw); ok {
		return p
	}
	return s.h.d.DefaultProvider
}

// preferences are read per snippet so edits apply mid-interview.
func (s *copilotSession) preferences(ctx context.Context) (models.UserPreferences, error) {
	p, err := s.h.d.Preferences.Get(ctx, s.userID)
	if err != nil {
		if utils.IsCode(err, utils.CodeNotFound) {
			return models.UserPreferences{}, nil
		}
		return models.UserPreferences{}, err
	}
	return *p, nil
}

// answer replaces any in-flight stream with a new one for text.
func (s *copilotSession) answer(ctx context.Context, id, rawProvider, text string) {
	s.swap(nil)

	prefs, err := s.preferences(ctx)
	if err != nil {
		s.log.WithError(err).Error("load preferences")
		s.ws.fail(id, utils.CodeOf(err), utils.MessageOf(err))
		return
	}

	rec := s.hist.Record(text)
	h := rec.Wrap(stream.Handlers{
		OnToken: func(token string) {
			_ = s.ws.writeJSON(wsServerMsg{Type: "token", ID: id, Token: token})
		},
		OnComplete: func() {
			_ = s.ws.writeJSON(wsServerMsg{Type: "complete", ID: id, Answer: rec.Answer()})
		},
		OnFailure: func(err error) {
			s.ws.fail(id, utils.CodeOf(err), utils.MessageOf(err))
		},
	})

	conn := s.h.d.Streams.StreamInterviewResponse(ctx, s.provider(rawProvider), text, prefs, s.hist.Snapshot(), h)
	if conn == nil {
		return
	}
	s.swap(conn)
}

func (s *copilotSession) transcribe(ctx context.Context, msg wsClientMsg) {
	if s.h.d.STT == nil {
		s.ws.fail(msg.ID, utils.CodeUnavailable, "speech-to-text is disabled")
		return
	}

	audio, err := base64.StdEncoding.DecodeString(msg.AudioBase64)
	if err != nil || len(audio) == 0 {
		s.ws.fail(msg.ID, utils.CodeInvalidArgument, "audio_base64 must be non-empty base64")
		return
	}

	lang := msg.Language
	if lang == "" {
		lang = s.h.d.STTLanguage
	}

	text, conf, err := s.h.d.STT.Transcribe(ctx, audio, lang)
	if err != nil {
		s.log.WithError(err).Warn("transcribe audio")
		s.ws.fail(msg.ID, utils.CodeUpstream, "transcription failed")
		return
	}

	_ = s.ws.writeJSON(wsServerMsg{Type: "stt_result", ID: msg.ID, Text: text, Confidence: conf})

	text = strings.TrimSpace(text)
	if text == "" {
		s.ws.status(msg.ID, "no_speech")
		return
	}
	s.answer(ctx, msg.ID, msg.Provider, text)
}

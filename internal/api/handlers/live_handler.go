package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/interviewpro/backend/internal/interview"
	"github.com/interviewpro/backend/internal/providers/stt"
	"github.com/interviewpro/backend/internal/providers/tts"
	"github.com/interviewpro/backend/internal/services"
	"github.com/interviewpro/backend/internal/utils"
)

// synthShim is a websocket-backed synthesizer whose pending playback can be
// acknowledged by a client tts_done message.
type synthShim interface {
	interview.Synthesizer
	release()
}

// LiveHandler runs interview rounds over a websocket. The server owns the
// round state machine; the browser is a thin shell that plays questions,
// captures speech or typed text, and renders the events the machine emits.
type LiveHandler struct {
	interviews services.InterviewService
	stt        stt.Provider
	tts        tts.Provider
	redis      *redis.Client
	logger     *logrus.Logger
	upgrader   websocket.Upgrader

	machineCfg interview.Config
}

func NewLiveHandler(interviews services.InterviewService, sttp stt.Provider, ttsp tts.Provider, rdb *redis.Client, l *logrus.Logger, cfg interview.Config) *LiveHandler {
	return &LiveHandler{
		interviews: interviews,
		stt:        sttp,
		tts:        ttsp,
		redis:      rdb,
		logger:     l,
		machineCfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type liveClientMsg struct {
	Type string `json:"type"`

	// ready
	Capabilities *liveCapabilities `json:"capabilities"`

	// transcript
	Text  string `json:"text"`
	Final bool   `json:"final"`
	Error string `json:"error"`

	// audio_chunk
	AudioBase64 string `json:"audio_base64"`

	// media_result
	OK bool `json:"ok"`

	// mic
	On bool `json:"on"`
}

type liveCapabilities struct {
	SecureOrigin      bool `json:"secureOrigin"`
	MediaDevices      bool `json:"mediaDevices"`
	SpeechRecognition bool `json:"speechRecognition"`
	SpeechSynthesis   bool `json:"speechSynthesis"`
	AudioInputs       int  `json:"audioInputs"`
}

// RoundWS upgrades the connection and drives one interview round to
// completion. The first client message must be "ready" with the browser's
// capability probe; everything after that is machine input.
func (h *LiveHandler) RoundWS(c *gin.Context) {
	studentID, ok := requireUniqueID(c)
	if !ok {
		return
	}

	spaceID, ok := parseSpaceID(c, c.Param("spaceId"))
	if !ok {
		return
	}
	roundName := c.Param("roundName")
	if roundName == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveHandler.RoundWS", "missing round name", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	log := h.logger.WithFields(logrus.Fields{
		"unique_id": studentID,
		"space_id":  spaceID.Hex(),
		"round":     roundName,
	})

	caps, err := h.awaitReady(conn)
	if err != nil {
		log.WithError(err).Warn("websocket client never became ready")
		_ = wc.writeJSON(map[string]any{"type": "error", "code": utils.CodeInvalidArgument, "message": "expected a ready message"})
		return
	}

	recog := newWSRecognizer(wc, h.stt, "en-US")

	// cloud voice when configured, otherwise the browser's local voices
	var synth synthShim = newWSSynthesizer(wc)
	if h.tts != nil {
		synth = newServerSynthesizer(wc, h.tts)
	}

	media := newWSMedia(wc, interview.Capabilities{
		SecureOrigin:      caps.SecureOrigin,
		MediaDevices:      caps.MediaDevices,
		SpeechRecognition: caps.SpeechRecognition,
		SpeechSynthesis:   caps.SpeechSynthesis,
		AudioInputs:       caps.AudioInputs,
	})

	statusCh := "interview:" + spaceID.Hex() + ":" + roundName + ":status"
	sink := &publishingSink{
		next:    &wsSink{conn: wc},
		redis:   h.redis,
		channel: statusCh,
	}

	m := interview.New(h.machineCfg, interview.Deps{
		Client:      &roundClient{svc: h.interviews, studentID: studentID, spaceID: spaceID, roundName: roundName},
		Recognizer:  recog,
		Synthesizer: synth,
		Media:       media,
		Sink:        sink,
	})
	defer m.Teardown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialization needs the read loop running: media acquisition waits on
	// the client's media_result messages
	initDone := make(chan error, 1)
	go func() { initDone <- m.Initialize(ctx) }()

	h.readLoop(ctx, conn, wc, log, m, recog, synth, media)

	select {
	case err := <-initDone:
		if err != nil {
			log.WithError(err).Warn("round initialization failed")
		}
	default:
	}

	if m.Phase() == interview.PhaseDone {
		_ = wc.writeJSON(map[string]any{"type": "done"})
		log.Info("interview round completed")
	}
}

func (h *LiveHandler) awaitReady(conn *websocket.Conn) (*liveCapabilities, error) {
	_ = conn.SetReadDeadline(time.Now().Add(15 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var msg liveClientMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != "ready" || msg.Capabilities == nil {
		return nil, errors.New("first message must be ready with capabilities")
	}
	return msg.Capabilities, nil
}

func (h *LiveHandler) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	wc *wsConn,
	log *logrus.Entry,
	m *interview.Machine,
	recog *wsRecognizer,
	synth synthShim,
	media *wsMedia,
) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg liveClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeJSON(map[string]any{"type": "error", "code": utils.CodeInvalidArgument, "message": "invalid json"})
			continue
		}

		switch msg.Type {
		case "transcript":
			recog.handleTranscript(msg.Text, msg.Final, msg.Error)

		case "audio_chunk":
			recog.handleAudioChunk(ctx, msg.AudioBase64)

		case "tts_done":
			synth.release()

		case "media_result":
			media.handleResult(msg.OK, msg.Error)

		case "mic":
			if msg.On {
				if err := m.StartCapture(); err != nil {
					_ = wc.writeJSON(map[string]any{"type": "error", "code": utils.CodeInvalidArgument, "message": err.Error()})
				}
			} else {
				m.StopCapture()
			}

		case "edit":
			if err := m.EditAnswer(msg.Text); err != nil {
				_ = wc.writeJSON(map[string]any{"type": "error", "code": utils.CodeInvalidArgument, "message": err.Error()})
			}

		case "replay":
			if err := m.ReplayQuestion(); err != nil {
				_ = wc.writeJSON(map[string]any{"type": "error", "code": utils.CodeInvalidArgument, "message": err.Error()})
			}

		case "stop_speaking":
			m.StopSpeaking()

		case "advance":
			// runs off the loop: submission may block on the backend
			go func() {
				if err := m.Advance(ctx); err != nil {
					log.WithError(err).Debug("advance rejected")
				}
			}()

		case "submit":
			go func() {
				if err := m.Submit(ctx); err != nil {
					log.WithError(err).Debug("submit rejected")
				}
			}()

		case "retry_voice":
			m.RetryVoice()

		case "exit":
			m.Teardown()
			return

		default:
			_ = wc.writeJSON(map[string]any{"type": "error", "code": utils.CodeInvalidArgument, "message": "unknown message type"})
		}

		if m.Phase() == interview.PhaseDone || m.Phase() == interview.PhaseAborted {
			return
		}
	}
}

// publishingSink forwards to the websocket sink and mirrors phase changes to
// a Redis channel so other tabs or an admin view can follow the round.
type publishingSink struct {
	next    interview.Sink
	redis   *redis.Client
	channel string
}

func (s *publishingSink) PhaseChanged(p interview.Phase) {
	s.next.PhaseChanged(p)
	if s.redis != nil {
		payload, _ := json.Marshal(map[string]any{"type": "phase", "phase": string(p)})
		_ = s.redis.Publish(context.Background(), s.channel, string(payload)).Err()
	}
}

func (s *publishingSink) QuestionShown(index, total int, text string) {
	s.next.QuestionShown(index, total, text)
}

func (s *publishingSink) AnswerChanged(index int, text string) {
	s.next.AnswerChanged(index, text)
}

func (s *publishingSink) Notice(level interview.NoticeLevel, message string) {
	s.next.Notice(level, message)
}

func (s *publishingSink) ManualModeChanged(on bool) {
	s.next.ManualModeChanged(on)
}

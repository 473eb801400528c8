package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"askme-quiz-service/internal/app"
	"askme-quiz-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// BlankTopicMessage is shown when generate is pressed with an empty topic box.
const BlankTopicMessage = "Please enter a topic or some content first."

type WSHandler struct {
	service     *app.QuizService
	defaultMode domain.Mode
	upgrader    websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, defaultMode domain.Mode) *WSHandler {
	return &WSHandler{
		service:     service,
		defaultMode: defaultMode,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type generatePayload struct {
	Topic string `json:"topic"`
}

type inputPayload struct {
	Text string `json:"text"`
}

type answerPayload struct {
	QuestionIndex int    `json:"questionIndex"`
	Option        string `json:"option"`
}

type advancePayload struct {
	Direction domain.Direction `json:"direction"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type helloPayload struct {
	TabID string `json:"tabId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades a browser tab's connection and binds it to a fresh quiz machine.
// The machine lives exactly as long as the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	mode := h.defaultMode
	if raw := r.URL.Query().Get("mode"); raw != "" {
		mode = domain.ParseMode(raw)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	tabID := uuid.NewString()
	h.service.Open(tabID, mode)
	defer h.service.Close(tabID)

	updates, cancel, err := h.service.Subscribe(r.Context(), tabID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	ctx, stopGeneration := context.WithCancel(r.Context())
	defer stopGeneration()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	var generations sync.WaitGroup

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}
	emitError := func(err error) {
		emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: userMessage(err)}})
	}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "hello", Payload: helloPayload{TabID: tabID}}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				emit(outboundMessage[any]{Type: "state", Payload: view})
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "generate":
			var payload generatePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emitError(errors.New("invalid generate payload"))
				continue
			}
			// Off the read loop so the previous quiz stays answerable while Loading.
			generations.Add(1)
			go func(topic string) {
				defer generations.Done()
				if err := h.service.Generate(ctx, tabID, topic); err != nil {
					if !errors.Is(err, domain.ErrBlankTopic) && !errors.Is(err, domain.ErrGenerationInFlight) {
						log.Printf("tab %s: %v", tabID, err)
					}
					emitError(err)
				}
			}(payload.Topic)
		case "input":
			var payload inputPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emitError(errors.New("invalid input payload"))
				continue
			}
			if err := h.service.SetInput(tabID, payload.Text); err != nil {
				emitError(err)
			}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emitError(errors.New("invalid answer payload"))
				continue
			}
			if _, err := h.service.Answer(tabID, payload.QuestionIndex, payload.Option); err != nil {
				emitError(err)
			}
		case "advance":
			var payload advancePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emitError(errors.New("invalid advance payload"))
				continue
			}
			if _, err := h.service.Advance(tabID, payload.Direction); err != nil {
				emitError(err)
			}
		default:
			emitError(errors.New("unsupported message type"))
		}
	}

	stopGeneration()
	close(closeSignals)
	generations.Wait()
	<-updatesDone
	close(send)
	<-writerDone
}

// userMessage maps an error to the text shown in the tab.
func userMessage(err error) string {
	var genErr *domain.GenerationError
	switch {
	case errors.Is(err, domain.ErrBlankTopic):
		return BlankTopicMessage
	case errors.As(err, &genErr):
		return app.GenerationFailedMessage
	default:
		return err.Error()
	}
}

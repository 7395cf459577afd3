package signing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// EventType is the tag the e-signature frame puts on every postMessage.
type EventType string

const (
	TypeDocumentLoaded    EventType = "session_view.document.loaded"
	TypeDocumentCompleted EventType = "session_view.document.completed"
	TypeDocumentException EventType = "session_view.document.exception"
)

// Event is one of DocumentLoaded, DocumentCompleted or DocumentException.
type Event interface {
	Type() EventType
	isEvent()
}

type DocumentLoaded struct {
	DocumentID string `json:"documentId,omitempty"`
}

type DocumentCompleted struct {
	DocumentID string `json:"documentId,omitempty"`
}

type DocumentException struct {
	DocumentID string `json:"documentId,omitempty"`
	Message    string `json:"message"`
}

func (DocumentLoaded) Type() EventType    { return TypeDocumentLoaded }
func (DocumentCompleted) Type() EventType { return TypeDocumentCompleted }
func (DocumentException) Type() EventType { return TypeDocumentException }

func (DocumentLoaded) isEvent()    {}
func (DocumentCompleted) isEvent() {}
func (DocumentException) isEvent() {}

// ParseError reports a message that is not a recognised signing event.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "signing event: " + e.Reason }

type rawMessage struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Data    json.RawMessage `json:"data"`
}

type rawPayload struct {
	UUID    string          `json:"uuid"`
	ID      string          `json:"id"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// Parse converts a forwarded postMessage body into a typed Event. The frame
// is third-party, so both "type"/"event" tags and "payload"/"data" bodies are accepted.
func Parse(raw []byte) (Event, error) {
	var m rawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &ParseError{Reason: "invalid json"}
	}
	tag := strings.TrimSpace(m.Type)
	if tag == "" {
		tag = strings.TrimSpace(m.Event)
	}
	if tag == "" {
		return nil, &ParseError{Reason: "missing event type"}
	}

	body := m.Payload
	if len(body) == 0 {
		body = m.Data
	}
	var p rawPayload
	if len(body) > 0 && string(body) != "null" {
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, &ParseError{Reason: "invalid payload"}
		}
	}
	docID := p.UUID
	if docID == "" {
		docID = p.ID
	}

	switch EventType(tag) {
	case TypeDocumentLoaded:
		return DocumentLoaded{DocumentID: docID}, nil
	case TypeDocumentCompleted:
		return DocumentCompleted{DocumentID: docID}, nil
	case TypeDocumentException:
		return DocumentException{DocumentID: docID, Message: exceptionMessage(p)}, nil
	default:
		return nil, &ParseError{Reason: fmt.Sprintf("unknown event type %q", tag)}
	}
}

func exceptionMessage(p rawPayload) string {
	if p.Message != "" {
		return p.Message
	}
	if len(p.Error) > 0 {
		var s string
		if err := json.Unmarshal(p.Error, &s); err == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(p.Error, &obj); err == nil && obj.Message != "" {
			return obj.Message
		}
	}
	return "signing session reported an error"
}

// Listener receives typed signing events.
type Listener interface {
	DocumentLoaded(ctx context.Context, e DocumentLoaded) error
	DocumentCompleted(ctx context.Context, e DocumentCompleted) error
	DocumentException(ctx context.Context, e DocumentException) error
}

// Dispatch routes e to the matching Listener method.
func Dispatch(ctx context.Context, e Event, l Listener) error {
	switch ev := e.(type) {
	case DocumentLoaded:
		return l.DocumentLoaded(ctx, ev)
	case DocumentCompleted:
		return l.DocumentCompleted(ctx, ev)
	case DocumentException:
		return l.DocumentException(ctx, ev)
	default:
		return &ParseError{Reason: fmt.Sprintf("unhandled event %T", e)}
	}
}

package ingest

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/fluxmap/fluxmap/internal/errors"
	"github.com/fluxmap/fluxmap/internal/sim"
)

// healthType is the pseudo-event type carrying a port→online patch.
const healthType = "health"

// Message is one decoded telemetry line. Exactly one of Event or Health
// is set.
type Message struct {
	// Event is a pipeline event destined for the simulation router.
	Event *sim.Event
	// Health maps service ports to their online state.
	Health map[int]bool
}

// wireLine is the outer shape of every telemetry line.
type wireLine struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// wirePayload is the payload shape for pipeline events.
type wirePayload struct {
	Status  string `json:"status"`
	Repo    string `json:"repo"`
	File    string `json:"file"`
	Mapper  string `json:"mapper"`
	Label   string `json:"label"`
	Success *bool  `json:"success"`
}

// wireHealth is the payload shape for health patches.
type wireHealth struct {
	Online bool `json:"online"`
}

// DecodeLine decodes a single NDJSON telemetry line into a Message.
// The returned error wraps ErrMalformedLine for lines that are not valid
// JSON or carry no event type.
func DecodeLine(line []byte) (Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Message{}, errors.NewIngestError("empty line", errors.ErrMalformedLine)
	}

	var outer wireLine
	if err := json.Unmarshal(line, &outer); err != nil {
		return Message{}, errors.NewIngestError("invalid JSON", errors.Join(errors.ErrMalformedLine, err))
	}
	if outer.Type == "" {
		return Message{}, errors.NewIngestError("missing event type", errors.ErrMalformedLine)
	}

	if outer.Type == healthType {
		return decodeHealth(outer.Payload)
	}

	var payload wirePayload
	if len(outer.Payload) > 0 {
		if err := json.Unmarshal(outer.Payload, &payload); err != nil {
			return Message{}, errors.NewIngestError("invalid payload", errors.Join(errors.ErrMalformedLine, err))
		}
	}

	return Message{Event: &sim.Event{
		Type:    outer.Type,
		Status:  sim.Status(payload.Status),
		Repo:    payload.Repo,
		File:    payload.File,
		Mapper:  payload.Mapper,
		Label:   payload.Label,
		Success: payload.Success,
	}}, nil
}

// decodeHealth parses a health payload keyed by port number.
// Keys that are not integers are skipped.
func decodeHealth(payload []byte) (Message, error) {
	var raw map[string]wireHealth
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Message{}, errors.NewIngestError("invalid health payload", errors.Join(errors.ErrMalformedLine, err))
	}

	health := make(map[int]bool, len(raw))
	for key, entry := range raw {
		port, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		health[port] = entry.Online
	}

	return Message{Health: health}, nil
}

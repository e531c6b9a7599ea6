// Package comfy talks to a ComfyUI worker over its two surfaces: the HTTP
// API for job submission and history queries, and the websocket stream that
// pushes execution events.
package comfy

import "encoding/json"

// EventType tags the execution events the tracker consumes.
type EventType string

const (
	EventNodeStarted  EventType = "node_started"
	EventNodeProduced EventType = "node_produced"
	EventJobDone      EventType = "job_done"
	EventJobErrored   EventType = "job_errored"
)

// Event is one typed execution event from the push stream. Events are
// transient; nothing persists them.
type Event struct {
	Type      EventType
	JobID     string
	NodeID    string
	Artifacts []string
	Detail    string
}

type wireMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type executingData struct {
	Node     *string `json:"node"`
	PromptID string  `json:"prompt_id"`
}

type executedData struct {
	Node     string     `json:"node"`
	PromptID string     `json:"prompt_id"`
	Output   NodeOutput `json:"output"`
}

type executionErrorData struct {
	PromptID         string `json:"prompt_id"`
	NodeID           string `json:"node_id"`
	ExceptionMessage string `json:"exception_message"`
}

// NodeOutput is the artifact list one node emitted, as recorded on the wire
// and in the history store.
type NodeOutput struct {
	Images []ImageRef `json:"images"`
}

// ImageRef locates one produced image in the worker's output store.
type ImageRef struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

// ParseEvent decodes one websocket text frame into a typed event. The second
// return is false for frames the tracker does not care about (status pings,
// progress updates, malformed payloads).
func ParseEvent(raw []byte) (Event, bool) {
	var msg wireMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Event{}, false
	}
	switch msg.Type {
	case "executing":
		var data executingData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		// A null node means the prompt has finished executing.
		if data.Node == nil {
			return Event{Type: EventJobDone, JobID: data.PromptID}, true
		}
		return Event{Type: EventNodeStarted, JobID: data.PromptID, NodeID: *data.Node}, true
	case "executed":
		var data executedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		var artifacts []string
		for _, img := range data.Output.Images {
			if img.Filename != "" {
				artifacts = append(artifacts, img.Filename)
			}
		}
		return Event{
			Type:      EventNodeProduced,
			JobID:     data.PromptID,
			NodeID:    data.Node,
			Artifacts: artifacts,
		}, true
	case "execution_error":
		var data executionErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		detail := data.ExceptionMessage
		if detail == "" {
			detail = "execution error"
		}
		return Event{Type: EventJobErrored, JobID: data.PromptID, NodeID: data.NodeID, Detail: detail}, true
	default:
		return Event{}, false
	}
}

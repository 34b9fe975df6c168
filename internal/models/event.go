package models

// Stream event type discriminators. Every record sent on the streaming endpoint carries
// one of these in its "type" field, and exactly one record per stream has
// is_complete=true; it is always the last one.
const (
	EventTextChunk = "text_chunk"
	EventHTMLChunk = "html_chunk"
	EventComplete  = "complete"
)

// TextChunkEvent carries one fixed-size slice of the model response together with
// everything accumulated so far.
type TextChunkEvent struct {
	Type            string `json:"type"`
	Content         string `json:"content"`
	AccumulatedText string `json:"accumulated_text"`
	ConversationID  string `json:"conversation_id"`
	IsComplete      bool   `json:"is_complete"`
}

// HTMLChunkEvent carries the full HTML extracted so far. It is only emitted once enough
// post-marker content has accumulated for a caller to render without flicker.
type HTMLChunkEvent struct {
	Type           string `json:"type"`
	HTMLContent    string `json:"html_content"`
	ConversationID string `json:"conversation_id"`
	IsComplete     bool   `json:"is_complete"`
}

// CompleteEvent terminates a stream. On success IsUI is true and HTMLContent holds the
// extracted or synthesized document; on upstream failure IsUI is false, HTMLContent is
// null and FinalText holds a human-readable error message.
type CompleteEvent struct {
	Type           string  `json:"type"`
	FinalText      string  `json:"final_text"`
	HTMLContent    *string `json:"html_content"`
	IsUI           bool    `json:"is_ui"`
	ConversationID string  `json:"conversation_id"`
	IsComplete     bool    `json:"is_complete"`
}

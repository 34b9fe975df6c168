package models

// ChatRequest is the body accepted by both chat endpoints. ConversationID is optional;
// when empty a new conversation is minted. History, when supplied, overrides the stored
// copy of the conversation for this request.
type ChatRequest struct {
	Message        string    `json:"message"`
	ConversationID string    `json:"conversation_id,omitempty"`
	History        []Message `json:"history,omitempty"`
}

// ChatResponse is the body returned by the non-streaming chat endpoint.
type ChatResponse struct {
	Response       string    `json:"response"`
	ConversationID string    `json:"conversation_id"`
	IsUI           bool      `json:"is_ui"`
	HTMLContent    *string   `json:"html_content"`
	History        []Message `json:"history"`
}

package handlers

import "net/http"

// HandleRoot reports that the service is up together with the configured model.
func (m Main) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Live UI API with Grounding is running!",
		"model":   m.llm.Model(),
	})
}

// HandleHealth is the liveness endpoint.
func (m Main) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"model":             m.llm.Model(),
		"grounding_enabled": m.grounding,
	})
}

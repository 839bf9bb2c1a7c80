package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// RespondWithError writes a standard JSON error response with a given status code.
// For server-side errors (5xx), it returns a generic message to avoid leaking
// internal implementation details to the client.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	// For 500 Internal Server Error, log the specific message for debugging but
	// send a generic message to the client for security.
	// Other 5xx codes like 503 Service Unavailable should keep their messages.
	if code == http.StatusInternalServerError {
		log.Printf("Responding with server error (%d): %s", code, message)
		message = "An internal server error occurred. Please try again later."
	}
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithJSON marshals a payload to JSON, sets the appropriate headers,
// and writes the response with a given status code.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		// If marshaling fails, it's a server-side programming error.
		log.Printf("!!! CRITICAL: Failed to marshal JSON response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to serialize response"}`)) // Fallback response
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

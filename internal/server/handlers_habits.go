package server

import "net/http"

// Habit tracking is not built yet; the endpoint exists so the client
// can probe the module and show something.
func (s *Server) handleHabitsWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Habits module coming soon",
	})
}

package http

import (
	"fmt"
	"net/http"

	applog "vslim/internal/log"
)

// handleChat runs one conversation turn. The user id doubles as the
// conversation id.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := sanitizeText(r.URL.Query().Get("user_id"), maxFieldRunes)
	if userID == "" {
		s.respond(w, r, BadRequestError("user_id is required"))
		return
	}

	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, applog.OpParse, err)
		return
	}
	utterance := sanitizeUtterance(req.Utterance)
	if utterance == "" {
		s.fail(w, r, applog.OpParse, fmt.Errorf("%w: utterance is required", errValidation))
		return
	}

	res, err := s.chat.HandleTurn(r.Context(), userID, utterance)
	if err != nil {
		s.fail(w, r, "chat", err)
		return
	}
	s.respond(w, r, NewJSONResponse().Body(res))
}

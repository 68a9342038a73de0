package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/models"
)

type reviewRequest struct {
	Response string `json:"response"`
}

type editCardRequest struct {
	Text string `json:"text"`
}

type focusRequest struct {
	Sources []string `json:"sources"`
	Shuffle bool     `json:"shuffle"`
}

type cardsResponse struct {
	Cards []models.Card `json:"cards"`
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.Reviews.GetDueItems(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cardsResponse{Cards: nonNil(cards)})
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.Cards.FocusCards(r.Context(), req.Sources, req.Shuffle)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cardsResponse{Cards: nonNil(cards)})
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.Cards.GetCard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleEditCard(w http.ResponseWriter, r *http.Request) {
	var req editCardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.Cards.EditCardText(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.Cards.DeleteCard(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	response, err := flashcard.ParseResponse(req.Response)
	if err != nil {
		handleError(w, r, errors.NewValidationError("response", "must be one of again, hard, good, easy"))
		return
	}
	card, err := s.Reviews.ProcessReview(r.Context(), chi.URLParam(r, "id"), response)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	if err := s.Cards.SkipCard(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

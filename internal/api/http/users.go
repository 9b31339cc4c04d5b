package httpapi

import (
	"fmt"
	"net/http"

	ierr "restaurant-reviews/internal/errors"
	"restaurant-reviews/internal/model"

	"github.com/go-chi/chi/v5"
)

type favoriteRequest struct {
	ReviewId string `json:"reviewId"`
}

func (s *Server) getUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.Users.GetOrCreate(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		serviceError(w, r, err, "User not found", "Failed to fetch user data")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	caller, _ := SubjectFromContext(r.Context())

	patch := model.User{}
	if err := readJSON(w, r, &patch); err != nil {
		serviceError(w, r, fmt.Errorf("%w: invalid user data", ierr.InvalidArgument), "", "")
		return
	}

	if err := s.deps.Users.UpdateProfile(r.Context(), chi.URLParam(r, "userID"), caller, patch); err != nil {
		serviceError(w, r, err, "User not found", "Failed to update user profile")
		return
	}
	writeJSON(w, http.StatusOK, successEnvelope{Success: true})
}

func (s *Server) addFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	req := favoriteRequest{}
	if err := readJSON(w, r, &req); err != nil {
		serviceError(w, r, fmt.Errorf("%w: invalid favorite data", ierr.InvalidArgument), "", "")
		return
	}

	if err := s.deps.Users.AddFavorite(r.Context(), chi.URLParam(r, "userID"), req.ReviewId); err != nil {
		serviceError(w, r, err, "User not found", "Failed to add favorite")
		return
	}
	writeJSON(w, http.StatusOK, successEnvelope{Success: true})
}

func (s *Server) removeFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	caller, _ := SubjectFromContext(r.Context())

	err := s.deps.Users.RemoveFavorite(r.Context(), chi.URLParam(r, "userID"), caller, chi.URLParam(r, "reviewID"))
	if err != nil {
		serviceError(w, r, err, "User not found", "Failed to remove favorite")
		return
	}
	writeJSON(w, http.StatusOK, successEnvelope{Success: true})
}

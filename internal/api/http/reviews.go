package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	ierr "restaurant-reviews/internal/errors"
	"restaurant-reviews/internal/service/reviews"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

// multipart framing and the reviewData field on top of the photo itself
const multipartOverhead = 1 << 20

func (s *Server) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := reviews.Filter{
		Restaurant: q.Get("restaurant"),
		UserId:     q.Get("userId"),
		SortBy:     q.Get("sortBy"),
		Order:      q.Get("order"),
	}

	if v := q.Get("minRating"); v != "" {
		minRating, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "minRating must be an integer")
			return
		}
		filter.MinRating = &minRating
	}

	list, err := s.deps.Reviews.List(r.Context(), filter)
	if err != nil {
		serviceError(w, r, err, "Review not found", "Failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getReviewHandler(w http.ResponseWriter, r *http.Request) {
	review, err := s.deps.Reviews.Get(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		serviceError(w, r, err, "Review not found", "Failed to fetch review")
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	payload, photo, cleanup, err := s.readReviewRequest(w, r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		serviceError(w, r, err, "", "Failed to create review")
		return
	}

	review, err := s.deps.Reviews.Create(r.Context(), payload, photo)
	if err != nil {
		if errors.Is(err, reviews.ErrRejectedUpload) {
			hlog.FromRequest(r).Warn().Err(err).Msg("photo upload rejected")
		}
		serviceError(w, r, err, "", "Failed to create review")
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// readReviewRequest accepts a multipart form with a reviewData JSON field and an
// optional photo, or a plain JSON body.
func (s *Server) readReviewRequest(w http.ResponseWriter, r *http.Request) (reviews.Payload, *reviews.Photo, func(), error) {
	payload := reviews.Payload{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := readJSON(w, r, &payload); err != nil {
			return payload, nil, nil, fmt.Errorf("%w: invalid review data", ierr.InvalidArgument)
		}
		return payload, nil, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return payload, nil, nil, fmt.Errorf("%w: request body too large", reviews.ErrRejectedUpload)
		}
		return payload, nil, nil, fmt.Errorf("parse multipart form: %w", err)
	}
	cleanup := func() { r.MultipartForm.RemoveAll() }

	reviewData := r.FormValue("reviewData")
	if reviewData == "" {
		return payload, nil, cleanup, fmt.Errorf("%w: reviewData is required", ierr.InvalidArgument)
	}
	if err := json.Unmarshal([]byte(reviewData), &payload); err != nil {
		return payload, nil, cleanup, fmt.Errorf("%w: invalid review data", ierr.InvalidArgument)
	}

	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return payload, nil, cleanup, nil
	}
	if err != nil {
		return payload, nil, cleanup, fmt.Errorf("read photo: %w", err)
	}

	photo := &reviews.Photo{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return payload, photo, func() {
		file.Close()
		cleanup()
	}, nil
}

package httpapi

import "net/http"

func (s *Server) trendingHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.deps.Trending.Compute(r.Context())
	if err != nil {
		serviceError(w, r, err, "", "Failed to fetch trending data")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	matches, err := s.deps.Search.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		serviceError(w, r, err, "", "Failed to search reviews")
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

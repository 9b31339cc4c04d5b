package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"restaurant-reviews/internal/blobstore"
	"restaurant-reviews/internal/eventpublisher/event"
	"restaurant-reviews/internal/identity"
	"restaurant-reviews/internal/model"
	"restaurant-reviews/internal/ratelimiter"
	reviewRepository "restaurant-reviews/internal/repository/review"
	userRepository "restaurant-reviews/internal/repository/user"
	"restaurant-reviews/internal/service/reviews"
	"restaurant-reviews/internal/service/search"
	"restaurant-reviews/internal/service/trending"
	"restaurant-reviews/internal/service/users"
	"restaurant-reviews/internal/utils"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 64

type testEnv struct {
	router  http.Handler
	reviews *reviewRepository.MemoryRepository
	users   *userRepository.MemoryRepository
	blobs   *blobstore.MemoryStore
}

func newTestEnv(t *testing.T, limiter ratelimiter.Limiter) testEnv {
	t.Helper()

	env := testEnv{
		reviews: reviewRepository.NewMemory(),
		users:   userRepository.NewMemory(),
		blobs:   blobstore.NewMemory("bucket"),
	}
	provider := identity.NewStatic(identity.Identity{UID: "user1", DisplayName: "John Doe", Email: "john@example.com"})

	server := New(Options{
		AllowedOrigins: []string{"*"},
		RequestTimeout: time.Second * 5,
		MaxUploadBytes: testMaxUpload,
	}, Dependencies{
		Reviews:  reviews.New(env.reviews, env.users, env.blobs, nil, testMaxUpload),
		Trending: trending.New(env.reviews),
		Search:   search.New(env.reviews),
		Users:    users.New(env.users, provider),
		Identity: provider,
		Limiter:  limiter,
	})
	env.router = server.Router()
	return env
}

func (e testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := errorEnvelope{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func multipartReview(t *testing.T, reviewData string, filename string, contentType string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("reviewData", reviewData))

	if filename != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="photo"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reviews", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Server is running", body["message"])
	assert.Equal(t, false, body["firebaseEnabled"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestReviews_CreateAndFetch(t *testing.T) {
	env := newTestEnv(t, nil)

	req := multipartReview(t, `{"restaurant":"Taco Hut","rating":"5","review":"Great","userId":"user1","userName":"John"}`,
		"tacos.jpg", "image/jpeg", []byte("jpeg-bytes"))
	rec := env.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := model.Review{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 5, created.Rating)
	assert.Equal(t, 0, created.FoodRating)
	require.NotNil(t, created.PhotoUrl)
	assert.True(t, strings.HasSuffix(*created.PhotoUrl, "-tacos.jpg"))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/reviews/"+created.Id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/reviews/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Review not found", decodeError(t, rec))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/reviews?restaurant=Taco%20Hut&minRating=4", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := []model.Review{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestReviews_CreateJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"restaurant":"Sushi Go","rating":4}`))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := model.Review{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.AnonymousUserId, created.UserId)
	assert.Nil(t, created.PhotoUrl)
}

func TestReviews_CreateRejected(t *testing.T) {
	tests := []struct {
		name           string
		request        func(t *testing.T) *http.Request
		expectedStatus int
	}{
		{
			name: "non_image_upload",
			request: func(t *testing.T) *http.Request {
				return multipartReview(t, `{"restaurant":"R","rating":3}`, "notes.txt", "text/plain", []byte("text"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "oversized_upload",
			request: func(t *testing.T) *http.Request {
				return multipartReview(t, `{"restaurant":"R","rating":3}`, "big.png", "image/png", bytes.Repeat([]byte("p"), testMaxUpload+1))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "missing_review_data",
			request: func(t *testing.T) *http.Request {
				return multipartReview(t, "", "", "", nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "rating_out_of_range",
			request: func(t *testing.T) *http.Request {
				return multipartReview(t, `{"restaurant":"R","rating":7}`, "", "", nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			rec := env.do(testCase.request(t))
			assert.Equal(t, testCase.expectedStatus, rec.Code, rec.Body.String())

			stored, err := env.reviews.List(context.Background(), nil)
			require.NoError(t, err)
			assert.Empty(t, stored)
			assert.Equal(t, 0, env.blobs.Len())
		})
	}
}

func TestTrendingAndSearch(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.reviews.CreateMany(context.Background(), []model.Review{
		{Restaurant: "Taco Hut", Rating: 5, Review: "Best pizza tacos"},
		{Restaurant: "Taco Hut", Rating: 3},
		{Restaurant: "Sushi Go", Rating: 4},
	}))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/trending", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	snapshot := model.TrendingSnapshot{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	require.NotEmpty(t, snapshot.TopRestaurants)
	assert.Equal(t, "Taco Hut", snapshot.TopRestaurants[0].Restaurant)
	assert.Equal(t, 4.0, snapshot.TopRestaurants[0].AverageRating)
	assert.Equal(t, 2, snapshot.TopRestaurants[0].ReviewCount)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Search query is required", decodeError(t, rec))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/search?query=PIZZA", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	matches := []model.Review{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
	assert.Len(t, matches, 1)
}

func TestUsers(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/users/user1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	user := model.User{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "John Doe", *user.Name)
	assert.Equal(t, []string{}, user.Favorites)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/users/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the static provider authenticates every token as the demo user
	req := httptest.NewRequest(http.MethodPost, "/api/users/user1", strings.NewReader(`{"name":"Mallory"}`))
	req.Header.Set("Authorization", "Bearer token")
	rec = env.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	stored, err := env.users.GetById(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", *stored.Name)

	req = httptest.NewRequest(http.MethodPost, "/api/users/user1", strings.NewReader(`{"name":"Mallory"}`))
	rec = env.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/users/"+identity.DemoUserId, strings.NewReader(`{"name":"Demo","email":"x@y.z","reviewCount":42,"bio":"taco fan"}`))
	req.Header.Set("Authorization", "Bearer token")
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	demo, err := env.users.GetById(ctx, identity.DemoUserId)
	require.NoError(t, err)
	assert.Equal(t, "Demo", *demo.Name)
	assert.Nil(t, demo.Email)
	assert.Nil(t, demo.ReviewCount)
}

func TestFavorites(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	require.NoError(t, env.users.Create(ctx, identity.DemoUserId, model.User{Name: utils.Ptr("Demo")}))

	// adding is not identity checked
	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/users/"+identity.DemoUserId+"/favorites", strings.NewReader(`{"reviewId":"r1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/users/"+identity.DemoUserId+"/favorites", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user1/favorites/r1", nil)
	req.Header.Set("Authorization", "Bearer token")
	assert.Equal(t, http.StatusForbidden, env.do(req).Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/users/"+identity.DemoUserId+"/favorites/r1", nil)
	assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/users/"+identity.DemoUserId+"/favorites/r1", nil)
	req.Header.Set("Authorization", "Bearer token")
	require.Equal(t, http.StatusOK, env.do(req).Code)

	demo, err := env.users.GetById(ctx, identity.DemoUserId)
	require.NoError(t, err)
	assert.Empty(t, demo.Favorites)
}

func TestRateLimiter(t *testing.T) {
	env := newTestEnv(t, ratelimiter.NewFixedWindowLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Rate limit exceeded", decodeError(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiter_IgnoresForwardedHeaders(t *testing.T) {
	env := newTestEnv(t, ratelimiter.NewFixedWindowLimiter(2, time.Minute))

	codes := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		codes = append(codes, env.do(req).Code)
	}

	assert.Equal(t, []int{
		http.StatusOK, http.StatusOK,
		http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
}

func TestCORS_NoCredentials(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestLiveFeedUnavailable(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/reviews/live", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type liveFeed struct {
	sync.Mutex
	subscribers []event.EventWChannel
}

func (f *liveFeed) Subscribe(subscriber event.EventWChannel) {
	f.Lock()
	defer f.Unlock()
	f.subscribers = append(f.subscribers, subscriber)
}

func (f *liveFeed) Unsubscribe(subscriber event.EventWChannel) {}

func (f *liveFeed) subscriber() event.EventWChannel {
	f.Lock()
	defer f.Unlock()
	if len(f.subscribers) == 0 {
		return nil
	}
	return f.subscribers[0]
}

func TestLiveFeed(t *testing.T) {
	feed := &liveFeed{}
	server := New(Options{AllowedOrigins: []string{"*"}, RequestTimeout: time.Second * 5}, Dependencies{LiveFeed: feed})
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/reviews/live", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return feed.subscriber() != nil }, time.Second, 10*time.Millisecond)
	feed.subscriber() <- event.Event{Review: model.Review{Id: "r9", Restaurant: "Taco Hut", Rating: 4}}

	conn.SetReadDeadline(time.Now().Add(time.Second * 2))
	msg := liveMessage{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "review", msg.Type)
	assert.Equal(t, "r9", msg.Review.Id)
	assert.Equal(t, "Taco Hut", msg.Review.Restaurant)
}

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/friendpost/backend/internal/auth"
	"github.com/friendpost/backend/internal/friends"
	"github.com/friendpost/backend/internal/models"
	"github.com/friendpost/backend/internal/repositories"
	"github.com/friendpost/backend/internal/token"
)

type inMemoryUserStore struct {
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) SearchByUsername(_ context.Context, text string) ([]models.User, error) {
	var out []models.User
	for _, user := range s.users {
		if strings.Contains(user.Username, text) {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type edgeKey struct{ a, b string }

func edgePair(a, b string) edgeKey {
	if a < b {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

type inMemoryEdgeStore struct {
	edges map[edgeKey]models.FriendEdge
}

func newInMemoryEdgeStore() *inMemoryEdgeStore {
	return &inMemoryEdgeStore{edges: make(map[edgeKey]models.FriendEdge)}
}

func (s *inMemoryEdgeStore) Edge(_ context.Context, a, b string) (models.FriendEdge, error) {
	edge, ok := s.edges[edgePair(a, b)]
	if !ok {
		return models.FriendEdge{}, repositories.ErrNotFound
	}
	return edge, nil
}

func (s *inMemoryEdgeStore) CreateRequest(_ context.Context, requester, receiver string) error {
	key := edgePair(requester, receiver)
	if _, exists := s.edges[key]; exists {
		return repositories.ErrConflict
	}
	s.edges[key] = models.FriendEdge{
		Requester: requester,
		Receiver:  receiver,
		Status:    models.EdgeStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *inMemoryEdgeStore) AcceptRequest(_ context.Context, requester, receiver string) error {
	key := edgePair(requester, receiver)
	edge, ok := s.edges[key]
	if !ok || edge.Status != models.EdgeStatusPending || edge.Requester != requester {
		return repositories.ErrNotFound
	}
	respondedAt := time.Now().UTC()
	edge.Status = models.EdgeStatusAccepted
	edge.RespondedAt = &respondedAt
	s.edges[key] = edge
	return nil
}

func (s *inMemoryEdgeStore) DeleteRequest(_ context.Context, requester, receiver string) error {
	key := edgePair(requester, receiver)
	edge, ok := s.edges[key]
	if !ok || edge.Status != models.EdgeStatusPending || edge.Requester != requester {
		return repositories.ErrNotFound
	}
	delete(s.edges, key)
	return nil
}

func (s *inMemoryEdgeStore) DeleteFriendship(_ context.Context, a, b string) error {
	key := edgePair(a, b)
	edge, ok := s.edges[key]
	if !ok || edge.Status != models.EdgeStatusAccepted {
		return repositories.ErrNotFound
	}
	delete(s.edges, key)
	return nil
}

func (s *inMemoryEdgeStore) GraphForUser(_ context.Context, userID string) (models.FriendGraph, error) {
	graph := models.FriendGraph{
		Friends:  []string{},
		Requests: models.FriendRequests{Sent: []string{}, Received: []string{}},
	}
	for _, edge := range s.edges {
		switch {
		case edge.Status == models.EdgeStatusAccepted && edge.Requester == userID:
			graph.Friends = append(graph.Friends, edge.Receiver)
		case edge.Status == models.EdgeStatusAccepted && edge.Receiver == userID:
			graph.Friends = append(graph.Friends, edge.Requester)
		case edge.Requester == userID:
			graph.Requests.Sent = append(graph.Requests.Sent, edge.Receiver)
		case edge.Receiver == userID:
			graph.Requests.Received = append(graph.Requests.Received, edge.Requester)
		}
	}
	return graph, nil
}

type inMemoryMessageStore struct {
	messages map[string]models.Message
}

func newInMemoryMessageStore() *inMemoryMessageStore {
	return &inMemoryMessageStore{messages: make(map[string]models.Message)}
}

func (s *inMemoryMessageStore) Create(_ context.Context, message models.Message) error {
	s.messages[message.ID] = message
	return nil
}

func (s *inMemoryMessageStore) List(_ context.Context) ([]models.Message, error) {
	var out []models.Message
	for _, message := range s.messages {
		out = append(out, message)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	return out, nil
}

func (s *inMemoryMessageStore) FindByID(_ context.Context, id string) (models.Message, error) {
	message, ok := s.messages[id]
	if !ok {
		return models.Message{}, repositories.ErrNotFound
	}
	return message, nil
}

func (s *inMemoryMessageStore) SetReadFlag(_ context.Context, messageID, userID string, read bool) error {
	message, ok := s.messages[messageID]
	if !ok {
		return repositories.ErrNotFound
	}

	index := -1
	for i, uid := range message.UsersRead {
		if uid == userID {
			index = i
			break
		}
	}

	switch {
	case read && index == -1:
		message.UsersRead = append(message.UsersRead, userID)
	case !read && index >= 0:
		message.UsersRead = append(message.UsersRead[:index], message.UsersRead[index+1:]...)
	}

	s.messages[messageID] = message
	return nil
}

// testServer wires real collaborators (codec, guard, engine) over in-memory
// stores and serves them through the production route table.
type testServer struct {
	mux      *http.ServeMux
	users    *inMemoryUserStore
	edges    *inMemoryEdgeStore
	messages *inMemoryMessageStore
	codec    *token.Codec
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := newInMemoryUserStore()
	edges := newInMemoryEdgeStore()
	messages := newInMemoryMessageStore()

	codec := token.NewCodec([]byte("access-secret"), []byte("refresh-secret"), 15*time.Minute, 7*24*time.Hour)
	cookies := auth.CookieWriter{AccessTTL: 15 * time.Minute, RefreshTTL: 7 * 24 * time.Hour}

	mux := http.NewServeMux()
	RegisterRoutes(mux, Dependencies{
		Users:    users,
		Graph:    edges,
		Friends:  friends.NewEngine(users, edges),
		Messages: messages,
		Tokens:   codec,
		Guard:    auth.NewGuard(codec, users, edges, cookies),
		Cookies:  cookies,
	})

	return &testServer{mux: mux, users: users, edges: edges, messages: messages, codec: codec}
}

// addUser stores a user directly, bypassing registration.
func (ts *testServer) addUser(t *testing.T, user models.User) models.User {
	t.Helper()
	if err := ts.users.Create(context.Background(), user); err != nil {
		t.Fatalf("store user %s: %v", user.Username, err)
	}
	return user
}

// sessionCookies mints a valid cookie pair for the user.
func (ts *testServer) sessionCookies(t *testing.T, user models.User) []*http.Cookie {
	t.Helper()

	access, err := ts.codec.IssueAccess(user)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	refresh, err := ts.codec.IssueRefresh(user)
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	return []*http.Cookie{
		{Name: auth.AccessCookieName, Value: access},
		{Name: auth.RefreshCookieName, Value: refresh},
	}
}

// do runs a request through the route table and returns the recorder.
func (ts *testServer) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("response did not set cookie %q", name)
	return nil
}

func hasResponseCookie(rec *httptest.ResponseRecorder, name string) bool {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return true
		}
	}
	return false
}

package handlers

import (
	"net/http"

	"github.com/friendpost/backend/internal/auth"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users    UserStore
	Graph    GraphStore
	Friends  FriendGraphEngine
	Messages MessageStore
	Tokens   TokenIssuer
	Guard    *auth.Guard
	Cookies  auth.CookieWriter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	authH := AuthHandler{Users: deps.Users, Tokens: deps.Tokens, Cookies: deps.Cookies}
	users := UserHandler{Users: deps.Users, Graph: deps.Graph}
	friends := FriendHandler{Engine: deps.Friends}
	messages := MessageHandler{Messages: deps.Messages}

	guard := deps.Guard.Middleware

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /users/register", authH.Register)
	mux.HandleFunc("POST /users/login", authH.Login)
	mux.HandleFunc("POST /logout", authH.Logout)
	mux.Handle("GET /validate", guard(http.HandlerFunc(authH.Validate)))

	mux.HandleFunc("POST /users/check-availability", users.CheckAvailability)
	mux.HandleFunc("GET /users/{uid}", users.Get)
	mux.Handle("GET /users/find/{text}", guard(http.HandlerFunc(users.Find)))

	mux.Handle("POST /users/friends/request", guard(http.HandlerFunc(friends.Request)))
	mux.Handle("POST /users/friends/accept", guard(http.HandlerFunc(friends.Accept)))
	mux.Handle("POST /users/friends/decline", guard(http.HandlerFunc(friends.Decline)))
	mux.Handle("POST /users/friends/remove", guard(http.HandlerFunc(friends.Remove)))

	mux.HandleFunc("GET /messages", messages.List)
	mux.HandleFunc("POST /messages", messages.Create)
	mux.HandleFunc("GET /messages/{id}", messages.Get)
	mux.HandleFunc("PATCH /messages/{id}", messages.PatchRead)
}

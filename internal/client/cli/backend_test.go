package cli

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/BayerTobias/videoflix/internal/client/models"
)

type account struct {
	password string
	user     models.User
}

// fakeBackend is an in-memory stand-in for the Videoflix REST API.
type fakeBackend struct {
	mu          sync.Mutex
	accounts    map[string]*account
	tokens      map[string]string
	videos      []models.Video
	logoutFails bool
	hits        map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts: map[string]*account{
			"alice": {password: "secret123", user: models.User{ID: 1, Username: "alice", Email: "alice@example.com"}},
			"guestuser": {password: "guestPassword123", user: models.User{ID: 2, Username: "guestuser", Email: "guest@example.com"}},
		},
		tokens: map[string]string{},
		videos: []models.Video{
			{ID: 1, Title: "Big Buck Bunny", Genre: "animation", Visibility: models.VisibilityPublic},
			{ID: 2, Title: "Holiday", Visibility: models.VisibilityPrivate},
		},
		hits: map[string]int{},
	}
}

func (b *fakeBackend) revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tokens, token)
}

func (b *fakeBackend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var invalidToken = map[string]string{"detail": "Invalid token."}

func (b *fakeBackend) router() chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			b.hits[req.Method+" "+req.URL.Path]++
			b.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})

	r.Post("/auth/token/login", func(w http.ResponseWriter, req *http.Request) {
		var body models.LoginRequest
		_ = json.NewDecoder(req.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		acc, ok := b.accounts[body.Username]
		if !ok || acc.password != body.Password {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Unable to log in with provided credentials."}})
			return
		}
		token := "tok-" + body.Username
		if body.Username == "alice" {
			token = "abc123"
		}
		b.tokens[token] = body.Username
		writeJSON(w, http.StatusOK, models.LoginResponse{AuthToken: token})
	})

	r.Post("/auth/token/logout", func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.logoutFails {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		delete(b.tokens, bearer(req))
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/auth/users/me/", b.authed(func(w http.ResponseWriter, _ *http.Request, acc *account) {
		writeJSON(w, http.StatusOK, acc.user)
	}))

	r.Patch("/auth/users/me/", b.authed(func(w http.ResponseWriter, req *http.Request, acc *account) {
		var upd models.ProfileUpdate
		_ = json.NewDecoder(req.Body).Decode(&upd)
		acc.user.FirstName, acc.user.LastName = upd.FirstName, upd.LastName
		writeJSON(w, http.StatusOK, acc.user)
	}))

	r.Delete("/auth/users/me/", b.authed(func(w http.ResponseWriter, req *http.Request, acc *account) {
		var body models.DeleteAccountRequest
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body.CurrentPassword != acc.password {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"current_password": {"Invalid password."}})
			return
		}
		delete(b.accounts, acc.user.Username)
		for tok, name := range b.tokens {
			if name == acc.user.Username {
				delete(b.tokens, tok)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	r.Post("/auth/users/", func(w http.ResponseWriter, req *http.Request) {
		var body models.RegisterRequest
		_ = json.NewDecoder(req.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		if _, exists := b.accounts[body.Username]; exists {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"A user with that username already exists."}})
			return
		}
		b.accounts[body.Username] = &account{password: body.Password, user: models.User{ID: len(b.accounts) + 1, Username: body.Username, Email: body.Email}}
		w.WriteHeader(http.StatusCreated)
	})

	uidToken := func(w http.ResponseWriter, req *http.Request) bool {
		var body struct {
			UID   string `json:"uid"`
			Token string `json:"token"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body.UID != "u1" || body.Token != "t1" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"token": {"Invalid token for given user."}})
			return false
		}
		return true
	}

	r.Post("/auth/users/activation/", func(w http.ResponseWriter, req *http.Request) {
		if uidToken(w, req) {
			w.WriteHeader(http.StatusNoContent)
		}
	})

	r.Post("/auth/users/reset_password/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/auth/users/reset_password_confirm/", func(w http.ResponseWriter, req *http.Request) {
		if uidToken(w, req) {
			w.WriteHeader(http.StatusNoContent)
		}
	})

	r.Get("/videos/", b.authed(func(w http.ResponseWriter, req *http.Request, _ *account) {
		vis := models.Visibility(req.URL.Query().Get("visibility"))
		out := make([]models.Video, 0)
		for _, v := range b.videos {
			if v.Visibility == vis {
				out = append(out, v)
			}
		}
		writeJSON(w, http.StatusOK, out)
	}))

	return r
}

func bearer(req *http.Request) string {
	return strings.TrimPrefix(req.Header.Get("Authorization"), "Token ")
}

func (b *fakeBackend) authed(h func(http.ResponseWriter, *http.Request, *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		name, ok := b.tokens[bearer(req)]
		if !ok {
			writeJSON(w, http.StatusUnauthorized, invalidToken)
			return
		}
		h(w, req, b.accounts[name])
	}
}

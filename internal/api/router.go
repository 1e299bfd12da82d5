package api

import (
	"database/sql"
	"net/http"

	"github.com/printroom/stockroom/internal/count"
	"github.com/printroom/stockroom/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, counts *count.Manager) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	countsHandler := &CountsHandler{Counts: counts}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Items: read (all roles), write (admin).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{code}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{code}", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("GET /api/items/{code}/label", authMW(http.HandlerFunc(itemsHandler.Label)))
	mux.Handle("GET /api/export", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Export))))

	// Bulk counts (all roles).
	mux.Handle("POST /api/counts", authMW(http.HandlerFunc(countsHandler.Create)))
	mux.Handle("GET /api/counts/{id}", authMW(http.HandlerFunc(countsHandler.Get)))
	mux.Handle("DELETE /api/counts/{id}", authMW(http.HandlerFunc(countsHandler.Cancel)))
	mux.Handle("POST /api/counts/{id}/scans", authMW(http.HandlerFunc(countsHandler.Scan)))
	mux.Handle("DELETE /api/counts/{id}/scans/{index}", authMW(http.HandlerFunc(countsHandler.RemoveScan)))
	mux.Handle("POST /api/counts/{id}/apply", authMW(http.HandlerFunc(countsHandler.Apply)))

	return mux
}

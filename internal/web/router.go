package web

import (
	"database/sql"
	"net/http"

	"github.com/printroom/stockroom/internal/count"
	webembed "github.com/printroom/stockroom/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, counts *count.Manager) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Counts:    counts,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)
	page := func(h http.HandlerFunc) http.Handler { return cookieAuth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return cookieAuth(requireAdmin(h)) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", page(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/items", http.StatusSeeOther)
	}))

	mux.Handle("GET /items", page(s.ItemsPage))
	mux.Handle("GET /items/lookup", page(s.ItemLookup))
	mux.Handle("POST /items", admin(s.ItemCreateSubmit))
	mux.Handle("GET /items/{code}", page(s.ItemDetailPage))
	mux.Handle("POST /items/{code}", admin(s.ItemUpdateSubmit))
	mux.Handle("GET /items/{code}/label.png", page(s.ItemLabel))
	mux.Handle("GET /export", admin(s.Export))

	mux.Handle("POST /count", page(s.CountStart))
	mux.Handle("GET /count/{id}", page(s.CountPage))
	mux.Handle("POST /count/{id}/scan", page(s.CountScan))
	mux.Handle("POST /count/{id}/remove", page(s.CountRemove))
	mux.Handle("POST /count/{id}/apply", page(s.CountApply))
	mux.Handle("POST /count/{id}/cancel", page(s.CountCancel))

	mux.Handle("GET /users", admin(s.UsersPage))
	mux.Handle("POST /users", admin(s.UserCreateSubmit))
	mux.Handle("POST /users/{id}/password", admin(s.UserResetPasswordSubmit))
	mux.Handle("POST /users/{id}/delete", admin(s.UserDeleteSubmit))

	mux.Handle("GET /settings", page(s.SettingsPage))
	mux.Handle("POST /settings", page(s.SettingsSubmit))

	return mux, nil
}

package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/printroom/stockroom/internal/count"
	"github.com/printroom/stockroom/internal/model"
)

type countPage struct {
	PageData
	Session *count.Session
	Entries []count.Entry
	Tallies []count.Tally
}

// CountStart handles POST /count.
func (s *Server) CountStart(w http.ResponseWriter, r *http.Request) {
	sess := s.Counts.Create(GetWebClaims(r.Context()).Username)
	http.Redirect(w, r, countPath(sess), http.StatusSeeOther)
}

// CountPage handles GET /count/{id}.
func (s *Server) CountPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.countSession(w, r)
	if !ok {
		return
	}
	s.renderCount(w, r, http.StatusOK, sess, "")
}

// CountScan handles POST /count/{id}/scan.
func (s *Server) CountScan(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.countSession(w, r)
	if !ok {
		return
	}

	code := strings.TrimSpace(r.FormValue("code"))
	if code == "" {
		http.Redirect(w, r, countPath(sess), http.StatusSeeOther)
		return
	}

	if _, err := sess.Scan(r.Context(), code); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.renderCount(w, r, http.StatusNotFound, sess, "Item not found!")
			return
		}
		slog.Error("failed to record scan", "id", sess.ID, "code", code, "error", err)
		s.renderCount(w, r, http.StatusInternalServerError, sess, "Could not record the scan.")
		return
	}
	http.Redirect(w, r, countPath(sess), http.StatusSeeOther)
}

// CountRemove handles POST /count/{id}/remove.
func (s *Server) CountRemove(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.countSession(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		s.renderCount(w, r, http.StatusBadRequest, sess, "Select a scan to remove.")
		return
	}
	if err := sess.RemoveEntry(index); err != nil {
		s.renderCount(w, r, http.StatusBadRequest, sess, "Select a scan to remove.")
		return
	}
	http.Redirect(w, r, countPath(sess), http.StatusSeeOther)
}

// CountApply handles POST /count/{id}/apply.
func (s *Server) CountApply(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.countSession(w, r)
	if !ok {
		return
	}

	if err := s.Counts.Apply(r.Context(), sess); err != nil {
		msg := "Could not update the counts."
		if errors.Is(err, model.ErrNotFound) {
			msg = "An item in this count no longer exists. Nothing was changed."
		}
		slog.Error("failed to apply count", "id", sess.ID, "error", err)
		s.renderCount(w, r, http.StatusConflict, sess, msg)
		return
	}
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// CountCancel handles POST /count/{id}/cancel.
func (s *Server) CountCancel(w http.ResponseWriter, r *http.Request) {
	s.Counts.Discard(r.PathValue("id"))
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

func (s *Server) renderCount(w http.ResponseWriter, r *http.Request, status int, sess *count.Session, errMsg string) {
	data := countPage{
		PageData: s.page(r, "Count"),
		Session:  sess,
		Entries:  sess.Entries(),
		Tallies:  sess.Tallies(),
	}
	data.Error = errMsg
	s.Templates.RenderStatus(w, status, "count.html", &data)
}

func (s *Server) countSession(w http.ResponseWriter, r *http.Request) (*count.Session, bool) {
	sess := s.Counts.Get(r.PathValue("id"))
	if sess == nil {
		http.Redirect(w, r, "/items", http.StatusSeeOther)
		return nil, false
	}
	return sess, true
}

func countPath(sess *count.Session) string {
	return "/count/" + sess.ID
}

package webui

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"imagestudio/catalog"
	"imagestudio/imagegen"
	"imagestudio/studio"
)

// DownloadFilename is the attachment name of a downloaded image.
const DownloadFilename = "generated_image.png"

// errEntryMismatch means the entry at the requested index is not the one the
// page linked to, because history changed since the page was rendered.
var errEntryMismatch = errors.New("history entry changed")

// session returns the caller's studio session, starting a new one when the
// request has none or it has expired. The cookie is set on every call so its
// Max-Age restarts along with the store's sliding TTL.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*studio.Session, error) {
	if token, err := ParseSessionCookie(r, s.cookies.Name); err == nil {
		if sess, err := s.sessions.Get(token); err == nil {
			// Get slid the server-side expiry; the browser's copy follows it
			return sess, s.setSessionCookie(w, token)
		}
	}

	token, sess, err := s.sessions.Create()
	if err != nil {
		return nil, err
	}
	if err := s.setSessionCookie(w, token); err != nil {
		return nil, err
	}
	s.logger.Debug("session started", zap.String("session_id", sess.ID))
	return sess, nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) error {
	cookie, err := NewSessionCookie(token, s.cookies)
	if err != nil {
		return err
	}
	http.SetCookie(w, cookie)
	return nil
}

// sessionHandler is a handler that operates on the caller's session.
type sessionHandler func(http.ResponseWriter, *http.Request, *studio.Session)

// withSession resolves the session or fails the request with 500.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(w, r)
		if err != nil {
			s.logger.Error("failed to start session", zap.Error(err))
			http.Error(w, "Unable to start session", http.StatusInternalServerError)
			return
		}
		next(w, r, sess)
	}
}

// dispatch applies a to sess and redirects back to the page. Failures are
// already reflected in the session notice.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, sess *studio.Session, a studio.Action) {
	if _, err := s.controller.Dispatch(r.Context(), sess, a); err != nil {
		s.logger.Debug("action failed",
			zap.String("session_id", sess.ID),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	var buf bytes.Buffer
	if err := RenderStudioPage(&buf, s.controller.View(sess)); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	// Clients posting without the selects get the form defaults
	style := r.PostFormValue("style")
	if style == "" {
		style = catalog.DefaultStyleName
	}
	size := r.PostFormValue("size")
	if size == "" {
		size = catalog.DefaultSizeLabel
	}
	s.dispatch(w, r, sess, studio.GenerateAction{
		Prompt: r.PostFormValue("prompt"),
		Style:  style,
		Size:   size,
	})
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	s.dispatch(w, r, sess, studio.RandomGenerateAction{})
}

func (s *Server) handleToggleHistory(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	s.dispatch(w, r, sess, studio.ToggleHistoryAction{})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	s.dispatch(w, r, sess, studio.ClearHistoryAction{})
}

func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	s.dispatch(w, r, sess, studio.DismissNoticeAction{})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "Invalid history index", http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, sess, studio.DeleteEntryAction{Index: index})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	entry, ok := s.entry(w, r, sess)
	if !ok {
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+DownloadFilename+`"`)
	writePNG(w, entry.PNG)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	entry, ok := s.entry(w, r, sess)
	if !ok {
		return
	}
	writePNG(w, entry.PNG)
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	entry, ok := s.entry(w, r, sess)
	if !ok {
		return
	}
	index, _ := strconv.Atoi(r.PathValue("index"))
	data, err := sess.Thumbnail(index, func(e *studio.HistoryEntry) ([]byte, error) {
		if e.ID != entry.ID {
			return nil, errEntryMismatch
		}
		return imagegen.ThumbnailPNG(e.Image, imagegen.DefaultThumbnailSize)
	})
	if err != nil {
		if errors.Is(err, studio.ErrIndexOutOfRange) || errors.Is(err, errEntryMismatch) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to render thumbnail", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writePNG(w, data)
}

// entry looks up the history entry named by the {index} path value. When the
// link carries an id query parameter the entry must also match it. Writes
// the error response and returns false on failure.
func (s *Server) entry(w http.ResponseWriter, r *http.Request, sess *studio.Session) (*studio.HistoryEntry, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "Invalid history index", http.StatusBadRequest)
		return nil, false
	}
	entry, err := sess.Entry(index)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	if id := r.URL.Query().Get("id"); id != "" && id != entry.ID {
		http.NotFound(w, r)
		return nil, false
	}
	return entry, true
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := RenderSetupPage(&buf, s.setup); err != nil {
		s.logger.Error("failed to render setup page", zap.Error(err))
		http.Error(w, s.setup.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write(buf.Bytes())
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

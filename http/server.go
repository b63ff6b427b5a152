package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/fieldscrape"
	"github.com/google/uuid"
)

// Server defaults.
const (
	DefaultAddr            = ":3000"
	DefaultShutdownTimeout = 10 * time.Second
	MaxRequestBodyBytes    = 1 << 20
)

// RequestIDHeader carries the per-request identifier in responses.
const RequestIDHeader = "X-Request-ID"

// Server exposes the scrape pipeline, record retrieval, and the model
// catalog over HTTP.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *http.ServeMux

	// Addr is the bind address used by Open.
	Addr string

	// ShutdownTimeout bounds graceful shutdown once Serve's context ends.
	ShutdownTimeout time.Duration

	Scraper fieldscrape.Scraper
	Records fieldscrape.RecordService
	Catalog fieldscrape.ModelCatalog
	Logger  *slog.Logger
}

// NewServer returns a Server with routes registered. Services must be set
// before the server handles requests.
func NewServer() *Server {
	s := &Server{
		Addr:            DefaultAddr,
		ShutdownTimeout: DefaultShutdownTimeout,
		Logger:          slog.New(slog.DiscardHandler),
		router:          http.NewServeMux(),
	}
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.router.HandleFunc("POST /scrape", s.handleScrape)
	s.router.HandleFunc("GET /view-data", s.handleViewData)
	s.router.HandleFunc("GET /download-csv", s.handleDownload(fieldscrape.ExportCSV))
	s.router.HandleFunc("GET /download-json", s.handleDownload(fieldscrape.ExportJSON))
	s.router.HandleFunc("GET /models", s.handleModels)
	s.router.HandleFunc("GET /healthz", s.handleHealth)

	return s
}

// Open binds the listener on Addr.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	return nil
}

// URL returns the base URL of the open listener.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Serve handles requests until ctx is done, then shuts down gracefully.
// Open must be called first.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return fieldscrape.Errorf(fieldscrape.EINTERNAL, "server is not open")
	}

	errc := make(chan error, 1)
	go func() { errc <- s.server.Serve(s.ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeHTTP assigns a request ID, logs the request, and routes it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	id := uuid.NewString()
	w.Header().Set(RequestIDHeader, id)

	rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	s.router.ServeHTTP(rw, r)

	s.Logger.Info("http",
		"request_id", id,
		"method", r.Method,
		"path", r.URL.Path,
		"status", rw.status,
		"bytes", rw.bytes,
		"duration", time.Since(begin),
	)
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	req, err := decodeScrapeRequest(w, r)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	res, err := s.Scraper.Scrape(r.Context(), req)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// viewDataResponse is the body of GET /view-data.
type viewDataResponse struct {
	Key    string                        `json:"key"`
	Fields []string                      `json:"fields"`
	Data   *fieldscrape.StructuredRecord `json:"data"`
}

func (s *Server) handleViewData(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	rec, err := s.Records.FindRecord(r.Context(), key)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, viewDataResponse{Key: key, Fields: rec.Fields(), Data: rec})
}

func (s *Server) handleDownload(format fieldscrape.ExportFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := s.Records.ExportRecord(r.Context(), r.URL.Query().Get("key"), format)
		if err != nil {
			s.Error(w, r, err)
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": format.Filename()}))
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.Catalog.Models(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"models": models})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Error writes err as a JSON error body with the status mapped from its
// code. Internal errors are logged and reported without detail.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := fieldscrape.ErrorCode(err), fieldscrape.ErrorMessage(err)
	if code == fieldscrape.EINTERNAL {
		s.Logger.Error("http error",
			"request_id", w.Header().Get(RequestIDHeader),
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
	}
	writeJSON(w, ErrorStatusCode(code), map[string]string{"error": message})
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	fieldscrape.EINVALID:  http.StatusBadRequest,
	fieldscrape.ENOTFOUND: http.StatusNotFound,
	fieldscrape.ETIMEOUT:  http.StatusGatewayTimeout,
	fieldscrape.EFETCH:    http.StatusInternalServerError,
	fieldscrape.ECACHE:    http.StatusInternalServerError,
	fieldscrape.EEXTRACT:  http.StatusInternalServerError,
	fieldscrape.EINTERNAL: http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// decodeScrapeRequest reads url, fields, and model from a JSON body or from
// form values. Fields may be a comma separated string or, in JSON, a list.
func decodeScrapeRequest(w http.ResponseWriter, r *http.Request) (fieldscrape.ScrapeRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			URL    string          `json:"url"`
			Fields json.RawMessage `json:"fields"`
			Model  string          `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return fieldscrape.ScrapeRequest{}, fieldscrape.Errorf(fieldscrape.EINVALID, "invalid JSON body")
		}
		fields, err := decodeFields(body.Fields)
		if err != nil {
			return fieldscrape.ScrapeRequest{}, err
		}
		return newScrapeRequest(body.URL, fields, body.Model)
	}

	if err := r.ParseMultipartForm(MaxRequestBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return fieldscrape.ScrapeRequest{}, fieldscrape.Errorf(fieldscrape.EINVALID, "invalid form body")
	}
	return newScrapeRequest(r.FormValue("url"), r.FormValue("fields"), r.FormValue("model"))
}

func decodeFields(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", fieldscrape.Errorf(fieldscrape.EINVALID, "fields must be a string or a list of strings")
	}
	return strings.Join(list, ","), nil
}

// newScrapeRequest checks presence in the order the form reports it: URL
// first, then fields. Deeper validation is left to the pipeline.
func newScrapeRequest(url, fields, model string) (fieldscrape.ScrapeRequest, error) {
	if strings.TrimSpace(url) == "" {
		return fieldscrape.ScrapeRequest{}, fieldscrape.Errorf(fieldscrape.EINVALID, "URL is missing")
	}
	list, err := fieldscrape.ParseFields(fields)
	if err != nil {
		return fieldscrape.ScrapeRequest{}, fieldscrape.Errorf(fieldscrape.EINVALID, "fields are missing")
	}
	return fieldscrape.ScrapeRequest{URL: strings.TrimSpace(url), Fields: list, Model: strings.TrimSpace(model)}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusWriter records the status and size of a response.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

package net

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"AnnotateBoard/internal/export"
)

const (
	AnnotatePath = "/annotate"
	MediaPath    = "/media/"
	LivePath     = "/live"

	// TokenHeader carries the anti-forgery token on save requests.
	TokenHeader = "X-CSRFToken"

	indexFile = "index.json"
)

// Store is the server side of the annotation endpoint. It keeps one PNG per
// annotation type in a directory and remembers which file belongs to which
// type in an index next to them.
type Store struct {
	dir       string
	reference string
	token     string
	hub       *Hub

	mu    sync.RWMutex
	index map[string]string // annotation type -> file name
}

// NewStore opens (or creates) a store in dir. Saved files are named after
// reference. An empty token disables the token check.
func NewStore(dir, reference, token string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	s := &Store{
		dir:       dir,
		reference: reference,
		token:     token,
		hub:       NewHub(),
		index:     make(map[string]string),
	}

	data, err := os.ReadFile(filepath.Join(dir, indexFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read index: %w", err)
	default:
		if err := json.Unmarshal(data, &s.index); err != nil {
			return nil, fmt.Errorf("parse index: %w", err)
		}
	}
	log.Printf("[STORE] Opened %s with %d annotations", dir, len(s.index))
	return s, nil
}

func (s *Store) Hub() *Hub { return s.hub }

// Handler serves the annotation endpoint, the saved images and the live feed.
func (s *Store) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(AnnotatePath, s.handleAnnotate)
	mux.Handle(MediaPath, http.StripPrefix(MediaPath, http.FileServer(http.Dir(s.dir))))
	mux.Handle(LivePath, s.hub)
	return mux
}

func (s *Store) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleLoad(w, r)
	case http.MethodPost:
		s.handleSave(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, response{Error: "method not allowed"})
	}
}

func (s *Store) handleLoad(w http.ResponseWriter, r *http.Request) {
	annotateType := r.URL.Query().Get("annotate_type")
	s.mu.RLock()
	name, ok := s.index[annotateType]
	s.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusOK, response{Success: false})
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, ImageURL: MediaPath + name})
}

func (s *Store) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.token != "" && r.Header.Get(TokenHeader) != s.token {
		writeJSON(w, http.StatusForbidden, response{Error: "invalid token"})
		return
	}

	var req saveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 32<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "invalid request body"})
		return
	}
	annotateType := r.URL.Query().Get("annotate_type")
	if annotateType == "" {
		annotateType = req.AnnotateType
	}
	if annotateType == "" {
		writeJSON(w, http.StatusOK, response{Error: "missing annotation type"})
		return
	}

	data, err := export.DecodeDataURI(req.Image)
	if err != nil {
		writeJSON(w, http.StatusOK, response{Error: "invalid image format"})
		return
	}

	name, err := s.put(annotateType, data)
	if err != nil {
		log.Printf("[STORE] Save %s failed: %v", annotateType, err)
		writeJSON(w, http.StatusInternalServerError, response{Error: err.Error()})
		return
	}

	imageURL := MediaPath + name
	log.Printf("[STORE] Saved %s as %s (%d bytes)", annotateType, name, len(data))
	s.hub.Broadcast(Event{Type: EventSaved, AnnotateType: annotateType, ImageURL: imageURL})
	writeJSON(w, http.StatusOK, response{Success: true, ImageURL: imageURL})
}

// put writes data for annotateType, replacing the previous image under the
// same name.
func (s *Store) put(annotateType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.index[annotateType]
	if !ok {
		name = fmt.Sprintf("%s_%s.png", s.reference, uuid.NewString())
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if ok {
		return name, nil
	}

	s.index[annotateType] = name
	index, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, indexFile), index, 0o644); err != nil {
		delete(s.index, annotateType)
		return "", fmt.Errorf("write index: %w", err)
	}
	return name, nil
}

func writeJSON(w http.ResponseWriter, status int, v response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[STORE] Error writing response: %v", err)
	}
}

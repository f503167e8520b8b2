// Package mockapi is an in-memory implementation of the pet-store REST
// contract, good enough to develop and test the client against without the
// real backend:
//
//	GET    /pet/all    → PetListItem[]
//	GET    /pet/kinds  → PetKind[]
//	GET    /pet/{id}   → Pet
//	POST   /pet        → created Pet
//	PUT    /pet/{id}   → updated Pet
//	DELETE /pet/{id}   → deleted Pet
package mockapi

import (
	"log"
	"net"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/HristoTrendafilov/pet-store/internal/api"
)

// Server routes the REST contract onto a Store.
type Server struct {
	store *Store
}

// NewServer wraps the given store.
func NewServer(store *Store) *Server {
	return &Server{store: store}
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	return fasthttp.ListenAndServe(addr, s.Handler)
}

// Serve blocks serving on an existing listener (tests use a loopback
// listener on port 0).
func (s *Server) Serve(ln net.Listener) error {
	return fasthttp.Serve(ln, s.Handler)
}

// Handler is the fasthttp entry point.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/pet/all" && method == fasthttp.MethodGet:
		writeJSON(ctx, s.store.List())
	case path == "/pet/kinds" && method == fasthttp.MethodGet:
		writeJSON(ctx, s.store.Kinds())
	case path == "/pet" && method == fasthttp.MethodPost:
		s.handleCreate(ctx)
	case strings.HasPrefix(path, "/pet/"):
		s.handlePetByID(ctx, method, strings.TrimPrefix(path, "/pet/"))
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (s *Server) handleCreate(ctx *fasthttp.RequestCtx) {
	data, ok := decodeFormData(ctx)
	if !ok {
		return
	}
	writeJSON(ctx, s.store.Create(data))
}

func (s *Server) handlePetByID(ctx *fasthttp.RequestCtx, method, rawID string) {
	petID, err := strconv.Atoi(rawID)
	if err != nil || petID <= 0 {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		return
	}

	switch method {
	case fasthttp.MethodGet:
		pet, ok := s.store.Get(petID)
		if !ok {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		writeJSON(ctx, pet)
	case fasthttp.MethodPut:
		data, ok := decodeFormData(ctx)
		if !ok {
			return
		}
		pet, ok := s.store.Update(petID, data)
		if !ok {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		writeJSON(ctx, pet)
	case fasthttp.MethodDelete:
		pet, ok := s.store.Delete(petID)
		if !ok {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		writeJSON(ctx, pet)
	default:
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
	}
}

func decodeFormData(ctx *fasthttp.RequestCtx) (data api.PetFormData, ok bool) {
	if err := json.Unmarshal(ctx.PostBody(), &data); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		return data, false
	}
	return data, true
}

func writeJSON(ctx *fasthttp.RequestCtx, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("mockapi: encode response: %v", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

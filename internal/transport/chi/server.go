package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/patchwell/docref/internal/domain"
	dombatch "github.com/patchwell/docref/internal/domain/batch"
	domdoc "github.com/patchwell/docref/internal/domain/document"
	domres "github.com/patchwell/docref/internal/domain/resolve"
	logpkg "github.com/patchwell/docref/internal/logger"
	batchuc "github.com/patchwell/docref/internal/usecase/batch"
	collectionuc "github.com/patchwell/docref/internal/usecase/collection"
	documentuc "github.com/patchwell/docref/internal/usecase/document"
	healthuc "github.com/patchwell/docref/internal/usecase/health"
	resolveuc "github.com/patchwell/docref/internal/usecase/resolve"
)

const maxBatchSize = 100

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the docref API over chi.
type Server struct {
	collections   *collectionuc.Service
	documents     *documentuc.Service
	batch         *batchuc.Service
	resolver      *resolveuc.Service
	finder        resolveuc.DocumentFinder
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	collections *collectionuc.Service,
	documents *documentuc.Service,
	batch *batchuc.Service,
	resolver *resolveuc.Service,
	finder resolveuc.DocumentFinder,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		collections: collections,
		documents:   documents,
		batch:       batch,
		resolver:    resolver,
		finder:      finder,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidSpec, http.StatusBadRequest, codeInvalidSpec),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeCollectionNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Router mounts all routes. Middlewares apply to every route.
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/collections", s.ListCollections)
		r.Route("/collections/{collection}", func(r chi.Router) {
			r.Put("/", s.UpsertCollection)
			r.Get("/", s.GetCollection)
			r.Delete("/", s.DeleteCollection)
			r.Post("/resolve", s.ResolveDocuments)
			r.Route("/documents", func(r chi.Router) {
				r.Post("/", s.CreateDocument)
				r.Get("/", s.ListDocuments)
				r.Post("/batch", s.BatchUpsert)
				r.Delete("/batch", s.BatchDelete)
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", s.UpsertDocument)
					r.Get("/", s.GetDocument)
					r.Patch("/", s.PatchDocument)
					r.Delete("/", s.DeleteDocument)
					r.Post("/resolve", s.ResolveDocument)
				})
			})
		})
	})

	return r
}

// UpsertCollection handles PUT /collections/{collection}: creates the
// schema, or replaces it when the collection already exists.
func (s *Server) UpsertCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")

	var req upsertCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	fields, err := fieldsFromWire(req.Fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	col, err := s.collections.Create(r.Context(), name, fields)
	if errors.Is(err, domain.ErrAlreadyExists) {
		col, err = s.collections.Update(r.Context(), name, fields)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, collectionToWire(col))
		return
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, collectionToWire(col))
}

// ListCollections handles GET /collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.collections.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]collectionResponse, len(cols))
	for i, c := range cols {
		items[i] = collectionToWire(c)
	}

	writeJSON(w, http.StatusOK, collectionListResponse{Items: items})
}

// GetCollection handles GET /collections/{collection}.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")

	col, err := s.collections.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := collectionToWire(col)
	if count, err := s.documents.Count(r.Context(), name); err == nil {
		resp.DocumentCount = &count
	}

	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(col.Revision())))
	writeJSON(w, http.StatusOK, resp)
}

// DeleteCollection handles DELETE /collections/{collection}.
func (s *Server) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.collections.Delete(r.Context(), chi.URLParam(r, "collection")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateDocument handles POST /collections/{collection}/documents:
// stores the fields under a server-generated identifier.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.documents.Create(r.Context(), collection, req.Fields)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/collections/%s/documents/%s", collection, doc.ID()))
	writeJSON(w, http.StatusCreated, documentToWire(&doc))
}

// UpsertDocument handles PUT /collections/{collection}/documents/{id}.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	var req upsertDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := domdoc.New(id, req.Fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	created, err := s.documents.Upsert(r.Context(), collection, &doc)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/api/v1/collections/%s/documents/%s", collection, id))
	}
	writeJSON(w, status, documentToWire(&doc))
}

// GetDocument handles GET /collections/{collection}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(doc.Revision())))
	writeJSON(w, http.StatusOK, documentToWire(&doc))
}

// ListDocuments handles GET /collections/{collection}/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	cursor := r.URL.Query().Get("cursor")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	docs, nextCursor, err := s.documents.List(r.Context(), collection, cursor, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i := range docs {
		items[i] = documentToWire(&docs[i])
	}

	resp := documentListResponse{Items: items, HasMore: nextCursor != ""}
	if nextCursor != "" {
		resp.NextCursor = &nextCursor
	}
	writeJSON(w, http.StatusOK, resp)
}

// PatchDocument handles PATCH /collections/{collection}/documents/{id}.
// A null field value removes the field.
func (s *Server) PatchDocument(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	var req patchDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.documents.Patch(r.Context(), collection, id, req.Fields); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	doc, err := s.documents.Get(r.Context(), collection, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(doc.Revision())))
	writeJSON(w, http.StatusOK, documentToWire(&doc))
}

// DeleteDocument handles DELETE /collections/{collection}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	err := s.documents.Delete(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BatchUpsert handles POST /collections/{collection}/documents/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req batchUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Documents) == 0 || len(req.Documents) > maxBatchSize {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("documents count must be between 1 and %d", maxBatchSize))
		return
	}

	docs := make([]domdoc.Document, 0, len(req.Documents))
	for _, item := range req.Documents {
		doc, err := domdoc.New(item.ID, item.Fields)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		docs = append(docs, doc)
	}

	s.writeBatchResponse(w, s.batch.Upsert(r.Context(), collection, docs))
}

// BatchDelete handles DELETE /collections/{collection}/documents/batch.
func (s *Server) BatchDelete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req batchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.IDs) == 0 || len(req.IDs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("ids count must be between 1 and %d", maxBatchSize))
		return
	}

	s.writeBatchResponse(w, s.batch.Delete(r.Context(), collection, req.IDs))
}

// ResolveDocuments handles POST /collections/{collection}/resolve:
// fetches the named documents and resolves the given reference specs.
func (s *Server) ResolveDocuments(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "ids are required")
		return
	}

	if _, err := s.collections.Get(r.Context(), collection); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	specs, err := specsFromWire(req.Specs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	docs, err := s.finder.FindByIDs(r.Context(), collection, req.IDs, domres.Projection{})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resolved, err := s.resolver.Resolve(r.Context(), docs, specs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]documentResponse, len(resolved))
	for i := range resolved {
		items[i] = documentToWire(&resolved[i])
	}
	writeJSON(w, http.StatusOK, resolveResponse{Items: items})
}

// ResolveDocument handles POST /collections/{collection}/documents/{id}/resolve.
func (s *Server) ResolveDocument(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	var req resolveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	specs, err := specsFromWire(req.Specs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	doc, err := s.documents.Get(r.Context(), collection, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resolved, err := s.resolver.Resolve(r.Context(), []domdoc.Document{doc}, specs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToWire(&resolved[0]))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) writeBatchResponse(w http.ResponseWriter, results []dombatch.Result) {
	succeeded, failed := 0, 0
	items := make([]batchResultItem, len(results))
	for i, res := range results {
		items[i] = batchResultToWire(res)
		if res.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	writeJSON(w, http.StatusOK, batchResponse{Items: items, Succeeded: succeeded, Failed: failed})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidSpec,
		domain.ErrInvalidSchema,
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logpkg.FromContext(r.Context()).Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

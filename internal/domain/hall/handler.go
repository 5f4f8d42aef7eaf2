package hall

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/middleware"
	"github.com/banquet/banquet-api/internal/pkg/errorhandler"
	"github.com/banquet/banquet-api/internal/pkg/response"
	"github.com/banquet/banquet-api/internal/pkg/validator"
)

// Handler handles hall HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates hall handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /halls
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	ownerID := middleware.GetUserID(r.Context())
	hall, err := h.service.Register(r.Context(), ownerID, &req)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "Failed to register hall", err)
		return
	}

	response.Created(w, NewHallResponse(hall))
}

// Get handles GET /halls/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	hallID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}

	hall, err := h.service.GetByID(r.Context(), hallID)
	if err != nil {
		response.NotFound(w, "Hall not found")
		return
	}

	response.OK(w, NewHallResponse(hall))
}

// Update handles PUT /halls/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	hallID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	hall, err := h.service.Update(r.Context(), hallID, requesterID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, NewHallResponse(hall))
}

// Mine handles GET /halls/mine
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())
	halls, err := h.service.ListByOwner(r.Context(), ownerID)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "Failed to list halls", err)
		return
	}

	out := make([]HallResponse, len(halls))
	for i := range halls {
		out[i] = NewHallResponse(&halls[i])
	}
	response.OK(w, out)
}

// Search handles GET /halls/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := SearchParams{
		City: q.Get("city"),
	}
	params.MinCapacity, _ = strconv.Atoi(q.Get("min_capacity"))
	params.MaxPrice, _ = strconv.ParseInt(q.Get("max_price"), 10, 64)

	if latStr, lngStr := q.Get("lat"), q.Get("lng"); latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			response.BadRequest(w, "Invalid coordinates")
			return
		}
		params.Latitude = lat
		params.Longitude = lng
		params.HasGeo = true
		params.RadiusKm, _ = strconv.ParseFloat(q.Get("radius_km"), 64)
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	params.Limit = limit
	params.Offset = (page - 1) * limit

	halls, total, err := h.service.Search(r.Context(), params)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "Hall search failed", err)
		return
	}

	out := make([]HallResponse, len(halls))
	for i := range halls {
		out[i] = NewHallResponse(&halls[i])
	}

	pages := (total + limit - 1) / limit
	response.WithMeta(w, out, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	})
}

// Approve handles POST /halls/{id}/approve (admin)
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(id uuid.UUID) error {
		return h.service.Approve(r.Context(), id)
	})
}

// Reject handles POST /halls/{id}/reject (admin)
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	h.moderate(w, r, func(id uuid.UUID) error {
		return h.service.Reject(r.Context(), id, req.Reason)
	})
}

// Suspend handles POST /halls/{id}/suspend (admin)
func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(id uuid.UUID) error {
		return h.service.Suspend(r.Context(), id)
	})
}

// Reinstate handles POST /halls/{id}/reinstate (admin)
func (h *Handler) Reinstate(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(id uuid.UUID) error {
		return h.service.Reinstate(r.Context(), id)
	})
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, fn func(uuid.UUID) error) {
	hallID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}
	if err := fn(hallID); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// AddStaff handles POST /halls/{id}/staff
func (h *Handler) AddStaff(w http.ResponseWriter, r *http.Request) {
	hallID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}

	var req AddStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	if err := h.service.AddStaff(r.Context(), hallID, requesterID, &req); err != nil {
		h.writeError(w, err)
		return
	}

	response.NoContent(w)
}

// RemoveStaff handles DELETE /halls/{id}/staff/{userID}
func (h *Handler) RemoveStaff(w http.ResponseWriter, r *http.Request) {
	hallID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	if err := h.service.RemoveStaff(r.Context(), hallID, requesterID, userID); err != nil {
		h.writeError(w, err)
		return
	}

	response.NoContent(w)
}

// ListStaff handles GET /halls/{id}/staff
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	hallID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	staff, err := h.service.ListStaff(r.Context(), hallID, requesterID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, staff)
}

// UploadDocument handles POST /halls/{id}/documents
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	hallID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}

	if err := r.ParseMultipartForm(MaxDocumentSize); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	requesterID := middleware.GetUserID(r.Context())
	doc, err := h.service.UploadDocument(r.Context(), hallID, requesterID,
		header.Filename, contentType, header.Size, file)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, doc)
}

// ListDocuments handles GET /halls/{id}/documents
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	hallID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	docs, err := h.service.ListDocuments(r.Context(), hallID, requesterID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, docs)
}

// DeleteDocument handles DELETE /halls/{id}/documents/{docID}
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	hallID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}
	docID, err := uuid.Parse(chi.URLParam(r, "docID"))
	if err != nil {
		response.BadRequest(w, "Invalid document ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	if err := h.service.DeleteDocument(r.Context(), hallID, requesterID, docID); err != nil {
		h.writeError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch err {
	case ErrHallNotFound:
		response.NotFound(w, "Hall not found")
	case ErrDocumentNotFound:
		response.NotFound(w, "Document not found")
	case ErrStaffNotFound:
		response.NotFound(w, "Staff member not found")
	case ErrNotHallOwner, ErrNotHallStaff:
		response.Forbidden(w, err.Error())
	case ErrInvalidTransition:
		response.Conflict(w, "INVALID_STATE", "Hall is not in a state allowing this action")
	case ErrStaffExists:
		response.Conflict(w, "STAFF_EXISTS", "User is already hall staff")
	case ErrInvalidStaffRole, ErrRejectionReason:
		response.BadRequest(w, err.Error())
	default:
		log.Error().Err(err).Msg("hall request failed")
		response.InternalError(w)
	}
}

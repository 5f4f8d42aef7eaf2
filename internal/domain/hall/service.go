package hall

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banquet/banquet-api/internal/pkg/storage"
)

// MaxDocumentSize limits hall document uploads
const MaxDocumentSize = 10 << 20 // 10 MB

// Service handles hall business logic
type Service struct {
	repo    Repository
	storage storage.Storage
}

// NewService creates hall service
func NewService(repo Repository, store storage.Storage) *Service {
	return &Service{repo: repo, storage: store}
}

// Register creates a hall in pending_approval status
func (s *Service) Register(ctx context.Context, ownerID uuid.UUID, req *CreateRequest) (*Hall, error) {
	now := time.Now()
	h := &Hall{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      StatusPendingApproval,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// GetByID returns a hall
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Hall, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrHallNotFound
	}
	return h, nil
}

// Update modifies hall details. Owner only. An approved hall that changes
// address details goes back to moderation.
func (s *Service) Update(ctx context.Context, hallID, requesterID uuid.UUID, req *UpdateRequest) (*Hall, error) {
	h, err := s.GetByID(ctx, hallID)
	if err != nil {
		return nil, err
	}
	if h.OwnerID != requesterID {
		return nil, ErrNotHallOwner
	}

	resubmit := h.Status == StatusApproved &&
		(h.Address != req.Address || h.City != req.City ||
			h.Latitude != req.Latitude || h.Longitude != req.Longitude)

	h.Name = req.Name
	h.Description = req.Description
	h.Address = req.Address
	h.City = req.City
	h.Latitude = req.Latitude
	h.Longitude = req.Longitude

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}

	if resubmit {
		if err := s.repo.UpdateStatus(ctx, hallID, []Status{StatusApproved}, StatusPendingApproval, ""); err != nil {
			return nil, err
		}
		h.Status = StatusPendingApproval
	}
	return h, nil
}

// ListByOwner returns the owner's halls
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Hall, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Search returns approved halls matching the filters
func (s *Service) Search(ctx context.Context, params SearchParams) ([]Hall, int, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	if params.HasGeo && params.RadiusKm <= 0 {
		params.RadiusKm = 25
	}
	return s.repo.Search(ctx, params)
}

// Approve moves a hall from pending_approval to approved. Admin only
// (enforced at the route level).
func (s *Service) Approve(ctx context.Context, hallID uuid.UUID) error {
	return s.repo.UpdateStatus(ctx, hallID, []Status{StatusPendingApproval}, StatusApproved, "")
}

// Reject moves a hall from pending_approval to rejected with a reason
func (s *Service) Reject(ctx context.Context, hallID uuid.UUID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrRejectionReason
	}
	return s.repo.UpdateStatus(ctx, hallID, []Status{StatusPendingApproval}, StatusRejected, reason)
}

// Suspend takes an approved hall offline
func (s *Service) Suspend(ctx context.Context, hallID uuid.UUID) error {
	return s.repo.UpdateStatus(ctx, hallID, []Status{StatusApproved}, StatusSuspended, "")
}

// Reinstate returns a suspended hall to approved
func (s *Service) Reinstate(ctx context.Context, hallID uuid.UUID) error {
	return s.repo.UpdateStatus(ctx, hallID, []Status{StatusSuspended}, StatusApproved, "")
}

// AddStaff assigns a user as hall staff. Owner only.
func (s *Service) AddStaff(ctx context.Context, hallID, requesterID uuid.UUID, req *AddStaffRequest) error {
	h, err := s.GetByID(ctx, hallID)
	if err != nil {
		return err
	}
	if h.OwnerID != requesterID {
		return ErrNotHallOwner
	}
	if !IsValidStaffRole(req.Role) {
		return ErrInvalidStaffRole
	}
	return s.repo.AddStaff(ctx, hallID, req.UserID, StaffRole(req.Role))
}

// RemoveStaff removes a staff assignment. Owner only.
func (s *Service) RemoveStaff(ctx context.Context, hallID, requesterID, userID uuid.UUID) error {
	h, err := s.GetByID(ctx, hallID)
	if err != nil {
		return err
	}
	if h.OwnerID != requesterID {
		return ErrNotHallOwner
	}
	return s.repo.RemoveStaff(ctx, hallID, userID)
}

// ListStaff lists staff. Owner or staff.
func (s *Service) ListStaff(ctx context.Context, hallID, requesterID uuid.UUID) ([]StaffResponse, error) {
	if err := s.RequireAccess(ctx, hallID, requesterID); err != nil {
		return nil, err
	}
	staff, err := s.repo.ListStaff(ctx, hallID)
	if err != nil {
		return nil, err
	}
	out := make([]StaffResponse, len(staff))
	for i := range staff {
		out[i] = NewStaffResponse(&staff[i])
	}
	return out, nil
}

// RequireAccess returns nil when the requester is the owner or staff of the
// hall. Other domains (booking lists, venue management) gate through this.
func (s *Service) RequireAccess(ctx context.Context, hallID, requesterID uuid.UUID) error {
	h, err := s.GetByID(ctx, hallID)
	if err != nil {
		return err
	}
	if h.OwnerID == requesterID {
		return nil
	}
	isStaff, err := s.repo.IsStaff(ctx, hallID, requesterID)
	if err != nil {
		return err
	}
	if !isStaff {
		return ErrNotHallStaff
	}
	return nil
}

// UploadDocument stores a hall document in object storage. Owner only.
func (s *Service) UploadDocument(ctx context.Context, hallID, requesterID uuid.UUID, filename, contentType string, size int64, reader io.Reader) (*DocumentResponse, error) {
	h, err := s.GetByID(ctx, hallID)
	if err != nil {
		return nil, err
	}
	if h.OwnerID != requesterID {
		return nil, ErrNotHallOwner
	}

	docID := uuid.New()
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("halls/%s/documents/%s%s", hallID, docID, ext)

	if err := s.storage.Put(ctx, key, reader, contentType); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	doc := &Document{
		ID:          docID,
		HallID:      hallID,
		Name:        path.Base(filename),
		ObjectKey:   key,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now(),
	}
	if err := s.repo.AddDocument(ctx, doc); err != nil {
		_ = s.storage.Delete(ctx, key)
		return nil, err
	}

	resp := s.documentResponse(doc)
	return &resp, nil
}

// ListDocuments lists hall documents. Owner or staff.
func (s *Service) ListDocuments(ctx context.Context, hallID, requesterID uuid.UUID) ([]DocumentResponse, error) {
	if err := s.RequireAccess(ctx, hallID, requesterID); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListDocuments(ctx, hallID)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = s.documentResponse(&docs[i])
	}
	return out, nil
}

// DeleteDocument removes a document from storage and the database. Owner only.
func (s *Service) DeleteDocument(ctx context.Context, hallID, requesterID, docID uuid.UUID) error {
	h, err := s.GetByID(ctx, hallID)
	if err != nil {
		return err
	}
	if h.OwnerID != requesterID {
		return ErrNotHallOwner
	}

	doc, err := s.repo.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if doc == nil || doc.HallID != hallID {
		return ErrDocumentNotFound
	}

	if err := s.repo.DeleteDocument(ctx, docID); err != nil {
		return err
	}
	_ = s.storage.Delete(ctx, doc.ObjectKey)
	return nil
}

func (s *Service) documentResponse(d *Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		Name:        d.Name,
		ContentType: d.ContentType,
		Size:        d.Size,
		URL:         s.storage.GetURL(d.ObjectKey),
		UploadedAt:  d.UploadedAt.Format(time.RFC3339),
	}
}

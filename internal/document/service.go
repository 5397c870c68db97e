package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RentaDrive/RentaDrive/internal/user"
)

var (
	// ErrNotAllowed 当前用户无权访问该证件。
	ErrNotAllowed = errors.New("not allowed")
	// ErrAlreadyVerified 证件已审核，不允许重复审核。
	ErrAlreadyVerified = errors.New("document already verified")
)

// Service 证件上传 / 查询 / 审核。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// UploadInput 一次证件上传。
type UploadInput struct {
	UserID    string
	BookingID *string
	Type      Type
	FileURL   string
}

// Upload 登记一条证件记录，初始为未审核。
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Document, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	in.UserID = strings.TrimSpace(in.UserID)
	in.FileURL = strings.TrimSpace(in.FileURL)
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id required")
	}
	if in.FileURL == "" {
		return nil, fmt.Errorf("file_url required")
	}
	if !ValidType(in.Type) {
		return nil, fmt.Errorf("unknown document type %q", in.Type)
	}

	d := &Document{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		BookingID: in.BookingID,
		Type:      in.Type,
		FileURL:   in.FileURL,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

// Verify 管理员审核证件，记录审核人与时间。
func (s *Service) Verify(ctx context.Context, docID, verifierID string, verifierRole user.Role) (*Document, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if verifierRole != user.RoleAdmin {
		return nil, ErrNotAllowed
	}

	d, err := s.repo.FindByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if d.IsVerified {
		return nil, ErrAlreadyVerified
	}

	now := time.Now()
	d.IsVerified = true
	d.VerifiedBy = &verifierID
	d.VerifiedAt = &now
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return d, nil
}

// Get 返回单条证件；普通用户只能看自己的。
func (s *Service) Get(ctx context.Context, docID, requesterID string, requesterRole user.Role) (*Document, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	d, err := s.repo.FindByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if requesterRole != user.RoleAdmin && d.UserID != requesterID {
		return nil, ErrNotAllowed
	}
	return d, nil
}

// ListByUser 按用户列出证件。
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.repo.ListByUser(ctx, userID)
}

// ListByBooking 按订单列出证件。
func (s *Service) ListByBooking(ctx context.Context, bookingID string) ([]Document, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.repo.ListByBooking(ctx, bookingID)
}

package service

import (
	"compliance-registry/internal/apperr"
	"compliance-registry/internal/client"
	"compliance-registry/internal/dto"
	"compliance-registry/internal/model"
	"compliance-registry/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

type CompanyService interface {
	Register(ctx context.Context, userID uint, req *dto.CreateCompanyRequest) (*model.Company, error)
	GetOwned(ctx context.Context, userID, companyID uint) (*model.Company, string, error)
	// Validate applies an admin approve/reject decision to a company.
	Validate(ctx context.Context, companyID uint, decision, rejectionReason string) (*dto.ValidateCompanyResponse, error)
	UpdateCompany(ctx context.Context, userID, companyID uint, req *dto.UpdateCompanyRequest) (*model.Company, error)
	UpdateScore(ctx context.Context, userID, companyID, scoreID uint, req *dto.UpdateScoreRequest) (*model.Score, *model.Company, error)
}

type companyServiceImpl struct {
	companyRepo      repository.CompanyRepository
	notificationRepo repository.NotificationRepository
	fileStorage      client.FileStorage
}

func NewCompanyService(
	companyRepo repository.CompanyRepository,
	notificationRepo repository.NotificationRepository,
	fileStorage client.FileStorage,
) CompanyService {
	return &companyServiceImpl{
		companyRepo:      companyRepo,
		notificationRepo: notificationRepo,
		fileStorage:      fileStorage,
	}
}

// adminDecisionStatus resolves the status an admin decision leads to from
// the company's current status.
func adminDecisionStatus(old, decision string) string {
	if decision == model.CompanyApproved {
		return model.CompanyApproved
	}
	// reject
	switch old {
	case model.CompanyApproved:
		return model.CompanyReEvaluation
	case model.CompanyPending, model.CompanyReEvaluation, model.CompanyRevisionRequested, model.CompanyRejected:
		return model.CompanyRejected
	}
	return old
}

// ownerEditStatus resolves the status an owner edit leads to: approved
// profiles go back for re-evaluation, rejected ones become
// revision-requested, everything else keeps its status.
func ownerEditStatus(old string) string {
	switch old {
	case model.CompanyApproved:
		return model.CompanyReEvaluation
	case model.CompanyRejected:
		return model.CompanyRevisionRequested
	}
	return old
}

func (s *companyServiceImpl) Register(ctx context.Context, userID uint, req *dto.CreateCompanyRequest) (*model.Company, error) {
	if req.Name == "" || req.Email == "" || req.PhoneNumber == "" || req.CR == "" {
		return nil, apperr.Validation("name, email, phone_number and cr are required")
	}

	if req.LogoKey != "" {
		if err := s.requireObject(ctx, req.LogoKey); err != nil {
			return nil, err
		}
	}

	company := &model.Company{
		UserID:      userID,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		CR:          req.CR,
		Website:     req.Website,
		Description: req.Description,
		Tagline:     req.Tagline,
		Logo:        req.LogoKey,
		Awards:      req.Awards,
		Sectors:     req.Sectors,
		Status:      model.CompanyPending,
		LastUpdated: time.Now(),
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("company with cr %s already registered", req.CR)
		}
		return nil, fmt.Errorf("create company: %w", err)
	}

	return company, nil
}

func (s *companyServiceImpl) GetOwned(ctx context.Context, userID, companyID uint) (*model.Company, string, error) {
	company, err := s.companyRepo.FindByIDAndOwner(ctx, companyID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperr.NotFound("company %d", companyID)
	}
	if err != nil {
		return nil, "", fmt.Errorf("find company: %w", err)
	}

	var logoURL string
	if company.Logo != "" {
		url, _, err := s.fileStorage.SignedURL(ctx, company.Logo)
		if err != nil {
			log.Printf("sign logo url for company %d: %v", companyID, err)
		} else {
			logoURL = url
		}
	}

	return company, logoURL, nil
}

func (s *companyServiceImpl) Validate(ctx context.Context, companyID uint, decision, rejectionReason string) (*dto.ValidateCompanyResponse, error) {
	if decision != model.CompanyApproved && decision != model.CompanyRejected {
		return nil, apperr.Validation("invalid status %q, admin can only select approved or rejected", decision)
	}
	if decision == model.CompanyRejected && rejectionReason == "" {
		return nil, apperr.Validation("rejection reason is required for rejection")
	}

	company, err := s.companyRepo.FindByID(ctx, companyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("company %d", companyID)
	}
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}

	oldStatus := company.Status
	newStatus := adminDecisionStatus(oldStatus, decision)

	if newStatus == oldStatus {
		// no-op decision, answer without a write
		return &dto.ValidateCompanyResponse{
			Message:         fmt.Sprintf("Company %q is already %s.", company.Name, newStatus),
			CompanyID:       company.ID,
			Status:          company.Status,
			RejectionReason: company.RejectionReason,
			Changed:         false,
		}, nil
	}

	if !model.ValidCompanyStatus(newStatus) {
		return nil, fmt.Errorf("computed invalid company status %q", newStatus)
	}

	company.Status = newStatus
	if newStatus == model.CompanyRejected {
		company.RejectionReason = &rejectionReason
	} else {
		company.RejectionReason = nil
	}
	company.LastUpdated = time.Now()

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, fmt.Errorf("save company: %w", err)
	}

	notification := &model.Notification{
		UserID:  company.UserID,
		Message: fmt.Sprintf("Company %q status changed from %q to %q.", company.Name, oldStatus, newStatus),
		Type:    "COMPANY",
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("notify owner of company %d: %v", company.ID, err)
	}

	return &dto.ValidateCompanyResponse{
		Message:         fmt.Sprintf("Company %q status changed from %q to %q.", company.Name, oldStatus, newStatus),
		CompanyID:       company.ID,
		Status:          company.Status,
		RejectionReason: company.RejectionReason,
		Changed:         true,
	}, nil
}

func (s *companyServiceImpl) UpdateCompany(ctx context.Context, userID, companyID uint, req *dto.UpdateCompanyRequest) (*model.Company, error) {
	company, err := s.companyRepo.FindByIDAndOwner(ctx, companyID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("company %d", companyID)
	}
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}

	if req.LogoKey != nil && *req.LogoKey != "" {
		if err := s.requireObject(ctx, *req.LogoKey); err != nil {
			return nil, err
		}
		company.Logo = *req.LogoKey
	}

	applyIfSet(&company.Name, req.Name)
	applyIfSet(&company.Email, req.Email)
	applyIfSet(&company.PhoneNumber, req.PhoneNumber)
	applyIfSet(&company.CR, req.CR)
	applyIfSet(&company.Website, req.Website)
	applyIfSet(&company.Description, req.Description)
	applyIfSet(&company.Tagline, req.Tagline)
	if req.Awards != nil {
		company.Awards = req.Awards
	}
	if req.Sectors != nil {
		company.Sectors = req.Sectors
	}

	s.applyOwnerEdit(company)

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, fmt.Errorf("save company: %w", err)
	}

	return company, nil
}

func (s *companyServiceImpl) UpdateScore(ctx context.Context, userID, companyID, scoreID uint, req *dto.UpdateScoreRequest) (*model.Score, *model.Company, error) {
	company, err := s.companyRepo.FindByIDAndOwner(ctx, companyID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.NotFound("company %d", companyID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find company: %w", err)
	}

	score, err := s.companyRepo.FindScore(ctx, scoreID, companyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.NotFound("score %d for company %d", scoreID, companyID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find score: %w", err)
	}

	if req.Year != nil {
		score.Year = *req.Year
	}
	if req.Score != nil {
		score.Score = *req.Score
	}
	if req.ScoreType != nil {
		score.ScoreType = *req.ScoreType
	}
	if req.FileKey != nil && *req.FileKey != "" {
		if err := s.requireObject(ctx, *req.FileKey); err != nil {
			return nil, nil, err
		}
		score.File = *req.FileKey
	}

	s.applyOwnerEdit(company)

	if err := s.companyRepo.SaveScore(ctx, score); err != nil {
		return nil, nil, fmt.Errorf("save score: %w", err)
	}
	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, nil, fmt.Errorf("save company: %w", err)
	}

	return score, company, nil
}

// applyOwnerEdit runs the owner-edit status transition and keeps the
// rejection reason consistent with it.
func (s *companyServiceImpl) applyOwnerEdit(company *model.Company) {
	newStatus := ownerEditStatus(company.Status)
	if newStatus != company.Status {
		log.Printf("company %d status %q -> %q after owner edit", company.ID, company.Status, newStatus)
		company.Status = newStatus
	}
	if company.Status != model.CompanyRejected {
		company.RejectionReason = nil
	}
	company.LastUpdated = time.Now()
}

func (s *companyServiceImpl) requireObject(ctx context.Context, key string) error {
	ok, err := s.fileStorage.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check storage object %s: %w", key, err)
	}
	if !ok {
		return apperr.Validation("object %s not found in storage", key)
	}
	return nil
}

func applyIfSet(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

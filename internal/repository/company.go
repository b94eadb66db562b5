package repository

import (
	"compliance-registry/internal/model"
	"context"

	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, companyID uint) (*model.Company, error)
	// FindByIDAndOwner returns the company only when it belongs to userID;
	// ownership failures surface as record-not-found.
	FindByIDAndOwner(ctx context.Context, companyID, userID uint) (*model.Company, error)
	Save(ctx context.Context, company *model.Company) error

	CreateScore(ctx context.Context, score *model.Score) error
	FindScore(ctx context.Context, scoreID, companyID uint) (*model.Score, error)
	SaveScore(ctx context.Context, score *model.Score) error
}

type companyRepoImpl struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepoImpl{
		db: db,
	}
}

func (r *companyRepoImpl) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepoImpl) FindByID(ctx context.Context, companyID uint) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).
		Where("id = ?", companyID).
		First(&company).Error

	if err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *companyRepoImpl) FindByIDAndOwner(ctx context.Context, companyID, userID uint) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", companyID, userID).
		First(&company).Error

	if err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *companyRepoImpl) Save(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

func (r *companyRepoImpl) CreateScore(ctx context.Context, score *model.Score) error {
	return r.db.WithContext(ctx).Create(score).Error
}

func (r *companyRepoImpl) FindScore(ctx context.Context, scoreID, companyID uint) (*model.Score, error) {
	var score model.Score
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", scoreID, companyID).
		First(&score).Error

	if err != nil {
		return nil, err
	}

	return &score, nil
}

func (r *companyRepoImpl) SaveScore(ctx context.Context, score *model.Score) error {
	return r.db.WithContext(ctx).Save(score).Error
}

package service

import (
	"context"

	"smart-inventory/internal/model"
	"smart-inventory/internal/repository"
	"smart-inventory/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SupplierService interface {
	CreateSupplier(ctx context.Context, req *SupplierRequest, actor Actor) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, req *SupplierRequest, actor Actor) (*model.Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID, actor Actor) error
	GetSupplier(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
}

type SupplierRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	ContactPerson string `json:"contact_person" validate:"required,max=255"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,max=50"`
}

type supplierService struct {
	db           *gorm.DB
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
}

func NewSupplierService(db *gorm.DB, sRepo repository.SupplierRepository, pRepo repository.ProductRepository) SupplierService {
	return &supplierService{db: db, supplierRepo: sRepo, productRepo: pRepo}
}

func (s *supplierService) CreateSupplier(ctx context.Context, req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	supplier := &model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
	}
	supplier.CreatedBy = actor.ID
	supplier.UpdatedBy = actor.ID

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, operational("create supplier", err)
	}
	zap.L().Info("supplier created", zap.String("name", supplier.Name), zap.String("actor", actor.Email))
	return supplier, nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id uuid.UUID, req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	supplier := &model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
	}
	supplier.ID = id
	supplier.UpdatedBy = actor.ID

	ok, err := s.supplierRepo.Update(ctx, supplier)
	if err != nil {
		return nil, operational("update supplier", err)
	}
	if !ok {
		return nil, ErrSupplierNotFound
	}
	return s.GetSupplier(ctx, id)
}

// DeleteSupplier refuses while any product still references the supplier.
func (s *supplierService) DeleteSupplier(ctx context.Context, id uuid.UUID, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		suppliers := s.supplierRepo.WithTx(tx)

		if _, err := suppliers.FindByID(ctx, id); err != nil {
			if repository.IsNotFound(err) {
				return ErrSupplierNotFound
			}
			return operational("load supplier", err)
		}

		n, err := s.productRepo.WithTx(tx).CountBySupplier(ctx, id)
		if err != nil {
			return operational("count supplier products", err)
		}
		if n > 0 {
			return ErrSupplierHasProducts
		}

		deleted, err := suppliers.DeleteIfUnreferenced(ctx, id)
		if err != nil {
			return operational("delete supplier", err)
		}
		if !deleted {
			return ErrSupplierHasProducts
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindOperational {
			zap.L().Error("delete supplier", zap.String("supplier_id", id.String()), zap.Error(err))
		}
		return err
	}
	zap.L().Info("supplier deleted", zap.String("supplier_id", id.String()), zap.String("actor", actor.Email))
	return nil
}

func (s *supplierService) GetSupplier(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSupplierNotFound
		}
		return nil, operational("load supplier", err)
	}
	return supplier, nil
}

func (s *supplierService) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	suppliers, err := s.supplierRepo.FindAll(ctx)
	if err != nil {
		return nil, operational("list suppliers", err)
	}
	return suppliers, nil
}

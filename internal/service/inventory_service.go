package service

import (
	"context"
	"fmt"
	"time"

	"smart-inventory/internal/metrics"
	"smart-inventory/internal/model"
	"smart-inventory/internal/repository"
	"smart-inventory/internal/ws"
	"smart-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InventoryService is the stock ledger: every quantity change goes through
// a movement, and products with movements cannot be deleted.
type InventoryService interface {
	CreateProduct(ctx context.Context, req *ProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ProductHistory(ctx context.Context, id uuid.UUID) (*model.Product, []model.StockMovement, error)

	ApplyIncoming(ctx context.Context, productID uuid.UUID, quantity int, actor Actor) (*model.StockMovement, error)
	ApplyOutgoing(ctx context.Context, productID uuid.UUID, quantity int, actor Actor) (*model.StockMovement, error)
	ReverseMovement(ctx context.Context, movementID uuid.UUID, actor Actor) (*model.Product, error)
	ListMovements(ctx context.Context) ([]model.StockMovement, error)
	GetMovement(ctx context.Context, id uuid.UUID) (*model.StockMovement, error)
}

// ProductRequest carries the fields a caller may set on a product.
// QuantityInStock is only honoured on create.
type ProductRequest struct {
	Name            string          `json:"name" validate:"required,max=255"`
	Category        string          `json:"category" validate:"required,max=100"`
	SupplierID      uuid.UUID       `json:"supplier_id" validate:"uuid_required"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	QuantityInStock int             `json:"quantity_in_stock" validate:"gte=0"`
	ReorderLevel    int             `json:"reorder_level" validate:"gte=0"`
}

type inventoryService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	supplierRepo repository.SupplierRepository
	hub          Publisher
	now          clock
}

func NewInventoryService(db *gorm.DB, pRepo repository.ProductRepository, mRepo repository.MovementRepository, sRepo repository.SupplierRepository, hub Publisher) InventoryService {
	return &inventoryService{
		db:           db,
		productRepo:  pRepo,
		movementRepo: mRepo,
		supplierRepo: sRepo,
		hub:          hub,
		now:          time.Now,
	}
}

func (s *inventoryService) validateProduct(ctx context.Context, req *ProductRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(errs)
	}
	if req.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if _, err := s.supplierRepo.FindByID(ctx, req.SupplierID); err != nil {
		if repository.IsNotFound(err) {
			return ErrUnknownSupplier
		}
		return operational("load supplier", err)
	}
	return nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *ProductRequest, actor Actor) (*model.Product, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:            req.Name,
		Category:        req.Category,
		SupplierID:      req.SupplierID,
		UnitPrice:       req.UnitPrice.Round(2),
		QuantityInStock: req.QuantityInStock,
		ReorderLevel:    req.ReorderLevel,
		LastUpdated:     s.now(),
	}
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, operational("create product", err)
	}

	s.publish("product_created", product, actor, fmt.Sprintf("%s created product '%s'", actor.Name, product.Name))
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:         req.Name,
		Category:     req.Category,
		SupplierID:   req.SupplierID,
		UnitPrice:    req.UnitPrice.Round(2),
		ReorderLevel: req.ReorderLevel,
		LastUpdated:  s.now(),
	}
	product.ID = id
	product.UpdatedBy = actor.ID

	ok, err := s.productRepo.UpdateDetails(ctx, product)
	if err != nil {
		return nil, operational("update product", err)
	}
	if !ok {
		return nil, ErrProductNotFound
	}

	updated, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish("product_updated", updated, actor, fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name))
	return updated, nil
}

// DeleteProduct refuses while any movement references the product. The
// final delete re-checks that condition in the same statement.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error {
	var name string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		product, err := products.FindByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrProductNotFound
			}
			return operational("load product", err)
		}
		name = product.Name

		referenced, err := s.movementRepo.WithTx(tx).ExistsForProduct(ctx, id)
		if err != nil {
			return operational("check movement history", err)
		}
		if referenced {
			return ErrProductHasHistory
		}

		deleted, err := products.DeleteIfUnreferenced(ctx, id)
		if err != nil {
			return operational("delete product", err)
		}
		if !deleted {
			return ErrProductHasHistory
		}
		return nil
	})
	if err != nil {
		s.logFailure("delete product", err, zap.String("product_id", id.String()))
		return err
	}

	s.publish("product_deleted", map[string]interface{}{"id": id, "name": name}, actor,
		fmt.Sprintf("%s deleted product '%s'", actor.Name, name))
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, operational("load product", err)
	}
	return product, nil
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, operational("list products", err)
	}
	for i := range products {
		if products[i].IsLowStock() {
			zap.L().Warn("low stock",
				zap.String("product", products[i].Name),
				zap.Int("quantity", products[i].QuantityInStock),
				zap.Int("reorder_level", products[i].ReorderLevel),
			)
		}
	}
	return products, nil
}

// ProductHistory returns the product and its movements, newest first.
func (s *inventoryService) ProductHistory(ctx context.Context, id uuid.UUID) (*model.Product, []model.StockMovement, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	movements, err := s.movementRepo.FindByProduct(ctx, id)
	if err != nil {
		return nil, nil, operational("load product history", err)
	}
	return product, movements, nil
}

// ApplyIncoming adds quantity units to the product and records an IN movement.
func (s *inventoryService) ApplyIncoming(ctx context.Context, productID uuid.UUID, quantity int, actor Actor) (*model.StockMovement, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := s.now()
	movement := &model.StockMovement{
		ProductID: productID,
		Type:      model.MovementIn,
		Quantity:  quantity,
		Timestamp: now,
		CreatedBy: actor.ID,
	}

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		ok, err := products.IncrementStock(ctx, productID, quantity, now, actor.ID)
		if err != nil {
			return operational("increment stock", err)
		}
		if !ok {
			return ErrProductNotFound
		}
		if err := s.movementRepo.WithTx(tx).Create(ctx, movement); err != nil {
			return operational("record movement", err)
		}
		product, err = products.FindByID(ctx, productID)
		return wrap("reload product", err)
	})
	if err != nil {
		s.logFailure("apply incoming", err, zap.String("product_id", productID.String()))
		return nil, err
	}

	movement.Product = product
	s.afterMovement(movement, product, actor)
	return movement, nil
}

// ApplyOutgoing removes quantity units. It fails rather than letting the
// quantity drop below zero.
func (s *inventoryService) ApplyOutgoing(ctx context.Context, productID uuid.UUID, quantity int, actor Actor) (*model.StockMovement, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := s.now()
	movement := &model.StockMovement{
		ProductID: productID,
		Type:      model.MovementOut,
		Quantity:  quantity,
		Timestamp: now,
		CreatedBy: actor.ID,
	}

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		ok, err := products.DecrementStock(ctx, productID, quantity, now, actor.ID)
		if err != nil {
			return operational("decrement stock", err)
		}
		if !ok {
			if _, err := products.FindByID(ctx, productID); err != nil {
				if repository.IsNotFound(err) {
					return ErrProductNotFound
				}
				return operational("load product", err)
			}
			return ErrInsufficientStock
		}
		if err := s.movementRepo.WithTx(tx).Create(ctx, movement); err != nil {
			return operational("record movement", err)
		}
		product, err = products.FindByID(ctx, productID)
		return wrap("reload product", err)
	})
	if err != nil {
		s.logFailure("apply outgoing", err, zap.String("product_id", productID.String()))
		return nil, err
	}

	movement.Product = product
	s.afterMovement(movement, product, actor)
	return movement, nil
}

// ReverseMovement deletes a movement and undoes its effect. Reversing an IN
// movement never takes the quantity below zero; whatever the floor absorbs
// is not restored later.
func (s *inventoryService) ReverseMovement(ctx context.Context, movementID uuid.UUID, actor Actor) (*model.Product, error) {
	var (
		movement *model.StockMovement
		product  *model.Product
		clamped  bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		movements := s.movementRepo.WithTx(tx)

		var err error
		movement, err = movements.FindByID(ctx, movementID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrMovementNotFound
			}
			return operational("load movement", err)
		}

		// the conditional delete makes a concurrent second reversal a NotFound
		deleted, err := movements.Delete(ctx, movementID)
		if err != nil {
			return operational("delete movement", err)
		}
		if !deleted {
			return ErrMovementNotFound
		}

		now := s.now()
		var ok bool
		if movement.Type != model.MovementIn && movement.Type != model.MovementOut {
			return operational("reverse movement", fmt.Errorf("unknown movement type %q", movement.Type))
		}
		// undo the signed delta; removing stock floors at zero
		if delta := movement.Delta(); delta > 0 {
			if movement.Product != nil {
				clamped = movement.Product.QuantityInStock < delta
			}
			ok, err = products.DecrementStockFloored(ctx, movement.ProductID, delta, now, actor.ID)
		} else {
			ok, err = products.IncrementStock(ctx, movement.ProductID, -delta, now, actor.ID)
		}
		if err != nil {
			return operational("reverse stock", err)
		}
		if !ok {
			return ErrProductNotFound
		}

		product, err = products.FindByID(ctx, movement.ProductID)
		return wrap("reload product", err)
	})
	if err != nil {
		s.logFailure("reverse movement", err, zap.String("movement_id", movementID.String()))
		return nil, err
	}

	metrics.MovementReversals.Inc()
	if clamped {
		metrics.ReversalClamps.Inc()
		zap.L().Info("reversal clamped at zero",
			zap.String("movement_id", movementID.String()),
			zap.String("product", product.Name),
			zap.Int("quantity", movement.Quantity),
		)
	}

	s.publish("movement_reversed", map[string]interface{}{
		"movement_id": movementID,
		"type":        movement.Type,
		"quantity":    movement.Quantity,
		"product_id":  product.ID,
		"new_stock":   product.QuantityInStock,
	}, actor, fmt.Sprintf("%s reversed %s movement of %d units of '%s'", actor.Name, movement.Type, movement.Quantity, product.Name))
	return product, nil
}

func (s *inventoryService) ListMovements(ctx context.Context) ([]model.StockMovement, error) {
	movements, err := s.movementRepo.FindAll(ctx)
	if err != nil {
		return nil, operational("list movements", err)
	}
	return movements, nil
}

func (s *inventoryService) GetMovement(ctx context.Context, id uuid.UUID) (*model.StockMovement, error) {
	movement, err := s.movementRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrMovementNotFound
		}
		return nil, operational("load movement", err)
	}
	return movement, nil
}

func (s *inventoryService) afterMovement(m *model.StockMovement, product *model.Product, actor Actor) {
	metrics.StockMovements.WithLabelValues(string(m.Type)).Inc()
	metrics.StockUnits.WithLabelValues(string(m.Type)).Add(float64(m.Quantity))

	verb := "added"
	if m.Type == model.MovementOut {
		verb = "removed"
	}
	if product.IsLowStock() {
		zap.L().Warn("low stock",
			zap.String("product", product.Name),
			zap.Int("quantity", product.QuantityInStock),
			zap.Int("reorder_level", product.ReorderLevel),
		)
	}

	s.publish("movement_created", map[string]interface{}{
		"id":         m.ID,
		"type":       m.Type,
		"quantity":   m.Quantity,
		"product_id": product.ID,
		"product":    product.Name,
		"new_stock":  product.QuantityInStock,
		"low_stock":  product.IsLowStock(),
	}, actor, fmt.Sprintf("%s %s %d units of '%s' (%s)", actor.Name, verb, m.Quantity, product.Name, m.Type))
}

func (s *inventoryService) publish(action string, data interface{}, actor Actor, message string) {
	s.hub.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  action,
		Data:    data,
		User:    actor.Name,
		Message: message,
	})
}

func (s *inventoryService) logFailure(op string, err error, fields ...zap.Field) {
	if KindOf(err) != KindOperational {
		return
	}
	zap.L().Error(op, append(fields, zap.Error(err))...)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/textnorm"
)

const maxSearchResults = 50

// ProductUseCase casos de uso del catálogo. El stock solo cambia vía movimientos (Ledger).
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	txRunner   inventory.TxRunner
	ledger     *inventory.Ledger
	dispatcher *events.Dispatcher
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	txRunner inventory.TxRunner,
	ledger *inventory.Ledger,
	dispatcher *events.Dispatcher,
) *ProductUseCase {
	return &ProductUseCase{
		repo:       repo,
		categories: categories,
		txRunner:   txRunner,
		ledger:     ledger,
		dispatcher: dispatcher,
	}
}

// Create crea el producto con stock 0 y, si InitialStock > 0, registra la entrada inicial
// en la misma transacción (movimiento "in" con nota "Stock inicial").
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	if in.Name == "" || in.SKU == "" {
		return nil, fmt.Errorf("%w: nombre y sku son obligatorios", domain.ErrInvalidInput)
	}
	if err := validateMoney("price", in.Price); err != nil {
		return nil, err
	}
	if err := validateMoney("cost", in.Cost); err != nil {
		return nil, err
	}
	if in.InitialStock < 0 || in.MinStock < 0 {
		return nil, fmt.Errorf("%w: stock inicial y mínimo no pueden ser negativos", domain.ErrInvalidInput)
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:         uuid.New().String(),
		Name:       in.Name,
		SKU:        in.SKU,
		Barcode:    strings.TrimSpace(in.Barcode),
		CategoryID: in.CategoryID,
		Price:      in.Price.Round(2),
		Cost:       in.Cost.Round(2),
		MinStock:   in.MinStock,
		Active:     true,
		SearchName: textnorm.Normalize(in.Name),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var applied *inventory.Applied
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.Products().Create(ctx, product); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return fmt.Errorf("%w: sku %q o código de barras ya existe", domain.ErrDuplicate, product.SKU)
			}
			return err
		}
		if in.InitialStock == 0 {
			return nil
		}
		var err error
		applied, err = uc.ledger.Apply(ctx, uow, inventory.MovementCommand{
			ProductID: product.ID,
			Type:      entity.MovementTypeIn,
			Quantity:  in.InitialStock,
			ActorID:   actorID,
			Note:      "Stock inicial",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if applied != nil {
		product = applied.Product
		uc.dispatcher.Dispatch(ctx, inventory.StockChangedEvent(applied))
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// Update actualiza datos del catálogo. No toca stock ni estado.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
		}
		product.Name = name
		product.SearchName = textnorm.Normalize(name)
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku == "" {
			return nil, fmt.Errorf("%w: sku vacío", domain.ErrInvalidInput)
		}
		product.SKU = sku
	}
	if in.Barcode != nil {
		product.Barcode = strings.TrimSpace(*in.Barcode)
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.Price != nil {
		if err := validateMoney("price", *in.Price); err != nil {
			return nil, err
		}
		product.Price = in.Price.Round(2)
	}
	if in.Cost != nil {
		if err := validateMoney("cost", *in.Cost); err != nil {
			return nil, err
		}
		product.Cost = in.Cost.Round(2)
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return nil, fmt.Errorf("%w: stock mínimo negativo", domain.ErrInvalidInput)
		}
		product.MinStock = *in.MinStock
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: sku %q o código de barras ya existe", domain.ErrDuplicate, product.SKU)
		}
		return nil, err
	}
	return ToProductResponse(product), nil
}

// SetActive activa o desactiva el producto. Un producto inactivo no se puede vender.
func (uc *ProductUseCase) SetActive(ctx context.Context, id string, active bool) (*dto.ProductResponse, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	if err := uc.repo.SetActive(ctx, id, active, time.Now().UTC()); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	return toProductList(list, limit, offset), nil
}

// Search busca por nombre (sin tildes ni mayúsculas), SKU o código de barras exacto.
func (uc *ProductUseCase) Search(ctx context.Context, q string, limit int) ([]dto.ProductResponse, error) {
	term := textnorm.Normalize(q)
	if term == "" {
		return nil, fmt.Errorf("%w: término de búsqueda vacío", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	list, err := uc.repo.Search(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	return toProductList(list, limit, 0).Items, nil
}

// LowStock lista productos activos con stock en o por debajo del mínimo.
func (uc *ProductUseCase) LowStock(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.ListLowStock(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return toProductList(list, limit, offset), nil
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return product, nil
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	c, err := uc.categories.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, categoryID)
	}
	return nil
}

func validateMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s no puede ser negativo", domain.ErrInvalidInput, field)
	}
	if !d.Equal(d.Round(2)) {
		return fmt.Errorf("%w: %s admite máximo 2 decimales", domain.ErrInvalidInput, field)
	}
	return nil
}

func toProductList(list []*entity.Product, limit, offset int) *dto.ProductListResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
}

// ToProductResponse convierte la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		Barcode:      p.Barcode,
		CategoryID:   p.CategoryID,
		Price:        p.Price,
		Cost:         p.Cost,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		LowStock:     p.IsLowStock(),
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

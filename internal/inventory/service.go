package inventory

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/modvice/shopstock/internal/domain"
)

// Event topics published on the application bus.
const (
	TopicSaleRecorded   = "inventory.sale.recorded"
	TopicReorderCreated = "inventory.reorder.created"
)

// TransactionRequest describes a requested stock transaction.
type TransactionRequest struct {
	ProductID int64   `json:"productId,string"`
	Type      string  `json:"type"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
}

// Service implements the stock adjustment operation and the reorder advisor.
// All writes go through the repositories; the Sale decrement is a single
// conditional update so concurrent sales cannot jointly drive a quantity
// negative.
type Service struct {
	productRepo ProductRepository
	saleRepo    SaleRepository
	reorderRepo ReorderRepository
	bus         EventBus.Bus
}

// NewService creates the inventory service. bus may be nil.
func NewService(
	productRepo ProductRepository,
	saleRepo SaleRepository,
	reorderRepo ReorderRepository,
	bus EventBus.Bus,
) *Service {
	return &Service{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		reorderRepo: reorderRepo,
		bus:         bus,
	}
}

func (s *Service) validate(req TransactionRequest) error {
	if req.ProductID == 0 {
		return invalidf("productId", "required")
	}
	switch req.Type {
	case domain.TxSale, domain.TxReturn, domain.TxRestock:
	default:
		return invalidf("type", "must be Sale, Return or Restock")
	}
	if req.Qty < 1 {
		return invalidf("qty", "must be a positive integer")
	}
	if req.UnitPrice < 0 {
		return invalidf("unitPrice", "must be >= 0")
	}
	return nil
}

// signOf returns the ledger amount sign for a transaction kind: Sale and
// Restock entries are stored positive, Returns negative.
func signOf(kind string) float64 {
	if kind == domain.TxReturn {
		return -1
	}
	return 1
}

// RecordTransaction validates the request, applies the stock delta, appends
// the ledger entry and advises a reorder. The reorder step is best-effort:
// its failure is logged and never fails the transaction.
func (s *Service) RecordTransaction(ctx context.Context, req TransactionRequest) (*domain.Product, *domain.Sale, error) {
	if err := s.validate(req); err != nil {
		return nil, nil, err
	}

	p, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, nil, err
	}

	switch req.Type {
	case domain.TxSale:
		if err := s.productRepo.DecrementStock(ctx, p.ID, req.Qty); err != nil {
			return nil, nil, err
		}
	case domain.TxReturn, domain.TxRestock:
		if err := s.productRepo.AdjustStock(ctx, p.ID, req.Qty); err != nil {
			return nil, nil, err
		}
	}

	// reload for the post-adjustment quantity
	p, err = s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, nil, err
	}

	sale := &domain.Sale{
		Date:        time.Now().Format("2006-01-02"),
		ProductID:   p.ID,
		ProductName: p.Name,
		Brand:       p.Brand,
		Barcode:     p.Barcode,
		Image:       p.Image,
		Type:        req.Type,
		Qty:         req.Qty,
		UnitPrice:   req.UnitPrice,
		Amount:      signOf(req.Type) * float64(req.Qty) * req.UnitPrice,
	}
	if err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, nil, err
	}

	if err := s.EnsureReorderIfNeeded(ctx, p); err != nil {
		zap.L().Warn("reorder advice failed",
			zap.Int64("product_id", p.ID),
			zap.Error(err))
	}

	if s.bus != nil {
		s.bus.Publish(TopicSaleRecorded, sale)
	}

	return p, sale, nil
}

// RevertTransaction deletes a ledger entry, optionally reverting the stock
// change it caused. If the product has since been deleted the reversion is
// skipped silently; the entry is deleted regardless.
func (s *Service) RevertTransaction(ctx context.Context, saleID int64, revert bool) error {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return err
	}

	if revert {
		p, err := s.productRepo.GetByID(ctx, sale.ProductID)
		switch err {
		case nil:
			delta := sale.Qty
			if sale.Type != domain.TxSale {
				delta = -sale.Qty
			}
			if err := s.productRepo.AdjustStock(ctx, p.ID, delta); err != nil {
				return err
			}
			if p, err = s.productRepo.GetByID(ctx, sale.ProductID); err == nil {
				if err := s.EnsureReorderIfNeeded(ctx, p); err != nil {
					zap.L().Warn("reorder advice failed on revert",
						zap.Int64("product_id", p.ID),
						zap.Error(err))
				}
			}
		case ErrProductNotFound:
			// product deleted since the transaction; nothing to revert
		default:
			return err
		}
	}

	return s.saleRepo.Delete(ctx, saleID)
}

// EnsureReorderIfNeeded maintains the at-most-one-Pending invariant: if the
// product sits at or below its threshold and no Pending request exists, a
// new suggestion of max(1, 2*threshold - quantity) is created. A concurrent
// insert rejected by the partial unique index is a benign no-op.
func (s *Service) EnsureReorderIfNeeded(ctx context.Context, p *domain.Product) error {
	if p.Quantity > p.ReorderThreshold {
		return nil
	}

	if _, err := s.reorderRepo.GetPending(ctx, p.ID); err == nil {
		return nil
	} else if err != ErrNotFoundPending {
		return err
	}

	suggestion := 2*p.ReorderThreshold - p.Quantity
	if suggestion < 1 {
		suggestion = 1
	}

	req := &domain.ReorderRequest{
		ProductID:     p.ID,
		Status:        domain.ReorderPending,
		QtySuggestion: suggestion,
	}
	if err := s.reorderRepo.Create(ctx, req); err != nil {
		if err == ErrPendingExists {
			return nil
		}
		return err
	}

	zap.L().Info("reorder suggestion created",
		zap.Int64("product_id", p.ID),
		zap.Int("quantity", p.Quantity),
		zap.Int("threshold", p.ReorderThreshold),
		zap.Int("suggestion", suggestion))

	if s.bus != nil {
		s.bus.Publish(TopicReorderCreated, req, p)
	}
	return nil
}

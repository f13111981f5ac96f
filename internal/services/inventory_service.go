package services

import (
	"database/sql"
	"errors"

	"pricebook/internal/domain"
	"pricebook/internal/repos"
)

const (
	StockIn  = "IN_STOCK"
	StockLow = "LOW_STOCK"
	StockOut = "OUT_OF_STOCK"
)

type InventoryService struct {
	Inv   *repos.InventoryRepo
	Prods *repos.ProductRepo // bundle components; nil disables bundled inventory
}

func NewInventoryService(inv *repos.InventoryRepo, prods *repos.ProductRepo) *InventoryService {
	return &InventoryService{Inv: inv, Prods: prods}
}

// StockStatus converts qty to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func StockStatus(qty int) string {
	switch {
	case qty >= 5:
		return StockIn
	case qty > 0:
		return StockLow
	}
	return StockOut
}

// CheckAvailability reports stock for one region. Out of stock items carry the
// announced restock date when there is one.
func (s *InventoryService) CheckAvailability(productID, region string) (domain.Availability, error) {
	qty, err := s.Inv.Qty(productID, region)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.Availability{}, err
	}
	return s.availability(productID, qty)
}

// ProductAvailability sums stock over every region. With includeBundled, a
// bundle's stock is the number of complete bundles its components can build.
func (s *InventoryService) ProductAvailability(productID string, includeBundled bool) (domain.Availability, error) {
	qty, err := s.Inv.TotalQty(productID)
	if err != nil {
		return domain.Availability{}, err
	}
	if includeBundled && s.Prods != nil {
		comps, err := s.Prods.BundleComponents(productID)
		if err != nil {
			return domain.Availability{}, err
		}
		if len(comps) > 0 {
			if qty, err = s.buildable(comps); err != nil {
				return domain.Availability{}, err
			}
		}
	}
	return s.availability(productID, qty)
}

func (s *InventoryService) buildable(comps []domain.BundleComponent) (int, error) {
	n := -1
	for _, c := range comps {
		have, err := s.Inv.TotalQty(c.ComponentID)
		if err != nil {
			return 0, err
		}
		per := c.Qty
		if per < 1 {
			per = 1
		}
		if k := have / per; n < 0 || k < n {
			n = k
		}
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

func (s *InventoryService) availability(productID string, qty int) (domain.Availability, error) {
	a := domain.Availability{Status: StockStatus(qty), Qty: qty}
	if a.Status == StockOut {
		eta, err := s.Inv.RestockDate(productID)
		if err != nil {
			return domain.Availability{}, err
		}
		a.ETA = eta
	}
	return a, nil
}

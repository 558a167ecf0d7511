package memstore

import (
	"context"
	"sort"

	"github.com/georgemunganga/suby-backend/internal/modules/firm"
	"github.com/georgemunganga/suby-backend/internal/modules/integrity"
	"github.com/georgemunganga/suby-backend/internal/modules/product"
	"github.com/google/uuid"
)

var _ integrity.Repository = (*Store)(nil)

func (s *Store) ClearDanglingVendorLinks(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ClearDanglingVendorLinks"); err != nil {
		return 0, err
	}
	var n int64
	for _, v := range s.vendors {
		if v.FirmID == nil {
			continue
		}
		if _, ok := s.firms[*v.FirmID]; !ok {
			v, prev := v, *v.FirmID
			v.FirmID = nil
			record(ctx, func() { v.FirmID = &prev })
			n++
		}
	}
	return n, nil
}

func (s *Store) RelinkVendors(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("RelinkVendors"); err != nil {
		return 0, err
	}

	claimed := map[uuid.UUID]bool{}
	for _, v := range s.vendors {
		if v.FirmID != nil {
			claimed[*v.FirmID] = true
		}
	}
	firms := s.sortedFirms()

	var n int64
	for _, f := range firms {
		if f.VendorID == nil || claimed[f.ID] {
			continue
		}
		v, ok := s.vendors[*f.VendorID]
		if !ok || v.FirmID != nil {
			continue
		}
		id := f.ID
		v.FirmID = &id
		claimed[id] = true
		record(ctx, func() { v.FirmID = nil })
		n++
	}
	return n, nil
}

func (s *Store) PruneFirmProducts(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("PruneFirmProducts"); err != nil {
		return 0, err
	}
	var n int64
	for _, f := range s.firms {
		kept := make([]uuid.UUID, 0, len(f.Products))
		for _, id := range f.Products {
			if p, ok := s.products[id]; ok && p.FirmID != nil && *p.FirmID == f.ID {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(f.Products) {
			f, prev := f, f.Products
			f.Products = kept
			record(ctx, func() { f.Products = prev })
			n++
		}
	}
	return n, nil
}

func (s *Store) FillFirmProducts(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FillFirmProducts"); err != nil {
		return 0, err
	}

	missing := map[uuid.UUID][]*product.Product{}
	for _, p := range s.products {
		if p.FirmID == nil {
			continue
		}
		if f, ok := s.firms[*p.FirmID]; ok && !f.HasProduct(p.ID) {
			missing[f.ID] = append(missing[f.ID], p)
		}
	}

	var n int64
	for firmID, products := range missing {
		sort.Slice(products, func(i, j int) bool { return products[i].CreatedAt.Before(products[j].CreatedAt) })
		f := s.firms[firmID]
		prev := f.Products
		next := append([]uuid.UUID{}, prev...)
		for _, p := range products {
			next = append(next, p.ID)
		}
		f.Products = next
		record(ctx, func() { f.Products = prev })
		n++
	}
	return n, nil
}

func (s *Store) ClearDanglingProductLinks(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ClearDanglingProductLinks"); err != nil {
		return 0, err
	}
	var n int64
	for _, p := range s.products {
		if p.FirmID == nil {
			continue
		}
		if _, ok := s.firms[*p.FirmID]; !ok {
			p, prev := p, *p.FirmID
			p.FirmID = nil
			record(ctx, func() { p.FirmID = &prev })
			n++
		}
	}
	return n, nil
}

func (s *Store) sortedFirms() []*firm.Firm {
	firms := make([]*firm.Firm, 0, len(s.firms))
	for _, f := range s.firms {
		firms = append(firms, f)
	}
	sort.Slice(firms, func(i, j int) bool { return firms[i].CreatedAt.Before(firms[j].CreatedAt) })
	return firms
}

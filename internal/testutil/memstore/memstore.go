// Package memstore is an in-memory implementation of the vendor, firm and
// product repositories for service and handler tests. WithinTx serialises
// transactions and rolls their writes back through an undo log.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/georgemunganga/suby-backend/internal/modules/firm"
	"github.com/georgemunganga/suby-backend/internal/modules/product"
	"github.com/georgemunganga/suby-backend/internal/modules/vendor"
	"github.com/georgemunganga/suby-backend/internal/platform/database"
	"github.com/google/uuid"
)

type txKey struct{}

type txState struct {
	undo []func()
}

// Store holds vendors, firms and products in maps guarded by one mutex.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	vendors  map[uuid.UUID]*vendor.Vendor
	firms    map[uuid.UUID]*firm.Firm
	products map[uuid.UUID]*product.Product
	failures map[string]error
	seq      int64
}

var (
	_ vendor.Repository   = (*Store)(nil)
	_ firm.Repository     = (*Store)(nil)
	_ product.Repository  = (*Store)(nil)
	_ database.TxRunner   = (*Store)(nil)
	_ firm.ProductRemover = (*Store)(nil)
)

func New() *Store {
	return &Store{
		vendors:  map[uuid.UUID]*vendor.Vendor{},
		firms:    map[uuid.UUID]*firm.Firm{},
		products: map[uuid.UUID]*product.Product{},
		failures: map[string]error{},
	}
}

// FailOn makes the named repository method return err until cleared with a
// nil err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txState{}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// record registers an undo step. Callers hold s.mu.
func record(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok {
		tx.undo = append(tx.undo, undo)
	}
}

func (s *Store) fail(method string) error {
	return s.failures[method]
}

// now returns strictly increasing timestamps so creation order is stable.
func (s *Store) now() time.Time {
	s.seq++
	return time.Unix(1700000000, 0).UTC().Add(time.Duration(s.seq) * time.Millisecond)
}

// Seed helpers insert records as-is, skipping every consistency check. They
// are used to simulate drift left behind by older writers.

func (s *Store) PutVendor(v *vendor.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneVendor(v)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
		c.UpdatedAt = c.CreatedAt
	}
	s.vendors[c.ID] = c
}

func (s *Store) PutFirm(f *firm.Firm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneFirm(f)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
		c.UpdatedAt = c.CreatedAt
	}
	s.firms[c.ID] = c
}

func (s *Store) PutProduct(p *product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneProduct(p)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
		c.UpdatedAt = c.CreatedAt
	}
	s.products[c.ID] = c
}

// Counts reports the number of stored vendors, firms and products.
func (s *Store) Counts() (vendors, firms, products int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vendors), len(s.firms), len(s.products)
}

// Vendor repository.

func (s *Store) CreateVendor(ctx context.Context, v *vendor.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateVendor"); err != nil {
		return err
	}
	for _, existing := range s.vendors {
		if existing.Email == v.Email {
			return fmt.Errorf("%w: vendors_email_key", database.ErrDuplicate)
		}
	}
	v.CreatedAt = s.now()
	v.UpdatedAt = v.CreatedAt
	s.vendors[v.ID] = cloneVendor(v)
	id := v.ID
	record(ctx, func() { delete(s.vendors, id) })
	return nil
}

func (s *Store) GetVendorByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetVendorByID"); err != nil {
		return nil, err
	}
	v, ok := s.vendors[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneVendor(v), nil
}

func (s *Store) GetVendorByEmail(ctx context.Context, email string) (*vendor.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vendors {
		if v.Email == email {
			return cloneVendor(v), nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) ListVendors(ctx context.Context) ([]*vendor.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vendors := make([]*vendor.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		vendors = append(vendors, cloneVendor(v))
	}
	sort.Slice(vendors, func(i, j int) bool { return vendors[i].CreatedAt.Before(vendors[j].CreatedAt) })
	return vendors, nil
}

func (s *Store) LinkFirm(ctx context.Context, vendorID, firmID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("LinkFirm"); err != nil {
		return false, err
	}
	v, ok := s.vendors[vendorID]
	if !ok || v.FirmID != nil {
		return false, nil
	}
	id := firmID
	v.FirmID = &id
	record(ctx, func() { v.FirmID = nil })
	return true, nil
}

func (s *Store) UnlinkFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UnlinkFirm"); err != nil {
		return 0, err
	}
	var n int64
	for _, v := range s.vendors {
		if v.FirmID != nil && *v.FirmID == firmID {
			v, prev := v, *v.FirmID
			v.FirmID = nil
			record(ctx, func() { v.FirmID = &prev })
			n++
		}
	}
	return n, nil
}

// Firm repository.

func (s *Store) CreateFirm(ctx context.Context, f *firm.Firm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateFirm"); err != nil {
		return err
	}
	for _, existing := range s.firms {
		if existing.Name == f.Name {
			return fmt.Errorf("%w: firms_firm_name_key", database.ErrDuplicate)
		}
	}
	f.CreatedAt = s.now()
	f.UpdatedAt = f.CreatedAt
	s.firms[f.ID] = cloneFirm(f)
	id := f.ID
	record(ctx, func() { delete(s.firms, id) })
	return nil
}

func (s *Store) GetFirmByID(ctx context.Context, id uuid.UUID) (*firm.Firm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetFirmByID"); err != nil {
		return nil, err
	}
	f, ok := s.firms[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneFirm(f), nil
}

func (s *Store) DeleteFirm(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteFirm"); err != nil {
		return err
	}
	f, ok := s.firms[id]
	if !ok {
		return database.ErrNotFound
	}
	delete(s.firms, id)
	record(ctx, func() { s.firms[id] = f })
	return nil
}

func (s *Store) AddProduct(ctx context.Context, firmID, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AddProduct"); err != nil {
		return err
	}
	f, ok := s.firms[firmID]
	if !ok {
		return database.ErrNotFound
	}
	if f.HasProduct(productID) {
		return nil
	}
	prev := f.Products
	f.Products = append(append([]uuid.UUID{}, prev...), productID)
	record(ctx, func() { f.Products = prev })
	return nil
}

func (s *Store) RemoveProduct(ctx context.Context, firmID, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("RemoveProduct"); err != nil {
		return err
	}
	f, ok := s.firms[firmID]
	if !ok {
		return database.ErrNotFound
	}
	prev := f.Products
	f.Products = without(prev, productID)
	record(ctx, func() { f.Products = prev })
	return nil
}

// Product repository.

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateProduct"); err != nil {
		return err
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = cloneProduct(p)
	id := p.ID
	record(ctx, func() { delete(s.products, id) })
	return nil
}

func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (s *Store) ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListProductsByIDs"); err != nil {
		return nil, err
	}
	products := []*product.Product{}
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok && !seen[id] {
			seen[id] = true
			products = append(products, cloneProduct(p))
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].CreatedAt.Before(products[j].CreatedAt) })
	return products, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteProduct"); err != nil {
		return err
	}
	p, ok := s.products[id]
	if !ok {
		return database.ErrNotFound
	}
	delete(s.products, id)
	record(ctx, func() { s.products[id] = p })
	return nil
}

func (s *Store) DeleteProductsByFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteProductsByFirm"); err != nil {
		return 0, err
	}
	var n int64
	for id, p := range s.products {
		if p.FirmID != nil && *p.FirmID == firmID {
			id, p := id, p
			delete(s.products, id)
			record(ctx, func() { s.products[id] = p })
			n++
		}
	}
	return n, nil
}

func without(ids []uuid.UUID, drop uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func cloneVendor(v *vendor.Vendor) *vendor.Vendor {
	c := *v
	c.FirmID = cloneID(v.FirmID)
	return &c
}

func cloneFirm(f *firm.Firm) *firm.Firm {
	c := *f
	c.VendorID = cloneID(f.VendorID)
	c.Category = append([]string{}, f.Category...)
	c.Region = append([]string{}, f.Region...)
	c.Products = append([]uuid.UUID{}, f.Products...)
	return &c
}

func cloneProduct(p *product.Product) *product.Product {
	c := *p
	c.FirmID = cloneID(p.FirmID)
	c.Category = append([]string{}, p.Category...)
	return &c
}

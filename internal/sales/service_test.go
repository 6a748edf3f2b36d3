package sales

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/migarbe/SisConVen-sub000/internal/commission"
	"github.com/migarbe/SisConVen-sub000/internal/inventory"
	"github.com/migarbe/SisConVen-sub000/internal/ledger"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type memoryState struct {
	products    map[int64]*inventory.Product
	invoices    map[int64]*Invoice
	items       map[int64][]InvoiceItem
	commissions map[int64][]CommissionLine
	payments    map[int64]*Payment
	nextID      int64
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		products:    make(map[int64]*inventory.Product, len(s.products)),
		invoices:    make(map[int64]*Invoice, len(s.invoices)),
		items:       make(map[int64][]InvoiceItem, len(s.items)),
		commissions: make(map[int64][]CommissionLine, len(s.commissions)),
		payments:    make(map[int64]*Payment, len(s.payments)),
		nextID:      s.nextID,
	}
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, inv := range s.invoices {
		ci := *inv
		c.invoices[id] = &ci
	}
	for id, its := range s.items {
		c.items[id] = append([]InvoiceItem(nil), its...)
	}
	for id, ls := range s.commissions {
		c.commissions[id] = append([]CommissionLine(nil), ls...)
	}
	for id, p := range s.payments {
		cp := *p
		c.payments[id] = &cp
	}
	return c
}

// memoryRepo emulates the SQL repository including transaction rollback:
// the callback runs against a snapshot that only replaces live state on
// success.
type memoryRepo struct {
	state *memoryState
}

type memoryTx struct {
	state *memoryState
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{state: &memoryState{
		products:    make(map[int64]*inventory.Product),
		invoices:    make(map[int64]*Invoice),
		items:       make(map[int64][]InvoiceItem),
		commissions: make(map[int64][]CommissionLine),
		payments:    make(map[int64]*Payment),
	}}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := r.state.clone()
	if err := fn(ctx, &memoryTx{state: snapshot}); err != nil {
		return err
	}
	r.state = snapshot
	return nil
}

func (r *memoryRepo) GetInvoice(ctx context.Context, id int64) (InvoiceWithDetails, error) {
	inv, ok := r.state.invoices[id]
	if !ok {
		return InvoiceWithDetails{}, ErrInvoiceNotFound
	}
	detail := InvoiceWithDetails{Invoice: *inv}
	detail.Items = append(detail.Items, r.state.items[id]...)
	detail.CommissionLines = append(detail.CommissionLines, r.state.commissions[id]...)
	for _, p := range r.state.payments {
		if p.InvoiceID == id {
			detail.Payments = append(detail.Payments, *p)
		}
	}
	return detail, nil
}

func (r *memoryRepo) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.state.invoices {
		if req.Status != "" && inv.Status != req.Status {
			continue
		}
		if req.ClientID != 0 && inv.ClientID != req.ClientID {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (r *memoryRepo) ListPendingForClient(ctx context.Context, clientID int64) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.state.invoices {
		if inv.ClientID == clientID && inv.Status != ledger.StatusPaid {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListOverdue(ctx context.Context, cutoff time.Time) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.state.invoices {
		if inv.Status != ledger.StatusPaid && inv.CreatedAt.Before(cutoff) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memoryRepo) FindPaymentInvoice(ctx context.Context, paymentID int64) (int64, error) {
	p, ok := r.state.payments[paymentID]
	if !ok {
		return 0, ErrPaymentNotFound
	}
	return p.InvoiceID, nil
}

func (t *memoryTx) GetProductForUpdate(ctx context.Context, id int64) (inventory.Product, error) {
	p, ok := t.state.products[id]
	if !ok {
		return inventory.Product{}, inventory.ErrProductNotFound
	}
	return *p, nil
}

func (t *memoryTx) UpdateProductStock(ctx context.Context, id int64, qty float64) error {
	p, ok := t.state.products[id]
	if !ok {
		return inventory.ErrProductNotFound
	}
	p.StockQty = qty
	return nil
}

func (t *memoryTx) UpdateProductStockCost(ctx context.Context, id int64, qty float64, cost decimal.Decimal) error {
	p, ok := t.state.products[id]
	if !ok {
		return inventory.ErrProductNotFound
	}
	p.StockQty = qty
	p.LastUnitCostLocal = cost
	return nil
}

func (t *memoryTx) GetInvoiceForUpdate(ctx context.Context, id int64) (Invoice, error) {
	inv, ok := t.state.invoices[id]
	if !ok {
		return Invoice{}, ErrInvoiceNotFound
	}
	return *inv, nil
}

func (t *memoryTx) ListItems(ctx context.Context, invoiceID int64) ([]InvoiceItem, error) {
	return append([]InvoiceItem(nil), t.state.items[invoiceID]...), nil
}

func (t *memoryTx) InsertInvoice(ctx context.Context, inv Invoice) (int64, error) {
	t.state.nextID++
	inv.ID = t.state.nextID
	t.state.invoices[inv.ID] = &inv
	return inv.ID, nil
}

func (t *memoryTx) UpdateInvoice(ctx context.Context, inv Invoice) error {
	existing, ok := t.state.invoices[inv.ID]
	if !ok {
		return ErrInvoiceNotFound
	}
	inv.CreatedAt = existing.CreatedAt
	t.state.invoices[inv.ID] = &inv
	return nil
}

func (t *memoryTx) DeleteInvoice(ctx context.Context, id int64) error {
	delete(t.state.invoices, id)
	delete(t.state.items, id)
	delete(t.state.commissions, id)
	return nil
}

func (t *memoryTx) ReplaceItems(ctx context.Context, invoiceID int64, items []InvoiceItem) error {
	t.state.items[invoiceID] = append([]InvoiceItem(nil), items...)
	return nil
}

func (t *memoryTx) ReplaceCommissionLines(ctx context.Context, invoiceID int64, lines []CommissionLine) error {
	t.state.commissions[invoiceID] = append([]CommissionLine(nil), lines...)
	return nil
}

func (t *memoryTx) CountPayments(ctx context.Context, invoiceID int64) (int64, error) {
	var count int64
	for _, p := range t.state.payments {
		if p.InvoiceID == invoiceID {
			count++
		}
	}
	return count, nil
}

func (t *memoryTx) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	t.state.nextID++
	p.ID = t.state.nextID
	t.state.payments[p.ID] = &p
	return p.ID, nil
}

func (t *memoryTx) GetPaymentForUpdate(ctx context.Context, id int64) (Payment, error) {
	p, ok := t.state.payments[id]
	if !ok {
		return Payment{}, ErrPaymentNotFound
	}
	return *p, nil
}

func (t *memoryTx) UpdatePayment(ctx context.Context, p Payment) error {
	existing, ok := t.state.payments[p.ID]
	if !ok {
		return ErrPaymentNotFound
	}
	existing.AmountHard = p.AmountHard
	existing.AmountLocal = p.AmountLocal
	return nil
}

func (t *memoryTx) DeletePayment(ctx context.Context, id int64) error {
	delete(t.state.payments, id)
	return nil
}

type fixedRate struct{ rate decimal.Decimal }

func (f fixedRate) CurrentRate(ctx context.Context) (decimal.Decimal, error) {
	return f.rate, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(repo, fixedRate{rate: d("36.50")}, testLogger()), repo
}

func addProduct(repo *memoryRepo, id int64, name string, stock float64, price string, commType commission.Type, commValue string) {
	repo.state.products[id] = &inventory.Product{
		ID:              id,
		Name:            name,
		StockQty:        stock,
		SalePriceHard:   d(price),
		CommissionType:  commType,
		CommissionValue: d(commValue),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func sellerID(id int64) *int64 { return &id }

func TestCreateInvoiceEndToEnd(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Queso blanco", 50, "5.80", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 7,
		Items:    []ItemInput{{ProductID: 1, Qty: 10, PricingMode: PricingCash}},
	})
	require.NoError(t, err)
	require.True(t, inv.TotalHard.Equal(d("58.00")))
	require.True(t, inv.BalanceHard.Equal(d("58.00")))
	require.Equal(t, ledger.StatusPending, inv.Status)
	require.InDelta(t, 40.0, repo.state.products[1].StockQty, 0.0001)

	payment, err := svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: inv.ID, Amount: d("58.00"), Method: "cash"})
	require.NoError(t, err)
	require.True(t, payment.AmountHard.Equal(d("58.00")))
	require.True(t, payment.AmountLocal.Equal(d("2117.00")))

	paid, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, paid.BalanceHard.IsZero())
	require.Equal(t, ledger.StatusPaid, paid.Status)
	require.InDelta(t, 40.0, repo.state.products[1].StockQty, 0.0001)

	_, err = svc.EditInvoice(ctx, inv.ID, EditInvoiceInput{
		Items: []ItemInput{{ProductID: 1, Qty: 5}},
	})
	require.ErrorIs(t, err, ErrInvoiceLocked)
}

func TestCreateInvoiceAllOrNothing(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Arroz", 10, "2.00", commission.TypePercent, "0")
	addProduct(repo, 2, "Cafe", 1, "8.00", commission.TypePercent, "0")
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items: []ItemInput{
			{ProductID: 1, Qty: 5},
			{ProductID: 2, Qty: 3},
		},
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// No partial reservation survives the failed create.
	require.InDelta(t, 10.0, repo.state.products[1].StockQty, 0.0001)
	require.InDelta(t, 1.0, repo.state.products[2].StockQty, 0.0001)
	require.Empty(t, repo.state.invoices)
}

func TestCreateInvoiceSnapshotsCommission(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Cacao", 20, "10.00", commission.TypePercent, "5")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		SellerID: sellerID(3),
		Items:    []ItemInput{{ProductID: 1, Qty: 2}},
	})
	require.NoError(t, err)
	require.True(t, inv.CommissionTotal.Equal(d("1.00")))
	require.Len(t, inv.CommissionLines, 1)

	// Later catalog changes must not rewrite the snapshot.
	repo.state.products[1].CommissionValue = d("50")
	got, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.CommissionTotal.Equal(d("1.00")))
}

func TestCreateInvoiceWithoutSellerHasNoCommission(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Cacao", 20, "10.00", commission.TypePercent, "5")

	inv, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 2}},
	})
	require.NoError(t, err)
	require.True(t, inv.CommissionTotal.IsZero())
	require.Empty(t, inv.CommissionLines)
}

func TestEditInvoiceDeltaCorrectness(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Harina", 10, "1.00", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 5}},
	})
	require.NoError(t, err)
	require.InDelta(t, 5.0, repo.state.products[1].StockQty, 0.0001)

	// Growing 5 -> 8 needs 3 more units. Drain stock to 2 so the delta
	// cannot be covered.
	repo.state.products[1].StockQty = 2
	_, err = svc.EditInvoice(ctx, inv.ID, EditInvoiceInput{
		Items: []ItemInput{{ProductID: 1, Qty: 8}},
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	require.InDelta(t, 2.0, repo.state.products[1].StockQty, 0.0001)

	// Topped up externally, the same edit succeeds.
	repo.state.products[1].StockQty = 5
	got, err := svc.EditInvoice(ctx, inv.ID, EditInvoiceInput{
		Items: []ItemInput{{ProductID: 1, Qty: 8}},
	})
	require.NoError(t, err)
	require.InDelta(t, 2.0, repo.state.products[1].StockQty, 0.0001)
	require.True(t, got.TotalHard.Equal(d("8.00")))
}

func TestEditInvoiceSameItemsIsIdempotent(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Harina", 10, "1.50", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 4}},
	})
	require.NoError(t, err)
	stockBefore := repo.state.products[1].StockQty

	got, err := svc.EditInvoice(ctx, inv.ID, EditInvoiceInput{
		Items: []ItemInput{{ProductID: 1, Qty: 4}},
	})
	require.NoError(t, err)
	require.InDelta(t, stockBefore, repo.state.products[1].StockQty, 0.0001)
	require.True(t, got.TotalHard.Equal(inv.TotalHard))
	require.True(t, got.BalanceHard.Equal(inv.BalanceHard))
}

func TestEditInvoicePreservesPayments(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Aceite", 100, "10.00", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 10}},
	})
	require.NoError(t, err)

	_, err = svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: inv.ID, Amount: d("40.00"), Method: "cash"})
	require.NoError(t, err)

	// Shrink to 7 units: new total 70, already paid 40, balance 30.
	got, err := svc.EditInvoice(ctx, inv.ID, EditInvoiceInput{
		Items: []ItemInput{{ProductID: 1, Qty: 7}},
	})
	require.NoError(t, err)
	require.True(t, got.TotalHard.Equal(d("70.00")))
	require.True(t, got.BalanceHard.Equal(d("30.00")))
	require.Equal(t, ledger.StatusPartial, got.Status)

	// Shrink below the paid amount: balance floors at zero, fully paid.
	got, err = svc.EditInvoice(ctx, inv.ID, EditInvoiceInput{
		Items: []ItemInput{{ProductID: 1, Qty: 3}},
	})
	require.NoError(t, err)
	require.True(t, got.BalanceHard.IsZero())
	require.Equal(t, ledger.StatusPaid, got.Status)
}

func TestDeleteInvoiceReleasesStock(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Azucar", 30, "2.00", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 12}},
	})
	require.NoError(t, err)
	require.InDelta(t, 18.0, repo.state.products[1].StockQty, 0.0001)

	require.NoError(t, svc.DeleteInvoice(ctx, inv.ID))
	require.InDelta(t, 30.0, repo.state.products[1].StockQty, 0.0001)
	_, err = svc.GetInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestDeleteInvoiceWithPaymentsRefused(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Azucar", 30, "2.00", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 5}},
	})
	require.NoError(t, err)

	payment, err := svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: inv.ID, Amount: d("4.00"), Method: "cash"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteInvoice(ctx, inv.ID), ErrHasPayments)

	// After removing the payment the delete goes through.
	require.NoError(t, svc.DeletePayment(ctx, payment.ID))
	require.NoError(t, svc.DeleteInvoice(ctx, inv.ID))
}

func TestApplyPaymentFullSettlementClamp(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Pollo", 100, "10.00", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 10}},
	})
	require.NoError(t, err)

	payment, err := svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: inv.ID, Amount: d("96.00"), Method: "transfer"})
	require.NoError(t, err)
	require.True(t, payment.AmountHard.Equal(d("100.00")))

	got, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.BalanceHard.IsZero())
	require.Equal(t, ledger.StatusPaid, got.Status)
}

func TestPaymentReversalSymmetry(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Pollo", 100, "10.00", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 10}},
	})
	require.NoError(t, err)

	payment, err := svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: inv.ID, Amount: d("35.00"), Method: "cash"})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePayment(ctx, payment.ID))

	got, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.BalanceHard.Equal(inv.BalanceHard))
	require.Equal(t, inv.Status, got.Status)
	require.Empty(t, got.Payments)
}

func TestEditPaymentKeepsCapturedRate(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Pollo", 100, "10.00", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 10}},
	})
	require.NoError(t, err)

	payment, err := svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: inv.ID, Amount: d("20.00"), Method: "cash"})
	require.NoError(t, err)
	originalRate := payment.LocalRate

	edited, err := svc.EditPayment(ctx, payment.ID, d("50.00"))
	require.NoError(t, err)
	require.True(t, edited.AmountHard.Equal(d("50.00")))
	require.True(t, edited.LocalRate.Equal(originalRate))
	require.True(t, edited.AmountLocal.Equal(d("1825.00")))

	got, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.BalanceHard.Equal(d("50.00")))
	require.Equal(t, ledger.StatusPartial, got.Status)
}

func TestEditPaymentRejectsExcess(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Pollo", 100, "10.00", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 10}},
	})
	require.NoError(t, err)

	payment, err := svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: inv.ID, Amount: d("20.00"), Method: "cash"})
	require.NoError(t, err)

	_, err = svc.EditPayment(ctx, payment.ID, d("150.00"))
	require.ErrorIs(t, err, ledger.ErrExceedsBalance)

	// Failed edit leaves everything untouched.
	got, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.BalanceHard.Equal(d("80.00")))
	require.Len(t, got.Payments, 1)
	require.True(t, got.Payments[0].AmountHard.Equal(d("20.00")))
}

func TestApplyPaymentValidation(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Pollo", 100, "10.00", commission.TypePercent, "0")
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 1}},
	})
	require.NoError(t, err)

	_, err = svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: inv.ID, Amount: decimal.Zero, Method: "cash"})
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: 999, Amount: d("1.00"), Method: "cash"})
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestPendingForClient(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Pollo", 100, "10.00", commission.TypePercent, "0")
	ctx := context.Background()

	first, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 5,
		Items:    []ItemInput{{ProductID: 1, Qty: 2}},
	})
	require.NoError(t, err)

	second, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 5,
		Items:    []ItemInput{{ProductID: 1, Qty: 3}},
	})
	require.NoError(t, err)

	_, err = svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: first.ID, Amount: d("20.00"), Method: "cash"})
	require.NoError(t, err)

	pending, err := svc.PendingForClient(ctx, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, second.ID, pending[0].ID)
}

func TestListOverdueSkipsRecentAndSettled(t *testing.T) {
	svc, repo := newFixture()
	addProduct(repo, 1, "Pollo", 100, "10.00", commission.TypePercent, "0")
	ctx := context.Background()

	old, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 2}},
	})
	require.NoError(t, err)
	repo.state.invoices[old.ID].CreatedAt = time.Now().UTC().Add(-10 * 24 * time.Hour)

	_, err = svc.CreateInvoice(ctx, CreateInvoiceInput{
		ClientID: 1,
		Items:    []ItemInput{{ProductID: 1, Qty: 3}},
	})
	require.NoError(t, err)

	overdue, err := svc.ListOverdue(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, old.ID, overdue[0].ID)

	_, err = svc.ApplyPayment(ctx, ApplyPaymentInput{InvoiceID: old.ID, Amount: d("20.00"), Method: "cash"})
	require.NoError(t, err)

	overdue, err = svc.ListOverdue(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	require.Empty(t, overdue)
}

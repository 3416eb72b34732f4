package billing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/ledger"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/orders"
	"github.com/Simplici0/controlcenter/internal/settings"
	"github.com/Simplici0/controlcenter/internal/store"
)

var issuedAt = time.Date(2026, time.April, 3, 14, 30, 0, 0, time.UTC)

type silentNotifier struct{}

func (silentNotifier) Confirm(context.Context, string) bool { return false }
func (silentNotifier) Warn(context.Context, string)         {}

func newTestService(t *testing.T) (*Service, *orders.Manager, *store.Repository) {
	t.Helper()
	repo := store.NewRepository(store.NewMemoryBackend())
	om := orders.NewManager(repo, ledger.New(repo))
	svc := New(repo, settings.New(repo), om)
	svc.now = func() time.Time { return issuedAt }
	return svc, om, repo
}

func items() []models.LineItem {
	return []models.LineItem{
		{Description: "Soporte de celular", Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
		{Description: "Llavero", Quantity: 4, UnitPrice: decimal.NewFromInt(500)},
	}
}

func TestCreateInvoice_TotalsAndNumbering(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateInvoice(ctx, InvoiceInput{Customer: "Ana", Items: items()})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Number)
	assert.True(t, first.Subtotal.Equal(decimal.NewFromInt(5000)))
	assert.True(t, first.Tax.Equal(decimal.NewFromInt(650)))
	assert.True(t, first.Total.Equal(decimal.NewFromInt(5650)))
	assert.Equal(t, issuedAt, first.IssuedAt)

	second, err := svc.CreateInvoice(ctx, InvoiceInput{Customer: "Luis", Items: items()[:1]})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Number)

	list := svc.Invoices(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].Number)

	got, err := svc.Invoice(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Customer)

	var nf *apperror.NotFoundError
	_, err = svc.Invoice(ctx, 42)
	assert.True(t, errors.As(err, &nf))
}

func TestCreateInvoice_UsesConfiguredTax(t *testing.T) {
	svc, _, repo := newTestService(t)
	ctx := context.Background()
	s := models.DefaultSettings()
	s.TaxPercent = decimal.NewFromInt(10)
	require.NoError(t, repo.SaveSettings(ctx, s))

	inv, err := svc.CreateInvoice(ctx, InvoiceInput{Customer: "Ana", Items: items()})
	require.NoError(t, err)
	assert.True(t, inv.Tax.Equal(decimal.NewFromInt(500)))
}

func TestCreateInvoice_Validation(t *testing.T) {
	svc, _, repo := newTestService(t)

	_, err := svc.CreateInvoice(context.Background(), InvoiceInput{
		Items: []models.LineItem{{Quantity: 0, UnitPrice: decimal.NewFromInt(-1)}},
	})

	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "customer")
	assert.Contains(t, verr.Fields, "items[0].description")
	assert.Contains(t, verr.Fields, "items[0].quantity")
	assert.Contains(t, verr.Fields, "items[0].unitPrice")
	assert.Empty(t, repo.Invoices(context.Background()))
}

func TestInvoiceOrder(t *testing.T) {
	svc, om, _ := newTestService(t)
	ctx := context.Background()

	created, err := om.Create(ctx, orders.Input{Customer: "Marta", Description: "Figura", Price: decimal.NewFromInt(10000)}, silentNotifier{})
	require.NoError(t, err)

	inv, err := svc.InvoiceOrder(ctx, created.Order.ID, "8888-0000")
	require.NoError(t, err)

	require.NotNil(t, inv.OrderID)
	assert.Equal(t, created.Order.ID, *inv.OrderID)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Figura", inv.Items[0].Description)
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(11300)))

	var nf *apperror.NotFoundError
	_, err = svc.InvoiceOrder(ctx, 99, "")
	assert.True(t, errors.As(err, &nf))
}

func TestRenderText(t *testing.T) {
	svc, _, _ := newTestService(t)
	inv, err := svc.CreateInvoice(context.Background(), InvoiceInput{Customer: "Ana", Phone: "8888-1111", Items: items()})
	require.NoError(t, err)

	business := models.DefaultSettings()
	business.Phone = "2222-3333"
	text := RenderText(inv, business)

	for _, want := range []string{
		"3D Control Center",
		"Tel: 2222-3333",
		"Factura #1",
		"Fecha: 03/04/2026 14:30",
		"Cliente: Ana",
		"- Soporte de celular x2 @ ₡1,500.00 = ₡3,000.00",
		"Subtotal: ₡5,000.00",
		"IVA: ₡650.00",
		"Total: ₡5,650.00",
	} {
		assert.Contains(t, text, want)
	}
}

func TestRenderPDF(t *testing.T) {
	svc, _, _ := newTestService(t)
	inv, err := svc.CreateInvoice(context.Background(), InvoiceInput{Customer: "José", Items: items()})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, inv, models.DefaultSettings()))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestCreateQuote(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuote(ctx, QuoteInput{Customer: "Ana", Items: items()})
	require.NoError(t, err)

	_, err = uuid.Parse(q.ID)
	assert.NoError(t, err)
	assert.Equal(t, "COT-1", q.Number)
	assert.Equal(t, models.QuoteDraft, q.Status)
	assert.True(t, q.Total.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, issuedAt.AddDate(0, 0, DefaultValidityDays), q.ValidUntil)

	next, err := svc.CreateQuote(ctx, QuoteInput{Customer: "Luis", Items: items(), ValidityDays: 30})
	require.NoError(t, err)
	assert.Equal(t, "COT-2", next.Number)
	assert.Equal(t, issuedAt.AddDate(0, 0, 30), next.ValidUntil)
	assert.Len(t, svc.Quotes(ctx), 2)
}

func TestConvertQuote(t *testing.T) {
	svc, om, repo := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuote(ctx, QuoteInput{Customer: "Ana", Description: "Llaveros", Items: items()})
	require.NoError(t, err)

	order, err := svc.ConvertQuote(ctx, q.ID, silentNotifier{})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, order.Price.Equal(decimal.NewFromInt(5000)))
	assert.Len(t, om.List(ctx), 1)

	stored := repo.Quotes(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, models.QuoteConverted, stored[0].Status)
	require.NotNil(t, stored[0].OrderID)
	assert.Equal(t, order.ID, *stored[0].OrderID)

	var ierr *apperror.InvalidInputError
	_, err = svc.ConvertQuote(ctx, q.ID, silentNotifier{})
	assert.True(t, errors.As(err, &ierr))

	var nf *apperror.NotFoundError
	_, err = svc.ConvertQuote(ctx, "missing", silentNotifier{})
	assert.True(t, errors.As(err, &nf))
}

// lockedKeyBackend fails every write that touches key while locked is set.
type lockedKeyBackend struct {
	store.Backend
	key    string
	locked bool
}

func (b *lockedKeyBackend) PutMany(ctx context.Context, values map[string][]byte) error {
	if _, ok := values[b.key]; ok && b.locked {
		return errors.New("read-only replica")
	}
	return b.Backend.PutMany(ctx, values)
}

func TestConvertQuote_SaveFailureDropsTheOrder(t *testing.T) {
	ctx := context.Background()
	backend := &lockedKeyBackend{Backend: store.NewMemoryBackend(), key: "quotes"}
	repo := store.NewRepository(backend)
	om := orders.NewManager(repo, ledger.New(repo))
	svc := New(repo, settings.New(repo), om)

	q, err := svc.CreateQuote(ctx, QuoteInput{Customer: "Ana", Items: items()})
	require.NoError(t, err)

	backend.locked = true
	_, err = svc.ConvertQuote(ctx, q.ID, silentNotifier{})
	var perr *apperror.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Empty(t, om.List(ctx))
	assert.Equal(t, models.QuoteDraft, repo.Quotes(ctx)[0].Status)

	backend.locked = false
	order, err := svc.ConvertQuote(ctx, q.ID, silentNotifier{})
	require.NoError(t, err)
	assert.Len(t, om.List(ctx), 1)
	assert.Equal(t, order.ID, *repo.Quotes(ctx)[0].OrderID)
}

package document_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/numerator"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/infrastructure/storage/memory"
)

func newStore(t *testing.T) *document.Store {
	t.Helper()
	db := memory.NewDB()
	return document.NewStore(memory.NewDocumentRepo(db), memory.NewNumerator(db), db,
		document.WithClock(func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }))
}

func salesDraft(t document.Type) *document.SalesDocument {
	doc := document.New(document.Kind{Domain: document.DomainSales, Type: t}).(*document.SalesDocument)
	doc.ClientName = "Acme"
	doc.Currency = "EUR"
	doc.Items = document.Items{{
		ID:          document.NewCustomItemID(),
		Description: "Consulting",
		Quantity:    types.NewQuantity(2),
		Price:       types.MustMoney("50"),
	}}
	document.Reprice(doc)
	return doc
}

func TestStore_NumbersNeverRepeatAfterDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a := salesDraft(document.TypeInvoice)
	require.NoError(t, s.Create(ctx, a))
	assert.Equal(t, "INV-001", a.Number)
	assert.False(t, id.IsNil(a.ID))
	assert.Equal(t, 1, a.Version)

	require.NoError(t, s.Delete(ctx, a.ID))

	b := salesDraft(document.TypeInvoice)
	require.NoError(t, s.Create(ctx, b))
	assert.Equal(t, "INV-002", b.Number)
}

func TestStore_CreateInsertsNothingWhenNumberingFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := numerator.NewMockGenerator(ctrl)
	db := memory.NewDB()
	s := document.NewStore(memory.NewDocumentRepo(db), gen, db)
	ctx := context.Background()

	kind := document.Kind{Domain: document.DomainSales, Type: document.TypeInvoice}
	boom := errors.New("sequence table locked")
	gomock.InOrder(
		gen.EXPECT().GetNextNumber(gomock.Any(), document.NumberConfig(kind), document.NumberOptions(kind), gomock.Any()).
			Return("INV-001", nil),
		gen.EXPECT().GetNextNumber(gomock.Any(), document.NumberConfig(kind), gomock.Any(), gomock.Any()).
			Return("", boom),
		gen.EXPECT().GetNextNumber(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("INV-001", nil),
	)

	first := salesDraft(document.TypeInvoice)
	require.NoError(t, s.Create(ctx, first))

	failed := salesDraft(document.TypeInvoice)
	err := s.Create(ctx, failed)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, failed.Number)
	assert.True(t, id.IsNil(failed.ID))

	reused := salesDraft(document.TypeInvoice)
	err = s.Create(ctx, reused)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate), "number already taken")

	list, err := s.List(ctx, document.DomainSales, document.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].Head().ID)
}

func TestStore_CountersArePerKind(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	inv := salesDraft(document.TypeInvoice)
	est := salesDraft(document.TypeEstimate)
	require.NoError(t, s.Create(ctx, inv))
	require.NoError(t, s.Create(ctx, est))

	assert.Equal(t, "INV-001", inv.Number)
	assert.Equal(t, "EST-001", est.Number)
	assert.Equal(t, document.StatusDraft, est.Status)
}

func TestStore_CreateRejectsInvalidBeforeWriting(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	doc := salesDraft(document.TypeInvoice)
	doc.Items = nil

	err := s.Create(ctx, doc)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	list, err := s.List(ctx, document.DomainSales, document.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	ok := salesDraft(document.TypeInvoice)
	require.NoError(t, s.Create(ctx, ok))
	assert.Equal(t, "INV-001", ok.Number, "failed create consumed no number")
}

func TestStore_AfterCreateHookErrorRollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("stock unavailable")

	s.Hooks().OnAfterCreate(func(ctx context.Context, doc document.Document) error {
		if doc.Head().Type == document.TypeDelivery {
			return boom
		}
		return nil
	})

	err := s.Create(ctx, salesDraft(document.TypeDelivery))
	require.ErrorIs(t, err, boom)

	list, err := s.List(ctx, document.DomainSales, document.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_UpdateAndFind(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	doc := salesDraft(document.TypeOrder)
	require.NoError(t, s.Create(ctx, doc))

	doc.Notes = "rush"
	require.NoError(t, s.Update(ctx, doc))
	assert.Equal(t, 2, doc.Version)

	got, err := s.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "rush", got.Head().Notes)

	_, err = s.FindByID(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))

	ghost := salesDraft(document.TypeOrder)
	ghost.ID = id.New()
	assert.True(t, apperror.IsNotFound(s.Update(ctx, ghost)))
}

func TestStore_FindLinkedToleratesDanglingReference(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	order := salesDraft(document.TypeOrder)
	require.NoError(t, s.Create(ctx, order))

	inv := salesDraft(document.TypeInvoice)
	inv.LinkedDocumentID = &order.ID
	require.NoError(t, s.Create(ctx, inv))

	linked, err := s.FindLinked(ctx, inv)
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, order.ID, linked.Head().ID)

	successors, err := s.Successors(ctx, order)
	require.NoError(t, err)
	require.Len(t, successors, 1)
	assert.Equal(t, inv.ID, successors[0].Head().ID)

	require.NoError(t, s.Delete(ctx, order.ID))

	linked, err = s.FindLinked(ctx, inv)
	require.NoError(t, err)
	assert.Nil(t, linked)

	kept, err := s.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, kept.Head().Linked(), "reference is kept, only the lookup is tolerant")
}

func TestStore_ListRejectsUnknownDomain(t *testing.T) {
	s := newStore(t)
	_, err := s.List(context.Background(), document.Domain("hr"), document.Filter{})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

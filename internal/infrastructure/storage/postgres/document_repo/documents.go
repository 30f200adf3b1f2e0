// Package document_repo stores sales and purchase documents, one table per
// domain. Items are a JSONB column so a document is always read and written
// as a whole.
package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/infrastructure/storage/postgres"
)

const (
	salesTable    = "sales_documents"
	purchaseTable = "purchase_documents"

	uniqueViolation = "23505"
)

type table struct {
	name          string
	partnerColumn string
	columns       []string
}

var tables = map[document.Domain]table{
	document.DomainSales: {
		name:          salesTable,
		partnerColumn: "client_id",
		columns:       postgres.ExtractDBColumns[document.SalesDocument](),
	},
	document.DomainPurchase: {
		name:          purchaseTable,
		partnerColumn: "supplier_id",
		columns:       postgres.ExtractDBColumns[document.PurchaseDocument](),
	},
}

// Repo implements document.Repository.
type Repo struct {
	txManager *postgres.TxManager
}

var _ document.Repository = (*Repo)(nil)

// New creates the document repository.
func New(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func tableOf(domain document.Domain) (table, error) {
	t, ok := tables[domain]
	if !ok {
		return table{}, apperror.NewValidation("unknown domain").WithDetail("domain", string(domain))
	}
	return t, nil
}

func insertQuery(doc document.Document) (squirrel.InsertBuilder, error) {
	t, err := tableOf(doc.Head().Domain)
	if err != nil {
		return squirrel.InsertBuilder{}, err
	}
	cols, vals := postgres.Pick(postgres.StructToMap(doc), t.columns)
	return builder().Insert(t.name).Columns(cols...).Values(vals...), nil
}

// Insert stores a new document. A duplicate number maps to DUPLICATE_ENTRY.
func (r *Repo) Insert(ctx context.Context, doc document.Document) error {
	q, err := insertQuery(doc)
	if err != nil {
		return err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.NewDuplicate("document", "number", doc.Head().Number)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func replaceQuery(doc document.Document) (squirrel.UpdateBuilder, error) {
	h := doc.Head()
	t, err := tableOf(h.Domain)
	if err != nil {
		return squirrel.UpdateBuilder{}, err
	}

	data := postgres.StructToMap(doc)
	q := builder().Update(t.name)
	for _, col := range t.columns {
		switch col {
		case "id", "version", "created_at", "domain":
			continue
		}
		q = q.Set(col, data[col])
	}
	return q.
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": h.ID, "version": h.Version}), nil
}

// Replace overwrites the document when the stored version matches and bumps
// the version on doc.
func (r *Repo) Replace(ctx context.Context, doc document.Document) error {
	h := doc.Head()
	q, err := replaceQuery(doc)
	if err != nil {
		return err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, h.ID); err != nil {
			return err
		}
		return apperror.NewConcurrentModification("document", h.ID.String())
	}

	h.Version++
	return nil
}

// Delete removes the document from whichever table holds it.
func (r *Repo) Delete(ctx context.Context, docID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)
	for _, name := range []string{salesTable, purchaseTable} {
		sql, args, err := builder().Delete(name).Where(squirrel.Eq{"id": docID}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		tag, err := querier.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
	}
	return apperror.NewNotFound("document", docID.String())
}

// Get looks the id up in the sales table, then the purchase table.
func (r *Repo) Get(ctx context.Context, docID id.ID) (document.Document, error) {
	for _, domain := range []document.Domain{document.DomainSales, document.DomainPurchase} {
		t := tables[domain]
		sql, args, err := builder().
			Select(t.columns...).
			From(t.name).
			Where(squirrel.Eq{"id": docID}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build query: %w", err)
		}

		doc := document.New(document.Kind{Domain: domain})
		if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), doc, sql, args...); err != nil {
			if pgxscan.NotFound(err) {
				continue
			}
			return nil, fmt.Errorf("get document: %w", err)
		}
		return doc, nil
	}
	return nil, apperror.NewNotFound("document", docID.String())
}

func listQuery(domain document.Domain, f document.Filter) (squirrel.SelectBuilder, error) {
	t, err := tableOf(domain)
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}

	q := builder().Select(t.columns...).From(t.name)
	if f.Type != nil {
		q = q.Where(squirrel.Eq{"type": *f.Type})
	}
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status": *f.Status})
	}
	if f.PartnerID != nil {
		q = q.Where(squirrel.Eq{t.partnerColumn: *f.PartnerID})
	}
	if f.LinkedDocumentID != nil {
		q = q.Where(squirrel.Eq{"linked_document_id": *f.LinkedDocumentID})
	}
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + f.Search + "%"})
	}

	q = q.OrderBy("date DESC", "number DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q, nil
}

// List returns the documents of a domain, newest first.
func (r *Repo) List(ctx context.Context, domain document.Domain, f document.Filter) ([]document.Document, error) {
	q, err := listQuery(domain, f)
	if err != nil {
		return nil, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if domain == document.DomainSales {
		var rows []*document.SalesDocument
		if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		return toDocuments(rows), nil
	}

	var rows []*document.PurchaseDocument
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return toDocuments(rows), nil
}

func toDocuments[T document.Document](rows []T) []document.Document {
	out := make([]document.Document, len(rows))
	for i, d := range rows {
		out[i] = d
	}
	return out
}

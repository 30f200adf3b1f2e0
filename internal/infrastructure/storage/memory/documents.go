package memory

import (
	"context"
	"sort"
	"strings"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/document"
)

// DocumentRepo implements document.Repository over the shared DB.
type DocumentRepo struct {
	db *DB
}

// NewDocumentRepo creates the document repository.
func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

var _ document.Repository = (*DocumentRepo)(nil)

func (r *DocumentRepo) Insert(ctx context.Context, doc document.Document) error {
	h := doc.Head()
	return r.db.write(ctx, func(s *state) error {
		if _, exists := s.docs[h.ID]; exists {
			return apperror.NewDuplicate("document", "id", h.ID.String())
		}
		for _, other := range s.docs {
			oh := other.Head()
			if oh.Kind() == h.Kind() && oh.Number == h.Number {
				return apperror.NewDuplicate("document", "number", h.Number)
			}
		}
		s.docs[h.ID] = doc.Clone()
		return nil
	})
}

func (r *DocumentRepo) Replace(ctx context.Context, doc document.Document) error {
	h := doc.Head()
	return r.db.write(ctx, func(s *state) error {
		stored, ok := s.docs[h.ID]
		if !ok {
			return apperror.NewNotFound("document", h.ID.String())
		}
		if stored.Head().Version != h.Version {
			return apperror.NewConcurrentModification("document", h.ID.String())
		}
		h.Version++
		s.docs[h.ID] = doc.Clone()
		return nil
	})
}

func (r *DocumentRepo) Delete(ctx context.Context, docID id.ID) error {
	return r.db.write(ctx, func(s *state) error {
		if _, ok := s.docs[docID]; !ok {
			return apperror.NewNotFound("document", docID.String())
		}
		delete(s.docs, docID)
		return nil
	})
}

func (r *DocumentRepo) Get(ctx context.Context, docID id.ID) (document.Document, error) {
	var out document.Document
	r.db.read(func(s *state) {
		if d, ok := s.docs[docID]; ok {
			out = d.Clone()
		}
	})
	if out == nil {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	return out, nil
}

func (r *DocumentRepo) List(ctx context.Context, domain document.Domain, f document.Filter) ([]document.Document, error) {
	var out []document.Document
	r.db.read(func(s *state) {
		for _, d := range s.docs {
			if matches(d, domain, f) {
				out = append(out, d.Clone())
			}
		}
	})

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Head(), out[j].Head()
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Number > b.Number
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(d document.Document, domain document.Domain, f document.Filter) bool {
	h := d.Head()
	switch {
	case h.Domain != domain:
		return false
	case f.Type != nil && h.Type != *f.Type:
		return false
	case f.Status != nil && h.Status != *f.Status:
		return false
	case f.PartnerID != nil && d.Partner().ID != *f.PartnerID:
		return false
	case f.LinkedDocumentID != nil && h.Linked() != *f.LinkedDocumentID:
		return false
	case f.Search != "" && !strings.Contains(strings.ToLower(h.Number), strings.ToLower(f.Search)):
		return false
	}
	return true
}

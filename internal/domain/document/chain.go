package document

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"

	"smartbiz/internal/core/apperror"
)

// Guard expressions see two string variables: type and status of the source.
const (
	guardNotCancelled = `status != "cancelled"`

	salesReturnGuard    = `status in ["paid", "completed", "processed"] || type in ["invoice", "delivery", "order"]`
	purchaseReturnGuard = `status in ["completed", "received", "processed", "paid"]`
)

// Edge is one allowed conversion from a source kind to a target type.
type Edge struct {
	From Kind
	To   Type

	// Guard is a CEL expression evaluated against the source document.
	Guard string

	// SourceStatus, when set, is applied to the source after conversion.
	SourceStatus Status

	program cel.Program
}

// Allows evaluates the guard for a source in the given status.
func (e *Edge) Allows(srcType Type, srcStatus Status) (bool, error) {
	if e.program == nil {
		return true, nil
	}
	out, _, err := e.program.Eval(map[string]any{
		"type":   string(srcType),
		"status": string(srcStatus),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate guard %q: %w", e.Guard, err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("guard %q returned %T", e.Guard, out.Value())
	}
	return allowed, nil
}

// EdgeSpec declares an edge before compilation.
type EdgeSpec struct {
	From         Kind
	To           Type
	Guard        string
	SourceStatus Status
}

// DefaultEdges is the conversion table of both domains. Every non-return
// type can also be converted to a return of its own domain; those edges
// are added by NewChain with the domain's return guard.
func DefaultEdges() []EdgeSpec {
	sales := func(t Type) Kind { return Kind{Domain: DomainSales, Type: t} }
	purchase := func(t Type) Kind { return Kind{Domain: DomainPurchase, Type: t} }

	return []EdgeSpec{
		{From: sales(TypeEstimate), To: TypeOrder, Guard: guardNotCancelled},
		{From: sales(TypeEstimate), To: TypeDelivery, Guard: guardNotCancelled},
		{From: sales(TypeEstimate), To: TypeInvoice, Guard: guardNotCancelled},
		{From: sales(TypeOrder), To: TypeDelivery, Guard: guardNotCancelled},
		{From: sales(TypeOrder), To: TypeInvoice, Guard: guardNotCancelled},
		{From: sales(TypeDelivery), To: TypeInvoice, Guard: guardNotCancelled},

		{From: purchase(TypePurchaseRequest), To: TypeRFQ, Guard: `status == "approved"`},
		{From: purchase(TypePurchaseRequest), To: TypeOrder, Guard: `status == "approved"`},
		{From: purchase(TypeRFQ), To: TypeOrder, Guard: `status == "responded"`, SourceStatus: StatusAccepted},
		{From: purchase(TypeOrder), To: TypeDelivery, Guard: `status == "pending"`},
		{From: purchase(TypeOrder), To: TypeInvoice, Guard: guardNotCancelled},
		{From: purchase(TypeDelivery), To: TypeInvoice, Guard: guardNotCancelled},
	}
}

var returnGuards = map[Domain]string{
	DomainSales:    salesReturnGuard,
	DomainPurchase: purchaseReturnGuard,
}

// Chain is the compiled conversion table.
type Chain struct {
	edges map[Kind]map[Type]*Edge
}

// NewChain compiles edge guards. Return edges are generated per domain.
func NewChain(specs []EdgeSpec) (*Chain, error) {
	env, err := cel.NewEnv(
		cel.Variable("type", cel.StringType),
		cel.Variable("status", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create guard env: %w", err)
	}

	for domain, guard := range returnGuards {
		for _, t := range domain.Types() {
			if t == TypeReturn {
				continue
			}
			specs = append(specs, EdgeSpec{From: Kind{Domain: domain, Type: t}, To: TypeReturn, Guard: guard})
		}
	}

	c := &Chain{edges: make(map[Kind]map[Type]*Edge)}
	for _, spec := range specs {
		if !spec.From.Domain.Has(spec.From.Type) || !spec.From.Domain.Has(spec.To) {
			return nil, fmt.Errorf("edge %s -> %s: unknown type", spec.From, spec.To)
		}

		edge := &Edge{From: spec.From, To: spec.To, Guard: spec.Guard, SourceStatus: spec.SourceStatus}
		if spec.Guard != "" {
			ast, iss := env.Compile(spec.Guard)
			if iss.Err() != nil {
				return nil, fmt.Errorf("compile guard %q: %w", spec.Guard, iss.Err())
			}
			prg, err := env.Program(ast)
			if err != nil {
				return nil, fmt.Errorf("program guard %q: %w", spec.Guard, err)
			}
			edge.program = prg
		}

		if c.edges[spec.From] == nil {
			c.edges[spec.From] = make(map[Type]*Edge)
		}
		c.edges[spec.From][spec.To] = edge
	}

	return c, nil
}

// MustDefaultChain compiles DefaultEdges and panics on error.
func MustDefaultChain() *Chain {
	c, err := NewChain(DefaultEdges())
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve returns the edge from src to target, or INVALID_CONVERSION when the
// edge does not exist or its guard rejects the source.
func (c *Chain) Resolve(src *Header, target Type) (*Edge, error) {
	to := Kind{Domain: src.Domain, Type: target}

	edge, ok := c.edges[src.Kind()][target]
	if !ok {
		return nil, apperror.NewInvalidConversion(src.Kind().String(), to.String())
	}

	allowed, err := edge.Allows(src.Type, src.Status)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.NewInvalidConversion(src.Kind().String(), to.String()).
			WithDetail("status", src.Status).
			WithDetail("guard", edge.Guard)
	}

	return edge, nil
}

// Targets lists the types src can currently be converted to, sorted by name.
func (c *Chain) Targets(src *Header) []Type {
	var out []Type
	for t, edge := range c.edges[src.Kind()] {
		if ok, err := edge.Allows(src.Type, src.Status); err == nil && ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

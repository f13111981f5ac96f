package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pricebook/internal/domain"
)

// Block is one named step of the price book resolution pipeline. A block
// receives the name produced so far and returns it, possibly resolved.
type Block interface {
	Name() string
	Run(ctx context.Context, arg string, pc *Context) (string, error)
}

// BookPipeline runs its blocks in order, feeding each block's output to the next.
type BookPipeline struct {
	blocks []Block
}

func NewBookPipeline(blocks ...Block) *BookPipeline {
	return &BookPipeline{blocks: blocks}
}

// BuildBookPipeline assembles a pipeline from block names, typically read from config.
func BuildBookPipeline(names []string, registry map[string]Block) (*BookPipeline, error) {
	p := &BookPipeline{}
	for _, n := range names {
		b, ok := registry[n]
		if !ok {
			return nil, fmt.Errorf("unknown price book block %q", n)
		}
		p.blocks = append(p.blocks, b)
	}
	return p, nil
}

func (p *BookPipeline) Names() []string {
	out := make([]string, 0, len(p.blocks))
	for _, b := range p.blocks {
		out = append(out, b.Name())
	}
	return out
}

func (p *BookPipeline) Run(ctx context.Context, arg string, pc *Context) (string, error) {
	name := arg
	for _, b := range p.blocks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var err error
		if name, err = b.Run(ctx, name, pc); err != nil {
			return "", fmt.Errorf("%s: %w", b.Name(), err)
		}
	}
	return name, nil
}

// ExplicitBlock passes a caller-supplied book name through unchanged. Input
// boundaries (validate.Book) trim it before it gets here.
type ExplicitBlock struct{}

func (ExplicitBlock) Name() string { return "explicit" }

func (ExplicitBlock) Run(_ context.Context, arg string, _ *Context) (string, error) {
	return arg, nil
}

// CatalogDefaultBlock supplies the catalog's book when nothing earlier resolved one.
type CatalogDefaultBlock struct {
	Book string
}

func (CatalogDefaultBlock) Name() string { return "catalog-default" }

func (b CatalogDefaultBlock) Run(_ context.Context, arg string, _ *Context) (string, error) {
	if arg != "" {
		return arg, nil
	}
	return b.Book, nil
}

type CustomerLookup interface {
	ByID(id string) (*domain.Customer, error)
}

// GroupPolicy maps a customer to the group whose price book applies.
type GroupPolicy interface {
	CustomerGroup(c domain.Customer) (string, error)
}

var ErrMalformedEmail = errors.New("malformed email address")

// EmailDomainGroup takes the first label of the email domain: alice@acme.com is "acme".
// It is a coarse sample rule meant to be swapped for a real segmentation source.
type EmailDomainGroup struct{}

func (EmailDomainGroup) CustomerGroup(c domain.Customer) (string, error) {
	parts := strings.Split(strings.TrimSpace(c.Email), "@")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: no @ in %q", ErrMalformedEmail, c.Email)
	}
	dot := strings.Index(parts[1], ".")
	if dot < 0 {
		return "", fmt.Errorf("%w: no dot after @ in %q", ErrMalformedEmail, c.Email)
	}
	if dot == 0 {
		return "", fmt.Errorf("%w: empty domain label in %q", ErrMalformedEmail, c.Email)
	}
	return parts[1][:dot], nil
}

const BookSuffix = "_PriceBook"

// BookResolver derives the book from the shopper's customer group.
type BookResolver struct {
	Customers CustomerLookup
	Groups    GroupPolicy
}

func NewBookResolver(customers CustomerLookup) *BookResolver {
	return &BookResolver{Customers: customers, Groups: EmailDomainGroup{}}
}

func (r *BookResolver) Name() string { return "customer-group" }

func (r *BookResolver) Run(_ context.Context, arg string, pc *Context) (string, error) {
	return r.Resolve(arg, pc.ShopperID, pc)
}

// Resolve returns explicitName when set, otherwise "{group}_PriceBook" for the
// shopper's customer, or "" when the customer or its group cannot be determined.
func (r *BookResolver) Resolve(explicitName, shopperID string, pc *Context) (string, error) {
	if explicitName != "" {
		return explicitName, nil
	}
	if shopperID == "" {
		return "", nil
	}
	customer, err := r.Customers.ByID(shopperID)
	if err != nil {
		return "", err
	}
	if customer == nil {
		return "", nil
	}

	groups := r.Groups
	if groups == nil {
		groups = EmailDomainGroup{}
	}
	group, err := groups.CustomerGroup(*customer)
	if err != nil {
		if pc != nil {
			pc.AddMessage(SeverityInformation, CodeGroupDerivationFailed, []any{customer.ID},
				"Error resolving price book name. Falling back to default: "+err.Error())
		}
		return "", nil
	}
	return group + BookSuffix, nil
}

// DefaultBlocks is the registry BuildBookPipeline resolves configured names against.
func DefaultBlocks(customers CustomerLookup, catalogBook string) map[string]Block {
	resolver := NewBookResolver(customers)
	return map[string]Block{
		ExplicitBlock{}.Name():       ExplicitBlock{},
		resolver.Name():              resolver,
		CatalogDefaultBlock{}.Name(): CatalogDefaultBlock{Book: catalogBook},
	}
}

package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pawmart/storefront-backend/internal/upstream"
	pkgerrors "github.com/pawmart/storefront-backend/pkg/errors"
	"github.com/pawmart/storefront-backend/pkg/logger"
	"github.com/pawmart/storefront-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

// DraftAPI is the order-draft surface of the commerce backend.
type DraftAPI interface {
	GetDraft(ctx context.Context, token string) upstream.DraftReadResult
	ReplaceDraft(ctx context.Context, token string, items []upstream.DraftItem) error
	UpdateDraftItem(ctx context.Context, token, productID string, quantity int) error
	DeleteDraftItem(ctx context.Context, token, productID string) error
	PlaceOrder(ctx context.Context, token string, payload upstream.PlaceOrderRequest) (string, error)
	OrderHistory(ctx context.Context, token string) ([]upstream.OrderRecord, error)
}

// CatalogAPI is the batch product lookup used to backfill line metadata.
type CatalogAPI interface {
	LookupProducts(ctx context.Context, ids []string) ([]upstream.CatalogProduct, error)
}

// Params collects the stack a Reconciler runs on.
type Params struct {
	Scope        string
	SessionToken string
	Store        Store
	Drafts       DraftAPI
	Catalog      CatalogAPI
	Logger       *logger.Logger
	Metrics      *metrics.StorefrontMetrics
}

// Reconciler keeps one session's cart consistent across reloads, guest to
// authenticated transitions, and local/remote divergence. Mutating
// operations replace the in-memory lines atomically under the mutex before
// any network call; remote mirror writes are detached and never awaited, so
// two in-flight operations may interleave and the later one wins.
type Reconciler struct {
	scope   string
	token   string
	store   Store
	drafts  DraftAPI
	catalog CatalogAPI
	logger  *logger.Logger
	metrics *metrics.StorefrontMetrics

	mu    sync.Mutex
	lines []Line

	mirrors sync.WaitGroup
}

// NewReconciler builds a reconciler for one identity scope.
func NewReconciler(p Params) (*Reconciler, error) {
	if p.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if p.Drafts == nil {
		return nil, fmt.Errorf("draft api required")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog api required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	scope := p.Scope
	if scope == "" {
		scope = GuestScope
	}
	return &Reconciler{
		scope:   scope,
		token:   p.SessionToken,
		store:   p.Store,
		drafts:  p.Drafts,
		catalog: p.Catalog,
		logger:  p.Logger,
		metrics: p.Metrics,
	}, nil
}

// Scope returns the identity scope this reconciler serves.
func (r *Reconciler) Scope() string {
	return r.scope
}

func (r *Reconciler) authenticated() bool {
	return r.scope != GuestScope
}

// Lines returns a copy of the current in-memory cart.
func (r *Reconciler) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Line, len(r.lines))
	copy(out, r.lines)
	return out
}

func (r *Reconciler) setLines(lines []Line) {
	r.mu.Lock()
	r.lines = lines
	r.mu.Unlock()
}

// Sync resolves the authoritative cart state and adopts it. It never fails:
// every remote or parse problem degrades to the durable local copy, and a
// missing local copy degrades to an empty cart.
func (r *Reconciler) Sync(ctx context.Context) {
	if !r.authenticated() {
		r.adoptLocal(ctx)
		return
	}

	res := r.drafts.GetDraft(ctx, r.token)
	switch res.Status {
	case upstream.DraftOK:
		if len(res.Products) == 0 {
			r.metrics.IncSyncFallback("empty_draft")
			r.adoptLocal(ctx)
			return
		}
		candidates := make([]Line, 0, len(res.Products))
		for _, product := range res.Products {
			candidates = append(candidates, Line{
				ProductID: product.ID,
				Title:     product.Name,
				Price:     product.Price,
				Quantity:  product.Quantity,
			})
		}
		merged := r.mergeLines(ctx, candidates)
		r.setLines(merged)
		// Remote adoption is the only branch that overwrites the durable copy.
		if err := r.store.Save(ctx, r.scope, merged); err != nil {
			r.logger.Error(ctx, "cart.persist_failed", err)
		}
	case upstream.DraftAuthRequired:
		r.metrics.IncSyncFallback("auth_required")
		r.adoptLocal(ctx)
	case upstream.DraftNotFound:
		r.metrics.IncSyncFallback("not_found")
		r.adoptLocal(ctx)
	case upstream.DraftMalformed:
		r.metrics.IncSyncFallback("malformed_response")
		r.logger.Warn(ctx, "cart.sync_malformed_response")
		r.adoptLocal(ctx)
	default:
		r.metrics.IncSyncFallback("transport_error")
		if res.Err != nil {
			r.logger.Error(ctx, "cart.sync_transport_error", res.Err)
		}
		r.adoptLocal(ctx)
	}
}

// adoptLocal reads the durable entry for the scope, merges, and adopts the
// result. The durable store is read-only on this path.
func (r *Reconciler) adoptLocal(ctx context.Context) {
	lines, ok, err := r.store.Load(ctx, r.scope)
	if err != nil {
		r.logger.Error(ctx, "cart.local_load_failed", err)
		r.setLines([]Line{})
		return
	}
	if !ok {
		r.setLines([]Line{})
		return
	}
	r.setLines(r.mergeLines(ctx, lines))
}

// Add inserts a line or increments the quantity of an existing one, then
// persists locally and mirrors the full line list remotely when
// authenticated.
func (r *Reconciler) Add(ctx context.Context, line Line) error {
	if line.ProductID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	if line.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	r.mu.Lock()
	found := false
	for i := range r.lines {
		if r.lines[i].ProductID == line.ProductID {
			r.lines[i].Quantity += line.Quantity
			found = true
			break
		}
	}
	if !found {
		if line.Image == "" {
			line.Image = FallbackImage
		}
		if line.Brand == "" {
			line.Brand = FallbackBrand
		}
		r.lines = append(r.lines, line)
	}
	snapshot := make([]Line, len(r.lines))
	copy(snapshot, r.lines)
	r.mu.Unlock()

	if err := r.store.Save(ctx, r.scope, snapshot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting cart")
	}

	if r.authenticated() {
		r.mirror(ctx, "replace", func(ctx context.Context) error {
			return r.drafts.ReplaceDraft(ctx, r.token, toDraftItems(snapshot))
		})
	}
	return nil
}

// UpdateQuantity sets the quantity of a line, clamped to a minimum of 1.
// Unknown product ids are ignored.
func (r *Reconciler) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	r.mu.Lock()
	for i := range r.lines {
		if r.lines[i].ProductID == productID {
			r.lines[i].Quantity = quantity
			break
		}
	}
	snapshot := make([]Line, len(r.lines))
	copy(snapshot, r.lines)
	r.mu.Unlock()

	if err := r.store.Save(ctx, r.scope, snapshot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting cart")
	}

	if r.authenticated() {
		r.mirror(ctx, "update", func(ctx context.Context) error {
			return r.drafts.UpdateDraftItem(ctx, r.token, productID, quantity)
		})
	}
	return nil
}

// Remove drops a line from the cart.
func (r *Reconciler) Remove(ctx context.Context, productID string) error {
	r.mu.Lock()
	kept := r.lines[:0]
	for _, line := range r.lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	r.lines = kept
	snapshot := make([]Line, len(r.lines))
	copy(snapshot, r.lines)
	r.mu.Unlock()

	if err := r.store.Save(ctx, r.scope, snapshot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting cart")
	}

	if r.authenticated() {
		r.mirror(ctx, "delete", func(ctx context.Context) error {
			return r.drafts.DeleteDraftItem(ctx, r.token, productID)
		})
	}
	return nil
}

// Clear empties the in-memory cart and deletes the durable entry. No remote
// call is made.
func (r *Reconciler) Clear(ctx context.Context) error {
	r.setLines([]Line{})
	if err := r.store.Delete(ctx, r.scope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	return nil
}

// PlaceOrder submits a checkout. All preconditions are checked before any
// network call; on success the cart is cleared locally and durably.
func (r *Reconciler) PlaceOrder(ctx context.Context, items []Line, address, phone, email string) (string, error) {
	if !r.authenticated() {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "đăng nhập để đặt hàng")
	}
	if len(items) == 0 || address == "" || phone == "" || email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "thiếu thông tin đặt hàng")
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	totalPrice, _ := total.Float64()

	code, err := r.drafts.PlaceOrder(ctx, r.token, upstream.PlaceOrderRequest{
		UserID:     r.scope,
		Items:      toDraftItems(items),
		Address:    address,
		Phone:      phone,
		Email:      email,
		TotalPrice: totalPrice,
		Date:       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}

	r.setLines([]Line{})
	if err := r.store.Delete(ctx, r.scope); err != nil {
		r.logger.Error(ctx, "cart.clear_after_checkout_failed", err)
	}
	return code, nil
}

// OrderHistory lists the user's collapsed orders. It never fails: a guest
// scope or any remote problem yields an empty list.
func (r *Reconciler) OrderHistory(ctx context.Context) []Order {
	if !r.authenticated() {
		return []Order{}
	}

	records, err := r.drafts.OrderHistory(ctx, r.token)
	if err != nil {
		r.logger.Warn(r.logger.WithField(ctx, "error", err.Error()), "cart.order_history_unavailable")
		return []Order{}
	}
	return collapseOrders(records)
}

// Flush waits for outstanding fire-and-forget mirror writes. Mirror writes
// are never cancelled on shutdown; callers that care wait here instead.
func (r *Reconciler) Flush() {
	r.mirrors.Wait()
}

// mirror runs a remote write detached from the request: the caller never
// waits on it, its context survives request cancellation, and its only
// failure sink is the log plus a counter.
func (r *Reconciler) mirror(ctx context.Context, op string, call func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	r.mirrors.Add(1)
	go func() {
		defer r.mirrors.Done()
		if err := call(ctx); err != nil {
			r.metrics.IncMirrorFailure(op)
			r.logger.Error(r.logger.WithField(ctx, "mirror_op", op), "cart.mirror_write_failed", err)
		}
	}()
}

func toDraftItems(lines []Line) []upstream.DraftItem {
	items := make([]upstream.DraftItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, upstream.DraftItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			Brand:     line.Brand,
			Image:     line.Image,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}
	return items
}

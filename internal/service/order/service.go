package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/deliverus/backend/internal/models"
	"github.com/deliverus/backend/internal/repo"
	"github.com/deliverus/backend/internal/transport"
)

// Service orchestrates the order lifecycle: validation, pricing and the
// transactional writes. Every mutating operation runs in exactly one
// transaction; on any error inside it the whole write is rolled back.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

type TransitionKind string

const (
	TransitionConfirm TransitionKind = "confirm"
	TransitionSend    TransitionKind = "send"
	TransitionDeliver TransitionKind = "deliver"
)

// transitionFrom is the state an order must be in for each transition; a
// repeated or out-of-order transition is refused instead of overwriting the
// timestamp.
var transitionFrom = map[TransitionKind]Status{
	TransitionConfirm: StatusPending,
	TransitionSend:    StatusInProcess,
	TransitionDeliver: StatusSent,
}

type Filters struct {
	Status *Status
	From   *time.Time
	To     *time.Time // inclusive end of day
}

func (s *Service) Create(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*models.Order, error) {
	db := s.db.WithContext(ctx)

	cat, err := loadCatalog(db, req.RestaurantID, req.Products)
	if err != nil {
		return nil, err
	}
	if verr := validateCreate(req, cat); verr != nil {
		return nil, verr
	}

	lines := buildLines(req.Products, cat.products)
	price, shipping := priceWithShipping(subtotalOf(lines), cat.restaurant.ShippingCosts)

	o := &models.Order{
		UserID:        userID,
		RestaurantID:  req.RestaurantID,
		Address:       strings.TrimSpace(req.Address),
		Price:         price,
		ShippingCosts: shipping,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateOrder(tx, o); err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = o.ID
		}
		return repo.CreateOrderLines(tx, lines)
	})
	if err != nil {
		return nil, err
	}

	return repo.OrderWithLines(db, o.ID)
}

func (s *Service) Update(ctx context.Context, orderID, userID uint, req transport.UpdateOrderRequest) (*models.Order, error) {
	db := s.db.WithContext(ctx)

	o, err := repo.OrderByID(db, orderID)
	if err != nil {
		return nil, asNotFound(err, orderID)
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if st := StatusOf(o); st != StatusPending {
		return nil, fmt.Errorf("%w: order %d is %s, only pending orders can be edited", ErrConflict, orderID, st)
	}

	cat, err := loadCatalog(db, o.RestaurantID, req.Products)
	if err != nil {
		return nil, err
	}
	if verr := validateUpdate(req, o.RestaurantID, cat); verr != nil {
		return nil, verr
	}

	if req.Address != nil {
		o.Address = strings.TrimSpace(*req.Address)
	}

	var lines []models.OrderLine
	if len(req.Products) > 0 {
		if cat.restaurant == nil {
			return nil, fmt.Errorf("%w: restaurant %d", ErrNotFound, o.RestaurantID)
		}
		lines = buildLines(req.Products, cat.products)
		o.Price, o.ShippingCosts = priceWithShipping(subtotalOf(lines), cat.restaurant.ShippingCosts)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := repo.SaveOrder(tx, o); err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		if err := repo.DeleteOrderLines(tx, o.ID); err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = o.ID
		}
		return repo.CreateOrderLines(tx, lines)
	})
	if err != nil {
		return nil, err
	}

	return repo.OrderWithLines(db, o.ID)
}

func (s *Service) Destroy(ctx context.Context, orderID, userID uint) error {
	db := s.db.WithContext(ctx)

	o, err := repo.OrderByID(db, orderID)
	if err != nil {
		return asNotFound(err, orderID)
	}
	if o.UserID != userID {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		n, err := repo.DeleteOrder(tx, orderID)
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil
	})
}

// Transition applies confirm/send/deliver by stamping the matching timestamp.
// Delivering also refreshes the restaurant's rolling average service time
// inside the same transaction.
func (s *Service) Transition(ctx context.Context, orderID uint, kind TransitionKind) (*models.Order, error) {
	required, ok := transitionFrom[kind]
	if !ok {
		return nil, fmt.Errorf("unknown transition %q", kind)
	}

	db := s.db.WithContext(ctx)
	var out *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := repo.OrderByID(tx, orderID)
		if err != nil {
			return asNotFound(err, orderID)
		}
		if st := StatusOf(o); st != required {
			return fmt.Errorf("%w: cannot %s order %d while it is %s", ErrConflict, kind, orderID, st)
		}

		now := s.now()
		switch kind {
		case TransitionConfirm:
			o.StartedAt = &now
		case TransitionSend:
			o.SentAt = &now
		case TransitionDeliver:
			o.DeliveredAt = &now
		}
		if err := repo.SaveOrder(tx, o); err != nil {
			return err
		}
		if kind == TransitionDeliver {
			if err := refreshAverageServiceTime(tx, o.RestaurantID); err != nil {
				return err
			}
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Show(ctx context.Context, orderID uint) (*models.Order, error) {
	o, err := repo.OrderWithLinesAndRestaurant(s.db.WithContext(ctx), orderID)
	if err != nil {
		return nil, asNotFound(err, orderID)
	}
	return o, nil
}

func (s *Service) ListForRestaurant(ctx context.Context, restaurantID uint, f Filters) ([]models.Order, error) {
	var scopes []func(*gorm.DB) *gorm.DB
	if f.Status != nil {
		scopes = append(scopes, statusScope(*f.Status))
	}
	if f.From != nil {
		from := *f.From
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("created_at >= ?", from)
		})
	}
	if f.To != nil {
		end := f.To.AddDate(0, 0, 1)
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("created_at < ?", end)
		})
	}
	return repo.OrdersForRestaurant(s.db.WithContext(ctx), restaurantID, scopes...)
}

func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return repo.OrdersForUser(s.db.WithContext(ctx), userID)
}

func (s *Service) Analytics(ctx context.Context, restaurantID uint) (*transport.RestaurantAnalytics, error) {
	db := s.db.WithContext(ctx)

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	numYesterday, err := repo.CountOrdersCreatedBetween(db, restaurantID, yesterday, today)
	if err != nil {
		return nil, err
	}
	numPending, err := repo.CountPendingOrders(db, restaurantID)
	if err != nil {
		return nil, err
	}
	numDeliveredToday, err := repo.CountDeliveredSince(db, restaurantID, today)
	if err != nil {
		return nil, err
	}
	invoicedToday, err := repo.SumPriceCreatedSince(db, restaurantID, today)
	if err != nil {
		return nil, err
	}

	return &transport.RestaurantAnalytics{
		RestaurantID:            restaurantID,
		NumYesterdayOrders:      numYesterday,
		NumPendingOrders:        numPending,
		NumDeliveredTodayOrders: numDeliveredToday,
		InvoicedToday:           invoicedToday,
	}, nil
}

// loadCatalog fetches the restaurant and every referenced product once, so
// validation and pricing work over the same snapshot.
func loadCatalog(db *gorm.DB, restaurantID uint, lines []transport.OrderLineRequest) (catalog, error) {
	restaurant, err := repo.RestaurantByID(db, restaurantID)
	if err != nil {
		return catalog{}, err
	}

	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		if l.ProductID > 0 {
			ids = append(ids, l.ProductID)
		}
	}
	products, err := repo.ProductsByIDs(db, ids)
	if err != nil {
		return catalog{}, err
	}

	return catalog{restaurant: restaurant, products: products}, nil
}

// buildLines snapshots the current catalog price of each product. Only called
// after validation, so every product is present in the map.
func buildLines(reqLines []transport.OrderLineRequest, products map[uint]*models.Product) []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(reqLines))
	for _, l := range reqLines {
		p := products[l.ProductID]
		lines = append(lines, models.OrderLine{
			ProductID: l.ProductID,
			Quantity:  uint(l.Quantity),
			UnitPrice: p.Price,
		})
	}
	return lines
}

func refreshAverageServiceTime(tx *gorm.DB, restaurantID uint) error {
	delivered, err := repo.DeliveredOrders(tx, restaurantID)
	if err != nil {
		return err
	}

	var minutes *float64
	if len(delivered) > 0 {
		var total float64
		for _, o := range delivered {
			total += o.DeliveredAt.Sub(o.CreatedAt).Minutes()
		}
		avg := total / float64(len(delivered))
		minutes = &avg
	}
	return repo.SetAverageServiceMinutes(tx, restaurantID, minutes)
}

func asNotFound(err error, orderID uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	return err
}

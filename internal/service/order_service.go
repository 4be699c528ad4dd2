package service

import (
	"context"
	"errors"
	"fmt"

	"deliverytrack/internal/model"
	"deliverytrack/internal/realtime"
	"deliverytrack/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderService is the lifecycle engine: it decides which role may trigger
// which transition, applies the mutation, and fans the result out. Every
// successful mutation appends exactly one history entry and publishes only
// after the write has been persisted.
type OrderService interface {
	Create(ctx context.Context, actor *model.User, items []string) (*model.Order, error)
	List(ctx context.Context, actor *model.User) ([]model.Order, error)
	AssociateBuyer(ctx context.Context, actor *model.User, orderID, buyerID string) (*model.Order, error)
	AssignSeller(ctx context.Context, actor *model.User, orderID, sellerID string) (*model.Order, error)
	AdvanceStage(ctx context.Context, actor *model.User, orderID string) (*model.Order, error)
	MarkNotDelivered(ctx context.Context, actor *model.User, orderID string) (*model.Order, error)
	SoftDelete(ctx context.Context, actor *model.User, orderID string) (*model.Order, error)
	// Details returns the order even when soft-deleted; the admin detail
	// view is the one read that may see deleted orders.
	Details(ctx context.Context, orderID string) (*model.Order, error)
}

type orderService struct {
	orders repository.OrderRepository
	users  repository.UserRepository
	pub    realtime.Publisher
}

func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, pub realtime.Publisher) OrderService {
	return &orderService{orders: orders, users: users, pub: pub}
}

// Event names delivered over the realtime channel. Each carries the full
// updated order document.
const (
	EventOrderCreated    = "order_created"
	EventBuyerAssociated = "buyer_associated"
	EventSellerAssigned  = "seller_assigned"
	EventOrderUpdated    = "order_updated"
	EventOrderDeleted    = "order_deleted"
)

func (s *orderService) publish(event string, o *model.Order, rooms []string) {
	if s.pub == nil {
		return
	}
	// Best-effort by contract: the mutation is already durable, a delivery
	// failure must never surface to the caller.
	s.pub.Publish(event, o, rooms)
}

func (s *orderService) Create(ctx context.Context, actor *model.User, items []string) (*model.Order, error) {
	if len(items) == 0 {
		return nil, errors.New("items are required")
	}
	active, err := s.orders.FindActiveByBuyer(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveOrderExists
	}
	o := &model.Order{
		ID:           uuid.NewString(),
		Items:        items,
		CurrentStage: 1,
		BuyerID:      &actor.ID,
	}
	o.AddHistory(model.StageName(1), &actor.ID, actor.Name, "created by buyer")
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	s.publish(EventOrderCreated, o, []string{realtime.AdminRoom})
	return o, nil
}

func (s *orderService) List(ctx context.Context, actor *model.User) ([]model.Order, error) {
	var filter repository.OrderFilter
	switch actor.Role {
	case model.RoleBuyer:
		filter.BuyerID = actor.ID
	case model.RoleSeller:
		filter.SellerID = actor.ID
	}
	return s.orders.List(ctx, filter)
}

func (s *orderService) AssociateBuyer(ctx context.Context, actor *model.User, orderID, buyerID string) (*model.Order, error) {
	buyer, err := s.users.FindByID(ctx, buyerID)
	if err != nil || buyer.Role != model.RoleBuyer {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, ErrInvalidBuyer
	}
	o, err := s.loadForMutation(ctx, orderID)
	if err != nil {
		return nil, err
	}
	active, err := s.orders.FindActiveByBuyer(ctx, buyer.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveOrderExists
	}

	oldBuyerID := o.BuyerID
	o.BuyerID = &buyer.ID
	if oldBuyerID == nil {
		// A fresh association moves the order to stage 2. Swapping the
		// buyer on an already-associated order keeps the current stage.
		o.CurrentStage = 2
	}
	o.AddHistory(model.StageName(2), &actor.ID, actor.Name, fmt.Sprintf("associated buyer %s", buyer.ID))
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	rooms := []string{realtime.AdminRoom, realtime.UserChannel(buyer.ID)}
	if oldBuyerID != nil {
		// the detached buyer has to learn about it too
		rooms = append(rooms, realtime.UserChannel(*oldBuyerID))
	}
	s.publish(EventBuyerAssociated, o, rooms)
	return o, nil
}

func (s *orderService) AssignSeller(ctx context.Context, actor *model.User, orderID, sellerID string) (*model.Order, error) {
	seller, err := s.users.FindByID(ctx, sellerID)
	if err != nil || seller.Role != model.RoleSeller {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, ErrInvalidSeller
	}
	o, err := s.loadForMutation(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.SellerID = &seller.ID
	o.AddHistory("Seller Assigned", &actor.ID, actor.Name, fmt.Sprintf("assigned seller %s", seller.ID))
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(EventSellerAssigned, o, []string{realtime.AdminRoom, realtime.UserChannel(seller.ID)})
	return o, nil
}

func (s *orderService) AdvanceStage(ctx context.Context, actor *model.User, orderID string) (*model.Order, error) {
	o, err := s.loadForMutation(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.ownedBy(o, actor) {
		return nil, ErrForbidden
	}
	if o.CurrentStage >= 7 {
		return nil, ErrAlreadyDelivered
	}
	o.CurrentStage++
	o.AddHistory(model.StageName(o.CurrentStage), &actor.ID, actor.Name, "advance stage")
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(EventOrderUpdated, o, s.partyRooms(o))
	return o, nil
}

func (s *orderService) MarkNotDelivered(ctx context.Context, actor *model.User, orderID string) (*model.Order, error) {
	o, err := s.loadForMutation(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.ownedBy(o, actor) {
		return nil, ErrForbidden
	}
	if o.CurrentStage != 7 {
		return nil, ErrInvalidState
	}
	// The single permitted regression: back to Out for Delivery.
	o.CurrentStage = 6
	o.AddHistory("Marked as Not Delivered", &actor.ID, actor.Name, "moved back to out for delivery")
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(EventOrderUpdated, o, s.partyRooms(o))
	return o, nil
}

func (s *orderService) SoftDelete(ctx context.Context, actor *model.User, orderID string) (*model.Order, error) {
	o, err := s.loadForMutation(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case model.RoleAdmin:
		o.IsDeleted = true
		o.AddHistory("Deleted by Admin", &actor.ID, actor.Name, "admin delete")
	case model.RoleSeller:
		if !s.ownedBy(o, actor) {
			return nil, ErrForbidden
		}
		o.IsDeleted = true
		o.AddHistory("Deleted", &actor.ID, actor.Name, "soft delete")
	default:
		return nil, ErrForbidden
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(EventOrderDeleted, o, s.partyRooms(o))
	return o, nil
}

func (s *orderService) Details(ctx context.Context, orderID string) (*model.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// loadForMutation resolves the order and rejects mutations on soft-deleted
// ones. Reads that need deleted orders go through Details instead.
func (s *orderService) loadForMutation(ctx context.Context, orderID string) (*model.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.IsDeleted {
		return nil, ErrInvalidState
	}
	return o, nil
}

func (s *orderService) ownedBy(o *model.Order, actor *model.User) bool {
	return o.SellerID != nil && *o.SellerID == actor.ID
}

// partyRooms is the notification target set shared by update and delete
// operations: admins always, plus whichever of buyer and seller is set.
func (s *orderService) partyRooms(o *model.Order) []string {
	rooms := []string{realtime.AdminRoom}
	if o.BuyerID != nil {
		rooms = append(rooms, realtime.UserChannel(*o.BuyerID))
	}
	if o.SellerID != nil {
		rooms = append(rooms, realtime.UserChannel(*o.SellerID))
	}
	return rooms
}

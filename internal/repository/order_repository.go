package repository

import (
	"context"

	"deliverytrack/internal/model"
	"gorm.io/gorm"
)

// OrderFilter scopes list queries by role. Zero value means all orders.
type OrderFilter struct {
	BuyerID  string
	SellerID string
}

type StageCount struct {
	Stage int   `gorm:"column:current_stage"`
	Count int64 `gorm:"column:count"`
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	// FindByID returns soft-deleted orders too; callers that must not see
	// them check IsDeleted themselves.
	FindByID(ctx context.Context, id string) (*model.Order, error)
	Save(ctx context.Context, o *model.Order) error
	// FindActiveByBuyer returns the buyer's active order (not deleted,
	// stage < 7), or nil when there is none.
	FindActiveByBuyer(ctx context.Context, buyerID string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	ListDelivered(ctx context.Context) ([]model.Order, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStage(ctx context.Context) ([]StageCount, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func historyOrdered(db *gorm.DB) *gorm.DB {
	return db.Order("order_history_entries.id ASC")
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).
		Preload("History", historyOrdered).
		Preload("Buyer").
		Preload("Seller").
		First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Save(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(o).Error
}

func (r *orderRepository) FindActiveByBuyer(ctx context.Context, buyerID string) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND is_deleted = ? AND current_stage < ?", buyerID, false, 7).
		First(&o).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	var list []model.Order
	q := r.db.WithContext(ctx).
		Preload("History", historyOrdered).
		Preload("Buyer").
		Preload("Seller").
		Where("is_deleted = ?", false)
	if filter.BuyerID != "" {
		q = q.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.SellerID != "" {
		q = q.Where("seller_id = ?", filter.SellerID)
	}
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListDelivered(ctx context.Context) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Preload("History", historyOrdered).
		Where("is_deleted = ? AND current_stage = ?", false, 7).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) CountAll(ctx context.Context) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("is_deleted = ?", false).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *orderRepository) CountByStage(ctx context.Context) ([]StageCount, error) {
	var rows []StageCount
	if err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("current_stage, COUNT(*) AS count").
		Where("is_deleted = ?", false).
		Group("current_stage").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

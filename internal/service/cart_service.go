package service

import (
	"strings"

	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartOwner 购物车归属：登录用户与匿名会话二选一
type CartOwner struct {
	Kind       string
	UserID     uint
	SessionKey string
}

// UserOwner 登录用户归属
func UserOwner(userID uint) CartOwner {
	return CartOwner{Kind: constants.CartOwnerUser, UserID: userID}
}

// SessionOwner 匿名会话归属
func SessionOwner(sessionKey string) CartOwner {
	return CartOwner{Kind: constants.CartOwnerSession, SessionKey: strings.TrimSpace(sessionKey)}
}

// IsAnonymous 是否匿名会话
func (o CartOwner) IsAnonymous() bool {
	return o.Kind == constants.CartOwnerSession
}

// Key 归属键，与 carts.owner_key 一致
func (o CartOwner) Key() (string, error) {
	switch o.Kind {
	case constants.CartOwnerUser:
		if o.UserID == 0 {
			return "", ErrCartOwnerRequired
		}
		return models.UserOwnerKey(o.UserID), nil
	case constants.CartOwnerSession:
		if strings.TrimSpace(o.SessionKey) == "" {
			return "", ErrCartOwnerRequired
		}
		return models.SessionOwnerKey(o.SessionKey), nil
	default:
		return "", ErrCartOwnerRequired
	}
}

func (o CartOwner) newCart() *models.Cart {
	if o.Kind == constants.CartOwnerUser {
		userID := o.UserID
		return &models.Cart{UserID: &userID}
	}
	key := strings.TrimSpace(o.SessionKey)
	return &models.Cart{SessionKey: &key}
}

// MintSessionKey 生成匿名购物车会话键
func MintSessionKey() string {
	return uuid.NewString()
}

// CartLineResult 加购/改量后的返回
type CartLineResult struct {
	Line      models.CartItem `json:"line"`
	LineTotal models.Money    `json:"line_total"`
	CartTotal models.Money    `json:"cart_total"`
	ItemCount int64           `json:"item_count"`
}

// CartLineView 购物车行（用于展示）
type CartLineView struct {
	ItemID    uint         `json:"item_id"`
	ProductID uint         `json:"product_id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	ImageRef  string       `json:"image_ref"`
	UnitPrice models.Money `json:"unit_price"`
	Quantity  int64        `json:"quantity"`
	LineTotal models.Money `json:"line_total"`
	Stock     int64        `json:"stock"`
}

// CartView 购物车详情
type CartView struct {
	CartID    uint           `json:"cart_id"`
	Lines     []CartLineView `json:"lines"`
	Total     models.Money   `json:"total"`
	ItemCount int64          `json:"item_count"`
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	ledger      *StockLedger
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, ledger *StockLedger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		ledger:      ledger,
	}
}

// ResolveCart 获取或创建归属的未下单购物车，同一归属重复调用返回同一购物车
func (s *CartService) ResolveCart(owner CartOwner) (*models.Cart, error) {
	key, err := owner.Key()
	if err != nil {
		return nil, err
	}
	cart, err := s.cartRepo.GetOpenByOwnerKey(key)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = owner.newCart()
	createErr := s.cartRepo.Create(cart)
	if createErr == nil {
		return cart, nil
	}
	// 并发首次创建时唯一索引拒绝了后来者，读取胜出者的购物车
	winner, err := s.cartRepo.GetOpenByOwnerKey(key)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, createErr
	}
	return winner, nil
}

// FindOpenCart 只读查询，不创建
func (s *CartService) FindOpenCart(owner CartOwner) (*models.Cart, error) {
	key, err := owner.Key()
	if err != nil {
		return nil, err
	}
	return s.cartRepo.GetOpenByOwnerKey(key)
}

// AddLine 加入商品，已存在时累加数量；累加后的数量受库存约束
func (s *CartService) AddLine(cart *models.Cart, productID uint, quantity int64) (*CartLineResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if cart == nil || cart.ID == 0 {
		return nil, ErrCartOwnerRequired
	}
	if cart.IsOrdered {
		return nil, ErrCartClosed
	}

	var line *models.CartItem
	var product *models.Product
	err := s.cartRepo.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		if err := lockOpenCart(carts, cart.ID); err != nil {
			return err
		}
		var err error
		product, err = s.productRepo.WithTx(tx).GetByID(productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		existing, err := carts.FindLine(cart.ID, productID)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := s.ledger.Validate(product, quantity, 0); err != nil {
				return err
			}
			item := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
			createErr := tx.Transaction(func(inner *gorm.DB) error {
				return s.cartRepo.WithTx(inner).CreateLine(item)
			})
			if createErr == nil {
				line = item
				return nil
			}
			// 并发插入同一 (cart, product)，改走累加
			existing, err = carts.FindLine(cart.ID, productID)
			if err != nil {
				return err
			}
			if existing == nil {
				return createErr
			}
		}

		affected, err := carts.IncrementLineGuarded(existing.ID, productID, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.stockErrorFor(carts, productID, existing, quantity, tx)
		}
		line, err = carts.FindLine(cart.ID, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.lineResult(cart.ID, line, product)
}

// SetLineQuantity 替换已有行的数量
func (s *CartService) SetLineQuantity(cart *models.Cart, productID uint, quantity int64) (*CartLineResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if cart == nil || cart.ID == 0 {
		return nil, ErrItemNotInCart
	}
	if cart.IsOrdered {
		return nil, ErrCartClosed
	}

	var line *models.CartItem
	var product *models.Product
	err := s.cartRepo.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		if err := lockOpenCart(carts, cart.ID); err != nil {
			return err
		}
		var err error
		product, err = s.productRepo.WithTx(tx).GetByID(productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}
		existing, err := carts.FindLine(cart.ID, productID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrItemNotInCart
		}
		affected, err := carts.SetLineGuarded(existing.ID, productID, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.stockErrorFor(carts, productID, existing, quantity, tx)
		}
		line, err = carts.FindLine(cart.ID, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.lineResult(cart.ID, line, product)
}

// RemoveLine 删除本购物车内的条目，不属于该购物车时视为不存在
func (s *CartService) RemoveLine(cart *models.Cart, itemID uint) error {
	if cart == nil || cart.ID == 0 {
		return ErrCartItemNotFound
	}
	affected, err := s.cartRepo.DeleteLine(cart.ID, itemID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Total 按当前商品价格单次聚合计算总额
func (s *CartService) Total(cart *models.Cart) (models.Money, error) {
	if cart == nil || cart.ID == 0 {
		return models.Money{}, nil
	}
	total, err := s.cartRepo.SumTotal(cart.ID)
	if err != nil {
		return models.Money{}, err
	}
	return models.NewMoneyFromDecimal(total), nil
}

// ItemCount 归属的购物车件数，没有购物车时为 0 且不会创建
func (s *CartService) ItemCount(owner CartOwner) (int64, error) {
	cart, err := s.FindOpenCart(owner)
	if err != nil {
		return 0, err
	}
	if cart == nil {
		return 0, nil
	}
	return s.cartRepo.ItemCount(cart.ID)
}

// ListLines 购物车明细
func (s *CartService) ListLines(cart *models.Cart) (*CartView, error) {
	view := &CartView{Lines: []CartLineView{}}
	if cart == nil || cart.ID == 0 {
		return view, nil
	}
	view.CartID = cart.ID
	items, err := s.cartRepo.ListLines(cart.ID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		lineTotal := item.Product.Price.Mul(item.Quantity)
		view.Lines = append(view.Lines, CartLineView{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Slug:      item.Product.Slug,
			ImageRef:  item.Product.ImageRef,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
			Stock:     item.Product.Stock,
		})
		view.ItemCount += item.Quantity
	}
	total, err := s.Total(cart)
	if err != nil {
		return nil, err
	}
	view.Total = total
	return view, nil
}

// MergeSessionCart 登录后把匿名购物车并入用户购物车，超出库存的部分丢弃
func (s *CartService) MergeSessionCart(sessionKey string, userID uint) error {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" || userID == 0 {
		return nil
	}
	anon, err := s.cartRepo.GetOpenByOwnerKey(models.SessionOwnerKey(sessionKey))
	if err != nil || anon == nil {
		return err
	}
	target, err := s.ResolveCart(UserOwner(userID))
	if err != nil {
		return err
	}

	return s.cartRepo.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		lines, err := carts.SnapshotLines(anon.ID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			existing, err := carts.FindLine(target.ID, line.ProductID)
			if err != nil {
				return err
			}
			var inCart int64
			if existing != nil {
				inCart = existing.Quantity
			}
			allowed := line.Quantity
			if room := line.Stock - inCart; room < allowed {
				allowed = room
			}
			if allowed <= 0 {
				logger.Warnw("cart_merge_line_dropped",
					"user_id", userID,
					"product_id", line.ProductID,
					"quantity", line.Quantity,
					"stock", line.Stock,
				)
				continue
			}
			if existing == nil {
				if err := carts.CreateLine(&models.CartItem{CartID: target.ID, ProductID: line.ProductID, Quantity: allowed}); err != nil {
					return err
				}
				continue
			}
			affected, err := carts.IncrementLineGuarded(existing.ID, line.ProductID, allowed)
			if err != nil {
				return err
			}
			if affected == 0 {
				logger.Warnw("cart_merge_line_dropped",
					"user_id", userID,
					"product_id", line.ProductID,
					"quantity", line.Quantity,
					"stock", line.Stock,
				)
			}
		}
		return carts.Delete(anon.ID)
	})
}

// lockOpenCart 事务内确认购物车仍未下单，防止并发结算后继续写入已归档的购物车
func lockOpenCart(carts repository.CartRepository, cartID uint) error {
	open, err := carts.LockOpen(cartID)
	if err != nil {
		return err
	}
	if open == nil {
		return ErrCartClosed
	}
	return nil
}

func (s *CartService) stockErrorFor(carts repository.CartRepository, productID uint, existing *models.CartItem, requested int64, tx *gorm.DB) error {
	stockErr := &StockError{ProductID: productID, InCart: existing.Quantity, Requested: requested}
	current, err := s.productRepo.WithTx(tx).GetByID(productID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrProductNotFound
	}
	stockErr.Available = current.Stock
	if fresh, err := carts.FindLine(existing.CartID, productID); err == nil && fresh != nil {
		stockErr.InCart = fresh.Quantity
	}
	return stockErr
}

func (s *CartService) lineResult(cartID uint, line *models.CartItem, product *models.Product) (*CartLineResult, error) {
	if line == nil {
		return nil, ErrCartItemNotFound
	}
	line.Product = product
	total, err := s.cartRepo.SumTotal(cartID)
	if err != nil {
		return nil, err
	}
	count, err := s.cartRepo.ItemCount(cartID)
	if err != nil {
		return nil, err
	}
	return &CartLineResult{
		Line:      *line,
		LineTotal: product.Price.Mul(line.Quantity),
		CartTotal: models.NewMoneyFromDecimal(total),
		ItemCount: count,
	}, nil
}

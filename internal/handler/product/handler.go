package product

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/haggle/backend/internal/model/product"
	"github.com/zhouzirui/haggle/backend/pkg/utils"
)

// Handler 商品信息的HTTP处理器
type Handler struct {
	item product.Product
}

// New 创建商品处理器
func New(item product.Product) *Handler {
	return &Handler{item: item.Clone()}
}

// RegisterRoutes 注册商品相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/product", h.handleGetProduct)
}

type productResponse struct {
	Name               string   `json:"name"`
	BasePrice          string   `json:"basePrice"`
	FloorPrice         string   `json:"floorPrice"`
	Features           []string `json:"features"`
	MinDiscountPercent string   `json:"minDiscountPercent"`
	MaxDiscountPercent string   `json:"maxDiscountPercent"`
	MaxRounds          int      `json:"maxRounds"`
}

// handleGetProduct 返回商品条款
func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, productResponse{
		Name:               h.item.Name,
		BasePrice:          h.item.BasePrice.StringFixed(2),
		FloorPrice:         h.item.FloorPrice().StringFixed(2),
		Features:           h.item.Features,
		MinDiscountPercent: h.item.MinDiscount.Shift(2).String(),
		MaxDiscountPercent: h.item.MaxDiscountPercent(),
		MaxRounds:          h.item.MaxRounds,
	})
}

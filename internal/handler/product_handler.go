package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/service"
	"github.com/prohmpiriya/tienda-api/pkg/response"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles GET /products - lists products with filters, sorting and pagination
func (h *ProductHandler) List(c *gin.Context) {
	var filter dto.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.productService.ListProducts(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err, "Failed to list products")
		return
	}

	if result.Pagination != nil {
		response.Paginated(c, result.Products, result.Pagination)
		return
	}
	response.SuccessWithMeta(c, result.Products, gin.H{"count": result.Count})
}

// GetByID handles GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "Failed to get product")
		return
	}

	response.Success(c, product)
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "Failed to create product")
		return
	}

	response.Created(c, product)
}

// Update handles PUT /products/:id - partial update, absent fields are kept
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err, "Failed to update product")
		return
	}

	response.Success(c, product)
}

// AdjustStock handles PATCH /products/:id/stock
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		handleError(c, err, "Failed to adjust stock")
		return
	}

	response.Success(c, product)
}

// Delete handles DELETE /products/:id - soft delete
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		handleError(c, err, "Failed to delete product")
		return
	}

	response.Success(c, gin.H{"id": id, "deleted": true})
}

// Search handles GET /products/search?q=
func (h *ProductHandler) Search(c *gin.Context) {
	var req dto.SearchProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	products, err := h.productService.SearchProducts(c.Request.Context(), req.Query)
	if err != nil {
		handleError(c, err, "Failed to search products")
		return
	}

	response.SuccessWithMeta(c, products, gin.H{"count": len(products), "query": req.Query})
}

// ByCategory handles GET /products/category/:category
func (h *ProductHandler) ByCategory(c *gin.Context) {
	category := c.Param("category")

	products, err := h.productService.ListByCategory(c.Request.Context(), category)
	if err != nil {
		handleError(c, err, "Failed to list products by category")
		return
	}

	response.SuccessWithMeta(c, products, gin.H{"count": len(products), "category": category})
}

// Categories handles GET /products/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	response.Success(c, h.productService.ListCategories(c.Request.Context()))
}

// Brands handles GET /products/brands
func (h *ProductHandler) Brands(c *gin.Context) {
	response.Success(c, h.productService.ListBrands(c.Request.Context()))
}

// Statistics handles GET /products/statistics
func (h *ProductHandler) Statistics(c *gin.Context) {
	response.Success(c, h.productService.GetStatistics(c.Request.Context()))
}

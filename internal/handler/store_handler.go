package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/service"
	"github.com/prohmpiriya/tienda-api/pkg/response"
)

// StoreHandler handles document store HTTP requests
type StoreHandler struct {
	storeService service.StoreService
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(storeService service.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// List handles GET /store/products
func (h *StoreHandler) List(c *gin.Context) {
	var filter dto.StoreListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.storeService.ListProducts(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err, "Failed to list stored products")
		return
	}

	response.SuccessWithMeta(c, result.Products, gin.H{"count": result.Count})
}

// GetByID handles GET /store/products/:id
func (h *StoreHandler) GetByID(c *gin.Context) {
	product, err := h.storeService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, "Failed to get stored product")
		return
	}

	response.Success(c, product)
}

// Create handles POST /store/products
func (h *StoreHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.storeService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "Failed to create stored product")
		return
	}

	response.Created(c, product)
}

// Update handles PUT /store/products/:id
func (h *StoreHandler) Update(c *gin.Context) {
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.storeService.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "Failed to update stored product")
		return
	}

	response.Success(c, product)
}

// Delete handles DELETE /store/products/:id - removes the document
func (h *StoreHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.storeService.DeleteProduct(c.Request.Context(), id); err != nil {
		handleError(c, err, "Failed to delete stored product")
		return
	}

	response.Success(c, gin.H{"id": id, "deleted": true})
}

// Search handles GET /store/search/:term - prefix match on title, then category
func (h *StoreHandler) Search(c *gin.Context) {
	term := c.Param("term")

	result, err := h.storeService.Search(c.Request.Context(), term)
	if err != nil {
		handleError(c, err, "Failed to search stored products")
		return
	}

	response.SuccessWithMeta(c, result.Products, gin.H{"count": result.Count, "term": term})
}

// Categories handles GET /store/categories
func (h *StoreHandler) Categories(c *gin.Context) {
	categories, err := h.storeService.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err, "Failed to list categories")
		return
	}

	response.Success(c, categories)
}

// Initialize handles POST /store/initialize - inserts the sample products
func (h *StoreHandler) Initialize(c *gin.Context) {
	result, err := h.storeService.Initialize(c.Request.Context())
	if err != nil {
		handleError(c, err, "Failed to initialize store")
		return
	}

	response.Created(c, result)
}

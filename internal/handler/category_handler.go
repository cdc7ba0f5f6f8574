package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/dto"
	"reviewhub/internal/middleware"
	"reviewhub/internal/service"
)

type CategoryHandler struct {
	categoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// Categories are a collection-style resource: list and create only, plus
// delete by slug. No detail route, no update.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup, jwtSecret string) {
	categories := rg.Group("/categories")
	{
		categories.GET("", h.List)
		categories.POST("", middleware.Authenticate(jwtSecret), middleware.RequireAdminWrites(), h.Create)
		categories.DELETE("/:slug", middleware.Authenticate(jwtSecret), middleware.RequireAdminWrites(), h.Delete)
	}
}

// GET /api/v1/categories?search=
func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, total, err := h.categoryService.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	results := make([]dto.CategoryResponse, 0, len(list))
	for _, category := range list {
		results = append(results, dto.CategoryFromModel(category))
	}
	c.JSON(http.StatusOK, dto.NewPaginated(results, total, page, pageSize))
}

// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSlug), errors.Is(err, service.ErrSlugInUse):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.CategoryFromModel(*category))
}

// DELETE /api/v1/categories/:slug
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

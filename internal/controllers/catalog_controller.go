package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/catalog"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/gin-gonic/gin"
)

// CatalogController handles HTTP requests related to ingredients
type CatalogController interface {
	// GetIngredients lists the catalog
	GetIngredients(c *gin.Context)
	// GetIngredientByID retrieves one ingredient
	GetIngredientByID(c *gin.Context)
	// ReloadCatalog refetches the catalog from its source
	ReloadCatalog(c *gin.Context)
}

type catalogController struct {
	catalog *catalog.Catalog
}

// IngredientsResponse is the catalog listing
type IngredientsResponse struct {
	State catalog.State       `json:"state"`
	Data  []models.Ingredient `json:"data"`
}

// NewCatalogController creates a new instance of CatalogController
func NewCatalogController(c *catalog.Catalog) CatalogController {
	return &catalogController{catalog: c}
}

func (c *catalogController) ensureLoaded(ctx *gin.Context) bool {
	return ensureCatalog(ctx, c.catalog)
}

// ensureCatalog triggers the first load lazily. A failed load is recorded
// in the catalog state and is not retried here; ReloadCatalog does that.
func ensureCatalog(ctx *gin.Context, cat *catalog.Catalog) bool {
	if cat.State().Status == catalog.StatusIdle {
		_ = cat.Load(ctx.Request.Context())
	}

	state := cat.State()
	if state.Count > 0 || state.Status == catalog.StatusReady {
		return true
	}
	reason := state.Error
	if state.Status == catalog.StatusLoading {
		reason = "catalog is loading"
	}
	ctx.JSON(http.StatusServiceUnavailable, models.NewAPIError(models.ErrCatalogUnavailable,
		"Ingredient catalog is unavailable", map[string]interface{}{"reason": reason}))
	return false
}

// GetIngredients godoc
// @Summary List ingredients
// @Description List the ingredient catalog in display order, optionally filtered by type
// @Tags ingredients
// @Produce json
// @Param type query string false "Filter by type" Enums(bun, main, sauce)
// @Success 200 {object} IngredientsResponse
// @Failure 400 {object} models.APIError
// @Failure 503 {object} models.APIError
// @Router /api/v1/public/ingredients [get]
func (c *catalogController) GetIngredients(ctx *gin.Context) {
	if !c.ensureLoaded(ctx) {
		return
	}

	items := c.catalog.All()
	if kind := ctx.Query("type"); kind != "" {
		category := models.Category(kind)
		if category != models.CategoryBun && !category.IsTopping() {
			badRequest(ctx, "Unknown ingredient type", nil)
			return
		}
		items = c.catalog.ByCategory(category)
	}
	if items == nil {
		items = []models.Ingredient{}
	}

	ctx.JSON(http.StatusOK, IngredientsResponse{State: c.catalog.State(), Data: items})
}

// GetIngredientByID godoc
// @Summary Get ingredient by ID
// @Description Get a single ingredient by its catalog id
// @Tags ingredients
// @Produce json
// @Param id path string true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/ingredients/{id} [get]
func (c *catalogController) GetIngredientByID(ctx *gin.Context) {
	if !c.ensureLoaded(ctx) {
		return
	}
	item, err := c.catalog.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// ReloadCatalog godoc
// @Summary Reload the catalog
// @Description Refetch the ingredient catalog. On failure the previous items stay available.
// @Tags admin
// @Produce json
// @Success 200 {object} catalog.State
// @Failure 502 {object} models.APIError
// @Failure 503 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/catalog/reload [post]
func (c *catalogController) ReloadCatalog(ctx *gin.Context) {
	if err := c.catalog.Reload(ctx.Request.Context()); err != nil {
		status, code := errorStatus(err)
		if status == http.StatusInternalServerError {
			status, code = http.StatusBadGateway, models.ErrCatalogUnavailable
		}
		ctx.JSON(status, models.NewAPIError(code, err.Error(),
			map[string]interface{}{"state": c.catalog.State()}))
		return
	}
	ctx.JSON(http.StatusOK, c.catalog.State())
}

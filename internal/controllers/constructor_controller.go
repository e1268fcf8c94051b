package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/builder"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/catalog"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/middleware"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/workspace"
	"github.com/gin-gonic/gin"
)

// ConstructorController handles HTTP requests against the caller's burger constructor
type ConstructorController interface {
	// GetConstructor returns the constructor contents
	GetConstructor(c *gin.Context)
	// ClearConstructor empties the constructor
	ClearConstructor(c *gin.Context)
	// AddItem places an ingredient
	AddItem(c *gin.Context)
	// RemoveItem removes one topping placement
	RemoveItem(c *gin.Context)
	// MoveItem moves a topping between two positions
	MoveItem(c *gin.Context)
	// MoveItemUp swaps a topping with the one above it
	MoveItemUp(c *gin.Context)
	// MoveItemDown swaps a topping with the one below it
	MoveItemDown(c *gin.Context)
}

type constructorController struct {
	registry *workspace.Registry
	catalog  *catalog.Catalog
}

// ConstructorResponse is the constructor contents with usage counts per ingredient
type ConstructorResponse struct {
	builder.Snapshot
	Counts map[string]int `json:"counts"`
}

// AddItemRequest names the catalog ingredient to place
type AddItemRequest struct {
	IngredientID string `json:"ingredientId" binding:"required"`
}

// MoveItemRequest moves the topping at From to To
type MoveItemRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

// NewConstructorController creates a new instance of ConstructorController
func NewConstructorController(registry *workspace.Registry, c *catalog.Catalog) ConstructorController {
	return &constructorController{registry: registry, catalog: c}
}

func (c *constructorController) workspace(ctx *gin.Context) *workspace.Workspace {
	return c.registry.Get(middleware.BuilderSessionFrom(ctx))
}

func (c *constructorController) respond(ctx *gin.Context, status int, w *workspace.Workspace) {
	ctx.JSON(status, ConstructorResponse{
		Snapshot: w.Constructor.Snapshot(),
		Counts:   w.Constructor.Counts(),
	})
}

// GetConstructor godoc
// @Summary Get the constructor
// @Description Get the bun, the topping stack, the total price and whether the burger can be ordered
// @Tags constructor
// @Produce json
// @Success 200 {object} ConstructorResponse
// @Router /api/v1/public/constructor [get]
func (c *constructorController) GetConstructor(ctx *gin.Context) {
	c.respond(ctx, http.StatusOK, c.workspace(ctx))
}

// ClearConstructor godoc
// @Summary Clear the constructor
// @Tags constructor
// @Produce json
// @Success 200 {object} ConstructorResponse
// @Failure 409 {object} models.APIError
// @Router /api/v1/public/constructor [delete]
func (c *constructorController) ClearConstructor(ctx *gin.Context) {
	w := c.workspace(ctx)
	if err := w.ClearConstructor(); err != nil {
		respondError(ctx, err)
		return
	}
	c.respond(ctx, http.StatusOK, w)
}

// AddItem godoc
// @Summary Add an ingredient
// @Description A bun replaces the current bun; any other ingredient is appended to the toppings
// @Tags constructor
// @Accept json
// @Produce json
// @Param item body AddItemRequest true "Ingredient to add"
// @Success 201 {object} ConstructorResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 503 {object} models.APIError
// @Router /api/v1/public/constructor/items [post]
func (c *constructorController) AddItem(ctx *gin.Context) {
	var req AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body", err)
		return
	}

	if !ensureCatalog(ctx, c.catalog) {
		return
	}
	ingredient, err := c.catalog.Get(req.IngredientID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	w := c.workspace(ctx)
	w.Constructor.Add(ingredient)
	c.respond(ctx, http.StatusCreated, w)
}

// RemoveItem godoc
// @Summary Remove a topping
// @Tags constructor
// @Produce json
// @Param placementId path string true "Placement ID"
// @Success 200 {object} ConstructorResponse
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/constructor/items/{placementId} [delete]
func (c *constructorController) RemoveItem(ctx *gin.Context) {
	w := c.workspace(ctx)
	if !w.Constructor.Remove(ctx.Param("placementId")) {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "No topping with this placement id"))
		return
	}
	c.respond(ctx, http.StatusOK, w)
}

// MoveItem godoc
// @Summary Move a topping
// @Description Move the topping at index from to index to. A target past either end is clamped.
// @Tags constructor
// @Accept json
// @Produce json
// @Param move body MoveItemRequest true "Indexes"
// @Success 200 {object} ConstructorResponse
// @Failure 400 {object} models.APIError
// @Router /api/v1/public/constructor/move [post]
func (c *constructorController) MoveItem(ctx *gin.Context) {
	var req MoveItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body", err)
		return
	}

	w := c.workspace(ctx)
	if err := w.Constructor.Move(*req.From, *req.To); err != nil {
		respondError(ctx, err)
		return
	}
	c.respond(ctx, http.StatusOK, w)
}

// MoveItemUp godoc
// @Summary Move a topping up
// @Description Swap a topping with its upper neighbour; the top topping stays in place
// @Tags constructor
// @Produce json
// @Param placementId path string true "Placement ID"
// @Success 200 {object} ConstructorResponse
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/constructor/items/{placementId}/up [post]
func (c *constructorController) MoveItemUp(ctx *gin.Context) {
	c.step(ctx, (*builder.Constructor).MoveUp)
}

// MoveItemDown godoc
// @Summary Move a topping down
// @Description Swap a topping with its lower neighbour; the bottom topping stays in place
// @Tags constructor
// @Produce json
// @Param placementId path string true "Placement ID"
// @Success 200 {object} ConstructorResponse
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/constructor/items/{placementId}/down [post]
func (c *constructorController) MoveItemDown(ctx *gin.Context) {
	c.step(ctx, (*builder.Constructor).MoveDown)
}

// step applies a one-place move. A topping already at the edge is left
// where it is and the request still succeeds.
func (c *constructorController) step(ctx *gin.Context, move func(*builder.Constructor, string) bool) {
	w := c.workspace(ctx)
	placementID := ctx.Param("placementId")
	if !move(w.Constructor, placementID) && !hasPlacement(w.Constructor.Snapshot(), placementID) {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "No topping with this placement id"))
		return
	}
	c.respond(ctx, http.StatusOK, w)
}

func hasPlacement(snap builder.Snapshot, placementID string) bool {
	for _, entry := range snap.Ingredients {
		if entry.PlacementID == placementID {
			return true
		}
	}
	return false
}

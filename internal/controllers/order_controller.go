package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/catalog"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/middleware"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/orders"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/workspace"
	"github.com/gin-gonic/gin"
)

// StatusAdvancer moves kitchen orders along their status flow
type StatusAdvancer interface {
	AdvanceStatus(ctx context.Context, number int, status models.OrderStatus) (models.Order, error)
}

// OrderController handles HTTP requests related to orders
type OrderController interface {
	// PlaceOrder submits the caller's constructor
	PlaceOrder(c *gin.Context)
	// GetCurrentOrder returns the state of the latest submission
	GetCurrentOrder(c *gin.Context)
	// ClearCurrentOrder acknowledges a finished submission
	ClearCurrentOrder(c *gin.Context)
	// ListOwnOrders refreshes and returns the caller's orders
	ListOwnOrders(c *gin.Context)
	// GetOrderByNumber retrieves one order with its ingredient lines
	GetOrderByNumber(c *gin.Context)
	// AdvanceOrderStatus moves a kitchen order to its next status
	AdvanceOrderStatus(c *gin.Context)
}

type orderController struct {
	registry *workspace.Registry
	catalog  *catalog.Catalog
	advancer StatusAdvancer
}

// OutcomeResponse is the submission state, with the order expanded once fulfilled
type OutcomeResponse struct {
	orders.Outcome
	Details *orders.Details `json:"details,omitempty"`
}

// StatusRequest is the target status of an order
type StatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=created pending done"`
}

// NewOrderController creates a new instance of OrderController. advancer
// may be nil when the kitchen is remote.
func NewOrderController(registry *workspace.Registry, c *catalog.Catalog, advancer StatusAdvancer) OrderController {
	return &orderController{registry: registry, catalog: c, advancer: advancer}
}

func (c *orderController) workspace(ctx *gin.Context) *workspace.Workspace {
	return c.registry.Get(middleware.BuilderSessionFrom(ctx))
}

// describe expands an order, loading the catalog first if nobody has yet.
// Ingredients the catalog cannot resolve are left out of the lines.
func (c *orderController) describe(ctx *gin.Context, order models.Order) orders.Details {
	if c.catalog.State().Status == catalog.StatusIdle {
		_ = c.catalog.Load(ctx.Request.Context())
	}
	return orders.Describe(order, c.catalog)
}

// PlaceOrder godoc
// @Summary Place an order
// @Description Submit the constructor's burger. The constructor is emptied once the kitchen accepts it and kept on failure.
// @Tags orders
// @Produce json
// @Success 201 {object} orders.Details
// @Failure 401 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders [post]
func (c *orderController) PlaceOrder(ctx *gin.Context) {
	gate := middleware.GateFrom(ctx)
	order, err := c.workspace(ctx).PlaceOrder(ctx.Request.Context(), gate.Token())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, c.describe(ctx, order))
}

// GetCurrentOrder godoc
// @Summary Get the current submission
// @Description Get the state of the latest order submission (idle, submitting, fulfilled, failed)
// @Tags orders
// @Produce json
// @Success 200 {object} OutcomeResponse
// @Security BearerAuth
// @Router /api/v1/protected/orders/current [get]
func (c *orderController) GetCurrentOrder(ctx *gin.Context) {
	outcome := c.workspace(ctx).Orders.Outcome()
	resp := OutcomeResponse{Outcome: outcome}
	if outcome.Order != nil {
		details := c.describe(ctx, *outcome.Order)
		resp.Details = &details
	}
	ctx.JSON(http.StatusOK, resp)
}

// ClearCurrentOrder godoc
// @Summary Acknowledge the current submission
// @Description Return the submission state to idle. Refused while a submission is in flight.
// @Tags orders
// @Produce json
// @Success 200 {object} OutcomeResponse
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/current [delete]
func (c *orderController) ClearCurrentOrder(ctx *gin.Context) {
	w := c.workspace(ctx)
	if !w.Orders.Clear() {
		respondError(ctx, orders.ErrSubmissionInFlight)
		return
	}
	ctx.JSON(http.StatusOK, OutcomeResponse{Outcome: w.Orders.Outcome()})
}

// ListOwnOrders godoc
// @Summary List own orders
// @Description Fetch the caller's orders, newest first
// @Tags orders
// @Produce json
// @Success 200 {object} orders.HistoryState
// @Failure 401 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders [get]
func (c *orderController) ListOwnOrders(ctx *gin.Context) {
	gate := middleware.GateFrom(ctx)
	user, _ := gate.User()
	w := c.workspace(ctx)

	// the history follows the profile feed's owner
	w.Profile(user, gate.Token())
	if err := w.History.Refresh(ctx.Request.Context(), gate.Token()); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, w.History.State())
}

// GetOrderByNumber godoc
// @Summary Get order by number
// @Description Get an order with its ingredients grouped and priced. Orders held by a live feed are answered without a round trip.
// @Tags orders
// @Produce json
// @Param number path int true "Order number"
// @Success 200 {object} orders.Details
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Router /api/v1/public/orders/{number} [get]
func (c *orderController) GetOrderByNumber(ctx *gin.Context) {
	number, err := strconv.Atoi(ctx.Param("number"))
	if err != nil {
		badRequest(ctx, "Invalid order number format", err)
		return
	}

	w := c.workspace(ctx)
	order, ok := w.Lookup(number)
	if !ok {
		order, err = w.Orders.FetchByNumber(ctx.Request.Context(), number)
		if err != nil {
			respondError(ctx, err)
			return
		}
	}
	ctx.JSON(http.StatusOK, c.describe(ctx, order))
}

// AdvanceOrderStatus godoc
// @Summary Change an order's status
// @Description Move a kitchen order one step along created, pending, done
// @Tags admin
// @Accept json
// @Produce json
// @Param number path int true "Order number"
// @Param status body StatusRequest true "Target status"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Failure 501 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/orders/{number}/status [patch]
func (c *orderController) AdvanceOrderStatus(ctx *gin.Context) {
	if c.advancer == nil {
		ctx.JSON(http.StatusNotImplemented, models.NewAPIError(models.ErrBadRequest,
			"Order statuses are managed by the remote kitchen"))
		return
	}

	number, err := strconv.Atoi(ctx.Param("number"))
	if err != nil {
		badRequest(ctx, "Invalid order number format", err)
		return
	}
	var req StatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body", err)
		return
	}

	order, err := c.advancer.AdvanceStatus(ctx.Request.Context(), number, req.Status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

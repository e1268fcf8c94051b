package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/feed"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/middleware"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/workspace"
	"github.com/gin-gonic/gin"
)

// FeedController handles HTTP requests against the live order feeds
type FeedController interface {
	// GetFeed returns the public feed
	GetFeed(c *gin.Context)
	// GetBoard returns the ready / in work summary of the public feed
	GetBoard(c *gin.Context)
	// StreamFeed streams public feed updates as server-sent events
	StreamFeed(c *gin.Context)
	// ConnectFeed subscribes the public feed
	ConnectFeed(c *gin.Context)
	// DisconnectFeed unsubscribes the public feed
	DisconnectFeed(c *gin.Context)

	// GetProfileFeed returns the caller's own-orders feed
	GetProfileFeed(c *gin.Context)
	// StreamProfileFeed streams own-orders feed updates
	StreamProfileFeed(c *gin.Context)
	// ConnectProfileFeed subscribes the caller's own-orders feed
	ConnectProfileFeed(c *gin.Context)
	// DisconnectProfileFeed unsubscribes the caller's own-orders feed
	DisconnectProfileFeed(c *gin.Context)
}

type feedController struct {
	public    *feed.Synchronizer
	registry  *workspace.Registry
	policy    feed.PartitionPolicy
	limit     int
	keepAlive time.Duration
}

// BoardResponse is the board with the feed state it was built from
type BoardResponse struct {
	feed.Board
	Status feed.Status `json:"status"`
	Stale  bool        `json:"stale"`
}

// NewFeedController creates a new instance of FeedController
func NewFeedController(public *feed.Synchronizer, registry *workspace.Registry, policy feed.PartitionPolicy, limit int) FeedController {
	return &feedController{
		public:    public,
		registry:  registry,
		policy:    policy,
		limit:     limit,
		keepAlive: 15 * time.Second,
	}
}

func (c *feedController) publicFeed(*gin.Context) *feed.Synchronizer {
	return c.public
}

func (c *feedController) profileFeed(ctx *gin.Context) *feed.Synchronizer {
	gate := middleware.GateFrom(ctx)
	user, _ := gate.User()
	return c.registry.Get(middleware.BuilderSessionFrom(ctx)).Profile(user, gate.Token())
}

// GetFeed godoc
// @Summary Get the public feed
// @Description Get the latest snapshot of all orders. Stale is true when the snapshot is kept from an earlier connection.
// @Tags feed
// @Produce json
// @Success 200 {object} feed.View
// @Router /api/v1/public/feed [get]
func (c *feedController) GetFeed(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.public.View())
}

// GetBoard godoc
// @Summary Get the order board
// @Description Get the numbers of ready and in-work orders with the informational totals
// @Tags feed
// @Produce json
// @Success 200 {object} BoardResponse
// @Router /api/v1/public/feed/board [get]
func (c *feedController) GetBoard(ctx *gin.Context) {
	view := c.public.View()
	ctx.JSON(http.StatusOK, BoardResponse{
		Board:  feed.BuildBoard(view.Snapshot, c.policy, c.limit),
		Status: view.Status,
		Stale:  view.Stale,
	})
}

// StreamFeed godoc
// @Summary Stream the public feed
// @Description Server-sent events carrying the feed view after every change
// @Tags feed
// @Produce text/event-stream
// @Success 200 {object} feed.View
// @Router /api/v1/public/feed/stream [get]
func (c *feedController) StreamFeed(ctx *gin.Context) {
	c.stream(ctx, c.public)
}

// ConnectFeed godoc
// @Summary Connect the public feed
// @Tags feed
// @Produce json
// @Success 202 {object} feed.View
// @Failure 409 {object} models.APIError
// @Router /api/v1/public/feed/connect [post]
func (c *feedController) ConnectFeed(ctx *gin.Context) {
	c.connect(ctx, c.publicFeed)
}

// DisconnectFeed godoc
// @Summary Disconnect the public feed
// @Tags feed
// @Produce json
// @Success 200 {object} feed.View
// @Router /api/v1/public/feed/disconnect [post]
func (c *feedController) DisconnectFeed(ctx *gin.Context) {
	c.disconnect(ctx, c.publicFeed)
}

// GetProfileFeed godoc
// @Summary Get the own-orders feed
// @Tags feed
// @Produce json
// @Success 200 {object} feed.View
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/feed [get]
func (c *feedController) GetProfileFeed(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.profileFeed(ctx).View())
}

// StreamProfileFeed godoc
// @Summary Stream the own-orders feed
// @Tags feed
// @Produce text/event-stream
// @Success 200 {object} feed.View
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/feed/stream [get]
func (c *feedController) StreamProfileFeed(ctx *gin.Context) {
	c.stream(ctx, c.profileFeed(ctx))
}

// ConnectProfileFeed godoc
// @Summary Connect the own-orders feed
// @Tags feed
// @Produce json
// @Success 202 {object} feed.View
// @Failure 401 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/feed/connect [post]
func (c *feedController) ConnectProfileFeed(ctx *gin.Context) {
	c.connect(ctx, c.profileFeed)
}

// DisconnectProfileFeed godoc
// @Summary Disconnect the own-orders feed
// @Tags feed
// @Produce json
// @Success 200 {object} feed.View
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/feed/disconnect [post]
func (c *feedController) DisconnectProfileFeed(ctx *gin.Context) {
	c.disconnect(ctx, c.profileFeed)
}

func (c *feedController) connect(ctx *gin.Context, resolve func(*gin.Context) *feed.Synchronizer) {
	s := resolve(ctx)
	if err := s.Connect(ctx.Request.Context()); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, s.View())
}

func (c *feedController) disconnect(ctx *gin.Context, resolve func(*gin.Context) *feed.Synchronizer) {
	s := resolve(ctx)
	s.Disconnect()
	ctx.JSON(http.StatusOK, s.View())
}

// stream relays feed views until the client goes away
func (c *feedController) stream(ctx *gin.Context, s *feed.Synchronizer) {
	updates, cancel := s.Subscribe()
	defer cancel()

	ticker := time.NewTicker(c.keepAlive)
	defer ticker.Stop()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Request.Context().Done():
			return false
		case view, ok := <-updates:
			if !ok {
				return false
			}
			ctx.SSEvent("feed", view)
			return true
		case <-ticker.C:
			ctx.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}

package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/transfers/internal/auth"
	"github.com/Domenick1991/transfers/internal/service/routes"
	"github.com/gin-gonic/gin"
)

type RouteHandler struct {
	service routes.RouteUseCase
}

func NewRouteHandler(service routes.RouteUseCase) *RouteHandler {
	return &RouteHandler{service: service}
}

func (h *RouteHandler) Register(router *gin.RouterGroup, guard Guard) {
	public := guard.RequireAPIKeyOr(auth.PermRoutes)
	router.GET("", public, h.list)
	router.GET("/:id", public, h.get)
	router.POST("/refresh", guard.Require(auth.PermRoutes), h.refresh)
}

func (h *RouteHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]routeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, newRouteResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h *RouteHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	route, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRouteResponse(*route))
}

func (h *RouteHandler) refresh(c *gin.Context) {
	list, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]routeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, newRouteResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

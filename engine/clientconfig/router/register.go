package clientconfigrouter

import "github.com/gin-gonic/gin"

// Register mounts the client configuration endpoints under apiBase.
func Register(apiBase *gin.RouterGroup, h *Handler) {
	clients := apiBase.Group("/clients/:id")
	{
		clients.GET("/config", h.getConfig)
		clients.PUT("/config", h.putConfig)
		clients.GET("/config/history", h.getHistory)
	}
}

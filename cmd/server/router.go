package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/roomly/internal/handlers"
	"github.com/thereayou/roomly/internal/middleware"
	"github.com/thereayou/roomly/pkg/auth"
)

type routerDeps struct {
	auth   *handlers.AuthHandler
	users  *handlers.UserHandler
	rooms  *handlers.RoomHandler
	chat   *handlers.ChatHandler
	wsConn *handlers.WebSocketHandler
	jwt    *auth.JWTManager
	redis  *redis.Client
}

func registerRoutes(r *gin.Engine, d routerDeps) {
	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", d.auth.Register)
		authGroup.POST("/login", d.auth.Login)
		authGroup.POST("/logout", d.auth.Logout)
	}

	authed := middleware.AuthMiddleware(d.jwt, d.redis)

	users := r.Group("/api/users", authed)
	{
		users.GET("/me", d.users.GetMe)
		users.PATCH("/me", d.users.UpdateMe)
		users.GET("/search", d.users.SearchUsers)
		users.GET("/:id", d.users.GetUser)
	}

	rooms := r.Group("/api/rooms", authed)
	{
		rooms.POST("/create", d.rooms.CreateRoom)
		rooms.POST("/join", d.rooms.JoinRoom)
		rooms.DELETE("/delete", d.rooms.DeleteRoom)
		rooms.POST("/kick", d.rooms.KickMember)
		rooms.GET("/search", d.rooms.SearchRooms)
		rooms.GET("/user", d.rooms.GetUserRooms)
		rooms.GET("/user/ids", d.rooms.GetUserRoomIDs)
		rooms.GET("/own", d.rooms.GetOwnRooms)
		rooms.GET("/:id", d.rooms.GetRoom)
		rooms.GET("/:id/members", d.rooms.GetRoomMembers)
		rooms.GET("/:id/messages", d.chat.GetMessageHistory)
		rooms.DELETE("/:id/messages/:messageId", d.chat.DeleteMessage)
	}

	// WebSocket endpoint (token via query string or header)
	r.GET("/ws", middleware.WSAuthMiddleware(d.jwt, d.redis), d.wsConn.HandleWebSocket)
}

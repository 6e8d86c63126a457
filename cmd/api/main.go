package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/bakaydmytro/team-seeker-be/internal/auth"
	"github.com/bakaydmytro/team-seeker-be/internal/chat"
	"github.com/bakaydmytro/team-seeker-be/internal/config"
	"github.com/bakaydmytro/team-seeker-be/internal/database"
	"github.com/bakaydmytro/team-seeker-be/internal/http/handlers"
	"github.com/bakaydmytro/team-seeker-be/internal/http/middleware"
	"github.com/bakaydmytro/team-seeker-be/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.DBDSN == "" || cfg.JWTSecret == "" {
		log.Fatal("DB_DSN and JWT_SECRET must be set")
	}

	db, err := database.ConnectMySQL(cfg.DBDSN)
	if err != nil {
		log.Fatal("failed to connect db:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate:", err)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	hub := ws.NewHub()
	chats := chat.NewService(db, hub)

	r := gin.Default()

	authH := &handlers.AuthHandler{DB: db, Tokens: tokens}
	r.POST("/api/users/register", authH.Register)
	r.POST("/api/users/login", authH.Login)

	wsH := &handlers.WSHandler{
		Hub:                hub,
		Tokens:             tokens,
		Chats:              chats,
		InsecureSkipVerify: cfg.WSInsecureSkipVerify,
	}
	r.GET("/ws", wsH.Handle)

	authed := r.Group("/api")
	authed.Use(middleware.Auth(tokens))

	chatH := &handlers.ChatHandler{Chats: chats}
	authed.POST("/chats/create", chatH.CreateChat)
	authed.GET("/chats/:chat_id/messages", chatH.GetMessages)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(500, gin.H{"status": "error"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Println("listening on", addr)
	log.Fatal(r.Run(addr))
}

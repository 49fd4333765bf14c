package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/rubybelly/lechon-cart/internal/config"
	"github.com/rubybelly/lechon-cart/internal/pkg/auth"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run scripts/generate_token.go <user-id> <email>")
	}

	userID, err := strconv.ParseUint(os.Args[1], 10, 32)
	if err != nil {
		log.Fatal("Invalid user id:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	manager := auth.NewJWTManager(cfg)
	token, err := manager.GenerateAccessToken(uint(userID), os.Args[2])
	if err != nil {
		log.Fatal("Error generating token:", err)
	}

	if _, err := manager.ValidateAccessToken(token); err != nil {
		log.Fatal("Token verification failed:", err)
	}

	fmt.Printf("User: %d <%s>\n", userID, os.Args[2])
	fmt.Printf("Expires in: %s\n", cfg.JWT.AccessTokenExpiry)
	fmt.Printf("Authorization: Bearer %s\n", token)
}

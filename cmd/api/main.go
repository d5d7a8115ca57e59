package main

import (
	"context"
	"log"

	"github.com/Apurer/food-marketplace-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("marketplace API exited: %v", err)
	}
}

package main

import (
	"log"

	"github.com/MrSnakeDoc/urlpop/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ urlpop failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ urlpop stopped with error: %v", err)
	}
}

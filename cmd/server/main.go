package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fuzumoe/crawlplan-backend/internal/app"
)

// run is a variable so it can be overridden in tests.
var run = app.Run

// exitFunc is a variable wrapping os.Exit so it can be overridden in tests.
var exitFunc = os.Exit

// @title       CrawlPlan Backend API
// @version     1.0
// @description Crawling range planner and status-reconciliation service.
// @securityDefinitions.apikey JWTAuth
// @in   header
// @name Authorization
func main() {
	if err := run(); err != nil {
		log.Printf("error: %v\n", err)
		exitFunc(1)
	}
	fmt.Println("Server shut down cleanly")
}

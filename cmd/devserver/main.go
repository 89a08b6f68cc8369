// Command devserver serves the linkshrink client pages and forwards the
// gateway paths (/users, /token, /links, /r) to the API gateway, so the
// pages and the API share one origin during development.
package main

import (
	"context"
	"log"

	"github.com/patric-chuzhbe/linkshrink/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("dev server init: %v", err)
	}
	defer application.Close()

	if err := application.Run(context.Background()); err != nil {
		log.Printf("dev server stopped: %v", err)
	}
}

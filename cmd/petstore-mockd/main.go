// cmd/petstore-mockd/main.go
//
// A throwaway in-memory pet-store backend for developing the client without
// the real service. State lives in memory and resets on restart.

package main

import (
	"flag"
	"log"
	"os"

	"github.com/HristoTrendafilov/pet-store/internal/mockapi"
)

func main() {
	addr := flag.String("addr", defaultAddr(), "listen address")
	empty := flag.Bool("empty", false, "start without the fixture pets")
	flag.Parse()

	store := mockapi.SeedStore()
	if *empty {
		store = mockapi.NewStore()
	}

	srv := mockapi.NewServer(store)
	log.Printf("pet-store mock backend listening on %s", *addr)
	if err := srv.ListenAndServe(*addr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func defaultAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":5150"
}

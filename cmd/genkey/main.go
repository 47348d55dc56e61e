package main

import (
	"fmt"
	"log"

	"stablepay.backend/pkg/crypto"
)

// Prints a fresh tenant API key and the SHA-256 digest to store on the
// tenant row. The raw key is shown only here.
func main() {
	key, err := crypto.GenerateAPIKey()
	if err != nil {
		log.Fatalf("failed to generate api key: %v", err)
	}

	fmt.Println("Generated tenant API key")
	fmt.Printf("API_KEY=%s\n", key)
	fmt.Printf("API_KEY_HASH=%s\n", crypto.HashAPIKey(key))
}

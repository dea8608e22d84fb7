// Prints a bcrypt hash of the admin shared secret for ADMIN_PASSWORD_HASH.
// cmd/hash-admin-secret/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: hash-admin-secret <password>")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", string(hash))
}

//go:build ignore

// One-off: go run scripts/genhash.go 'Passw0rd!'
// Prints a bcrypt hash with the cost the API uses, for seeding users by hand.
package main

import (
	"fmt"
	"os"

	"taskmanager/internal/auth"
	"taskmanager/internal/validation"
)

func main() {
	password := "Passw0rd!"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	if !validation.StrongPassword(password) {
		fmt.Fprintln(os.Stderr, "warning: password would be rejected by /auth/register")
	}
	h, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	fmt.Print(h)
}

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	authsvc "github.com/gigboard/backend/internal/services/auth"
)

// password-hash prints a bcrypt hash suitable for seeding users.password_hash.
// The password is read from -password or, when omitted, from the first line of stdin.
func main() {
	password := flag.String("password", "", "plain-text password; read from stdin when empty")
	flag.Parse()

	value := *password
	if value == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "read password from stdin:", err)
			os.Exit(1)
		}
		value = strings.TrimRight(line, "\r\n")
	}

	hash, err := authsvc.HashPassword(value)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

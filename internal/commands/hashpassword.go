package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/app"
)

// HashPassword handles the hash-password subcommand
func HashPassword(args []string) {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	overwrite := fs.Bool("overwrite", false, "Overwrite existing auth file without asking")
	unmask := fs.Bool("insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kitchencar-kalender hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Creates the auth.secret file guarding the admin endpoints (Argon2id).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  AUTH_FILE    Path to auth file (default: auth.secret next to the binary)\n")
	}
	fs.Parse(args)

	in := bufio.NewReader(os.Stdin)

	username, err := prompt(in, "Enter username: ")
	if err != nil || username == "" {
		exitf("Username cannot be empty\n")
	}

	if *unmask {
		fmt.Fprintf(os.Stderr, "⚠️  WARNING: Password will be visible on screen!\n")
	}
	password := readSecret(in, "Enter password:   ", *unmask)
	confirm := readSecret(in, "Confirm password: ", *unmask)

	switch {
	case password == "":
		exitf("Password cannot be empty\n")
	case password != confirm:
		exitf("Passwords do not match\n")
	}

	path, err := app.CreateAuthFile(username, password, *overwrite)
	if errors.Is(err, app.ErrAuthFileExists) {
		answer, _ := prompt(in, fmt.Sprintf("Auth file already exists: %s\nOverwrite? (y/N): ", path))
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			exitf("Aborted\n")
		}
		path, err = app.CreateAuthFile(username, password, true)
	}
	if err != nil {
		exitf("Error: %v\n", err)
	}

	fmt.Printf("✅ Auth file created: %s (mode: 0400 read-only)\n", path)
	fmt.Printf("   Username: %s\n", username)
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

// readSecret reads a password, echoing asterisks when stdin is a
// terminal. Piped input and -insecure-unmask-password read plain lines.
func readSecret(in *bufio.Reader, label string, plain bool) string {
	fd := int(os.Stdin.Fd())
	if plain || !term.IsTerminal(fd) {
		s, _ := prompt(in, label)
		return s
	}

	fmt.Print(label)
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		pw, _ := term.ReadPassword(fd)
		fmt.Println()
		return string(pw)
	}
	defer term.Restore(fd, oldState)

	var pw []rune
	for {
		r, _, err := in.ReadRune()
		if err != nil {
			break
		}
		switch {
		case r == '\r' || r == '\n':
			fmt.Print("\r\n")
			return string(pw)
		case r == 127 || r == 8: // backspace
			if len(pw) > 0 {
				pw = pw[:len(pw)-1]
				fmt.Print("\b \b")
			}
		case r == 3: // Ctrl+C
			term.Restore(fd, oldState)
			fmt.Println()
			os.Exit(1)
		case r >= 32 && r != 127:
			pw = append(pw, r)
			fmt.Print("*")
		}
	}
	fmt.Print("\r\n")
	return string(pw)
}

package app

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	DefaultAuthFile = "auth.secret"
	authRealm       = "KitchenCar Kalender Admin"
)

// ErrAuthFileExists is returned by CreateAuthFile when it may not overwrite.
var ErrAuthFileExists = errors.New("auth file already exists")

// argon2Params describes an Argon2id hash (OWASP recommended defaults).
type argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

var defaultArgon2 = argon2Params{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32}

const saltLen = 16

// Credentials is the single admin account allowed to reload data.
type Credentials struct {
	User string
	Hash string
}

// adminCredentials is nil when no auth file exists (local development).
var adminCredentials *Credentials

// AuthFilePath resolves the auth file: AUTH_FILE / config, otherwise
// auth.secret next to the binary.
func AuthFilePath() (string, error) {
	if Settings.AuthFile != "" {
		return Settings.AuthFile, nil
	}
	if v := os.Getenv("AUTH_FILE"); v != "" {
		return v, nil
	}
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(execPath), DefaultAuthFile), nil
}

// LoadAuthCredentials reads the admin account. A missing file leaves the
// admin endpoints open and logs a loud warning.
func LoadAuthCredentials() error {
	path, err := AuthFilePath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			adminCredentials = nil
			log.Printf("⚠️  WARNING: no auth file at %s, admin endpoints are UNPROTECTED (local development only)", path)
			log.Printf("⚠️  Create one with: kitchencar-kalender hash-password")
			return nil
		}
		return fmt.Errorf("failed to read auth file: %w", err)
	}

	user, hash, ok := strings.Cut(strings.TrimSpace(string(data)), ":")
	if !ok || user == "" || hash == "" {
		return fmt.Errorf("invalid auth file format (expected: username:hash)")
	}

	adminCredentials = &Credentials{User: user, Hash: hash}
	log.Printf("✅ Basic Auth enabled for admin mode (user: %s, file: %s)", user, path)
	return nil
}

// HashPassword creates an Argon2id hash in PHC string form:
// $argon2id$v=19$m=65536,t=1,p=4$salt$hash
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	p := defaultArgon2
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyPassword checks password against a hash made by HashPassword.
func VerifyPassword(password, hash string) (bool, error) {
	p, salt, want, err := decodeHash(hash)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

func decodeHash(hash string) (argon2Params, []byte, []byte, error) {
	var p argon2Params

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return p, nil, nil, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("not an argon2id hash")
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &threads); err != nil {
		return p, nil, nil, fmt.Errorf("failed to parse hash parameters: %w", err)
	}
	if threads == 0 || threads > 255 {
		return p, nil, nil, fmt.Errorf("invalid parallelism %d", threads)
	}
	p.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("failed to decode hash: %w", err)
	}
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

// RequireAuth wraps an admin handler with Basic Auth.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := adminCredentials
		if creds == nil {
			next(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(creds.User)) == 1

		passMatch := false
		if ok && userMatch {
			var err error
			if passMatch, err = VerifyPassword(pass, creds.Hash); err != nil {
				log.Printf("Error verifying password: %v", err)
				passMatch = false
			}
		}

		if !ok || !userMatch || !passMatch {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", authRealm))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			log.Printf("⚠️  Failed auth attempt from %s (user: %s)", r.RemoteAddr, user)
			return
		}

		next(w, r)
	}
}

// CreateAuthFile writes username:hash to the auth file with mode 0400.
// An existing file is replaced only when overwrite is set.
func CreateAuthFile(username, password string, overwrite bool) (string, error) {
	path, err := AuthFilePath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return path, ErrAuthFileExists
		}
		// The file is read-only, so it has to go before rewriting.
		if err := os.Remove(path); err != nil {
			return path, fmt.Errorf("failed to remove existing auth file: %w", err)
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return path, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := os.WriteFile(path, []byte(username+":"+hash+"\n"), 0400); err != nil {
		return path, fmt.Errorf("failed to write auth file: %w", err)
	}
	return path, nil
}

package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid client credentials")

// Client is an API consumer allowed to request tokens.
type Client struct {
	ID          string
	SecretHash  string
	Permissions []string
}

func (c Client) Can(perm string) bool {
	return slices.Contains(c.Permissions, perm)
}

// Clients is the configured client registry keyed by id.
type Clients map[string]Client

// ParseClients reads the API_CLIENTS format: comma separated "id:bcrypt-hash[:perm|perm]"
// entries. An empty string yields an empty registry.
func ParseClients(raw string) (Clients, error) {
	clients := Clients{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("API_CLIENTS entry %q must be id:bcrypt-hash[:permissions]", entry)
		}
		client := Client{
			ID:          strings.TrimSpace(parts[0]),
			SecretHash:  strings.TrimSpace(parts[1]),
			Permissions: DefaultClientPermissions,
		}
		if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
			client.Permissions = nil
			for _, perm := range strings.Split(parts[2], "|") {
				perm = strings.TrimSpace(perm)
				if !knownPermission(perm) {
					return nil, fmt.Errorf("API_CLIENTS entry %q has unknown permission %q", client.ID, perm)
				}
				client.Permissions = append(client.Permissions, perm)
			}
		}
		if _, dup := clients[client.ID]; dup {
			return nil, fmt.Errorf("API_CLIENTS lists %q twice", client.ID)
		}
		clients[client.ID] = client
	}
	return clients, nil
}

// Verify checks secret against the stored hash. Unknown ids and wrong secrets return
// the same error.
func (c Clients) Verify(id, secret string) (Client, error) {
	client, ok := c[id]
	if !ok {
		return Client{}, ErrInvalidCredentials
	}
	if err := CheckSecret(client.SecretHash, secret); err != nil {
		return Client{}, ErrInvalidCredentials
	}
	return client, nil
}

func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckSecret(hash, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
}

// Package secret keeps sensitive setting values encrypted at rest using
// viant/scy. Values never enter the generic key/value store in plain form;
// the datastore routes flagged keys here instead.
package secret

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/scy"
	_ "github.com/viant/scy/kms/blowfish"

	"github.com/taskgate/taskgate/service/dao"
)

// DefaultKey is the scy encryption key used when none is configured.
const DefaultKey = "blowfish://default"

// Vault stores named secrets as individually encrypted documents under a
// base URL. Any afs-supported scheme works (file, mem, ...).
type Vault struct {
	secrets *scy.Service
	fs      afs.Service
	baseURL string
	key     string
}

// New creates a vault rooted at baseURL, encrypting with key (for example
// "blowfish://default").
func New(baseURL, key string) (*Vault, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("vault base URL cannot be empty")
	}
	if key == "" {
		key = DefaultKey
	}
	return &Vault{
		secrets: scy.New(),
		fs:      afs.New(),
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
	}, nil
}

// Put encrypts and stores plaintext under name, overwriting any previous
// value.
func (v *Vault) Put(ctx context.Context, name, plaintext string) error {
	if name == "" {
		return dao.ErrInvalidID
	}
	resource := scy.NewResource(nil, v.secretURL(name), v.key)
	if err := v.secrets.Store(ctx, scy.NewSecret(plaintext, resource)); err != nil {
		return fmt.Errorf("failed to store secret %v: %w", name, err)
	}
	return nil
}

// Get decrypts and returns the value stored under name; dao.ErrNotFound when
// absent.
func (v *Vault) Get(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", dao.ErrInvalidID
	}
	location := v.secretURL(name)
	if exists, _ := v.fs.Exists(ctx, location); !exists {
		return "", dao.ErrNotFound
	}
	resource := scy.NewResource(nil, location, v.key)
	loaded, err := v.secrets.Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load secret %v: %w", name, err)
	}
	return loaded.String(), nil
}

// Delete removes the secret stored under name; deleting an absent secret is
// a no-op.
func (v *Vault) Delete(ctx context.Context, name string) error {
	location := v.secretURL(name)
	if exists, _ := v.fs.Exists(ctx, location); !exists {
		return nil
	}
	return v.fs.Delete(ctx, location)
}

func (v *Vault) secretURL(name string) string {
	return v.baseURL + "/" + url.PathEscape(name) + ".enc"
}

// Package vault implements the "vault" builtin assist: it resolves a
// node's "vault-path" property against a Vault KV mount and writes
// the resolved secret values back as properties, the way a real
// deployment pipeline would stitch provisioning secrets into a tree
// before it hands the tree to `output`. Built on
// cloudfoundry-community/vaultkv.
package vault

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/cloudfoundry-community/vaultkv"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

const compatible = "system-device-tree-v1,lop,assist-v1,vault"

// Assist resolves vault-path properties via a vaultkv client.
type Assist struct {
	client *vaultkv.KV
}

// New builds a vault assist against the VAULT_ADDR/VAULT_TOKEN
// environment, picking up ambient credentials rather than taking
// them as lop arguments.
func New() (*Assist, error) {
	addr := os.Getenv("VAULT_ADDR")
	if addr == "" {
		return nil, fmt.Errorf("vault assist: VAULT_ADDR not set")
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("vault assist: bad VAULT_ADDR %q: %w", addr, err)
	}
	client := &vaultkv.Client{
		VaultURL:  u,
		AuthToken: os.Getenv("VAULT_TOKEN"),
	}
	return &Assist{client: client.NewKV()}, nil
}

// ID implements assist.Assist.
func (a *Assist) ID() string { return "vault" }

// IsCompatible implements assist.Assist.
func (a *Assist) IsCompatible(node *lopper.Node) bool {
	p, ok := node.Property("compatible")
	if !ok {
		return false
	}
	return p.Value.Equal(compatible)
}

// Run fetches each secret named by the node's "vault-path" property
// (PATH#FIELD syntax) and writes FIELD's value back as a same-named
// property on the node.
func (a *Assist) Run(ctx context.Context, tree *lopper.Tree, node *lopper.Node, args []string) error {
	p, ok := node.Property("vault-path")
	if !ok {
		return fmt.Errorf("vault assist: node %s has no vault-path property", node.AbsPath())
	}
	for _, item := range p.Value.List() {
		ref, ok := item.(string)
		if !ok {
			continue
		}
		path, field, ok := strings.Cut(ref, "#")
		if !ok {
			return fmt.Errorf("vault assist: malformed vault-path %q, want PATH#FIELD", ref)
		}
		var secret map[string]interface{}
		if _, err := a.client.Get(path, &secret, nil); err != nil {
			return fmt.Errorf("vault assist: get %s: %w", path, err)
		}
		val, ok := secret[field]
		if !ok {
			return fmt.Errorf("vault assist: field %q not present at %s", field, path)
		}
		s, ok := val.(string)
		if !ok {
			s = fmt.Sprintf("%v", val)
		}
		node.SetProperty(field, lopper.NewStringValue(s))
	}
	return nil
}

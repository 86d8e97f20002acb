// Package credential holds the access/refresh credential pair for the API client and
// persists it through a pluggable durable Backend.
package credential

import (
	"context"
	"errors"
)

// Fixed keys under which backends persist the two credentials.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// ErrNoCredential is returned by Store.Token when no access credential is held.
var ErrNoCredential = errors.New("credential store: no access credential")

// Kind selects one of the two credentials.
type Kind int

const (
	Access Kind = iota
	Refresh
)

// Key returns the persisted key name for the kind.
func (k Kind) Key() string {
	if k == Refresh {
		return RefreshTokenKey
	}
	return AccessTokenKey
}

func (k Kind) String() string {
	if k == Refresh {
		return "refresh"
	}
	return "access"
}

// Pair is the opaque access/refresh credential pair.
type Pair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Empty reports whether neither credential is set.
func (p Pair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

func (p Pair) get(kind Kind) string {
	if kind == Refresh {
		return p.Refresh
	}
	return p.Access
}

func (p Pair) with(kind Kind, value string) Pair {
	if kind == Refresh {
		p.Refresh = value
	} else {
		p.Access = value
	}
	return p
}

// Backend is durable storage for credential pairs, keyed by profile.
// Load returns a zero Pair and nil error when nothing is stored. Delete is idempotent.
type Backend interface {
	Load(ctx context.Context, profile string) (Pair, error)
	Save(ctx context.Context, profile string, pair Pair) error
	Delete(ctx context.Context, profile string) error
}

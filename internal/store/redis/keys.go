package redis

import (
	"fmt"
	"strings"
)

const (
	// DefaultKeyPrefix namespaces every key written by the store
	DefaultKeyPrefix = "urlpop:"

	pageSegment     = "suggest:page:"
	domainsSegment  = "suggest:domains"
	snapshotSegment = "suggest:snapshot:"
)

// Keys builds redis keys under a common prefix.
type Keys struct {
	prefix string
}

func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return Keys{prefix: prefix}
}

// PageKey returns the key holding one domain's page
func (k Keys) PageKey(domain string) string {
	return k.prefix + pageSegment + domain
}

// DomainsKey returns the list key holding domains in insertion order
func (k Keys) DomainsKey() string {
	return k.prefix + domainsSegment
}

// SnapshotKey returns the key of a snapshot taken under id
func (k Keys) SnapshotKey(id string) string {
	return k.prefix + snapshotSegment + id
}

// SnapshotPattern matches every snapshot key
func (k Keys) SnapshotPattern() string {
	return k.prefix + snapshotSegment + "*"
}

// ExtractDomain extracts the domain from a page key
func (k Keys) ExtractDomain(key string) (string, error) {
	p := k.prefix + pageSegment
	if !strings.HasPrefix(key, p) || len(key) == len(p) {
		return "", fmt.Errorf("invalid page key: %s", key)
	}
	return key[len(p):], nil
}

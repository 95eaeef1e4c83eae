package birdtag

import (
	"fmt"
	"regexp"
	"strings"
)

// Location identifies one blob as a (store, key) pair. Store is the bucket
// name; Key is the object key within it.
type Location struct {
	Store string
	Key   string
}

// URI renders the canonical blob URI form, s3://store/key.
func (l Location) URI() string {
	return fmt.Sprintf("s3://%s/%s", l.Store, l.Key)
}

// Basename returns the trailing path component of the key.
func (l Location) Basename() string {
	if i := strings.LastIndex(l.Key, "/"); i >= 0 {
		return l.Key[i+1:]
	}
	return l.Key
}

// ParseBlobURI splits a canonical s3://store/key URI into its location.
// Anything else, including URIs with an empty store or key, is rejected.
func ParseBlobURI(uri string) (Location, bool) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return Location{}, false
	}
	store, key, found := strings.Cut(rest, "/")
	if !found || store == "" || key == "" {
		return Location{}, false
	}
	return Location{Store: store, Key: key}, true
}

// Matches the virtual-hosted S3 URL shapes this system has historically
// handed out: https://bucket.s3.amazonaws.com/key and
// https://bucket.s3.REGION.amazonaws.com/key, http or https.
var hostedURLPattern = regexp.MustCompile(`^https?://([^.]+)\.s3(?:\.[^.]+)?\.amazonaws\.com/(.+)$`)

// URLToBlobURI converts a client-supplied URL into a canonical blob URI.
// Canonical URIs pass through unchanged; virtual-hosted HTTP(S) URLs with or
// without a region segment are rewritten, and a presigned URL's query string
// is stripped first. Unrecognized shapes return false, which callers treat
// as "not found" rather than as a fault.
func URLToBlobURI(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "s3://") {
		return raw, true
	}
	trimmed := raw
	if i := strings.Index(trimmed, "?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	m := hostedURLPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return "", false
	}
	return Location{Store: m[1], Key: m[2]}.URI(), true
}

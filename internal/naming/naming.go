// Package naming converts raw cloud resource names into valid Terraform
// identifiers and stable platform slugs.
package naming

import (
	"regexp"
	"strings"

	"github.com/terraseed/terraseed/internal/models"
)

// kindPrefixes maps a resource kind to the identifier prefix used when a
// sanitized name starts with a digit. Unknown kinds fall back to "res".
var kindPrefixes = map[models.ResourceKind]string{
	models.KindIdentity:         "sa",
	models.KindObjectStore:      "bucket",
	models.KindManagedDatastore: "db",
	models.KindComputeService:   "service",
	models.KindSecret:           "secret",
}

func kindToken(kind models.ResourceKind) string {
	if p, ok := kindPrefixes[kind]; ok {
		return p
	}
	return "res"
}

// Sanitize converts a raw resource name into a valid Terraform identifier.
// Identifiers must start with a letter or underscore and contain only
// letters, digits and underscores. The same input always yields the same
// output.
//
// Service account emails lose their domain part first, so
// "1064-compute@project.iam" becomes "sa_1064_compute" for an identity and
// "123-my-bucket" becomes "bucket_123_my_bucket" for an object store.
func Sanitize(raw string, kind models.ResourceKind) string {
	name := raw
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, ".gserviceaccount.com", "")
	name = strings.ReplaceAll(name, ".iam", "")
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")

	// Anything else that is not a letter, digit or underscore collapses to
	// an underscore.
	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		if isIdentRune(c) {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	name = b.String()

	// Digit-leading names get a kind prefix.
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = kindToken(kind) + "_" + name
	}

	// Last resort for names that sanitized away entirely.
	if name == "" {
		return kindToken(kind)
	}
	if !isIdentStart(rune(name[0])) {
		name = kindToken(kind) + "_" + name
	}
	return name
}

func isIdentRune(c rune) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func isIdentStart(c rune) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)

// Slug normalizes a client or project display name into a lowercase
// hyphenated slug safe for bucket names and registry paths.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugInvalid.ReplaceAllString(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// StateBucketName returns the Terraform state bucket for a client.
func StateBucketName(clientSlug string) string {
	return clientSlug + "-terraform-state"
}

// StatePrefix returns the state object prefix for one project workspace.
func StatePrefix(projectSlug string) string {
	return projectSlug + "/prod"
}

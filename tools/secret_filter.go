package tools

import (
	"path/filepath"
	"strings"
)

// Secret filtering is deliberately conservative: over-filtering a harmless
// file is acceptable, leaking a credential is not. Matching is against the
// lowercased base name only, so the table reads as a plain deny list.

// sensitiveSubstrings match anywhere in the file name.
var sensitiveSubstrings = []string{
	".env",
	"credentials",
	"credential",
	"secrets",
	"secret",
	"token",
	"private_key",
	"privatekey",
	"id_rsa",
	"id_dsa",
	"id_ecdsa",
	"id_ed25519",
}

// sensitiveExtensions match the file extension exactly.
var sensitiveExtensions = []string{
	".pem",
	".key",
	".p12",
	".pfx",
	".keystore",
	".jks",
}

// sensitiveNames match the whole file name exactly. Well-known cloud and
// infrastructure credential files.
var sensitiveNames = []string{
	".netrc",
	".npmrc",
	".pypirc",
	".boto",
	".git-credentials",
	"htpasswd",
	"kubeconfig",
	"service-account.json",
	"serviceaccount.json",
}

// IsSensitivePath classifies a path as likely secret material by its base
// name. Applied both to exclude search hits and to refuse explicit reads.
func IsSensitivePath(path string) bool {
	name := strings.ToLower(filepath.Base(path))

	for _, exact := range sensitiveNames {
		if name == exact {
			return true
		}
	}
	if ext := filepath.Ext(name); ext != "" {
		for _, sens := range sensitiveExtensions {
			if ext == sens {
				return true
			}
		}
	}
	for _, sub := range sensitiveSubstrings {
		if strings.Contains(name, sub) {
			return true
		}
	}
	return false
}

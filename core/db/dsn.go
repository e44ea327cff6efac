package db

import (
	"fmt"
	"net/url"
	"strings"
)

// Backend names, derived from the URI scheme.
const (
	BackendMongo    = "mongodb"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// DetectBackend maps the scheme of uri to a backend name.
func DetectBackend(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if strings.HasPrefix(strings.ToLower(uri), "file:") {
		return BackendSQLite, nil
	}
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return "", fmt.Errorf("database URI %q has no scheme", SanitizeURI(uri))
	}
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "sqlite", "file":
		return BackendSQLite, nil
	case "memory":
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q (expected mongodb, mongodb+srv, postgres, sqlite or memory)", scheme)
	}
}

// SanitizeURI masks the password inside a connection URI before logging.
// Query parameters are dropped since they may carry credentials too.
func SanitizeURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return "<invalid-uri>"
	}

	var userInfo string
	if u.User != nil {
		username := u.User.Username()
		if _, hasPwd := u.User.Password(); hasPwd {
			userInfo = fmt.Sprintf("%s:***@", username)
		} else {
			userInfo = fmt.Sprintf("%s@", username)
		}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	return fmt.Sprintf("%s://%s%s%s", u.Scheme, userInfo, u.Host, path)
}

// sqlitePath extracts the database file from sqlite://path or file:path URIs.
func sqlitePath(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "sqlite://")
	if !ok {
		if strings.HasPrefix(uri, "file:") {
			return uri, nil
		}
		return "", fmt.Errorf("not a sqlite URI")
	}
	if rest == "" {
		return "", fmt.Errorf("sqlite URI has no path")
	}
	return rest, nil
}

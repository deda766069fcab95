// Package urls provides centralized constants for the external URLs shown
// to users.
//
// Usage:
//
//	import "github.com/muurk/vininsight/internal/urls"
//
//	fmt.Printf("Get an API key at %s\n", urls.AutoDevAPIKeys)
package urls

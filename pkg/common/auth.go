package common

import (
	"encoding/base64"
	"net/http"
)

// SetBasicAuth passes supplied "user:password" credentials through as a Basic
// Authorization header. Empty credentials send no header.
func SetBasicAuth(req *http.Request, credentials string) {
	if credentials == "" {
		return
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(credentials)))
}

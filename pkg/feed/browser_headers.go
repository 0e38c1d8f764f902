package feed

import (
	"math/rand"
	"net/http"
)

// feedLanguages contains Accept-Language values sent with feed requests
var feedLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9",
	"en-US,en;q=0.9,de;q=0.8",
	"en-US,en;q=0.9,fr;q=0.8",
}

// addBrowserHeaders sets feed-reader request headers.
// Accept-Encoding is left to the transport so gzip responses are decoded transparently.
func addBrowserHeaders(req *http.Request) {
	// all three supported formats, html last for servers doing content negotiation badly
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/feed+json,application/json;q=0.9,application/xml;q=0.9,text/xml;q=0.8,text/html;q=0.5,*/*;q=0.3")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept-Language", feedLanguages[rand.Intn(len(feedLanguages))]) //nolint:gosec // header variation only
	req.Header.Set("Connection", "keep-alive")
}

package detail

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/trogers1052/opportunity-radar/internal/models"
)

// ContactLink builds the pre-filled term sheet request. It is only a link; nothing is sent.
func ContactLink(address string, rec *models.OpportunityRecord) string {
	subject := "Term Sheet Request - " + rec.Ticker
	body := fmt.Sprintf("Please provide a term sheet for %s (%s) based on the %s strategy.",
		rec.Ticker, rec.Name, rec.Strategy)

	return "mailto:" + address + "?subject=" + mailtoEscape(subject) + "&body=" + mailtoEscape(body)
}

// mailtoEscape percent-encodes a header value; mail clients expect %20 rather than +
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

package push

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jcatrysse/jira2redmine-issues/internal/store"
)

// uploadItem is one element of the Redmine payload's "uploads" array (spec
// §4.3 "each upload element is {token, filename, description, content_type?}").
type uploadItem struct {
	Token       string `json:"token"`
	Filename    string `json:"filename"`
	Description string `json:"description,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

type sharePointLink struct {
	Label string
	URL   string
}

// decision pairs a usable attachment with which transport it will travel by
// (spec §4.3 step 2 "classify each attachment").
type decision struct {
	mapping       store.AttachmentMapping
	useSharePoint bool
}

func classify(usable []store.AttachmentMapping) ([]decision, []uploadItem, []sharePointLink) {
	decisions := make([]decision, 0, len(usable))
	var tokens []uploadItem
	var links []sharePointLink

	for _, a := range usable {
		useSharePoint := a.SharePointURL != ""
		if a.SharePointURL != "" && a.RedmineUploadToken != "" {
			log.Printf("[warn] %s: attachment has both a redmine token and a sharepoint url, preferring sharepoint", a.JiraAttachmentID)
		}
		decisions = append(decisions, decision{mapping: a, useSharePoint: useSharePoint})
		if useSharePoint {
			links = append(links, sharePointLink{Label: a.UniqueFilename, URL: a.SharePointURL})
			continue
		}
		tokens = append(tokens, uploadItem{Token: a.RedmineUploadToken, Filename: a.UniqueFilename})
	}
	return decisions, tokens, links
}

// appendSharePointLinks implements spec §4.3's description_with_sharepoint
// builder: append a block listing SharePoint-offloaded attachments not
// already referenced in the description by URL, unique name, or
// "attachment:<unique>".
func appendSharePointLinks(description string, links []sharePointLink) string {
	var fresh []sharePointLink
	for _, l := range links {
		if strings.Contains(description, l.URL) ||
			strings.Contains(description, l.Label) ||
			strings.Contains(description, "attachment:"+l.Label) {
			continue
		}
		fresh = append(fresh, l)
	}
	if len(fresh) == 0 {
		return description
	}

	var b strings.Builder
	b.WriteString(description)
	b.WriteString("\n\n---\n**Attachments stored on SharePoint:**\n")
	for _, l := range fresh {
		fmt.Fprintf(&b, "- %s: %s\n", l.Label, l.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// markAttachmentOutcomes transitions every pushed attachment to SUCCESS
// (spec §4.3 step 3), noting the SharePoint URL when that transport was
// used.
func markAttachmentOutcomes(ctx context.Context, s *store.Store, decisions []decision) error {
	for _, d := range decisions {
		note := ""
		if d.useSharePoint {
			note = "Attachment stored on SharePoint: " + d.mapping.SharePointURL
		}
		if err := s.UpdateAttachmentStatus(ctx, d.mapping.ID, store.AttachmentSuccess, note); err != nil {
			return err
		}
	}
	return nil
}

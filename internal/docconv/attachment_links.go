package docconv

import (
	"regexp"
	"strings"
)

// AttachmentRef is one per-issue attachment the normalizer can resolve a
// link to (spec §4.6): either a Redmine unique upload filename or an
// offloaded SharePoint URL.
type AttachmentRef struct {
	UniqueFilename string
	SharePointURL  string
}

// attachmentURLPatterns is the ordered list of regexes tried against a URL
// to recover a Jira attachment id, in the priority order spec §4.6
// specifies — most specific first, bare numeric id as the last resort.
var attachmentURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/rest/api/\d+/attachment/content/(\d+)`),
	regexp.MustCompile(`/rest/api/\d+/attachment/thumbnail/(\d+)`),
	regexp.MustCompile(`/attachment/content/(\d+)`),
	regexp.MustCompile(`/attachment/(\d+)`),
	regexp.MustCompile(`attachment/content/(\d+)`),
	regexp.MustCompile(`/attachments/(\d+)`),
	regexp.MustCompile(`/secure/attachment/(\d+)`),
	regexp.MustCompile(`(\d+)(?:[^\d]|$)`),
}

// MapAttachmentURL implements spec §4.6's map_attachment_url: the first
// pattern to match supplies the candidate Jira attachment id; if that id is
// present in refs, the SharePoint URL is preferred when set, else the
// unique filename; an unmatched or unknown id returns the url unchanged.
func MapAttachmentURL(url string, refs map[string]AttachmentRef) string {
	for _, pattern := range attachmentURLPatterns {
		m := pattern.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		id := m[1]
		ref, ok := refs[id]
		if !ok {
			return url
		}
		if ref.SharePointURL != "" {
			return ref.SharePointURL
		}
		return ref.UniqueFilename
	}
	return url
}

var (
	markdownLinkPattern = regexp.MustCompile(`(!?\[[^\]]*\]\()([^)\s]+)((?:\s+"[^"]*")?\))`)
	htmlTagProbe        = regexp.MustCompile(`(?i)<(img|a|div)[\s>]`)
)

// RewriteAttachmentLinks rewrites attachment references in text — <a>/<img>
// DOM attributes and Markdown-style link destinations — to either its Redmine
// unique filename or SharePoint URL. A bare URL that sits outside a tag
// attribute or a Markdown link is left as it is. Callers that feed
// the result back into a filename reference should additionally collapse
// `]($unique "filename")` to `]($unique)` themselves (step 4), since that
// transform is link-text specific and not every caller wants it.
func RewriteAttachmentLinks(text string, refs map[string]AttachmentRef) string {
	if len(refs) == 0 {
		return text
	}
	if htmlTagProbe.MatchString(text) {
		text = rewriteAttachmentDOM(text, refs)
	}
	text = markdownLinkPattern.ReplaceAllStringFunc(text, func(m string) string {
		groups := markdownLinkPattern.FindStringSubmatch(m)
		url := groups[2]
		if strings.Contains(strings.ToLower(url), "sharepoint") {
			return m
		}
		return groups[1] + MapAttachmentURL(url, refs) + groups[3]
	})
	return text
}

// ReferencesAnyAttachment reports whether text contains anything that could
// be a Jira attachment reference — an HTML img/a/div tag, or a URL matching
// one of the attachment patterns — used as the precondition before invoking
// RewriteAttachmentLinks (spec §4.2 step f "when it does...").
func ReferencesAnyAttachment(text string) bool {
	if htmlTagProbe.MatchString(text) {
		return true
	}
	for _, pattern := range attachmentURLPatterns[:len(attachmentURLPatterns)-1] {
		if pattern.MatchString(text) {
			return true
		}
	}
	return markdownLinkPattern.MatchString(text)
}

var redundantLinkTitle = regexp.MustCompile(`\(([^\s)]+)\s+"([^"]*)"\)`)

// StripRedundantLinkTitles collapses `]($unique "filename")` to `]($unique)`
// wherever the quoted title equals the link destination itself or its last
// "/"-separated segment. A title that differs, such as the original filename
// on a "<id>__name" destination, is kept.
func StripRedundantLinkTitles(text string) string {
	return redundantLinkTitle.ReplaceAllStringFunc(text, func(m string) string {
		groups := redundantLinkTitle.FindStringSubmatch(m)
		url, title := groups[1], groups[2]
		if title == url || strings.HasSuffix(url, "/"+title) {
			return "(" + url + ")"
		}
		return m
	})
}

// BuildUniqueFilename implements spec §4.6's "unique filename construction":
// "<jira_id>__<sanitized>" where sanitized replaces every character outside
// [A-Za-z0-9._-] with "_", trims leading/trailing underscores, and falls back to
// "attachment" if nothing survives.
func BuildUniqueFilename(jiraAttachmentID, original string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(original, "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "attachment"
	}
	return jiraAttachmentID + "__" + sanitized
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

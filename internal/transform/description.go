package transform

import (
	"context"
	"strings"

	"github.com/jcatrysse/jira2redmine-issues/internal/docconv"
	"github.com/jcatrysse/jira2redmine-issues/internal/jiratypes"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
)

// tableMacroSentinel is the literal Jira emits in rendered HTML when a
// table field could only be expressed as an ADF macro (spec §4.2 step e).
const tableMacroSentinel = "<!-- ADF macro (type = 'table') -->"

// loadAttachmentRefs builds the per-issue {jira_attachment_id -> ref} index
// the Doc Converter and Attachment Link Normalizer need, from whatever
// migration_mapping_attachments rows already exist for this issue (spec
// §4.5, §4.6). Rows not yet populated by the attachment downloader simply
// don't resolve — the description is left with its original links until a
// later rerun picks them up.
func loadAttachmentRefs(ctx context.Context, s *store.Store, jiraIssueID string) (map[string]docconv.AttachmentRef, error) {
	mappings, err := s.ListAttachmentMappingsByIssue(ctx, jiraIssueID)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]docconv.AttachmentRef, len(mappings))
	for _, a := range mappings {
		refs[a.JiraAttachmentID] = docconv.AttachmentRef{
			UniqueFilename: a.UniqueFilename,
			SharePointURL:  a.SharePointURL,
		}
	}
	return refs, nil
}

// buildDescription implements spec §4.2 steps e-f: pick the first
// convertible representation of the Jira description (rendered HTML, ADF
// markdown, ADF plaintext), then rewrite any attachment references it
// contains. The HTML path's own DOM pass rewrites <a>/<img> attributes and
// the text-level rewrite then handles Markdown link destinations; the ADF
// paths have no DOM pass and rely on the text-level rewrite alone. Bare
// attachment URLs outside a link are not rewritten on either path.
func buildDescription(issue store.JiraIssue, refs map[string]docconv.AttachmentRef) string {
	if issue.DescriptionHTML != "" && !strings.Contains(issue.DescriptionHTML, tableMacroSentinel) {
		if md := docconv.HTMLToMarkdown(issue.DescriptionHTML, refs); md != "" {
			if docconv.ReferencesAnyAttachment(md) {
				md = docconv.RewriteAttachmentLinks(md, refs)
			}
			return docconv.StripRedundantLinkTitles(md)
		}
	}

	desc := convertADFDescription(issue)
	if desc == "" {
		return ""
	}
	if docconv.ReferencesAnyAttachment(desc) {
		desc = docconv.RewriteAttachmentLinks(desc, refs)
	}
	return docconv.StripRedundantLinkTitles(desc)
}

func convertADFDescription(issue store.JiraIssue) string {
	if issue.DescriptionADF == "" {
		return ""
	}
	node, ok := jiratypes.ParseADF([]byte(issue.DescriptionADF))
	if !ok {
		return ""
	}
	if md := docconv.ADFToMarkdown(node); md != "" {
		return md
	}
	return docconv.ADFToPlaintext(node)
}

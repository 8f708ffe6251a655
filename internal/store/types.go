package store

// JiraIssue is a row of staging_jira_issues (spec §3).
type JiraIssue struct {
	ID                    string
	IssueKey              string
	ProjectID             string
	IssueTypeID           string
	StatusID              string
	StatusCategoryKey     string
	PriorityID            string
	ReporterAccountID     string
	AssigneeAccountID     string
	ParentAccountID       string
	Summary               string
	DescriptionADF        string // JSON, may be ""
	DescriptionHTML       string
	DueDate               string
	TimeOriginalEstimate  *int64
	TimeRemainingEstimate *int64
	TimeSpent             *int64
	LabelsJSON            string
	FixVersionsJSON       string
	ComponentsJSON        string
	RawPayload            string
	CreatedAt             string
	UpdatedAt             string
	ExtractedAt           string
}

// Attachment is a row of staging_jira_attachments.
type Attachment struct {
	ID         string
	IssueID    string
	Filename   string
	SizeBytes  *int64
	MimeType   string
	ContentURL string
	CreatedAt  string
}

// IssueLink is a row of staging_jira_issue_links, canonicalized source->target.
type IssueLink struct {
	JiraLinkID    string
	SourceIssueID string
	TargetIssueID string
	LinkType      string
}

// Status enumeration for migration_mapping_issues.migration_status.
const (
	StatusPendingAnalysis    = "PENDING_ANALYSIS"
	StatusMatchFound         = "MATCH_FOUND"
	StatusReadyForCreation   = "READY_FOR_CREATION"
	StatusCreationSuccess    = "CREATION_SUCCESS"
	StatusCreationFailed     = "CREATION_FAILED"
	StatusManualIntervention = "MANUAL_INTERVENTION_REQUIRED"
	StatusIgnored            = "IGNORED"
)

// Attachment mapping status enumeration (migration_mapping_attachments.migration_status).
const (
	AttachmentPendingDownload   = "PENDING_DOWNLOAD"
	AttachmentPendingUpload     = "PENDING_UPLOAD"
	AttachmentPendingAssociate  = "PENDING_ASSOCIATION"
	AttachmentSuccess           = "SUCCESS"
	AttachmentFailed            = "FAILED"
)

const (
	AssociationIssue   = "ISSUE"
	AssociationJournal = "JOURNAL"
)

// IssueMapping is a row of migration_mapping_issues — the state machine.
type IssueMapping struct {
	ID                        int64
	JiraIssueID               string
	JiraIssueKey              string
	JiraProjectID             string
	JiraIssueTypeID           string
	JiraStatusID              string
	JiraPriorityID            string
	JiraReporterAccountID     string
	JiraAssigneeAccountID     string

	RedmineProjectID  *int64
	RedmineTrackerID  *int64
	RedmineStatusID   *int64
	RedminePriorityID *int64
	RedmineAuthorID   *int64
	RedmineAssigneeID *int64
	RedmineIssueID    *int64

	ProposedProjectID           *int64
	ProposedTrackerID           *int64
	ProposedStatusID            *int64
	ProposedPriorityID          *int64
	ProposedAuthorID            *int64
	ProposedAssigneeID          *int64
	ProposedSubject             string
	ProposedDescription         string
	ProposedStartDate           string
	ProposedDueDate             string
	ProposedDoneRatio           *int64
	ProposedEstimatedHours      *float64
	ProposedIsPrivate           *bool
	ProposedCustomFieldPayload  string // JSON array or ""

	MigrationStatus string
	Notes           string
	AutomationHash  string

	CreatedAt     string
	LastUpdatedAt string
}

// AttachmentMapping is a row of migration_mapping_attachments.
type AttachmentMapping struct {
	ID                 int64
	JiraAttachmentID   string
	JiraIssueID        string
	UniqueFilename     string
	RedmineUploadToken string
	SharePointURL      string
	AssociationHint    string
	MigrationStatus    string
	Notes              string
	CreatedAt          string
	LastUpdatedAt      string
}

// ProjectMapping is a row of migration_mapping_projects.
type ProjectMapping struct {
	JiraProjectID     string
	JiraProjectKey    string
	RedmineProjectID  *int64
	MigrationStatus   string
	IssuesExtractedAt string
}

// ResolvedMapping is the generic {jira_id -> (redmine_id, status)} shape
// shared by the project/tracker/status/priority/user lookup tables.
type ResolvedMapping struct {
	RedmineID       int64
	MigrationStatus string
}

// Resolved reports whether the mapping counts as resolved per spec §3:
// migration_status in {MATCH_FOUND, CREATION_SUCCESS}.
func (m ResolvedMapping) Resolved() bool {
	return m.MigrationStatus == StatusMatchFound || m.MigrationStatus == StatusCreationSuccess
}

// CustomFieldMapping is a row of migration_mapping_custom_fields.
type CustomFieldMapping struct {
	JiraFieldID                string
	RedmineCustomFieldID        int64
	FieldFormat                string
	IsMultiple                  bool
	MappingParentCustomFieldID  string
	EnumerationJSON             string // {"jira value/label/option id": "redmine label"}
}

// CustomFieldChildMapping is a row of migration_mapping_custom_field_children.
type CustomFieldChildMapping struct {
	JiraChildOptionID string
	JiraChildFieldID  string
	ParentLabel       string
	ChildLabel        string
}

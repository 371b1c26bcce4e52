package domain

// ArchiveTargetKind tags the destinations a closed ticket's transcript is
// delivered to.
type ArchiveTargetKind string

const (
	ArchiveTargetOwnerDM        ArchiveTargetKind = "OWNER_DM"
	ArchiveTargetOriginChannel  ArchiveTargetKind = "ORIGIN_CHANNEL"
	ArchiveTargetArchiveChannel ArchiveTargetKind = "ARCHIVE_CHANNEL"
)

// ArchiveTarget is one transcript destination. RecipientID is a user id for
// OWNER_DM and a channel id otherwise.
type ArchiveTarget struct {
	Kind        ArchiveTargetKind
	RecipientID string
}

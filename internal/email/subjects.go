package email

const (
	subjectClaimSyncedFmt = "Commission claim confirmed for %s"
	subjectClaimFailedFmt = "Commission claim needs attention for %s"
)

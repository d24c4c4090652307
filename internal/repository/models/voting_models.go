package models

// VotingRow mirrors a row of the votings table.
type VotingRow struct {
	ID        int64
	Name      string
	CreatedAt string
}

// SubmissionRow mirrors a row of the submissions table. Items holds the
// JSON-encoded item slots.
type SubmissionRow struct {
	ID       int64
	VotingID int64
	Voter    string
	Items    string
}

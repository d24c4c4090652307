package service

// RankingEntry is the aggregate for one item. It is derived on every request
// and never stored.
type RankingEntry struct {
	Item         string   `json:"item"`
	TotalScore   int      `json:"total_score"`
	Contributors []string `json:"contributors"`
}

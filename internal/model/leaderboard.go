package model

// FinalLeaderboardEntry is one row of the frozen final standings.
// Produced exactly once per room, sorted descending by score with ties
// kept in roster order, then never recomputed.
type FinalLeaderboardEntry struct {
	ID                       string `json:"id" bson:"id"`
	Name                     string `json:"name" bson:"name"`
	Score                    int    `json:"score" bson:"score"`
	CumulativeNegativePoints int    `json:"cumulativeNegativePoints" bson:"cumulativeNegativePoints"`
	PointsRestored           int    `json:"pointsRestored" bson:"pointsRestored"`
}

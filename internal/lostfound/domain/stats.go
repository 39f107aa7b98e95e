package domain

// Bucket is one period of the admin dashboard chart.
type Bucket struct {
	Key   string // "2025-10-14" or "2025-10"
	Label string // "Tue" or "Oct"
	Lost  int
	Found int
}

// TypeCount is a raw aggregation row: number of posts of Type created in the
// period identified by Key.
type TypeCount struct {
	Key   string
	Type  PostType
	Count int
}

// PostStats summarises all posts for the public landing page.
type PostStats struct {
	Total    int
	Resolved int
	Open     int // anything not resolved
	Last7d   int
	ByType   map[PostType]int
}

package dto

// CategoryCountResponse is one row of the per-category breakdown.
type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// AnalyticsOverviewResponse summarises platform activity for teachers.
type AnalyticsOverviewResponse struct {
	Students            int64                   `json:"students"`
	Teachers            int64                   `json:"teachers"`
	Exercises           int64                   `json:"exercises"`
	PublishedExercises  int64                   `json:"published_exercises"`
	Submissions         int64                   `json:"submissions"`
	PendingGrading      int64                   `json:"pending_grading"`
	AveragePercentage   float64                 `json:"average_percentage"`
	ExercisesByCategory []CategoryCountResponse `json:"exercises_by_category"`
	GeneratedAt         string                  `json:"generated_at"`
	CacheHit            bool                    `json:"cache_hit"`
}

// StudentProgressResponse summarises a student's own results.
type StudentProgressResponse struct {
	Submissions       int                  `json:"submissions"`
	AveragePercentage float64              `json:"average_percentage"`
	BestPercentage    float64              `json:"best_percentage"`
	PendingGrading    int                  `json:"pending_grading"`
	Recent            []SubmissionResponse `json:"recent"`
}

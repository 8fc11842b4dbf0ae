package repository

import (
	"context"
	"database/sql"
)

// Stats aggregates record counts for the superadmin dashboard.
type Stats struct {
	UsersByRole    map[string]int
	Celebrities    int
	Outfits        int
	Reviews        int
	UpcomingMovies int
}

// StatsRepo runs the aggregate count queries behind the stats endpoint.
type StatsRepo struct{ db *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Counts gathers user counts grouped by role plus one total per content
// table.  Every known role appears in the map even when its count is zero.
func (r *StatsRepo) Counts(ctx context.Context) (Stats, error) {
	s := Stats{UsersByRole: map[string]int{
		RoleUser:       0,
		RoleAdmin:      0,
		RoleSuperadmin: 0,
	}}

	rows, err := r.db.QueryContext(ctx,
		"SELECT role, COUNT(*) FROM users GROUP BY role")
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return Stats{}, err
		}
		s.UsersByRole[role] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	for table, dst := range map[string]*int{
		"celebrities":     &s.Celebrities,
		"outfits":         &s.Outfits,
		"movie_reviews":   &s.Reviews,
		"upcoming_movies": &s.UpcomingMovies,
	} {
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+table).Scan(dst); err != nil {
			return Stats{}, err
		}
	}
	return s, nil
}

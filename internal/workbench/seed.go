package workbench

// Seed returns the starter document used when nothing has been persisted
// yet: two phases and three features, the first two in the first phase.
func Seed() Doc {
	now := nowMillis()

	plan := Phase{ID: newID(PhaseIDPrefix), Name: "Foundation", Order: 1}
	ship := Phase{ID: newID(PhaseIDPrefix), Name: "Polish", Order: 2}

	return Doc{
		Version: CurrentVersion,
		Title:   "Feature Workbench",
		Phases:  []Phase{plan, ship},
		Features: []Feature{
			{
				ID:          newID(FeatureIDPrefix),
				Title:       "Document model",
				Description: "Phases and features with manual ordering.",
				Status:      StatusDone,
				PhaseID:     plan.ID,
				Tags:        []string{"core"},
				Order:       1,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          newID(FeatureIDPrefix),
				Title:       "Local persistence",
				Description: "Save the whole document after every edit and restore it on startup.",
				Status:      StatusInProgress,
				PhaseID:     plan.ID,
				Tags:        []string{"core", "storage"},
				Order:       2,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          newID(FeatureIDPrefix),
				Title:       "Quick edit",
				Description: "Edit titles and tags inline from the board.",
				Status:      StatusNotStarted,
				PhaseID:     ship.ID,
				Tags:        []string{"ui"},
				Order:       3,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		},
	}
}

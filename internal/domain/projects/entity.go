package projects

import "time"

// ProjectID identifier type
type ProjectID string

// Project is a client research brief: what to watch and how to read it.
type Project struct {
	ID          ProjectID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ClientID    string    `json:"client_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ThematicArea is a project-scoped taxonomy entry. Areas are owned by the
// project; analyses reference them by ID only.
type ThematicArea struct {
	ID          string    `json:"id"`
	ProjectID   ProjectID `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// DashboardCount is a generic label/count pair used by dashboard rollups.
type DashboardCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Dashboard aggregates per-project analysis state for the frontend.
type Dashboard struct {
	Project        *Project         `json:"project"`
	TotalItems     int              `json:"total_items"`
	ExtractedItems int              `json:"extracted_items"`
	AwaitingItems  int              `json:"awaiting_items"`
	BySource       []DashboardCount `json:"sources"`
	ByTheme        []DashboardCount `json:"themes"`
	Industries     []DashboardCount `json:"industry_names"`
	Tactics        []DashboardCount `json:"tactics"`
	Stakeholders   []DashboardCount `json:"stakeholders"`
	Geographies    []DashboardCount `json:"geographical_focus"`
	Outcomes       []DashboardCount `json:"outcomes"`
}

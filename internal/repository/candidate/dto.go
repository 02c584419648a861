package candidate

import "github.com/talentgrid/matchd/internal/domain"

// candidateDTO is the JSON shape persisted per candidate key.
type candidateDTO struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	Name       string    `json:"name"`
	Skills     []string  `json:"skills,omitempty"`
	Experience string    `json:"experience,omitempty"`
	Education  string    `json:"education,omitempty"`
	Location   string    `json:"location,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Vector     []float32 `json:"vector,omitempty"`
}

func toDTO(c *domain.CandidateRecord) candidateDTO {
	return candidateDTO{
		ID:         c.ID,
		TenantID:   c.TenantID,
		Name:       c.Name,
		Skills:     c.Skills,
		Experience: c.Experience,
		Education:  c.Education,
		Location:   c.Location,
		Summary:    c.Summary,
		Vector:     c.Vector,
	}
}

func fromDTO(d candidateDTO) domain.CandidateRecord {
	return domain.CandidateRecord{
		ID:         d.ID,
		TenantID:   d.TenantID,
		Name:       d.Name,
		Skills:     d.Skills,
		Experience: d.Experience,
		Education:  d.Education,
		Location:   d.Location,
		Summary:    d.Summary,
		Vector:     d.Vector,
	}
}

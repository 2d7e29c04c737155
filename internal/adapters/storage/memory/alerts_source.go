package memory

import (
	"context"
	"time"

	"pet-health-log/internal/domain/alerts"
	"pet-health-log/internal/domain/treatments"
)

type alertsSource struct{ st *Store }

func NewAlertsSource(st *Store) alerts.Source {
	return &alertsSource{st: st}
}

func (a *alertsSource) PetsWithBirthDate(ctx context.Context, petID string) ([]alerts.PetBirth, error) {
	a.st.mu.RLock()
	defer a.st.mu.RUnlock()

	out := make([]alerts.PetBirth, 0)
	for _, p := range a.st.pets {
		if p.BirthDate == nil || (petID != "" && p.ID != petID) {
			continue
		}
		out = append(out, alerts.PetBirth{PetID: p.ID, PetName: p.Name, BirthDate: *p.BirthDate})
	}
	return out, nil
}

func (a *alertsSource) LatestVaccineDoses(ctx context.Context, petID string, until time.Time) ([]alerts.VaccineDose, error) {
	a.st.mu.RLock()
	defer a.st.mu.RUnlock()

	out := make([]alerts.VaccineDose, 0)
	for _, app := range a.st.latestApplicationsLocked(petID) {
		if app.NextDoseAt == nil || app.NextDoseAt.After(until) {
			continue
		}
		out = append(out, alerts.VaccineDose{
			ApplicationID: app.ID,
			PetID:         app.PetID,
			PetName:       a.st.pets[app.PetID].Name,
			VaccineTypeID: app.VaccineTypeID,
			VaccineName:   a.st.vaccineTypes[app.VaccineTypeID].Name,
			DoseNumber:    app.DoseNumber,
			NextDoseAt:    *app.NextDoseAt,
		})
	}
	return out, nil
}

func (a *alertsSource) PendingGlycemiaPoints(ctx context.Context, petID string, until time.Time) ([]alerts.GlycemiaCandidate, error) {
	a.st.mu.RLock()
	defer a.st.mu.RUnlock()

	out := make([]alerts.GlycemiaCandidate, 0)
	for sid, points := range a.st.points {
		sess, ok := a.st.sessions[sid]
		if !ok || (petID != "" && sess.PetID != petID) {
			continue
		}
		for _, p := range points {
			if p.MeasuredAt != nil || p.ExpectedAt.After(until) {
				continue
			}
			out = append(out, alerts.GlycemiaCandidate{PetID: sess.PetID, PetName: a.st.pets[sess.PetID].Name, Point: p})
		}
	}
	return out, nil
}

func (a *alertsSource) LatestTreatments(ctx context.Context, petID string, until time.Time) ([]alerts.TreatmentDue, error) {
	a.st.mu.RLock()
	defer a.st.mu.RUnlock()

	all := make([]treatments.Treatment, 0, len(a.st.treatments))
	for _, t := range a.st.treatments {
		if petID == "" || t.PetID == petID {
			all = append(all, t)
		}
	}

	out := make([]alerts.TreatmentDue, 0)
	for _, t := range treatments.LatestPerType(all) {
		if t.NextDueAt == nil || t.NextDueAt.After(until) {
			continue
		}
		out = append(out, alerts.TreatmentDue{
			TreatmentID: t.ID,
			PetID:       t.PetID,
			PetName:     a.st.pets[t.PetID].Name,
			Type:        t.Type,
			TypeLabel:   t.TypeLabel,
			ProductName: t.ProductName,
			NextDueAt:   *t.NextDueAt,
		})
	}
	return out, nil
}

// Package reminder sweeps the stage ledger for attempts that have sat PENDING
// too long and nudges the party responsible for the stage.
package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/crewline/crewline/internal/models"
	"github.com/crewline/crewline/internal/notify"
	"github.com/crewline/crewline/internal/stage"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// StaleStage is one overdue pending attempt with its routing context.
type StaleStage struct {
	LabourID   string
	LabourName string
	AgencyID   string
	ClientID   string
	Stage      stage.Stage
	Owner      stage.Party
	PendingFor time.Duration
}

// Sweeper finds stale stages and dispatches reminders.
type Sweeper struct {
	db         *gorm.DB
	dispatcher *notify.Dispatcher
	staleAfter time.Duration
}

// NewSweeper creates a Sweeper that flags attempts pending longer than
// staleAfter.
func NewSweeper(db *gorm.DB, dispatcher *notify.Dispatcher, staleAfter time.Duration) *Sweeper {
	return &Sweeper{db: db, dispatcher: dispatcher, staleAfter: staleAfter}
}

// FindStale lists pending attempts older than the threshold, joined with the
// profile for recipient routing.
func (s *Sweeper) FindStale(now time.Time) ([]StaleStage, error) {
	cutoff := now.Add(-s.staleAfter)

	type row struct {
		LabourID  string
		Name      string
		AgencyID  string
		ClientID  string
		Stage     string
		CreatedAt time.Time
	}
	var rows []row
	err := s.db.Model(&models.LabourStageHistory{}).
		Select("labour_stage_histories.labour_id, labour_profiles.name, labour_profiles.agency_id, requirements.client_id, labour_stage_histories.stage, labour_stage_histories.created_at").
		Joins("JOIN labour_profiles ON labour_profiles.id = labour_stage_histories.labour_id").
		Joins("LEFT JOIN requirements ON requirements.id = labour_profiles.requirement_id").
		Where("labour_stage_histories.status = ? AND labour_stage_histories.created_at < ?", string(stage.StatusPending), cutoff).
		Order("labour_stage_histories.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("reminder: list stale stages: %w", err)
	}

	out := make([]StaleStage, 0, len(rows))
	for _, r := range rows {
		st, err := stage.Parse(r.Stage)
		if err != nil {
			continue
		}
		out = append(out, StaleStage{
			LabourID:   r.LabourID,
			LabourName: r.Name,
			AgencyID:   r.AgencyID,
			ClientID:   r.ClientID,
			Stage:      st,
			Owner:      stage.OwnerOf(st),
			PendingFor: now.Sub(r.CreatedAt),
		})
	}
	return out, nil
}

// Sweep finds stale stages and dispatches one reminder each. Agency-owned
// stages go to the labourer's agency; client-owned stages go to the client of
// the linked requirement, or to the admin desk (empty recipient) when the
// profile has no requirement.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.FindStale(now)
	if err != nil {
		return 0, err
	}
	for _, st := range stale {
		recipient := st.ClientID
		if st.Owner == stage.PartyAgency {
			recipient = st.AgencyID
		}
		days := int(st.PendingFor.Hours() / 24)
		s.dispatcher.Dispatch(ctx, notify.Event{
			Kind:        "stage.stale",
			RecipientID: recipient,
			Subject:     fmt.Sprintf("%s overdue for %s", st.Stage, st.LabourName),
			Body:        fmt.Sprintf("%s has been pending for %d day(s)", st.Stage, days),
			EntityID:    st.LabourID,
		})
	}
	return len(stale), nil
}

// Run sweeps on the given 5-field cron schedule until the context is
// cancelled.
func (s *Sweeper) Run(ctx context.Context, schedule string) error {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("reminder: parse schedule %q: %w", schedule, err)
	}

	for {
		next := sched.Next(time.Now())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(next)):
		}
		n, err := s.Sweep(ctx, time.Now())
		if err != nil {
			log.Printf("reminder: sweep: %v", err)
			continue
		}
		log.Printf("reminder: sweep complete, %d stale stage(s)", n)
	}
}

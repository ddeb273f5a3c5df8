package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modbuild/pulse/internal/db"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/repository"
	"github.com/shopspring/decimal"
)

// SeedOptions describes the demo factory to create.
type SeedOptions struct {
	FactoryCode string
	FactoryName string
	Plant       domain.PlantConfig
	Now         time.Time
}

// SeedResult reports what a seed run wrote.
type SeedResult struct {
	Factory     *domain.Factory
	Projects    int
	WorkItems   int
	Stations    int
	Workers     int
	Modules     int
	Inspections int
	Quotes      int
}

type seedService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewSeedService writes demo records. All writes of one run share a
// transaction, so a failure leaves the store untouched.
func NewSeedService(uow db.UnitOfWork, observers ...UseCaseObserver) SeedService {
	return &seedService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

var seedStations = []string{"Floor Framing", "Wall Framing", "Roof", "Electrical", "Plumbing", "Finish"}

var seedWorkers = []string{"Ana Ruiz", "Ben Okafor", "Cam Duong", "Dee Patel", "Eli Novak", "Fay Lund", "Gus Moreno"}

func (s *seedService) Seed(ctx context.Context, opts SeedOptions) (result *SeedResult, err error) {
	uc := startUseCase(s.observer, "seed", map[string]any{"factory": opts.FactoryCode})
	defer func() { uc.done(ctx, err) }()

	if opts.FactoryCode == "" {
		return nil, invalid(errors.New("factory code is required"))
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.FactoryName == "" {
		opts.FactoryName = opts.FactoryCode + " Plant"
	}

	result = &SeedResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		store := repository.NewStore(tx)
		w := &seedWriter{store: store, now: opts.Now, result: result}
		return w.run(ctx, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("seeding %s: %w", opts.FactoryCode, err)
	}
	uc.fields["projects"] = result.Projects
	uc.fields["modules"] = result.Modules
	return result, nil
}

type seedWriter struct {
	store  *repository.Store
	now    time.Time
	result *SeedResult

	factory  *domain.Factory
	stations []*domain.Station
	workers  []*domain.Worker
	members  []*domain.TeamMember
	projects []*domain.Project
}

func newID() string { return uuid.New().String() }

func (w *seedWriter) day(offset int) time.Time {
	y, m, d := w.now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, w.now.Location()).AddDate(0, 0, offset)
}

func (w *seedWriter) run(ctx context.Context, opts SeedOptions) error {
	steps := []func(context.Context, SeedOptions) error{
		w.seedFactory,
		w.seedTeam,
		w.seedProjects,
		w.seedFloor,
		w.seedProduction,
		w.seedQuotes,
	}
	for _, step := range steps {
		if err := step(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

func (w *seedWriter) seedFactory(ctx context.Context, opts SeedOptions) error {
	id := newID()
	plant := opts.Plant
	plant.FactoryID = id
	w.factory = &domain.Factory{ID: id, Code: opts.FactoryCode, Name: opts.FactoryName, Plant: plant}
	if err := w.store.Factories.Create(ctx, w.factory); err != nil {
		return err
	}
	w.result.Factory = w.factory
	return nil
}

func (w *seedWriter) seedTeam(ctx context.Context, _ SeedOptions) error {
	for _, name := range []string{"Jordan Reyes", "Morgan Tate", "Riley Chen"} {
		m := &domain.TeamMember{ID: newID(), Name: name, Role: "PM", Active: true}
		if err := w.store.Members.Create(ctx, m); err != nil {
			return err
		}
		w.members = append(w.members, m)
	}
	return nil
}

type seedProject struct {
	name       string
	delivery   int
	status     domain.ProjectStatus
	overdue    int
	open       int
	pm, backup int
}

func (w *seedWriter) seedProjects(ctx context.Context, opts SeedOptions) error {
	plan := []seedProject{
		{name: "Cedar Ridge Apartments", delivery: 2, status: domain.ProjectInProgress, overdue: 1, open: 4, pm: 0, backup: 1},
		{name: "Harbor Point Dorms", delivery: 6, status: domain.ProjectInProgress, overdue: 0, open: 3, pm: 0, backup: -1},
		{name: "Lakeside Clinic", delivery: 40, status: domain.ProjectPMHandoff, overdue: 3, open: 2, pm: 1, backup: 0},
		{name: "Mesa Workforce Housing", delivery: 90, status: domain.ProjectPlanning, overdue: 0, open: 5, pm: 2, backup: -1},
		{name: "Pine Street Retrofit", delivery: -20, status: domain.ProjectCompleted, overdue: 0, open: 0, pm: 1, backup: -1},
	}
	kinds := []domain.WorkItemKind{domain.KindTask, domain.KindRFI, domain.KindSubmittal}
	openStatus := map[domain.WorkItemKind]string{
		domain.KindTask:      domain.TaskInProgress,
		domain.KindRFI:       domain.RFIOpen,
		domain.KindSubmittal: domain.SubmittalUnderReview,
	}

	for i, sp := range plan {
		delivery := w.day(sp.delivery)
		p := &domain.Project{
			ID:            newID(),
			Number:        fmt.Sprintf("%s-%d-%03d", opts.FactoryCode, w.now.Year(), i+1),
			Name:          sp.name,
			Status:        sp.status,
			DeliveryDate:  &delivery,
			ContractValue: decimal.NewFromInt(int64(400000 + 175000*i)),
			FactoryCode:   opts.FactoryCode,
			PrimaryPMID:   &w.members[sp.pm].ID,
			CreatedAt:     w.now.AddDate(0, -3, 0),
			UpdatedAt:     w.now,
		}
		if sp.backup >= 0 {
			p.BackupPMID = &w.members[sp.backup].ID
		}
		if err := w.store.Projects.Create(ctx, p); err != nil {
			return err
		}
		w.projects = append(w.projects, p)
		w.result.Projects++

		for j := 0; j < sp.overdue+sp.open; j++ {
			kind := kinds[j%len(kinds)]
			due := w.day(3 + j)
			if j < sp.overdue {
				due = w.day(-1 - j)
			}
			item := &domain.WorkItem{
				ID:        newID(),
				Kind:      kind,
				ProjectID: p.ID,
				Title:     fmt.Sprintf("%s %d", kind, j+1),
				Status:    openStatus[kind],
				DueDate:   &due,
				CreatedAt: w.now.AddDate(0, 0, -14),
				UpdatedAt: w.now,
			}
			if kind == domain.KindTask {
				item.AssigneeID = p.PrimaryPMID
			}
			if err := w.store.WorkItems.Create(ctx, item); err != nil {
				return err
			}
			w.result.WorkItems++
		}
	}
	return nil
}

func (w *seedWriter) seedFloor(ctx context.Context, _ SeedOptions) error {
	for i, name := range seedStations {
		st := &domain.Station{ID: newID(), FactoryID: w.factory.ID, Code: fmt.Sprintf("S%02d", i+1), Name: name, Sequence: i + 1}
		if err := w.store.Stations.Create(ctx, st); err != nil {
			return err
		}
		w.stations = append(w.stations, st)
		w.result.Stations++
	}

	for i, name := range seedWorkers {
		primary := w.stations[i%len(w.stations)].ID
		wk := &domain.Worker{ID: newID(), FactoryID: w.factory.ID, Name: name, PrimaryStationID: &primary, Active: true, Lead: i < 2}
		if err := w.store.Workers.Create(ctx, wk); err != nil {
			return err
		}
		w.workers = append(w.workers, wk)
		w.result.Workers++

		levels := []domain.CertificationLevel{domain.LevelExpert, domain.LevelIntermediate, domain.LevelBasic}
		for k := 0; k < 1+i%3; k++ {
			expires := w.day(365 - 120*k - 10*i)
			cert := &domain.CertificationRecord{
				ID:          newID(),
				WorkerID:    wk.ID,
				StationID:   w.stations[(i+k)%len(w.stations)].ID,
				Level:       levels[k],
				CertifiedAt: w.day(-300),
				ExpiresAt:   &expires,
				Active:      true,
			}
			if err := w.store.Certifications.Create(ctx, cert); err != nil {
				return err
			}
		}
	}

	start, err := time.Parse("15:04", w.factory.Plant.ShiftStart)
	if err != nil {
		start = time.Date(0, 1, 1, 6, 0, 0, 0, time.UTC)
	}
	for d := -4; d <= 0; d++ {
		clockIn := w.day(d).Add(time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute)
		for i, wk := range w.workers {
			if d == 0 && clockIn.After(w.now) {
				break
			}
			hours := 8.0 - 0.5*float64(i%2)
			var out *time.Time
			var total *float64
			if d < 0 {
				o := clockIn.Add(time.Duration(hours * float64(time.Hour)))
				out, total = &o, &hours
			}
			shift := &domain.ShiftRecord{ID: newID(), WorkerID: wk.ID, ClockIn: clockIn, ClockOut: out, TotalHours: total}
			if err := w.store.Shifts.Create(ctx, shift); err != nil {
				return err
			}
		}

		if d == 0 {
			for i, st := range w.stations[:3] {
				end := clockIn.Add(time.Duration(90+30*i) * time.Minute)
				lead := w.workers[i%2].ID
				a := &domain.StationAssignment{
					ID:        newID(),
					StationID: st.ID,
					LeadID:    &lead,
					CrewIDs:   []string{w.workers[2+i].ID},
					StartTime: clockIn,
					EndTime:   &end,
				}
				if err := w.store.Assignments.Create(ctx, a); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *seedWriter) seedProduction(ctx context.Context, _ SeedOptions) error {
	seq := 1
	newModule := func(status domain.ModuleStatus, station *domain.Station, category string) *domain.Module {
		m := &domain.Module{
			ID:               newID(),
			Serial:           fmt.Sprintf("%s-M%04d", w.factory.Code, seq),
			ProjectID:        w.projects[seq%2].ID,
			FactoryID:        w.factory.ID,
			Status:           status,
			BuildingCategory: category,
			BuildSequence:    seq,
		}
		if station != nil {
			m.CurrentStationID = &station.ID
		}
		seq++
		return m
	}

	// Completed over the last few days, each with a takt history.
	for d := -4; d <= 0; d++ {
		for k := 0; k < 2; k++ {
			category := "standard"
			if k == 1 {
				category = domain.BuildingCategoryCustom
			}
			m := newModule(domain.ModuleCompleted, nil, category)
			done := w.day(d).Add(time.Duration(9+3*k) * time.Hour)
			if done.After(w.now) {
				m.Status = domain.ModuleInProgress
				m.CurrentStationID = &w.stations[len(w.stations)-1].ID
			} else {
				m.CompletedAt = &done
			}
			if err := w.store.Modules.Create(ctx, m); err != nil {
				return err
			}
			w.result.Modules++

			for i, st := range w.stations {
				at := w.day(d).Add(time.Duration(7+i) * time.Hour)
				if at.After(w.now) {
					break
				}
				actual := 1.0 + 0.25*float64((i+k)%3)
				ev := &domain.TaktEvent{ID: newID(), ModuleID: m.ID, StationID: st.ID, ExpectedHours: 1.25, ActualHours: &actual, CompletedAt: at}
				if err := w.store.Takt.Create(ctx, ev); err != nil {
					return err
				}

				passed := (i+k+d)%4 != 0
				qc := &domain.QCRecord{ID: newID(), ModuleID: m.ID, StationID: st.ID, InspectedAt: at, Passed: passed, ReworkRequired: !passed}
				if !passed && d < 0 {
					fixed := at.Add(time.Duration(2+i) * time.Hour)
					qc.ReworkCompletedAt = &fixed
				}
				if err := w.store.QC.Create(ctx, qc); err != nil {
					return err
				}
				w.result.Inspections++
			}
		}
	}

	for i, st := range w.stations {
		status := domain.ModuleInQueue
		if i%2 == 0 {
			status = domain.ModuleInProgress
		}
		if i == 3 {
			status = domain.ModuleQCHold
		}
		m := newModule(status, st, "standard")
		if err := w.store.Modules.Create(ctx, m); err != nil {
			return err
		}
		w.result.Modules++
	}
	for k := 0; k < 3; k++ {
		m := newModule(domain.ModuleNotStarted, nil, "standard")
		if err := w.store.Modules.Create(ctx, m); err != nil {
			return err
		}
		w.result.Modules++
	}
	return nil
}

func (w *seedWriter) seedQuotes(ctx context.Context, opts SeedOptions) error {
	type seedQuote struct {
		status    domain.QuoteStatus
		price     int64
		outlook   int
		closeIn   int
		timeframe string
	}
	plan := []seedQuote{
		{domain.QuoteSent, 820000, 60, 20, ""},
		{domain.QuoteNegotiating, 1450000, 80, 45, ""},
		{domain.QuoteAwaitingPO, 600000, 90, 0, "ASAP"},
		{domain.QuoteDraft, 300000, 0, 0, "next quarter"},
		{domain.QuotePOReceived, 975000, 95, 10, ""},
		{domain.QuoteDraft, 210000, 0, 0, ""},
		{domain.QuoteWon, 1100000, 100, 0, ""},
		{domain.QuoteLost, 540000, 0, 0, ""},
		{domain.QuoteConverted, 760000, 100, 0, ""},
	}
	for i, sq := range plan {
		q := &domain.SalesQuote{
			ID:                     newID(),
			Number:                 fmt.Sprintf("Q-%s-%04d", opts.FactoryCode, i+1),
			Version:                1,
			CustomerName:           fmt.Sprintf("Customer %c", 'A'+i),
			FactoryCode:            opts.FactoryCode,
			Status:                 sq.status,
			TotalPrice:             decimal.NewFromInt(sq.price),
			ExpectedCloseTimeframe: sq.timeframe,
			PMFlagged:              i%3 == 0,
			CreatedAt:              w.now.AddDate(0, 0, -30+i),
		}
		if sq.outlook > 0 {
			outlook := sq.outlook
			q.OutlookPercentage = &outlook
		}
		if sq.closeIn > 0 {
			closeDate := w.day(sq.closeIn)
			q.ExpectedCloseDate = &closeDate
		}
		if sq.status == domain.QuoteConverted {
			at := w.now.AddDate(0, 0, -5)
			q.ConvertedAt = &at
			q.ConvertedProjectID = &w.projects[1].ID
		}
		if err := w.store.Quotes.Create(ctx, q); err != nil {
			return err
		}
		w.result.Quotes++
	}
	return nil
}
